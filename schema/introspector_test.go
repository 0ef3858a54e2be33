package schema

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/quarry/nodes"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)",
		"CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER, total REAL)",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestIntrospectorTables(t *testing.T) {
	t.Parallel()
	in, err := NewIntrospector(openSQLite(t), "sqlite")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, in.Tables())
	assert.Equal(t, "sqlite", in.Engine())
}

func TestIntrospectorColumns(t *testing.T) {
	t.Parallel()
	in, err := NewIntrospector(openSQLite(t), "sqlite")
	require.NoError(t, err)

	cols, err := in.Columns("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age"}, cols)
}

func TestIntrospectorCachesTables(t *testing.T) {
	t.Parallel()
	in, err := NewIntrospector(openSQLite(t), "sqlite", WithCacheSize(4))
	require.NoError(t, err)

	a, err := in.Source("orders")
	require.NoError(t, err)
	b, err := in.Source("orders")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestIntrospectorRefresh(t *testing.T) {
	t.Parallel()
	db := openSQLite(t)
	in, err := NewIntrospector(db, "sqlite")
	require.NoError(t, err)

	_, err = in.Source("items")
	assert.ErrorIs(t, err, nodes.ErrUnknownSource)

	_, err = db.Exec("CREATE TABLE items (sku TEXT)")
	require.NoError(t, err)
	require.NoError(t, in.Refresh())

	src, err := in.Source("items")
	require.NoError(t, err)
	assert.True(t, src.HasColumn("sku"))
}

func TestIntrospectorUnsupportedEngine(t *testing.T) {
	t.Parallel()
	_, err := NewIntrospector(nil, "oracle")
	assert.ErrorContains(t, err, "unsupported engine")

	_, err = Open("oracle", "")
	assert.ErrorContains(t, err, "no driver")
}

func TestEngines(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"mysql", "postgres", "sqlite"}, Engines())
}
