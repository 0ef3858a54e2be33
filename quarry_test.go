package quarry_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/quarry"
)

func shop() *quarry.Catalog {
	c := quarry.NewCatalog()
	c.Define("users", "id", "name", "age", "vip")
	c.Define("orders", "id", "user_id", "total")
	return c
}

func TestConvenienceSelect(t *testing.T) {
	t.Parallel()
	m := quarry.Select([]string{"users.id", "users.name"}, quarry.WithCatalog(shop())).
		Where("age", ">=", 18).
		OrWhere("vip", "=", true)

	out, err := m.Render(quarry.NewDebugVisitor())
	require.NoError(t, err)
	assert.Equal(t, "SELECT users.id, users.name\nFROM users\nWHERE users.age >= 18 || users.vip = true", out)
}

func TestConvenienceQueryJoin(t *testing.T) {
	t.Parallel()
	q := quarry.NewQuery(quarry.WithCatalog(shop()))
	m := q.FromTable("users", "")
	_, err := m.Join("orders.total").On("user_id", "=", "users.id").EndJoin("o")
	require.NoError(t, err)

	out, err := m.Render(quarry.NewDebugVisitor(quarry.WithANSIQuoting()))
	require.NoError(t, err)
	assert.Equal(t, "SELECT \"o\".\"total\"\nFROM \"users\"\nINNER JOIN \"orders\" AS \"o\" ON \"o\".\"user_id\" = \"users\".\"id\"", out)
}

func TestConvenienceErrors(t *testing.T) {
	t.Parallel()
	q := quarry.NewQuery(quarry.WithCatalog(shop()))

	_, err := q.FromTable("ghosts", "").Render(quarry.NewDebugVisitor())
	assert.ErrorIs(t, err, quarry.ErrUnknownSource)

	_, err = q.FromTable("users", "").Select("nope").Render(quarry.NewDebugVisitor())
	assert.ErrorIs(t, err, quarry.ErrFieldNotFound)
}

func TestConvenienceLoadCatalog(t *testing.T) {
	t.Parallel()
	c, err := quarry.LoadCatalog(filepath.Join("schema", "testdata", "shop.yaml"))
	require.NoError(t, err)
	assert.Contains(t, c.Tables(), "orders")

	dv := quarry.NewDotVisitor()
	quarry.Select([]string{"orders.total"}, quarry.WithCatalog(c)).Accept(dv)
	assert.Contains(t, dv.ToDot(), "digraph Query {")
}
