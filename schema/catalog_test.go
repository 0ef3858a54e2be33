package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/quarry/nodes"
)

func TestCatalogDefineAndSource(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	c.Define("users", "id", "name")

	src, err := c.Source("users")
	require.NoError(t, err)
	assert.Equal(t, "users", src.Name())
	assert.Equal(t, []string{"id", "name"}, src.Columns())
}

func TestCatalogUnknownSource(t *testing.T) {
	t.Parallel()
	_, err := NewCatalog().Source("ghosts")
	assert.ErrorIs(t, err, nodes.ErrUnknownSource)
}

func TestCatalogRegisterDuplicate(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	require.NoError(t, c.Register(nodes.NewTable("users", "id")))
	err := c.Register(nodes.NewTable("users", "id", "name"))
	assert.ErrorIs(t, err, nodes.ErrDuplicateAlias)

	src, _ := c.Source("users")
	assert.Equal(t, []string{"id"}, src.Columns(), "failed register must not replace")
}

func TestCatalogTablesSorted(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	c.Define("orders", "id")
	c.Define("accounts", "id")
	c.Define("users", "id")
	assert.Equal(t, []string{"accounts", "orders", "users"}, c.Tables())
}

func TestChainFirstHitWins(t *testing.T) {
	t.Parallel()
	local := NewCatalog()
	local.Define("users", "id", "name")
	remote := NewCatalog()
	remote.Define("users", "id")
	remote.Define("orders", "id", "total")

	chain := Chain{local, remote}
	src, err := chain.Source("users")
	require.NoError(t, err)
	assert.True(t, src.HasColumn("name"))

	src, err = chain.Source("orders")
	require.NoError(t, err)
	assert.Equal(t, "orders", src.Name())

	_, err = chain.Source("tags")
	assert.ErrorIs(t, err, nodes.ErrUnknownSource)

	_, err = Chain(nil).Source("users")
	assert.ErrorIs(t, err, nodes.ErrUnknownSource)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	c, err := LoadFile("testdata/shop.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"order_items", "orders", "users"}, c.Tables())

	src, err := c.Source("orders")
	require.NoError(t, err)
	assert.True(t, src.HasColumn("user_id"))
	assert.False(t, src.HasColumn("sku"))
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing name", "tables:\n  - columns: [id]\n", "missing name"},
		{"no columns", "tables:\n  - name: users\n", "no columns"},
		{"twice", "tables:\n  - name: a\n    columns: [id]\n  - name: a\n    columns: [id]\n", "declared twice"},
		{"unknown key", "tables:\n  - name: a\n    cols: [id]\n", "decode schema"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	t.Parallel()
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Tables())
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()
	_, err := LoadFile("testdata/nope.yaml")
	assert.ErrorContains(t, err, "open schema")
}
