package plugins

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/quarry/nodes"
)

func TestTransformerFuncDelegates(t *testing.T) {
	t.Parallel()
	users := nodes.NewReference(nodes.NewTable("users", "id", "active"), "users")
	core := selectOver(t, users)
	active, _ := users.Field("active")

	var tr Transformer = TransformerFunc(func(c *nodes.SelectCore) (*nodes.SelectCore, error) {
		c.Wheres = append(c.Wheres, &nodes.ValueClause{
			Predicate: nodes.Predicate{Local: active, Op: nodes.OpEq},
			Value:     true,
		})
		return c, nil
	})

	got, err := tr.TransformSelect(core)
	require.NoError(t, err)
	assert.Same(t, core, got)
	assert.Len(t, got.Wheres, 1)
}

func TestTransformerFuncPropagatesError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	tr := TransformerFunc(func(*nodes.SelectCore) (*nodes.SelectCore, error) {
		return nil, boom
	})

	_, err := tr.TransformSelect(selectOver(t))
	assert.ErrorIs(t, err, boom)
}
