// Package plugins defines the Transformer interface for query middleware.
package plugins

import "github.com/bawdo/quarry/nodes"

// Transformer rewrites a select before it is rendered. Managers hand each
// transformer a shallow copy of the core, so appending to its clause lists
// leaves the builder untouched.
type Transformer interface {
	TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(core *nodes.SelectCore) (*nodes.SelectCore, error)

func (f TransformerFunc) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	return f(core)
}
