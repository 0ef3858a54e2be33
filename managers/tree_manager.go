package managers

import (
	"fmt"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/plugins"
)

// treeManager holds the transformer pipeline applied before rendering.
type treeManager struct {
	transformers []plugins.Transformer
}

// addTransformer appends a transformer plugin to the pipeline.
func (tm *treeManager) addTransformer(t plugins.Transformer) {
	tm.transformers = append(tm.transformers, t)
}

// Transformers returns the registered transformer pipeline.
func (tm *treeManager) Transformers() []plugins.Transformer {
	return tm.transformers
}

// transform runs core through every transformer in registration order.
func (tm *treeManager) transform(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	var err error
	for i, t := range tm.transformers {
		core, err = t.TransformSelect(core)
		if err != nil {
			return nil, fmt.Errorf("transformer %d (%T): %w", i, t, err)
		}
	}
	return core, nil
}
