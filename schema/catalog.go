// Package schema provides the catalogs builders consult to turn source
// names into sources: an in-memory catalog, a YAML loader for it and a
// database introspector.
package schema

import (
	"sort"
	"sync"

	"github.com/bawdo/quarry/nodes"
)

// Catalog is an in-memory nodes.Catalog. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	sources map[string]nodes.Source
}

var _ nodes.Catalog = (*Catalog)(nil)

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{sources: make(map[string]nodes.Source)}
}

// Define registers a table with the given columns, replacing any source of
// the same name, and returns it.
func (c *Catalog) Define(name string, columns ...string) *nodes.Table {
	t := nodes.NewTable(name, columns...)
	c.mu.Lock()
	c.sources[name] = t
	c.mu.Unlock()
	return t
}

// Register adds src under its name. A name that is already taken fails
// with nodes.ErrDuplicateAlias.
func (c *Catalog) Register(src nodes.Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sources[src.Name()]; ok {
		return nodes.DuplicateAliasError("catalog", src.Name())
	}
	c.sources[src.Name()] = src
	return nil
}

// Source returns the source registered under name.
func (c *Catalog) Source(name string) (nodes.Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if src, ok := c.sources[name]; ok {
		return src, nil
	}
	return nil, nodes.UnknownSourceError(name)
}

// Tables returns the registered names in sorted order.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.sources))
	for n := range c.sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Chain consults each catalog in order and returns the first hit.
type Chain []nodes.Catalog

var _ nodes.Catalog = Chain(nil)

func (c Chain) Source(name string) (nodes.Source, error) {
	for _, cat := range c {
		if src, err := cat.Source(name); err == nil {
			return src, nil
		}
	}
	return nil, nodes.UnknownSourceError(name)
}
