// Package quarry provides a composable query builder for Go.
//
// This package re-exports commonly used types and functions from subpackages
// for convenience. Advanced users can import subpackages directly:
//   - github.com/bawdo/quarry/managers (query builders)
//   - github.com/bawdo/quarry/nodes (query graph nodes)
//   - github.com/bawdo/quarry/schema (table catalogs)
//   - github.com/bawdo/quarry/visitors (renderers)
//   - github.com/bawdo/quarry/plugins (query transformers)
package quarry

import (
	"go.uber.org/zap"

	"github.com/bawdo/quarry/managers"
	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/schema"
	"github.com/bawdo/quarry/visitors"
)

// --- Manager Types ---

// Query is the root factory every select is created from.
type Query = managers.Query

// SelectManager provides a fluent API for building selects.
type SelectManager = managers.SelectManager

// JoinManager builds one join of a select.
type JoinManager = managers.JoinManager

// ClauseGroup builds a parenthesised group of conditions.
type ClauseGroup = managers.ClauseGroup

// NestManager builds a nest on a select.
type NestManager = managers.NestManager

// Option configures a Query.
type Option = managers.Option

// --- Manager Constructors ---

// NewQuery creates a root factory. Sources are resolved through the catalog
// given with WithCatalog.
func NewQuery(opts ...Option) *managers.Query {
	return managers.NewQuery(opts...)
}

// Select starts a select whose primary source is that of the first field.
func Select(fields []string, opts ...Option) *managers.SelectManager {
	return managers.Select(fields, opts...)
}

// WithCatalog sets the catalog sources are resolved through.
func WithCatalog(c nodes.Catalog) Option {
	return managers.WithCatalog(c)
}

// WithLogger sets the logger builders report events to.
func WithLogger(l *zap.Logger) Option {
	return managers.WithLogger(l)
}

// --- Catalogs ---

// Catalog is an in-memory table catalog.
type Catalog = schema.Catalog

// NewCatalog creates an empty catalog.
func NewCatalog() *schema.Catalog {
	return schema.NewCatalog()
}

// LoadCatalog reads a YAML schema file.
func LoadCatalog(path string) (*schema.Catalog, error) {
	return schema.LoadFile(path)
}

// --- Errors ---

var (
	ErrDuplicateAlias = nodes.ErrDuplicateAlias
	ErrFieldNotFound  = nodes.ErrFieldNotFound
	ErrLogic          = nodes.ErrLogic
	ErrUnexpectedType = nodes.ErrUnexpectedType
	ErrUnknownSource  = nodes.ErrUnknownSource
)

// --- Visitors ---

// DebugVisitor renders a select as indented pseudo-SQL.
type DebugVisitor = visitors.DebugVisitor

// NewDebugVisitor creates a debug renderer.
func NewDebugVisitor(opts ...visitors.Option) *visitors.DebugVisitor {
	return visitors.NewDebugVisitor(opts...)
}

// NewDotVisitor creates a Graphviz DOT renderer.
func NewDotVisitor() *visitors.DotVisitor {
	return visitors.NewDotVisitor()
}

// WithANSIQuoting quotes identifiers with double quotes.
func WithANSIQuoting() visitors.Option {
	return visitors.WithANSIQuoting()
}

// WithMySQLQuoting quotes identifiers with backticks.
func WithMySQLQuoting() visitors.Option {
	return visitors.WithMySQLQuoting()
}
