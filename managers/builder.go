// Package managers provides the fluent builders that assemble a query graph
// and the sub-query linkage that reattaches finished children to their
// parents.
package managers

import (
	"errors"

	"github.com/bawdo/quarry/nodes"
	"go.uber.org/zap"
)

// Builder is implemented by every node that can own or parent a sub-query.
type Builder interface {
	Sources() *nodes.SourceManager
	Primary() *nodes.Reference
	Link() *Linkage
	Err() error
}

// Joinable builders accept finished joins.
type Joinable interface {
	Builder
	AddJoin(join *JoinManager, alias string) error
	Joins() map[string]*nodes.JoinNode
}

// Correlatable builders accept finished correlated sub-selects.
type Correlatable interface {
	Builder
	AddCorrelation(sub *SelectManager, alias string) error
	Correlations() map[string]*nodes.Field
}

// Derivable builders turn a source into a new select. They are the target
// of EndDerivation.
type Derivable interface {
	Builder
	From(src nodes.Source, alias string) *SelectManager
}

// Stackable builders accept named stacks.
type Stackable interface {
	Builder
	AddStack(stack *nodes.StackNode) error
}

// Nestable builders accept named nests.
type Nestable interface {
	Builder
	AddNest(nest *nodes.NestNode) error
}

// WhereClauseProvider builders accept where clauses.
type WhereClauseProvider interface {
	Builder
	AddWhereClause(c nodes.Clause) error
}

// HavingClauseProvider builders accept having clauses.
type HavingClauseProvider interface {
	Builder
	AddHavingClause(c nodes.Clause) error
}

// PrerequisiteProvider builders store named where groups.
type PrerequisiteProvider interface {
	Builder
	AddPrerequisite(name string, group *nodes.Group) error
}

// env is shared by a root query and every builder opened beneath it.
type env struct {
	catalog nodes.Catalog
	logger  *zap.Logger
}

// Option configures a Query at construction time.
type Option func(*env)

// WithCatalog sets the catalog used to resolve "source.column" names.
func WithCatalog(c nodes.Catalog) Option {
	return func(e *env) { e.catalog = c }
}

// WithLogger sets the logger that receives attach and finalize events.
func WithLogger(l *zap.Logger) Option {
	return func(e *env) {
		if l != nil {
			e.logger = l
		}
	}
}

func newEnv(opts []Option) *env {
	e := &env{logger: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// resolveSource finds the source named by name, asking the catalog first
// and then the references visible from scope.
func (e *env) resolveSource(scope *nodes.SourceManager, name string) (nodes.Source, error) {
	if e.catalog != nil {
		src, err := e.catalog.Source(name)
		if err == nil {
			return src, nil
		}
	}
	if scope != nil {
		if ref, ok := scope.LookupReference(name); ok {
			return ref.Source, nil
		}
	}
	return nil, nodes.UnknownSourceError(name)
}

// errorList accumulates errors recorded by fluent calls.
type errorList struct {
	errs []error
}

func (l *errorList) addError(err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

// Err returns every recorded error joined, or nil.
func (l *errorList) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return errors.Join(l.errs...)
}

func zapAlias(alias string) zap.Field { return zap.String("alias", alias) }
