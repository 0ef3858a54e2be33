package managers

import (
	"github.com/bawdo/quarry/nodes"
	"go.uber.org/zap"
)

// Query is the root factory for selects. It carries the catalog and logger
// shared by every builder it creates and is the derivation target of
// selects opened with Derive.
type Query struct {
	errorList
	link    Linkage
	env     *env
	sources *nodes.SourceManager
}

var _ Derivable = (*Query)(nil)

// NewQuery creates a root factory.
func NewQuery(opts ...Option) *Query {
	q := &Query{env: newEnv(opts), sources: nodes.NewSourceManager()}
	q.link.owner = q
	return q
}

// Select is shorthand for NewQuery(opts...).Select(fields...).
func Select(fields []string, opts ...Option) *SelectManager {
	return NewQuery(opts...).Select(fields...)
}

func (q *Query) Sources() *nodes.SourceManager { return q.sources }

// Primary is always nil; a Query reads from nothing itself.
func (q *Query) Primary() *nodes.Reference { return nil }

func (q *Query) Link() *Linkage { return &q.link }

// SetTransaction attaches a transaction handle inherited by every select
// created afterwards.
func (q *Query) SetTransaction(tx nodes.Transaction) *Query {
	q.sources.SetTransaction(tx)
	return q
}

// Select creates a select over the source named by the first field's
// prefix and projects every field from it.
func (q *Query) Select(fields ...string) *SelectManager {
	if len(fields) == 0 {
		m := q.From(nodes.NewTable(""), "")
		m.addError(nodes.Logicf("select needs at least one field"))
		return m
	}
	local, _ := splitAs(fields[0])
	srcName, _ := nodes.SplitName(local)
	if srcName == "" {
		m := q.From(nodes.NewTable(""), "")
		m.addError(nodes.Logicf("first field %q must name its source", fields[0]))
		return m
	}
	src, err := q.env.resolveSource(q.sources, srcName)
	if err != nil {
		m := q.From(nodes.NewTable(srcName), "")
		m.addError(err)
		return m
	}
	return q.From(src, "").Select(fields...)
}

// From creates a select reading src under alias.
func (q *Query) From(src nodes.Source, alias string) *SelectManager {
	m := newSelectManager(q.env, src, alias)
	m.Sources().SetTransaction(q.sources.Transaction())
	q.env.logger.Debug("select created", zap.String("source", src.SourceID()), zapAlias(m.Primary().Alias))
	return m
}

// FromTable creates a select over the catalog table name.
func (q *Query) FromTable(name, alias string) *SelectManager {
	src, err := q.env.resolveSource(q.sources, name)
	if err != nil {
		m := q.From(nodes.NewTable(name), alias)
		m.addError(err)
		return m
	}
	return q.From(src, alias)
}

// Derive opens a select in derivation mode over the catalog table name.
// EndDerivation turns it into the source of a new select created by q.
func (q *Query) Derive(name, alias string, fields ...string) *SelectManager {
	m := q.FromTable(name, alias)
	m.Select(fields...)
	m.addError(m.link.AsSubQuery(q, ModeDerivation, nil))
	m.SetDerivationParent(q)
	return m
}
