package managers

import (
	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/plugins"
	"github.com/bawdo/quarry/visitors"
	"go.uber.org/zap"
)

// SelectManager provides the fluent API for building a select. It wraps a
// SelectCore and may itself be a sub-query of another builder.
type SelectManager struct {
	treeManager
	errorList
	link       Linkage
	env        *env
	Core       *nodes.SelectCore
	derivation Derivable
	processor  nodes.Processor
}

var (
	_ Joinable             = (*SelectManager)(nil)
	_ Correlatable         = (*SelectManager)(nil)
	_ Stackable            = (*SelectManager)(nil)
	_ Nestable             = (*SelectManager)(nil)
	_ WhereClauseProvider  = (*SelectManager)(nil)
	_ HavingClauseProvider = (*SelectManager)(nil)
	_ PrerequisiteProvider = (*SelectManager)(nil)
)

// NewSelectManager creates a select reading from src under alias. An empty
// alias defaults to the source name.
func NewSelectManager(src nodes.Source, alias string, opts ...Option) *SelectManager {
	return newSelectManager(newEnv(opts), src, alias)
}

func newSelectManager(e *env, src nodes.Source, alias string) *SelectManager {
	sources := nodes.NewSourceManager()
	m := &SelectManager{env: e, Core: nodes.NewSelectCore(sources)}
	m.link.owner = m
	// A fresh manager has no aliases to collide with.
	_ = sources.AddReference(nodes.NewReference(src, alias))
	return m
}

func (m *SelectManager) Sources() *nodes.SourceManager { return m.Core.Sources }

func (m *SelectManager) Primary() *nodes.Reference { return m.Core.Primary() }

func (m *SelectManager) Link() *Linkage { return &m.link }

// IsSourceDeepNested reports whether an enclosing query already exposes
// ref's source under ref's alias.
func (m *SelectManager) IsSourceDeepNested(ref *nodes.Reference) bool {
	return m.link.IsSourceDeepNested(ref)
}

// Select projects fields. Each name is "alias.column", "column", or either
// followed by "AS alias".
func (m *SelectManager) Select(fields ...string) *SelectManager {
	for _, name := range fields {
		m.addError(project(m.Sources(), name))
	}
	return m
}

// Distinct enables or disables DISTINCT.
func (m *SelectManager) Distinct(on ...bool) *SelectManager {
	m.Core.Distinct = len(on) == 0 || on[0]
	return m
}

// SetTransaction attaches an opaque transaction handle.
func (m *SelectManager) SetTransaction(tx nodes.Transaction) *SelectManager {
	m.Sources().SetTransaction(tx)
	return m
}

// Transaction returns the handle visible from this select.
func (m *SelectManager) Transaction() nodes.Transaction {
	return m.Sources().Transaction()
}

// --- where / having ---

func (m *SelectManager) appendWhere(c nodes.Clause, err error) *SelectManager {
	if err != nil {
		m.addError(err)
		return m
	}
	m.addError(m.AddWhereClause(c))
	return m
}

func (m *SelectManager) appendHaving(c nodes.Clause, err error) *SelectManager {
	if err != nil {
		m.addError(err)
		return m
	}
	m.addError(m.AddHavingClause(c))
	return m
}

// Where appends "local op value", joined with AND.
func (m *SelectManager) Where(local, op string, value any) *SelectManager {
	return m.appendWhere(valueClause(m.Sources(), local, op, value, false))
}

// OrWhere appends "local op value", joined with OR.
func (m *SelectManager) OrWhere(local, op string, value any) *SelectManager {
	return m.appendWhere(valueClause(m.Sources(), local, op, value, true))
}

// WhereField appends "local op foreign". The foreign field may belong to an
// enclosing query.
func (m *SelectManager) WhereField(local, op, foreign string) *SelectManager {
	return m.appendWhere(fieldClause(m.Sources(), local, op, foreign, false, ""))
}

// OrWhereField is WhereField joined with OR.
func (m *SelectManager) OrWhereField(local, op, foreign string) *SelectManager {
	return m.appendWhere(fieldClause(m.Sources(), local, op, foreign, true, ""))
}

func (m *SelectManager) Having(local, op string, value any) *SelectManager {
	return m.appendHaving(valueClause(m.Sources(), local, op, value, false))
}

func (m *SelectManager) OrHaving(local, op string, value any) *SelectManager {
	return m.appendHaving(valueClause(m.Sources(), local, op, value, true))
}

func (m *SelectManager) HavingField(local, op, foreign string) *SelectManager {
	return m.appendHaving(fieldClause(m.Sources(), local, op, foreign, false, ""))
}

func (m *SelectManager) OrHavingField(local, op, foreign string) *SelectManager {
	return m.appendHaving(fieldClause(m.Sources(), local, op, foreign, true, ""))
}

// AddWhereClause appends a finished clause to the WHERE list.
func (m *SelectManager) AddWhereClause(c nodes.Clause) error {
	m.Core.Wheres = append(m.Core.Wheres, c)
	return nil
}

// AddHavingClause appends a finished clause to the HAVING list.
func (m *SelectManager) AddHavingClause(c nodes.Clause) error {
	m.Core.Havings = append(m.Core.Havings, c)
	return nil
}

// BeginWhere opens a where group joined with AND. Finish it with EndClause.
func (m *SelectManager) BeginWhere() *ClauseGroup {
	return newClauseGroup(m, m.env, ModeWhere, false, "")
}

// BeginOrWhere opens a where group joined with OR.
func (m *SelectManager) BeginOrWhere() *ClauseGroup {
	return newClauseGroup(m, m.env, ModeWhere, true, "")
}

// BeginHaving opens a having group joined with AND.
func (m *SelectManager) BeginHaving() *ClauseGroup {
	return newClauseGroup(m, m.env, ModeHaving, false, "")
}

// BeginOrHaving opens a having group joined with OR.
func (m *SelectManager) BeginOrHaving() *ClauseGroup {
	return newClauseGroup(m, m.env, ModeHaving, true, "")
}

// WhereGroup fills a new AND group with fn and ends it immediately.
func (m *SelectManager) WhereGroup(fn func(*ClauseGroup)) *SelectManager {
	m.addError(runGroup(m.BeginWhere(), fn))
	return m
}

// OrWhereGroup fills a new OR group with fn and ends it immediately.
func (m *SelectManager) OrWhereGroup(fn func(*ClauseGroup)) *SelectManager {
	m.addError(runGroup(m.BeginOrWhere(), fn))
	return m
}

func (m *SelectManager) HavingGroup(fn func(*ClauseGroup)) *SelectManager {
	m.addError(runGroup(m.BeginHaving(), fn))
	return m
}

func (m *SelectManager) OrHavingGroup(fn func(*ClauseGroup)) *SelectManager {
	m.addError(runGroup(m.BeginOrHaving(), fn))
	return m
}

// --- sub-select clauses ---

// WhereSelect opens a sub-select projecting field ("source.column") and,
// once EndClause is called on it, adds "local op (sub-select)" to WHERE.
func (m *SelectManager) WhereSelect(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeWhere, local, op, field, false, false)
}

func (m *SelectManager) OrWhereSelect(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeWhere, local, op, field, true, false)
}

func (m *SelectManager) WhereSelectDistinct(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeWhere, local, op, field, false, true)
}

func (m *SelectManager) OrWhereSelectDistinct(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeWhere, local, op, field, true, true)
}

func (m *SelectManager) HavingSelect(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeHaving, local, op, field, false, false)
}

func (m *SelectManager) OrHavingSelect(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeHaving, local, op, field, true, false)
}

func (m *SelectManager) HavingSelectDistinct(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeHaving, local, op, field, false, true)
}

func (m *SelectManager) OrHavingSelectDistinct(local, op, field string) *SelectManager {
	return openClauseSelect(m, m.env, ModeHaving, local, op, field, true, true)
}

// EndClause finishes a select opened by WhereSelect or HavingSelect and
// returns its parent.
func (m *SelectManager) EndClause() (Builder, error) {
	return endClause(m, &m.link, "")
}

// --- prerequisites ---

// Prerequisite stores a named single-clause group. Prerequisites are not
// rendered inline; a later prerequisite with the same name replaces it.
func (m *SelectManager) Prerequisite(name, local, op string, value any) *SelectManager {
	c, err := valueClause(m.Sources(), local, op, value, false)
	if err != nil {
		m.addError(err)
		return m
	}
	m.addError(m.AddPrerequisite(name, &nodes.Group{Clauses: []nodes.Clause{c}}))
	return m
}

// PrerequisiteField stores a named "local op foreign" group.
func (m *SelectManager) PrerequisiteField(name, local, op, foreign string) *SelectManager {
	c, err := fieldClause(m.Sources(), local, op, foreign, false, "")
	if err != nil {
		m.addError(err)
		return m
	}
	m.addError(m.AddPrerequisite(name, &nodes.Group{Clauses: []nodes.Clause{c}}))
	return m
}

// BeginPrerequisite opens a named group. An empty name is generated.
func (m *SelectManager) BeginPrerequisite(name string) *ClauseGroup {
	if name == "" {
		name = nodes.UniqueAlias("prerequisite")
	}
	return newClauseGroup(m, m.env, ModeWhere, false, name)
}

// PrerequisiteGroup fills a named group with fn and stores it.
func (m *SelectManager) PrerequisiteGroup(name string, fn func(*ClauseGroup)) *SelectManager {
	m.addError(runGroup(m.BeginPrerequisite(name), fn))
	return m
}

// AddPrerequisite stores group under name, replacing any previous group.
func (m *SelectManager) AddPrerequisite(name string, group *nodes.Group) error {
	if name == "" {
		return nodes.Logicf("prerequisite needs a name")
	}
	if _, ok := m.Core.Prerequisites[name]; ok {
		m.env.logger.Debug("prerequisite replaced", zap.String("name", name))
	}
	m.Core.Prerequisites[name] = group
	return nil
}

// Prerequisites returns the named groups.
func (m *SelectManager) Prerequisites() map[string]*nodes.Group {
	out := make(map[string]*nodes.Group, len(m.Core.Prerequisites))
	for k, v := range m.Core.Prerequisites {
		out[k] = v
	}
	return out
}

// --- joins ---

// Join opens an inner join. The first field names the joined source
// ("orders.total"); every field's column is projected from it.
func (m *SelectManager) Join(fields ...string) *JoinManager {
	return m.JoinWith(nodes.InnerJoin, fields...)
}

// OuterJoin opens a left outer join.
func (m *SelectManager) OuterJoin(fields ...string) *JoinManager {
	return m.JoinWith(nodes.LeftOuterJoin, fields...)
}

// JoinWith opens a join of the given type.
func (m *SelectManager) JoinWith(jt nodes.JoinType, fields ...string) *JoinManager {
	return newJoinManager(m, m.env, jt, fields)
}

// AddJoin registers a finished join under alias (its current alias when
// empty). The select is unchanged when registration fails.
func (m *SelectManager) AddJoin(j *JoinManager, alias string) error {
	ref := j.Primary()
	if alias == "" {
		alias = ref.Alias
	}
	if _, ok := m.Sources().Reference(alias); ok {
		return nodes.DuplicateAliasError("reference", alias)
	}
	if j.link.shadows(ref.Source.SourceID(), alias, ref) {
		return nodes.Logicf("join %q shadows a source of an enclosing query", alias)
	}
	if err := j.Sources().Rename(ref, alias); err != nil {
		return err
	}
	if err := m.Sources().AddReference(ref); err != nil {
		return err
	}
	m.Core.Joins = append(m.Core.Joins, j.node)
	m.env.logger.Debug("join attached", zapAlias(alias), zap.Stringer("type", j.node.Type))
	return nil
}

// Joins returns the registered joins keyed by alias.
func (m *SelectManager) Joins() map[string]*nodes.JoinNode {
	out := make(map[string]*nodes.JoinNode, len(m.Core.Joins))
	for _, j := range m.Core.Joins {
		out[j.Alias()] = j
	}
	return out
}

// ClearJoins removes every join and its reference.
func (m *SelectManager) ClearJoins() *SelectManager {
	for _, j := range m.Core.Joins {
		m.Sources().RemoveReference(j.Reference)
	}
	m.Core.Joins = nil
	return m
}

// --- correlations ---

// Correlate opens a correlated sub-select projecting field. A bare column
// correlates against this select's own source.
func (m *SelectManager) Correlate(field string) *SelectManager {
	return openCorrelation(m, m.env, field)
}

// AddCorrelation exposes sub as a field of this select under alias.
func (m *SelectManager) AddCorrelation(sub *SelectManager, alias string) error {
	return addCorrelation(m.env, m.Sources(), sub, alias)
}

// Correlations returns the correlated fields keyed by alias.
func (m *SelectManager) Correlations() map[string]*nodes.Field {
	return m.Core.Correlations()
}

// EndCorrelation finishes a select opened by Correlate and returns its
// parent.
func (m *SelectManager) EndCorrelation(alias ...string) (Correlatable, error) {
	if err := m.link.expect(ModeCorrelation); err != nil {
		return nil, err
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	p, ok := m.link.ParentQuery().(Correlatable)
	if !ok {
		return nil, nodes.UnexpectedTypef("%T is not correlatable", m.link.ParentQuery())
	}
	if err := p.AddCorrelation(m, optional(alias)); err != nil {
		return nil, err
	}
	m.link.consume()
	return p, nil
}

// --- derivation ---

// SetDerivationParent sets the builder EndDerivation hands this select to.
func (m *SelectManager) SetDerivationParent(d Derivable) *SelectManager {
	m.derivation = d
	return m
}

// EndDerivation wraps this select as a derived source, asks the derivation
// parent for a select over it and nests this select under the result.
func (m *SelectManager) EndDerivation(alias ...string) (*SelectManager, error) {
	if err := m.link.expect(ModeDerivation); err != nil {
		return nil, err
	}
	if m.derivation == nil {
		return nil, nodes.Logicf("derivation has no derivation parent")
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	a := optional(alias)
	if a == "" {
		a = nodes.UniqueAlias("derived")
	}
	outer := m.derivation.From(nodes.NewDerived(m.Core), a)
	if err := outer.Err(); err != nil {
		return nil, err
	}
	m.link.consume()
	if err := m.link.SetParentQuery(outer); err != nil {
		return nil, err
	}
	if err := m.Sources().SetParent(outer.Sources()); err != nil {
		return nil, err
	}
	m.derivation = nil
	m.env.logger.Debug("derivation attached", zapAlias(a))
	return outer, nil
}

// --- nests ---

// Nest opens a nest over fields.
func (m *SelectManager) Nest(fields ...string) *NestManager {
	return newNestManager(m, m.env, fields)
}

// AddNest registers a finished nest.
func (m *SelectManager) AddNest(n *nodes.NestNode) error {
	if _, ok := m.Core.Nest(n.Name); ok {
		return nodes.DuplicateAliasError("nest", n.Name)
	}
	m.Core.Nests = append(m.Core.Nests, n)
	m.env.logger.Debug("nest attached", zap.String("name", n.Name), zap.Bool("copy", n.Copy))
	return nil
}

// Nests returns the registered nests keyed by name.
func (m *SelectManager) Nests() map[string]*nodes.NestNode {
	out := make(map[string]*nodes.NestNode, len(m.Core.Nests))
	for _, n := range m.Core.Nests {
		out[n.Name] = n
	}
	return out
}

// --- rendering ---

// Use registers a transformer applied before rendering.
func (m *SelectManager) Use(t plugins.Transformer) *SelectManager {
	m.addTransformer(t)
	return m
}

// Accept implements nodes.Node by delegating to the core.
func (m *SelectManager) Accept(v nodes.Visitor) string {
	return m.Core.Accept(v)
}

// Render applies the registered transformers to a copy of the core and
// renders it with v.
func (m *SelectManager) Render(v nodes.Visitor) (string, error) {
	if err := m.Err(); err != nil {
		return "", err
	}
	core, err := m.transform(m.CloneCore())
	if err != nil {
		return "", err
	}
	return core.Accept(v), nil
}

// String renders the select with the debug visitor.
func (m *SelectManager) String() string {
	return m.Core.Accept(visitors.NewDebugVisitor())
}

// CloneCore returns a shallow copy of the core so transformers don't
// modify the original.
func (m *SelectManager) CloneCore() *nodes.SelectCore {
	c := *m.Core
	c.Wheres = append([]nodes.Clause(nil), m.Core.Wheres...)
	c.Havings = append([]nodes.Clause(nil), m.Core.Havings...)
	c.Joins = append([]*nodes.JoinNode(nil), m.Core.Joins...)
	c.Stacks = append([]*nodes.StackNode(nil), m.Core.Stacks...)
	c.Nests = append([]*nodes.NestNode(nil), m.Core.Nests...)
	c.Prerequisites = m.Prerequisites()
	return &c
}

// --- stacks ---

// BeginStack opens a select in stack mode projecting field. Finish it with
// one of AsOne, AsMany, AsList or AsValue.
func (m *SelectManager) BeginStack(field string) *SelectManager {
	sub := openSelect(m, m.env, field, "")
	sub.addError(sub.link.AsSubQuery(m, ModeStack, nil))
	return sub
}

// SetProcessor sets the callback that post-processes the stack's rows.
func (m *SelectManager) SetProcessor(p nodes.Processor) *SelectManager {
	m.processor = p
	return m
}

// AsOne registers the select as a stack materialised as one nested object.
func (m *SelectManager) AsOne(name string) (Stackable, error) {
	return m.registerStack(&nodes.StackNode{Name: name, Mode: nodes.StackOne})
}

// AsMany registers the select as a list of rows, optionally keyed by key.
func (m *SelectManager) AsMany(name string, key ...string) (Stackable, error) {
	n := &nodes.StackNode{Name: name, Mode: nodes.StackMany}
	if k := optional(key); k != "" {
		f, err := m.Sources().FindLocalField(k)
		if err != nil {
			return nil, err
		}
		n.Key = f
	}
	return m.registerStack(n)
}

// AsList registers the select as a key => value map. Without a value
// field a processor must be set.
func (m *SelectManager) AsList(name, key string, value ...string) (Stackable, error) {
	n := &nodes.StackNode{Name: name, Mode: nodes.StackList}
	f, err := m.Sources().FindLocalField(key)
	if err != nil {
		return nil, err
	}
	n.Key = f
	if v := optional(value); v != "" {
		if n.Value, err = m.Sources().FindLocalField(v); err != nil {
			return nil, err
		}
	} else if m.processor == nil {
		return nil, nodes.Logicf("list stack %q needs a value field or a processor", name)
	}
	return m.registerStack(n)
}

// AsValue registers the select as a single scalar. Without a field the
// only projected field is used, unless a processor is set.
func (m *SelectManager) AsValue(name string, field ...string) (Stackable, error) {
	n := &nodes.StackNode{Name: name, Mode: nodes.StackValue}
	if v := optional(field); v != "" {
		f, err := m.Sources().FindLocalField(v)
		if err != nil {
			return nil, err
		}
		n.Value = f
	} else if proj := m.Core.Projection(); len(proj) == 1 {
		n.Value = proj[0]
	} else if m.processor == nil {
		return nil, nodes.Logicf("value stack %q needs exactly one field or a processor", name)
	}
	return m.registerStack(n)
}

func (m *SelectManager) registerStack(n *nodes.StackNode) (Stackable, error) {
	if err := m.link.expect(ModeStack); err != nil {
		return nil, err
	}
	if n.Name == "" {
		return nil, nodes.Logicf("stack needs a name")
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	p, ok := m.link.ParentQuery().(Stackable)
	if !ok {
		return nil, nodes.UnexpectedTypef("%T is not stackable", m.link.ParentQuery())
	}
	n.Query = m.Core
	n.Processor = m.processor
	if err := p.AddStack(n); err != nil {
		return nil, err
	}
	m.link.consume()
	return p, nil
}

// AddStack registers a finished stack.
func (m *SelectManager) AddStack(n *nodes.StackNode) error {
	if _, ok := m.Core.Stack(n.Name); ok {
		return nodes.DuplicateAliasError("stack", n.Name)
	}
	m.Core.Stacks = append(m.Core.Stacks, n)
	m.env.logger.Debug("stack attached", zap.String("name", n.Name), zap.Stringer("mode", n.Mode))
	return nil
}

// Stacks returns the registered stacks keyed by name.
func (m *SelectManager) Stacks() map[string]*nodes.StackNode {
	out := make(map[string]*nodes.StackNode, len(m.Core.Stacks))
	for _, s := range m.Core.Stacks {
		out[s.Name] = s
	}
	return out
}
