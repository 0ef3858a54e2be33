package managers

import (
	"github.com/bawdo/quarry/nodes"
)

// JoinManager builds one join of a select. It reads from the joined source
// and resolves foreign fields through the parent select.
type JoinManager struct {
	errorList
	link    Linkage
	env     *env
	sources *nodes.SourceManager
	node    *nodes.JoinNode
}

var _ WhereClauseProvider = (*JoinManager)(nil)

func newJoinManager(parent *SelectManager, e *env, jt nodes.JoinType, fields []string) *JoinManager {
	j := &JoinManager{env: e, sources: nodes.NewSourceManager()}
	j.link.owner = j

	var src nodes.Source
	if len(fields) == 0 {
		j.addError(nodes.Logicf("join needs at least one field"))
	} else {
		srcName, _ := nodes.SplitName(fields[0])
		if srcName == "" {
			j.addError(nodes.Logicf("first join field %q must name its source", fields[0]))
		} else {
			var err error
			src, err = e.resolveSource(parent.Sources(), srcName)
			j.addError(err)
		}
	}
	if src == nil {
		src = nodes.NewTable("")
	}
	ref := nodes.NewReference(src, "")
	_ = j.sources.AddReference(ref)
	j.addError(j.sources.SetParent(parent.Sources()))
	j.node = &nodes.JoinNode{Type: jt, Reference: ref}

	if j.Err() == nil {
		for _, f := range fields {
			if _, col := nodes.SplitName(f); col == "*" {
				continue
			}
			j.addError(project(j.sources, f))
		}
	}
	j.addError(j.link.AsSubQuery(parent, ModeJoin, nil))
	return j
}

func (j *JoinManager) Sources() *nodes.SourceManager { return j.sources }

func (j *JoinManager) Primary() *nodes.Reference { return j.node.Reference }

func (j *JoinManager) Link() *Linkage { return &j.link }

// Node returns the join being built.
func (j *JoinManager) Node() *nodes.JoinNode { return j.node }

// Select projects additional fields from the joined source.
func (j *JoinManager) Select(fields ...string) *JoinManager {
	for _, f := range fields {
		j.addError(project(j.sources, f))
	}
	return j
}

func (j *JoinManager) appendOn(c nodes.Clause, err error) *JoinManager {
	if err != nil {
		j.addError(err)
		return j
	}
	j.addError(j.AddWhereClause(c))
	return j
}

// On adds "local op foreign" where local belongs to the joined source and
// foreign to the select being joined.
func (j *JoinManager) On(local, op, foreign string) *JoinManager {
	return j.appendOn(fieldClause(j.sources, local, op, foreign, false, j.node.Alias()))
}

func (j *JoinManager) OrOn(local, op, foreign string) *JoinManager {
	return j.appendOn(fieldClause(j.sources, local, op, foreign, true, j.node.Alias()))
}

// OnValue adds "local op value" to the join condition.
func (j *JoinManager) OnValue(local, op string, value any) *JoinManager {
	return j.appendOn(valueClause(j.sources, local, op, value, false))
}

func (j *JoinManager) OrOnValue(local, op string, value any) *JoinManager {
	return j.appendOn(valueClause(j.sources, local, op, value, true))
}

// AddWhereClause appends a finished clause to the join condition.
func (j *JoinManager) AddWhereClause(c nodes.Clause) error {
	j.node.On = append(j.node.On, c)
	return nil
}

// BeginOn opens an AND group inside the join condition.
func (j *JoinManager) BeginOn() *ClauseGroup {
	return newClauseGroup(j, j.env, ModeWhere, false, "")
}

// BeginOrOn opens an OR group inside the join condition.
func (j *JoinManager) BeginOrOn() *ClauseGroup {
	return newClauseGroup(j, j.env, ModeWhere, true, "")
}

// EndJoin registers the join on its parent under alias and returns the
// parent.
func (j *JoinManager) EndJoin(alias ...string) (Joinable, error) {
	if err := j.link.expect(ModeJoin); err != nil {
		return nil, err
	}
	if err := j.Err(); err != nil {
		return nil, err
	}
	p, ok := j.link.ParentQuery().(Joinable)
	if !ok {
		return nil, nodes.UnexpectedTypef("%T is not joinable", j.link.ParentQuery())
	}
	if err := p.AddJoin(j, optional(alias)); err != nil {
		return nil, err
	}
	j.link.consume()
	return p, nil
}
