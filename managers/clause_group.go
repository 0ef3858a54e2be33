package managers

import "github.com/bawdo/quarry/nodes"

// ClauseGroup collects where or having clauses that render inside one pair
// of parentheses. It resolves fields against the query that owns it.
type ClauseGroup struct {
	errorList
	link         Linkage
	env          *env
	group        *nodes.Group
	mode         Mode
	prerequisite string
	ended        bool
}

var (
	_ WhereClauseProvider  = (*ClauseGroup)(nil)
	_ HavingClauseProvider = (*ClauseGroup)(nil)
)

func newClauseGroup(parent Builder, e *env, mode Mode, or bool, prerequisite string) *ClauseGroup {
	g := &ClauseGroup{env: e, group: &nodes.Group{Or: or}, mode: mode, prerequisite: prerequisite}
	g.link.owner = g
	fin := func(child Builder) (nodes.Clause, error) {
		cg, ok := child.(*ClauseGroup)
		if !ok {
			return nil, nodes.UnexpectedTypef("expected a clause group, got %T", child)
		}
		if cg.group.Len() == 0 {
			return nil, nil
		}
		return cg.group, nil
	}
	g.addError(g.link.AsSubQuery(parent, mode, fin))
	return g
}

// owner walks past enclosing groups to the query the group belongs to.
func (g *ClauseGroup) owner() Builder {
	for p := g.link.ParentQuery(); p != nil; p = p.Link().ParentQuery() {
		if _, ok := p.(*ClauseGroup); !ok {
			return p
		}
	}
	return nil
}

func (g *ClauseGroup) Sources() *nodes.SourceManager {
	if o := g.owner(); o != nil {
		return o.Sources()
	}
	return nil
}

func (g *ClauseGroup) Primary() *nodes.Reference {
	if o := g.owner(); o != nil {
		return o.Primary()
	}
	return nil
}

func (g *ClauseGroup) Link() *Linkage { return &g.link }

// foreignExclude is the alias foreign fields must not resolve to. Inside a
// join condition that is the joined reference, so a self-join compares
// against the outer query.
func (g *ClauseGroup) foreignExclude() string {
	if j, ok := g.owner().(*JoinManager); ok {
		return j.node.Alias()
	}
	return ""
}

// checkOpen fails once the group has been handed to its parent.
func (g *ClauseGroup) checkOpen() error {
	if g.ended {
		return nodes.Logicf("clause group already ended")
	}
	return nil
}

// Node returns the group being built.
func (g *ClauseGroup) Node() *nodes.Group { return g.group }

func (g *ClauseGroup) append(c nodes.Clause, err error) *ClauseGroup {
	if err == nil {
		err = g.AddWhereClause(c)
	}
	g.addError(err)
	return g
}

func (g *ClauseGroup) Where(local, op string, value any) *ClauseGroup {
	return g.append(valueClause(g.Sources(), local, op, value, false))
}

func (g *ClauseGroup) OrWhere(local, op string, value any) *ClauseGroup {
	return g.append(valueClause(g.Sources(), local, op, value, true))
}

func (g *ClauseGroup) WhereField(local, op, foreign string) *ClauseGroup {
	return g.append(fieldClause(g.Sources(), local, op, foreign, false, g.foreignExclude()))
}

func (g *ClauseGroup) OrWhereField(local, op, foreign string) *ClauseGroup {
	return g.append(fieldClause(g.Sources(), local, op, foreign, true, g.foreignExclude()))
}

// AddWhereClause appends a finished clause to the group.
func (g *ClauseGroup) AddWhereClause(c nodes.Clause) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	g.group.Add(c)
	return nil
}

// AddHavingClause appends a finished clause to the group.
func (g *ClauseGroup) AddHavingClause(c nodes.Clause) error {
	return g.AddWhereClause(c)
}

// BeginWhere opens a nested AND group in the same clause mode.
func (g *ClauseGroup) BeginWhere() *ClauseGroup {
	return newClauseGroup(g, g.env, g.clauseMode(), false, "")
}

// BeginOrWhere opens a nested OR group in the same clause mode.
func (g *ClauseGroup) BeginOrWhere() *ClauseGroup {
	return newClauseGroup(g, g.env, g.clauseMode(), true, "")
}

func (g *ClauseGroup) WhereGroup(fn func(*ClauseGroup)) *ClauseGroup {
	g.addError(runGroup(g.BeginWhere(), fn))
	return g
}

func (g *ClauseGroup) OrWhereGroup(fn func(*ClauseGroup)) *ClauseGroup {
	g.addError(runGroup(g.BeginOrWhere(), fn))
	return g
}

// WhereSelect opens a sub-select whose clause lands in this group.
func (g *ClauseGroup) WhereSelect(local, op, field string) *SelectManager {
	return openClauseSelect(g, g.env, g.clauseMode(), local, op, field, false, false)
}

func (g *ClauseGroup) OrWhereSelect(local, op, field string) *SelectManager {
	return openClauseSelect(g, g.env, g.clauseMode(), local, op, field, true, false)
}

func (g *ClauseGroup) WhereSelectDistinct(local, op, field string) *SelectManager {
	return openClauseSelect(g, g.env, g.clauseMode(), local, op, field, false, true)
}

func (g *ClauseGroup) OrWhereSelectDistinct(local, op, field string) *SelectManager {
	return openClauseSelect(g, g.env, g.clauseMode(), local, op, field, true, true)
}

// EndClause hands the group to its parent and returns the parent. An empty
// group is dropped.
func (g *ClauseGroup) EndClause() (Builder, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	p, err := endClause(g, &g.link, g.prerequisite)
	if err != nil {
		return nil, err
	}
	g.ended = true
	return p, nil
}

// clauseMode is the mode the group was opened in, kept after it ends.
func (g *ClauseGroup) clauseMode() Mode { return g.mode }

func runGroup(g *ClauseGroup, fn func(*ClauseGroup)) error {
	if fn != nil {
		fn(g)
	}
	_, err := g.EndClause()
	return err
}
