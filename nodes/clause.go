package nodes

// Clause is a single boolean predicate or a parenthesised group of them.
// IsOr reports whether the clause joins its preceding sibling with OR
// rather than AND.
type Clause interface {
	Node
	IsOr() bool
}

// Predicate holds what every comparison clause shares.
type Predicate struct {
	Local *Field
	Op    Operator
	Not   bool
	Or    bool
}

func (p Predicate) IsOr() bool { return p.Or }

// ValueClause compares a field against a literal value. For OpIn the value
// is a slice; for OpBetween a two-element slice.
type ValueClause struct {
	Predicate
	Value any
}

func (n *ValueClause) Accept(v Visitor) string { return v.VisitValueClause(n) }

// FieldClause compares two fields.
type FieldClause struct {
	Predicate
	Foreign *Field
}

func (n *FieldClause) Accept(v Visitor) string { return v.VisitFieldClause(n) }

// QueryClause compares a field against the result of a sub-select.
type QueryClause struct {
	Predicate
	Query *SelectCore
}

func (n *QueryClause) Accept(v Visitor) string { return v.VisitQueryClause(n) }

// Group is an ordered, parenthesised list of clauses. Its own Or flag
// places it relative to its siblings.
type Group struct {
	Or      bool
	Clauses []Clause
}

func (g *Group) Accept(v Visitor) string { return v.VisitGroup(g) }

func (g *Group) IsOr() bool { return g.Or }

// Add appends c to the group.
func (g *Group) Add(c Clause) {
	g.Clauses = append(g.Clauses, c)
}

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.Clauses) }
