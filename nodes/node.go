// Package nodes defines the object graph a query is built into: sources,
// references, fields, clauses and the select/join/stack/nest containers.
// The fluent API for building the graph lives in the managers package.
package nodes

// Node is the interface that all graph nodes implement.
type Node interface {
	Accept(visitor Visitor) string
}

// Visitor defines the interface for walking the graph and producing output.
// Concrete visitors (debug text, DOT) implement this interface.
type Visitor interface {
	VisitTable(node *Table) string
	VisitDerived(node *Derived) string
	VisitCorrelated(node *Correlated) string
	VisitReference(node *Reference) string
	VisitField(node *Field) string
	VisitValueClause(node *ValueClause) string
	VisitFieldClause(node *FieldClause) string
	VisitQueryClause(node *QueryClause) string
	VisitGroup(node *Group) string
	VisitSelectCore(node *SelectCore) string
	VisitJoin(node *JoinNode) string
	VisitStack(node *StackNode) string
	VisitNest(node *NestNode) string
}

// Catalog maps source names to Sources. It is the schema collaborator the
// builders consult when a field is named as "source.column".
type Catalog interface {
	Source(name string) (Source, error)
}

// Transaction is an opaque unit-of-work handle. The builder only carries it.
type Transaction interface{}
