package testutil

import (
	"strings"

	"github.com/bawdo/quarry/nodes"
)

// StubVisitor implements nodes.Visitor with minimal return values for testing.
// Methods return meaningful short strings to aid in test assertions.
type StubVisitor struct{}

var _ nodes.Visitor = StubVisitor{}

func (sv StubVisitor) VisitTable(n *nodes.Table) string           { return n.TableName }
func (sv StubVisitor) VisitDerived(n *nodes.Derived) string       { return "derived" }
func (sv StubVisitor) VisitCorrelated(n *nodes.Correlated) string { return "correlated" }
func (sv StubVisitor) VisitReference(n *nodes.Reference) string   { return n.Alias }
func (sv StubVisitor) VisitField(n *nodes.Field) string           { return n.Path() }
func (sv StubVisitor) VisitValueClause(n *nodes.ValueClause) string {
	return n.Local.Accept(sv) + " " + n.Op.String() + " ?"
}
func (sv StubVisitor) VisitFieldClause(n *nodes.FieldClause) string {
	return n.Local.Accept(sv) + " " + n.Op.String() + " " + n.Foreign.Accept(sv)
}
func (sv StubVisitor) VisitQueryClause(n *nodes.QueryClause) string {
	return n.Local.Accept(sv) + " " + n.Op.String() + " (sub)"
}
func (sv StubVisitor) VisitGroup(n *nodes.Group) string {
	parts := make([]string, len(n.Clauses))
	for i, c := range n.Clauses {
		parts[i] = c.Accept(sv)
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
func (sv StubVisitor) VisitSelectCore(n *nodes.SelectCore) string { return "select" }
func (sv StubVisitor) VisitJoin(n *nodes.JoinNode) string         { return "join " + n.Alias() }
func (sv StubVisitor) VisitStack(n *nodes.StackNode) string       { return "stack " + n.Name }
func (sv StubVisitor) VisitNest(n *nodes.NestNode) string         { return "nest " + n.Name }
