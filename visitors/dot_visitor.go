package visitors

import (
	"fmt"
	"strings"

	"github.com/bawdo/quarry/nodes"
)

// Color constants for DOT node categories.
const (
	colorSource     = "#6CA6CD" // blue: tables, references
	colorField      = "#B0D4E8" // light blue: fields
	colorComparison = "#FFB347" // orange: predicates
	colorLogical    = "#FFEB80" // yellow: groups
	colorLiteral    = "#D3D3D3" // grey: values
	colorJoin       = "#77DD77" // green: joins
	colorShape      = "#CDA0E0" // purple: stacks, nests
	colorQuery      = "#87CEEB" // sky blue: selects, sub-selects
)

// dotNode represents a single node in the DOT graph.
type dotNode struct {
	id    string
	label string
	color string
}

// dotEdge represents a directed edge between two nodes in the DOT graph.
type dotEdge struct {
	from  string
	to    string
	label string
}

// DotVisitor walks a select and produces Graphviz DOT output.
// It implements nodes.Visitor; each Visit method returns the node ID.
type DotVisitor struct {
	nextID    int
	nodes     []dotNode
	edges     []dotEdge
	parentID  string
	edgeLabel string
}

var _ nodes.Visitor = (*DotVisitor)(nil)

// NewDotVisitor creates a new DotVisitor ready to walk a graph.
func NewDotVisitor() *DotVisitor {
	return &DotVisitor{}
}

// addNode creates a new DOT node with the given label and color, returning its ID.
func (dv *DotVisitor) addNode(label, color string) string {
	id := fmt.Sprintf("n%d", dv.nextID)
	dv.nextID++
	dv.nodes = append(dv.nodes, dotNode{id: id, label: label, color: color})
	return id
}

// addEdge records a directed edge from one node to another.
func (dv *DotVisitor) addEdge(from, to, label string) {
	dv.edges = append(dv.edges, dotEdge{from: from, to: to, label: label})
}

// visitChild saves and restores the parent context, sets the edge label,
// and calls child.Accept to recursively visit the child node.
func (dv *DotVisitor) visitChild(parentID, label string, child nodes.Node) string {
	savedParent := dv.parentID
	savedLabel := dv.edgeLabel
	dv.parentID = parentID
	dv.edgeLabel = label
	result := child.Accept(dv)
	dv.parentID = savedParent
	dv.edgeLabel = savedLabel
	return result
}

// connectToParent adds an edge from the current parentID to nodeID if a parent exists.
func (dv *DotVisitor) connectToParent(nodeID string) {
	if dv.parentID != "" {
		dv.addEdge(dv.parentID, nodeID, dv.edgeLabel)
	}
}

// NodeCount returns the number of nodes accumulated so far.
func (dv *DotVisitor) NodeCount() int {
	return len(dv.nodes)
}

// ToDot generates the complete DOT graph text.
func (dv *DotVisitor) ToDot() string {
	var sb strings.Builder

	sb.WriteString("digraph Query {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")

	for _, n := range dv.nodes {
		sb.WriteString(fmt.Sprintf("  %s [label=\"%s\", fillcolor=\"%s\"];\n",
			n.id, escapeLabel(n.label), n.color))
	}
	for _, e := range dv.edges {
		if e.label != "" {
			sb.WriteString(fmt.Sprintf("  %s -> %s [label=\"%s\"];\n", e.from, e.to, e.label))
		} else {
			sb.WriteString(fmt.Sprintf("  %s -> %s;\n", e.from, e.to))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// escapeLabel escapes double quotes in DOT labels.
// Backslash sequences like \n are intentional DOT line breaks and are preserved.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

// --- Visitor interface implementation ---

func (dv *DotVisitor) VisitTable(n *nodes.Table) string {
	id := dv.addNode("Table\\n"+n.TableName, colorSource)
	dv.connectToParent(id)
	return id
}

func (dv *DotVisitor) VisitDerived(n *nodes.Derived) string {
	id := dv.addNode("Derived", colorQuery)
	dv.connectToParent(id)
	dv.visitChild(id, "QUERY", n.Query)
	return id
}

func (dv *DotVisitor) VisitCorrelated(n *nodes.Correlated) string {
	id := dv.addNode("Correlated\\n"+n.Column, colorQuery)
	dv.connectToParent(id)
	dv.visitChild(id, "QUERY", n.Query)
	return id
}

func (dv *DotVisitor) VisitReference(n *nodes.Reference) string {
	id := dv.addNode("Reference\\n"+n.Alias, colorSource)
	dv.connectToParent(id)
	dv.visitChild(id, "SOURCE", n.Source)
	return id
}

func (dv *DotVisitor) VisitField(n *nodes.Field) string {
	label := "Field\\n" + n.Path()
	if n.Realiased() {
		label += " AS " + n.Alias
	}
	id := dv.addNode(label, colorField)
	dv.connectToParent(id)
	return id
}

func (dv *DotVisitor) predicateNode(p nodes.Predicate) string {
	label := p.Op.Symbol()
	if p.Not {
		label = "NOT " + label
	}
	if p.Or {
		label += "\\nOR"
	}
	id := dv.addNode(label, colorComparison)
	dv.connectToParent(id)
	dv.visitChild(id, "LEFT", p.Local)
	return id
}

func (dv *DotVisitor) VisitValueClause(n *nodes.ValueClause) string {
	id := dv.predicateNode(n.Predicate)
	lit := dv.addNode(fmt.Sprintf("Value\\n%v", n.Value), colorLiteral)
	dv.addEdge(id, lit, "RIGHT")
	return id
}

func (dv *DotVisitor) VisitFieldClause(n *nodes.FieldClause) string {
	id := dv.predicateNode(n.Predicate)
	dv.visitChild(id, "RIGHT", n.Foreign)
	return id
}

func (dv *DotVisitor) VisitQueryClause(n *nodes.QueryClause) string {
	id := dv.predicateNode(n.Predicate)
	dv.visitChild(id, "RIGHT", n.Query)
	return id
}

func (dv *DotVisitor) VisitGroup(n *nodes.Group) string {
	label := "Group\\n( )"
	if n.Or {
		label += "\\nOR"
	}
	id := dv.addNode(label, colorLogical)
	dv.connectToParent(id)
	for i, c := range n.Clauses {
		dv.visitChild(id, fmt.Sprintf("[%d]", i), c)
	}
	return id
}

func (dv *DotVisitor) VisitSelectCore(n *nodes.SelectCore) string {
	label := "Select"
	if n.Distinct {
		label += "\\nDISTINCT"
	}
	id := dv.addNode(label, colorQuery)
	dv.connectToParent(id)

	if p := n.Primary(); p != nil {
		dv.visitChild(id, "FROM", p)
	}
	for i, f := range n.Projection() {
		dv.visitChild(id, fmt.Sprintf("SELECT[%d]", i), f)
	}
	for i, j := range n.Joins {
		dv.visitChild(id, fmt.Sprintf("JOIN[%d]", i), j)
	}
	for i, r := range n.CorrelatedReferences() {
		dv.visitChild(id, fmt.Sprintf("CORRELATE[%d]", i), r)
	}
	for i, w := range n.Wheres {
		dv.visitChild(id, fmt.Sprintf("WHERE[%d]", i), w)
	}
	for i, h := range n.Havings {
		dv.visitChild(id, fmt.Sprintf("HAVING[%d]", i), h)
	}
	for _, s := range n.Stacks {
		dv.visitChild(id, "STACK", s)
	}
	for _, s := range n.Nests {
		dv.visitChild(id, "NEST", s)
	}
	return id
}

func (dv *DotVisitor) VisitJoin(n *nodes.JoinNode) string {
	id := dv.addNode("Join\\n"+n.Type.String(), colorJoin)
	dv.connectToParent(id)
	dv.visitChild(id, "RIGHT", n.Reference)
	for i, c := range n.On {
		dv.visitChild(id, fmt.Sprintf("ON[%d]", i), c)
	}
	return id
}

func (dv *DotVisitor) VisitStack(n *nodes.StackNode) string {
	id := dv.addNode("Stack\\n"+n.Mode.String()+" "+n.Name, colorShape)
	dv.connectToParent(id)
	if n.Key != nil {
		dv.visitChild(id, "KEY", n.Key)
	}
	if n.Value != nil {
		dv.visitChild(id, "VALUE", n.Value)
	}
	dv.visitChild(id, "QUERY", n.Query)
	return id
}

func (dv *DotVisitor) VisitNest(n *nodes.NestNode) string {
	label := "Nest\\n" + n.Name
	if n.Copy {
		label += "\\nCOPY"
	}
	id := dv.addNode(label, colorShape)
	dv.connectToParent(id)
	for i, f := range n.Fields {
		dv.visitChild(id, fmt.Sprintf("FIELD[%d]", i), f)
	}
	for i, k := range n.Keys {
		dv.visitChild(id, fmt.Sprintf("KEY[%d]", i), k)
	}
	return id
}
