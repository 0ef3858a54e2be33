// Package visitors renders a query graph built with the managers package.
package visitors

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bawdo/quarry/internal/quoting"
	"github.com/bawdo/quarry/nodes"
)

// Option configures a visitor at construction time.
type Option func(*DebugVisitor)

// WithIdentQuoting quotes every identifier with q, e.g. ANSI double quotes
// or MySQL backticks.
func WithIdentQuoting(q func(string) string) Option {
	return func(v *DebugVisitor) {
		if q != nil {
			v.quoteIdent = q
		}
	}
}

// WithANSIQuoting quotes identifiers with double quotes.
func WithANSIQuoting() Option { return WithIdentQuoting(quoting.DoubleQuote) }

// WithMySQLQuoting quotes identifiers with backticks.
func WithMySQLQuoting() Option { return WithIdentQuoting(quoting.Backtick) }

// DebugVisitor renders a select as indented pseudo-SQL. The output is a
// diagnostic projection: clause order and AND/OR roles are preserved, but
// it is not meant to be executed.
type DebugVisitor struct {
	quoteIdent func(string) string
}

var _ nodes.Visitor = (*DebugVisitor)(nil)

// NewDebugVisitor creates a debug renderer.
func NewDebugVisitor(opts ...Option) *DebugVisitor {
	v := &DebugVisitor{quoteIdent: func(s string) string { return s }}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *DebugVisitor) VisitTable(n *nodes.Table) string {
	return v.quoteIdent(n.TableName)
}

func (v *DebugVisitor) VisitDerived(n *nodes.Derived) string {
	return v.subquery(n.Query)
}

func (v *DebugVisitor) VisitCorrelated(n *nodes.Correlated) string {
	return v.subquery(n.Query)
}

func (v *DebugVisitor) VisitReference(n *nodes.Reference) string {
	s := n.Source.Accept(v)
	if n.Alias != n.Source.Name() {
		s += " AS " + v.quoteIdent(n.Alias)
	}
	return s
}

// VisitField renders the qualified column. Correlated fields have no
// column of their own and render as their alias.
func (v *DebugVisitor) VisitField(n *nodes.Field) string {
	if n.Reference == nil {
		return v.quoteIdent(n.Column)
	}
	if _, ok := n.Reference.Source.(*nodes.Correlated); ok {
		return v.quoteIdent(n.Alias)
	}
	return v.quoteIdent(n.Reference.Alias) + "." + v.quoteIdent(n.Column)
}

func (v *DebugVisitor) VisitValueClause(n *nodes.ValueClause) string {
	return v.predicate(n.Predicate) + " " + v.value(n.Op, n.Value)
}

func (v *DebugVisitor) VisitFieldClause(n *nodes.FieldClause) string {
	return v.predicate(n.Predicate) + " " + n.Foreign.Accept(v)
}

func (v *DebugVisitor) VisitQueryClause(n *nodes.QueryClause) string {
	return v.predicate(n.Predicate) + " " + v.subquery(n.Query)
}

// VisitGroup renders a single clause bare and several in parentheses. An
// empty group renders as nothing.
func (v *DebugVisitor) VisitGroup(n *nodes.Group) string {
	switch n.Len() {
	case 0:
		return ""
	case 1:
		return n.Clauses[0].Accept(v)
	default:
		return "(" + v.clauses(n.Clauses) + ")"
	}
}

func (v *DebugVisitor) VisitSelectCore(n *nodes.SelectCore) string {
	var lines []string

	head := "SELECT "
	if n.Distinct {
		head += "DISTINCT "
	}
	proj := n.Projection()
	if len(proj) == 0 {
		head += "*"
	} else {
		cols := make([]string, len(proj))
		for i, f := range proj {
			cols[i] = v.projected(f)
		}
		head += strings.Join(cols, ", ")
	}
	lines = append(lines, head)

	if p := n.Primary(); p != nil {
		lines = append(lines, "FROM "+p.Accept(v))
	}
	for _, j := range n.Joins {
		lines = append(lines, j.Accept(v))
	}
	lines = append(lines, v.correlations(n.CorrelatedReferences())...)
	if s := v.clauses(n.Wheres); s != "" {
		lines = append(lines, "WHERE "+s)
	}
	if s := v.clauses(n.Havings); s != "" {
		lines = append(lines, "HAVING "+s)
	}
	for _, s := range n.Stacks {
		lines = append(lines, s.Accept(v))
	}
	for _, s := range n.Nests {
		lines = append(lines, s.Accept(v))
	}
	return strings.Join(lines, "\n")
}

func (v *DebugVisitor) VisitJoin(n *nodes.JoinNode) string {
	s := n.Type.String() + " " + n.Reference.Accept(v)
	if on := v.clauses(n.On); on != "" {
		s += " ON " + on
	}
	return s
}

func (v *DebugVisitor) VisitStack(n *nodes.StackNode) string {
	s := "STACK " + n.Mode.String() + " " + v.quoteIdent(n.Name)
	if n.Key != nil {
		s += " KEY " + n.Key.Accept(v)
	}
	if n.Value != nil {
		s += " VALUE " + n.Value.Accept(v)
	}
	if n.Processor != nil {
		s += " PROCESSED"
	}
	return s + " " + v.subquery(n.Query)
}

func (v *DebugVisitor) VisitNest(n *nodes.NestNode) string {
	s := "NEST " + v.quoteIdent(n.Name)
	if n.Copy {
		s += " COPY"
	}
	s += " (" + v.fieldList(n.Fields) + ")"
	if len(n.Keys) > 0 {
		s += " KEY (" + v.fieldList(n.Keys) + ")"
	}
	lines := append([]string{s}, v.correlations(n.Correlations)...)
	return strings.Join(lines, "\n")
}

// clauses joins a clause list by each clause's own OR flag. The first
// clause's flag is ignored and empty groups are skipped.
func (v *DebugVisitor) clauses(cs []nodes.Clause) string {
	var sb strings.Builder
	for _, c := range cs {
		s := c.Accept(v)
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			if c.IsOr() {
				sb.WriteString(" || ")
			} else {
				sb.WriteString(" && ")
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func (v *DebugVisitor) predicate(p nodes.Predicate) string {
	op := p.Op.Symbol()
	if p.Not {
		if p.Op == nodes.OpEq {
			op = "!="
		} else {
			op = "NOT " + op
		}
	}
	return p.Local.Accept(v) + " " + op
}

func (v *DebugVisitor) projected(f *nodes.Field) string {
	s := f.Accept(v)
	if _, ok := f.Reference.Source.(*nodes.Correlated); ok {
		return s
	}
	if f.Realiased() {
		s += " AS " + v.quoteIdent(f.Alias)
	}
	return s
}

func (v *DebugVisitor) fieldList(fs []*nodes.Field) string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Accept(v)
	}
	return strings.Join(out, ", ")
}

func (v *DebugVisitor) correlations(refs []*nodes.Reference) []string {
	var out []string
	for _, r := range refs {
		out = append(out, "CORRELATE "+r.Source.Accept(v)+" AS "+v.quoteIdent(r.Alias))
	}
	return out
}

func (v *DebugVisitor) subquery(q *nodes.SelectCore) string {
	if q == nil {
		return "()"
	}
	return "(\n" + indent(q.Accept(v)) + "\n)"
}

// value renders a literal. Between takes a two-element slice, other
// slices render as a parenthesised list.
func (v *DebugVisitor) value(op nodes.Operator, val any) string {
	if val == nil {
		return "NULL"
	}
	rv := reflect.ValueOf(val)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = v.value(nodes.OpEq, rv.Index(i).Interface())
		}
		if op == nodes.OpBetween && len(items) == 2 {
			return items[0] + " AND " + items[1]
		}
		return "(" + strings.Join(items, ", ") + ")"
	}
	switch x := val.(type) {
	case string:
		return "'" + quoting.EscapeString(x) + "'"
	case []byte:
		return "'" + quoting.EscapeString(string(x)) + "'"
	case fmt.Stringer:
		return "'" + quoting.EscapeString(x.String()) + "'"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// indent prefixes every line of s with two spaces.
func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
