package nodes

import "github.com/google/uuid"

// Source is a queryable origin: a table, a derived query or a correlated
// query.
type Source interface {
	Node
	SourceID() string
	Name() string
	Columns() []string
	HasColumn(name string) bool
}

// Table is a named source with a declared column list.
type Table struct {
	TableName string
	columns   []string
	index     map[string]struct{}
}

// NewTable creates a table source with the given columns.
func NewTable(name string, columns ...string) *Table {
	t := &Table{TableName: name, index: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		if _, ok := t.index[c]; ok {
			continue
		}
		t.index[c] = struct{}{}
		t.columns = append(t.columns, c)
	}
	return t
}

func (t *Table) Accept(v Visitor) string { return v.VisitTable(t) }

func (t *Table) SourceID() string { return "table:" + t.TableName }

func (t *Table) Name() string { return t.TableName }

func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Derived wraps a finished select so it can act as the source of another
// query (a derived table). Its columns are the aliases the inner query
// projects.
type Derived struct {
	id    string
	Query *SelectCore
}

// NewDerived wraps query as a derived source.
func NewDerived(query *SelectCore) *Derived {
	return &Derived{id: "derived:" + uuid.NewString(), Query: query}
}

func (d *Derived) Accept(v Visitor) string { return v.VisitDerived(d) }

func (d *Derived) SourceID() string { return d.id }

func (d *Derived) Name() string { return "derived" }

func (d *Derived) Columns() []string {
	var out []string
	for _, f := range d.Query.Projection() {
		out = append(out, f.Alias)
	}
	return out
}

func (d *Derived) HasColumn(name string) bool {
	for _, f := range d.Query.Projection() {
		if f.Alias == name {
			return true
		}
	}
	return false
}

// Correlated wraps a finished select that yields one scalar per outer row.
// It exposes a single synthetic column.
type Correlated struct {
	id     string
	Column string
	Query  *SelectCore
}

// NewCorrelated wraps query as a correlated source exposing column.
func NewCorrelated(query *SelectCore, column string) *Correlated {
	return &Correlated{id: "correlated:" + uuid.NewString(), Column: column, Query: query}
}

func (c *Correlated) Accept(v Visitor) string { return v.VisitCorrelated(c) }

func (c *Correlated) SourceID() string { return c.id }

func (c *Correlated) Name() string { return c.Column }

func (c *Correlated) Columns() []string { return []string{c.Column} }

func (c *Correlated) HasColumn(name string) bool { return name == c.Column }
