// Package softdelete provides a Transformer that appends a
// "column = NULL" condition to selects, filtering out soft-deleted rows.
//
// By default it adds deleted_at = NULL for every table reference in the
// FROM and JOIN positions whose table declares the column. Both the column
// name and the set of tables can be customised via options.
//
// # Basic usage
//
//	sd := softdelete.New()
//	m := managers.Select([]string{"users.id"}, managers.WithCatalog(cat))
//	m.Use(sd)
//	// SELECT users.id
//	// FROM users
//	// WHERE users.deleted_at = NULL
//
// # Custom column
//
//	sd := softdelete.New(softdelete.WithColumn("removed_at"))
//
// # Restrict to specific tables
//
//	sd := softdelete.New(softdelete.WithTables("users"))
//
// # Per-table columns
//
//	sd := softdelete.New(
//	    softdelete.WithTableColumn("users", "deleted_at"),
//	    softdelete.WithTableColumn("posts", "removed_at"),
//	)
//
// # REPL usage
//
//	quarry> plugin softdelete
//	quarry> plugin softdelete removed_at
//	quarry> plugin off softdelete
package softdelete

import (
	"sort"
	"strings"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/plugins"
)

// DefaultColumn is the column checked when no other is configured.
const DefaultColumn = "deleted_at"

// SoftDelete is a Transformer that appends "column = NULL" conditions for
// a soft-delete column on every referenced table (or a configured subset).
type SoftDelete struct {
	Column string
	// tables maps a table name to its column override. An empty override
	// uses Column. A nil map applies Column to every table.
	tables map[string]string
}

var _ plugins.Transformer = (*SoftDelete)(nil)

// Option configures a SoftDelete transformer.
type Option func(*SoftDelete)

// WithColumn sets the soft-delete column name. Default is "deleted_at".
func WithColumn(name string) Option {
	return func(sd *SoftDelete) { sd.Column = name }
}

// WithTables restricts the plugin to the named tables. Overrides set with
// WithTableColumn are kept.
func WithTables(names ...string) Option {
	return func(sd *SoftDelete) {
		for _, n := range names {
			if _, ok := sd.scope()[n]; !ok {
				sd.tables[n] = ""
			}
		}
	}
}

// WithTableColumn checks column on table, adding table to the scope.
func WithTableColumn(table, column string) Option {
	return func(sd *SoftDelete) { sd.scope()[table] = column }
}

// New creates a SoftDelete transformer with the given options.
func New(opts ...Option) *SoftDelete {
	sd := &SoftDelete{Column: DefaultColumn}
	for _, o := range opts {
		o(sd)
	}
	return sd
}

func (sd *SoftDelete) scope() map[string]string {
	if sd.tables == nil {
		sd.tables = make(map[string]string)
	}
	return sd.tables
}

// TransformSelect appends "column = NULL" to the WHERE list for each
// matching table reference that has the column. Tables without the column
// are left alone, as are references already carrying the check.
func (sd *SoftDelete) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	for _, ref := range plugins.CollectTables(core) {
		if !sd.appliesTo(ref.Name) {
			continue
		}
		f, ok := ref.Reference.Field(sd.columnFor(ref.Name))
		if !ok || hasNullCheck(core.Wheres, f) {
			continue
		}
		core.Wheres = append(core.Wheres, &nodes.ValueClause{
			Predicate: nodes.Predicate{Local: f, Op: nodes.OpEq},
		})
	}
	return core, nil
}

// String describes the configuration, e.g. "column: deleted_at" or
// "orders.archived_at, users.deleted_at".
func (sd *SoftDelete) String() string {
	if sd.tables == nil {
		return "column: " + sd.Column
	}
	pairs := make([]string, 0, len(sd.tables))
	for table := range sd.tables {
		pairs = append(pairs, table+"."+sd.columnFor(table))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}

func (sd *SoftDelete) appliesTo(tableName string) bool {
	if sd.tables == nil {
		return true
	}
	_, ok := sd.tables[tableName]
	return ok
}

func (sd *SoftDelete) columnFor(tableName string) string {
	if col := sd.tables[tableName]; col != "" {
		return col
	}
	return sd.Column
}

func hasNullCheck(wheres []nodes.Clause, f *nodes.Field) bool {
	for _, c := range wheres {
		vc, ok := c.(*nodes.ValueClause)
		if ok && vc.Local == f && vc.Op == nodes.OpEq && !vc.Not && !vc.Or && vc.Value == nil {
			return true
		}
	}
	return false
}
