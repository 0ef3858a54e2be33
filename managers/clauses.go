package managers

import (
	"reflect"
	"strings"

	"github.com/bawdo/quarry/nodes"
)

// splitAs splits "name AS alias" (case-insensitive) into its parts.
func splitAs(name string) (string, string) {
	lower := strings.ToLower(name)
	if i := strings.LastIndex(lower, " as "); i >= 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+len(" as "):])
	}
	return strings.TrimSpace(name), ""
}

// project resolves name locally and appends it to its reference's
// projection.
func project(sources *nodes.SourceManager, name string) error {
	local, alias := splitAs(name)
	var (
		f   *nodes.Field
		err error
	)
	if alias != "" {
		f, err = sources.RealiasField(local, alias)
	} else {
		f, err = sources.FindLocalField(local)
	}
	if err != nil {
		return err
	}
	return f.Reference.Project(f)
}

func predicate(sources *nodes.SourceManager, local, op string, or bool) (nodes.Predicate, error) {
	if sources == nil {
		return nodes.Predicate{}, nodes.Logicf("clause on %q has no owning query", local)
	}
	f, err := sources.FindLocalField(local)
	if err != nil {
		return nodes.Predicate{}, err
	}
	o, not, err := nodes.ParseOperator(op)
	if err != nil {
		return nodes.Predicate{}, err
	}
	return nodes.Predicate{Local: f, Op: o, Not: not, Or: or}, nil
}

func valueClause(sources *nodes.SourceManager, local, op string, value any, or bool) (nodes.Clause, error) {
	p, err := predicate(sources, local, op, or)
	if err != nil {
		return nil, err
	}
	if p.Op == nodes.OpBetween && !isPair(value) {
		return nil, nodes.Logicf("between on %q needs a two-element slice or array, got %T", local, value)
	}
	return &nodes.ValueClause{Predicate: p, Value: value}, nil
}

// isPair reports whether value is a slice or array of exactly two elements.
func isPair(value any) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 2
	}
	return false
}

func fieldClause(sources *nodes.SourceManager, local, op, foreign string, or bool, exclude string) (nodes.Clause, error) {
	p, err := predicate(sources, local, op, or)
	if err != nil {
		return nil, err
	}
	f, err := sources.FindForeignField(foreign, exclude)
	if err != nil {
		return nil, err
	}
	return &nodes.FieldClause{Predicate: p, Foreign: f}, nil
}

// openSelect starts a select over the source named by field's prefix, or
// over the parent's primary source when field is a bare column, and
// projects field's column. The new manager escalates to the parent's.
func openSelect(parent Builder, e *env, field, prefix string) *SelectManager {
	srcName, column := nodes.SplitName(field)
	var (
		src nodes.Source
		err error
	)
	if srcName == "" {
		if p := parent.Primary(); p != nil {
			src = p.Source
		} else {
			err = nodes.Logicf("no source for field %q", field)
		}
	} else {
		src, err = e.resolveSource(parent.Sources(), srcName)
	}
	if src == nil {
		src = nodes.NewTable(srcName)
	}
	alias := ""
	if prefix != "" {
		alias = prefix + "_" + src.Name()
	}
	sub := newSelectManager(e, src, alias)
	sub.Primary().Prefix = prefix
	sub.addError(err)
	if err == nil && column != "" && column != "*" {
		sub.addError(project(sub.Sources(), column))
	}
	sub.addError(sub.Sources().SetParent(parent.Sources()))
	return sub
}

// openClauseSelect opens a sub-select whose result the local field is
// compared against once EndClause fires.
func openClauseSelect(parent Builder, e *env, mode Mode, local, op, field string, or, distinct bool) *SelectManager {
	sub := openSelect(parent, e, field, "")
	sub.Core.Distinct = distinct
	p, err := predicate(parent.Sources(), local, op, or)
	sub.addError(err)
	fin := func(child Builder) (nodes.Clause, error) {
		s, ok := child.(*SelectManager)
		if !ok {
			return nil, nodes.UnexpectedTypef("clause sub-query must be a select, got %T", child)
		}
		return &nodes.QueryClause{Predicate: p, Query: s.Core}, nil
	}
	sub.addError(sub.link.AsSubQuery(parent, mode, fin))
	return sub
}

// openCorrelation opens a correlated select whose references carry a
// process-unique prefix so they never collide with the parent's aliases.
func openCorrelation(parent Builder, e *env, field string) *SelectManager {
	sub := openSelect(parent, e, field, nodes.UniqueAlias("c"))
	sub.addError(sub.link.AsSubQuery(parent, ModeCorrelation, nil))
	if ref := sub.Primary(); sub.link.IsSourceDeepNested(ref) {
		sub.addError(nodes.Logicf("correlation %q shadows a source of an enclosing query", ref.Alias))
	}
	return sub
}

// addCorrelation registers sub as a correlated reference carrying a single
// synthetic field.
func addCorrelation(e *env, sources *nodes.SourceManager, sub *SelectManager, alias string) error {
	if alias == "" {
		alias = sub.Primary().Prefix
	}
	if alias == "" {
		alias = nodes.UniqueAlias("correlation")
	}
	ref := nodes.NewReference(nodes.NewCorrelated(sub.Core, alias), alias)
	f, _ := ref.Field(alias)
	if err := ref.Project(f); err != nil {
		return err
	}
	if err := sources.AddReference(ref); err != nil {
		return err
	}
	e.logger.Debug("correlation attached", zapAlias(alias))
	return nil
}

// endClause runs the finalizer of a where/having child and hands the
// resulting clause to its parent.
func endClause(child Builder, link *Linkage, prerequisite string) (Builder, error) {
	mode := link.Mode()
	if mode != ModeWhere && mode != ModeHaving {
		return nil, nodes.Logicf("not in a recognized clause mode (mode %s)", mode)
	}
	fin := link.Finalizer()
	if fin == nil {
		return nil, nodes.Logicf("not in a recognized clause mode: no finalizer registered")
	}
	parent := link.ParentQuery()
	if parent == nil {
		return nil, nodes.Logicf("clause has no parent query")
	}
	if err := child.Err(); err != nil {
		return nil, err
	}
	clause, err := fin(child)
	if err != nil {
		return nil, err
	}
	if clause != nil {
		switch {
		case prerequisite != "":
			p, ok := parent.(PrerequisiteProvider)
			if !ok {
				return nil, nodes.UnexpectedTypef("%T does not accept prerequisites", parent)
			}
			g, ok := clause.(*nodes.Group)
			if !ok {
				g = &nodes.Group{Clauses: []nodes.Clause{clause}}
			}
			err = p.AddPrerequisite(prerequisite, g)
		case mode == ModeWhere:
			p, ok := parent.(WhereClauseProvider)
			if !ok {
				return nil, nodes.UnexpectedTypef("%T does not accept where clauses", parent)
			}
			err = p.AddWhereClause(clause)
		default:
			p, ok := parent.(HavingClauseProvider)
			if !ok {
				return nil, nodes.UnexpectedTypef("%T does not accept having clauses", parent)
			}
			err = p.AddHavingClause(clause)
		}
		if err != nil {
			return nil, err
		}
	}
	link.consume()
	return parent, nil
}

func optional(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
