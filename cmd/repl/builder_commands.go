package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bawdo/quarry/managers"
	"github.com/bawdo/quarry/nodes"
)

// --- query roots ---

func (s *Session) cmdFrom(args string) error {
	table, alias := cutWord(args)
	if table == "" {
		return errors.New("usage: from <table> [alias]")
	}
	m := s.query.FromTable(table, alias)
	if err := m.Err(); err != nil {
		return err
	}
	s.setRoot(m, "select", true)
	s.printf("  Selecting from %s\n", m.Primary().Alias)
	return nil
}

// cmdSelect projects fields on the open select, join or nest. Without an
// open query it starts one from the first field's source.
func (s *Session) cmdSelect(args string) error {
	fields := splitFields(args)
	if len(fields) == 0 {
		return errors.New("usage: select <field>[, <field> ...]")
	}
	f, err := s.top()
	if errors.Is(err, errNoQuery) {
		m := s.query.Select(fields...)
		if err := m.Err(); err != nil {
			return err
		}
		s.setRoot(m, "select", true)
		s.printf("  Selecting from %s\n", m.Primary().Alias)
		return nil
	}
	switch f.kind {
	case frameJoin:
		err = apply(f.join, func() { f.join.Select(fields...) })
	case frameNest:
		err = apply(f.nest, func() { f.nest.AddFields(fields...) })
	case frameSelect:
		err = apply(f.sel, func() { f.sel.Select(fields...) })
	default:
		return fmt.Errorf("cannot select inside %s", f.label)
	}
	if err != nil {
		return err
	}
	s.printf("  Projected %s\n", strings.Join(fields, ", "))
	return nil
}

func (s *Session) cmdDistinct() error {
	m, err := s.currentSelect()
	if err != nil {
		return err
	}
	m.Distinct()
	s.printf("  DISTINCT enabled\n")
	return nil
}

// cmdDerive opens a derivation over table. It must be the first command
// of a query; 'end derivation' turns it into the source of a new select.
func (s *Session) cmdDerive(args string) error {
	if len(s.frames) > 0 {
		return errors.New("derive must start a new query (use 'reset' first)")
	}
	table, rest := cutWord(args)
	if table == "" {
		return errors.New("usage: derive <table> [field, ...]")
	}
	m := s.query.Derive(table, "", splitFields(rest)...)
	if err := m.Err(); err != nil {
		return err
	}
	s.setRoot(m, "derivation", false)
	s.printf("  Deriving from %s (finish with 'end derivation <alias>')\n", table)
	return nil
}

func (s *Session) cmdEndDerivation(args string) error {
	f, err := s.top()
	if err != nil {
		return err
	}
	if f.label != "derivation" || len(s.frames) != 1 {
		return errors.New("no derivation is open")
	}
	outer, err := f.sel.EndDerivation(strings.TrimSpace(args))
	if err != nil {
		return err
	}
	s.setRoot(outer, "select", true)
	s.printf("  Selecting from derived %s\n", outer.Primary().Alias)
	return nil
}

// --- where / having ---

func (s *Session) cmdWhere(args string, or bool) error {
	c, err := parseCondition(args)
	if err != nil {
		return fmt.Errorf("usage: where <field> <op> <value>: %w", err)
	}
	f, err := s.top()
	if err != nil {
		return err
	}
	switch f.kind {
	case frameSelect:
		err = apply(f.sel, func() {
			if or {
				f.sel.OrWhere(c.field, c.op, c.value)
			} else {
				f.sel.Where(c.field, c.op, c.value)
			}
		})
	case frameGroup:
		err = apply(f.group, func() {
			if or {
				f.group.OrWhere(c.field, c.op, c.value)
			} else {
				f.group.Where(c.field, c.op, c.value)
			}
		})
	case frameJoin:
		err = apply(f.join, func() {
			if or {
				f.join.OrOnValue(c.field, c.op, c.value)
			} else {
				f.join.OnValue(c.field, c.op, c.value)
			}
		})
	default:
		return fmt.Errorf("where is not available inside %s", f.label)
	}
	if err != nil {
		return err
	}
	s.printf("  Added condition on %s\n", c.field)
	return nil
}

func (s *Session) cmdWhereField(args string, or bool) error {
	c, err := parseFieldCondition(args)
	if err != nil {
		return fmt.Errorf("usage: where field <field> <op> <field>: %w", err)
	}
	f, err := s.top()
	if err != nil {
		return err
	}
	switch f.kind {
	case frameSelect:
		err = apply(f.sel, func() {
			if or {
				f.sel.OrWhereField(c.local, c.op, c.foreign)
			} else {
				f.sel.WhereField(c.local, c.op, c.foreign)
			}
		})
	case frameGroup:
		err = apply(f.group, func() {
			if or {
				f.group.OrWhereField(c.local, c.op, c.foreign)
			} else {
				f.group.WhereField(c.local, c.op, c.foreign)
			}
		})
	case frameJoin:
		return s.cmdOn(args, or)
	default:
		return fmt.Errorf("where field is not available inside %s", f.label)
	}
	if err != nil {
		return err
	}
	s.printf("  Added condition %s %s %s\n", c.local, c.op, c.foreign)
	return nil
}

func (s *Session) cmdHaving(args string, or bool) error {
	c, err := parseCondition(args)
	if err != nil {
		return fmt.Errorf("usage: having <field> <op> <value>: %w", err)
	}
	m, err := s.currentSelect()
	if err != nil {
		return err
	}
	err = apply(m, func() {
		if or {
			m.OrHaving(c.field, c.op, c.value)
		} else {
			m.Having(c.field, c.op, c.value)
		}
	})
	if err != nil {
		return err
	}
	s.printf("  Added having condition on %s\n", c.field)
	return nil
}

func (s *Session) cmdPrerequisite(args string) error {
	name, rest := cutWord(args)
	if name == "" {
		return errors.New("usage: prerequisite <name> <field> <op> <value>")
	}
	c, err := parseCondition(rest)
	if err != nil {
		return fmt.Errorf("usage: prerequisite <name> <field> <op> <value>: %w", err)
	}
	m, err := s.currentSelect()
	if err != nil {
		return err
	}
	if err := apply(m, func() { m.Prerequisite(name, c.field, c.op, c.value) }); err != nil {
		return err
	}
	s.printf("  Prerequisite %q set\n", name)
	return nil
}

// --- groups ---

// cmdBeginGroup opens a where or having group on the open select, or a
// nested group inside an open group. On a join it opens an ON group.
func (s *Session) cmdBeginGroup(having, or bool) error {
	f, err := s.top()
	if err != nil {
		return err
	}
	var g *managers.ClauseGroup
	switch {
	case f.kind == frameSelect && having && or:
		g = f.sel.BeginOrHaving()
	case f.kind == frameSelect && having:
		g = f.sel.BeginHaving()
	case f.kind == frameSelect && or:
		g = f.sel.BeginOrWhere()
	case f.kind == frameSelect:
		g = f.sel.BeginWhere()
	case f.kind == frameGroup && !having && or:
		g = f.group.BeginOrWhere()
	case f.kind == frameGroup && !having:
		g = f.group.BeginWhere()
	case f.kind == frameJoin && !having && or:
		g = f.join.BeginOrOn()
	case f.kind == frameJoin && !having:
		g = f.join.BeginOn()
	default:
		return fmt.Errorf("cannot open a group inside %s", f.label)
	}
	if err := g.Err(); err != nil {
		return err
	}
	label := "group"
	if or {
		label = "or group"
	}
	s.push(&frame{kind: frameGroup, label: label, group: g})
	s.printf("  Opened %s (finish with 'end clause')\n", label)
	return nil
}

// cmdWhereSelect opens a sub-select whose result the local field is
// compared against.
func (s *Session) cmdWhereSelect(args string, having, or, distinct bool) error {
	c, err := parseFieldCondition(args)
	if err != nil {
		return fmt.Errorf("usage: where select <field> <op> <source.field>: %w", err)
	}
	f, err := s.top()
	if err != nil {
		return err
	}
	var sub *managers.SelectManager
	switch {
	case f.kind == frameSelect && having:
		sub = havingSelect(f.sel, c, or, distinct)
	case f.kind == frameSelect:
		sub = whereSelect(f.sel, c, or, distinct)
	case f.kind == frameGroup && !having:
		sub = groupSelect(f.group, c, or, distinct)
	default:
		return fmt.Errorf("cannot open a sub-select inside %s", f.label)
	}
	if err := sub.Err(); err != nil {
		return err
	}
	label := "where select"
	if having {
		label = "having select"
	}
	s.push(&frame{kind: frameSelect, label: label, sel: sub})
	s.printf("  Opened %s on %s (finish with 'end clause')\n", label, sub.Primary().Alias)
	return nil
}

func whereSelect(m *managers.SelectManager, c fieldCondition, or, distinct bool) *managers.SelectManager {
	switch {
	case or && distinct:
		return m.OrWhereSelectDistinct(c.local, c.op, c.foreign)
	case or:
		return m.OrWhereSelect(c.local, c.op, c.foreign)
	case distinct:
		return m.WhereSelectDistinct(c.local, c.op, c.foreign)
	default:
		return m.WhereSelect(c.local, c.op, c.foreign)
	}
}

func havingSelect(m *managers.SelectManager, c fieldCondition, or, distinct bool) *managers.SelectManager {
	switch {
	case or && distinct:
		return m.OrHavingSelectDistinct(c.local, c.op, c.foreign)
	case or:
		return m.OrHavingSelect(c.local, c.op, c.foreign)
	case distinct:
		return m.HavingSelectDistinct(c.local, c.op, c.foreign)
	default:
		return m.HavingSelect(c.local, c.op, c.foreign)
	}
}

func groupSelect(g *managers.ClauseGroup, c fieldCondition, or, distinct bool) *managers.SelectManager {
	switch {
	case or && distinct:
		return g.OrWhereSelectDistinct(c.local, c.op, c.foreign)
	case or:
		return g.OrWhereSelect(c.local, c.op, c.foreign)
	case distinct:
		return g.WhereSelectDistinct(c.local, c.op, c.foreign)
	default:
		return g.WhereSelect(c.local, c.op, c.foreign)
	}
}

// cmdEndClause closes the open group or clause sub-select.
func (s *Session) cmdEndClause() error {
	f, err := s.top()
	if err != nil {
		return err
	}
	switch {
	case f.kind == frameGroup:
		_, err = f.group.EndClause()
	case f.kind == frameSelect && (f.label == "where select" || f.label == "having select"):
		_, err = f.sel.EndClause()
	default:
		return errors.New("no group or clause sub-select is open")
	}
	if err != nil {
		return err
	}
	s.pop()
	s.printf("  Closed %s\n", f.label)
	return nil
}

// --- joins ---

func (s *Session) cmdJoin(args string, jt nodes.JoinType) error {
	fields := splitFields(args)
	if len(fields) == 0 {
		return errors.New("usage: join <source.field>[, <source.field> ...]")
	}
	m, err := s.currentSelect()
	if err != nil {
		return err
	}
	j := m.JoinWith(jt, fields...)
	if err := j.Err(); err != nil {
		return err
	}
	s.push(&frame{kind: frameJoin, label: "join " + j.Primary().Alias, join: j})
	s.printf("  %s %s (finish with 'end join [alias]')\n", jt, j.Primary().Alias)
	return nil
}

func (s *Session) cmdOn(args string, or bool) error {
	c, err := parseFieldCondition(args)
	if err != nil {
		return fmt.Errorf("usage: on <field> <op> <field>: %w", err)
	}
	f, err := s.top()
	if err != nil {
		return err
	}
	if f.kind != frameJoin {
		return errors.New("no join is open")
	}
	err = apply(f.join, func() {
		if or {
			f.join.OrOn(c.local, c.op, c.foreign)
		} else {
			f.join.On(c.local, c.op, c.foreign)
		}
	})
	if err != nil {
		return err
	}
	s.printf("  ON %s %s %s\n", c.local, c.op, c.foreign)
	return nil
}

func (s *Session) cmdEndJoin(args string) error {
	f, err := s.top()
	if err != nil {
		return err
	}
	if f.kind != frameJoin {
		return errors.New("no join is open")
	}
	if _, err := f.join.EndJoin(strings.TrimSpace(args)); err != nil {
		return err
	}
	s.pop()
	s.printf("  Joined %s\n", f.join.Primary().Alias)
	return nil
}

// --- correlations ---

func (s *Session) cmdCorrelate(args string) error {
	field := strings.TrimSpace(args)
	if field == "" {
		return errors.New("usage: correlate <source.field>")
	}
	f, err := s.top()
	if err != nil {
		return err
	}
	var sub *managers.SelectManager
	switch f.kind {
	case frameSelect:
		sub = f.sel.Correlate(field)
	case frameNest:
		sub = f.nest.Correlate(field)
	default:
		return fmt.Errorf("cannot correlate inside %s", f.label)
	}
	if err := sub.Err(); err != nil {
		return err
	}
	s.push(&frame{kind: frameSelect, label: "correlation", sel: sub})
	s.printf("  Correlating %s (finish with 'end correlation [alias]')\n", field)
	return nil
}

func (s *Session) cmdEndCorrelation(args string) error {
	f, err := s.top()
	if err != nil {
		return err
	}
	if f.label != "correlation" {
		return errors.New("no correlation is open")
	}
	if _, err := f.sel.EndCorrelation(strings.TrimSpace(args)); err != nil {
		return err
	}
	s.pop()
	s.printf("  Correlation attached\n")
	return nil
}

// --- stacks ---

func (s *Session) cmdStack(args string) error {
	field := strings.TrimSpace(args)
	if field == "" {
		return errors.New("usage: stack <source.field>")
	}
	m, err := s.currentSelect()
	if err != nil {
		return err
	}
	sub := m.BeginStack(field)
	if err := sub.Err(); err != nil {
		return err
	}
	s.push(&frame{kind: frameSelect, label: "stack", sel: sub})
	s.printf("  Stacking %s (finish with 'as one|many|list|value <name>')\n", field)
	return nil
}

// cmdAs finishes the open stack in the given mode. args is the stack name
// followed by the mode's optional fields.
func (s *Session) cmdAs(mode nodes.StackMode, args string) error {
	f, err := s.top()
	if err != nil {
		return err
	}
	if f.label != "stack" {
		return errors.New("no stack is open")
	}
	words := strings.Fields(args)
	if len(words) == 0 {
		return fmt.Errorf("usage: as %s <name> ...", mode)
	}
	name, rest := words[0], words[1:]
	switch mode {
	case nodes.StackOne:
		_, err = f.sel.AsOne(name)
	case nodes.StackMany:
		_, err = f.sel.AsMany(name, rest...)
	case nodes.StackList:
		if len(rest) == 0 {
			return errors.New("usage: as list <name> <key> [value]")
		}
		_, err = f.sel.AsList(name, rest[0], rest[1:]...)
	default:
		_, err = f.sel.AsValue(name, rest...)
	}
	if err != nil {
		return err
	}
	s.pop()
	s.printf("  Stack %q attached as %s\n", name, mode)
	return nil
}

// --- nests ---

func (s *Session) cmdNest(args string) error {
	m, err := s.currentSelect()
	if err != nil {
		return err
	}
	n := m.Nest(splitFields(args)...)
	if err := n.Err(); err != nil {
		return err
	}
	s.push(&frame{kind: frameNest, label: "nest", nest: n})
	s.printf("  Nesting (finish with 'end nest <name> [copy]')\n")
	return nil
}

func (s *Session) cmdKey(args string) error {
	f, err := s.top()
	if err != nil {
		return err
	}
	if f.kind != frameNest {
		return errors.New("no nest is open")
	}
	fields := splitFields(args)
	if err := apply(f.nest, func() { f.nest.WithKey(fields...) }); err != nil {
		return err
	}
	s.printf("  Nest key %s\n", strings.Join(fields, ", "))
	return nil
}

func (s *Session) cmdEndNest(args string) error {
	f, err := s.top()
	if err != nil {
		return err
	}
	if f.kind != frameNest {
		return errors.New("no nest is open")
	}
	name, rest := cutWord(args)
	if strings.EqualFold(rest, "copy") {
		_, err = f.nest.AsCopy(name)
	} else if rest == "" {
		_, err = f.nest.As(name)
	} else {
		return errors.New("usage: end nest <name> [copy]")
	}
	if err != nil {
		return err
	}
	s.pop()
	s.printf("  Nest %q attached\n", name)
	return nil
}
