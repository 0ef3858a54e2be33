package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bawdo/quarry/internal/quoting"
	"github.com/bawdo/quarry/schema"
	"github.com/bawdo/quarry/visitors"
)

// --- output ---

// cmdShow renders the root select. Builders still open above it are not
// part of the root until they are ended.
func (s *Session) cmdShow() error {
	out, err := s.render(s.debugVisitor())
	if err != nil {
		return err
	}
	s.printf("%s\n", out)
	if open := len(s.frames) - 1; open > 0 {
		s.printf("  (%d open builder(s) not yet attached; see 'frames')\n", open)
	}
	return nil
}

func (s *Session) cmdFrames() error {
	if len(s.frames) == 0 {
		return errNoQuery
	}
	for i, f := range s.frames {
		marker := " "
		if i == len(s.frames)-1 {
			marker = "*"
		}
		s.printf("  %s %d: %s\n", marker, i, f.label)
	}
	return nil
}

// cmdDot prints the root select as Graphviz DOT, or writes it to a file.
func (s *Session) cmdDot(args string) error {
	dv := visitors.NewDotVisitor()
	if _, err := s.render(dv); err != nil {
		return err
	}
	fpath := strings.TrimSpace(args)
	if fpath == "" {
		s.printf("%s", dv.ToDot())
		return nil
	}
	if err := os.WriteFile(fpath, []byte(dv.ToDot()), 0600); err != nil {
		return fmt.Errorf("failed to write DOT file: %w", err)
	}
	s.printf("  Wrote DOT to %s\n", fpath)
	return nil
}

func (s *Session) cmdQuote(args string) error {
	q, err := quoting.ByName(strings.TrimSpace(args))
	if err != nil {
		return err
	}
	s.quote = q
	s.printf("  Quoting: %s\n", strings.TrimSpace(args))
	return nil
}

// --- history ---

func (s *Session) cmdReset() error {
	s.history = nil
	s.resetQuery()
	s.printf("  Query cleared\n")
	return nil
}

// cmdUndo drops the last builder command and rebuilds the query from the
// ones before it.
func (s *Session) cmdUndo() error {
	if len(s.history) == 0 {
		return errors.New("nothing to undo")
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	if err := s.replay(); err != nil {
		return err
	}
	s.printf("  Undid: %s\n", last)
	return nil
}

// --- catalog ---

// cmdTable registers a table with its columns. Without columns they are
// read from the connected database.
func (s *Session) cmdTable(args string) error {
	name, rest := cutWord(args)
	if name == "" {
		return errors.New("usage: table <name> <column>[, <column> ...]")
	}
	columns := splitFields(rest)
	if len(columns) == 0 {
		if s.intro == nil {
			return errors.New("usage: table <name> <column>[, <column> ...] (or connect to read columns)")
		}
		cols, err := s.intro.Columns(name)
		if err != nil {
			return err
		}
		columns = cols
	}
	s.tables.Define(name, columns...)
	s.printf("  Registered table %q (%s)\n", name, strings.Join(columns, ", "))
	return nil
}

// cmdSchema loads a YAML schema file into the session catalog. Tables it
// defines replace registered tables of the same name.
func (s *Session) cmdSchema(args string) error {
	path := strings.TrimSpace(args)
	if path == "" {
		return errors.New("usage: schema <file.yaml>")
	}
	n, err := s.loadSchema(path)
	if err != nil {
		return err
	}
	s.printf("  Loaded %d table(s) from %s\n", n, path)
	return nil
}

func (s *Session) loadSchema(path string) (int, error) {
	cat, err := schema.LoadFile(path)
	if err != nil {
		return 0, err
	}
	names := cat.Tables()
	for _, name := range names {
		src, err := cat.Source(name)
		if err != nil {
			return 0, err
		}
		s.tables.Define(name, src.Columns()...)
	}
	return len(names), nil
}

func (s *Session) cmdTables() error {
	names := s.tables.Tables()
	var remote []string
	if s.intro != nil {
		remote = s.intro.Tables()
	}
	if len(names) == 0 && len(remote) == 0 {
		s.printf("  No tables registered\n")
		return nil
	}
	for _, name := range names {
		src, _ := s.tables.Source(name)
		s.printf("  table: %s (%s)\n", name, strings.Join(src.Columns(), ", "))
	}
	for _, name := range remote {
		s.printf("  db:    %s\n", name)
	}
	return nil
}

func (s *Session) cmdHelp() {
	s.printf("%s\n", `
  Query Building:
    from <table> [alias]          Start a new query
    select <fields>               Project fields (table.col, col AS alias); starts a query if none
    distinct                      Enable DISTINCT
    where <field> <op> <value>    Add a condition (or where ...)
    where field <f> <op> <f>      Compare two fields (or where field ...)
    having <field> <op> <value>   Add a HAVING condition (or having ...)
    prerequisite <name> <f> <op> <v>  Set a named prerequisite
    derive <table> [fields]       Start a derivation; end derivation [alias]

  Groups and sub-selects (finish with 'end clause'):
    begin where | begin or where | begin having | begin or having
    where select <f> <op> <table.col>        also: or where select, where select distinct
    having select <f> <op> <table.col>       also: or having select

  Joins (finish with 'end join [alias]'):
    join <table.col, ...>         INNER JOIN (left/right/full/cross join)
    on <f> <op> <f>               Join condition (or on ...); where adds value conditions

  Correlations, stacks and nests:
    correlate <table.col>         Open a correlated select; end correlation [alias]
    stack <table.col>             Open a stack; as one|many|list|value <name> ...
    nest [fields]                 Open a nest; key <fields>; end nest <name> [copy]

  Catalog and database:
    table <name> <cols>           Register a table
    schema <file.yaml>            Load tables from a YAML schema
    tables                        List known tables
    engine <name>                 Engine for connect (postgres, mysql, sqlite)
    connect [dsn] | disconnect    Use a database as a fallback catalog

  Output:
    show                          Render the root select
    frames                        List open builders
    dot [file]                    Graphviz DOT of the root select
    quote none|ansi|mysql         Identifier quoting for show

  Session:
    undo | reset                  Drop the last builder command | clear the query
    plugin softdelete [col]                Soft-delete (default: deleted_at)
    plugin softdelete <col> on <tables..>  Soft-delete for specific tables
    plugin softdelete <t.col, ...>         Per-table soft-delete columns
    plugin off [name] | plugins
    exit | quit`)
}
