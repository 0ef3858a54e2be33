package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"go.uber.org/zap"

	"github.com/bawdo/quarry/managers"
	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/schema"
	"github.com/bawdo/quarry/visitors"
)

var errNoQuery = errors.New("no query defined (use 'from <table>' or 'select <table.column>' first)")

// frameKind says which builder a frame holds.
type frameKind int

const (
	frameSelect frameKind = iota
	frameJoin
	frameGroup
	frameNest
)

// frame is one open builder. The bottom frame is the root select; every
// begin-style command pushes a frame and the matching end command pops it.
type frame struct {
	kind  frameKind
	label string
	sel   *managers.SelectManager
	join  *managers.JoinManager
	group *managers.ClauseGroup
	nest  *managers.NestManager
}

func (f *frame) builder() managers.Builder {
	switch f.kind {
	case frameJoin:
		return f.join
	case frameGroup:
		return f.group
	case frameNest:
		return f.nest
	default:
		return f.sel
	}
}

// Session holds the REPL state: the table catalog, an optional database
// connection, the stack of open builders and the enabled plugins.
type Session struct {
	tables      *schema.Catalog
	intro       *schema.Introspector // nil when disconnected
	engine      string
	lastDSN     string // remembers the previous DSN for reconnect
	quote       func(string) string
	logger      *zap.Logger
	query       *managers.Query
	frames      []*frame
	history     []string // builder commands since the last reset, replayed on undo
	replaying   bool
	plugins     pluginSet
	commands    []commandEntry // command registry (sorted by prefix length desc)
	rl          *readline.Instance
	out         io.Writer // destination for REPL output (default os.Stdout)
}

var _ nodes.Catalog = (*Session)(nil)

// NewSession creates a session for engine. A nil logger disables logging.
func NewSession(engine string, rl *readline.Instance, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		tables: schema.NewCatalog(),
		engine: engine,
		quote:  func(v string) string { return v },
		logger: logger,
		rl:     rl,
		out:    os.Stdout,
	}
	s.resetQuery()
	s.initCommands()
	return s
}

// Source resolves names against the registered tables first and the
// connected database second.
func (s *Session) Source(name string) (nodes.Source, error) {
	chain := schema.Chain{s.tables}
	if s.intro != nil {
		chain = append(chain, s.intro)
	}
	return chain.Source(name)
}

// Execute parses and runs a single REPL command. A failing builder
// command is rolled back by replaying the history that preceded it.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	lower := strings.ToLower(line)

	for _, cmd := range s.commands {
		var args string
		if strings.HasSuffix(cmd.prefix, " ") {
			if !strings.HasPrefix(lower, cmd.prefix) {
				continue
			}
			args = line[len(cmd.prefix):]
		} else if lower != cmd.prefix {
			continue
		}

		err := cmd.handler(args)
		if !cmd.records || s.replaying {
			return err
		}
		if err != nil {
			if rerr := s.replay(); rerr != nil {
				return errors.Join(err, fmt.Errorf("rollback: %w", rerr))
			}
			return err
		}
		s.history = append(s.history, line)
		return nil
	}

	word := strings.Fields(line)[0]
	return fmt.Errorf("unknown command: %s (type 'help' for commands)", word)
}

// resetQuery drops every open builder and starts a new query.
func (s *Session) resetQuery() {
	s.query = managers.NewQuery(managers.WithCatalog(s), managers.WithLogger(s.logger))
	s.frames = nil
}

// replay rebuilds the query from the recorded history with output muted.
func (s *Session) replay() error {
	history := s.history
	out := s.out
	s.resetQuery()
	s.replaying = true
	s.out = io.Discard
	defer func() {
		s.replaying = false
		s.out = out
	}()
	for _, line := range history {
		if err := s.Execute(line); err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
	}
	return nil
}

// --- builder stack ---

func (s *Session) top() (*frame, error) {
	if len(s.frames) == 0 {
		return nil, errNoQuery
	}
	return s.frames[len(s.frames)-1], nil
}

func (s *Session) push(f *frame) {
	s.frames = append(s.frames, f)
}

func (s *Session) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// root returns the bottom select, or nil before any query is started.
func (s *Session) root() *managers.SelectManager {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[0].sel
}

// setRoot replaces the builder stack with m and attaches the enabled
// plugins to it.
func (s *Session) setRoot(m *managers.SelectManager, label string, withPlugins bool) {
	if withPlugins {
		s.plugins.attach(m)
	}
	s.frames = []*frame{{kind: frameSelect, label: label, sel: m}}
}

// currentSelect returns the top frame's select, failing when another kind
// of builder is open.
func (s *Session) currentSelect() (*managers.SelectManager, error) {
	f, err := s.top()
	if err != nil {
		return nil, err
	}
	if f.kind != frameSelect {
		return nil, fmt.Errorf("the open builder is %s; finish it first", f.label)
	}
	return f.sel, nil
}

// apply runs a fluent call and reports the error it recorded, if any.
func apply(b managers.Builder, fn func()) error {
	fn()
	return b.Err()
}

// render runs the root select through v with the root's plugins applied.
func (s *Session) render(v nodes.Visitor) (string, error) {
	root := s.root()
	if root == nil {
		return "", errNoQuery
	}
	return root.Render(v)
}

func (s *Session) debugVisitor() *visitors.DebugVisitor {
	return visitors.NewDebugVisitor(visitors.WithIdentQuoting(s.quote))
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
