package main

import (
	"errors"
	"sort"
	"strings"

	"github.com/bawdo/quarry/nodes"
)

// commandEntry maps a REPL prefix to its handler and optional tab-completer.
type commandEntry struct {
	prefix    string
	handler   func(args string) error
	completer func(args string) (completionContext, string) // nil = no arg completion
	records   bool                                          // builder command, replayed on undo
	hidden    bool                                          // excluded from commandNames()
}

// initCommands builds the command registry and sorts by prefix length descending.
func (s *Session) initCommands() {
	s.commands = []commandEntry{
		// --- display ---
		{prefix: "show", handler: func(_ string) error { return s.cmdShow() }},
		{prefix: "frames", handler: func(_ string) error { return s.cmdFrames() }},
		{prefix: "dot ", handler: func(a string) error { return s.cmdDot(a) }},
		{prefix: "dot", handler: func(_ string) error { return s.cmdDot("") }},
		{prefix: "tables", handler: func(_ string) error { return s.cmdTables() }},
		{prefix: "help", handler: func(_ string) error { s.cmdHelp(); return nil }},

		// --- history ---
		{prefix: "reset", handler: func(_ string) error { return s.cmdReset() }},
		{prefix: "undo", handler: func(_ string) error { return s.cmdUndo() }},

		// --- catalog ---
		{prefix: "table ", handler: func(a string) error { return s.cmdTable(a) }, completer: completeTableArgs},
		{prefix: "t ", handler: func(a string) error { return s.cmdTable(a) }, hidden: true},
		{prefix: "schema ", handler: func(a string) error { return s.cmdSchema(a) }},

		// --- query roots ---
		{prefix: "from ", handler: func(a string) error { return s.cmdFrom(a) }, completer: completeTableArgs, records: true},
		{prefix: "select ", handler: func(a string) error { return s.cmdSelect(a) }, completer: completeColumnArgs, records: true},
		{prefix: "derive ", handler: func(a string) error { return s.cmdDerive(a) }, completer: completeTableArgs, records: true},
		{prefix: "end derivation ", handler: func(a string) error { return s.cmdEndDerivation(a) }, records: true},
		{prefix: "end derivation", handler: func(_ string) error { return s.cmdEndDerivation("") }, records: true},
		{prefix: "distinct", handler: func(_ string) error { return s.cmdDistinct() }, records: true},

		// --- conditions (multi-word prefixes) ---
		{prefix: "where select distinct ", handler: func(a string) error { return s.cmdWhereSelect(a, false, false, true) }, completer: completeColumnArgs, records: true},
		{prefix: "or where select distinct ", handler: func(a string) error { return s.cmdWhereSelect(a, false, true, true) }, completer: completeColumnArgs, records: true},
		{prefix: "where select ", handler: func(a string) error { return s.cmdWhereSelect(a, false, false, false) }, completer: completeColumnArgs, records: true},
		{prefix: "or where select ", handler: func(a string) error { return s.cmdWhereSelect(a, false, true, false) }, completer: completeColumnArgs, records: true},
		{prefix: "having select ", handler: func(a string) error { return s.cmdWhereSelect(a, true, false, false) }, completer: completeColumnArgs, records: true},
		{prefix: "or having select ", handler: func(a string) error { return s.cmdWhereSelect(a, true, true, false) }, completer: completeColumnArgs, records: true},
		{prefix: "where field ", handler: func(a string) error { return s.cmdWhereField(a, false) }, completer: completeColumnArgs, records: true},
		{prefix: "or where field ", handler: func(a string) error { return s.cmdWhereField(a, true) }, completer: completeColumnArgs, records: true},
		{prefix: "where ", handler: func(a string) error { return s.cmdWhere(a, false) }, completer: completeColumnArgs, records: true},
		{prefix: "or where ", handler: func(a string) error { return s.cmdWhere(a, true) }, completer: completeColumnArgs, records: true},
		{prefix: "having ", handler: func(a string) error { return s.cmdHaving(a, false) }, completer: completeColumnArgs, records: true},
		{prefix: "or having ", handler: func(a string) error { return s.cmdHaving(a, true) }, completer: completeColumnArgs, records: true},
		{prefix: "prerequisite ", handler: func(a string) error { return s.cmdPrerequisite(a) }, records: true},

		// --- groups ---
		{prefix: "begin where", handler: func(_ string) error { return s.cmdBeginGroup(false, false) }, records: true},
		{prefix: "begin or where", handler: func(_ string) error { return s.cmdBeginGroup(false, true) }, records: true},
		{prefix: "begin having", handler: func(_ string) error { return s.cmdBeginGroup(true, false) }, records: true},
		{prefix: "begin or having", handler: func(_ string) error { return s.cmdBeginGroup(true, true) }, records: true},
		{prefix: "begin on", handler: func(_ string) error { return s.cmdBeginGroup(false, false) }, records: true, hidden: true},
		{prefix: "end clause", handler: func(_ string) error { return s.cmdEndClause() }, records: true},

		// --- joins ---
		{prefix: "left join ", handler: func(a string) error { return s.cmdJoin(a, nodes.LeftOuterJoin) }, completer: completeColumnArgs, records: true},
		{prefix: "outer join ", handler: func(a string) error { return s.cmdJoin(a, nodes.LeftOuterJoin) }, completer: completeColumnArgs, records: true, hidden: true},
		{prefix: "right join ", handler: func(a string) error { return s.cmdJoin(a, nodes.RightOuterJoin) }, completer: completeColumnArgs, records: true},
		{prefix: "full join ", handler: func(a string) error { return s.cmdJoin(a, nodes.FullOuterJoin) }, completer: completeColumnArgs, records: true},
		{prefix: "cross join ", handler: func(a string) error { return s.cmdJoin(a, nodes.CrossJoin) }, completer: completeColumnArgs, records: true},
		{prefix: "join ", handler: func(a string) error { return s.cmdJoin(a, nodes.InnerJoin) }, completer: completeColumnArgs, records: true},
		{prefix: "on ", handler: func(a string) error { return s.cmdOn(a, false) }, completer: completeColumnArgs, records: true},
		{prefix: "or on ", handler: func(a string) error { return s.cmdOn(a, true) }, completer: completeColumnArgs, records: true},
		{prefix: "end join ", handler: func(a string) error { return s.cmdEndJoin(a) }, records: true},
		{prefix: "end join", handler: func(_ string) error { return s.cmdEndJoin("") }, records: true},

		// --- correlations / stacks / nests ---
		{prefix: "correlate ", handler: func(a string) error { return s.cmdCorrelate(a) }, completer: completeColumnArgs, records: true},
		{prefix: "end correlation ", handler: func(a string) error { return s.cmdEndCorrelation(a) }, records: true},
		{prefix: "end correlation", handler: func(_ string) error { return s.cmdEndCorrelation("") }, records: true},
		{prefix: "stack ", handler: func(a string) error { return s.cmdStack(a) }, completer: completeColumnArgs, records: true},
		{prefix: "as one ", handler: func(a string) error { return s.cmdAs(nodes.StackOne, a) }, records: true},
		{prefix: "as many ", handler: func(a string) error { return s.cmdAs(nodes.StackMany, a) }, records: true},
		{prefix: "as list ", handler: func(a string) error { return s.cmdAs(nodes.StackList, a) }, records: true},
		{prefix: "as value ", handler: func(a string) error { return s.cmdAs(nodes.StackValue, a) }, records: true},
		{prefix: "nest ", handler: func(a string) error { return s.cmdNest(a) }, completer: completeColumnArgs, records: true},
		{prefix: "nest", handler: func(_ string) error { return s.cmdNest("") }, records: true},
		{prefix: "key ", handler: func(a string) error { return s.cmdKey(a) }, completer: completeColumnArgs, records: true},
		{prefix: "end nest ", handler: func(a string) error { return s.cmdEndNest(a) }, records: true},
		{prefix: "end nest", handler: func(_ string) error { return errors.New("usage: end nest <name> [copy]") }},

		// --- database connectivity ---
		{prefix: "connect ", handler: func(a string) error { return s.cmdConnect(a) }},
		{prefix: "connect", handler: func(_ string) error { return s.cmdConnect("") }},
		{prefix: "disconnect", handler: func(_ string) error { return s.cmdDisconnect() }},

		// --- rendering / engine / plugins ---
		{prefix: "quote ", handler: func(a string) error { return s.cmdQuote(a) }, completer: completeQuoteArgs},
		{prefix: "engine ", handler: func(a string) error { return s.cmdEngine(a) }, completer: completeEngineArgs},
		{prefix: "plugin ", handler: func(a string) error { return s.cmdPlugin(a) }, completer: completePluginArgs},
		{prefix: "plugins", handler: func(_ string) error { s.cmdPlugins(); return nil }},
	}

	// Sort by prefix length descending so longest prefixes match first.
	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// commandNames derives the command name list from the registry for tab completion.
func (s *Session) commandNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range s.commands {
		if cmd.hidden {
			continue
		}
		name := strings.TrimRight(cmd.prefix, " ")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	// exit/quit are handled by the REPL loop, not Execute().
	for _, extra := range []string{"exit", "quit"} {
		if !seen[extra] {
			names = append(names, extra)
		}
	}
	sort.Strings(names)
	return names
}

// --- Shared completion helpers ---

// completeTableArgs handles completion for single-word table commands
// (from, table, derive).
func completeTableArgs(args string) (completionContext, string) {
	arg := strings.TrimSpace(args)
	if !strings.Contains(arg, " ") {
		return contextTableName, arg
	}
	return contextColumnName, lastToken(args)
}

// completeColumnArgs handles completion for column-ref commands
// (select, where, having, join, on, correlate, stack, nest, key).
func completeColumnArgs(args string) (completionContext, string) {
	last := lastToken(args)
	if strings.HasSuffix(args, " ") {
		prevTokens := strings.Fields(args)
		if len(prevTokens) > 0 {
			prev := strings.ToLower(prevTokens[len(prevTokens)-1])
			if strings.Contains(prev, ".") {
				return contextOperator, ""
			}
		}
		return contextColumnRef, ""
	}
	return contextColumnRef, last
}

// completeEngineArgs handles completion for the engine command.
func completeEngineArgs(args string) (completionContext, string) {
	return contextEngine, strings.TrimSpace(args)
}

// completeQuoteArgs handles completion for the quote command.
func completeQuoteArgs(args string) (completionContext, string) {
	return contextQuote, strings.TrimSpace(args)
}

// completePluginArgs handles completion for the plugin command:
// plugin names, or after "off" the names of enabled plugins.
func completePluginArgs(args string) (completionContext, string) {
	if strings.HasPrefix(strings.ToLower(args), "off ") {
		partial := strings.TrimSpace(args[4:])
		return contextPluginOff, partial
	}
	arg := strings.TrimSpace(args)
	if !strings.Contains(arg, " ") {
		return contextPlugin, arg
	}
	return contextCommand, ""
}
