package main

import (
	"sort"
	"strings"

	"github.com/bawdo/quarry/schema"
)

// completionContext describes what kind of completion is appropriate.
type completionContext int

const (
	contextCommand    completionContext = iota // start of line or partial command
	contextTableName                           // after from/table/derive
	contextColumnName                          // bare column after a table name
	contextColumnRef                           // after select/where/join/...
	contextEngine                              // after engine
	contextQuote                               // after quote
	contextPlugin                              // after plugin
	contextPluginOff                           // after plugin off
	contextOperator                            // after a column ref in condition context
)

var quoteStyles = []string{"ansi", "mysql", "none"}

var operators = []string{
	"!=", "<", "<=", "<>", "=", ">", ">=", "~",
	"begins", "between", "contains", "ends", "in", "includes", "like", "matches", "not",
}

// replCompleter implements readline's AutoCompleter interface.
type replCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
// length is the number of chars from end of line[:pos] that form the prefix being completed.
// newLine contains the suffixes to append for each candidate.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	ctx, prefix := c.parseContext(lineStr)

	var candidates []string
	switch ctx {
	case contextCommand:
		candidates = filterPrefix(c.sess.commandNames(), prefix)
	case contextTableName:
		candidates = c.completeTableNames(prefix)
	case contextColumnName:
		candidates = c.completeBareColumns(lineStr, prefix)
	case contextColumnRef:
		candidates = c.completeColumnRef(prefix)
	case contextEngine:
		candidates = filterPrefix(schema.Engines(), prefix)
	case contextQuote:
		candidates = filterPrefix(quoteStyles, prefix)
	case contextPlugin:
		candidates = filterPrefix(append([]string{"off"}, pluginNames()...), prefix)
	case contextPluginOff:
		candidates = filterPrefix(c.sess.plugins.names(), prefix)
	case contextOperator:
		candidates = filterPrefix(operators, prefix)
	}

	for _, cand := range candidates {
		suffix := cand[len(prefix):]
		// Add trailing space for convenience.
		newLine = append(newLine, []rune(suffix+" "))
	}
	length = len([]rune(prefix))
	return
}

// parseContext examines the line up to cursor and determines what kind of
// completion is needed and the current prefix being typed.
func (c *replCompleter) parseContext(line string) (completionContext, string) {
	lower := strings.ToLower(line)

	for _, cmd := range c.sess.commands {
		if !strings.HasSuffix(cmd.prefix, " ") {
			continue // exact-match commands have no arg completion
		}
		if strings.HasPrefix(lower, cmd.prefix) && cmd.completer != nil {
			return cmd.completer(line[len(cmd.prefix):])
		}
	}

	// Default: command completion.
	return contextCommand, strings.TrimSpace(line)
}

// tableNames returns registered and introspected table names.
func (c *replCompleter) tableNames() []string {
	names := c.sess.tables.Tables()
	if c.sess.intro != nil {
		names = append(names, c.sess.intro.Tables()...)
	}
	names = dedup(names)
	sort.Strings(names)
	return names
}

// columns returns the columns of table, or nil when it is unknown.
func (c *replCompleter) columns(table string) []string {
	src, err := c.sess.Source(table)
	if err != nil {
		return nil
	}
	return src.Columns()
}

func (c *replCompleter) completeTableNames(prefix string) []string {
	return filterPrefix(c.tableNames(), prefix)
}

// completeBareColumns completes the columns of the table named by the
// line's second word, as in "derive orders tot".
func (c *replCompleter) completeBareColumns(line, prefix string) []string {
	words := strings.Fields(line)
	if len(words) < 2 {
		return nil
	}
	return filterPrefix(c.columns(words[1]), prefix)
}

// completeColumnRef handles both table-name and table.column completion.
func (c *replCompleter) completeColumnRef(prefix string) []string {
	if strings.Contains(prefix, ".") {
		tableName, _, _ := strings.Cut(prefix, ".")
		candidates := []string{tableName + ".*"}
		for _, col := range c.columns(tableName) {
			candidates = append(candidates, tableName+"."+col)
		}
		return filterPrefix(candidates, prefix)
	}
	return c.completeTableNames(prefix)
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		result := make([]string, len(items))
		copy(result, items)
		return result
	}
	lowerPrefix := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lowerPrefix) {
			result = append(result, item)
		}
	}
	return result
}

// dedup removes duplicate strings.
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	var result []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}

// lastToken returns the last whitespace-separated token, handling commas.
func lastToken(s string) string {
	lastSep := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' || s[i] == ',' || s[i] == '\t' {
			lastSep = i
			break
		}
	}
	if lastSep >= 0 {
		return s[lastSep+1:]
	}
	return s
}
