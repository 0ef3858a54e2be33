// Package quoting quotes identifiers and escapes literals in rendered
// query text.
package quoting

import (
	"fmt"
	"strings"
)

// DoubleQuote quotes an identifier ANSI style. Embedded double quotes are
// doubled.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Backtick quotes an identifier MySQL style. Embedded backticks are doubled.
func Backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// None returns s unchanged.
func None(s string) string { return s }

// EscapeString escapes a string literal by doubling single quotes and
// backslashes. Rendered text is diagnostic and never sent to a server.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}

// ByName returns the quoting function for style: "none", "ansi" or
// "mysql". An empty style means none.
func ByName(style string) (func(string) string, error) {
	switch strings.ToLower(style) {
	case "", "none":
		return None, nil
	case "ansi", "postgres", "sqlite":
		return DoubleQuote, nil
	case "mysql":
		return Backtick, nil
	default:
		return nil, fmt.Errorf("unknown quoting style %q (expected none, ansi or mysql)", style)
	}
}
