package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/quarry/nodes"
)

// tokenize splits input into tokens, respecting single-quoted strings
// and recognising multi-char operators (!=, <>, >=, <=) and punctuation.
func tokenize(input string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inQuote {
			cur.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(input) && input[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inQuote = false
					flush()
				}
			}
			continue
		}

		switch {
		case ch == '\'':
			flush()
			cur.WriteByte(ch)
			inQuote = true

		case ch == '(' || ch == ')' || ch == ',':
			flush()
			tokens = append(tokens, string(ch))

		case ch == '!' && i+1 < len(input) && input[i+1] == '=':
			flush()
			tokens = append(tokens, "!=")
			i++
		case ch == '<' && i+1 < len(input) && input[i+1] == '>':
			flush()
			tokens = append(tokens, "<>")
			i++
		case ch == '<' && i+1 < len(input) && input[i+1] == '=':
			flush()
			tokens = append(tokens, "<=")
			i++
		case ch == '>' && i+1 < len(input) && input[i+1] == '=':
			flush()
			tokens = append(tokens, ">=")
			i++
		case ch == '=' && i+1 < len(input) && input[i+1] == '=':
			flush()
			tokens = append(tokens, "==")
			i++
		case ch == '=' || ch == '>' || ch == '<' || ch == '~':
			flush()
			tokens = append(tokens, string(ch))

		case ch == ' ' || ch == '\t':
			flush()

		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return tokens
}

// parseValue converts a single token to a literal: booleans, null, quoted
// strings, integers and floats. Any other bare word is taken as a string.
func parseValue(token string) any {
	lower := strings.ToLower(token)
	switch lower {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if strings.HasPrefix(token, "'") && strings.HasSuffix(token, "'") && len(token) >= 2 {
		inner := token[1 : len(token)-1]
		return strings.ReplaceAll(inner, "''", "'")
	}
	if i, err := strconv.Atoi(token); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}
	return token
}

// parseValueTokens turns the value part of a condition into a literal.
// "(a, b, c)" becomes a list and "a and b" a two-element list for between.
func parseValueTokens(tokens []string) (any, error) {
	switch {
	case len(tokens) == 0:
		return nil, fmt.Errorf("missing value")
	case tokens[0] == "(":
		if tokens[len(tokens)-1] != ")" {
			return nil, fmt.Errorf("unterminated list: %s", strings.Join(tokens, " "))
		}
		list := []any{}
		for _, t := range tokens[1 : len(tokens)-1] {
			if t == "," {
				continue
			}
			list = append(list, parseValue(t))
		}
		return list, nil
	case len(tokens) == 1:
		return parseValue(tokens[0]), nil
	case len(tokens) == 3 && strings.EqualFold(tokens[1], "and"):
		return []any{parseValue(tokens[0]), parseValue(tokens[2])}, nil
	default:
		return nil, fmt.Errorf("cannot parse value: %s", strings.Join(tokens, " "))
	}
}

// splitOperator takes "<field> [not] <op> ..." tokens and returns the field,
// the operator and the remaining tokens. The operator is validated.
func splitOperator(tokens []string) (field, op string, rest []string, err error) {
	if len(tokens) < 3 {
		return "", "", nil, fmt.Errorf("expected <field> <operator> <operand>")
	}
	field, op, rest = tokens[0], tokens[1], tokens[2:]
	if strings.EqualFold(op, "not") {
		op = "not " + rest[0]
		rest = rest[1:]
	}
	if _, _, err := nodes.ParseOperator(op); err != nil {
		return "", "", nil, err
	}
	if len(rest) == 0 {
		return "", "", nil, fmt.Errorf("missing operand after %q", op)
	}
	return field, op, rest, nil
}

// condition is a parsed "<field> <op> <value>" argument.
type condition struct {
	field string
	op    string
	value any
}

func parseCondition(input string) (condition, error) {
	field, op, rest, err := splitOperator(tokenize(input))
	if err != nil {
		return condition{}, err
	}
	v, err := parseValueTokens(rest)
	if err != nil {
		return condition{}, err
	}
	return condition{field: field, op: op, value: v}, nil
}

// fieldCondition is a parsed "<field> <op> <foreign field>" argument.
type fieldCondition struct {
	local   string
	op      string
	foreign string
}

func parseFieldCondition(input string) (fieldCondition, error) {
	local, op, rest, err := splitOperator(tokenize(input))
	if err != nil {
		return fieldCondition{}, err
	}
	if len(rest) != 1 {
		return fieldCondition{}, fmt.Errorf("expected a single field after %q", op)
	}
	return fieldCondition{local: local, op: op, foreign: rest[0]}, nil
}

// splitFields splits a field list on commas. Without commas, whitespace
// separates fields unless the list is a single "field AS alias".
func splitFields(input string) []string {
	var out []string
	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 1 && !strings.Contains(strings.ToLower(out[0]), " as ") {
		return strings.Fields(out[0])
	}
	return out
}

// cutWord splits off the first whitespace-separated word.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
