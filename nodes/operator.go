package nodes

import "strings"

// Operator is the closed set of comparison operators a clause can use.
type Operator int

const (
	OpEq Operator = iota
	OpGt
	OpGtEq
	OpLt
	OpLtEq
	OpIn
	OpBetween
	OpLike
	OpContains
	OpBegins
	OpEnds
	OpIncludes
	OpMatches
)

var operatorNames = [...]string{
	OpEq:       "eq",
	OpGt:       "gt",
	OpGtEq:     "gte",
	OpLt:       "lt",
	OpLtEq:     "lte",
	OpIn:       "in",
	OpBetween:  "between",
	OpLike:     "like",
	OpContains: "contains",
	OpBegins:   "begins",
	OpEnds:     "ends",
	OpIncludes: "includes",
	OpMatches:  "matches",
}

var operatorSymbols = [...]string{
	OpEq:       "=",
	OpGt:       ">",
	OpGtEq:     ">=",
	OpLt:       "<",
	OpLtEq:     "<=",
	OpIn:       "IN",
	OpBetween:  "BETWEEN",
	OpLike:     "LIKE",
	OpContains: "CONTAINS",
	OpBegins:   "BEGINS",
	OpEnds:     "ENDS",
	OpIncludes: "INCLUDES",
	OpMatches:  "MATCHES",
}

var symbolOperators = map[string]Operator{
	"=":  OpEq,
	"==": OpEq,
	">":  OpGt,
	">=": OpGtEq,
	"<":  OpLt,
	"<=": OpLtEq,
	"~":  OpMatches,
}

// String returns the operator's name (e.g. "gte").
func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return "unknown"
	}
	return operatorNames[o]
}

// Symbol returns the operator as rendered in debug output (e.g. ">=").
func (o Operator) Symbol() string {
	if o < 0 || int(o) >= len(operatorSymbols) {
		return "?"
	}
	return operatorSymbols[o]
}

// ParseOperator maps an operator string to an Operator. Names ("gte") and
// symbols (">=") are accepted case-insensitively. A leading "not " or "!"
// negates the operator, and "<>" is a negated equality.
func ParseOperator(s string) (op Operator, negated bool, err error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	switch {
	case raw == "<>":
		return OpEq, true, nil
	case strings.HasPrefix(raw, "not "):
		negated = true
		raw = strings.TrimSpace(raw[len("not "):])
	case strings.HasPrefix(raw, "!") && len(raw) > 1:
		negated = true
		raw = raw[1:]
	}
	if o, ok := symbolOperators[raw]; ok {
		return o, negated, nil
	}
	for i, name := range operatorNames {
		if name == raw {
			return Operator(i), negated, nil
		}
	}
	return 0, false, Logicf("unrecognized operator %q", s)
}
