package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		op      Operator
		negated bool
	}{
		{"=", OpEq, false},
		{"==", OpEq, false},
		{"eq", OpEq, false},
		{"!=", OpEq, true},
		{"<>", OpEq, true},
		{">", OpGt, false},
		{">=", OpGtEq, false},
		{"gte", OpGtEq, false},
		{"<", OpLt, false},
		{"<=", OpLtEq, false},
		{"IN", OpIn, false},
		{"not in", OpIn, true},
		{"between", OpBetween, false},
		{"Like", OpLike, false},
		{"!like", OpLike, true},
		{"contains", OpContains, false},
		{"begins", OpBegins, false},
		{"ends", OpEnds, false},
		{"includes", OpIncludes, false},
		{"~", OpMatches, false},
		{"matches", OpMatches, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			op, neg, err := ParseOperator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.op, op)
			assert.Equal(t, tt.negated, neg)
		})
	}
}

func TestParseOperatorUnknown(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "!", "===", "approx", "not"} {
		_, _, err := ParseOperator(in)
		assert.ErrorIs(t, err, ErrLogic, "operator %q", in)
	}
}

func TestOperatorStringAndSymbol(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "gte", OpGtEq.String())
	assert.Equal(t, ">=", OpGtEq.Symbol())
	assert.Equal(t, "BETWEEN", OpBetween.Symbol())
	assert.Equal(t, "unknown", Operator(99).String())
	assert.Equal(t, "?", Operator(-1).Symbol())
}

func TestUniqueAliasNeverRepeats(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		a := UniqueAlias("c")
		assert.False(t, seen[a], "alias %q handed out twice", a)
		seen[a] = true
	}
}
