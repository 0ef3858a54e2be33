package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()
	tests := map[string][]string{
		"age >= 18":               {"age", ">=", "18"},
		"name = 'it''s here'":     {"name", "=", "'it''s here'"},
		"id in (1, 2,3)":          {"id", "in", "(", "1", ",", "2", ",", "3", ")"},
		"a!=b":                    {"a", "!=", "b"},
		"total<>0":                {"total", "<>", "0"},
		"users.id == orders.id":   {"users.id", "==", "orders.id"},
		"  padded\t  ~  'x y'   ": {"padded", "~", "'x y'"},
	}
	for input, want := range tests {
		assert.Equal(t, want, tokenize(input), input)
	}
}

func TestParseValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{"null", nil},
		{"'paid'", "paid"},
		{"'it''s'", "it's"},
		{"''", ""},
		{"42", 42},
		{"-7", -7},
		{"2.5", 2.5},
		{"paid", "paid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseValue(tt.in), tt.in)
	}
}

func TestParseCondition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want condition
	}{
		{"age >= 18", condition{field: "age", op: ">=", value: 18}},
		{"users.name like 'a%'", condition{field: "users.name", op: "like", value: "a%"}},
		{"id in (1, 2, 3)", condition{field: "id", op: "in", value: []any{1, 2, 3}}},
		{"id not in (1)", condition{field: "id", op: "not in", value: []any{1}}},
		{"age between 18 and 65", condition{field: "age", op: "between", value: []any{18, 65}}},
		{"deleted_at = null", condition{field: "deleted_at", op: "=", value: nil}},
	}
	for _, tt := range tests {
		got, err := parseCondition(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseConditionErrors(t *testing.T) {
	t.Parallel()
	for _, in := range []string{
		"",
		"age",
		"age >=",
		"age resembles 3",
		"id not in",
		"id in (1, 2",
		"age between 1 2 3",
	} {
		_, err := parseCondition(in)
		assert.Error(t, err, in)
	}
}

func TestParseFieldCondition(t *testing.T) {
	t.Parallel()
	got, err := parseFieldCondition("user_id = users.id")
	require.NoError(t, err)
	assert.Equal(t, fieldCondition{local: "user_id", op: "=", foreign: "users.id"}, got)

	got, err = parseFieldCondition("id not in orders.user_id")
	require.NoError(t, err)
	assert.Equal(t, fieldCondition{local: "id", op: "not in", foreign: "orders.user_id"}, got)

	_, err = parseFieldCondition("id = a b")
	assert.Error(t, err)
}

func TestSplitFields(t *testing.T) {
	t.Parallel()
	tests := map[string][]string{
		"id, name":          {"id", "name"},
		"id name":           {"id", "name"},
		"total AS amount":   {"total AS amount"},
		"id, total as amt":  {"id", "total as amt"},
		"users.id,orders.*": {"users.id", "orders.*"},
		"":                  nil,
		" , ":               nil,
	}
	for input, want := range tests {
		assert.Equal(t, want, splitFields(input), input)
	}
}

func TestCutWord(t *testing.T) {
	t.Parallel()
	word, rest := cutWord("  users   u ")
	assert.Equal(t, "users", word)
	assert.Equal(t, "u", rest)

	word, rest = cutWord("users")
	assert.Equal(t, "users", word)
	assert.Empty(t, rest)
}
