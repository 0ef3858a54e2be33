package visitors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/quarry/internal/quoting"
	"github.com/bawdo/quarry/internal/testutil"
	"github.com/bawdo/quarry/nodes"
)

type fixture struct {
	users *nodes.Reference
	core  *nodes.SelectCore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	m := nodes.NewSourceManager()
	users := nodes.NewReference(nodes.NewTable("users", "id", "name", "age", "vip"), "")
	require.NoError(t, m.AddReference(users))
	return fixture{users: users, core: nodes.NewSelectCore(m)}
}

func (f fixture) field(t *testing.T, col string) *nodes.Field {
	t.Helper()
	fd, ok := f.users.Field(col)
	require.True(t, ok, "column %s", col)
	return fd
}

func valueClause(f *nodes.Field, op nodes.Operator, v any, or bool) *nodes.ValueClause {
	return &nodes.ValueClause{Predicate: nodes.Predicate{Local: f, Op: op, Or: or}, Value: v}
}

func TestDebugSelectStarWithoutProjection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	testutil.AssertRender(t, NewDebugVisitor(), f.core, "SELECT *\nFROM users")
}

func TestDebugProjectionAndAlias(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.users.Project(f.field(t, "id")))
	label, _ := f.users.Realias("name", "label")
	require.NoError(t, f.users.Project(label))
	f.core.Distinct = true

	testutil.AssertRender(t, NewDebugVisitor(), f.core,
		"SELECT DISTINCT users.id, users.name AS label\nFROM users")
}

func TestDebugGroupRenderingIdempotence(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := NewDebugVisitor()
	c := valueClause(f.field(t, "age"), nodes.OpGtEq, 18, false)

	single := &nodes.Group{Clauses: []nodes.Clause{c}}
	assert.Equal(t, c.Accept(v), single.Accept(v))

	multi := &nodes.Group{Clauses: []nodes.Clause{
		c,
		valueClause(f.field(t, "vip"), nodes.OpEq, true, true),
		valueClause(f.field(t, "name"), nodes.OpLike, "a%", false),
	}}
	assert.Equal(t, "(users.age >= 18 || users.vip = true && users.name LIKE 'a%')", multi.Accept(v))

	assert.Equal(t, "", (&nodes.Group{}).Accept(v))
}

func TestDebugClauseListSkipsEmptyGroups(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.core.Wheres = []nodes.Clause{
		&nodes.Group{},
		valueClause(f.field(t, "age"), nodes.OpGt, 1, true),
		&nodes.Group{Or: true},
		valueClause(f.field(t, "vip"), nodes.OpEq, false, false),
	}
	testutil.AssertRender(t, NewDebugVisitor(), f.core,
		"SELECT *\nFROM users\nWHERE users.age > 1 && users.vip = false")
}

func TestDebugValues(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := NewDebugVisitor()
	age := f.field(t, "age")
	name := f.field(t, "name")

	tests := []struct {
		name   string
		clause nodes.Clause
		want   string
	}{
		{"null", valueClause(age, nodes.OpEq, nil, false), "users.age = NULL"},
		{"string escaped", valueClause(name, nodes.OpEq, "O'Brien", false), "users.name = 'O''Brien'"},
		{"in list", valueClause(age, nodes.OpIn, []int{1, 2, 3}, false), "users.age IN (1, 2, 3)"},
		{"between", valueClause(age, nodes.OpBetween, []any{18, 65}, false), "users.age BETWEEN 18 AND 65"},
		{"negated eq", &nodes.ValueClause{Predicate: nodes.Predicate{Local: age, Op: nodes.OpEq, Not: true}, Value: 3}, "users.age != 3"},
		{"negated in", &nodes.ValueClause{Predicate: nodes.Predicate{Local: age, Op: nodes.OpIn, Not: true}, Value: []string{"a"}}, "users.age NOT IN ('a')"},
		{"field clause", &nodes.FieldClause{Predicate: nodes.Predicate{Local: age, Op: nodes.OpLt}, Foreign: name}, "users.age < users.name"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.clause.Accept(v))
		})
	}
}

func TestDebugNestedQueryIndents(t *testing.T) {
	t.Parallel()
	outer := newFixture(t)
	inner := newFixture(t)
	require.NoError(t, inner.users.Project(inner.field(t, "id")))
	inner.core.Wheres = []nodes.Clause{valueClause(inner.field(t, "vip"), nodes.OpEq, true, false)}

	outer.core.Wheres = []nodes.Clause{&nodes.QueryClause{
		Predicate: nodes.Predicate{Local: outer.field(t, "id"), Op: nodes.OpIn},
		Query:     inner.core,
	}}
	want := "SELECT *\nFROM users\nWHERE users.id IN (\n" +
		"  SELECT users.id\n  FROM users\n  WHERE users.vip = true\n)"
	testutil.AssertRender(t, NewDebugVisitor(), outer.core, want)
}

func TestDebugJoinStackNest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	orders := nodes.NewReference(nodes.NewTable("orders", "id", "user_id"), "o")
	require.NoError(t, f.core.Sources.AddReference(orders))
	uid, _ := orders.Field("user_id")
	f.core.Joins = []*nodes.JoinNode{{
		Type:      nodes.LeftOuterJoin,
		Reference: orders,
		On: []nodes.Clause{&nodes.FieldClause{
			Predicate: nodes.Predicate{Local: uid, Op: nodes.OpEq},
			Foreign:   f.field(t, "id"),
		}},
	}}
	stackCore := newFixture(t)
	require.NoError(t, stackCore.users.Project(stackCore.field(t, "name")))
	f.core.Stacks = []*nodes.StackNode{{
		Name:  "names",
		Mode:  nodes.StackMany,
		Query: stackCore.core,
		Key:   stackCore.field(t, "name"),
	}}
	f.core.Nests = []*nodes.NestNode{{
		Name:   "profile",
		Copy:   true,
		Fields: []*nodes.Field{f.field(t, "name"), f.field(t, "age")},
		Keys:   []*nodes.Field{f.field(t, "id")},
	}}

	want := "SELECT *\nFROM users\n" +
		"LEFT OUTER JOIN orders AS o ON o.user_id = users.id\n" +
		"STACK many names KEY users.name (\n  SELECT users.name\n  FROM users\n)\n" +
		"NEST profile COPY (users.name, users.age) KEY (users.id)"
	testutil.AssertRender(t, NewDebugVisitor(), f.core, want)
}

func TestDebugIdentQuoting(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.users.Project(f.field(t, "id")))

	testutil.AssertRender(t, NewDebugVisitor(WithANSIQuoting()), f.core,
		"SELECT \"users\".\"id\"\nFROM \"users\"")
	testutil.AssertRender(t, NewDebugVisitor(WithMySQLQuoting()), f.core,
		"SELECT `users`.`id`\nFROM `users`")
	testutil.AssertRender(t, NewDebugVisitor(WithIdentQuoting(quoting.DoubleQuote), WithIdentQuoting(nil)), f.core,
		"SELECT \"users\".\"id\"\nFROM \"users\"")
}
