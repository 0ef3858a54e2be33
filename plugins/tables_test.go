package plugins

import (
	"testing"

	"github.com/bawdo/quarry/nodes"
)

func selectOver(t *testing.T, refs ...*nodes.Reference) *nodes.SelectCore {
	t.Helper()
	sm := nodes.NewSourceManager()
	core := nodes.NewSelectCore(sm)
	for i, r := range refs {
		if err := sm.AddReference(r); err != nil {
			t.Fatalf("add reference: %v", err)
		}
		if i > 0 {
			core.Joins = append(core.Joins, &nodes.JoinNode{Type: nodes.InnerJoin, Reference: r})
		}
	}
	return core
}

func TestCollectTablesFromTable(t *testing.T) {
	t.Parallel()
	users := nodes.NewReference(nodes.NewTable("users", "id"), "users")
	refs := CollectTables(selectOver(t, users))
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	if refs[0].Name != "users" {
		t.Errorf("expected name 'users', got %q", refs[0].Name)
	}
	if refs[0].Reference != users {
		t.Error("expected the primary reference")
	}
}

func TestCollectTablesFromAlias(t *testing.T) {
	t.Parallel()
	u := nodes.NewReference(nodes.NewTable("users", "id"), "u")
	refs := CollectTables(selectOver(t, u))
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	if refs[0].Name != "users" {
		t.Errorf("expected underlying name 'users', got %q", refs[0].Name)
	}
	if refs[0].Reference.Alias != "u" {
		t.Errorf("expected alias 'u', got %q", refs[0].Reference.Alias)
	}
}

func TestCollectTablesIncludesJoins(t *testing.T) {
	t.Parallel()
	users := nodes.NewReference(nodes.NewTable("users", "id"), "users")
	orders := nodes.NewReference(nodes.NewTable("orders", "id"), "o")
	refs := CollectTables(selectOver(t, users, orders))
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[1].Name != "orders" || refs[1].Reference != orders {
		t.Errorf("expected join target orders AS o, got %q", refs[1].Name)
	}
}

func TestCollectTablesSkipsDerivedAndCorrelated(t *testing.T) {
	t.Parallel()
	inner := selectOver(t, nodes.NewReference(nodes.NewTable("users", "id"), "users"))
	derived := nodes.NewReference(nodes.NewDerived(inner), "d")
	correlated := nodes.NewReference(nodes.NewCorrelated(inner, "n"), "n")

	refs := CollectTables(selectOver(t, derived, correlated))
	if len(refs) != 0 {
		t.Errorf("expected no table refs, got %d", len(refs))
	}
}

func TestCollectTablesEmptySelect(t *testing.T) {
	t.Parallel()
	refs := CollectTables(nodes.NewSelectCore(nodes.NewSourceManager()))
	if len(refs) != 0 {
		t.Errorf("expected no refs, got %d", len(refs))
	}
}
