package nodes

import "strings"

// SourceManager owns the references of one query. A manager belonging to a
// sub-query chains to its parent so foreign field lookups can escalate
// outward.
type SourceManager struct {
	refs   []*Reference
	parent *SourceManager
	tx     Transaction
}

// NewSourceManager creates an empty manager.
func NewSourceManager() *SourceManager {
	return &SourceManager{}
}

// AddReference registers ref. It fails with ErrDuplicateAlias when the alias
// is taken, leaving the manager unchanged.
func (m *SourceManager) AddReference(ref *Reference) error {
	if _, ok := m.Reference(ref.Alias); ok {
		return DuplicateAliasError("reference", ref.Alias)
	}
	m.refs = append(m.refs, ref)
	return nil
}

// RemoveSource removes every reference backed by src and returns how many
// were removed.
func (m *SourceManager) RemoveSource(src Source) int {
	kept := m.refs[:0]
	removed := 0
	for _, r := range m.refs {
		if r.Source == src {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.refs = kept
	return removed
}

// RemoveReference removes ref itself, leaving other references to the same
// source in place.
func (m *SourceManager) RemoveReference(ref *Reference) bool {
	for i, r := range m.refs {
		if r == ref {
			m.refs = append(m.refs[:i], m.refs[i+1:]...)
			return true
		}
	}
	return false
}

// Rename changes the alias of a registered reference.
func (m *SourceManager) Rename(ref *Reference, alias string) error {
	if ref.Alias == alias {
		return nil
	}
	if _, ok := m.Reference(alias); ok {
		return DuplicateAliasError("reference", alias)
	}
	ref.Alias = alias
	return nil
}

// SetParent chains m under parent. Chaining a manager beneath itself or one
// of its descendants is a logic error.
func (m *SourceManager) SetParent(parent *SourceManager) error {
	for p := parent; p != nil; p = p.parent {
		if p == m {
			return Logicf("source manager cannot be its own ancestor")
		}
	}
	m.parent = parent
	return nil
}

// Parent returns the manager m escalates to, or nil.
func (m *SourceManager) Parent() *SourceManager { return m.parent }

// SetTransaction attaches an opaque transaction handle.
func (m *SourceManager) SetTransaction(tx Transaction) { m.tx = tx }

// Transaction returns the handle set on m, falling back to its ancestors.
func (m *SourceManager) Transaction() Transaction {
	for c := m; c != nil; c = c.parent {
		if c.tx != nil {
			return c.tx
		}
	}
	return nil
}

// Primary returns the first registered reference, or nil.
func (m *SourceManager) Primary() *Reference {
	if len(m.refs) == 0 {
		return nil
	}
	return m.refs[0]
}

// References returns the registered references in registration order.
func (m *SourceManager) References() []*Reference {
	out := make([]*Reference, len(m.refs))
	copy(out, m.refs)
	return out
}

// Reference returns the reference registered under alias.
func (m *SourceManager) Reference(alias string) (*Reference, bool) {
	for _, r := range m.refs {
		if r.Alias == alias {
			return r, true
		}
	}
	return nil, false
}

// LookupReference finds alias in m or any ancestor.
func (m *SourceManager) LookupReference(alias string) (*Reference, bool) {
	for c := m; c != nil; c = c.parent {
		if r, ok := c.Reference(alias); ok {
			return r, true
		}
	}
	return nil, false
}

// FindLocalField resolves name ("alias.column" or "column") against m's own
// references only.
func (m *SourceManager) FindLocalField(name string) (*Field, error) {
	if f, ok := m.resolve(name, ""); ok {
		return f, nil
	}
	if f, ok := m.resolveUnprefixed(name); ok {
		return f, nil
	}
	return nil, FieldNotFoundError(name)
}

// FindForeignField resolves name against m's references, skipping the
// reference aliased excludeAlias, then escalates through the parent chain.
func (m *SourceManager) FindForeignField(name string, excludeAlias ...string) (*Field, error) {
	exclude := ""
	if len(excludeAlias) > 0 {
		exclude = excludeAlias[0]
	}
	if f, ok := m.resolve(name, exclude); ok {
		return f, nil
	}
	if m.parent != nil {
		return m.parent.FindForeignField(name)
	}
	return nil, FieldNotFoundError(name)
}

// RealiasField resolves name locally and returns a new field exposed as alias.
func (m *SourceManager) RealiasField(name, alias string) (*Field, error) {
	f, err := m.FindLocalField(name)
	if err != nil {
		return nil, err
	}
	if r, ok := f.Reference.Realias(f.Column, alias); ok {
		return r, nil
	}
	return nil, FieldNotFoundError(name)
}

func (m *SourceManager) resolve(name, exclude string) (*Field, bool) {
	alias, column := SplitName(name)
	for _, r := range m.refs {
		if r.Alias == exclude && exclude != "" {
			continue
		}
		if alias != "" && r.Alias != alias {
			continue
		}
		if f, ok := r.Field(column); ok {
			return f, true
		}
	}
	return nil, false
}

// resolveUnprefixed matches a qualified name against prefixed references by
// the alias they would have without their prefix, so "orders.status" finds
// "c7_orders.status". Foreign lookups skip this so a correlation never
// captures names meant for its parent.
func (m *SourceManager) resolveUnprefixed(name string) (*Field, bool) {
	alias, column := SplitName(name)
	if alias == "" {
		return nil, false
	}
	for _, r := range m.refs {
		if r.Prefix == "" || strings.TrimPrefix(r.Alias, r.Prefix+"_") != alias {
			continue
		}
		if f, ok := r.Field(column); ok {
			return f, true
		}
	}
	return nil, false
}

// SplitName splits "alias.column" at its last dot. A bare column yields an
// empty alias.
func SplitName(name string) (alias, column string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
