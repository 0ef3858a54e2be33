package managers

import "github.com/bawdo/quarry/nodes"

// Mode says how a builder acting as a child must be finalized.
type Mode int

const (
	ModeNone Mode = iota
	ModeCorrelation
	ModeDerivation
	ModeStack
	ModeWhere
	ModeHaving
	ModeJoin
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeCorrelation:
		return "correlation"
	case ModeDerivation:
		return "derivation"
	case ModeStack:
		return "stack"
	case ModeWhere:
		return "where"
	case ModeHaving:
		return "having"
	case ModeJoin:
		return "join"
	default:
		return "unknown"
	}
}

// Finalizer builds the clause a where/having child contributes to its
// parent when EndClause fires.
type Finalizer func(child Builder) (nodes.Clause, error)

// Linkage is the parent back-reference and sub-query mode every builder
// carries. The parent pointer is non-owning; the chain is kept acyclic by
// SetParentQuery.
type Linkage struct {
	owner     Builder
	parent    Builder
	mode      Mode
	finalizer Finalizer
}

// AsSubQuery parents the owner under parent in the given mode.
func (l *Linkage) AsSubQuery(parent Builder, mode Mode, fin Finalizer) error {
	if err := l.SetParentQuery(parent); err != nil {
		return err
	}
	return l.SetSubQueryMode(mode, fin)
}

// SetParentQuery sets the parent builder. Attaching the owner beneath
// itself or one of its descendants fails with ErrLogic.
func (l *Linkage) SetParentQuery(parent Builder) error {
	for p := parent; p != nil; p = p.Link().parent {
		if p == l.owner {
			return nodes.Logicf("recursive sub-query ancestry")
		}
	}
	l.parent = parent
	return nil
}

// SetSubQueryMode sets the mode and finalizer, overwriting any previous
// mode. A mode other than ModeNone requires a parent.
func (l *Linkage) SetSubQueryMode(mode Mode, fin Finalizer) error {
	if mode != ModeNone && l.parent == nil {
		return nodes.Logicf("sub-query mode %s requires a parent query", mode)
	}
	l.mode = mode
	l.finalizer = fin
	return nil
}

// ParentQuery returns the parent builder, or nil.
func (l *Linkage) ParentQuery() Builder { return l.parent }

// Mode returns the current sub-query mode.
func (l *Linkage) Mode() Mode { return l.mode }

// Finalizer returns the registered clause finalizer, or nil.
func (l *Linkage) Finalizer() Finalizer { return l.finalizer }

// expect fails unless the linkage is in mode with a parent set.
func (l *Linkage) expect(mode Mode) error {
	if l.mode != mode {
		return nodes.Logicf("expected sub-query mode %s, got %s", mode, l.mode)
	}
	if l.parent == nil {
		return nodes.Logicf("sub-query mode %s has no parent query", mode)
	}
	return nil
}

// consume marks the mode as used. The parent back-reference is kept.
func (l *Linkage) consume() {
	l.mode = ModeNone
	l.finalizer = nil
}

// IsSourceDeepNested reports whether an ancestor of the owner already
// exposes ref's source under ref's alias.
func (l *Linkage) IsSourceDeepNested(ref *nodes.Reference) bool {
	if ref == nil {
		return false
	}
	return l.shadows(ref.Source.SourceID(), ref.Alias, ref)
}

func (l *Linkage) shadows(sourceID, alias string, self *nodes.Reference) bool {
	for p := l.parent; p != nil; p = p.Link().parent {
		sources := p.Sources()
		if sources == nil {
			continue
		}
		for _, r := range sources.References() {
			if r != self && r.Alias == alias && r.Source.SourceID() == sourceID {
				return true
			}
		}
	}
	return false
}
