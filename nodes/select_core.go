package nodes

// SelectCore is the data container for a select. The fluent API for
// building it lives in the managers package.
type SelectCore struct {
	Sources       *SourceManager
	Distinct      bool
	Wheres        []Clause
	Havings       []Clause
	Joins         []*JoinNode
	Stacks        []*StackNode
	Nests         []*NestNode
	Prerequisites map[string]*Group // named groups, not rendered inline
}

// NewSelectCore creates a core over sources.
func NewSelectCore(sources *SourceManager) *SelectCore {
	return &SelectCore{Sources: sources, Prerequisites: make(map[string]*Group)}
}

func (n *SelectCore) Accept(v Visitor) string { return v.VisitSelectCore(n) }

// Primary returns the reference the select reads from.
func (n *SelectCore) Primary() *Reference { return n.Sources.Primary() }

// Projection returns every projected field across all references, in
// reference registration order.
func (n *SelectCore) Projection() []*Field {
	var out []*Field
	for _, r := range n.Sources.References() {
		out = append(out, r.Fields...)
	}
	return out
}

// Correlations returns correlated references keyed by alias, mapped to
// their synthetic field.
func (n *SelectCore) Correlations() map[string]*Field {
	out := make(map[string]*Field)
	for _, r := range n.Sources.References() {
		c, ok := r.Source.(*Correlated)
		if !ok {
			continue
		}
		if f, ok := r.Field(c.Column); ok {
			out[r.Alias] = f
		}
	}
	return out
}

// CorrelatedReferences returns the correlated references in registration
// order.
func (n *SelectCore) CorrelatedReferences() []*Reference {
	var out []*Reference
	for _, r := range n.Sources.References() {
		if _, ok := r.Source.(*Correlated); ok {
			out = append(out, r)
		}
	}
	return out
}

// Join returns the join registered under alias.
func (n *SelectCore) Join(alias string) (*JoinNode, bool) {
	for _, j := range n.Joins {
		if j.Alias() == alias {
			return j, true
		}
	}
	return nil, false
}

// Stack returns the stack registered under name.
func (n *SelectCore) Stack(name string) (*StackNode, bool) {
	for _, s := range n.Stacks {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Nest returns the nest registered under name.
func (n *SelectCore) Nest(name string) (*NestNode, bool) {
	for _, s := range n.Nests {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
