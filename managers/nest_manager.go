package managers

import (
	"github.com/bawdo/quarry/nodes"
)

// NestManager groups projected fields under a name. Its fields resolve
// against its own correlations first and then the parent select.
type NestManager struct {
	errorList
	link    Linkage
	env     *env
	sources *nodes.SourceManager
	node    *nodes.NestNode
	ended   bool
}

var _ Correlatable = (*NestManager)(nil)

func newNestManager(parent *SelectManager, e *env, fields []string) *NestManager {
	n := &NestManager{env: e, sources: nodes.NewSourceManager(), node: &nodes.NestNode{}}
	n.link.owner = n
	n.addError(n.sources.SetParent(parent.Sources()))
	n.addError(n.link.AsSubQuery(parent, ModeNone, nil))
	n.AddFields(fields...)
	return n
}

func (n *NestManager) Sources() *nodes.SourceManager { return n.sources }

// Primary is the parent select's primary reference, so bare columns given
// to Correlate read from it.
func (n *NestManager) Primary() *nodes.Reference {
	if p := n.link.ParentQuery(); p != nil {
		return p.Primary()
	}
	return nil
}

func (n *NestManager) Link() *Linkage { return &n.link }

// Node returns the nest being built.
func (n *NestManager) Node() *nodes.NestNode { return n.node }

// checkOpen fails once the nest has been registered on its parent.
func (n *NestManager) checkOpen() error {
	if n.ended {
		return nodes.Logicf("nest %q already ended", n.node.Name)
	}
	return nil
}

// AddFields appends fields to the nest.
func (n *NestManager) AddFields(fields ...string) *NestManager {
	if err := n.checkOpen(); err != nil {
		n.addError(err)
		return n
	}
	for _, name := range fields {
		f, err := n.sources.FindForeignField(name)
		if err != nil {
			n.addError(err)
			continue
		}
		n.node.Fields = append(n.node.Fields, f)
	}
	return n
}

// WithKey sets the fields used to group nested rows.
func (n *NestManager) WithKey(fields ...string) *NestManager {
	if err := n.checkOpen(); err != nil {
		n.addError(err)
		return n
	}
	for _, name := range fields {
		f, err := n.sources.FindForeignField(name)
		if err != nil {
			n.addError(err)
			continue
		}
		n.node.Keys = append(n.node.Keys, f)
	}
	return n
}

// Correlate opens a correlated select whose value becomes a field of the
// nest.
func (n *NestManager) Correlate(field string) *SelectManager {
	return openCorrelation(n, n.env, field)
}

// AddCorrelation registers sub under alias and adds its field to the nest.
func (n *NestManager) AddCorrelation(sub *SelectManager, alias string) error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	if err := addCorrelation(n.env, n.sources, sub, alias); err != nil {
		return err
	}
	refs := n.sources.References()
	ref := refs[len(refs)-1]
	n.node.Correlations = append(n.node.Correlations, ref)
	n.node.Fields = append(n.node.Fields, ref.Fields...)
	return nil
}

// Correlations returns the nest's correlated fields keyed by alias.
func (n *NestManager) Correlations() map[string]*nodes.Field {
	out := make(map[string]*nodes.Field, len(n.node.Correlations))
	for _, r := range n.node.Correlations {
		if len(r.Fields) > 0 {
			out[r.Alias] = r.Fields[0]
		}
	}
	return out
}

// EndNest registers the nest on its parent under name and returns the
// parent.
func (n *NestManager) EndNest(name ...string) (Nestable, error) {
	return n.finish(optional(name), false)
}

// As is EndNest with a required name.
func (n *NestManager) As(name string) (Nestable, error) {
	return n.finish(name, false)
}

// AsCopy registers the nest as a copy that leaves its fields in place.
func (n *NestManager) AsCopy(name string) (Nestable, error) {
	return n.finish(name, true)
}

func (n *NestManager) finish(name string, asCopy bool) (Nestable, error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	if err := n.Err(); err != nil {
		return nil, err
	}
	p, ok := n.link.ParentQuery().(Nestable)
	if !ok {
		return nil, nodes.UnexpectedTypef("%T is not nestable", n.link.ParentQuery())
	}
	if name == "" {
		name = nodes.UniqueAlias("nest")
	}
	n.node.Name = name
	n.node.Copy = asCopy
	if err := p.AddNest(n.node); err != nil {
		n.node.Name = ""
		n.node.Copy = false
		return nil, err
	}
	n.ended = true
	return p, nil
}
