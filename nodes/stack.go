package nodes

// StackMode says how a stacked sub-select is materialised into the parent's
// result.
type StackMode int

const (
	StackOne   StackMode = iota // at most one row, as a nested object
	StackMany                   // a list, optionally keyed
	StackList                   // an associative array of key => value
	StackValue                  // a single scalar
)

func (m StackMode) String() string {
	switch m {
	case StackOne:
		return "one"
	case StackMany:
		return "many"
	case StackList:
		return "list"
	case StackValue:
		return "value"
	default:
		return "unknown"
	}
}

// Processor post-processes the rows of a stack into its materialised value.
// It is carried for the result materialiser and never invoked here.
type Processor func(rows []map[string]any) (any, error)

// StackNode is a named sub-select shaped into the parent's result.
type StackNode struct {
	Name      string
	Mode      StackMode
	Query     *SelectCore
	Key       *Field
	Value     *Field
	Processor Processor
}

func (n *StackNode) Accept(v Visitor) string { return v.VisitStack(n) }

// NestNode groups projected fields under a name to shape hierarchical
// results. Copy projects a duplicate view instead of moving the fields.
type NestNode struct {
	Name         string
	Copy         bool
	Fields       []*Field
	Keys         []*Field
	Correlations []*Reference
}

func (n *NestNode) Accept(v Visitor) string { return v.VisitNest(n) }
