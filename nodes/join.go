package nodes

// JoinType represents the type of a join.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

// String returns the display name for this join type.
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER JOIN"
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case FullOuterJoin:
		return "FULL OUTER JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	default:
		return "JOIN"
	}
}

// JoinNode is a finished join: the joined reference and its ON clauses.
type JoinNode struct {
	Type      JoinType
	Reference *Reference
	On        []Clause
}

func (n *JoinNode) Accept(v Visitor) string { return v.VisitJoin(n) }

// Alias returns the alias the join is registered under.
func (n *JoinNode) Alias() string { return n.Reference.Alias }
