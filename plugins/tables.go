package plugins

import "github.com/bawdo/quarry/nodes"

// TableRef pairs a table-backed reference with its underlying table name.
// Reference is used to resolve fields (preserving the alias), Name for
// matching and filtering.
type TableRef struct {
	Reference *nodes.Reference
	Name      string
}

// CollectTables returns the table references a select reads from: the
// primary reference followed by every join target. Derived and correlated
// sources are skipped.
func CollectTables(core *nodes.SelectCore) []TableRef {
	var refs []TableRef
	if ref, ok := extractTableRef(core.Primary()); ok {
		refs = append(refs, ref)
	}
	for _, j := range core.Joins {
		if ref, ok := extractTableRef(j.Reference); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func extractTableRef(r *nodes.Reference) (TableRef, bool) {
	if r == nil {
		return TableRef{}, false
	}
	tbl, ok := r.Source.(*nodes.Table)
	if !ok {
		return TableRef{}, false
	}
	return TableRef{Reference: r, Name: tbl.TableName}, true
}
