package nodes

// Reference binds a Source to an alias within one query and owns the
// ordered list of fields projected from it.
type Reference struct {
	Source Source
	Alias  string
	Prefix string // namespaces generated aliases for nested correlations
	Fields []*Field

	resolved map[string]*Field
}

// NewReference creates a reference to src. An empty alias defaults to the
// source name.
func NewReference(src Source, alias string) *Reference {
	if alias == "" {
		alias = src.Name()
	}
	return &Reference{Source: src, Alias: alias}
}

func (r *Reference) Accept(v Visitor) string { return v.VisitReference(r) }

// Field returns the field for column, or false when the source has no such
// column. Repeated lookups return the same *Field.
func (r *Reference) Field(column string) (*Field, bool) {
	if f, ok := r.resolved[column]; ok {
		return f, true
	}
	if !r.Source.HasColumn(column) {
		return nil, false
	}
	if r.resolved == nil {
		r.resolved = make(map[string]*Field)
	}
	f := &Field{Column: column, Alias: column, Reference: r}
	r.resolved[column] = f
	return f, true
}

// Realias returns a new field for column exposed as alias.
func (r *Reference) Realias(column, alias string) (*Field, bool) {
	if !r.Source.HasColumn(column) {
		return nil, false
	}
	if alias == "" {
		alias = column
	}
	return &Field{Column: column, Alias: alias, Reference: r}, true
}

// Project appends f to the projection. The field must belong to this
// reference and its alias must not be projected already.
func (r *Reference) Project(f *Field) error {
	if f.Reference != r {
		return Logicf("field %q belongs to %q, not %q", f.Alias, f.Reference.Alias, r.Alias)
	}
	if r.Projected(f.Alias) {
		return DuplicateAliasError("field", r.Alias+"."+f.Alias)
	}
	r.Fields = append(r.Fields, f)
	return nil
}

// Projected reports whether a field exposed as alias is already projected.
func (r *Reference) Projected(alias string) bool {
	for _, f := range r.Fields {
		if f.Alias == alias {
			return true
		}
	}
	return false
}
