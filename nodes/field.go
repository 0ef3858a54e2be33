package nodes

// Field is a resolved column on a specific Reference. The alias is the name
// the field is exposed under; it equals the column unless the field was
// realiased.
type Field struct {
	Column    string
	Alias     string
	Reference *Reference
}

func (f *Field) Accept(v Visitor) string { return v.VisitField(f) }

// Path returns the reference-qualified column, e.g. "users.id".
func (f *Field) Path() string {
	if f.Reference == nil {
		return f.Column
	}
	return f.Reference.Alias + "." + f.Column
}

// Realiased reports whether the field is exposed under a different name
// than its column.
func (f *Field) Realiased() bool {
	return f.Alias != f.Column
}
