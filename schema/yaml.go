package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk schema format:
//
//	tables:
//	  - name: users
//	    columns: [id, name, age]
type File struct {
	Tables []TableDef `yaml:"tables"`
}

// TableDef declares one table.
type TableDef struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

// Load decodes a schema document from r into a new catalog.
func Load(r io.Reader) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	c := NewCatalog()
	for i, t := range f.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("schema table %d: missing name", i)
		}
		if len(t.Columns) == 0 {
			return nil, fmt.Errorf("schema table %q: no columns", t.Name)
		}
		if _, err := c.Source(t.Name); err == nil {
			return nil, fmt.Errorf("schema table %q: declared twice", t.Name)
		}
		c.Define(t.Name, t.Columns...)
	}
	return c, nil
}

// LoadFile reads a schema document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}
