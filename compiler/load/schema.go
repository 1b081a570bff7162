// Package load reads record type declarations from YAML schema files.
//
// A schema file lists record types with their fields and default joins:
//
//	types:
//	  - name: Widget
//	    fields:
//	      - {name: name, type: string, size: 64}
//	      - {name: counter, type: int}
//	      - {name: data, type: json, nullable: true}
//	  - name: Part
//	    joins: [Widget]
//	    fields:
//	      - {name: widget, type: foreign_key, to: Widget}
//
// Loaded schemas implement frank.Interface and can be registered on a
// client like record types declared in Go.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/frank"
	"github.com/syssam/frank/schema/field"
)

// File is the document stored in a schema file.
type File struct {
	Types []*Schema `yaml:"types"`
}

// Schema is a record type loaded from a schema file.
type Schema struct {
	Name         string   `yaml:"name"`
	Columns      []*Field `yaml:"fields,omitempty"`
	DefaultJoins []string `yaml:"joins,omitempty"`
}

// Field is a field of a loaded record type.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Size     int    `yaml:"size,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
	Mark     string `yaml:"mark,omitempty"`
	To       string `yaml:"to,omitempty"`
}

var (
	_ frank.Interface = (*Schema)(nil)
	_ frank.Namer     = (*Schema)(nil)
	_ frank.Field     = (*Field)(nil)
)

// TypeName implements frank.Namer.
func (s *Schema) TypeName() string { return s.Name }

// Fields implements frank.Interface.
func (s *Schema) Fields() []frank.Field {
	fields := make([]frank.Field, len(s.Columns))
	for i, f := range s.Columns {
		fields[i] = f
	}
	return fields
}

// Joins implements frank.Interface.
func (s *Schema) Joins() []string { return s.DefaultJoins }

// Descriptor implements frank.Field. Unknown types and marks are reported
// through the Err field of the descriptor.
func (f *Field) Descriptor() *field.Descriptor {
	d := &field.Descriptor{
		Name:     f.Name,
		To:       f.To,
		Size:     f.Size,
		Nullable: f.Nullable,
	}
	t, err := field.ParseType(f.Type)
	if err != nil {
		d.Err = fmt.Errorf("field %q: %w", f.Name, err)
		return d
	}
	d.Type = t
	if d.Mark, err = field.ParseMark(f.Mark); err != nil {
		d.Err = fmt.Errorf("field %q: %w", f.Name, err)
	}
	return d
}

// NewField creates a loaded field from a field descriptor.
func NewField(fd *field.Descriptor) (*Field, error) {
	if err := fd.Validate(); err != nil {
		return nil, err
	}
	f := &Field{
		Name:     fd.Name,
		Type:     fd.Type.String(),
		Size:     fd.Size,
		Nullable: fd.Nullable,
		To:       fd.To,
	}
	if fd.Mark != field.MarkNone {
		f.Mark = fd.Mark.String()
	}
	return f, nil
}

// NewSchema creates a loaded schema from a record type.
func NewSchema(s frank.Interface) (*Schema, error) {
	ls := &Schema{Name: frank.TypeName(s), DefaultJoins: s.Joins()}
	for _, f := range s.Fields() {
		lf, err := NewField(f.Descriptor())
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", ls.Name, err)
		}
		ls.Columns = append(ls.Columns, lf)
	}
	return ls, nil
}

// Marshal encodes the given record types into a schema file.
func Marshal(schemas ...frank.Interface) ([]byte, error) {
	doc := &File{}
	for _, s := range schemas {
		ls, err := NewSchema(s)
		if err != nil {
			return nil, err
		}
		doc.Types = append(doc.Types, ls)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes a schema file. Unknown keys, unnamed types and duplicate
// type names are configuration errors.
func Parse(r io.Reader) ([]*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	doc := &File{}
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, frank.WrapConfigurationError(err, "decode schema file")
	}
	seen := make(map[string]bool, len(doc.Types))
	for i, s := range doc.Types {
		switch {
		case s == nil || s.Name == "":
			return nil, frank.NewConfigurationError("schema file: type %d has no name", i)
		case seen[s.Name]:
			return nil, frank.NewConfigurationError("schema file: duplicate type %q", s.Name)
		}
		seen[s.Name] = true
		for j, f := range s.Columns {
			if f == nil {
				return nil, frank.NewConfigurationError("schema file: type %s: empty field %d", s.Name, j)
			}
		}
	}
	return doc.Types, nil
}

// Load reads and decodes the schema file at path.
func Load(path string) ([]*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, frank.WrapConfigurationError(err, "open schema file")
	}
	defer f.Close()
	return Parse(f)
}

// Interfaces returns the loaded schemas as record types.
func Interfaces(schemas []*Schema) []frank.Interface {
	is := make([]frank.Interface, len(schemas))
	for i, s := range schemas {
		is[i] = s
	}
	return is
}
