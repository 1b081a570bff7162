package field

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the semantic type of a column.
type Type uint8

// List of semantic types.
const (
	TypeInvalid Type = iota
	TypeString
	TypeText
	TypeInt
	TypeFloat
	TypeBool
	TypeJSON
	TypeTime
	TypeIdentity
	TypeForeignKey
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:    "invalid",
	TypeString:     "string",
	TypeText:       "text",
	TypeInt:        "int",
	TypeFloat:      "float",
	TypeBool:       "bool",
	TypeJSON:       "json",
	TypeTime:       "datetime",
	TypeIdentity:   "identity",
	TypeForeignKey: "foreign_key",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// typeAliases holds the accepted spellings of types in declaration files.
var typeAliases = map[string]Type{
	"string":      TypeString,
	"char":        TypeString,
	"text":        TypeText,
	"int":         TypeInt,
	"integer":     TypeInt,
	"float":       TypeFloat,
	"decimal":     TypeFloat,
	"bool":        TypeBool,
	"boolean":     TypeBool,
	"json":        TypeJSON,
	"datetime":    TypeTime,
	"time":        TypeTime,
	"identity":    TypeIdentity,
	"foreign_key": TypeForeignKey,
	"fk":          TypeForeignKey,
}

// ParseType parses a type name as written in a schema file.
func ParseType(s string) (Type, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("field: unknown type %q", s)
}

// Mark controls when a datetime column is stamped by the engine.
type Mark uint8

// Timestamp marks.
const (
	MarkNone Mark = iota
	MarkCreate
	MarkUpdate
)

// String returns the string representation of a mark.
func (m Mark) String() string {
	switch m {
	case MarkCreate:
		return "create"
	case MarkUpdate:
		return "update"
	default:
		return "none"
	}
}

// ParseMark parses a mark name. The empty string is MarkNone.
func ParseMark(s string) (Mark, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return MarkNone, nil
	case "create":
		return MarkCreate, nil
	case "update":
		return MarkUpdate, nil
	}
	return MarkNone, fmt.Errorf("field: unknown mark %q", s)
}

// A Descriptor for field configuration.
type Descriptor struct {
	Name     string // column name as declared.
	Type     Type   // semantic type.
	Mark     Mark   // stamping mark of datetime columns.
	To       string // target record type of foreign keys.
	Size     int    // max size. zero means unbounded.
	Nullable bool   // column accepts NULL.
	Err      error  // first error found while building.
}

// Column returns the storage column of the field. Foreign keys are
// stored in an implicit "<name>_id" column.
func (d *Descriptor) Column() string {
	if d.Type == TypeForeignKey {
		return d.Name + "_id"
	}
	return d.Name
}

// IsForeignKey reports if the field is a foreign key.
func (d *Descriptor) IsForeignKey() bool { return d.Type == TypeForeignKey }

// Validate reports the first configuration error of the descriptor.
func (d *Descriptor) Validate() error {
	switch {
	case d.Err != nil:
		return d.Err
	case d.Name == "":
		return errors.New("field: missing field name")
	case !d.Type.Valid():
		return fmt.Errorf("field: %q has invalid type", d.Name)
	case d.Type == TypeForeignKey && d.To == "":
		return fmt.Errorf("field: foreign key %q has no target type", d.Name)
	case d.Mark != MarkNone && d.Type != TypeTime:
		return fmt.Errorf("field: mark %s is only valid on datetime fields, %q is %s", d.Mark, d.Name, d.Type)
	case d.Size < 0:
		return fmt.Errorf("field: %q has negative size %d", d.Name, d.Size)
	}
	return nil
}

// Builder configures a field descriptor.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// String returns a new field builder for a bounded string column.
//
//	field.String("name").MaxSize(64)
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Text returns a new field builder for an unbounded text column.
func Text(name string) *Builder { return newBuilder(name, TypeText) }

// Int returns a new field builder for an integer column.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Float returns a new field builder for a float column.
func Float(name string) *Builder { return newBuilder(name, TypeFloat) }

// Bool returns a new field builder for a boolean column.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// JSON returns a new field builder for a JSON column. The value is
// kept as serialized text and supports access by key.
func JSON(name string) *Builder { return newBuilder(name, TypeJSON) }

// Time returns a new field builder for a datetime column.
//
//	field.Time("seen_at").Mark(field.MarkUpdate)
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// ForeignKey returns a new field builder for a one-row association to
// the record type named to. The value is stored in "<name>_id".
//
//	field.ForeignKey("owner", "User")
func ForeignKey(name, to string) *Builder {
	b := newBuilder(name, TypeForeignKey)
	b.desc.To = to
	return b
}

// MaxSize sets the max size of the column.
func (b *Builder) MaxSize(n int) *Builder {
	if n <= 0 && b.desc.Err == nil {
		b.desc.Err = fmt.Errorf("field: %q max size must be positive, got %d", b.desc.Name, n)
	}
	b.desc.Size = n
	return b
}

// Nullable marks the column as accepting NULL values.
func (b *Builder) Nullable() *Builder {
	b.desc.Nullable = true
	return b
}

// Mark sets the stamping mark of a datetime field.
func (b *Builder) Mark(m Mark) *Builder {
	if b.desc.Type != TypeTime && b.desc.Err == nil {
		b.desc.Err = fmt.Errorf("field: mark %s is only valid on datetime fields, %q is %s", m, b.desc.Name, b.desc.Type)
	}
	b.desc.Mark = m
	return b
}

// Descriptor implements the frank.Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
