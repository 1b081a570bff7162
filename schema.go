package frank

import (
	"reflect"

	"github.com/syssam/frank/schema/field"
)

// Field is the interface implemented by the field builders of the
// schema/field package.
type Field interface {
	Descriptor() *field.Descriptor
}

// Interface is the interface implemented by record types. The engine
// only consumes the declared descriptors; it never inspects struct fields.
//
//	type Widget struct{ frank.Schema }
//
//	func (Widget) Fields() []frank.Field {
//	    return []frank.Field{
//	        field.String("name"),
//	        field.Int("counter"),
//	        field.JSON("data"),
//	    }
//	}
type Interface interface {
	// Fields returns the user columns of the record type, in order.
	Fields() []Field
	// Joins returns the names of the record types that queries of this
	// type join by default. A foreign key between the two types must be
	// declared on either side.
	Joins() []string
}

// Namer is implemented by record types that are not declared as Go types,
// such as schemas loaded from a file.
type Namer interface {
	TypeName() string
}

// Schema is the default implementation of Interface. It is embedded by
// record types to avoid implementing the optional methods.
type Schema struct{}

// Fields of the schema.
func (Schema) Fields() []Field { return nil }

// Joins of the schema.
func (Schema) Joins() []string { return nil }

var _ Interface = (*Schema)(nil)

// TypeName returns the name of the record type. Only the name of the Go
// type is read, never its fields.
func TypeName(s Interface) string {
	if n, ok := s.(Namer); ok {
		return n.TypeName()
	}
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
