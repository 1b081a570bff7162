package frank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/frank"
	"github.com/syssam/frank/schema/field"
)

type Widget struct {
	frank.Schema
}

func (Widget) Fields() []frank.Field {
	return []frank.Field{
		field.String("name"),
		field.Int("counter"),
	}
}

type named struct {
	frank.Schema
	name string
}

func (n named) TypeName() string { return n.name }

// TestSchemaDefaultMethods tests the default implementations of Schema methods.
func TestSchemaDefaultMethods(t *testing.T) {
	t.Parallel()

	type TestSchema struct {
		frank.Schema
	}

	s := TestSchema{}
	assert.Nil(t, s.Fields())
	assert.Nil(t, s.Joins())
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		schema frank.Interface
		want   string
	}{
		{"value", Widget{}, "Widget"},
		{"pointer", &Widget{}, "Widget"},
		{"namer", named{name: "Gadget"}, "Gadget"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, frank.TypeName(tt.schema))
		})
	}
}

func TestFieldsDescriptors(t *testing.T) {
	t.Parallel()

	fields := Widget{}.Fields()
	assert.Len(t, fields, 2)
	d := fields[0].Descriptor()
	assert.Equal(t, "name", d.Name)
	assert.Equal(t, field.TypeString, d.Type)
	assert.NoError(t, d.Validate())
}
