package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/frank/schema/field"
)

func TestString(t *testing.T) {
	fd := field.String("name").Descriptor()
	assert.Equal(t, "name", fd.Name)
	assert.Equal(t, field.TypeString, fd.Type)
	assert.Equal(t, "name", fd.Column())
	assert.Zero(t, fd.Size)
	assert.NoError(t, fd.Validate())

	fd = field.String("name").MaxSize(64).Nullable().Descriptor()
	assert.Equal(t, 64, fd.Size)
	assert.True(t, fd.Nullable)
	assert.NoError(t, fd.Validate())

	fd = field.String("name").MaxSize(0).Descriptor()
	assert.EqualError(t, fd.Validate(), `field: "name" max size must be positive, got 0`)
}

func TestTime(t *testing.T) {
	fd := field.Time("seen_at").Descriptor()
	assert.Equal(t, field.TypeTime, fd.Type)
	assert.Equal(t, field.MarkNone, fd.Mark)

	fd = field.Time("published_at").Mark(field.MarkCreate).Descriptor()
	assert.Equal(t, field.MarkCreate, fd.Mark)
	assert.NoError(t, fd.Validate())

	fd = field.Int("counter").Mark(field.MarkUpdate).Descriptor()
	assert.Error(t, fd.Validate())
}

func TestForeignKey(t *testing.T) {
	fd := field.ForeignKey("owner", "User").Descriptor()
	assert.True(t, fd.IsForeignKey())
	assert.Equal(t, "User", fd.To)
	assert.Equal(t, "owner_id", fd.Column())
	assert.NoError(t, fd.Validate())

	fd = field.ForeignKey("owner", "").Descriptor()
	assert.EqualError(t, fd.Validate(), `field: foreign key "owner" has no target type`)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&field.Descriptor{Type: field.TypeInt}).Validate())
	assert.Error(t, (&field.Descriptor{Name: "x"}).Validate())
	assert.Error(t, (&field.Descriptor{Name: "x", Type: field.TypeInt, Size: -1}).Validate())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want field.Type
	}{
		{"string", field.TypeString},
		{"Text", field.TypeText},
		{"integer", field.TypeInt},
		{" float ", field.TypeFloat},
		{"boolean", field.TypeBool},
		{"json", field.TypeJSON},
		{"datetime", field.TypeTime},
		{"fk", field.TypeForeignKey},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := field.ParseType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := field.ParseType("uuid")
	assert.Error(t, err)
}

func TestParseMark(t *testing.T) {
	m, err := field.ParseMark("")
	require.NoError(t, err)
	assert.Equal(t, field.MarkNone, m)
	m, err = field.ParseMark("Update")
	require.NoError(t, err)
	assert.Equal(t, field.MarkUpdate, m)
	assert.Equal(t, "update", m.String())
	_, err = field.ParseMark("delete")
	assert.Error(t, err)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "json", field.TypeJSON.String())
	assert.Equal(t, "foreign_key", field.TypeForeignKey.String())
	assert.Equal(t, "invalid", field.Type(200).String())
	assert.False(t, field.TypeInvalid.Valid())
	assert.True(t, field.TypeIdentity.Valid())
}
