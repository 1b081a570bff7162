// Package meta derives the immutable table metadata of record types.
package meta

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/frank"
	"github.com/syssam/frank/schema/field"
)

// Names of the implicit columns every table carries.
const (
	IdentityColumn  = "id"
	CreatedAtColumn = "created_at"
	UpdatedAtColumn = "updated_at"
)

// Meta is the table metadata of a record type. It is built once per type
// and never mutated afterwards.
type Meta struct {
	schema   frank.Interface
	name     string
	table    string
	short    string
	identity *field.Descriptor
	builtins []*field.Descriptor
	columns  []*field.Descriptor
	joins    []string
	byName   map[string]*field.Descriptor
}

// Build derives the metadata of s. Callers should go through a Registry,
// which builds each type only once.
func Build(s frank.Interface) (*Meta, error) {
	name := frank.TypeName(s)
	if name == "" {
		return nil, frank.NewConfigurationError("record type %T has no name", s)
	}
	table := cases.Lower(language.Und).String(name) + "s"
	m := &Meta{
		schema: s,
		name:   name,
		table:  table,
		short:  table[:1],
		identity: &field.Descriptor{
			Name: IdentityColumn,
			Type: field.TypeIdentity,
		},
		builtins: []*field.Descriptor{
			{Name: CreatedAtColumn, Type: field.TypeTime, Mark: field.MarkCreate},
			{Name: UpdatedAtColumn, Type: field.TypeTime, Mark: field.MarkUpdate},
		},
		joins:  slices.Clone(s.Joins()),
		byName: make(map[string]*field.Descriptor),
	}
	m.byName[IdentityColumn] = m.identity
	for _, d := range m.builtins {
		m.byName[d.Name] = d
	}
	for _, f := range s.Fields() {
		d := f.Descriptor()
		if err := d.Validate(); err != nil {
			return nil, frank.WrapConfigurationError(err, "record type %s", name)
		}
		if _, ok := m.byName[d.Name]; ok {
			return nil, frank.NewConfigurationError("record type %s: duplicate column %q", name, d.Name)
		}
		m.byName[d.Name] = d
		m.columns = append(m.columns, d)
	}
	for _, d := range m.columns {
		if d.IsForeignKey() {
			if other, ok := m.byName[d.Column()]; ok && other != d {
				return nil, frank.NewConfigurationError("record type %s: foreign key %q collides with column %q", name, d.Name, d.Column())
			}
		}
	}
	return m, nil
}

// Schema returns the record type the metadata was built from.
func (m *Meta) Schema() frank.Interface { return m.schema }

// Name returns the record type name.
func (m *Meta) Name() string { return m.name }

// Table returns the table name: the lowercased type name followed by "s".
func (m *Meta) Table() string { return m.table }

// Short returns the table alias, the first letter of the table name.
func (m *Meta) Short() string { return m.short }

// Alias returns the table with its alias, e.g. "widgets w".
func (m *Meta) Alias() string { return m.table + " " + m.short }

// Identity returns the descriptor of the identity column.
func (m *Meta) Identity() *field.Descriptor { return m.identity }

// BuiltIns returns the descriptors of the creation and update time columns.
func (m *Meta) BuiltIns() []*field.Descriptor { return slices.Clone(m.builtins) }

// Columns returns the user column descriptors in declaration order.
func (m *Meta) Columns() []*field.Descriptor { return slices.Clone(m.columns) }

// Joins returns the record type names joined by default.
func (m *Meta) Joins() []string { return slices.Clone(m.joins) }

// InsertColumns returns the storage columns written on insert: user columns
// followed by built-ins. The identity is excluded.
func (m *Meta) InsertColumns() []string {
	cols := make([]string, 0, len(m.columns)+len(m.builtins))
	for _, d := range m.columns {
		cols = append(cols, d.Column())
	}
	for _, d := range m.builtins {
		cols = append(cols, d.Name)
	}
	return cols
}

// SelectColumns returns the identity followed by the insert columns.
func (m *Meta) SelectColumns() []string {
	return append([]string{IdentityColumn}, m.InsertColumns()...)
}

// Column returns the descriptor declared with the given name. Foreign keys
// are also found by their storage column.
func (m *Meta) Column(name string) (*field.Descriptor, bool) {
	if d, ok := m.byName[name]; ok {
		return d, true
	}
	for _, d := range m.columns {
		if d.IsForeignKey() && d.Column() == name {
			return d, true
		}
	}
	return nil, false
}

// ForeignKeyTo returns the foreign key of m targeting the record type
// named target.
func (m *Meta) ForeignKeyTo(target string) (*field.Descriptor, bool) {
	for _, d := range m.columns {
		if d.IsForeignKey() && d.To == target {
			return d, true
		}
	}
	return nil, false
}
