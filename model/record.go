package model

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/dialect/sql/query"
	"github.com/syssam/frank/schema/column"
	"github.com/syssam/frank/schema/field"
	"github.com/syssam/frank/schema/meta"
)

// Values maps column names to values.
type Values map[string]any

// Record is one row of a record type. A record without identity is a
// draft; it becomes persisted on its first successful insert or update.
// Records must not be mutated from more than one goroutine.
type Record struct {
	client   *Client
	meta     *meta.Meta
	id       *column.Value
	builtins []*column.Value
	columns  []*column.Value
	byName   map[string]*column.Value
}

func emptyRecord(c *Client, m *meta.Meta) *Record {
	r := &Record{
		client: c,
		meta:   m,
		id:     column.New(m.Identity()),
		byName: make(map[string]*column.Value),
	}
	r.byName[meta.IdentityColumn] = r.id
	for _, d := range m.BuiltIns() {
		v := column.New(d)
		r.builtins = append(r.builtins, v)
		r.byName[d.Name] = v
	}
	for _, d := range m.Columns() {
		v := column.New(d)
		r.columns = append(r.columns, v)
		r.byName[d.Name] = v
	}
	return r
}

func newRecord(c *Client, m *meta.Meta, values Values) (*Record, error) {
	r := emptyRecord(c, m)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := r.Field(k)
		if v == nil {
			c.log.Debug("model: ignoring unknown column", "type", m.Name(), "column", k)
			continue
		}
		if err := v.Set(values[k]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// loadRecord returns the persisted record read from row.
func loadRecord(c *Client, m *meta.Meta, row sql.Row) (*Record, error) {
	r := emptyRecord(c, m)
	if err := r.load(row); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Record) load(row sql.Row) error {
	for name, x := range row {
		if v := r.Field(name); v != nil {
			if err := v.Scan(x); err != nil {
				return err
			}
		}
	}
	return nil
}

// ID returns the identity of the record, nil for drafts.
func (r *Record) ID() any { return r.id.Get() }

// Meta returns the metadata of the record type.
func (r *Record) Meta() *meta.Meta { return r.meta }

// Field returns the value holder of the named column, or nil. Foreign
// keys are also found by their storage column.
func (r *Record) Field(name string) *column.Value {
	if v, ok := r.byName[name]; ok {
		return v
	}
	if d, ok := r.meta.Column(name); ok {
		return r.byName[d.Name]
	}
	return nil
}

// Get returns the value of the named column. It returns nil for unknown
// columns.
func (r *Record) Get(name string) any {
	return r.Field(name).Get()
}

// Set sets the value of the named column.
func (r *Record) Set(name string, x any) error {
	v := r.Field(name)
	if v == nil {
		return frank.NewConfigurationError("%s has no column %q", r.meta.Name(), name)
	}
	return v.Set(x)
}

// SetForeignID sets the foreign key name, given by field or storage
// column name, to the row of the target type with the given identity.
// The associated record is loaded when the row exists; the bare identity
// is kept otherwise.
func (r *Record) SetForeignID(ctx context.Context, name string, id any) error {
	d, ok := r.meta.Column(name)
	if !ok || !d.IsForeignKey() {
		return frank.NewConfigurationError("%s has no foreign key %q", r.meta.Name(), name)
	}
	target, err := r.client.registry.Lookup(d.To)
	if err != nil {
		return err
	}
	v := r.byName[d.Name]
	var rows []sql.Row
	err = r.client.drv.Do(ctx, func(c sql.Cursor) (err error) {
		rows, err = query.Select(ctx, c, query.SelectSpec{
			Meta:  target,
			Where: query.Predicate{meta.IdentityColumn: id},
		})
		return err
	})
	if err != nil {
		return err
	}
	switch len(rows) {
	case 0:
		r.client.log.WarnContext(ctx, "model: associated record not found", "type", target.Name(), "id", id)
		return v.Set(id)
	case 1:
		assoc, err := loadRecord(r.client, target, rows[0])
		if err != nil {
			return err
		}
		return v.Set(assoc)
	default:
		return &frank.AmbiguityError{Table: target.Table(), Match: map[string]any{meta.IdentityColumn: id}, Count: len(rows)}
	}
}

// Values returns the values of the record keyed by column name, including
// the identity and the built-in columns.
func (r *Record) Values() Values {
	vals := make(Values, len(r.byName))
	for name, v := range r.byName {
		vals[name] = v.Get()
	}
	return vals
}

// String implements the fmt.Stringer interface.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.meta.Name())
	b.WriteString("(")
	for i, col := range r.meta.SelectColumns() {
		if i > 0 {
			b.WriteString(", ")
		}
		v := r.Field(col)
		x := v.Get()
		if v.Descriptor().Type == field.TypeForeignKey {
			x = v.Storage()
		}
		fmt.Fprintf(&b, "%s=%v", col, x)
	}
	b.WriteString(")")
	return b.String()
}

// Delete removes the row of a persisted record. The record becomes a
// draft.
func (r *Record) Delete(ctx context.Context) error {
	id := r.ID()
	if id == nil {
		return frank.NewConfigurationError("delete of %s draft", r.meta.Name())
	}
	err := r.client.drv.Do(ctx, func(c sql.Cursor) error {
		return query.Delete(ctx, c, r.meta.Table(), id)
	})
	if err != nil {
		return err
	}
	return r.id.Set(nil)
}

// extract returns the values written for op, aligned with the insert
// columns of the type.
func (r *Record) extract(op column.Op, now time.Time) []any {
	vals := make([]any, 0, len(r.columns)+len(r.builtins))
	for _, v := range r.columns {
		vals = append(vals, v.Extract(op, now))
	}
	for _, v := range r.builtins {
		vals = append(vals, v.Extract(op, now))
	}
	return vals
}
