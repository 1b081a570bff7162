package model

import (
	"context"
	"maps"
	"time"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/dialect/sql/query"
	"github.com/syssam/frank/schema/column"
	"github.com/syssam/frank/schema/field"
	"github.com/syssam/frank/schema/meta"
)

// Save persists the record. Persisted records are updated by identity;
// drafts are inserted.
func (r *Record) Save(ctx context.Context) error {
	if id := r.ID(); id != nil {
		return r.UpsertWhere(ctx, query.Predicate{meta.IdentityColumn: id})
	}
	return r.UpsertWhere(ctx, nil)
}

// Upsert reconciles the record with the rows matching its current values
// of the given columns. Columns are user column names or "id".
//
//	w, _ := client.New(Widget{}, model.Values{"name": "abc", "counter": 5})
//	err := w.Upsert(ctx, "name") // updates the widget named "abc", or inserts it
func (r *Record) Upsert(ctx context.Context, on ...string) error {
	match := make(query.Predicate, len(on))
	for _, name := range on {
		v := r.Field(name)
		if v == nil {
			return frank.NewConfigurationError("upsert of %s on unknown column %q", r.meta.Name(), name)
		}
		col := name
		if d := v.Descriptor(); d.Type != field.TypeIdentity {
			col = d.Column()
		}
		match[col] = v.Storage()
	}
	return r.UpsertWhere(ctx, match)
}

// UpsertWhere reconciles the record with the rows matching match:
//
//   - no row: the record is inserted,
//   - one row: the row is merged with the record and updated,
//   - more rows: a *frank.AmbiguityError is returned and nothing is written.
//
// Persisted records always match on their identity. Asking one to match
// another identity returns a *frank.IdentityMismatchError. An empty match
// inserts without querying.
func (r *Record) UpsertWhere(ctx context.Context, match query.Predicate) error {
	match = maps.Clone(match)
	if id := r.ID(); id != nil {
		want, ok := match[meta.IdentityColumn]
		if ok && !r.sameID(id, want) {
			return &frank.IdentityMismatchError{Table: r.meta.Table(), Have: id, Want: want}
		}
		if !ok {
			if match == nil {
				match = make(query.Predicate, 1)
			}
			match[meta.IdentityColumn] = id
		}
	}
	now := r.client.now()
	return r.client.drv.Do(ctx, func(c sql.Cursor) error {
		var rows []sql.Row
		if len(match) > 0 {
			var err error
			rows, err = query.Select(ctx, c, query.SelectSpec{Meta: r.meta, Where: match})
			if err != nil {
				return err
			}
		}
		switch len(rows) {
		case 0:
			return r.insert(ctx, c, now)
		case 1:
			return r.update(ctx, c, rows[0], now)
		default:
			r.client.log.ErrorContext(ctx, "model: ambiguous upsert", "table", r.meta.Table(), "match", match, "count", len(rows))
			return &frank.AmbiguityError{Table: r.meta.Table(), Match: match, Count: len(rows)}
		}
	})
}

func (r *Record) insert(ctx context.Context, c sql.Cursor, now time.Time) error {
	vals := r.extract(column.OpInsert, now)
	id, err := query.Insert(ctx, c, r.meta.Table(), r.meta.InsertColumns(), vals)
	if err != nil {
		return err
	}
	if err := r.id.Scan(id); err != nil {
		return err
	}
	r.stamp(vals)
	r.clean()
	r.client.log.DebugContext(ctx, "model: inserted", "table", r.meta.Table(), "id", id)
	return nil
}

// update merges stored with the record and writes the result. Values
// assigned on the record win, nil included; unassigned values keep their
// stored value. Columns stamped on update are refreshed. The record is
// left untouched if the write fails.
func (r *Record) update(ctx context.Context, c sql.Cursor, stored sql.Row, now time.Time) error {
	vals := r.extract(column.OpUpdate, now)
	values := r.values()
	set := make(map[string]any, len(vals))
	for i, col := range r.meta.InsertColumns() {
		v := values[i]
		if d := v.Descriptor(); d.Type == field.TypeTime && d.Mark == field.MarkUpdate {
			vals[i] = now.UTC()
		}
		if x := vals[i]; x != nil || v.Assigned() {
			set[col] = x
		} else if x, ok := stored[col]; ok {
			set[col] = x
		}
	}
	id := stored[meta.IdentityColumn]
	if _, err := query.Update(ctx, c, r.meta.Table(), set, query.Predicate{meta.IdentityColumn: id}); err != nil {
		return err
	}
	if err := r.id.Scan(id); err != nil {
		return err
	}
	r.stamp(vals)
	// Fill unassigned values from the stored row.
	for _, v := range values {
		if v.IsNull() && !v.Assigned() {
			if err := v.Scan(stored[v.Descriptor().Column()]); err != nil {
				return err
			}
		}
	}
	r.clean()
	r.client.log.DebugContext(ctx, "model: updated", "table", r.meta.Table(), "id", id)
	return nil
}

// stamp stores the timestamps written by the last operation.
func (r *Record) stamp(vals []any) {
	for i, v := range r.values() {
		if v.Descriptor().Mark != field.MarkNone && vals[i] != nil {
			_ = v.Set(vals[i])
		}
	}
}

// clean marks every value as in sync with the stored row.
func (r *Record) clean() {
	r.id.Clean()
	for _, v := range r.values() {
		v.Clean()
	}
}

// values returns the user values followed by the built-in values.
func (r *Record) values() []*column.Value {
	vs := make([]*column.Value, 0, len(r.columns)+len(r.builtins))
	vs = append(vs, r.columns...)
	return append(vs, r.builtins...)
}

func (r *Record) sameID(a, b any) bool {
	va, vb := column.New(r.meta.Identity()), column.New(r.meta.Identity())
	if va.Scan(a) != nil || vb.Scan(b) != nil {
		return false
	}
	return va.Get() == vb.Get()
}
