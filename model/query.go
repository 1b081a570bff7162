package model

import (
	"context"
	"maps"
	"slices"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/dialect/sql/query"
	"github.com/syssam/frank/schema/meta"
)

// Query is a query over the records of one type. Queries start with the
// default joins of the type.
type Query struct {
	client *Client
	meta   *meta.Meta
	err    error
	joins  []string
	where  query.Predicate
	order  []string
	limit  int
}

// Join adds inner joins with the named record types. A foreign key
// between the two types must be declared on either side.
func (q *Query) Join(names ...string) *Query {
	for _, n := range names {
		if !slices.Contains(q.joins, n) {
			q.joins = append(q.joins, n)
		}
	}
	return q
}

// Where adds conditions to the query.
func (q *Query) Where(p query.Predicate) *Query {
	if len(p) == 0 {
		return q
	}
	if q.where == nil {
		q.where = make(query.Predicate, len(p))
	}
	maps.Copy(q.where, p)
	return q
}

// Order orders the results by the given columns. Columns prefixed with
// "-" are sorted in descending order.
func (q *Query) Order(columns ...string) *Query {
	q.order = append(q.order, columns...)
	return q
}

// Limit limits the number of results.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) clone() *Query {
	c := *q
	c.joins = slices.Clone(q.joins)
	c.where = maps.Clone(q.where)
	c.order = slices.Clone(q.order)
	return &c
}

func (q *Query) spec() (query.SelectSpec, error) {
	if q.err != nil {
		return query.SelectSpec{}, q.err
	}
	spec := query.SelectSpec{
		Meta:    q.meta,
		Where:   q.where,
		OrderBy: q.order,
		Limit:   q.limit,
	}
	for _, n := range q.joins {
		m, err := q.client.registry.Lookup(n)
		if err != nil {
			return query.SelectSpec{}, err
		}
		spec.Joins = append(spec.Joins, m)
	}
	return spec, nil
}

// All returns the matching records.
func (q *Query) All(ctx context.Context) ([]*Record, error) {
	spec, err := q.spec()
	if err != nil {
		return nil, err
	}
	var rows []sql.Row
	err = q.client.drv.Do(ctx, func(c sql.Cursor) (err error) {
		rows, err = query.Select(ctx, c, spec)
		return err
	})
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		r, err := loadRecord(q.client, q.meta, row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// First returns the first matching record, or a *frank.NotFoundError.
func (q *Query) First(ctx context.Context) (*Record, error) {
	records, err := q.clone().Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &frank.NotFoundError{Table: q.meta.Table()}
	}
	return records[0], nil
}

// Count returns the number of matching records.
func (q *Query) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(q.joins) > 0 {
		records, err := q.All(ctx)
		return int64(len(records)), err
	}
	var n int64
	err := q.client.drv.Do(ctx, func(c sql.Cursor) (err error) {
		n, err = query.Count(ctx, c, q.meta.Table(), q.where)
		return err
	})
	return n, err
}
