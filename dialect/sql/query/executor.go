package query

import (
	"context"
	"errors"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/schema/column"
	"github.com/syssam/frank/schema/field"
)

// Select runs the statement described by spec and returns its rows. No
// match is an empty result, not an error.
func Select(ctx context.Context, c sql.Cursor, spec SelectSpec) ([]sql.Row, error) {
	q, args, err := BuildSelect(spec)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, q, args...)
	if err != nil {
		return nil, annotate(err, "select", spec.Meta.Table())
	}
	return rows, nil
}

// Update sets the columns of set on rows of table matching where and
// returns the number of affected rows.
func Update(ctx context.Context, c sql.Cursor, table string, set map[string]any, where Predicate) (int64, error) {
	q, args, err := BuildUpdate(table, set, where)
	if err != nil {
		return 0, err
	}
	res, err := c.Exec(ctx, q, args...)
	if err != nil {
		return 0, annotate(err, "update", table)
	}
	return res.RowsAffected()
}

// Delete removes the row of table with the given identity.
func Delete(ctx context.Context, c sql.Cursor, table string, id any) error {
	q, args, err := BuildDelete(table, id)
	if err != nil {
		return err
	}
	if _, err := c.Exec(ctx, q, args...); err != nil {
		return annotate(err, "delete", table)
	}
	return nil
}

// Insert writes one row and returns its generated identity.
func Insert(ctx context.Context, c sql.Cursor, table string, cols []string, values []any) (int64, error) {
	q, args, err := BuildInsert(table, cols, values)
	if err != nil {
		return 0, err
	}
	res, err := c.Exec(ctx, q, args...)
	if err != nil {
		return 0, annotate(err, "insert", table)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, annotate(frank.NewQueryError("insert", q, err), "insert", table)
	}
	return id, nil
}

// Count returns the number of rows of table matching where.
func Count(ctx context.Context, c sql.Cursor, table string, where Predicate) (int64, error) {
	q, args, err := BuildCount(table, where)
	if err != nil {
		return 0, err
	}
	rows, err := c.Query(ctx, q, args...)
	if err != nil {
		return 0, annotate(err, "count", table)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	v := column.New(&field.Descriptor{Name: "count", Type: field.TypeInt})
	if err := v.Set(rows[0]["count"]); err != nil {
		return 0, err
	}
	return v.Int(), nil
}

// annotate records the operation and table on query errors.
func annotate(err error, op, table string) error {
	var qe *frank.QueryError
	if errors.As(err, &qe) {
		qe.Op = op
		qe.Table = table
	}
	return err
}
