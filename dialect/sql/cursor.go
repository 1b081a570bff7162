package sql

import (
	"context"
	"database/sql"
	"time"

	"github.com/syssam/frank/dialect"
)

// Cursor executes statements within a single operation.
type Cursor interface {
	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	// Query executes a statement and materializes all of its rows.
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
}

// cursorOpener readies a pinned connection for statements and returns the
// function committing its unit of work.
type cursorOpener func(ctx context.Context, conn *sql.Conn) (ExecQuerier, func() error, error)

// openers holds the cursor capability of every supported backend.
var openers = map[dialect.Backend]cursorOpener{
	// SQLite runs in autocommit mode, each statement is its own unit.
	dialect.SQLite: func(_ context.Context, conn *sql.Conn) (ExecQuerier, func() error, error) {
		return conn, func() error { return nil }, nil
	},
	dialect.MySQL: func(ctx context.Context, conn *sql.Conn) (ExecQuerier, func() error, error) {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, err
		}
		return tx, tx.Commit, nil
	},
}

type cursor struct {
	drv *Driver
	ex  ExecQuerier
}

func (c *cursor) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	c.drv.logStatement(ctx, "exec", query, args)
	start := time.Now()
	res, err := c.ex.ExecContext(ctx, query, args...)
	c.drv.record(ctx, statement{query: query, args: args, start: start, rows: -1, err: err})
	if err != nil {
		return nil, c.drv.fail(ctx, "exec", query, err)
	}
	return res, nil
}

func (c *cursor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	c.drv.logStatement(ctx, "query", query, args)
	start := time.Now()
	rows, err := c.ex.QueryContext(ctx, query, args...)
	if err != nil {
		c.drv.record(ctx, statement{query: query, args: args, start: start, err: err})
		return nil, c.drv.fail(ctx, "query", query, err)
	}
	res, err := ScanRows(rows)
	c.drv.record(ctx, statement{query: query, args: args, start: start, rows: len(res), err: err})
	if err != nil {
		return nil, c.drv.fail(ctx, "query", query, err)
	}
	return res, nil
}
