// Package sql provides the connection and cursor lifecycle of the engine.
//
// A Driver never holds a connection between operations. Every top-level
// operation acquires one connection, readies a cursor through the
// capability of its backend, runs, and then commits and closes, whether or
// not it failed:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    return err
//	}
//	err = drv.Do(ctx, func(c sql.Cursor) error {
//	    rows, err := c.Query(ctx, "SELECT id, name FROM widgets WHERE counter >= ?", 4)
//	    ...
//	})
//
// # Backends
//
// SQLite cursors run in autocommit mode on the pinned connection. MySQL
// cursors wrap the connection in a transaction committed when the
// operation ends.
//
// # Rows
//
// Query results are materialized as Row maps keyed by column name.
// Columns ending in "_at" or "_timestamp" are parsed into time.Time,
// columns starting with "is_" are coerced to bool.
//
// # Errors
//
// Errors reported by the backend are logged and returned as
// *frank.QueryError values; constraint violations are flagged on the
// error. Backend error types never cross the cursor boundary unwrapped.
package sql
