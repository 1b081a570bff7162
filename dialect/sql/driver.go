package sql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect"
)

// Result is an alias to sql.Result.
type Result = sql.Result

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Connector hands out the connection of a single operation. The returned
// release function is called exactly once when the operation ends.
type Connector interface {
	Connect(ctx context.Context) (*sql.Conn, func() error, error)
}

// dsnConnector opens a fresh database handle per operation and closes it
// when the operation ends.
type dsnConnector struct {
	driver string
	dsn    string
}

func (c dsnConnector) Connect(ctx context.Context) (*sql.Conn, func() error, error) {
	db, err := sql.Open(c.driver, c.dsn)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}
	return conn, func() error {
		return errors.Join(conn.Close(), db.Close())
	}, nil
}

// sharedConnector pins connections of a handle owned by the caller.
type sharedConnector struct {
	db *sql.DB
}

func (c sharedConnector) Connect(ctx context.Context) (*sql.Conn, func() error, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}

// SharedDB returns a Connector pinning one connection of db per operation.
// The handle is not closed by the driver.
func SharedDB(db *sql.DB) Connector {
	return sharedConnector{db: db}
}

// Driver executes statements against one backend. Every top-level
// operation runs on its own connection which is committed and closed when
// the operation returns.
type Driver struct {
	backend       dialect.Backend
	connector     Connector
	log           *slog.Logger
	debug         bool
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger of the driver. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.log = l
	}
}

// WithDebug logs every statement and its arguments at info level.
func WithDebug() Option {
	return func(d *Driver) {
		d.debug = true
	}
}

// NewDriver returns a driver for the backend acquiring connections from c.
func NewDriver(backend dialect.Backend, c Connector, opts ...Option) (*Driver, error) {
	if _, ok := openers[backend]; !ok {
		return nil, frank.NewConfigurationError("no cursor support for backend %q", backend)
	}
	d := &Driver{
		backend:       backend,
		connector:     c,
		log:           slog.Default(),
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Open returns a driver that opens a new handle on the data source for
// every operation.
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
func Open(backend dialect.Backend, dsn string, opts ...Option) (*Driver, error) {
	return NewDriver(backend, dsnConnector{driver: backend.DriverName(), dsn: dsn}, opts...)
}

// Backend returns the backend of the driver.
func (d *Driver) Backend() dialect.Backend { return d.backend }

// Logger returns the logger of the driver.
func (d *Driver) Logger() *slog.Logger { return d.log }

// Do runs fn with a cursor on a fresh connection. The cursor is committed
// and the connection released on every exit path, including when fn fails.
func (d *Driver) Do(ctx context.Context, fn func(Cursor) error) (rerr error) {
	open := openers[d.backend]
	d.countOperation()
	conn, release, err := d.connector.Connect(ctx)
	if err != nil {
		return d.fail(ctx, "connect", "", err)
	}
	defer func() {
		if err := release(); err != nil {
			rerr = errors.Join(rerr, d.fail(ctx, "close", "", err))
		}
	}()
	ex, commit, err := open(ctx, conn)
	if err != nil {
		return d.fail(ctx, "begin", "", err)
	}
	defer func() {
		if err := commit(); err != nil {
			rerr = errors.Join(rerr, d.fail(ctx, "commit", "", err))
		}
	}()
	return fn(&cursor{drv: d, ex: ex})
}

// Raw runs a raw query in its own operation and returns its rows.
func (d *Driver) Raw(ctx context.Context, query string, args ...any) ([]Row, error) {
	var rows []Row
	err := d.Do(ctx, func(c Cursor) (err error) {
		rows, err = c.Query(ctx, query, args...)
		return err
	})
	return rows, err
}

// Exec runs a raw statement in its own operation.
func (d *Driver) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	var res Result
	err := d.Do(ctx, func(c Cursor) (err error) {
		res, err = c.Exec(ctx, query, args...)
		return err
	})
	return res, err
}

// fail logs a backend failure and translates it into a *frank.QueryError.
func (d *Driver) fail(ctx context.Context, op, query string, err error) error {
	qe := frank.NewQueryError(op, query, err)
	qe.Constraint = IsConstraintError(err)
	d.log.ErrorContext(ctx, "dialect/sql: "+op+" failed",
		"backend", d.backend, "query", query, "error", err)
	return qe
}

func (d *Driver) logStatement(ctx context.Context, op, query string, args []any) {
	level := slog.LevelDebug
	if d.debug {
		level = slog.LevelInfo
	}
	d.log.Log(ctx, level, "dialect/sql: "+op, "backend", d.backend, "query", query, "args", args)
}
