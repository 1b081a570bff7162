package schema

import (
	"context"
	"log/slog"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/schema/meta"
)

// Reconciler creates the missing tables of a set of record types and
// reports the tables that differ from their declaration.
type Reconciler struct {
	drv *sql.Driver
	log *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger of the reconciler. Defaults to the logger
// of the driver.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.log = l
	}
}

// NewReconciler returns a reconciler running its statements on drv.
func NewReconciler(drv *sql.Driver, opts ...Option) *Reconciler {
	r := &Reconciler{drv: drv, log: drv.Logger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile reconciles the table of each record type in order. Drift is
// reported in the result and never returned as an error. Reconciliation
// stops at the first table that cannot be created.
func (r *Reconciler) Reconcile(ctx context.Context, metas ...*meta.Meta) (*Result, error) {
	res := &Result{}
	for _, m := range metas {
		tr, err := r.reconcile(ctx, m)
		if err != nil {
			return res, err
		}
		res.Tables = append(res.Tables, tr)
	}
	return res, nil
}

func (r *Reconciler) reconcile(ctx context.Context, m *meta.Meta) (*TableResult, error) {
	b := r.drv.Backend()
	expected, err := CreateTableSQL(b, m)
	if err != nil {
		return nil, err
	}
	live, err := r.liveDDL(ctx, m.Table())
	if frank.IsConfigurationError(err) {
		return nil, err
	}
	tr := &TableResult{Table: m.Table(), Expected: expected, Live: live}
	if err != nil || live == "" {
		if _, err := r.drv.Exec(ctx, expected); err != nil {
			return nil, err
		}
		tr.Status = StatusCreated
		r.log.InfoContext(ctx, "schema: table created", "table", m.Table(), "backend", b)
		return tr, nil
	}
	if Normalize(live) != Normalize(expected) {
		tr.Status = StatusDrifted
		r.log.WarnContext(ctx, "schema: table definition drifted",
			"table", m.Table(), "expected", expected, "live", live)
		return tr, nil
	}
	tr.Status = StatusMatched
	r.log.InfoContext(ctx, "schema: table up to date", "table", m.Table())
	return tr, nil
}

// liveDDL returns the definition of table as stored by the backend. An
// unknown table yields an empty definition on SQLite and an error on
// MySQL.
func (r *Reconciler) liveDDL(ctx context.Context, table string) (string, error) {
	query, args, column, err := dialect.LiveDDLQuery(r.drv.Backend(), table)
	if err != nil {
		return "", err
	}
	rows, err := r.drv.Raw(ctx, query, args...)
	if err != nil || len(rows) == 0 {
		return "", err
	}
	ddl, _ := rows[0][column].(string)
	return ddl, nil
}
