package model

import (
	"context"
	"log/slog"
	"time"

	"github.com/syssam/frank"
	"github.com/syssam/frank/config"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/dialect/sql/query"
	"github.com/syssam/frank/dialect/sql/schema"
	"github.com/syssam/frank/schema/meta"
)

// Client is the handle records are created and queried through. It holds
// no connection; every operation opens its own.
type Client struct {
	drv      *sql.Driver
	registry *meta.Registry
	log      *slog.Logger
	now      func() time.Time
	drvOpts  []sql.Option
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger of the client. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithRegistry shares a metadata registry between clients.
func WithRegistry(r *meta.Registry) Option {
	return func(c *Client) {
		c.registry = r
	}
}

// WithClock sets the clock used for the creation and update timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithDriverOptions sets the options of the driver created by Open.
func WithDriverOptions(opts ...sql.Option) Option {
	return func(c *Client) {
		c.drvOpts = append(c.drvOpts, opts...)
	}
}

func newClient(opts []Option) *Client {
	c := &Client{
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = meta.NewRegistry()
	}
	return c
}

// NewClient returns a client running its operations on drv.
func NewClient(drv *sql.Driver, opts ...Option) *Client {
	c := newClient(opts)
	c.drv = drv
	return c
}

// Open validates cfg and returns a client connecting to the configured
// database.
func Open(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := newClient(opts)
	drv, err := sql.Open(cfg.Type, cfg.DSN(), append([]sql.Option{sql.WithLogger(c.log)}, c.drvOpts...)...)
	if err != nil {
		return nil, err
	}
	c.drv = drv
	c.log.Debug("model: client opened", "config", cfg.String())
	return c, nil
}

// Driver returns the driver of the client.
func (c *Client) Driver() *sql.Driver { return c.drv }

// Registry returns the metadata registry of the client.
func (c *Client) Registry() *meta.Registry { return c.registry }

// Register builds the metadata of the given record types. Types are also
// registered on first use; registering them upfront makes them known to
// joins, foreign key resolution, Dump and Reconcile.
func (c *Client) Register(schemas ...frank.Interface) error {
	for _, s := range schemas {
		if _, err := c.registry.Of(s); err != nil {
			return err
		}
	}
	return nil
}

// New returns a draft record of type s initialized from v. Keys are
// matched against the identity, the built-in columns and the user
// columns, in that order. Unknown keys are ignored.
func (c *Client) New(s frank.Interface, v Values) (*Record, error) {
	m, err := c.registry.Of(s)
	if err != nil {
		return nil, err
	}
	return newRecord(c, m, v)
}

// Query returns a query over the records of type s.
func (c *Client) Query(s frank.Interface) *Query {
	m, err := c.registry.Of(s)
	q := &Query{client: c, meta: m, err: err}
	if m != nil {
		q.joins = m.Joins()
	}
	return q
}

// Get returns the records of type s matching where, joined with the
// default joins of the type. No match is not an error.
func (c *Client) Get(ctx context.Context, s frank.Interface, where query.Predicate) ([]*Record, error) {
	return c.Query(s).Where(where).All(ctx)
}

// First returns the first record of type s matching where, or a
// *frank.NotFoundError.
func (c *Client) First(ctx context.Context, s frank.Interface, where query.Predicate) (*Record, error) {
	return c.Query(s).Where(where).First(ctx)
}

// All returns every record of type s.
func (c *Client) All(ctx context.Context, s frank.Interface) ([]*Record, error) {
	return c.Query(s).All(ctx)
}

// Reconcile compares the tables of the registered record types with their
// declarations, creating missing tables.
func (c *Client) Reconcile(ctx context.Context) (*schema.Result, error) {
	r := schema.NewReconciler(c.drv, schema.WithLogger(c.log))
	return r.Reconcile(ctx, c.registry.All()...)
}

// Dump returns the rows of every registered table, keyed by table name.
func (c *Client) Dump(ctx context.Context) (map[string][]sql.Row, error) {
	dump := make(map[string][]sql.Row)
	err := c.drv.Do(ctx, func(cur sql.Cursor) error {
		for _, m := range c.registry.All() {
			rows, err := query.Select(ctx, cur, query.SelectSpec{Meta: m, OrderBy: []string{meta.IdentityColumn}})
			if err != nil {
				return err
			}
			dump[m.Table()] = rows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dump, nil
}
