package sql

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// QueryStats counts the work done by a driver. It is safe for concurrent
// use and may be shared by several drivers.
type QueryStats struct {
	Operations atomic.Int64 // connections acquired by Do
	Queries    atomic.Int64 // statements returning rows
	Execs      atomic.Int64 // statements returning no rows
	Rows       atomic.Int64 // rows materialized by queries
	Elapsed    atomic.Int64 // nanoseconds spent in statements
	Slow       atomic.Int64
	Failures   atomic.Int64
}

// Stats returns a snapshot of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		Operations: s.Operations.Load(),
		Queries:    s.Queries.Load(),
		Execs:      s.Execs.Load(),
		Rows:       s.Rows.Load(),
		Elapsed:    time.Duration(s.Elapsed.Load()),
		Slow:       s.Slow.Load(),
		Failures:   s.Failures.Load(),
	}
}

// Reset zeroes the counters.
func (s *QueryStats) Reset() {
	for _, c := range []*atomic.Int64{&s.Operations, &s.Queries, &s.Execs, &s.Rows, &s.Elapsed, &s.Slow, &s.Failures} {
		c.Store(0)
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	Operations int64
	Queries    int64
	Execs      int64
	Rows       int64
	Elapsed    time.Duration
	Slow       int64
	Failures   int64
}

// Statements returns the number of executed statements.
func (s StatsSnapshot) Statements() int64 { return s.Queries + s.Execs }

// AvgDuration returns the average statement duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	n := s.Statements()
	if n == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(n)
}

// String implements fmt.Stringer.
//
//	ops=2 queries=1 execs=1 rows=3 elapsed=1.2ms avg=600µs slow=0 failures=0
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("ops=%d queries=%d execs=%d rows=%d elapsed=%s avg=%s slow=%d failures=%d",
		s.Operations, s.Queries, s.Execs, s.Rows, s.Elapsed, s.AvgDuration(), s.Slow, s.Failures)
}

// SlowQueryHook is called with every statement slower than the threshold
// of the driver.
type SlowQueryHook func(ctx context.Context, query string, args []any, elapsed time.Duration)

// WithStats counts the work of the driver into s.
//
//	var stats sql.QueryStats
//	drv, _ := sql.Open(dialect.SQLite, dsn, sql.WithStats(&stats), sql.WithSlowQueryLog())
//	...
//	log.Println(stats.Stats())
func WithStats(s *QueryStats) Option {
	return func(d *Driver) {
		d.stats = s
	}
}

// WithSlowThreshold sets the duration above which statements are slow.
// Defaults to 100ms.
func WithSlowThreshold(t time.Duration) Option {
	return func(d *Driver) {
		d.slowThreshold = t
	}
}

// WithSlowQueryHook sets the hook called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) Option {
	return func(d *Driver) {
		d.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements at warn level.
func WithSlowQueryLog() Option {
	return func(d *Driver) {
		d.slowHook = func(ctx context.Context, query string, args []any, elapsed time.Duration) {
			d.log.WarnContext(ctx, "dialect/sql: slow statement", "backend", d.backend, "elapsed", elapsed, "query", query, "args", args)
		}
	}
}

// statement describes one executed statement for accounting.
type statement struct {
	query string
	args  []any
	start time.Time
	rows  int   // rows materialized, -1 for execs
	err   error
}

func (d *Driver) countOperation() {
	if d.stats != nil {
		d.stats.Operations.Add(1)
	}
}

func (d *Driver) record(ctx context.Context, st statement) {
	elapsed := time.Since(st.start)
	slow := elapsed > d.slowThreshold
	if s := d.stats; s != nil {
		if st.rows < 0 {
			s.Execs.Add(1)
		} else {
			s.Queries.Add(1)
			s.Rows.Add(int64(st.rows))
		}
		s.Elapsed.Add(int64(elapsed))
		if st.err != nil {
			s.Failures.Add(1)
		}
		if slow {
			s.Slow.Add(1)
		}
	}
	if slow && d.slowHook != nil {
		d.slowHook(ctx, st.query, st.args, elapsed)
	}
}
