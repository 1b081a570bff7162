package model_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/dialect/sql/query"
	"github.com/syssam/frank/internal/testutil"
	"github.com/syssam/frank/model"
	"github.com/syssam/frank/schema/field"
)

type Widget struct{ frank.Schema }

func (Widget) Fields() []frank.Field {
	return []frank.Field{
		field.String("name"),
		field.Int("counter"),
		field.JSON("data").Nullable(),
	}
}

type Part struct{ frank.Schema }

func (Part) Fields() []frank.Field {
	return []frank.Field{
		field.String("label"),
		field.ForeignKey("widget", "Widget"),
	}
}

func (Part) Joins() []string { return []string{"Widget"} }

const (
	selectWidgets = "SELECT id, name, counter, data, created_at, updated_at FROM widgets w"
	insertWidget  = "INSERT INTO widgets (name, counter, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	updateWidget  = "UPDATE widgets SET counter = ?, created_at = ?, data = ?, name = ?, updated_at = ? WHERE id = ?"
)

var widgetColumns = []string{"id", "name", "counter", "data", "created_at", "updated_at"}

// clock is a settable time source.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newClient(t *testing.T) (*model.Client, sqlmock.Sqlmock, *clock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	log := testutil.NewTestLogger(t)
	drv, err := sql.NewDriver(dialect.SQLite, sql.SharedDB(db), sql.WithLogger(log))
	require.NoError(t, err)
	clk := &clock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	c := model.NewClient(drv, model.WithLogger(log), model.WithClock(clk.Now))
	require.NoError(t, c.Register(Widget{}, Part{}))
	return c, mock, clk
}

func TestNew(t *testing.T) {
	c, _, _ := newClient(t)
	w, err := c.New(Widget{}, model.Values{"name": "abc", "counter": 5, "color": "red"})
	require.NoError(t, err)
	assert.Nil(t, w.ID())
	assert.Equal(t, "abc", w.Get("name"))
	assert.Equal(t, 5, w.Get("counter"))
	assert.Nil(t, w.Get("created_at"))
	assert.Nil(t, w.Get("color"))
	assert.Equal(t, "Widget(id=<nil>, name=abc, counter=5, data=<nil>, created_at=<nil>, updated_at=<nil>)", w.String())

	require.NoError(t, w.Field("data").SetKey("k", 1))
	v, err := w.Field("data").GetKey("k")
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)

	assert.True(t, frank.IsConfigurationError(w.Set("color", "red")))

	p, err := c.New(Part{}, model.Values{"widget_id": 3})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Get("widget"))
	assert.Equal(t, 3, p.Values()["widget"])
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	c, mock, clk := newClient(t)
	created := clk.now

	w, err := c.New(Widget{}, model.Values{"name": "abc", "counter": 5})
	require.NoError(t, err)

	mock.ExpectExec(insertWidget).
		WithArgs("abc", 5, nil, created, created).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, w.Save(ctx))
	assert.Equal(t, int64(1), w.ID())
	assert.Equal(t, created, w.Get("created_at"))
	assert.Equal(t, created, w.Get("updated_at"))
	require.NoError(t, mock.ExpectationsWereMet())

	clk.now = created.Add(time.Hour)
	require.NoError(t, w.Set("counter", 6))
	mock.ExpectQuery(selectWidgets+" WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(1), "abc", int64(5), nil, created, created))
	mock.ExpectExec(updateWidget).
		WithArgs(6, created, nil, "abc", clk.now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, w.Save(ctx))
	assert.Equal(t, int64(1), w.ID())
	assert.Equal(t, created, w.Get("created_at"))
	assert.Equal(t, clk.now, w.Get("updated_at"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	c, mock, clk := newClient(t)
	loaded := clk.now.Add(-time.Hour)

	mock.ExpectQuery(selectWidgets+" WHERE id = ? LIMIT 1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(1), "abc", int64(5), nil, loaded, loaded))
	w, err := c.First(ctx, Widget{}, query.Predicate{"id": int64(1)})
	require.NoError(t, err)
	require.NoError(t, w.Set("counter", 6))

	mock.ExpectQuery(selectWidgets+" WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(1), "abc", int64(5), nil, loaded, loaded))
	mock.ExpectExec(updateWidget).
		WithArgs(6, loaded, nil, "abc", clk.now, int64(1)).
		WillReturnError(errors.New("boom"))
	err = w.Save(ctx)
	require.Error(t, err)
	assert.True(t, frank.IsQueryError(err))
	assert.Equal(t, loaded, w.Get("updated_at"))
	assert.Equal(t, loaded, w.Get("created_at"))
	assert.Equal(t, 6, w.Get("counter"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveClearsAssignedNil(t *testing.T) {
	ctx := context.Background()
	c, mock, clk := newClient(t)
	loaded := clk.now.Add(-time.Hour)

	mock.ExpectQuery(selectWidgets+" WHERE id = ? LIMIT 1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(1), "abc", int64(5), `{"a":1}`, loaded, loaded))
	w, err := c.First(ctx, Widget{}, query.Predicate{"id": int64(1)})
	require.NoError(t, err)
	require.NoError(t, w.Set("data", nil))

	mock.ExpectQuery(selectWidgets+" WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(1), "abc", int64(5), `{"a":1}`, loaded, loaded))
	mock.ExpectExec(updateWidget).
		WithArgs(int64(5), loaded, nil, "abc", clk.now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, w.Save(ctx))
	assert.Nil(t, w.Get("data"))
	assert.False(t, w.Field("data").Assigned())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("Insert", func(t *testing.T) {
		c, mock, clk := newClient(t)
		w, err := c.New(Widget{}, model.Values{"name": "abc", "counter": 5})
		require.NoError(t, err)
		mock.ExpectQuery(selectWidgets+" WHERE name = ?").
			WithArgs("abc").
			WillReturnRows(sqlmock.NewRows(widgetColumns))
		mock.ExpectExec(insertWidget).
			WithArgs("abc", 5, nil, clk.now, clk.now).
			WillReturnResult(sqlmock.NewResult(9, 1))
		require.NoError(t, w.Upsert(ctx, "name"))
		assert.Equal(t, int64(9), w.ID())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Merge", func(t *testing.T) {
		c, mock, clk := newClient(t)
		earlier := clk.now.Add(-24 * time.Hour)
		w, err := c.New(Widget{}, model.Values{"name": "abc"})
		require.NoError(t, err)
		mock.ExpectQuery(selectWidgets+" WHERE name = ?").
			WithArgs("abc").
			WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(4), "abc", int64(9), `{"k":1}`, earlier, earlier))
		mock.ExpectExec(updateWidget).
			WithArgs(int64(9), earlier, `{"k":1}`, "abc", clk.now, int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, w.Upsert(ctx, "name"))
		assert.Equal(t, int64(4), w.ID())
		assert.Equal(t, int64(9), w.Get("counter"))
		assert.Equal(t, `{"k":1}`, w.Get("data"))
		assert.Equal(t, earlier, w.Get("created_at"))
		assert.Equal(t, clk.now, w.Get("updated_at"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ambiguous", func(t *testing.T) {
		c, mock, clk := newClient(t)
		w, err := c.New(Widget{}, model.Values{"name": "abc"})
		require.NoError(t, err)
		mock.ExpectQuery(selectWidgets+" WHERE name = ?").
			WithArgs("abc").
			WillReturnRows(sqlmock.NewRows(widgetColumns).
				AddRow(int64(1), "abc", int64(1), nil, clk.now, clk.now).
				AddRow(int64(2), "abc", int64(2), nil, clk.now, clk.now))
		err = w.Upsert(ctx, "name")
		require.Error(t, err)
		assert.True(t, frank.IsAmbiguity(err))
		var ae *frank.AmbiguityError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, 2, ae.Count)
		assert.Equal(t, "widgets", ae.Table)
		assert.Nil(t, w.ID())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IdentityMismatch", func(t *testing.T) {
		c, mock, _ := newClient(t)
		w, err := c.New(Widget{}, model.Values{"id": int64(1), "name": "abc"})
		require.NoError(t, err)
		err = w.UpsertWhere(ctx, query.Predicate{"id": int64(2)})
		require.Error(t, err)
		assert.ErrorIs(t, err, frank.ErrIdentityMismatch)
		assert.True(t, frank.IsConfigurationError(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IdentityAdded", func(t *testing.T) {
		c, mock, clk := newClient(t)
		w, err := c.New(Widget{}, model.Values{"id": 3, "name": "abc", "counter": 1})
		require.NoError(t, err)
		mock.ExpectQuery(selectWidgets+" WHERE id = ? AND name = ?").
			WithArgs(3, "abc").
			WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(3), "abc", int64(0), nil, clk.now, clk.now))
		mock.ExpectExec(updateWidget).
			WithArgs(1, clk.now, nil, "abc", clk.now, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, w.UpsertWhere(ctx, query.Predicate{"name": "abc"}))
		assert.Equal(t, int64(3), w.ID())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownColumn", func(t *testing.T) {
		c, _, _ := newClient(t)
		w, err := c.New(Widget{}, nil)
		require.NoError(t, err)
		assert.True(t, frank.IsConfigurationError(w.Upsert(ctx, "color")))
	})
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	c, mock, clk := newClient(t)

	mock.ExpectQuery(selectWidgets+" WHERE counter >= ? ORDER BY counter DESC").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(widgetColumns).
			AddRow(int64(2), []byte("b"), int64(7), nil, clk.now, clk.now).
			AddRow(int64(1), []byte("a"), int64(3), nil, clk.now, clk.now))
	ws, err := c.Query(Widget{}).Where(query.Predicate{"counter__gte": 2}).Order("-counter").All(ctx)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, int64(2), ws[0].ID())
	assert.Equal(t, "b", ws[0].Get("name"))
	assert.Equal(t, int64(7), ws[0].Get("counter"))
	assert.Equal(t, clk.now, ws[1].Get("created_at"))

	mock.ExpectQuery(selectWidgets+" WHERE name = ? LIMIT 1").
		WithArgs("zzz").
		WillReturnRows(sqlmock.NewRows(widgetColumns))
	_, err = c.First(ctx, Widget{}, query.Predicate{"name": "zzz"})
	assert.True(t, frank.IsNotFound(err))

	mock.ExpectQuery("SELECT COUNT(*) AS count FROM widgets WHERE counter > ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))
	n, err := c.Query(Widget{}).Where(query.Predicate{"counter__gt": 1}).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	mock.ExpectQuery("SELECT p.id, p.label, p.widget_id, p.created_at, p.updated_at FROM parts p INNER JOIN widgets w ON w.id = p.widget_id WHERE w.name = ?").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "widget_id", "created_at", "updated_at"}).
			AddRow(int64(5), "x", int64(2), clk.now, clk.now))
	parts, err := c.Get(ctx, Part{}, query.Predicate{"w.name": "abc"})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, int64(2), parts[0].Get("widget"))
	assert.Equal(t, int64(2), parts[0].Get("widget_id"))
	require.NoError(t, mock.ExpectationsWereMet())

	q := c.Query(Widget{}).Order("id")
	mock.ExpectQuery(selectWidgets+" ORDER BY id LIMIT 1").
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(1), "a", int64(3), nil, clk.now, clk.now))
	first, err := q.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID())
	mock.ExpectQuery(selectWidgets+" ORDER BY id").
		WillReturnRows(sqlmock.NewRows(widgetColumns).
			AddRow(int64(1), "a", int64(3), nil, clk.now, clk.now).
			AddRow(int64(2), "b", int64(7), nil, clk.now, clk.now))
	all, err := q.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = c.Query(Part{}).Join("Gear").All(ctx)
	assert.True(t, frank.IsConfigurationError(err))
}

func TestSetForeignID(t *testing.T) {
	ctx := context.Background()
	c, mock, clk := newClient(t)
	p, err := c.New(Part{}, model.Values{"label": "x"})
	require.NoError(t, err)

	mock.ExpectQuery(selectWidgets+" WHERE id = ?").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(2), "abc", int64(1), nil, clk.now, clk.now))
	require.NoError(t, p.SetForeignID(ctx, "widget", int64(2)))
	w, ok := p.Get("widget").(*model.Record)
	require.True(t, ok)
	assert.Equal(t, "abc", w.Get("name"))
	assert.Equal(t, int64(2), p.Field("widget_id").Storage())

	mock.ExpectQuery(selectWidgets+" WHERE id = ?").
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(widgetColumns))
	require.NoError(t, p.SetForeignID(ctx, "widget_id", int64(8)))
	assert.Equal(t, int64(8), p.Get("widget"))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, frank.IsConfigurationError(p.SetForeignID(ctx, "label", 1)))
}

func TestDeleteAndDump(t *testing.T) {
	ctx := context.Background()
	c, mock, clk := newClient(t)

	w, err := c.New(Widget{}, nil)
	require.NoError(t, err)
	assert.True(t, frank.IsConfigurationError(w.Delete(ctx)))

	require.NoError(t, w.Set("id", int64(3)))
	mock.ExpectExec("DELETE FROM widgets WHERE id = ?").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, w.Delete(ctx))
	assert.Nil(t, w.ID())

	mock.ExpectQuery("SELECT id, label, widget_id, created_at, updated_at FROM parts p ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "widget_id", "created_at", "updated_at"}))
	mock.ExpectQuery(selectWidgets+" ORDER BY id").
		WillReturnRows(sqlmock.NewRows(widgetColumns).AddRow(int64(1), "abc", int64(1), nil, clk.now, clk.now))
	dump, err := c.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump["parts"])
	require.Len(t, dump["widgets"], 1)
	assert.Equal(t, "abc", dump["widgets"][0]["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}
