package meta_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/frank"
	"github.com/syssam/frank/schema/field"
	"github.com/syssam/frank/schema/meta"
)

type Widget struct{ frank.Schema }

func (Widget) Fields() []frank.Field {
	return []frank.Field{
		field.String("name"),
		field.Int("counter"),
		field.JSON("data"),
		field.Bool("maybe"),
		field.Float("value"),
	}
}

type Gadget struct{ frank.Schema }

func (Gadget) Fields() []frank.Field {
	return []frank.Field{
		field.String("label").MaxSize(32),
		field.ForeignKey("widget", "Widget"),
	}
}

func (Gadget) Joins() []string { return []string{"Widget"} }

type duplicate struct{ frank.Schema }

func (duplicate) Fields() []frank.Field {
	return []frank.Field{field.String("name"), field.Int("name")}
}

type reserved struct{ frank.Schema }

func (reserved) Fields() []frank.Field {
	return []frank.Field{field.Time("created_at")}
}

type collision struct{ frank.Schema }

func (collision) Fields() []frank.Field {
	return []frank.Field{field.ForeignKey("owner", "User"), field.Int("owner_id")}
}

type dangling struct{ frank.Schema }

func (dangling) Fields() []frank.Field {
	return []frank.Field{field.ForeignKey("owner", "")}
}

func TestBuild(t *testing.T) {
	m, err := meta.Build(Widget{})
	require.NoError(t, err)
	assert.Equal(t, "Widget", m.Name())
	assert.Equal(t, "widgets", m.Table())
	assert.Equal(t, "w", m.Short())
	assert.Equal(t, "widgets w", m.Alias())
	assert.Equal(t, field.TypeIdentity, m.Identity().Type)
	assert.Equal(t, []string{"name", "counter", "data", "maybe", "value", "created_at", "updated_at"}, m.InsertColumns())
	assert.Equal(t, []string{"id", "name", "counter", "data", "maybe", "value", "created_at", "updated_at"}, m.SelectColumns())
	assert.Empty(t, m.Joins())

	builtins := m.BuiltIns()
	require.Len(t, builtins, 2)
	assert.Equal(t, field.MarkCreate, builtins[0].Mark)
	assert.Equal(t, field.MarkUpdate, builtins[1].Mark)

	d, ok := m.Column("counter")
	require.True(t, ok)
	assert.Equal(t, field.TypeInt, d.Type)
	_, ok = m.Column("missing")
	assert.False(t, ok)
}

func TestBuildForeignKey(t *testing.T) {
	m, err := meta.Build(&Gadget{})
	require.NoError(t, err)
	assert.Equal(t, "gadgets", m.Table())
	assert.Equal(t, []string{"label", "widget_id", "created_at", "updated_at"}, m.InsertColumns())
	assert.Equal(t, []string{"Widget"}, m.Joins())

	d, ok := m.Column("widget_id")
	require.True(t, ok)
	assert.Equal(t, "widget", d.Name)
	d, ok = m.ForeignKeyTo("Widget")
	require.True(t, ok)
	assert.Equal(t, "widget_id", d.Column())
	_, ok = m.ForeignKeyTo("User")
	assert.False(t, ok)
}

func TestBuildDeterministic(t *testing.T) {
	a, err := meta.Build(Widget{})
	require.NoError(t, err)
	b, err := meta.Build(Widget{})
	require.NoError(t, err)
	assert.Equal(t, a.SelectColumns(), b.SelectColumns())
	assert.Equal(t, a.Table(), b.Table())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		schema frank.Interface
	}{
		{"duplicate", duplicate{}},
		{"reserved", reserved{}},
		{"collision", collision{}},
		{"dangling", dangling{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := meta.Build(tt.schema)
			assert.True(t, frank.IsConfigurationError(err), "got %v", err)
		})
	}
}

type counted struct {
	frank.Schema
	calls *atomic.Int32
}

func (c counted) Fields() []frank.Field {
	c.calls.Add(1)
	return []frank.Field{field.String("name")}
}

func TestRegistry(t *testing.T) {
	t.Run("SingleBuild", func(t *testing.T) {
		var (
			r     = meta.NewRegistry()
			calls atomic.Int32
			wg    sync.WaitGroup
			got   = make([]*meta.Meta, 32)
		)
		for i := range got {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m, err := r.Of(counted{calls: &calls})
				assert.NoError(t, err)
				got[i] = m
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), calls.Load())
		for _, m := range got {
			assert.Same(t, got[0], m)
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		r := meta.NewRegistry()
		_, err := r.Lookup("Widget")
		assert.True(t, frank.IsConfigurationError(err))

		w, err := r.Of(Widget{})
		require.NoError(t, err)
		g, err := r.Of(Gadget{})
		require.NoError(t, err)
		m, err := r.Lookup("Widget")
		require.NoError(t, err)
		assert.Same(t, w, m)
		assert.Equal(t, []*meta.Meta{g, w}, r.All())
	})

	t.Run("Error", func(t *testing.T) {
		r := meta.NewRegistry()
		_, err := r.Of(duplicate{})
		assert.True(t, frank.IsConfigurationError(err))
		_, err = r.Lookup("duplicate")
		assert.Error(t, err)
	})
}
