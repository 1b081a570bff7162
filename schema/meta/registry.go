package meta

import (
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/frank"
)

// Registry memoizes the metadata of record types by type name. It is safe
// for concurrent use; concurrent first uses of a type share one build.
type Registry struct {
	metas sync.Map // name => *Meta
	group singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Of returns the metadata of s, building it on first use.
func (r *Registry) Of(s frank.Interface) (*Meta, error) {
	name := frank.TypeName(s)
	if m, ok := r.metas.Load(name); ok {
		return m.(*Meta), nil
	}
	v, err, _ := r.group.Do(name, func() (any, error) {
		if m, ok := r.metas.Load(name); ok {
			return m, nil
		}
		m, err := Build(s)
		if err != nil {
			return nil, err
		}
		r.metas.Store(name, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Meta), nil
}

// Lookup returns the metadata of a previously registered type.
func (r *Registry) Lookup(name string) (*Meta, error) {
	if m, ok := r.metas.Load(name); ok {
		return m.(*Meta), nil
	}
	return nil, frank.NewConfigurationError("record type %q is not registered", name)
}

// All returns the metadata of every registered type, ordered by table name.
func (r *Registry) All() []*Meta {
	var all []*Meta
	r.metas.Range(func(_, v any) bool {
		all = append(all, v.(*Meta))
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].table < all[j].table })
	return all
}
