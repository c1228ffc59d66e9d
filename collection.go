package strata

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Components is a node's payload. Components are indexed by concrete type
// (several of one type are allowed), by name (unique within the collection)
// and by priority. The priority order is a stable sort over insertion order,
// rebuilt lazily after a mutation.
type Components struct {
	byType map[reflect.Type][]Component
	byName map[string]Component
	order  []Component // insertion order
	sorted []Component
	dirty  bool

	owner *SceneNode
	graph *SceneGraph
}

// NewComponents creates an empty collection.
func NewComponents() *Components {
	return &Components{
		byType: make(map[reflect.Type][]Component),
		byName: make(map[string]Component),
	}
}

// Add attaches c under its current name ("" for unnamed).
func (cs *Components) Add(c Component) error {
	if c == nil {
		return fmt.Errorf("add component: %w", ErrNilResource)
	}
	return cs.AddNamed(c.Name(), c)
}

// AddNamed attaches c under name. A name already used in the collection is a
// hard error: the component is not added and ErrDuplicateName is returned.
func (cs *Components) AddNamed(name string, c Component) error {
	if c == nil {
		return fmt.Errorf("add component %q: %w", name, ErrNilResource)
	}
	b := c.base()
	if b.coll != nil {
		return fmt.Errorf("add component %q: %w", name, ErrComponentAttached)
	}
	if name != "" {
		if _, ok := cs.byName[name]; ok {
			return fmt.Errorf("add component %q: %w", name, ErrDuplicateName)
		}
		cs.byName[name] = c
	}
	b.name = name
	b.coll = cs
	b.owner = cs.owner

	t := reflect.TypeOf(c)
	cs.byType[t] = append(cs.byType[t], c)
	cs.order = append(cs.order, c)
	cs.invalidate(c)

	if a, ok := c.(attached); ok {
		a.onAttach()
	}
	return nil
}

// Remove detaches c and reports whether it was in the collection. The
// component is not disposed.
func (cs *Components) Remove(c Component) bool {
	if c == nil || c.base().coll != cs {
		return false
	}
	b := c.base()
	if d, ok := c.(detached); ok {
		d.onDetach()
	}
	if b.name != "" {
		delete(cs.byName, b.name)
	}
	t := reflect.TypeOf(c)
	cs.byType[t] = slices.DeleteFunc(cs.byType[t], func(x Component) bool { return x == c })
	if len(cs.byType[t]) == 0 {
		delete(cs.byType, t)
	}
	cs.order = slices.DeleteFunc(cs.order, func(x Component) bool { return x == c })
	b.coll = nil
	b.owner = nil
	cs.invalidate(c)
	return true
}

// Named returns the component added under name.
func (cs *Components) Named(name string) (Component, bool) {
	c, ok := cs.byName[name]
	return c, ok
}

// Len returns the number of components.
func (cs *Components) Len() int { return len(cs.order) }

// Owner returns the node carrying the collection.
func (cs *Components) Owner() *SceneNode { return cs.owner }

// Sorted returns the components in application order. The returned slice
// MUST NOT be mutated by the caller.
func (cs *Components) Sorted() []Component {
	if cs.dirty {
		cs.sorted = append(cs.sorted[:0], cs.order...)
		slices.SortStableFunc(cs.sorted, func(a, b Component) int {
			return cmp.Compare(a.Priority(), b.Priority())
		})
		cs.dirty = false
	}
	return cs.sorted
}

// Apply applies every component in ascending priority.
func (cs *Components) Apply(rc *RenderContext) {
	for _, c := range cs.Sorted() {
		c.Apply(rc)
	}
}

// Unapply unapplies every component in descending priority.
func (cs *Components) Unapply(rc *RenderContext) {
	sorted := cs.Sorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		sorted[i].Unapply(rc)
	}
}

// Dispose detaches every component, disposing those that implement Disposer.
func (cs *Components) Dispose() {
	for _, c := range slices.Clone(cs.order) {
		cs.Remove(c)
		if d, ok := c.(Disposer); ok {
			d.Dispose()
		}
	}
}

// invalidate marks the priority order stale. When c contributes a local
// transform, the world-transform observers of the owner's subtree are reset
// too, since their observed sets may have changed.
func (cs *Components) invalidate(c Component) {
	cs.dirty = true
	if _, ok := c.(transformSource); !ok {
		return
	}
	if cs.owner != nil {
		markHierarchyChanged(cs.owner)
	} else {
		cs.hierarchyChanged()
	}
}

// componentOf returns the attached component embedding b.
func (cs *Components) componentOf(b *ComponentBase) Component {
	for _, c := range cs.order {
		if c.base() == b {
			return c
		}
	}
	return nil
}

func (cs *Components) hierarchyChanged() {
	for _, c := range cs.order {
		if o, ok := c.(*ObservedTransformComponent); ok {
			o.resetRegistration()
		}
	}
}

// --- Generic lookups ---

// Get returns the first component of type T in insertion order. T may be a
// concrete component type or an interface.
func Get[T any](cs *Components) (T, bool) {
	var zero T
	if list := cs.byType[reflect.TypeFor[T]()]; len(list) > 0 {
		return list[0].(T), true
	}
	for _, c := range cs.order {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// GetAll returns every component of type T in insertion order.
func GetAll[T any](cs *Components) []T {
	var out []T
	for _, c := range cs.order {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
