package strata

import "github.com/go-gl/mathgl/mgl32"

// ObservedTransformComponent is a transform component that caches its
// node's world transform.
//
// It subscribes to every transform its world transform depends on: its own,
// those applied before it on the same node, every transform component on
// every ancestor, and the graph's base transform. A change to any of them
// only marks the cache dirty. The cache is refreshed by Apply, which reads
// the transform stack, or by WorldTransform, which walks to the root. Each
// refresh notifies the component's own subscribers once.
//
// The full subscription set is built on first use after the component is
// attached, and rebuilt after any change to the tree or to the transform
// components of the node or its ancestors. Other components never affect it.
type ObservedTransformComponent struct {
	TransformComponent
	Subject

	obsID      ObserverID
	observed   []*Subject // observed[0] is the own transform
	world      mgl32.Mat4
	dirty      bool
	registered bool
}

// NewObservedTransformComponent creates an identity observed transform at
// the default priority.
func NewObservedTransformComponent() *ObservedTransformComponent {
	return NewObservedTransformComponentFrom(nil)
}

// NewObservedTransformComponentFrom wraps t, or a new identity Transform
// when t is nil.
func NewObservedTransformComponentFrom(t *Transform) *ObservedTransformComponent {
	o := &ObservedTransformComponent{
		TransformComponent: *NewTransformComponentFrom(t),
		obsID:              NextObserverID(),
		world:              mgl32.Ident4(),
		dirty:              true,
	}
	o.observe(&o.transform.Subject)
	return o
}

// NewObservedTransformComponentAt creates an observed transform at priority,
// which must lie in the transform band.
func NewObservedTransformComponentAt(priority int) (*ObservedTransformComponent, error) {
	if err := checkTransformPriority(priority); err != nil {
		return nil, err
	}
	o := NewObservedTransformComponent()
	o.priority = priority
	return o, nil
}

// ObserverID implements Observer.
func (o *ObservedTransformComponent) ObserverID() ObserverID { return o.obsID }

// OnNotify implements Observer. It only marks the cache dirty.
func (o *ObservedTransformComponent) OnNotify(*Subject) { o.dirty = true }

// Dirty reports whether the cached world transform is stale.
func (o *ObservedTransformComponent) Dirty() bool { return o.dirty }

// Registered reports whether the full subscription set is in place.
func (o *ObservedTransformComponent) Registered() bool { return o.registered }

// ObservedCount returns the number of transforms currently observed,
// including the component's own.
func (o *ObservedTransformComponent) ObservedCount() int { return len(o.observed) }

// Apply pushes the local transform and, when dirty, caches the resulting
// stack top as the world transform.
func (o *ObservedTransformComponent) Apply(rc *RenderContext) {
	if o.owner != nil && !o.registered {
		o.register()
	}
	rc.Transforms.Push(o.transform)
	if o.dirty {
		o.world = rc.Transforms.Top()
		o.dirty = false
		o.Notify()
	}
}

// WorldTransform returns the cached world transform, recomputing it first
// when dirty. A component without a node reports its local transform.
func (o *ObservedTransformComponent) WorldTransform() mgl32.Mat4 {
	if !o.dirty {
		return o.world
	}
	if o.owner == nil {
		o.world = o.transform.Matrix()
	} else {
		if !o.registered {
			o.register()
		}
		o.world = ancestorProduct(o.owner).Mul4(localProduct(o.owner, o))
	}
	o.dirty = false
	o.Notify()
	return o.world
}

// Dispose drops every subscription, including the one on the own transform.
func (o *ObservedTransformComponent) Dispose() {
	for _, s := range o.observed {
		s.Unsubscribe(o.obsID)
	}
	o.observed = nil
	o.registered = false
}

// CloneComponent copies the component with an independent Transform. The
// copy starts dirty and unregistered.
func (o *ObservedTransformComponent) CloneComponent() Component {
	c := NewObservedTransformComponentFrom(o.transform.Clone())
	c.priority = o.priority
	return c
}

func (o *ObservedTransformComponent) observe(s *Subject) {
	if s.IsSubscribed(o.obsID) {
		return
	}
	s.Subscribe(o)
	o.observed = append(o.observed, s)
}

func (o *ObservedTransformComponent) register() {
	owner := o.owner
	for _, c := range owner.Payload.Sorted() {
		if c == Component(o) {
			break
		}
		if ts, ok := c.(transformSource); ok {
			o.observe(&ts.Transform().Subject)
		}
	}
	for p := owner.Parent; p != nil; p = p.Parent {
		for _, c := range p.Payload.order {
			if ts, ok := c.(transformSource); ok {
				o.observe(&ts.Transform().Subject)
			}
		}
	}
	if g := graphOf(owner); g != nil {
		o.observe(&g.base.Subject)
	}
	o.registered = true
	o.dirty = true
}

// resetRegistration drops every subscription except the own transform's.
func (o *ObservedTransformComponent) resetRegistration() {
	if !o.registered {
		return
	}
	for _, s := range o.observed[1:] {
		s.Unsubscribe(o.obsID)
	}
	clear(o.observed[1:])
	o.observed = o.observed[:1]
	o.registered = false
	o.dirty = true
}

func (o *ObservedTransformComponent) onDetach() {
	o.resetRegistration()
}
