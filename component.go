package strata

import "go.uber.org/zap"

// Default priorities. Lower priorities apply first and unapply last, so a
// framebuffer wraps everything drawn on its node and geometry draws with all
// other state in place.
const (
	PriorityFramebuffer  = 100
	PriorityTransformMin = 200
	PriorityTransform    = 250
	PriorityTransformMax = 299
	PriorityShader       = 300
	PriorityTexture      = 400
	PriorityMaterial     = 500
	PriorityVariable     = 550
	PriorityClipPlane    = 600
	PriorityLight        = 700
	PrioritySkybox       = 800
	PriorityGeometry     = 900
)

// componentIDCounter is a plain counter (no atomic: strata is single-threaded).
var componentIDCounter uint32

func nextComponentID() uint32 {
	componentIDCounter++
	return componentIDCounter
}

// Component is a unit of render state attached to a scene node. Apply runs
// on the way down the tree in ascending priority; Unapply runs on the way up
// in the reverse order. Implementations embed ComponentBase.
type Component interface {
	ID() uint32
	Priority() int
	Name() string
	Owner() *SceneNode
	Apply(rc *RenderContext)
	Unapply(rc *RenderContext)

	base() *ComponentBase
}

// Cloner is implemented by components that SceneGraph.DuplicateNode copies.
// Components without it are left off the duplicate.
type Cloner interface {
	CloneComponent() Component
}

// Disposer is implemented by components holding subscriptions or
// registrations that must be released when their node is removed.
type Disposer interface {
	Dispose()
}

// ComponentBase carries the identity shared by all components.
type ComponentBase struct {
	id       uint32
	priority int
	name     string
	owner    *SceneNode
	coll     *Components
}

func newComponentBase(priority int) ComponentBase {
	return ComponentBase{id: nextComponentID(), priority: priority}
}

// ID returns the component's unique id.
func (b *ComponentBase) ID() uint32 { return b.id }

// Priority returns the application priority.
func (b *ComponentBase) Priority() int { return b.priority }

// Name returns the name the component was added under, or "".
func (b *ComponentBase) Name() string { return b.name }

// Owner returns the node the component is attached to, or nil.
func (b *ComponentBase) Owner() *SceneNode { return b.owner }

// SetPriority changes the priority. An attached component's collection is
// re-sorted before its next Apply.
func (b *ComponentBase) SetPriority(p int) error {
	b.priority = p
	if b.coll != nil {
		b.coll.invalidate(b.coll.componentOf(b))
	}
	return nil
}

func (b *ComponentBase) base() *ComponentBase { return b }

// copyBase gives a clone a fresh id with the same priority.
func (b *ComponentBase) copyBase() ComponentBase {
	return newComponentBase(b.priority)
}

// attached is implemented by components that react to being added to a node.
type attached interface {
	onAttach()
}

// detached is implemented by components that react to being removed.
type detached interface {
	onDetach()
}

func warnNilPush(rc *RenderContext, kind string, c Component) {
	rc.log.Warn("component: nothing to push", zap.String("kind", kind), zap.Uint32("component", c.ID()))
}
