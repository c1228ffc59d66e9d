package strata

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// transformSource is implemented by components that contribute a local
// transform to their node.
type transformSource interface {
	Component
	Transform() *Transform
}

// TransformComponent pushes its Transform onto the transform stack.
type TransformComponent struct {
	ComponentBase
	transform *Transform
}

// NewTransformComponent creates an identity transform component at the
// default priority.
func NewTransformComponent() *TransformComponent {
	return NewTransformComponentFrom(nil)
}

// NewTransformComponentFrom wraps t, or a new identity Transform when t is nil.
func NewTransformComponentFrom(t *Transform) *TransformComponent {
	if t == nil {
		t = NewTransform()
	}
	return &TransformComponent{
		ComponentBase: newComponentBase(PriorityTransform),
		transform:     t,
	}
}

// NewTransformComponentAt creates an identity transform component at
// priority, which must lie in [PriorityTransformMin, PriorityTransformMax].
func NewTransformComponentAt(priority int) (*TransformComponent, error) {
	if err := checkTransformPriority(priority); err != nil {
		return nil, err
	}
	c := NewTransformComponent()
	c.priority = priority
	return c, nil
}

func checkTransformPriority(p int) error {
	if p < PriorityTransformMin || p > PriorityTransformMax {
		return fmt.Errorf("transform priority %d not in [%d, %d]: %w",
			p, PriorityTransformMin, PriorityTransformMax, ErrPriorityOutOfRange)
	}
	return nil
}

// Transform returns the local transform.
func (c *TransformComponent) Transform() *Transform { return c.transform }

// SetPriority changes the priority within the transform band.
func (c *TransformComponent) SetPriority(p int) error {
	if err := checkTransformPriority(p); err != nil {
		return err
	}
	return c.ComponentBase.SetPriority(p)
}

func (c *TransformComponent) Apply(rc *RenderContext)   { rc.Transforms.Push(c.transform) }
func (c *TransformComponent) Unapply(rc *RenderContext) { rc.Transforms.Pop() }

// CloneComponent copies the component with an independent Transform.
func (c *TransformComponent) CloneComponent() Component {
	return &TransformComponent{ComponentBase: c.copyBase(), transform: c.transform.Clone()}
}

// --- World-transform helpers ---

// localProduct multiplies the node's transform components in application
// order. prefixOf, when non-nil, stops the product after that component.
func localProduct(n *SceneNode, prefixOf Component) mgl32.Mat4 {
	acc := mgl32.Ident4()
	if n == nil || n.Payload == nil {
		return acc
	}
	for _, c := range n.Payload.Sorted() {
		if ts, ok := c.(transformSource); ok {
			acc = acc.Mul4(ts.Transform().Matrix())
		}
		if c == prefixOf {
			break
		}
	}
	return acc
}

// graphOf returns the graph n belongs to, or nil.
func graphOf(n *SceneNode) *SceneGraph {
	if n == nil {
		return nil
	}
	r := n.Root()
	if r.Payload == nil {
		return nil
	}
	return r.Payload.graph
}

// NodeWorldTransform computes n's full transform from scratch: the graph's
// base transform times every ancestor's local product times n's own.
func NodeWorldTransform(n *SceneNode) mgl32.Mat4 {
	return ancestorProduct(n).Mul4(localProduct(n, nil))
}

// ancestorProduct is base * product of the local transforms of n's
// ancestors, root first.
func ancestorProduct(n *SceneNode) mgl32.Mat4 {
	acc := mgl32.Ident4()
	if n == nil {
		return acc
	}
	for p := n.Parent; p != nil; p = p.Parent {
		acc = localProduct(p, nil).Mul4(acc)
	}
	if g := graphOf(n); g != nil {
		acc = g.base.Matrix().Mul4(acc)
	}
	return acc
}
