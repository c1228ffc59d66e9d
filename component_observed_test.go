package strata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

var zAxis = mgl32.Vec3{0, 0, 1}

// observedScene builds root > parent(rotate) > child(translate, observed).
func observedScene(t *testing.T) (*SceneGraph, *TransformComponent, *TransformComponent, *ObservedTransformComponent) {
	t.Helper()
	g := NewSceneGraph(nil)
	parent, err := g.AddNode(nil, "parent")
	if err != nil {
		t.Fatalf("AddNode(parent): %v", err)
	}
	child, err := g.AddNode(parent, "child")
	if err != nil {
		t.Fatalf("AddNode(child): %v", err)
	}
	pt := NewTransformComponent()
	pt.Transform().Rotate(30, zAxis)
	parent.Payload.Add(pt)

	ct := NewTransformComponent()
	ct.Transform().Translate(0.7, 0, 0)
	child.Payload.Add(ct)
	obs := NewObservedTransformComponent()
	child.Payload.Add(obs)
	return g, pt, ct, obs
}

func rotZ(deg float32) mgl32.Mat4 { return mgl32.HomogRotate3D(mgl32.DegToRad(deg), zAxis) }

func TestObservedRotatingParent(t *testing.T) {
	rc, _, _ := newTestContext(t)
	g, pt, _, obs := observedScene(t)

	g.Draw(rc)
	if obs.Dirty() {
		t.Fatal("dirty after Draw")
	}
	want := rotZ(30).Mul4(mgl32.Translate3D(0.7, 0, 0))
	if got := obs.WorldTransform(); !matApprox(got, want) {
		t.Fatalf("world = %v, want %v", got, want)
	}

	pt.Transform().Rotate(0.25, zAxis)
	if !obs.Dirty() {
		t.Fatal("not dirty after parent rotation")
	}
	// Dirty stays set until the next refresh.
	if !obs.Dirty() {
		t.Fatal("dirty cleared without refresh")
	}
	want = rotZ(30.25).Mul4(mgl32.Translate3D(0.7, 0, 0))
	if got := obs.WorldTransform(); !matApprox(got, want) {
		t.Errorf("world after rotation = %v, want %v", got, want)
	}
	if obs.Dirty() {
		t.Error("dirty after WorldTransform")
	}

	pt.Transform().Rotate(0.25, zAxis)
	g.Draw(rc)
	if obs.Dirty() {
		t.Error("dirty after second Draw")
	}
	want = rotZ(30.5).Mul4(mgl32.Translate3D(0.7, 0, 0))
	if got := obs.WorldTransform(); !matApprox(got, want) {
		t.Errorf("world after Draw = %v, want %v", got, want)
	}
}

func TestObservedMatchesFullWalk(t *testing.T) {
	rc, _, _ := newTestContext(t)
	g, pt, ct, obs := observedScene(t)
	obs.Transform().Scale(2, 2, 2)

	check := func(label string) {
		t.Helper()
		got := obs.WorldTransform()
		want := NodeWorldTransform(obs.Owner())
		if !matApprox(got, want) {
			t.Errorf("%s: cached = %v, walk = %v", label, got, want)
		}
	}

	check("initial")
	pt.Transform().Translate(0, 3, 0)
	check("ancestor change")
	ct.Transform().Rotate(90, mgl32.Vec3{1, 0, 0})
	check("same-node change")
	g.Base().SetTranslation(0, 0, -10)
	check("base change")
	obs.Transform().Translate(1, 1, 1)
	check("own change")

	// Apply through the stack must agree with the walk.
	pt.Transform().Rotate(10, zAxis)
	g.Draw(rc)
	if got, want := obs.WorldTransform(), NodeWorldTransform(obs.Owner()); !matApprox(got, want) {
		t.Errorf("after Draw: cached = %v, walk = %v", got, want)
	}
}

func TestObservedIgnoresUnrelatedTransforms(t *testing.T) {
	g, _, _, obs := observedScene(t)
	child := obs.Owner()

	// Applied after the observed component, so not part of its world transform.
	later, err := NewTransformComponentAt(PriorityTransform + 10)
	if err != nil {
		t.Fatal(err)
	}
	child.Payload.Add(later)
	sibling, _ := g.AddNode(child.Parent, "sibling")
	st := NewTransformComponent()
	sibling.Payload.Add(st)
	grandchild, _ := g.AddNode(child, "grandchild")
	gt := NewTransformComponent()
	grandchild.Payload.Add(gt)

	obs.WorldTransform()
	later.Transform().Translate(5, 0, 0)
	st.Transform().Translate(5, 0, 0)
	gt.Transform().Translate(5, 0, 0)
	if obs.Dirty() {
		t.Error("dirty after changes outside the dependency set")
	}
}

func TestObservedNotifiesOncePerRefresh(t *testing.T) {
	rc, _, _ := newTestContext(t)
	g, pt, _, obs := observedScene(t)
	counter := newCountObserver()
	obs.Subscribe(counter)

	obs.WorldTransform()
	obs.WorldTransform()
	if counter.n != 1 {
		t.Fatalf("notifies = %d, want 1", counter.n)
	}

	// Several changes between refreshes collapse to one notification.
	pt.Transform().Rotate(1, zAxis)
	pt.Transform().Rotate(1, zAxis)
	g.Base().Translate(0, 1, 0)
	if counter.n != 1 {
		t.Fatalf("notified on invalidation: %d", counter.n)
	}
	g.Draw(rc)
	g.Draw(rc)
	if counter.n != 2 {
		t.Errorf("notifies after Draw = %d, want 2", counter.n)
	}
}

func TestObservedIgnoresNonTransformComponents(t *testing.T) {
	rc, _, _ := newTestContext(t)
	g, _, _, obs := observedScene(t)
	counter := newCountObserver()
	obs.Subscribe(counter)
	obs.WorldTransform()

	mat := NewMaterialComponent(NewMaterial("m"))
	g.Root().Payload.Add(mat)
	g.Root().Payload.Add(NewLightComponent(rc, NewPointLight(mgl32.Vec3{}, DefaultAttenuation, white)))
	obs.Owner().Payload.Add(NewGeometryComponent(NewCube(1)))
	mat.SetPriority(PriorityLight + 1)
	g.Root().Payload.Remove(mat)

	if obs.Dirty() || !obs.Registered() {
		t.Errorf("dirty = %t, registered = %t after non-transform changes", obs.Dirty(), obs.Registered())
	}
	obs.WorldTransform()
	if counter.n != 1 {
		t.Errorf("notifies = %d, want 1", counter.n)
	}
}

func TestObservedRegistrationResets(t *testing.T) {
	g, _, _, obs := observedScene(t)
	obs.WorldTransform()
	if !obs.Registered() {
		t.Fatal("not registered after WorldTransform")
	}
	// own + same-node translate + parent rotate + base
	if got := obs.ObservedCount(); got != 4 {
		t.Fatalf("ObservedCount = %d, want 4", got)
	}

	other, _ := g.AddNode(nil, "other")
	ot := NewTransformComponent()
	ot.Transform().Translate(0, 0, 2)
	other.Payload.Add(ot)
	other.AddChild(obs.Owner().Parent)
	if obs.Registered() {
		t.Fatal("still registered after reparent")
	}
	if !obs.Dirty() {
		t.Fatal("not dirty after reparent")
	}
	if got := obs.ObservedCount(); got != 1 {
		t.Errorf("ObservedCount after reset = %d, want 1", got)
	}

	want := mgl32.Translate3D(0, 0, 2).Mul4(rotZ(30)).Mul4(mgl32.Translate3D(0.7, 0, 0))
	if got := obs.WorldTransform(); !matApprox(got, want) {
		t.Errorf("world after reparent = %v, want %v", got, want)
	}
	ot.Transform().Translate(0, 1, 0)
	if !obs.Dirty() {
		t.Error("new ancestor change not observed")
	}
	obs.WorldTransform()

	// Adding a transform to an ancestor resets the registration too.
	extra := NewTransformComponent()
	obs.Owner().Parent.Payload.Add(extra)
	if obs.Registered() {
		t.Error("still registered after ancestor component add")
	}
}

func TestObservedReleasedOnRemove(t *testing.T) {
	g, pt, ct, obs := observedScene(t)
	obs.WorldTransform()
	if len(pt.Transform().Observers()) != 1 {
		t.Fatalf("parent observers = %d, want 1", len(pt.Transform().Observers()))
	}
	if err := g.RemoveNode(obs.Owner()); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if n := len(pt.Transform().Observers()); n != 0 {
		t.Errorf("parent observers after remove = %d, want 0", n)
	}
	if n := len(ct.Transform().Observers()); n != 0 {
		t.Errorf("sibling component observers after remove = %d, want 0", n)
	}
	if n := len(g.Base().Observers()); n != 0 {
		t.Errorf("base observers after remove = %d, want 0", n)
	}
	if obs.ObservedCount() != 0 {
		t.Errorf("ObservedCount = %d, want 0", obs.ObservedCount())
	}
}

func TestObservedDetachedReportsLocal(t *testing.T) {
	obs := NewObservedTransformComponent()
	obs.Transform().Translate(1, 2, 3)
	if got := obs.WorldTransform(); !matApprox(got, mgl32.Translate3D(1, 2, 3)) {
		t.Errorf("detached world = %v", got)
	}
}

func TestObservedClone(t *testing.T) {
	_, _, _, obs := observedScene(t)
	obs.Transform().Translate(1, 0, 0)
	obs.WorldTransform()
	c := obs.CloneComponent().(*ObservedTransformComponent)
	if !c.Dirty() || c.Registered() {
		t.Error("clone should start dirty and unregistered")
	}
	c.Transform().Translate(1, 0, 0)
	if obs.Dirty() {
		t.Error("clone transform shared with original")
	}
}
