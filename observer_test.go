package strata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type countObserver struct {
	id    ObserverID
	n     int
	onHit func()
}

func newCountObserver() *countObserver { return &countObserver{id: NextObserverID()} }

func (c *countObserver) ObserverID() ObserverID { return c.id }

func (c *countObserver) OnNotify(*Subject) {
	c.n++
	if c.onHit != nil {
		c.onHit()
	}
}

func TestSubjectSubscribeOnce(t *testing.T) {
	var s Subject
	o := newCountObserver()
	s.Subscribe(o)
	s.Subscribe(o)
	if got := len(s.Observers()); got != 1 {
		t.Fatalf("Observers = %d, want 1", got)
	}
	s.Notify()
	if o.n != 1 {
		t.Errorf("notified %d times, want 1", o.n)
	}
}

func TestSubjectUnsubscribe(t *testing.T) {
	var s Subject
	a, b := newCountObserver(), newCountObserver()
	s.Subscribe(a)
	s.Subscribe(b)
	if !s.Unsubscribe(a.id) {
		t.Fatal("Unsubscribe returned false")
	}
	if s.Unsubscribe(a.id) {
		t.Error("second Unsubscribe returned true")
	}
	s.Notify()
	if a.n != 0 || b.n != 1 {
		t.Errorf("counts = %d, %d, want 0, 1", a.n, b.n)
	}
	if s.IsSubscribed(a.id) {
		t.Error("a still subscribed")
	}
}

func TestSubjectUnsubscribeDuringNotify(t *testing.T) {
	var s Subject
	a, b := newCountObserver(), newCountObserver()
	// a removes b before b's turn.
	a.onHit = func() { s.Unsubscribe(b.id) }
	s.Subscribe(a)
	s.Subscribe(b)
	s.Notify()
	if a.n != 1 {
		t.Errorf("a notified %d times, want 1", a.n)
	}
	if b.n != 0 {
		t.Errorf("b notified %d times after unsubscribe, want 0", b.n)
	}
}

func TestObserverIDsNotReused(t *testing.T) {
	a := NextObserverID()
	b := NextObserverID()
	if b <= a {
		t.Errorf("NextObserverID = %d after %d", b, a)
	}
}

// --- Transform ---

func TestTransformComposeOrder(t *testing.T) {
	tr := NewTransform().Translate(1, 0, 0).Scale(2, 2, 2)
	want := mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	if !matApprox(tr.Matrix(), want) {
		t.Errorf("Matrix = %v, want %v", tr.Matrix(), want)
	}
	// Scale applies first to the point, then the translation.
	got := tr.TransformPoint(mgl32.Vec3{1, 0, 0})
	if !vec3Approx(got, mgl32.Vec3{3, 0, 0}) {
		t.Errorf("TransformPoint = %v, want (3,0,0)", got)
	}
	if d := tr.TransformDirection(mgl32.Vec3{1, 0, 0}); !vec3Approx(d, mgl32.Vec3{2, 0, 0}) {
		t.Errorf("TransformDirection = %v, want (2,0,0)", d)
	}
}

func TestTransformSetResets(t *testing.T) {
	tr := NewTransform().Translate(5, 5, 5)
	tr.SetScale(2, 3, 4)
	if !matApprox(tr.Matrix(), mgl32.Scale3D(2, 3, 4)) {
		t.Errorf("SetScale kept prior state: %v", tr.Matrix())
	}
	tr.Reset()
	if !matApprox(tr.Matrix(), mgl32.Ident4()) {
		t.Errorf("Reset = %v, want identity", tr.Matrix())
	}
}

func TestTransformNotifies(t *testing.T) {
	tr := NewTransform()
	o := newCountObserver()
	tr.Subscribe(o)
	tr.Translate(1, 0, 0)
	tr.SetRotation(90, mgl32.Vec3{0, 1, 0})
	tr.MulMatrix(mgl32.Ident4())
	if o.n != 3 {
		t.Errorf("notified %d times, want 3", o.n)
	}
	// A zero-axis rotation is ignored.
	tr.Rotate(45, mgl32.Vec3{})
	if o.n != 3 {
		t.Errorf("zero-axis Rotate notified")
	}
}

func TestTransformCloneDropsSubscribers(t *testing.T) {
	tr := NewTransform().Translate(1, 2, 3)
	tr.Subscribe(newCountObserver())
	c := tr.Clone()
	if len(c.Observers()) != 0 {
		t.Error("clone kept subscribers")
	}
	if c.Matrix() != tr.Matrix() {
		t.Error("clone matrix differs")
	}
}

func TestTransformSetLookAt(t *testing.T) {
	eye := mgl32.Vec3{0, 2, 5}
	tr := NewTransform().SetLookAt(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	if got := tr.TransformPoint(mgl32.Vec3{}); !vec3Approx(got, eye) {
		t.Errorf("camera origin = %v, want %v", got, eye)
	}
	// The camera looks down its -Z axis toward the target.
	fwd := tr.TransformDirection(mgl32.Vec3{0, 0, -1})
	want := eye.Mul(-1).Normalize()
	if !vec3Approx(fwd, want) {
		t.Errorf("forward = %v, want %v", fwd, want)
	}
}
