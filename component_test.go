package strata

import (
	"errors"
	"math"
	"slices"
	"testing"
)

// traceComponent records its Apply and Unapply calls.
type traceComponent struct {
	ComponentBase
	tag   string
	trace *[]string
}

func newTrace(priority int, tag string, trace *[]string) *traceComponent {
	return &traceComponent{ComponentBase: newComponentBase(priority), tag: tag, trace: trace}
}

func (c *traceComponent) Apply(*RenderContext)   { *c.trace = append(*c.trace, "+"+c.tag) }
func (c *traceComponent) Unapply(*RenderContext) { *c.trace = append(*c.trace, "-"+c.tag) }

type disposable struct {
	traceComponent
	disposed bool
}

func (d *disposable) Dispose() { d.disposed = true }

func TestComponentsApplyOrder(t *testing.T) {
	rc, _, _ := newTestContext(t)
	var trace []string
	cs := NewComponents()
	for _, c := range []Component{
		newTrace(PriorityGeometry, "geom", &trace),
		newTrace(PriorityShader, "shader", &trace),
		newTrace(PriorityFramebuffer, "fb", &trace),
		newTrace(PriorityShader, "shader2", &trace), // same priority keeps insertion order
	} {
		if err := cs.Add(c); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	cs.Apply(rc)
	cs.Unapply(rc)

	want := []string{"+fb", "+shader", "+shader2", "+geom", "-geom", "-shader2", "-shader", "-fb"}
	if !slices.Equal(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestComponentsExtremePriorities(t *testing.T) {
	rc, _, _ := newTestContext(t)
	var trace []string
	cs := NewComponents()
	cs.Add(newTrace(math.MaxInt, "last", &trace))
	cs.Add(newTrace(math.MinInt, "first", &trace))
	cs.Add(newTrace(0, "mid", &trace))

	cs.Apply(rc)
	if want := []string{"+first", "+mid", "+last"}; !slices.Equal(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestComponentsResortAfterSetPriority(t *testing.T) {
	rc, _, _ := newTestContext(t)
	var trace []string
	cs := NewComponents()
	a := newTrace(100, "a", &trace)
	b := newTrace(200, "b", &trace)
	cs.Add(a)
	cs.Add(b)
	cs.Sorted()

	if err := a.SetPriority(300); err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	cs.Apply(rc)
	if want := []string{"+b", "+a"}; !slices.Equal(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestComponentsDuplicateName(t *testing.T) {
	cs := NewComponents()
	var trace []string
	first := newTrace(1, "x", &trace)
	if err := cs.AddNamed("light", first); err != nil {
		t.Fatalf("AddNamed: %v", err)
	}
	err := cs.AddNamed("light", newTrace(1, "y", &trace))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate AddNamed err = %v, want ErrDuplicateName", err)
	}
	if cs.Len() != 1 {
		t.Errorf("Len = %d, want 1", cs.Len())
	}

	second := newTrace(1, "y", &trace)
	if err := cs.AddNamed("fill", second); err != nil {
		t.Fatalf("AddNamed(fill): %v", err)
	}
	if got, ok := cs.Named("fill"); !ok || got != Component(second) {
		t.Errorf("Named(fill) = %v, %v", got, ok)
	}
	if second.Name() != "fill" {
		t.Errorf("Name = %q, want fill", second.Name())
	}
}

func TestComponentsRejectsNilAndAttached(t *testing.T) {
	cs := NewComponents()
	if err := cs.Add(nil); !errors.Is(err, ErrNilResource) {
		t.Errorf("Add(nil) err = %v, want ErrNilResource", err)
	}
	var trace []string
	c := newTrace(1, "c", &trace)
	cs.Add(c)
	other := NewComponents()
	if err := other.Add(c); !errors.Is(err, ErrComponentAttached) {
		t.Errorf("second attach err = %v, want ErrComponentAttached", err)
	}
}

func TestComponentsRemove(t *testing.T) {
	cs := NewComponents()
	var trace []string
	c := newTrace(1, "c", &trace)
	cs.AddNamed("c", c)
	if !cs.Remove(c) {
		t.Fatal("Remove returned false")
	}
	if cs.Remove(c) {
		t.Error("second Remove returned true")
	}
	if _, ok := cs.Named("c"); ok {
		t.Error("name still indexed after Remove")
	}
	if _, ok := Get[*traceComponent](cs); ok {
		t.Error("type still indexed after Remove")
	}
	// A removed component can be attached again.
	if err := cs.Add(c); err != nil {
		t.Errorf("re-Add: %v", err)
	}
}

func TestGetAndGetAll(t *testing.T) {
	cs := NewComponents()
	t1 := NewTransformComponent()
	t2 := NewTransformComponent()
	sh := NewShaderComponent(nil)
	cs.Add(t1)
	cs.Add(sh)
	cs.Add(t2)

	got, ok := Get[*TransformComponent](cs)
	if !ok || got != t1 {
		t.Errorf("Get[*TransformComponent] = %v, %v, want first", got, ok)
	}
	if all := GetAll[*TransformComponent](cs); len(all) != 2 || all[0] != t1 || all[1] != t2 {
		t.Errorf("GetAll = %v", all)
	}
	if _, ok := Get[*MaterialComponent](cs); ok {
		t.Error("Get of absent type succeeded")
	}
	// Interface lookups scan in insertion order.
	src, ok := Get[transformSource](cs)
	if !ok || src != transformSource(t1) {
		t.Errorf("Get[transformSource] = %v, %v", src, ok)
	}
}

func TestComponentsDispose(t *testing.T) {
	cs := NewComponents()
	d := &disposable{traceComponent: *newTrace(1, "d", new([]string))}
	cs.Add(d)
	cs.Dispose()
	if !d.disposed {
		t.Error("Disposer not called")
	}
	if cs.Len() != 0 {
		t.Errorf("Len = %d, want 0", cs.Len())
	}
}

func TestTransformPriorityBand(t *testing.T) {
	if _, err := NewTransformComponentAt(PriorityTransformMin); err != nil {
		t.Errorf("min priority: %v", err)
	}
	if _, err := NewTransformComponentAt(PriorityTransformMax + 1); !errors.Is(err, ErrPriorityOutOfRange) {
		t.Errorf("above band err = %v, want ErrPriorityOutOfRange", err)
	}
	if _, err := NewObservedTransformComponentAt(PriorityTransformMin - 1); !errors.Is(err, ErrPriorityOutOfRange) {
		t.Errorf("observed below band err = %v, want ErrPriorityOutOfRange", err)
	}

	c := NewTransformComponent()
	if err := c.SetPriority(PriorityShader); !errors.Is(err, ErrPriorityOutOfRange) {
		t.Errorf("SetPriority out of band err = %v", err)
	}
	if c.Priority() != PriorityTransform {
		t.Errorf("Priority = %d, want unchanged %d", c.Priority(), PriorityTransform)
	}
	if err := c.SetPriority(210); err != nil || c.Priority() != 210 {
		t.Errorf("SetPriority(210) = %v, priority %d", err, c.Priority())
	}
}

func TestComponentIDsUnique(t *testing.T) {
	a := NewTransformComponent()
	b := NewTransformComponent()
	if a.ID() == b.ID() {
		t.Errorf("IDs collide: %d", a.ID())
	}
	c := a.CloneComponent()
	if c.ID() == a.ID() {
		t.Error("clone shares the original's ID")
	}
}
