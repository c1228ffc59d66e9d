package strata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

type testBlock struct {
	Scale  float32
	Offset [3]float32
	Count  int32
}

func newTestResource(t *testing.T, rc *RenderContext, name string, binding uint32, mode UpdateMode) *StructResource[testBlock] {
	t.Helper()
	r, err := NewStructResource[testBlock](rc, name, UniformBuffer, binding, mode)
	if err != nil {
		t.Fatalf("NewStructResource: %v", err)
	}
	return r
}

func TestStructResourceSize(t *testing.T) {
	rc, d, _ := newTestContext(t)
	r := newTestResource(t, rc, "Test", 5, PerFrame)
	if r.Size() != 20 {
		t.Errorf("Size = %d, want 20", r.Size())
	}
	if len(d.buffers[r.Buffer()]) != 20 {
		t.Errorf("device buffer = %d bytes, want 20", len(d.buffers[r.Buffer()]))
	}
}

func TestStructResourceRejectsVariableSize(t *testing.T) {
	rc, _, _ := newTestContext(t)
	_, err := NewStructResource[struct{ N int }](rc, "Bad", UniformBuffer, 3, PerFrame)
	if !errors.Is(err, ErrBufferCreate) {
		t.Errorf("err = %v, want ErrBufferCreate", err)
	}
}

func TestStructResourceCreateFailure(t *testing.T) {
	rc, d, _ := newTestContext(t)
	d.failBuffer = errors.New("out of memory")
	_, err := NewStructResource[testBlock](rc, "Test", UniformBuffer, 5, PerFrame)
	if !errors.Is(err, ErrBufferCreate) {
		t.Errorf("err = %v, want ErrBufferCreate", err)
	}
}

func TestResourceRegisterBinds(t *testing.T) {
	rc, d, _ := newTestContext(t)
	sh := newTestShader(t, rc, "early")
	r := newTestResource(t, rc, "Test", 5, PerFrame)
	d.resetCalls()

	if err := rc.Resources.Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if d.bindings[bindingKey{UniformBuffer, 5}] != r.Buffer() {
		t.Error("buffer not bound to its binding point")
	}
	// Shaders created before and after registration both get the block.
	if d.programs[sh.Program()].blocks["Test"] != 5 {
		t.Errorf("existing shader blocks = %v", d.programs[sh.Program()].blocks)
	}
	late := newTestShader(t, rc, "late")
	blocks := d.programs[late.Program()].blocks
	if blocks["Test"] != 5 || blocks[LightsBlockName] != LightsBinding {
		t.Errorf("new shader blocks = %v", blocks)
	}
}

func TestResourceRegisterNil(t *testing.T) {
	rc, _, _ := newTestContext(t)
	if err := rc.Resources.Register(nil); !errors.Is(err, ErrNilResource) {
		t.Errorf("err = %v, want ErrNilResource", err)
	}
}

func TestResourceReplace(t *testing.T) {
	rc, d, _ := newTestContext(t)
	old := newTestResource(t, rc, "Test", 5, PerFrame)
	rc.Resources.Register(old)
	oldID := old.Buffer()

	repl := newTestResource(t, rc, "Test", 6, PerFrame)
	rc.Resources.Register(repl)
	if _, ok := d.buffers[oldID]; ok {
		t.Error("replaced buffer not deleted")
	}
	if got, _ := rc.Resources.Lookup("Test"); got != ShaderResource(repl) {
		t.Error("Lookup returned the replaced resource")
	}
	if rc.Resources.PerFrameLen() != 1 {
		t.Errorf("PerFrameLen = %d, want 1", rc.Resources.PerFrameLen())
	}
	if !rc.Resources.Unregister("Test") || rc.Resources.Unregister("Test") {
		t.Error("Unregister results wrong")
	}
}

func TestResourceModes(t *testing.T) {
	rc, d, _ := newTestContext(t)
	frame := newTestResource(t, rc, "Frame", 5, PerFrame)
	demand := newTestResource(t, rc, "Demand", 6, OnDemand)
	calls := 0
	frame.SetProvider(func() testBlock { calls++; return testBlock{Scale: 2} })
	demand.SetProvider(func() testBlock { calls++; return testBlock{Scale: 3} })
	rc.Resources.Register(frame)
	rc.Resources.Register(demand)
	d.resetCalls()

	rc.Resources.ApplyPerFrame()
	if calls != 1 || d.count(fmt.Sprintf("BufferData(%d,", frame.Buffer())) != 1 {
		t.Errorf("ApplyPerFrame: provider calls %d, calls %v", calls, d.calls)
	}
	if d.count(fmt.Sprintf("BufferData(%d,", demand.Buffer())) != 0 {
		t.Error("OnDemand resource uploaded by ApplyPerFrame")
	}
	rc.Resources.Apply("Demand")
	if d.count(fmt.Sprintf("BufferData(%d,", demand.Buffer())) != 1 {
		t.Error("Apply did not upload the OnDemand resource")
	}
	if rc.Stats.BufferUploads != 2 {
		t.Errorf("BufferUploads = %d, want 2", rc.Stats.BufferUploads)
	}
}

func TestResourceEncoding(t *testing.T) {
	rc, d, _ := newTestContext(t)
	r := newTestResource(t, rc, "Test", 5, OnDemand)
	r.SetProvider(func() testBlock {
		return testBlock{Scale: 1.5, Offset: [3]float32{1, 2, 3}, Count: 7}
	})
	r.Apply()
	buf := d.buffers[r.Buffer()]
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); got != 1.5 {
		t.Errorf("Scale = %v, want 1.5", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])); got != 3 {
		t.Errorf("Offset.Z = %v, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(buf[16:]); got != 7 {
		t.Errorf("Count = %d, want 7", got)
	}
	if r.Data().Count != 7 {
		t.Errorf("Data().Count = %d", r.Data().Count)
	}
}

func TestResourcePartialProvider(t *testing.T) {
	rc, d, logs := newTestContext(t)
	r := newTestResource(t, rc, "Test", 5, OnDemand)
	rng := ByteRange{Offset: 16, Size: 4}
	r.SetPartialProvider(func(b *testBlock) ByteRange {
		b.Count++
		return rng
	})
	d.resetCalls()

	r.Apply()
	want := fmt.Sprintf("BufferSubData(%d,16,4)", r.Buffer())
	if len(d.calls) != 1 || d.calls[0] != want {
		t.Fatalf("calls = %v, want [%s]", d.calls, want)
	}
	if got := binary.LittleEndian.Uint32(d.buffers[r.Buffer()][16:]); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}

	rng = ByteRange{}
	r.Apply()
	if len(d.calls) != 1 {
		t.Errorf("empty range uploaded: %v", d.calls)
	}

	rng = ByteRange{Offset: 12, Size: 16}
	r.Apply()
	if len(d.calls) != 1 {
		t.Errorf("out-of-bounds range uploaded: %v", d.calls)
	}
	if !hasWarning(logs, "dirty range out of bounds") {
		t.Errorf("warnings = %v", warnings(logs))
	}
}

func TestResourceApplyUnknown(t *testing.T) {
	rc, _, logs := newTestContext(t)
	rc.Resources.Apply("Nope")
	if !hasWarning(logs, "apply of unknown resource") {
		t.Errorf("warnings = %v", warnings(logs))
	}
}

func TestResourceReleaseAll(t *testing.T) {
	rc, d, _ := newTestContext(t)
	r := newTestResource(t, rc, "Test", 5, PerFrame)
	rc.Resources.Register(r)
	rc.Release()
	if rc.Resources.Len() != 0 {
		t.Errorf("Len = %d, want 0", rc.Resources.Len())
	}
	if len(d.buffers) != 0 {
		t.Errorf("%d buffers left on the device", len(d.buffers))
	}
	// Releasing a resource twice is a no-op.
	r.Release()
}
