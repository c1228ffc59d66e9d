package strata

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// --- Recording fake device ---

type fakeProgram struct {
	name      string
	locations map[string]int32
	active    []string
	blocks    map[string]uint32
}

type fakeDraw struct {
	mesh    *Mesh
	state   DrawState
	program ProgramID
	fb      FramebufferID
}

type bindingKey struct {
	kind    BufferKind
	binding uint32
}

type fakeFramebuffer struct {
	desc   FramebufferDesc
	colors []TextureID
}

// fakeDevice records every call so tests can assert which state changes
// reached the device and in what order.
type fakeDevice struct {
	width, height int

	next      uint32
	calls     []string
	programs  map[ProgramID]*fakeProgram
	current   ProgramID
	uniforms  map[ProgramID]map[int32]any
	textures  map[TextureID]TextureTarget
	units     map[int]TextureID
	fbs       map[FramebufferID]*fakeFramebuffer
	boundFB   FramebufferID
	viewport  Viewport
	drawBufs  int
	buffers   map[BufferID][]byte
	bindings  map[bindingKey]BufferID
	clips     map[int]bool
	depthFunc DepthFunc
	draws     []fakeDraw
	clears    int

	failProgram error
	failBuffer  error
	pendingErr  error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		width:    800,
		height:   600,
		programs: make(map[ProgramID]*fakeProgram),
		uniforms: make(map[ProgramID]map[int32]any),
		textures: make(map[TextureID]TextureTarget),
		units:    make(map[int]TextureID),
		fbs:      make(map[FramebufferID]*fakeFramebuffer),
		buffers:  make(map[BufferID][]byte),
		bindings: make(map[bindingKey]BufferID),
		clips:    make(map[int]bool),
	}
}

func (d *fakeDevice) id() uint32 {
	d.next++
	return d.next
}

func (d *fakeDevice) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// count returns how many recorded calls start with prefix.
func (d *fakeDevice) count(prefix string) int {
	n := 0
	for _, c := range d.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (d *fakeDevice) resetCalls() { d.calls = d.calls[:0] }

func (d *fakeDevice) Size() (int, int) { return d.width, d.height }

// parseUniforms finds "uniform <type> <name>;" declarations.
func parseUniforms(src string) []string {
	var names []string
	for _, line := range strings.Split(src, "\n") {
		f := strings.Fields(strings.TrimSpace(line))
		if len(f) >= 3 && f[0] == "uniform" {
			names = append(names, strings.TrimSuffix(f[2], ";"))
		}
	}
	return names
}

func (d *fakeDevice) CreateProgram(src ShaderSource) (ProgramID, error) {
	if d.failProgram != nil {
		return 0, d.failProgram
	}
	id := ProgramID(d.id())
	p := &fakeProgram{name: src.Name, locations: make(map[string]int32), blocks: make(map[string]uint32)}
	for i, n := range parseUniforms(src.Vertex + "\n" + src.Fragment) {
		p.locations[n] = int32(i)
		p.active = append(p.active, n)
	}
	d.programs[id] = p
	d.uniforms[id] = make(map[int32]any)
	d.record("CreateProgram(%s)", src.Name)
	return id, nil
}

func (d *fakeDevice) DeleteProgram(p ProgramID) {
	delete(d.programs, p)
	d.record("DeleteProgram(%d)", p)
}

func (d *fakeDevice) UseProgram(p ProgramID) {
	d.current = p
	d.record("UseProgram(%d)", p)
}

func (d *fakeDevice) UniformLocation(p ProgramID, name string) int32 {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	if loc, ok := prog.locations[name]; ok {
		return loc
	}
	return -1
}

func (d *fakeDevice) ActiveUniforms(p ProgramID) []string {
	if prog, ok := d.programs[p]; ok {
		return prog.active
	}
	return nil
}

func (d *fakeDevice) setUniform(loc int32, v any) {
	d.record("Uniform(%d)", loc)
	if m, ok := d.uniforms[d.current]; ok {
		m[loc] = v
	}
}

// uniform returns the last value uploaded to name on program p.
func (d *fakeDevice) uniform(p ProgramID, name string) any {
	loc := d.UniformLocation(p, name)
	if loc < 0 {
		return nil
	}
	return d.uniforms[p][loc]
}

func (d *fakeDevice) Uniform1f(loc int32, v float32)      { d.setUniform(loc, v) }
func (d *fakeDevice) Uniform1i(loc int32, v int32)        { d.setUniform(loc, v) }
func (d *fakeDevice) Uniform2f(loc int32, v mgl32.Vec2)   { d.setUniform(loc, v) }
func (d *fakeDevice) Uniform3f(loc int32, v mgl32.Vec3)   { d.setUniform(loc, v) }
func (d *fakeDevice) Uniform4f(loc int32, v mgl32.Vec4)   { d.setUniform(loc, v) }
func (d *fakeDevice) UniformMat3(loc int32, m mgl32.Mat3) { d.setUniform(loc, m) }
func (d *fakeDevice) UniformMat4(loc int32, m mgl32.Mat4) { d.setUniform(loc, m) }

func (d *fakeDevice) BindBlock(p ProgramID, kind BufferKind, block string, binding uint32) {
	if prog, ok := d.programs[p]; ok {
		prog.blocks[block] = binding
	}
	d.record("BindBlock(%d,%s,%d)", p, block, binding)
}

func (d *fakeDevice) CreateTexture(desc TextureDesc) (TextureID, error) {
	id := TextureID(d.id())
	d.textures[id] = Texture2D
	d.record("CreateTexture(%d)", id)
	return id, nil
}

func (d *fakeDevice) CreateCubemap(faces [6]image.Image) (TextureID, error) {
	id := TextureID(d.id())
	d.textures[id] = TextureCubeMap
	d.record("CreateCubemap(%d)", id)
	return id, nil
}

func (d *fakeDevice) DeleteTexture(t TextureID) {
	delete(d.textures, t)
	d.record("DeleteTexture(%d)", t)
}

func (d *fakeDevice) BindTexture(unit int, target TextureTarget, t TextureID) {
	if t == 0 {
		delete(d.units, unit)
	} else {
		d.units[unit] = t
	}
	d.record("BindTexture(%d,%d)", unit, t)
}

func (d *fakeDevice) CreateFramebuffer(desc FramebufferDesc) (FramebufferID, error) {
	id := FramebufferID(d.id())
	fb := &fakeFramebuffer{desc: desc}
	for range desc.ColorAttachments {
		tex := TextureID(d.id())
		d.textures[tex] = Texture2D
		fb.colors = append(fb.colors, tex)
	}
	d.fbs[id] = fb
	d.record("CreateFramebuffer(%d)", id)
	return id, nil
}

func (d *fakeDevice) DeleteFramebuffer(fb FramebufferID) {
	if f, ok := d.fbs[fb]; ok {
		for _, c := range f.colors {
			delete(d.textures, c)
		}
	}
	delete(d.fbs, fb)
	d.record("DeleteFramebuffer(%d)", fb)
}

func (d *fakeDevice) FramebufferTexture(fb FramebufferID, attachment int) TextureID {
	f, ok := d.fbs[fb]
	if !ok || attachment >= len(f.colors) {
		return 0
	}
	return f.colors[attachment]
}

func (d *fakeDevice) BindFramebuffer(fb FramebufferID) {
	d.boundFB = fb
	d.record("BindFramebuffer(%d)", fb)
}

func (d *fakeDevice) Viewport(v Viewport) {
	d.viewport = v
	d.record("Viewport(%dx%d)", v.Width, v.Height)
}

func (d *fakeDevice) DrawBuffers(fb FramebufferID, colorCount int) {
	d.drawBufs = colorCount
	d.record("DrawBuffers(%d,%d)", fb, colorCount)
}

func (d *fakeDevice) Clear(c Color, depth bool) {
	d.clears++
	d.record("Clear")
}

func (d *fakeDevice) CreateBuffer(kind BufferKind, size int) (BufferID, error) {
	if d.failBuffer != nil {
		return 0, d.failBuffer
	}
	id := BufferID(d.id())
	d.buffers[id] = make([]byte, size)
	d.record("CreateBuffer(%s,%d)", kind, size)
	return id, nil
}

func (d *fakeDevice) DeleteBuffer(b BufferID) {
	delete(d.buffers, b)
	d.record("DeleteBuffer(%d)", b)
}

func (d *fakeDevice) BufferData(b BufferID, kind BufferKind, data []byte) {
	d.buffers[b] = append([]byte(nil), data...)
	d.record("BufferData(%d,%d)", b, len(data))
}

func (d *fakeDevice) BufferSubData(b BufferID, kind BufferKind, offset int, data []byte) {
	copy(d.buffers[b][offset:], data)
	d.record("BufferSubData(%d,%d,%d)", b, offset, len(data))
}

func (d *fakeDevice) BindBufferBase(kind BufferKind, binding uint32, b BufferID) {
	d.bindings[bindingKey{kind, binding}] = b
	d.record("BindBufferBase(%s,%d,%d)", kind, binding, b)
}

func (d *fakeDevice) EnableClipDistance(index int, enabled bool) {
	d.clips[index] = enabled
	d.record("ClipDistance(%d,%t)", index, enabled)
}

func (d *fakeDevice) SetDepthFunc(f DepthFunc) {
	d.depthFunc = f
	d.record("DepthFunc(%d)", f)
}

func (d *fakeDevice) DrawMesh(m *Mesh, state DrawState) {
	d.draws = append(d.draws, fakeDraw{mesh: m, state: state, program: d.current, fb: d.boundFB})
	d.record("DrawMesh(%d)", m.ID)
}

func (d *fakeDevice) CheckError() error {
	err := d.pendingErr
	d.pendingErr = nil
	return err
}

var (
	_ Device      = (*fakeDevice)(nil)
	_ WindowSizer = (*fakeDevice)(nil)
)

// --- Helpers ---

// newTestContext returns a context on a fresh fake device whose warnings are
// captured by the returned observer.
func newTestContext(t *testing.T) (*RenderContext, *fakeDevice, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	d := newFakeDevice()
	rc, err := NewRenderContext(d, nil, ContextConfig{Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("NewRenderContext: %v", err)
	}
	return rc, d, logs
}

// warnings returns the messages logged at warn level or above.
func warnings(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.All() {
		if e.Level >= zapcore.WarnLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func hasWarning(logs *observer.ObservedLogs, substr string) bool {
	for _, w := range warnings(logs) {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 1, A: 255})
	return img
}

func newTestShader(t *testing.T, rc *RenderContext, name string, uniforms ...string) *Shader {
	t.Helper()
	var b strings.Builder
	for _, u := range uniforms {
		fmt.Fprintf(&b, "uniform mat4 %s;\n", u)
	}
	sh, err := NewShader(rc, ShaderSource{Name: name, Vertex: b.String()})
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	return sh
}

const eps = 1e-4

// within compares element-wise with an absolute tolerance. mgl32's
// ApproxEqual helpers are relative and reject tiny values against exact zero.
func within(a, b []float32, tol float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > tol || d < -tol {
			return false
		}
	}
	return true
}

func matApprox(a, b mgl32.Mat4) bool  { return within(a[:], b[:], eps) }
func vec3Approx(a, b mgl32.Vec3) bool { return within(a[:], b[:], eps) }
func vec4Approx(a, b mgl32.Vec4) bool { return within(a[:], b[:], eps) }
