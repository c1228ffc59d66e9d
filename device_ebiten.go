package strata

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// defaultKageSrc shades with the vertex colour, which carries the
// world-space normal.
const defaultKageSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return vec4(color.rgb, 1)
}
`

// kageUniformRe matches top-level uniform declarations: "var Name type" or
// "var A, B type".
var kageUniformRe = regexp.MustCompile(`(?m)^var\s+([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s+(\S+)`)

// kageArrayRe extracts N from an array type "[N]float".
var kageArrayRe = regexp.MustCompile(`^\[(\d+)\]float$`)

type ebitenProgram struct {
	name     string
	shader   *ebiten.Shader
	uniforms []string
	types    map[string]string
	values   map[string]any
	blocks   map[string]blockRef
}

type blockRef struct {
	kind    BufferKind
	binding uint32
}

type uniformKey struct {
	program ProgramID
	name    string
}

type ebitenFramebuffer struct {
	desc   FramebufferDesc
	colors []TextureID
}

type ebitenBuffer struct {
	kind BufferKind
	data []byte
}

// EbitenDevice implements Device on top of Ebitengine. Programs are Kage
// fragment shaders; vertices are projected on the CPU and submitted with
// DrawTrianglesShader32. The screen passed to BeginFrame is the default
// framebuffer.
//
// Kage has no uniform blocks. A bound block is delivered as a float array
// uniform with the block's name, decoded from the buffer's little-endian
// bytes. Cube maps are stored as a horizontal strip of six faces. Ebitengine
// has no depth buffer, so triangles within a mesh are sorted back to front
// instead, and clip distances are ignored.
type EbitenDevice struct {
	programs  map[ProgramID]*ebitenProgram
	locations []uniformKey
	locIndex  map[uniformKey]int32

	textures     map[TextureID]*ebiten.Image
	framebuffers map[FramebufferID]*ebitenFramebuffer
	buffers      map[BufferID]*ebitenBuffer
	bindings     map[blockRef]BufferID

	units      map[int]TextureID
	current    ProgramID
	boundFB    FramebufferID
	viewport   Viewport
	drawColors int
	depthFunc  DepthFunc
	clips      map[int]bool

	screen        *ebiten.Image
	width, height int
	defaultShader *ebiten.Shader

	next  uint32
	err   error
	log   *zap.Logger
	shots []string

	vtx   []ebiten.Vertex
	idx   []uint32
	order []triDepth
}

type triDepth struct {
	i int
	z float32
}

// NewEbitenDevice creates a device. width and height are reported as the
// window size until the first BeginFrame. log may be nil.
func NewEbitenDevice(width, height int, log *zap.Logger) *EbitenDevice {
	if log == nil {
		log = zap.NewNop()
	}
	return &EbitenDevice{
		programs:     make(map[ProgramID]*ebitenProgram),
		locIndex:     make(map[uniformKey]int32),
		textures:     make(map[TextureID]*ebiten.Image),
		framebuffers: make(map[FramebufferID]*ebitenFramebuffer),
		buffers:      make(map[BufferID]*ebitenBuffer),
		bindings:     make(map[blockRef]BufferID),
		units:        make(map[int]TextureID),
		clips:        make(map[int]bool),
		drawColors:   1,
		width:        width,
		height:       height,
		log:          log,
	}
}

// BeginFrame sets the screen image that backs the default framebuffer.
func (d *EbitenDevice) BeginFrame(screen *ebiten.Image) {
	d.screen = screen
	if screen != nil {
		b := screen.Bounds()
		d.width, d.height = b.Dx(), b.Dy()
	}
}

// Size implements WindowSizer.
func (d *EbitenDevice) Size() (int, int) { return d.width, d.height }

func (d *EbitenDevice) nextID() uint32 {
	d.next++
	return d.next
}

func (d *EbitenDevice) fail(err error) {
	if d.err == nil {
		d.err = err
	}
	d.log.Debug("ebiten device", zap.Error(err))
}

// --- Programs ---

func (d *EbitenDevice) CreateProgram(src ShaderSource) (ProgramID, error) {
	sh, err := ebiten.NewShader([]byte(src.Fragment))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrShaderCompile, src.Name, err)
	}
	p := &ebitenProgram{
		name:   src.Name,
		shader: sh,
		types:  make(map[string]string),
		values: make(map[string]any),
		blocks: make(map[string]blockRef),
	}
	for _, m := range kageUniformRe.FindAllStringSubmatch(src.Fragment, -1) {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			p.uniforms = append(p.uniforms, name)
			p.types[name] = m[2]
		}
	}
	id := ProgramID(d.nextID())
	d.programs[id] = p
	return id, nil
}

func (d *EbitenDevice) DeleteProgram(id ProgramID) {
	if p, ok := d.programs[id]; ok {
		p.shader.Deallocate()
		delete(d.programs, id)
	}
}

func (d *EbitenDevice) UseProgram(id ProgramID) {
	if id != 0 && d.programs[id] == nil {
		d.fail(fmt.Errorf("use of unknown program %d", id))
		return
	}
	d.current = id
}

func (d *EbitenDevice) UniformLocation(id ProgramID, name string) int32 {
	p := d.programs[id]
	if p == nil || !slices.Contains(p.uniforms, name) {
		return -1
	}
	key := uniformKey{id, name}
	if loc, ok := d.locIndex[key]; ok {
		return loc
	}
	loc := int32(len(d.locations))
	d.locations = append(d.locations, key)
	d.locIndex[key] = loc
	return loc
}

func (d *EbitenDevice) ActiveUniforms(id ProgramID) []string {
	if p := d.programs[id]; p != nil {
		return slices.Clone(p.uniforms)
	}
	return nil
}

func (d *EbitenDevice) setUniform(loc int32, v any) {
	if loc < 0 || int(loc) >= len(d.locations) {
		return
	}
	key := d.locations[loc]
	if p := d.programs[key.program]; p != nil {
		p.values[key.name] = v
	}
}

func (d *EbitenDevice) Uniform1f(loc int32, v float32)    { d.setUniform(loc, v) }
func (d *EbitenDevice) Uniform1i(loc int32, v int32)      { d.setUniform(loc, v) }
func (d *EbitenDevice) Uniform2f(loc int32, v mgl32.Vec2) { d.setUniform(loc, v[:]) }
func (d *EbitenDevice) Uniform3f(loc int32, v mgl32.Vec3) { d.setUniform(loc, v[:]) }
func (d *EbitenDevice) Uniform4f(loc int32, v mgl32.Vec4) { d.setUniform(loc, v[:]) }

// UniformMat3 and UniformMat4 pass column-major floats, which is the
// order Kage expects.
func (d *EbitenDevice) UniformMat3(loc int32, m mgl32.Mat3) { d.setUniform(loc, m[:]) }
func (d *EbitenDevice) UniformMat4(loc int32, m mgl32.Mat4) { d.setUniform(loc, m[:]) }

func (d *EbitenDevice) BindBlock(id ProgramID, kind BufferKind, block string, binding uint32) {
	if p := d.programs[id]; p != nil {
		p.blocks[block] = blockRef{kind, binding}
	}
}

// --- Textures ---

func (d *EbitenDevice) CreateTexture(desc TextureDesc) (TextureID, error) {
	if desc.Image == nil {
		return 0, fmt.Errorf("nil image")
	}
	id := TextureID(d.nextID())
	d.textures[id] = ebiten.NewImageFromImage(desc.Image)
	return id, nil
}

func (d *EbitenDevice) CreateCubemap(faces [6]image.Image) (TextureID, error) {
	size := faces[0].Bounds().Dx()
	strip := ebiten.NewImage(size*6, size)
	for i, f := range faces {
		face := ebiten.NewImageFromImage(f)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(i*size), 0)
		strip.DrawImage(face, op)
		face.Deallocate()
	}
	id := TextureID(d.nextID())
	d.textures[id] = strip
	return id, nil
}

func (d *EbitenDevice) DeleteTexture(id TextureID) {
	if img, ok := d.textures[id]; ok {
		img.Deallocate()
		delete(d.textures, id)
	}
}

func (d *EbitenDevice) BindTexture(unit int, _ TextureTarget, id TextureID) {
	if id == 0 {
		delete(d.units, unit)
		return
	}
	d.units[unit] = id
}

// Texture returns the image behind a texture id, or nil.
func (d *EbitenDevice) Texture(id TextureID) *ebiten.Image { return d.textures[id] }

// --- Framebuffers ---

func (d *EbitenDevice) CreateFramebuffer(desc FramebufferDesc) (FramebufferID, error) {
	if desc.ColorAttachments > 1 {
		d.log.Warn("ebiten device: only the first colour attachment is drawn to",
			zap.Int("attachments", desc.ColorAttachments))
	}
	fb := &ebitenFramebuffer{desc: desc}
	for i := 0; i < desc.ColorAttachments; i++ {
		id := TextureID(d.nextID())
		d.textures[id] = ebiten.NewImage(desc.Width, desc.Height)
		fb.colors = append(fb.colors, id)
	}
	id := FramebufferID(d.nextID())
	d.framebuffers[id] = fb
	return id, nil
}

func (d *EbitenDevice) DeleteFramebuffer(id FramebufferID) {
	fb, ok := d.framebuffers[id]
	if !ok {
		return
	}
	for _, t := range fb.colors {
		d.DeleteTexture(t)
	}
	delete(d.framebuffers, id)
}

func (d *EbitenDevice) FramebufferTexture(id FramebufferID, attachment int) TextureID {
	fb := d.framebuffers[id]
	if fb == nil || attachment < 0 || attachment >= len(fb.colors) {
		return 0
	}
	return fb.colors[attachment]
}

func (d *EbitenDevice) BindFramebuffer(id FramebufferID) {
	if id != DefaultFramebuffer && d.framebuffers[id] == nil {
		d.fail(fmt.Errorf("bind of unknown framebuffer %d", id))
		return
	}
	d.boundFB = id
}

func (d *EbitenDevice) Viewport(v Viewport) { d.viewport = v }

func (d *EbitenDevice) DrawBuffers(_ FramebufferID, colorCount int) { d.drawColors = colorCount }

// target returns the bound colour image clipped to the viewport, or nil when
// colour output is disabled.
func (d *EbitenDevice) target() *ebiten.Image {
	if d.drawColors == 0 {
		return nil
	}
	var img *ebiten.Image
	if d.boundFB == DefaultFramebuffer {
		img = d.screen
	} else if fb := d.framebuffers[d.boundFB]; fb != nil && len(fb.colors) > 0 {
		img = d.textures[fb.colors[0]]
	}
	if img == nil {
		return nil
	}
	v := d.viewport
	if v.Width <= 0 || v.Height <= 0 {
		return img
	}
	r := image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
	return img.SubImage(r).(*ebiten.Image)
}

func (d *EbitenDevice) Clear(c Color, _ bool) {
	dst := d.target()
	if dst == nil {
		return
	}
	dst.Fill(color.RGBA64{
		R: uint16(clamp01(c.R*c.A) * 0xffff),
		G: uint16(clamp01(c.G*c.A) * 0xffff),
		B: uint16(clamp01(c.B*c.A) * 0xffff),
		A: uint16(clamp01(c.A) * 0xffff),
	})
}

// --- Buffers ---

func (d *EbitenDevice) CreateBuffer(kind BufferKind, size int) (BufferID, error) {
	if size < 0 {
		return 0, fmt.Errorf("negative size %d", size)
	}
	id := BufferID(d.nextID())
	d.buffers[id] = &ebitenBuffer{kind: kind, data: make([]byte, size)}
	return id, nil
}

func (d *EbitenDevice) DeleteBuffer(id BufferID) { delete(d.buffers, id) }

func (d *EbitenDevice) BufferData(id BufferID, _ BufferKind, data []byte) {
	b := d.buffers[id]
	if b == nil {
		d.fail(fmt.Errorf("upload to unknown buffer %d", id))
		return
	}
	b.data = append(b.data[:0], data...)
}

func (d *EbitenDevice) BufferSubData(id BufferID, _ BufferKind, offset int, data []byte) {
	b := d.buffers[id]
	if b == nil || offset < 0 || offset+len(data) > len(b.data) {
		d.fail(fmt.Errorf("partial upload out of range: buffer %d offset %d size %d", id, offset, len(data)))
		return
	}
	copy(b.data[offset:], data)
}

func (d *EbitenDevice) BindBufferBase(kind BufferKind, binding uint32, id BufferID) {
	d.bindings[blockRef{kind, binding}] = id
}

// --- State ---

func (d *EbitenDevice) EnableClipDistance(index int, enabled bool) { d.clips[index] = enabled }
func (d *EbitenDevice) SetDepthFunc(f DepthFunc)                  { d.depthFunc = f }

func (d *EbitenDevice) CheckError() error {
	err := d.err
	d.err = nil
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceError, err)
	}
	return nil
}

// --- Drawing ---

func (d *EbitenDevice) DrawMesh(m *Mesh, state DrawState) {
	dst := d.target()
	if dst == nil || m == nil || len(m.Indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesShaderOptions{}
	shader := d.defaultKage()
	if p := d.programs[d.current]; p != nil {
		shader = p.shader
		op.Uniforms = d.uniformsFor(p)
	}
	srcW, srcH := d.sourceImages(&op.Images)

	mvp := state.ViewProjection.Mul4(state.Model)
	normalM := state.Model.Mat3().Inv().Transpose()
	vp := d.viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		b := dst.Bounds()
		vp = Viewport{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
	}

	d.vtx = d.vtx[:0]
	depth := make([]float32, 0, len(m.Vertices))
	behind := make([]bool, 0, len(m.Vertices))
	for _, v := range m.Vertices {
		clip := mvp.Mul4x1(v.Position.Vec4(1))
		behind = append(behind, clip[3] <= 0)
		w := clip[3]
		if w == 0 {
			w = 1
		}
		ndc := clip.Vec3().Mul(1 / w)
		n := normalM.Mul3x1(v.Normal)
		if n.Len() > 0 {
			n = n.Normalize()
		}
		d.vtx = append(d.vtx, ebiten.Vertex{
			DstX:   float32(vp.X) + (ndc[0]+1)/2*float32(vp.Width),
			DstY:   float32(vp.Y) + (1-ndc[1])/2*float32(vp.Height),
			SrcX:   v.UV[0] * srcW,
			SrcY:   v.UV[1] * srcH,
			ColorR: n[0]*0.5 + 0.5,
			ColorG: n[1]*0.5 + 0.5,
			ColorB: n[2]*0.5 + 0.5,
			ColorA: 1,
		})
		depth = append(depth, ndc[2])
	}

	// Drop triangles with a vertex behind the eye, then sort back to front.
	d.order = d.order[:0]
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(max(a, b, c)) >= len(d.vtx) {
			d.fail(fmt.Errorf("mesh %d index out of range", m.ID))
			return
		}
		if behind[a] || behind[b] || behind[c] {
			continue
		}
		d.order = append(d.order, triDepth{i: i, z: (depth[a] + depth[b] + depth[c]) / 3})
	}
	if d.depthFunc != DepthAlways {
		slices.SortStableFunc(d.order, func(x, y triDepth) int { return cmp.Compare(y.z, x.z) })
	}
	d.idx = d.idx[:0]
	for _, t := range d.order {
		d.idx = append(d.idx, m.Indices[t.i], m.Indices[t.i+1], m.Indices[t.i+2])
	}
	if len(d.idx) == 0 {
		return
	}
	dst.DrawTrianglesShader32(d.vtx, d.idx, shader, op)
}

// uniformsFor merges the program's uniform values with its bound blocks.
func (d *EbitenDevice) uniformsFor(p *ebitenProgram) map[string]any {
	if len(p.blocks) == 0 {
		return p.values
	}
	out := make(map[string]any, len(p.values)+len(p.blocks))
	for k, v := range p.values {
		out[k] = v
	}
	for name, ref := range p.blocks {
		typ, ok := p.types[name]
		if !ok {
			continue
		}
		b := d.buffers[d.bindings[ref]]
		if b == nil {
			continue
		}
		out[name] = decodeBlock(b.data, typ)
	}
	return out
}

// decodeBlock converts little-endian bytes to floats, sized to the Kage
// array type when it has one.
func decodeBlock(data []byte, kageType string) []float32 {
	n := len(data) / 4
	if m := kageArrayRe.FindStringSubmatch(kageType); m != nil {
		if size, err := strconv.Atoi(m[1]); err == nil {
			n = size
		}
	}
	out := make([]float32, n)
	for i := range out {
		if off := i * 4; off+4 <= len(data) {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return out
}

// sourceImages fills Images from units 0-3 and returns the size of unit 0.
// Units whose image size differs from unit 0 are skipped.
func (d *EbitenDevice) sourceImages(images *[4]*ebiten.Image) (w, h float32) {
	var size image.Point
	for unit := 0; unit < len(images); unit++ {
		img := d.textures[d.units[unit]]
		if img == nil {
			continue
		}
		s := img.Bounds().Size()
		if size == (image.Point{}) {
			size = s
		} else if s != size {
			d.log.Debug("ebiten device: source image size mismatch, unit skipped", zap.Int("unit", unit))
			continue
		}
		images[unit] = img
	}
	return float32(size.X), float32(size.Y)
}

func (d *EbitenDevice) defaultKage() *ebiten.Shader {
	if d.defaultShader == nil {
		sh, err := ebiten.NewShader([]byte(defaultKageSrc))
		if err != nil {
			panic("strata: default shader: " + err.Error())
		}
		d.defaultShader = sh
	}
	return d.defaultShader
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
