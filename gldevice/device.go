// Package gldevice implements strata.Device on OpenGL 4.3 core.
//
// The device must be created and used on the goroutine that owns the current
// GL context, after the context is made current.
package gldevice

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/phanxgames/strata"
)

// Uniform names the device sets itself before every DrawMesh when the bound
// program declares them.
const (
	ModelUniform          = "uModel"
	ViewProjectionUniform = "uViewProjection"
)

// Vertex attribute locations. Shaders declare them with layout qualifiers.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribUV       = 2
)

// invalidIndex is GL_INVALID_INDEX.
const invalidIndex = ^uint32(0)

var vertexStride = int32(unsafe.Sizeof(strata.Vertex{}))

type meshBuffers struct {
	vao, vbo, ebo uint32
	version       uint32
	count         int32
}

type framebuffer struct {
	id     uint32
	colors []uint32
	depth  uint32 // renderbuffer
}

type programInfo struct {
	model, viewProj int32
}

// Device is an OpenGL 4.3 core strata.Device.
type Device struct {
	window *glfw.Window
	log    *zap.Logger

	programs     map[strata.ProgramID]programInfo
	current      strata.ProgramID
	framebuffers map[strata.FramebufferID]*framebuffer
	buffers      map[strata.BufferID]strata.BufferKind
	meshes       map[uint32]*meshBuffers
}

// Option configures a Device.
type Option func(*Device)

// WithWindow makes the device report the framebuffer size of w as the
// window size.
func WithWindow(w *glfw.Window) Option {
	return func(d *Device) { d.window = w }
}

// WithLogger sets the device logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Device) {
		if log != nil {
			d.log = log
		}
	}
}

// New loads the GL entry points for the current context and creates a device.
func New(opts ...Option) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	d := &Device{
		log:          zap.NewNop(),
		programs:     make(map[strata.ProgramID]programInfo),
		framebuffers: make(map[strata.FramebufferID]*framebuffer),
		buffers:      make(map[strata.BufferID]strata.BufferKind),
		meshes:       make(map[uint32]*meshBuffers),
	}
	for _, o := range opts {
		o(d)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	d.log.Info("opengl device ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return d, nil
}

// Size implements strata.WindowSizer. Without a window it reports the
// current viewport.
func (d *Device) Size() (int, int) {
	if d.window != nil {
		return d.window.GetFramebufferSize()
	}
	var vp [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &vp[0])
	return int(vp[2]), int(vp[3])
}

// --- Programs ---

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s: %w: %s", stageName(kind), strata.ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func stageName(kind uint32) string {
	if kind == gl.FRAGMENT_SHADER {
		return "fragment"
	}
	return "vertex"
}

// CreateProgram compiles and links the vertex and fragment stages of src.
func (d *Device) CreateProgram(src strata.ShaderSource) (strata.ProgramID, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, src.Vertex)
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", src.Name, err)
	}
	fs, err := compileShader(gl.FRAGMENT_SHADER, src.Fragment)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, fmt.Errorf("program %q: %w", src.Name, err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("program %q: %w: %s", src.Name, strata.ErrShaderLink, strings.TrimRight(log, "\x00"))
	}

	id := strata.ProgramID(program)
	d.programs[id] = programInfo{
		model:    gl.GetUniformLocation(program, gl.Str(ModelUniform+"\x00")),
		viewProj: gl.GetUniformLocation(program, gl.Str(ViewProjectionUniform+"\x00")),
	}
	return id, nil
}

func (d *Device) DeleteProgram(p strata.ProgramID) {
	if p == 0 {
		return
	}
	if d.current == p {
		d.UseProgram(0)
	}
	delete(d.programs, p)
	gl.DeleteProgram(uint32(p))
}

func (d *Device) UseProgram(p strata.ProgramID) {
	d.current = p
	gl.UseProgram(uint32(p))
}

func (d *Device) UniformLocation(p strata.ProgramID, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

// ActiveUniforms lists the program's default-block uniforms. Members of
// uniform blocks are reported by the driver with their block-qualified name.
func (d *Device) ActiveUniforms(p strata.ProgramID) []string {
	var count, maxLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 {
		return nil
	}
	buf := make([]uint8, maxLen+1)
	names := make([]string, 0, count)
	for i := range uint32(count) {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(uint32(p), i, int32(len(buf)), &length, &size, &xtype, &buf[0])
		names = append(names, string(buf[:length]))
	}
	return names
}

func (d *Device) Uniform1f(loc int32, v float32)      { gl.Uniform1f(loc, v) }
func (d *Device) Uniform1i(loc int32, v int32)        { gl.Uniform1i(loc, v) }
func (d *Device) Uniform2f(loc int32, v mgl32.Vec2)   { gl.Uniform2f(loc, v[0], v[1]) }
func (d *Device) Uniform3f(loc int32, v mgl32.Vec3)   { gl.Uniform3f(loc, v[0], v[1], v[2]) }
func (d *Device) Uniform4f(loc int32, v mgl32.Vec4)   { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }
func (d *Device) UniformMat3(loc int32, m mgl32.Mat3) { gl.UniformMatrix3fv(loc, 1, false, &m[0]) }
func (d *Device) UniformMat4(loc int32, m mgl32.Mat4) { gl.UniformMatrix4fv(loc, 1, false, &m[0]) }

// BindBlock attaches the named interface block of p to a buffer binding
// point. Programs without the block are left untouched.
func (d *Device) BindBlock(p strata.ProgramID, kind strata.BufferKind, block string, binding uint32) {
	name := gl.Str(block + "\x00")
	switch kind {
	case strata.ShaderStorageBuffer:
		idx := gl.GetProgramResourceIndex(uint32(p), gl.SHADER_STORAGE_BLOCK, name)
		if idx == invalidIndex {
			return
		}
		gl.ShaderStorageBlockBinding(uint32(p), idx, binding)
	default:
		idx := gl.GetUniformBlockIndex(uint32(p), name)
		if idx == invalidIndex {
			return
		}
		gl.UniformBlockBinding(uint32(p), idx, binding)
	}
}

// --- Textures ---

// toRGBA returns img as a tightly packed RGBA image with its origin at (0,0).
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == b.Dx()*4 {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func (d *Device) CreateTexture(desc strata.TextureDesc) (strata.TextureID, error) {
	if desc.Image == nil {
		return 0, fmt.Errorf("create texture: %w: nil image", strata.ErrTextureLoad)
	}
	rgba := toRGBA(desc.Image)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("create texture: %w: empty image", strata.ErrTextureLoad)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	minFilter, magFilter := int32(gl.LINEAR), int32(gl.LINEAR)
	if desc.NearestUV {
		minFilter, magFilter = gl.NEAREST, gl.NEAREST
	}
	if desc.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		minFilter = gl.LINEAR_MIPMAP_LINEAR
		if desc.NearestUV {
			minFilter = gl.NEAREST_MIPMAP_NEAREST
		}
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return strata.TextureID(tex), nil
}

// CreateCubemap uploads faces in +X, -X, +Y, -Y, +Z, -Z order.
func (d *Device) CreateCubemap(faces [6]image.Image) (strata.TextureID, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
	for i, face := range faces {
		if face == nil {
			gl.DeleteTextures(1, &tex)
			return 0, fmt.Errorf("create cubemap: %w: face %d is nil", strata.ErrTextureLoad, i)
		}
		rgba := toRGBA(face)
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8,
			int32(rgba.Rect.Dx()), int32(rgba.Rect.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return strata.TextureID(tex), nil
}

func (d *Device) DeleteTexture(t strata.TextureID) {
	if t == 0 {
		return
	}
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func textureTarget(t strata.TextureTarget) uint32 {
	if t == strata.TextureCubeMap {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func (d *Device) BindTexture(unit int, target strata.TextureTarget, t strata.TextureID) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(textureTarget(target), uint32(t))
}

// --- Framebuffers ---

func (d *Device) CreateFramebuffer(desc strata.FramebufferDesc) (strata.FramebufferID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("create framebuffer %dx%d: %w", desc.Width, desc.Height, strata.ErrFramebufferIncomplete)
	}
	fb := &framebuffer{}
	gl.GenFramebuffers(1, &fb.id)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.id)

	for i := range desc.ColorAttachments {
		var tex uint32
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, tex, 0)
		fb.colors = append(fb.colors, tex)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if desc.Depth {
		gl.GenRenderbuffers(1, &fb.depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(desc.Width), int32(desc.Height))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	bufs := drawBufferList(len(fb.colors))
	if len(bufs) == 0 {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	} else {
		gl.DrawBuffers(int32(len(bufs)), &bufs[0])
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.releaseFramebuffer(fb)
		return 0, fmt.Errorf("create framebuffer: %w: status 0x%x", strata.ErrFramebufferIncomplete, status)
	}
	id := strata.FramebufferID(fb.id)
	d.framebuffers[id] = fb
	return id, nil
}

// drawBufferList returns the colour attachment enums for n outputs.
func drawBufferList(n int) []uint32 {
	if n <= 0 {
		return nil
	}
	bufs := make([]uint32, n)
	for i := range bufs {
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	return bufs
}

func (d *Device) releaseFramebuffer(fb *framebuffer) {
	if len(fb.colors) > 0 {
		gl.DeleteTextures(int32(len(fb.colors)), &fb.colors[0])
	}
	if fb.depth != 0 {
		gl.DeleteRenderbuffers(1, &fb.depth)
	}
	gl.DeleteFramebuffers(1, &fb.id)
}

func (d *Device) DeleteFramebuffer(id strata.FramebufferID) {
	fb, ok := d.framebuffers[id]
	if !ok {
		return
	}
	delete(d.framebuffers, id)
	d.releaseFramebuffer(fb)
}

func (d *Device) FramebufferTexture(id strata.FramebufferID, attachment int) strata.TextureID {
	fb, ok := d.framebuffers[id]
	if !ok || attachment < 0 || attachment >= len(fb.colors) {
		return 0
	}
	return strata.TextureID(fb.colors[attachment])
}

func (d *Device) BindFramebuffer(id strata.FramebufferID) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(id))
}

func (d *Device) Viewport(v strata.Viewport) {
	gl.Viewport(int32(v.X), int32(v.Y), int32(v.Width), int32(v.Height))
}

func (d *Device) DrawBuffers(id strata.FramebufferID, colorCount int) {
	if id == strata.DefaultFramebuffer {
		gl.DrawBuffer(gl.BACK)
		return
	}
	bufs := drawBufferList(colorCount)
	if len(bufs) == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
}

func (d *Device) Clear(c strata.Color, depth bool) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	mask := uint32(gl.COLOR_BUFFER_BIT)
	if depth {
		gl.ClearDepth(1)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

// --- Buffers ---

func bufferTarget(kind strata.BufferKind) uint32 {
	if kind == strata.ShaderStorageBuffer {
		return gl.SHADER_STORAGE_BUFFER
	}
	return gl.UNIFORM_BUFFER
}

func (d *Device) CreateBuffer(kind strata.BufferKind, size int) (strata.BufferID, error) {
	if size <= 0 {
		return 0, fmt.Errorf("create %s of %d bytes: %w", kind, size, strata.ErrBufferCreate)
	}
	var b uint32
	gl.GenBuffers(1, &b)
	if b == 0 {
		return 0, fmt.Errorf("create %s: %w", kind, strata.ErrBufferCreate)
	}
	target := bufferTarget(kind)
	gl.BindBuffer(target, b)
	gl.BufferData(target, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(target, 0)
	id := strata.BufferID(b)
	d.buffers[id] = kind
	return id, nil
}

func (d *Device) DeleteBuffer(b strata.BufferID) {
	if b == 0 {
		return
	}
	delete(d.buffers, b)
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) BufferData(b strata.BufferID, kind strata.BufferKind, data []byte) {
	if len(data) == 0 {
		return
	}
	target := bufferTarget(kind)
	gl.BindBuffer(target, uint32(b))
	gl.BufferData(target, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
	gl.BindBuffer(target, 0)
}

func (d *Device) BufferSubData(b strata.BufferID, kind strata.BufferKind, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	target := bufferTarget(kind)
	gl.BindBuffer(target, uint32(b))
	gl.BufferSubData(target, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(target, 0)
}

func (d *Device) BindBufferBase(kind strata.BufferKind, binding uint32, b strata.BufferID) {
	gl.BindBufferBase(bufferTarget(kind), binding, uint32(b))
}

// --- Fixed-function state ---

func (d *Device) EnableClipDistance(index int, enabled bool) {
	if enabled {
		gl.Enable(gl.CLIP_DISTANCE0 + uint32(index))
	} else {
		gl.Disable(gl.CLIP_DISTANCE0 + uint32(index))
	}
}

func depthFunc(f strata.DepthFunc) uint32 {
	switch f {
	case strata.DepthLessEqual:
		return gl.LEQUAL
	case strata.DepthAlways:
		return gl.ALWAYS
	default:
		return gl.LESS
	}
}

func (d *Device) SetDepthFunc(f strata.DepthFunc) {
	gl.DepthFunc(depthFunc(f))
}

// --- Drawing ---

func (d *Device) upload(m *strata.Mesh) *meshBuffers {
	mb, ok := d.meshes[m.ID]
	if ok && mb.version == m.Version() {
		return mb
	}
	if !ok {
		mb = &meshBuffers{}
		gl.GenVertexArrays(1, &mb.vao)
		gl.GenBuffers(1, &mb.vbo)
		gl.GenBuffers(1, &mb.ebo)
		d.meshes[m.ID] = mb
	}
	gl.BindVertexArray(mb.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(vertexStride), gl.Ptr(&m.Vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(AttribPosition, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(AttribPosition)
	gl.VertexAttribPointer(AttribNormal, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(AttribNormal)
	gl.VertexAttribPointer(AttribUV, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(AttribUV)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	mb.version = m.Version()
	mb.count = int32(len(m.Indices))
	return mb
}

// DrawMesh draws m with the bound program. Uploaded geometry is cached per
// mesh ID and re-uploaded when the mesh version changes.
func (d *Device) DrawMesh(m *strata.Mesh, state strata.DrawState) {
	if m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return
	}
	if d.current == 0 {
		d.log.Warn("draw without a bound program", zap.Uint32("mesh", m.ID))
		return
	}
	if info, ok := d.programs[d.current]; ok {
		if info.model >= 0 {
			d.UniformMat4(info.model, state.Model)
		}
		if info.viewProj >= 0 {
			d.UniformMat4(info.viewProj, state.ViewProjection)
		}
	}
	mb := d.upload(m)
	gl.BindVertexArray(mb.vao)
	gl.DrawElements(gl.TRIANGLES, mb.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// ReleaseMesh frees the GPU buffers uploaded for m.
func (d *Device) ReleaseMesh(m *strata.Mesh) {
	mb, ok := d.meshes[m.ID]
	if !ok {
		return
	}
	delete(d.meshes, m.ID)
	gl.DeleteVertexArrays(1, &mb.vao)
	gl.DeleteBuffers(1, &mb.vbo)
	gl.DeleteBuffers(1, &mb.ebo)
}

// errorName maps a glGetError code to its enum name.
func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case gl.STACK_UNDERFLOW:
		return "GL_STACK_UNDERFLOW"
	case gl.STACK_OVERFLOW:
		return "GL_STACK_OVERFLOW"
	default:
		return fmt.Sprintf("GL error 0x%x", code)
	}
}

// CheckError drains the GL error queue and reports every pending error.
func (d *Device) CheckError() error {
	var errs []error
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		errs = append(errs, fmt.Errorf("%w: %s", strata.ErrDeviceError, errorName(code)))
	}
	return errors.Join(errs...)
}

var (
	_ strata.Device      = (*Device)(nil)
	_ strata.WindowSizer = (*Device)(nil)
)
