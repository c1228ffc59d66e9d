package strata

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderSource is the source text of a program. Backends use the stages they
// understand: the OpenGL backend compiles Vertex and Fragment GLSL, the
// ebiten backend compiles Fragment as Kage and ignores Vertex.
type ShaderSource struct {
	Name     string
	Vertex   string
	Fragment string
}

// TextureDesc describes a 2D texture upload.
type TextureDesc struct {
	Image     image.Image
	Mipmaps   bool
	NearestUV bool // nearest-neighbour filtering instead of linear
}

// FramebufferDesc describes an offscreen render target.
type FramebufferDesc struct {
	Width, Height    int
	ColorAttachments int  // zero for a depth-only target
	Depth            bool // attach a depth buffer
}

// DrawState carries the matrices a backend may need to draw a mesh. Backends
// that run a vertex stage read matrices from uniforms instead.
type DrawState struct {
	Model          mgl32.Mat4
	ViewProjection mgl32.Mat4
}

// Device is the native graphics API boundary. strata issues bind, upload and
// draw calls through it and never talks to a driver directly. A Device is
// used from a single goroutine.
type Device interface {
	// Programs and uniforms.
	CreateProgram(src ShaderSource) (ProgramID, error)
	DeleteProgram(p ProgramID)
	UseProgram(p ProgramID)
	// UniformLocation returns -1 when the program has no such uniform.
	UniformLocation(p ProgramID, name string) int32
	ActiveUniforms(p ProgramID) []string
	Uniform1f(loc int32, v float32)
	Uniform1i(loc int32, v int32)
	Uniform2f(loc int32, v mgl32.Vec2)
	Uniform3f(loc int32, v mgl32.Vec3)
	Uniform4f(loc int32, v mgl32.Vec4)
	UniformMat3(loc int32, m mgl32.Mat3)
	UniformMat4(loc int32, m mgl32.Mat4)
	BindBlock(p ProgramID, kind BufferKind, block string, binding uint32)

	// Textures.
	CreateTexture(desc TextureDesc) (TextureID, error)
	CreateCubemap(faces [6]image.Image) (TextureID, error)
	DeleteTexture(t TextureID)
	// BindTexture binds t to unit; t == 0 unbinds the unit.
	BindTexture(unit int, target TextureTarget, t TextureID)

	// Framebuffers.
	CreateFramebuffer(desc FramebufferDesc) (FramebufferID, error)
	DeleteFramebuffer(fb FramebufferID)
	// FramebufferTexture returns the texture backing colour attachment i of
	// fb, or 0 when there is none.
	FramebufferTexture(fb FramebufferID, attachment int) TextureID
	BindFramebuffer(fb FramebufferID)
	Viewport(v Viewport)
	// DrawBuffers routes fragment outputs of fb to its first colorCount
	// attachments; zero disables colour output. The default framebuffer
	// always draws to the back buffer.
	DrawBuffers(fb FramebufferID, colorCount int)
	Clear(c Color, depth bool)

	// Buffers.
	CreateBuffer(kind BufferKind, size int) (BufferID, error)
	DeleteBuffer(b BufferID)
	BufferData(b BufferID, kind BufferKind, data []byte)
	BufferSubData(b BufferID, kind BufferKind, offset int, data []byte)
	BindBufferBase(kind BufferKind, binding uint32, b BufferID)

	// Fixed-function state.
	EnableClipDistance(index int, enabled bool)
	SetDepthFunc(f DepthFunc)

	// Drawing.
	DrawMesh(m *Mesh, state DrawState)

	// CheckError reports the first pending driver error, wrapped in
	// ErrDeviceError, or nil.
	CheckError() error
}
