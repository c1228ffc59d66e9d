package strata

import "github.com/go-gl/mathgl/mgl32"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorBlack is the default clear color.
var ColorBlack = Color{0, 0, 0, 1}

// ColorWhite is the neutral material tint.
var ColorWhite = Color{1, 1, 1, 1}

// Vec4 returns the color as an mgl32 vector, for uniform providers.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Viewport is a pixel rectangle inside a render target. The origin is the
// bottom-left corner, as in the native graphics API.
type Viewport struct {
	X, Y, Width, Height int
}

// ProgramID, TextureID, FramebufferID and BufferID are opaque handles issued
// by a Device. Zero is the "none" (or default) handle for every kind.
type (
	ProgramID     uint32
	TextureID     uint32
	FramebufferID uint32
	BufferID      uint32
)

// DefaultFramebuffer is the window's own framebuffer.
const DefaultFramebuffer FramebufferID = 0

// TextureTarget selects the binding target of a texture unit.
type TextureTarget uint8

const (
	Texture2D      TextureTarget = iota // ordinary 2D image
	TextureCubeMap                      // six-face cube map
)

// BufferKind selects the buffer binding space of a global shader resource.
type BufferKind uint8

const (
	UniformBuffer       BufferKind = iota // UBO, fixed-size block
	ShaderStorageBuffer                   // SSBO, variable-size block
)

// String returns the conventional short name of the buffer kind.
func (k BufferKind) String() string {
	if k == ShaderStorageBuffer {
		return "SSBO"
	}
	return "UBO"
}

// UpdateMode controls when the ResourceManager uploads a resource.
type UpdateMode uint8

const (
	PerFrame UpdateMode = iota // uploaded by ApplyPerFrame every frame
	OnDemand                   // uploaded only through ResourceManager.Apply
)

// DepthFunc selects the depth comparison.
type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

// WindowSizer reports the current size of the default framebuffer.
type WindowSizer interface {
	Size() (width, height int)
}

// WindowSizeFunc adapts a function to the WindowSizer interface.
type WindowSizeFunc func() (int, int)

// Size calls f.
func (f WindowSizeFunc) Size() (int, int) { return f() }

// FixedWindow is a WindowSizer of constant size.
type FixedWindow struct{ Width, Height int }

// Size returns the fixed dimensions.
func (w FixedWindow) Size() (int, int) { return w.Width, w.Height }
