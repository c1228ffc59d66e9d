package strata

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// --- Shader ---

// ShaderComponent makes a shader current for its node's subtree.
type ShaderComponent struct {
	ComponentBase
	Shader *Shader
	pushed bool
}

// NewShaderComponent creates a shader component at PriorityShader.
func NewShaderComponent(sh *Shader) *ShaderComponent {
	return &ShaderComponent{ComponentBase: newComponentBase(PriorityShader), Shader: sh}
}

func (c *ShaderComponent) Apply(rc *RenderContext) {
	if c.Shader == nil {
		warnNilPush(rc, "shader", c)
		return
	}
	rc.Shaders.Push(c.Shader)
	c.pushed = true
}

func (c *ShaderComponent) Unapply(rc *RenderContext) {
	if c.pushed {
		rc.Shaders.Pop()
		c.pushed = false
	}
}

func (c *ShaderComponent) CloneComponent() Component {
	return &ShaderComponent{ComponentBase: c.copyBase(), Shader: c.Shader}
}

// --- Texture ---

// TextureComponent binds a texture for its node's subtree, either to a fixed
// unit or to the unit the current shader configured for a sampler name.
type TextureComponent struct {
	ComponentBase
	Texture *Texture
	Unit    int
	// Sampler, when set, resolves the unit through the current shader's
	// ConfigureSampler registry at apply time.
	Sampler string
	pushed  bool
}

// NewTextureComponent binds tex to unit.
func NewTextureComponent(tex *Texture, unit int) *TextureComponent {
	return &TextureComponent{ComponentBase: newComponentBase(PriorityTexture), Texture: tex, Unit: unit}
}

// NewSamplerTextureComponent binds tex to the unit of the named sampler.
func NewSamplerTextureComponent(tex *Texture, sampler string) *TextureComponent {
	return &TextureComponent{ComponentBase: newComponentBase(PriorityTexture), Texture: tex, Sampler: sampler}
}

func (c *TextureComponent) unit(rc *RenderContext) int {
	if c.Sampler == "" {
		return c.Unit
	}
	sh := rc.Shaders.Current()
	if sh == nil {
		rc.log.Warn("texture component: no current shader for sampler, using unit 0", zap.String("sampler", c.Sampler))
		return 0
	}
	return int(sh.SamplerUnit(c.Sampler))
}

func (c *TextureComponent) Apply(rc *RenderContext) {
	if c.Texture == nil {
		warnNilPush(rc, "texture", c)
		return
	}
	rc.Textures.Push(TextureBinding{Unit: c.unit(rc), Texture: c.Texture})
	c.pushed = true
}

func (c *TextureComponent) Unapply(rc *RenderContext) {
	if c.pushed {
		rc.Textures.Pop()
		c.pushed = false
	}
}

func (c *TextureComponent) CloneComponent() Component {
	cp := *c
	cp.ComponentBase = c.copyBase()
	cp.pushed = false
	return &cp
}

// --- Cubemap ---

// CubemapComponent binds a cube map texture to a unit.
type CubemapComponent struct {
	TextureComponent
}

// NewCubemapComponent binds cube to unit. A texture that is not a cube map
// is still bound but logs a warning on apply.
func NewCubemapComponent(cube *Texture, unit int) *CubemapComponent {
	return &CubemapComponent{TextureComponent: *NewTextureComponent(cube, unit)}
}

func (c *CubemapComponent) Apply(rc *RenderContext) {
	if c.Texture != nil && c.Texture.Target() != TextureCubeMap {
		rc.log.Warn("cubemap component: texture is not a cube map", zap.Uint32("texture", uint32(c.Texture.ID())))
	}
	c.TextureComponent.Apply(rc)
}

func (c *CubemapComponent) CloneComponent() Component {
	return &CubemapComponent{TextureComponent: *c.TextureComponent.CloneComponent().(*TextureComponent)}
}

// --- Material ---

// MaterialComponent overlays a material for its node's subtree.
type MaterialComponent struct {
	ComponentBase
	Material *Material
	pushed   bool
}

// NewMaterialComponent creates a material component at PriorityMaterial.
func NewMaterialComponent(m *Material) *MaterialComponent {
	return &MaterialComponent{ComponentBase: newComponentBase(PriorityMaterial), Material: m}
}

func (c *MaterialComponent) Apply(rc *RenderContext) {
	if c.Material == nil {
		warnNilPush(rc, "material", c)
		return
	}
	rc.Materials.Push(c.Material)
	c.pushed = true
}

func (c *MaterialComponent) Unapply(rc *RenderContext) {
	if c.pushed {
		rc.Materials.Pop()
		c.pushed = false
	}
}

func (c *MaterialComponent) CloneComponent() Component {
	var m *Material
	if c.Material != nil {
		m = c.Material.Clone()
	}
	return &MaterialComponent{ComponentBase: c.copyBase(), Material: m}
}

// --- Geometry ---

// Drawable is anything a GeometryComponent can draw. *Mesh implements it.
type Drawable interface {
	Draw(rc *RenderContext)
}

// DrawFunc adapts a function to Drawable.
type DrawFunc func(rc *RenderContext)

func (f DrawFunc) Draw(rc *RenderContext) { f(rc) }

// GeometryComponent draws when applied, after all other state on its node.
type GeometryComponent struct {
	ComponentBase
	Drawable Drawable
}

// NewGeometryComponent creates a geometry component at PriorityGeometry.
func NewGeometryComponent(d Drawable) *GeometryComponent {
	return &GeometryComponent{ComponentBase: newComponentBase(PriorityGeometry), Drawable: d}
}

func (c *GeometryComponent) Apply(rc *RenderContext) {
	if c.Drawable != nil {
		c.Drawable.Draw(rc)
	}
}

func (c *GeometryComponent) Unapply(*RenderContext) {}

func (c *GeometryComponent) CloneComponent() Component {
	return &GeometryComponent{ComponentBase: c.copyBase(), Drawable: c.Drawable}
}

// --- Framebuffer ---

// FramebufferComponent renders its node's subtree into a framebuffer.
type FramebufferComponent struct {
	ComponentBase
	Framebuffer *Framebuffer
	// ClearColor, when non-nil, clears the target after binding it.
	ClearColor *Color
	ClearDepth bool
	pushed     bool
}

// NewFramebufferComponent creates a framebuffer component at
// PriorityFramebuffer.
func NewFramebufferComponent(fb *Framebuffer) *FramebufferComponent {
	return &FramebufferComponent{ComponentBase: newComponentBase(PriorityFramebuffer), Framebuffer: fb}
}

func (c *FramebufferComponent) Apply(rc *RenderContext) {
	if c.Framebuffer == nil {
		warnNilPush(rc, "framebuffer", c)
		return
	}
	rc.Framebuffers.Push(c.Framebuffer)
	c.pushed = true
	if c.ClearColor != nil {
		rc.Device.Clear(*c.ClearColor, c.ClearDepth)
	}
}

func (c *FramebufferComponent) Unapply(rc *RenderContext) {
	if c.pushed {
		rc.Framebuffers.Pop()
		c.pushed = false
	}
}

// CloneComponent copies the component. The copy renders into the same
// framebuffer.
func (c *FramebufferComponent) CloneComponent() Component {
	cp := *c
	cp.ComponentBase = c.copyBase()
	if c.ClearColor != nil {
		col := *c.ClearColor
		cp.ClearColor = &col
	}
	cp.pushed = false
	return &cp
}

// --- Clip plane ---

// ClipPlaneComponent enables a user clip distance for its node's subtree and
// writes the plane, transformed to world space, to an immediate uniform of
// the current shader.
type ClipPlaneComponent struct {
	ComponentBase
	Index   int
	Plane   mgl32.Vec4 // (a, b, c, d) in the node's space
	Uniform string
}

// NewClipPlaneComponent creates a clip plane component at PriorityClipPlane.
func NewClipPlaneComponent(index int, plane mgl32.Vec4, uniform string) *ClipPlaneComponent {
	return &ClipPlaneComponent{
		ComponentBase: newComponentBase(PriorityClipPlane),
		Index:         index,
		Plane:         plane,
		Uniform:       uniform,
	}
}

// WorldPlane transforms the plane by model: planes map by the inverse
// transpose.
func (c *ClipPlaneComponent) WorldPlane(model mgl32.Mat4) mgl32.Vec4 {
	return model.Inv().Transpose().Mul4x1(c.Plane)
}

func (c *ClipPlaneComponent) Apply(rc *RenderContext) {
	rc.Device.EnableClipDistance(c.Index, true)
	sh := rc.Shaders.Current()
	if sh == nil || c.Uniform == "" {
		return
	}
	sh.MarkImmediate(c.Uniform)
	SetImmediate(sh, c.Uniform, c.WorldPlane(rc.Transforms.Top()))
}

func (c *ClipPlaneComponent) Unapply(rc *RenderContext) {
	rc.Device.EnableClipDistance(c.Index, false)
}

func (c *ClipPlaneComponent) CloneComponent() Component {
	cp := *c
	cp.ComponentBase = c.copyBase()
	return &cp
}

// --- Variable ---

// VariableComponent assigns Value to *Target for its node's subtree and
// restores the previous value afterwards.
type VariableComponent[T any] struct {
	ComponentBase
	Target *T
	Value  T
	saved  T
}

// NewVariableComponent creates a variable component at PriorityVariable.
func NewVariableComponent[T any](target *T, value T) *VariableComponent[T] {
	return &VariableComponent[T]{
		ComponentBase: newComponentBase(PriorityVariable),
		Target:        target,
		Value:         value,
	}
}

func (c *VariableComponent[T]) Apply(*RenderContext) {
	if c.Target == nil {
		return
	}
	c.saved = *c.Target
	*c.Target = c.Value
}

func (c *VariableComponent[T]) Unapply(*RenderContext) {
	if c.Target == nil {
		return
	}
	*c.Target = c.saved
}

func (c *VariableComponent[T]) CloneComponent() Component {
	return &VariableComponent[T]{ComponentBase: c.copyBase(), Target: c.Target, Value: c.Value}
}
