package strata

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Uniform and sampler names the skybox shader must declare.
const (
	SkyboxViewProjectionUniform = "uSkyboxViewProjection"
	SkyboxSamplerUniform        = "uSkybox"
)

// SkyboxComponent draws a cube map around the active camera. It binds its
// own shader and cube map, draws a unit cube with depth testing set to
// less-or-equal, and restores everything before returning. The
// view-projection it uses drops the camera translation so the sky stays at
// infinity.
type SkyboxComponent struct {
	ComponentBase
	Shader  *Shader
	Cubemap *Texture
	Unit    int
	mesh    *Mesh
}

// NewSkyboxComponent creates a skybox at PrioritySkybox sampling cube on
// unit through sh.
func NewSkyboxComponent(sh *Shader, cube *Texture, unit int) *SkyboxComponent {
	if sh != nil {
		sh.ConfigureSampler(SkyboxSamplerUniform, int32(unit))
		sh.MarkImmediate(SkyboxViewProjectionUniform)
	}
	return &SkyboxComponent{
		ComponentBase: newComponentBase(PrioritySkybox),
		Shader:        sh,
		Cubemap:       cube,
		Unit:          unit,
		mesh:          NewCube(2),
	}
}

// SkyboxViewProjection returns the camera's projection times its view with the
// translation removed.
func SkyboxViewProjection(cam *Camera) mgl32.Mat4 {
	if cam == nil {
		return mgl32.Ident4()
	}
	v := cam.View().Mat3().Mat4()
	return cam.Projection().Mul4(v)
}

func (c *SkyboxComponent) Apply(rc *RenderContext) {
	if c.Shader == nil || c.Cubemap == nil {
		warnNilPush(rc, "skybox", c)
		return
	}
	if c.Cubemap.Target() != TextureCubeMap {
		rc.log.Warn("skybox: texture is not a cube map", zap.Uint32("texture", uint32(c.Cubemap.ID())))
	}
	vp := SkyboxViewProjection(rc.Camera)
	d := rc.Device
	d.SetDepthFunc(DepthLessEqual)
	rc.Shaders.Push(c.Shader)
	rc.Textures.Push(TextureBinding{Unit: c.Unit, Texture: c.Cubemap})
	SetImmediate(c.Shader, SkyboxViewProjectionUniform, vp)
	d.DrawMesh(c.mesh, DrawState{Model: mgl32.Ident4(), ViewProjection: vp})
	rc.Stats.DrawCalls++
	rc.Textures.Pop()
	rc.Shaders.Pop()
	d.SetDepthFunc(DepthLess)
}

func (c *SkyboxComponent) Unapply(*RenderContext) {}

func (c *SkyboxComponent) CloneComponent() Component {
	cp := *c
	cp.ComponentBase = c.copyBase()
	return &cp
}
