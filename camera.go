package strata

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Global block names and binding points used by the built-in resources.
const (
	CameraBlockName        = "Camera"
	CameraBinding   uint32 = 0
	LightsBlockName        = "Lights"
	LightsBinding   uint32 = 1
)

// --- Capabilities ---

// HasWorldTransform is implemented by anything placed in the world.
type HasWorldTransform interface {
	WorldTransform() mgl32.Mat4
}

// ProvidesView is implemented by anything that can act as a viewpoint.
type ProvidesView interface {
	View() mgl32.Mat4
}

// ProvidesProjection builds a projection for a viewport aspect ratio.
type ProvidesProjection interface {
	Projection(aspect float32) mgl32.Mat4
}

// TrackedTransform is a world transform that notifies subscribers when it is
// recomputed. *ObservedTransformComponent implements it.
type TrackedTransform interface {
	HasWorldTransform
	Subscribe(o Observer)
	Unsubscribe(id ObserverID) bool
}

// --- Projections ---

// Perspective is a perspective projection with a vertical field of view in
// degrees.
type Perspective struct {
	FovY, Near, Far float32
}

func (p Perspective) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(p.FovY), aspect, p.Near, p.Far)
}

// Orthographic is a centred orthographic projection Height units tall; the
// width follows the aspect ratio.
type Orthographic struct {
	Height, Near, Far float32
}

func (o Orthographic) Projection(aspect float32) mgl32.Mat4 {
	hh := o.Height / 2
	hw := hh * aspect
	return mgl32.Ortho(-hw, hw, -hh, hh, o.Near, o.Far)
}

// CameraBlock is the layout of the "Camera" uniform block.
type CameraBlock struct {
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4
	Position       mgl32.Vec4
}

// --- Camera ---

// Camera views the scene from a tracked world transform. Its view is the
// inverse of that transform and is refreshed when the transform notifies.
// An active camera keeps the "Camera" block current and supplies the
// view-projection for draws.
type Camera struct {
	rc     *RenderContext
	source TrackedTransform
	proj   ProvidesProjection

	obsID     ObserverID
	view      mgl32.Mat4
	viewStale bool
	aspect    float32

	block *StructResource[CameraBlock]
}

// NewCamera creates a camera following source.
func NewCamera(rc *RenderContext, source TrackedTransform, proj ProvidesProjection) (*Camera, error) {
	if source == nil || proj == nil {
		return nil, fmt.Errorf("new camera: %w", ErrNilResource)
	}
	block, err := NewStructResource[CameraBlock](rc, CameraBlockName, UniformBuffer, CameraBinding, OnDemand)
	if err != nil {
		return nil, fmt.Errorf("new camera: %w", err)
	}
	c := &Camera{
		rc:        rc,
		source:    source,
		proj:      proj,
		obsID:     NextObserverID(),
		view:      mgl32.Ident4(),
		viewStale: true,
		block:     block,
	}
	block.SetProvider(c.Block)
	source.Subscribe(c)
	return c, nil
}

// ObserverID implements Observer.
func (c *Camera) ObserverID() ObserverID { return c.obsID }

// OnNotify implements Observer. The active camera re-uploads its block.
func (c *Camera) OnNotify(*Subject) {
	c.viewStale = true
	if c.Active() {
		c.rc.Resources.Apply(CameraBlockName)
	}
}

// Active reports whether c is the context's current camera.
func (c *Camera) Active() bool { return c.rc.Camera == c }

// Activate makes c the context's camera and installs its block.
func (c *Camera) Activate() error {
	if c.block.Buffer() == 0 {
		// Released when another camera replaced it.
		block, err := NewStructResource[CameraBlock](c.rc, CameraBlockName, UniformBuffer, CameraBinding, OnDemand)
		if err != nil {
			return fmt.Errorf("activate camera: %w", err)
		}
		block.SetProvider(c.Block)
		c.block = block
	}
	if err := c.rc.Resources.Register(c.block); err != nil {
		return fmt.Errorf("activate camera: %w", err)
	}
	// Settle the source while inactive so its notification does not upload.
	c.View()
	c.rc.Camera = c
	c.aspect = c.currentAspect()
	c.block.Apply()
	return nil
}

// SetProjection replaces the projection.
func (c *Camera) SetProjection(p ProvidesProjection) {
	if p == nil {
		return
	}
	c.proj = p
	if c.Active() {
		c.block.Apply()
	}
}

// WorldTransform returns the tracked transform.
func (c *Camera) WorldTransform() mgl32.Mat4 {
	return c.source.WorldTransform()
}

// View returns the inverse of the tracked world transform.
func (c *Camera) View() mgl32.Mat4 {
	w := c.source.WorldTransform()
	if c.viewStale {
		c.view = w.Inv()
		c.viewStale = false
	}
	return c.view
}

// Projection returns the projection for the current viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	return c.proj.Projection(c.currentAspect())
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Position returns the camera's world position.
func (c *Camera) Position() mgl32.Vec3 {
	return c.source.WorldTransform().Col(3).Vec3()
}

// Block returns the current contents of the camera block.
func (c *Camera) Block() CameraBlock {
	v, p := c.View(), c.Projection()
	return CameraBlock{
		View:           v,
		Projection:     p,
		ViewProjection: p.Mul4(v),
		Position:       c.Position().Vec4(1),
	}
}

// Refresh re-uploads the block if the viewport aspect changed since the last
// upload. RenderFrame calls it once per frame.
func (c *Camera) Refresh() {
	if !c.Active() {
		return
	}
	if a := c.currentAspect(); a != c.aspect {
		c.aspect = a
		c.block.Apply()
	}
}

// WorldToScreen projects a world point to window coordinates. Z is the
// depth in [0, 1].
func (c *Camera) WorldToScreen(p mgl32.Vec3) mgl32.Vec3 {
	vp := c.viewport()
	return mgl32.Project(p, c.View(), c.Projection(), vp.X, vp.Y, vp.Width, vp.Height)
}

// ScreenToWorld unprojects window coordinates at depth z in [0, 1].
func (c *Camera) ScreenToWorld(x, y, z float32) (mgl32.Vec3, error) {
	vp := c.viewport()
	return mgl32.UnProject(mgl32.Vec3{x, y, z}, c.View(), c.Projection(), vp.X, vp.Y, vp.Width, vp.Height)
}

// Release stops tracking and deactivates the camera.
func (c *Camera) Release() {
	c.source.Unsubscribe(c.obsID)
	if c.Active() {
		c.rc.Resources.Unregister(CameraBlockName)
		c.rc.Camera = nil
	} else {
		c.block.Release()
	}
}

func (c *Camera) viewport() Viewport {
	vp := c.rc.Framebuffers.Viewport()
	if vp.Width > 0 && vp.Height > 0 {
		return vp
	}
	w, h := c.rc.Window.Size()
	return Viewport{Width: w, Height: h}
}

func (c *Camera) currentAspect() float32 {
	vp := c.viewport()
	if vp.Width <= 0 || vp.Height <= 0 {
		return 1
	}
	return float32(vp.Width) / float32(vp.Height)
}
