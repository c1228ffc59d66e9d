package strata

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// litScene builds a camera, a light and one shaded, textured cube.
func litScene(t *testing.T, rc *RenderContext) (*SceneGraph, *Shader, *Camera) {
	t.Helper()
	g := NewSceneGraph(nil)

	camNode, _ := g.AddNode(nil, "camera")
	camXf := NewObservedTransformComponent()
	camXf.Transform().SetLookAt(mgl32.Vec3{0, 2, 6}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	camNode.Payload.Add(camXf)
	cam, err := NewCamera(rc, camXf, Perspective{FovY: 60, Near: 0.1, Far: 100})
	if err != nil {
		t.Fatal(err)
	}
	g.Root().Payload.Add(NewLightComponent(rc, NewDirectionalLight(mgl32.Vec3{0, -1, 0}, white)))

	sh := newTestShader(t, rc, "phong", "uModel", "uDiffuse", "uAlbedo")
	ConfigureUniform(sh, "uModel", rc.Transforms.Top)
	ConfigureUniform(sh, "uDiffuse", rc.Materials.Vec3Of("diffuse"))
	sh.ConfigureSampler("uAlbedo", 0)

	group, _ := g.AddNode(nil, "red")
	group.Payload.Add(NewMaterialComponent(NewMaterial("red").Set("diffuse", mgl32.Vec3{1, 0, 0})))
	cube, _ := g.AddNode(group, "cube")
	xf := NewTransformComponent()
	xf.Transform().Translate(1, 0, 0)
	cube.Payload.Add(xf)
	cube.Payload.Add(NewShaderComponent(sh))
	cube.Payload.Add(NewSamplerTextureComponent(newTestTexture(t, rc), "uAlbedo"))
	cube.Payload.Add(NewGeometryComponent(NewCube(1)))
	if err := cam.Activate(); err != nil {
		t.Fatal(err)
	}
	return g, sh, cam
}

func indexOf(calls []string, prefix string) int {
	return slices.IndexFunc(calls, func(c string) bool { return len(c) >= len(prefix) && c[:len(prefix)] == prefix })
}

func TestRenderFrame(t *testing.T) {
	rc, d, logs := newTestContext(t)
	g, sh, cam := litScene(t, rc)
	lights, _ := rc.Resources.Lookup(LightsBlockName)
	d.resetCalls()

	RenderFrame(rc, g)

	reset := indexOf(d.calls, "BindFramebuffer(0)")
	upload := indexOf(d.calls, fmt.Sprintf("BufferData(%d,", lights.Buffer()))
	draw := indexOf(d.calls, "DrawMesh")
	if reset != 0 || upload < reset || draw < upload {
		t.Errorf("call order: reset %d, light upload %d, draw %d in %v", reset, upload, draw, d.calls)
	}
	if len(d.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(d.draws))
	}
	dr := d.draws[0]
	if dr.program != sh.Program() {
		t.Errorf("drawn with program %d, want %d", dr.program, sh.Program())
	}
	if !matApprox(dr.state.Model, mgl32.Translate3D(1, 0, 0)) {
		t.Errorf("Model = %v", dr.state.Model)
	}
	if !matApprox(dr.state.ViewProjection, cam.ViewProjection()) {
		t.Error("draw not using the camera view-projection")
	}
	// The material is pushed by an ancestor, so the shader's providers see it.
	if got := d.uniform(sh.Program(), "uDiffuse"); got != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("uDiffuse = %v, want red", got)
	}
	if rc.Lights.Block().Count != 1 {
		t.Errorf("light count = %d, want 1", rc.Lights.Block().Count)
	}

	s := rc.Stats
	if s.DrawCalls != 1 || s.ProgramBinds != 2 || s.NodesVisited != 4 {
		t.Errorf("stats = %+v", s)
	}
	if rc.Transforms.Depth() != 0 || rc.Shaders.Depth() != 0 || rc.Textures.Depth() != 0 ||
		rc.Materials.Depth() != 0 || rc.Framebuffers.Depth() != 0 {
		t.Error("stacks unbalanced after frame")
	}
	if len(warnings(logs)) != 0 {
		t.Errorf("warnings = %v", warnings(logs))
	}
}

func TestRenderFrameResetsStats(t *testing.T) {
	rc, _, _ := newTestContext(t)
	g, _, _ := litScene(t, rc)
	RenderFrame(rc, g)
	first := rc.Stats
	// Lights upload every frame; the settled camera does not.
	if first.BufferUploads != 1 {
		t.Errorf("first frame BufferUploads = %d, want 1", first.BufferUploads)
	}
	RenderFrame(rc, g)
	if rc.Stats != first {
		t.Errorf("second frame stats = %+v, want %+v", rc.Stats, first)
	}
}

// leakyComponent pushes a transform and never pops it.
type leakyComponent struct{ ComponentBase }

func (c *leakyComponent) Apply(rc *RenderContext) { rc.Transforms.PushMatrix(mgl32.Ident4()) }
func (c *leakyComponent) Unapply(*RenderContext)  {}

func TestRenderFrameDebugUnbalanced(t *testing.T) {
	rc, _, logs := newTestContext(t)
	g := NewSceneGraph(nil)
	n, _ := g.AddNode(nil, "leak")
	n.Payload.Add(&leakyComponent{ComponentBase: newComponentBase(PriorityGeometry)})

	RenderFrame(rc, g)
	if hasWarning(logs, "stack unbalanced") {
		t.Error("balance checked outside debug mode")
	}
	rc.SetDebug(true)
	rc.Transforms.Reset()
	RenderFrame(rc, g)
	if !hasWarning(logs, "stack unbalanced at frame end") {
		t.Errorf("warnings = %v", warnings(logs))
	}
	frames := 0
	for _, e := range logs.All() {
		if e.Message == "frame" {
			frames++
		}
	}
	if frames != 1 {
		t.Errorf("frame debug logs = %d, want 1", frames)
	}
}

func TestCheckDevice(t *testing.T) {
	rc, d, _ := newTestContext(t)
	d.pendingErr = ErrDeviceError
	if err := CheckDevice(rc); !errors.Is(err, ErrDeviceError) {
		t.Errorf("CheckDevice = %v, want ErrDeviceError", err)
	}
	if err := CheckDevice(rc); err != nil {
		t.Errorf("second CheckDevice = %v, want nil", err)
	}
}

func TestNewRenderContextNilDevice(t *testing.T) {
	if _, err := NewRenderContext(nil, nil, ContextConfig{}); !errors.Is(err, ErrNilResource) {
		t.Errorf("err = %v, want ErrNilResource", err)
	}
}

func TestRenderContextsIndependent(t *testing.T) {
	a, _, _ := newTestContext(t)
	b, _, _ := newTestContext(t)
	a.Transforms.PushMatrix(mgl32.Translate3D(1, 0, 0))
	if b.Transforms.Depth() != 0 {
		t.Error("contexts share a transform stack")
	}
	if a.Lights == b.Lights || a.Resources == b.Resources {
		t.Error("contexts share managers")
	}
}
