package strata

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaxLights is the number of slots in the "Lights" block.
const MaxLights = 16

// LightKind tags a Light and its packed slot. LightInactive marks an unused
// slot.
type LightKind int32

const (
	LightInactive LightKind = iota
	DirectionalLight
	PointLight
	SpotLight
)

func (k LightKind) String() string {
	switch k {
	case LightInactive:
		return "inactive"
	case DirectionalLight:
		return "directional"
	case PointLight:
		return "point"
	case SpotLight:
		return "spot"
	}
	return fmt.Sprintf("LightKind(%d)", int32(k))
}

// Phong holds the three Phong colour terms.
type Phong struct {
	Ambient, Diffuse, Specular mgl32.Vec3
}

// Attenuation is the constant, linear and quadratic distance falloff.
type Attenuation struct {
	Constant, Linear, Quadratic float32
}

// DefaultAttenuation reaches roughly 50 units.
var DefaultAttenuation = Attenuation{Constant: 1, Linear: 0.09, Quadratic: 0.032}

// Light describes a light in its node's local space. Which fields matter
// depends on Kind: directional lights use Direction, point lights use
// Position and Attenuation, spot lights use all of them plus CutoffDeg.
type Light struct {
	Kind LightKind
	Phong
	Direction   mgl32.Vec3
	Position    mgl32.Vec3
	Attenuation Attenuation
	CutoffDeg   float32
}

// NewDirectionalLight creates a light shining along dir.
func NewDirectionalLight(dir mgl32.Vec3, c Phong) Light {
	return Light{Kind: DirectionalLight, Phong: c, Direction: dir}
}

// NewPointLight creates a light radiating from pos.
func NewPointLight(pos mgl32.Vec3, att Attenuation, c Phong) Light {
	return Light{Kind: PointLight, Phong: c, Position: pos, Attenuation: att}
}

// NewSpotLight creates a cone of half-angle cutoffDeg from pos along dir.
func NewSpotLight(pos, dir mgl32.Vec3, att Attenuation, cutoffDeg float32, c Phong) Light {
	return Light{Kind: SpotLight, Phong: c, Position: pos, Direction: dir, Attenuation: att, CutoffDeg: cutoffDeg}
}

// GPULight is one packed slot of the "Lights" block. Attenuation carries
// the three falloff terms in XYZ and the cosine of the spot cutoff in W.
type GPULight struct {
	Kind        LightKind
	_           [3]int32
	Position    mgl32.Vec4
	Direction   mgl32.Vec4
	Ambient     mgl32.Vec4
	Diffuse     mgl32.Vec4
	Specular    mgl32.Vec4
	Attenuation mgl32.Vec4
}

// LightBlock is the layout of the "Lights" uniform block.
type LightBlock struct {
	Lights [MaxLights]GPULight
	Count  int32
	_      [3]int32
}

// packLight transforms l by world and packs it.
func packLight(l Light, world mgl32.Mat4) GPULight {
	g := GPULight{
		Kind:     l.Kind,
		Ambient:  l.Ambient.Vec4(1),
		Diffuse:  l.Diffuse.Vec4(1),
		Specular: l.Specular.Vec4(1),
	}
	direction := func() mgl32.Vec4 {
		d := world.Mul4x1(l.Direction.Vec4(0)).Vec3()
		if d.Len() > 0 {
			d = d.Normalize()
		}
		return d.Vec4(0)
	}
	att := mgl32.Vec4{l.Attenuation.Constant, l.Attenuation.Linear, l.Attenuation.Quadratic, 0}
	switch l.Kind {
	case DirectionalLight:
		g.Direction = direction()
	case PointLight:
		g.Position = world.Mul4x1(l.Position.Vec4(1))
		g.Attenuation = att
	case SpotLight:
		g.Position = world.Mul4x1(l.Position.Vec4(1))
		g.Direction = direction()
		att[3] = float32(cosDeg(l.CutoffDeg))
		g.Attenuation = att
	}
	return g
}

func cosDeg(deg float32) float64 {
	return math.Cos(float64(mgl32.DegToRad(deg)))
}

// --- Component ---

// LightComponent places a Light at its node. While it exists it is
// registered with the context's LightManager.
//
// The light is placed by its node's full world transform: the base, every
// ancestor's transforms and all of the node's own transform components,
// whatever their priority. When the node's last transform component is an
// ObservedTransformComponent, its cache covers that product, so the packed
// world-space values are cached and only recomputed after it notifies.
// Otherwise they are recomputed on every read.
type LightComponent struct {
	ComponentBase
	light Light
	mgr   *LightManager

	obsID   ObserverID
	tracked *ObservedTransformComponent
	packed  GPULight
	stale   bool
}

// NewLightComponent creates a light component and registers it with
// rc.Lights.
func NewLightComponent(rc *RenderContext, l Light) *LightComponent {
	c := &LightComponent{
		ComponentBase: newComponentBase(PriorityLight),
		light:         l,
		mgr:           rc.Lights,
		obsID:         NextObserverID(),
		stale:         true,
	}
	c.mgr.register(c)
	return c
}

// Light returns the local-space light.
func (c *LightComponent) Light() Light { return c.light }

// SetLight replaces the local-space light.
func (c *LightComponent) SetLight(l Light) {
	c.light = l
	c.stale = true
}

// ObserverID implements Observer.
func (c *LightComponent) ObserverID() ObserverID { return c.obsID }

// OnNotify implements Observer.
func (c *LightComponent) OnNotify(*Subject) { c.stale = true }

func (c *LightComponent) Apply(*RenderContext)   {}
func (c *LightComponent) Unapply(*RenderContext) {}

// WorldTransform returns the owning node's full world transform, or
// identity for a detached light.
func (c *LightComponent) WorldTransform() mgl32.Mat4 {
	if c.owner == nil {
		return mgl32.Ident4()
	}
	if t := c.trackedTransform(); t != nil {
		return t.WorldTransform()
	}
	return NodeWorldTransform(c.owner)
}

// GPU returns the light packed in world space.
func (c *LightComponent) GPU() GPULight {
	w := c.WorldTransform()
	if c.stale || c.tracked == nil {
		c.packed = packLight(c.light, w)
		c.stale = false
	}
	return c.packed
}

// trackedTransform returns the node's observed transform when it is the
// last transform component on the node, subscribing to it on first use.
func (c *LightComponent) trackedTransform() *ObservedTransformComponent {
	o := lastObserved(c.owner)
	if o != c.tracked {
		c.untrack()
		if o != nil {
			c.tracked = o
			o.Subscribe(c)
		}
	}
	return c.tracked
}

// lastObserved returns n's last transform component in application order
// if it is an ObservedTransformComponent.
func lastObserved(n *SceneNode) *ObservedTransformComponent {
	var last transformSource
	for _, c := range n.Payload.Sorted() {
		if ts, ok := c.(transformSource); ok {
			last = ts
		}
	}
	o, _ := last.(*ObservedTransformComponent)
	return o
}

func (c *LightComponent) untrack() {
	if c.tracked != nil {
		c.tracked.Unsubscribe(c.obsID)
		c.tracked = nil
	}
	c.stale = true
}

func (c *LightComponent) onDetach() { c.untrack() }

// Dispose unregisters the light.
func (c *LightComponent) Dispose() {
	c.untrack()
	c.mgr.unregister(c)
}

// CloneComponent creates and registers a copy of the light.
func (c *LightComponent) CloneComponent() Component {
	cp := &LightComponent{
		ComponentBase: c.copyBase(),
		light:         c.light,
		mgr:           c.mgr,
		obsID:         NextObserverID(),
		stale:         true,
	}
	c.mgr.register(cp)
	return cp
}

// --- Manager ---

// LightManager packs every registered light into the "Lights" block once
// per frame.
type LightManager struct {
	rc       *RenderContext
	capacity int
	lights   []*LightComponent
	block    LightBlock
	res      *StructResource[LightBlock]
	overflow int
}

func newLightManager(rc *RenderContext, capacity int) (*LightManager, error) {
	switch {
	case capacity <= 0:
		capacity = MaxLights
	case capacity > MaxLights:
		rc.log.Warn("light manager: capacity clamped", zap.Int("requested", capacity), zap.Int("max", MaxLights))
		capacity = MaxLights
	}
	res, err := NewStructResource[LightBlock](rc, LightsBlockName, UniformBuffer, LightsBinding, OnDemand)
	if err != nil {
		return nil, fmt.Errorf("new light manager: %w", err)
	}
	m := &LightManager{rc: rc, capacity: capacity, res: res}
	res.SetProvider(func() LightBlock { return m.block })
	if err := rc.Resources.Register(res); err != nil {
		return nil, fmt.Errorf("new light manager: %w", err)
	}
	return m, nil
}

// Capacity returns the number of slots filled at most.
func (m *LightManager) Capacity() int { return m.capacity }

// Len returns the number of registered lights.
func (m *LightManager) Len() int { return len(m.lights) }

// Block returns the block as packed by the last Apply.
func (m *LightManager) Block() LightBlock { return m.block }

// Apply packs registered lights in registration order and uploads the
// block. Lights beyond capacity are dropped with a warning.
func (m *LightManager) Apply() {
	m.block = LightBlock{}
	n := 0
	for _, c := range m.lights {
		if n == m.capacity {
			break
		}
		m.block.Lights[n] = c.GPU()
		n++
	}
	m.block.Count = int32(n)
	if over := len(m.lights) - n; over != m.overflow {
		m.overflow = over
		if over > 0 {
			m.rc.log.Warn("light manager: too many lights, extra lights ignored",
				zap.Int("registered", len(m.lights)), zap.Int("capacity", m.capacity))
		}
	}
	m.rc.Resources.Apply(LightsBlockName)
}

func (m *LightManager) register(c *LightComponent) {
	if !slices.Contains(m.lights, c) {
		m.lights = append(m.lights, c)
	}
}

func (m *LightManager) unregister(c *LightComponent) {
	m.lights = slices.DeleteFunc(m.lights, func(x *LightComponent) bool { return x == c })
}
