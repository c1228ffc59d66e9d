package strata

import "github.com/go-gl/mathgl/mgl32"

// Vertex is one mesh vertex.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// meshIDCounter is a plain counter (no atomic: strata is single-threaded).
var meshIDCounter uint32

// Mesh is indexed triangle geometry. Backends key their uploaded buffers by
// ID, so call Invalidate after editing Vertices or Indices in place.
type Mesh struct {
	ID       uint32
	Vertices []Vertex
	Indices  []uint32

	version   uint32
	aabbMin   mgl32.Vec3
	aabbMax   mgl32.Vec3
	aabbDirty bool
}

// NewMesh creates a mesh from triangle-list vertices and indices.
func NewMesh(vertices []Vertex, indices []uint32) *Mesh {
	meshIDCounter++
	return &Mesh{
		ID:        meshIDCounter,
		Vertices:  vertices,
		Indices:   indices,
		aabbDirty: true,
	}
}

// Version increases every time the mesh is invalidated.
func (m *Mesh) Version() uint32 { return m.version }

// Invalidate marks the geometry changed so backends re-upload it.
func (m *Mesh) Invalidate() {
	m.version++
	m.aabbDirty = true
}

// Bounds returns the local-space axis-aligned bounding box.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if m.aabbDirty {
		m.recomputeBounds()
	}
	return m.aabbMin, m.aabbMax
}

func (m *Mesh) recomputeBounds() {
	m.aabbDirty = false
	if len(m.Vertices) == 0 {
		m.aabbMin, m.aabbMax = mgl32.Vec3{}, mgl32.Vec3{}
		return
	}
	lo := m.Vertices[0].Position
	hi := lo
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	m.aabbMin, m.aabbMax = lo, hi
}

// Draw issues the mesh with the current transform stack top as the model
// matrix. It makes *Mesh a Drawable.
func (m *Mesh) Draw(rc *RenderContext) {
	if len(m.Indices) == 0 {
		return
	}
	rc.Device.DrawMesh(m, DrawState{
		Model:          rc.Transforms.Top(),
		ViewProjection: rc.ViewProjection(),
	})
	rc.Stats.DrawCalls++
}
