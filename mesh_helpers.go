package strata

import "github.com/go-gl/mathgl/mgl32"

// NewQuad creates a w x h quad in the XY plane centred on the origin, facing +Z.
func NewQuad(w, h float32) *Mesh {
	hw, hh := w/2, h/2
	n := mgl32.Vec3{0, 0, 1}
	verts := []Vertex{
		{Position: mgl32.Vec3{-hw, -hh, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec3{hw, -hh, 0}, Normal: n, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{hw, hh, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{-hw, hh, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
	}
	return NewMesh(verts, []uint32{0, 1, 2, 0, 2, 3})
}

// cubeFaces lists each face's normal and the two axes spanning it, chosen so
// that u x v = normal and triangles wind counter-clockwise from outside.
var cubeFaces = [6]struct{ n, u, v mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// NewCube creates an axis-aligned cube of the given edge length centred on
// the origin, with per-face normals and UVs.
func NewCube(size float32) *Mesh {
	h := size / 2
	verts := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range cubeFaces {
		base := uint32(len(verts))
		for _, c := range corners {
			p := f.n.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(h)
			verts = append(verts, Vertex{
				Position: p,
				Normal:   f.n,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(verts, indices)
}

// NewPlane creates a w x d grid in the XZ plane facing +Y, subdivided into
// cols x rows cells.
func NewPlane(w, d float32, cols, rows int) *Mesh {
	cols = max(cols, 1)
	rows = max(rows, 1)
	verts := make([]Vertex, 0, (cols+1)*(rows+1))
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			u := float32(c) / float32(cols)
			v := float32(r) / float32(rows)
			verts = append(verts, Vertex{
				Position: mgl32.Vec3{(u - 0.5) * w, 0, (v - 0.5) * d},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{u, v},
			})
		}
	}
	indices := make([]uint32, 0, cols*rows*6)
	stride := uint32(cols + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := uint32(r)*stride + uint32(c)
			indices = append(indices, i, i+stride, i+1, i+1, i+stride, i+stride+1)
		}
	}
	return NewMesh(verts, indices)
}
