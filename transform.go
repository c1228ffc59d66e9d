package strata

import "github.com/go-gl/mathgl/mgl32"

// Transform is a mutable 4x4 matrix with change notification.
//
// Compose operations (Translate, Rotate, Scale, Orthographic, Perspective,
// MulMatrix) are applied onto the current matrix: M = M * op. The Set*
// variants reset to identity first. Every mutation notifies subscribers.
type Transform struct {
	Subject
	m mgl32.Mat4
}

// NewTransform returns an identity transform.
func NewTransform() *Transform {
	return &Transform{m: mgl32.Ident4()}
}

// NewTransformFrom returns a transform holding m.
func NewTransformFrom(m mgl32.Mat4) *Transform {
	return &Transform{m: m}
}

// Matrix returns the current matrix.
func (t *Transform) Matrix() mgl32.Mat4 {
	return t.m
}

// Clone returns a copy of the matrix with no subscribers.
func (t *Transform) Clone() *Transform {
	return &Transform{m: t.m}
}

// --- Compose ---

// Translate applies a translation.
func (t *Transform) Translate(x, y, z float32) *Transform {
	return t.MulMatrix(mgl32.Translate3D(x, y, z))
}

// Rotate applies a rotation of deg degrees around axis. A zero axis is ignored.
func (t *Transform) Rotate(deg float32, axis mgl32.Vec3) *Transform {
	if axis.Len() == 0 {
		return t
	}
	return t.MulMatrix(mgl32.HomogRotate3D(mgl32.DegToRad(deg), axis.Normalize()))
}

// Scale applies a non-uniform scale.
func (t *Transform) Scale(x, y, z float32) *Transform {
	return t.MulMatrix(mgl32.Scale3D(x, y, z))
}

// Orthographic applies an orthographic projection.
func (t *Transform) Orthographic(left, right, bottom, top, near, far float32) *Transform {
	return t.MulMatrix(mgl32.Ortho(left, right, bottom, top, near, far))
}

// Perspective applies a perspective projection with a vertical field of view
// in degrees.
func (t *Transform) Perspective(fovYDeg, aspect, near, far float32) *Transform {
	return t.MulMatrix(mgl32.Perspective(mgl32.DegToRad(fovYDeg), aspect, near, far))
}

// MulMatrix post-multiplies m onto the transform.
func (t *Transform) MulMatrix(m mgl32.Mat4) *Transform {
	t.m = t.m.Mul4(m)
	t.Notify()
	return t
}

// --- Set ---

// Reset sets the matrix back to identity.
func (t *Transform) Reset() *Transform {
	return t.SetMatrix(mgl32.Ident4())
}

// SetMatrix replaces the matrix.
func (t *Transform) SetMatrix(m mgl32.Mat4) *Transform {
	t.m = m
	t.Notify()
	return t
}

// SetTranslation resets the matrix to a pure translation.
func (t *Transform) SetTranslation(x, y, z float32) *Transform {
	return t.SetMatrix(mgl32.Translate3D(x, y, z))
}

// SetRotation resets the matrix to a pure rotation.
func (t *Transform) SetRotation(deg float32, axis mgl32.Vec3) *Transform {
	if axis.Len() == 0 {
		return t.Reset()
	}
	return t.SetMatrix(mgl32.HomogRotate3D(mgl32.DegToRad(deg), axis.Normalize()))
}

// SetScale resets the matrix to a pure scale.
func (t *Transform) SetScale(x, y, z float32) *Transform {
	return t.SetMatrix(mgl32.Scale3D(x, y, z))
}

// SetOrthographic resets the matrix to an orthographic projection.
func (t *Transform) SetOrthographic(left, right, bottom, top, near, far float32) *Transform {
	return t.SetMatrix(mgl32.Ortho(left, right, bottom, top, near, far))
}

// SetPerspective resets the matrix to a perspective projection.
func (t *Transform) SetPerspective(fovYDeg, aspect, near, far float32) *Transform {
	return t.SetMatrix(mgl32.Perspective(mgl32.DegToRad(fovYDeg), aspect, near, far))
}

// SetLookAt resets the matrix to the camera-to-world placement of an eye at
// eye looking at center. Use it on a camera's transform; the camera's view
// matrix is the inverse.
func (t *Transform) SetLookAt(eye, center, up mgl32.Vec3) *Transform {
	return t.SetMatrix(mgl32.LookAtV(eye, center, up).Inv())
}

// --- Points ---

// TransformPoint applies the matrix to a point (w = 1).
func (t *Transform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, t.m)
}

// TransformDirection applies the matrix to a direction (w = 0).
func (t *Transform) TransformDirection(d mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformNormal(d, t.m)
}
