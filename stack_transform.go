package strata

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// TransformStack accumulates nested transforms. Level 0 is identity and can
// never be popped. Every push multiplies onto the current top; there is no
// GPU delta because matrices reach shaders through uniform providers.
type TransformStack struct {
	levels []mgl32.Mat4
	log    *zap.Logger
}

func newTransformStack(rc *RenderContext) *TransformStack {
	return &TransformStack{
		levels: []mgl32.Mat4{mgl32.Ident4()},
		log:    rc.log,
	}
}

// Push combines t with the top: top = top * t.
func (s *TransformStack) Push(t *Transform) {
	if t == nil {
		s.log.Warn("transform stack: push of nil transform ignored")
		return
	}
	s.PushMatrix(t.Matrix())
}

// PushMatrix combines m with the top: top = top * m.
func (s *TransformStack) PushMatrix(m mgl32.Mat4) {
	s.levels = append(s.levels, s.Top().Mul4(m))
}

// Pop restores the previous level. Popping the base level is a no-op.
func (s *TransformStack) Pop() {
	if len(s.levels) <= 1 {
		s.log.Warn("transform stack: pop of base level ignored")
		return
	}
	s.levels = s.levels[:len(s.levels)-1]
}

// Top returns the combined transform.
func (s *TransformStack) Top() mgl32.Mat4 {
	return s.levels[len(s.levels)-1]
}

// Depth returns the number of pushed levels above the base.
func (s *TransformStack) Depth() int {
	return len(s.levels) - 1
}

// Reset discards every pushed level.
func (s *TransformStack) Reset() {
	s.levels = s.levels[:1]
}
