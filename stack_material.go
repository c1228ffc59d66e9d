package strata

import (
	"maps"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaterialStack merges nested materials. Combining copies the current
// property map and overwrites same-named keys with the pushed material's
// values. Nothing is sent to the device; shaders read properties through
// providers such as Vec3Of.
type MaterialStack struct {
	levels []map[string]any
	log    *zap.Logger
}

func newMaterialStack(rc *RenderContext) *MaterialStack {
	return &MaterialStack{
		levels: []map[string]any{{}},
		log:    rc.log,
	}
}

// Push overlays m onto the current properties.
func (s *MaterialStack) Push(m *Material) {
	if m == nil {
		s.log.Warn("material stack: push of nil material ignored")
		return
	}
	top := s.top()
	next := make(map[string]any, len(top)+m.Len())
	maps.Copy(next, top)
	for _, k := range m.keys {
		next[k] = m.props[k]
	}
	s.levels = append(s.levels, next)
}

// Pop restores the previous properties. Popping the base level is a no-op.
func (s *MaterialStack) Pop() {
	if len(s.levels) <= 1 {
		s.log.Warn("material stack: pop of base level ignored")
		return
	}
	s.levels[len(s.levels)-1] = nil
	s.levels = s.levels[:len(s.levels)-1]
}

// Depth returns the number of pushed levels above the base.
func (s *MaterialStack) Depth() int {
	return len(s.levels) - 1
}

// Reset discards every pushed level.
func (s *MaterialStack) Reset() {
	clear(s.levels[1:])
	s.levels = s.levels[:1]
}

func (s *MaterialStack) top() map[string]any {
	return s.levels[len(s.levels)-1]
}

// --- Typed getters ---

// Value returns the merged value of a property.
func (s *MaterialStack) Value(name string) (any, bool) {
	v, ok := s.top()[name]
	return v, ok
}

// Float returns a float property. float64 and int values are converted.
func (s *MaterialStack) Float(name string) (float32, bool) {
	switch v := s.top()[name].(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	}
	return 0, false
}

// Int returns an integer property.
func (s *MaterialStack) Int(name string) (int32, bool) {
	switch v := s.top()[name].(type) {
	case int32:
		return v, true
	case int:
		return int32(v), true
	}
	return 0, false
}

// Vec3 returns a vector property. A Color is converted to its RGB part.
func (s *MaterialStack) Vec3(name string) (mgl32.Vec3, bool) {
	switch v := s.top()[name].(type) {
	case mgl32.Vec3:
		return v, true
	case Color:
		return mgl32.Vec3{v.R, v.G, v.B}, true
	}
	return mgl32.Vec3{}, false
}

// Vec4 returns a vector property. A Color is converted.
func (s *MaterialStack) Vec4(name string) (mgl32.Vec4, bool) {
	switch v := s.top()[name].(type) {
	case mgl32.Vec4:
		return v, true
	case Color:
		return v.Vec4(), true
	}
	return mgl32.Vec4{}, false
}

// --- Providers ---

// FloatOf returns a provider reading name at call time; missing values read
// as zero.
func (s *MaterialStack) FloatOf(name string) func() float32 {
	return func() float32 {
		v, _ := s.Float(name)
		return v
	}
}

// Vec3Of returns a provider reading name at call time.
func (s *MaterialStack) Vec3Of(name string) func() mgl32.Vec3 {
	return func() mgl32.Vec3 {
		v, _ := s.Vec3(name)
		return v
	}
}

// Vec4Of returns a provider reading name at call time.
func (s *MaterialStack) Vec4Of(name string) func() mgl32.Vec4 {
	return func() mgl32.Vec4 {
		v, _ := s.Vec4(name)
		return v
	}
}
