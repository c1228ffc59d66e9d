package strata

import (
	"maps"
	"slices"

	"go.uber.org/zap"
)

// TextureBinding assigns a texture to a texture unit.
type TextureBinding struct {
	Unit    int
	Texture *Texture
}

// TextureStack tracks per-unit texture bindings. Combining overlays the
// pushed units onto the current map. After every push or pop the combined map
// is compared with what is bound, and only units whose texture changed are
// re-bound or unbound.
type TextureStack struct {
	levels []map[int]*Texture
	bound  map[int]*Texture
	rc     *RenderContext
}

func newTextureStack(rc *RenderContext) *TextureStack {
	return &TextureStack{
		levels: []map[int]*Texture{{}},
		bound:  make(map[int]*Texture),
		rc:     rc,
	}
}

// Push overlays bindings onto the current units.
func (s *TextureStack) Push(bindings ...TextureBinding) {
	if len(bindings) == 0 {
		s.rc.log.Warn("texture stack: empty push ignored")
		return
	}
	for _, b := range bindings {
		if b.Texture == nil {
			s.rc.log.Warn("texture stack: push of nil texture ignored", zap.Int("unit", b.Unit))
			return
		}
		if b.Unit < 0 {
			s.rc.log.Warn("texture stack: push to negative unit ignored", zap.Int("unit", b.Unit))
			return
		}
	}
	top := s.levels[len(s.levels)-1]
	next := make(map[int]*Texture, len(top)+len(bindings))
	maps.Copy(next, top)
	for _, b := range bindings {
		next[b.Unit] = b.Texture
	}
	s.levels = append(s.levels, next)
	s.sync(next)
}

// Pop restores the previous bindings. Popping the base level is a no-op.
func (s *TextureStack) Pop() {
	if len(s.levels) <= 1 {
		s.rc.log.Warn("texture stack: pop of base level ignored")
		return
	}
	s.levels[len(s.levels)-1] = nil
	s.levels = s.levels[:len(s.levels)-1]
	s.sync(s.levels[len(s.levels)-1])
}

// Current returns the texture the top level assigns to unit, or nil.
func (s *TextureStack) Current(unit int) *Texture {
	return s.levels[len(s.levels)-1][unit]
}

// Bound returns the texture currently bound on unit, or nil.
func (s *TextureStack) Bound(unit int) *Texture {
	return s.bound[unit]
}

// Depth returns the number of pushed levels above the base.
func (s *TextureStack) Depth() int {
	return len(s.levels) - 1
}

// sync applies the difference between want and the bound map. Units are
// visited in ascending order so the call sequence is deterministic.
func (s *TextureStack) sync(want map[int]*Texture) {
	d := s.rc.Device
	for _, unit := range slices.Sorted(maps.Keys(want)) {
		tex := want[unit]
		if cur, ok := s.bound[unit]; ok && cur.id == tex.id && cur.target == tex.target {
			s.rc.Stats.TextureBindsSkipped++
			continue
		}
		d.BindTexture(unit, tex.target, tex.id)
		s.bound[unit] = tex
		s.rc.Stats.TextureBinds++
	}
	for _, unit := range slices.Sorted(maps.Keys(s.bound)) {
		if _, ok := want[unit]; ok {
			continue
		}
		d.BindTexture(unit, s.bound[unit].target, 0)
		delete(s.bound, unit)
		s.rc.Stats.TextureUnbinds++
	}
}

// Reset discards every pushed level and unbinds all units.
func (s *TextureStack) Reset() {
	clear(s.levels[1:])
	s.levels = s.levels[:1]
	s.sync(s.levels[0])
}
