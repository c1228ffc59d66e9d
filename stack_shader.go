package strata

// ShaderStack tracks the active program. Combining replaces the top. The
// program is only switched when the top's program differs from the one last
// bound, and each switch applies the program's uniform providers.
type ShaderStack struct {
	levels []*Shader
	bound  ProgramID
	rc     *RenderContext
}

func newShaderStack(rc *RenderContext) *ShaderStack {
	return &ShaderStack{
		levels: []*Shader{nil},
		rc:     rc,
	}
}

// Push makes sh the active shader.
func (s *ShaderStack) Push(sh *Shader) {
	if sh == nil {
		s.rc.log.Warn("shader stack: push of nil shader ignored")
		return
	}
	s.levels = append(s.levels, sh)
	s.activate(sh)
}

// Pop restores the previous shader. Popping the base level is a no-op.
func (s *ShaderStack) Pop() {
	if len(s.levels) <= 1 {
		s.rc.log.Warn("shader stack: pop of base level ignored")
		return
	}
	s.levels[len(s.levels)-1] = nil
	s.levels = s.levels[:len(s.levels)-1]
	s.activate(s.Current())
}

// Current returns the active shader, or nil at the base level.
func (s *ShaderStack) Current() *Shader {
	return s.levels[len(s.levels)-1]
}

// Bound returns the program id last passed to UseProgram.
func (s *ShaderStack) Bound() ProgramID {
	return s.bound
}

// Depth returns the number of pushed levels above the base.
func (s *ShaderStack) Depth() int {
	return len(s.levels) - 1
}

// Invalidate forgets the bound program so the next push or pop re-binds.
// Call it after issuing UseProgram outside the stack.
func (s *ShaderStack) Invalidate() {
	s.bound = ^ProgramID(0)
}

func (s *ShaderStack) activate(sh *Shader) {
	var id ProgramID
	if sh != nil {
		id = sh.program
	}
	if id == s.bound {
		s.rc.Stats.ProgramBindsSkipped++
		return
	}
	s.rc.Device.UseProgram(id)
	s.bound = id
	s.rc.Stats.ProgramBinds++
	if sh != nil {
		sh.applyUniforms()
	}
}

// Reset discards every pushed level and unbinds the program.
func (s *ShaderStack) Reset() {
	clear(s.levels[1:])
	s.levels = s.levels[:1]
	s.activate(nil)
}
