package strata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Sampler is a texture unit index written to a sampler uniform.
type Sampler int32

// UniformValue is the set of types a uniform provider may return.
type UniformValue interface {
	float32 | int32 | Sampler | mgl32.Vec2 | mgl32.Vec3 | mgl32.Vec4 | mgl32.Mat3 | mgl32.Mat4
}

// uniform is one configured provider. loc is -1 when the program has no
// uniform of that name; the provider is kept but never uploaded.
type uniform struct {
	name  string
	loc   int32
	apply func(d Device, loc int32)
}

// Shader is a linked program plus its uniform configuration.
//
// Uniforms fall into four tiers. Global blocks (tier 1) are bound when the
// shader is created. Constant per-shader values such as samplers (tier 2) and
// per-draw values such as the model matrix (tier 3) are providers configured
// with ConfigureUniform and re-applied every time the program is activated.
// Immediate uniforms (tier 4) are written directly with SetImmediate by a
// component and must be exempted from validation with MarkImmediate.
type Shader struct {
	program ProgramID
	name    string
	rc      *RenderContext

	uniforms []*uniform
	byName   map[string]*uniform

	samplers  map[string]int32
	immediate map[string]int32 // name -> cached location
	blocks    map[string]bool
}

// NewShader compiles and links src and binds every registered global block.
func NewShader(rc *RenderContext, src ShaderSource) (*Shader, error) {
	p, err := rc.Device.CreateProgram(src)
	if err != nil {
		return nil, fmt.Errorf("new shader %q: %w", src.Name, err)
	}
	s := &Shader{
		program:   p,
		name:      src.Name,
		rc:        rc,
		byName:    make(map[string]*uniform),
		samplers:  make(map[string]int32),
		immediate: make(map[string]int32),
		blocks:    make(map[string]bool),
	}
	rc.Resources.BindShader(s)
	return s, nil
}

// Name returns the shader's source name.
func (s *Shader) Name() string { return s.name }

// Program returns the device program id.
func (s *Shader) Program() ProgramID { return s.program }

// ConfigureUniform installs provider for the named uniform. The location is
// resolved now; a missing uniform logs a warning but the provider is kept.
// Configuring a name again replaces its provider in place.
func ConfigureUniform[T UniformValue](s *Shader, name string, provider func() T) {
	if provider == nil {
		s.rc.log.Warn("shader: nil uniform provider ignored", zap.String("shader", s.name), zap.String("uniform", name))
		return
	}
	loc := s.rc.Device.UniformLocation(s.program, name)
	if loc < 0 {
		s.rc.log.Warn("shader: uniform not found", zap.String("shader", s.name), zap.String("uniform", name))
	}
	u := &uniform{
		name: name,
		loc:  loc,
		apply: func(d Device, loc int32) {
			uploadUniform(d, loc, provider())
		},
	}
	if old, ok := s.byName[name]; ok {
		*old = *u
		return
	}
	s.byName[name] = u
	s.uniforms = append(s.uniforms, u)
}

// ConfigureSampler binds the sampler uniform name to a constant texture unit
// and records it for SamplerUnit lookups.
func (s *Shader) ConfigureSampler(name string, unit int32) {
	s.samplers[name] = unit
	ConfigureUniform(s, name, func() Sampler { return Sampler(unit) })
}

// SamplerUnit returns the texture unit configured for a sampler. Unknown
// samplers log a warning and resolve to unit 0.
func (s *Shader) SamplerUnit(name string) int32 {
	unit, ok := s.samplers[name]
	if !ok {
		s.rc.log.Warn("shader: sampler not configured, using unit 0", zap.String("shader", s.name), zap.String("sampler", name))
		return 0
	}
	return unit
}

// MarkImmediate exempts names from ValidateUniforms. Components that write
// uniforms with SetImmediate call it when they are attached.
func (s *Shader) MarkImmediate(names ...string) {
	for _, n := range names {
		if _, ok := s.immediate[n]; !ok {
			s.immediate[n] = s.rc.Device.UniformLocation(s.program, n)
		}
	}
}

// SetImmediate writes v to the named uniform right away. The program must be
// the one currently bound.
func SetImmediate[T UniformValue](s *Shader, name string, v T) {
	if s.rc.Shaders.Bound() != s.program {
		s.rc.log.Warn("shader: immediate uniform set on inactive program", zap.String("shader", s.name), zap.String("uniform", name))
		return
	}
	loc, ok := s.immediate[name]
	if !ok {
		loc = s.rc.Device.UniformLocation(s.program, name)
		s.immediate[name] = loc
	}
	if loc < 0 {
		return
	}
	uploadUniform(s.rc.Device, loc, v)
	s.rc.Stats.UniformUploads++
}

// ValidateUniforms returns the program's active uniforms that have no
// provider, are not marked immediate and are not members of a bound global
// block. Each one is logged as a warning.
func (s *Shader) ValidateUniforms() []string {
	var missing []string
	for _, name := range s.rc.Device.ActiveUniforms(s.program) {
		base := strings.TrimSuffix(name, "[0]")
		if strings.Contains(base, ".") || strings.HasPrefix(base, "gl_") || s.blocks[base] {
			continue
		}
		if _, ok := s.byName[base]; ok {
			continue
		}
		if _, ok := s.immediate[base]; ok {
			continue
		}
		missing = append(missing, base)
	}
	slices.Sort(missing)
	for _, name := range missing {
		s.rc.log.Warn("shader: uniform has no provider", zap.String("shader", s.name), zap.String("uniform", name))
	}
	return missing
}

// Uniforms returns the configured uniform names in configuration order.
func (s *Shader) Uniforms() []string {
	names := make([]string, len(s.uniforms))
	for i, u := range s.uniforms {
		names[i] = u.name
	}
	return names
}

// applyUniforms evaluates every provider and uploads the result. Called by
// ShaderStack after UseProgram.
func (s *Shader) applyUniforms() {
	d := s.rc.Device
	for _, u := range s.uniforms {
		if u.loc < 0 {
			continue
		}
		u.apply(d, u.loc)
		s.rc.Stats.UniformUploads++
	}
}

// Release deletes the program.
func (s *Shader) Release() {
	if s.program == 0 {
		return
	}
	s.rc.Resources.unbindShader(s)
	s.rc.Device.DeleteProgram(s.program)
	s.program = 0
}

func uploadUniform[T UniformValue](d Device, loc int32, v T) {
	switch x := any(v).(type) {
	case float32:
		d.Uniform1f(loc, x)
	case int32:
		d.Uniform1i(loc, x)
	case Sampler:
		d.Uniform1i(loc, int32(x))
	case mgl32.Vec2:
		d.Uniform2f(loc, x)
	case mgl32.Vec3:
		d.Uniform3f(loc, x)
	case mgl32.Vec4:
		d.Uniform4f(loc, x)
	case mgl32.Mat3:
		d.UniformMat3(loc, x)
	case mgl32.Mat4:
		d.UniformMat4(loc, x)
	}
}
