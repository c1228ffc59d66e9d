package strata

import (
	"encoding/binary"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// ShaderResource is a global buffer (UBO or SSBO) shared by every shader
// through a named block and a binding point.
type ShaderResource interface {
	Name() string
	Kind() BufferKind
	Binding() uint32
	Mode() UpdateMode
	Buffer() BufferID
	// Apply evaluates the provider and uploads the result.
	Apply()
	Release()
}

// ByteRange is a dirty region of a resource's encoded bytes.
type ByteRange struct {
	Offset, Size int
}

// StructResource is a buffer holding one fixed-size struct T, encoded in
// little-endian byte order. Exactly one provider is active: SetProvider
// replaces the whole value on every Apply, SetPartialProvider mutates it in
// place and reports which bytes changed.
type StructResource[T any] struct {
	name    string
	kind    BufferKind
	binding uint32
	mode    UpdateMode

	id   BufferID
	data T
	buf  []byte
	rc   *RenderContext

	provider func() T
	partial  func(*T) ByteRange
}

// NewStructResource allocates a buffer sized for T. T must have a fixed
// binary size.
func NewStructResource[T any](rc *RenderContext, name string, kind BufferKind, binding uint32, mode UpdateMode) (*StructResource[T], error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("new resource %q: %w: %T has no fixed size", name, ErrBufferCreate, zero)
	}
	id, err := rc.Device.CreateBuffer(kind, size)
	if err != nil {
		return nil, fmt.Errorf("new resource %q: %w: %w", name, ErrBufferCreate, err)
	}
	return &StructResource[T]{
		name:    name,
		kind:    kind,
		binding: binding,
		mode:    mode,
		id:      id,
		buf:     make([]byte, size),
		rc:      rc,
	}, nil
}

func (r *StructResource[T]) Name() string     { return r.name }
func (r *StructResource[T]) Kind() BufferKind { return r.kind }
func (r *StructResource[T]) Binding() uint32  { return r.binding }
func (r *StructResource[T]) Mode() UpdateMode { return r.mode }
func (r *StructResource[T]) Buffer() BufferID { return r.id }

// Size returns the encoded size in bytes.
func (r *StructResource[T]) Size() int { return len(r.buf) }

// Data returns the last value uploaded or mutated.
func (r *StructResource[T]) Data() T { return r.data }

// Bytes returns the encoded value as last uploaded.
func (r *StructResource[T]) Bytes() []byte { return r.buf }

// SetProvider installs a full-value provider, clearing any partial one.
func (r *StructResource[T]) SetProvider(p func() T) {
	r.provider = p
	r.partial = nil
}

// SetPartialProvider installs an in-place provider, clearing any full one.
func (r *StructResource[T]) SetPartialProvider(p func(*T) ByteRange) {
	r.partial = p
	r.provider = nil
}

// Apply runs the active provider and uploads. An empty dirty range from a
// partial provider uploads nothing.
func (r *StructResource[T]) Apply() {
	if r.id == 0 {
		return
	}
	switch {
	case r.provider != nil:
		r.data = r.provider()
		if _, err := binary.Encode(r.buf, binary.LittleEndian, r.data); err != nil {
			r.rc.log.Warn("resource: encode failed", zap.String("resource", r.name), zap.Error(err))
			return
		}
		r.rc.Device.BufferData(r.id, r.kind, r.buf)
		r.rc.Stats.BufferUploads++
	case r.partial != nil:
		rng := r.partial(&r.data)
		if rng.Size <= 0 {
			return
		}
		if rng.Offset < 0 || rng.Offset+rng.Size > len(r.buf) {
			r.rc.log.Warn("resource: dirty range out of bounds",
				zap.String("resource", r.name), zap.Int("offset", rng.Offset), zap.Int("size", rng.Size))
			return
		}
		if _, err := binary.Encode(r.buf, binary.LittleEndian, r.data); err != nil {
			r.rc.log.Warn("resource: encode failed", zap.String("resource", r.name), zap.Error(err))
			return
		}
		r.rc.Device.BufferSubData(r.id, r.kind, rng.Offset, r.buf[rng.Offset:rng.Offset+rng.Size])
		r.rc.Stats.BufferUploads++
	}
}

// Release deletes the buffer.
func (r *StructResource[T]) Release() {
	if r.id != 0 {
		r.rc.Device.DeleteBuffer(r.id)
	}
	r.id = 0
}

// --- Manager ---

// ResourceManager indexes global resources by name and applies the
// PerFrame ones once per frame.
type ResourceManager struct {
	byName   map[string]ShaderResource
	perFrame []ShaderResource
	shaders  []*Shader
	rc       *RenderContext
}

func newResourceManager(rc *RenderContext) *ResourceManager {
	return &ResourceManager{
		byName: make(map[string]ShaderResource),
		rc:     rc,
	}
}

// Register installs res, binds its buffer to its binding point and its block
// to every live shader. A resource already registered under the same name is
// unregistered and released first.
func (m *ResourceManager) Register(res ShaderResource) error {
	if res == nil {
		return fmt.Errorf("register resource: %w", ErrNilResource)
	}
	name := res.Name()
	if old, ok := m.byName[name]; ok && old != res {
		m.rc.log.Debug("resource: replacing registration", zap.String("resource", name))
		m.Unregister(name)
	}
	m.byName[name] = res
	if res.Mode() == PerFrame && !slices.Contains(m.perFrame, res) {
		m.perFrame = append(m.perFrame, res)
	}
	m.rc.Device.BindBufferBase(res.Kind(), res.Binding(), res.Buffer())
	for _, s := range m.shaders {
		m.bindBlock(s, res)
	}
	return nil
}

// Unregister removes and releases the named resource and reports whether it
// was registered.
func (m *ResourceManager) Unregister(name string) bool {
	res, ok := m.byName[name]
	if !ok {
		return false
	}
	delete(m.byName, name)
	m.perFrame = slices.DeleteFunc(m.perFrame, func(r ShaderResource) bool { return r == res })
	res.Release()
	return true
}

// Lookup returns the named resource.
func (m *ResourceManager) Lookup(name string) (ShaderResource, bool) {
	res, ok := m.byName[name]
	return res, ok
}

// Len returns the number of registered resources.
func (m *ResourceManager) Len() int { return len(m.byName) }

// PerFrameLen returns the number of resources applied by ApplyPerFrame.
func (m *ResourceManager) PerFrameLen() int { return len(m.perFrame) }

// ApplyPerFrame applies every PerFrame resource in registration order.
func (m *ResourceManager) ApplyPerFrame() {
	for _, res := range m.perFrame {
		res.Apply()
	}
}

// Apply triggers a single resource, normally an OnDemand one.
func (m *ResourceManager) Apply(name string) {
	res, ok := m.byName[name]
	if !ok {
		m.rc.log.Warn("resource: apply of unknown resource", zap.String("resource", name))
		return
	}
	res.Apply()
}

// BindShader binds every registered block to s and remembers s so later
// registrations reach it too.
func (m *ResourceManager) BindShader(s *Shader) {
	if !slices.Contains(m.shaders, s) {
		m.shaders = append(m.shaders, s)
	}
	for _, name := range m.names() {
		m.bindBlock(s, m.byName[name])
	}
}

func (m *ResourceManager) unbindShader(s *Shader) {
	m.shaders = slices.DeleteFunc(m.shaders, func(x *Shader) bool { return x == s })
}

func (m *ResourceManager) bindBlock(s *Shader, res ShaderResource) {
	m.rc.Device.BindBlock(s.program, res.Kind(), res.Name(), res.Binding())
	s.blocks[res.Name()] = true
}

// Release releases every registered resource.
func (m *ResourceManager) Release() {
	for _, name := range m.names() {
		m.Unregister(name)
	}
	m.perFrame = nil
	m.shaders = nil
}

func (m *ResourceManager) names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
