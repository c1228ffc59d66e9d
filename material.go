package strata

import "github.com/go-gl/mathgl/mgl32"

// Well-known material property names used by the Phong helpers and the
// example shaders.
const (
	MatAmbient   = "ambient"
	MatDiffuse   = "diffuse"
	MatSpecular  = "specular"
	MatShininess = "shininess"
	MatColor     = "color"
)

// Material is a named bag of properties. Values are read through the
// MaterialStack's typed getters, so any type a provider can use is allowed.
type Material struct {
	Name  string
	props map[string]any
	keys  []string // insertion order
}

// NewMaterial returns an empty material.
func NewMaterial(name string) *Material {
	return &Material{Name: name, props: make(map[string]any)}
}

// NewPhongMaterial returns a material with the four Phong properties set.
func NewPhongMaterial(name string, ambient, diffuse, specular mgl32.Vec3, shininess float32) *Material {
	return NewMaterial(name).
		Set(MatAmbient, ambient).
		Set(MatDiffuse, diffuse).
		Set(MatSpecular, specular).
		Set(MatShininess, shininess)
}

// Set assigns a property and returns m for chaining.
func (m *Material) Set(key string, value any) *Material {
	if _, ok := m.props[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.props[key] = value
	return m
}

// Get returns a property.
func (m *Material) Get(key string) (any, bool) {
	v, ok := m.props[key]
	return v, ok
}

// Keys returns property names in insertion order.
func (m *Material) Keys() []string {
	return m.keys
}

// Len returns the number of properties.
func (m *Material) Len() int {
	return len(m.keys)
}

// Clone returns a shallow copy of the property set.
func (m *Material) Clone() *Material {
	c := NewMaterial(m.Name)
	for _, k := range m.keys {
		c.Set(k, m.props[k])
	}
	return c
}
