package strata

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for LoadTexture
	_ "image/png"
	"os"
)

// Texture is a device texture, either 2D or a cube map.
type Texture struct {
	id            TextureID
	target        TextureTarget
	width, height int
	dev           Device
	owned         bool // false for framebuffer attachments
}

// NewTexture uploads desc.Image as a 2D texture.
func NewTexture(rc *RenderContext, desc TextureDesc) (*Texture, error) {
	if desc.Image == nil {
		return nil, fmt.Errorf("new texture: %w: nil image", ErrTextureLoad)
	}
	id, err := rc.Device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("new texture: %w: %w", ErrTextureLoad, err)
	}
	b := desc.Image.Bounds()
	return &Texture{id: id, target: Texture2D, width: b.Dx(), height: b.Dy(), dev: rc.Device, owned: true}, nil
}

// NewCubemap uploads six square faces in +X, -X, +Y, -Y, +Z, -Z order.
func NewCubemap(rc *RenderContext, faces [6]image.Image) (*Texture, error) {
	var size image.Point
	for i, f := range faces {
		if f == nil {
			return nil, fmt.Errorf("new cubemap: %w: face %d is nil", ErrTextureLoad, i)
		}
		s := f.Bounds().Size()
		if s.X != s.Y {
			return nil, fmt.Errorf("new cubemap: %w: face %d is %dx%d, not square", ErrTextureLoad, i, s.X, s.Y)
		}
		if i == 0 {
			size = s
		} else if s != size {
			return nil, fmt.Errorf("new cubemap: %w: face %d size %v differs from %v", ErrTextureLoad, i, s, size)
		}
	}
	id, err := rc.Device.CreateCubemap(faces)
	if err != nil {
		return nil, fmt.Errorf("new cubemap: %w: %w", ErrTextureLoad, err)
	}
	return &Texture{id: id, target: TextureCubeMap, width: size.X, height: size.Y, dev: rc.Device, owned: true}, nil
}

// LoadTexture decodes a PNG or JPEG file and uploads it as a 2D texture.
func LoadTexture(rc *RenderContext, path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w: %w", path, ErrTextureLoad, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w: %w", path, ErrTextureLoad, err)
	}
	return NewTexture(rc, TextureDesc{Image: img, Mipmaps: true})
}

// ID returns the device handle.
func (t *Texture) ID() TextureID { return t.id }

// Target returns the binding target.
func (t *Texture) Target() TextureTarget { return t.target }

// Size returns the texture (or cube face) dimensions.
func (t *Texture) Size() (w, h int) { return t.width, t.height }

// Release deletes the device texture. Textures borrowed from a framebuffer
// are released with the framebuffer instead.
func (t *Texture) Release() {
	if t.owned && t.id != 0 {
		t.dev.DeleteTexture(t.id)
	}
	t.id = 0
}
