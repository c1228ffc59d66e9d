package strata

import "fmt"

// Framebuffer is an offscreen render target with colour attachments and an
// optional depth buffer.
type Framebuffer struct {
	id     FramebufferID
	desc   FramebufferDesc
	dev    Device
	colors []*Texture
}

// NewFramebuffer creates a render target. Incomplete targets (no size, or
// neither colour nor depth attachments) fail with ErrFramebufferIncomplete.
func NewFramebuffer(rc *RenderContext, desc FramebufferDesc) (*Framebuffer, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("new framebuffer %dx%d: %w: empty size", desc.Width, desc.Height, ErrFramebufferIncomplete)
	}
	if desc.ColorAttachments < 0 || (desc.ColorAttachments == 0 && !desc.Depth) {
		return nil, fmt.Errorf("new framebuffer: %w: no attachments", ErrFramebufferIncomplete)
	}
	id, err := rc.Device.CreateFramebuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("new framebuffer: %w: %w", ErrFramebufferIncomplete, err)
	}
	fb := &Framebuffer{id: id, desc: desc, dev: rc.Device}
	for i := 0; i < desc.ColorAttachments; i++ {
		fb.colors = append(fb.colors, &Texture{
			id:     rc.Device.FramebufferTexture(id, i),
			target: Texture2D,
			width:  desc.Width,
			height: desc.Height,
			dev:    rc.Device,
		})
	}
	return fb, nil
}

// ID returns the device handle.
func (fb *Framebuffer) ID() FramebufferID { return fb.id }

// Size returns the target dimensions.
func (fb *Framebuffer) Size() (w, h int) { return fb.desc.Width, fb.desc.Height }

// ColorAttachments returns the number of colour attachments.
func (fb *Framebuffer) ColorAttachments() int { return fb.desc.ColorAttachments }

// HasDepth reports whether a depth buffer is attached.
func (fb *Framebuffer) HasDepth() bool { return fb.desc.Depth }

// ColorTexture returns attachment i as a texture for sampling, or nil.
func (fb *Framebuffer) ColorTexture(i int) *Texture {
	if i < 0 || i >= len(fb.colors) {
		return nil
	}
	return fb.colors[i]
}

// Release deletes the device framebuffer and its attachments.
func (fb *Framebuffer) Release() {
	if fb.id != 0 {
		fb.dev.DeleteFramebuffer(fb.id)
	}
	fb.id = 0
	fb.colors = nil
}
