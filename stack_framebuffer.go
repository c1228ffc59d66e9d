package strata

import "go.uber.org/zap"

// FramebufferStack tracks the active render target. Combining replaces the
// top. The framebuffer is only re-bound when its id changes and the viewport
// only when its size changes; draw buffers are reconfigured on every change
// so they always match the target's colour attachments. The base level is the
// window, whose size is re-queried whenever it becomes current again.
type FramebufferStack struct {
	levels   []*Framebuffer
	bound    FramebufferID
	viewport Viewport
	rc       *RenderContext
}

func newFramebufferStack(rc *RenderContext) *FramebufferStack {
	return &FramebufferStack{
		levels: []*Framebuffer{nil},
		rc:     rc,
	}
}

// Push makes fb the render target.
func (s *FramebufferStack) Push(fb *Framebuffer) {
	if fb == nil {
		s.rc.log.Warn("framebuffer stack: push of nil framebuffer ignored")
		return
	}
	s.levels = append(s.levels, fb)
	s.sync(fb)
}

// Pop restores the previous target. Popping the base level is a no-op.
func (s *FramebufferStack) Pop() {
	if len(s.levels) <= 1 {
		s.rc.log.Warn("framebuffer stack: pop of base level ignored")
		return
	}
	s.levels[len(s.levels)-1] = nil
	s.levels = s.levels[:len(s.levels)-1]
	s.sync(s.Current())
}

// Current returns the active framebuffer, or nil for the window.
func (s *FramebufferStack) Current() *Framebuffer {
	return s.levels[len(s.levels)-1]
}

// Viewport returns the viewport last set by the stack.
func (s *FramebufferStack) Viewport() Viewport {
	return s.viewport
}

// Depth returns the number of pushed levels above the base.
func (s *FramebufferStack) Depth() int {
	return len(s.levels) - 1
}

// Reset binds the window framebuffer and viewport unconditionally. Call it
// at the start of a frame, after the window may have been resized.
func (s *FramebufferStack) Reset() {
	for len(s.levels) > 1 {
		s.levels[len(s.levels)-1] = nil
		s.levels = s.levels[:len(s.levels)-1]
	}
	w, h := s.rc.Window.Size()
	d := s.rc.Device
	d.BindFramebuffer(DefaultFramebuffer)
	s.bound = DefaultFramebuffer
	s.viewport = Viewport{Width: w, Height: h}
	d.Viewport(s.viewport)
	d.DrawBuffers(DefaultFramebuffer, 1)
}

func (s *FramebufferStack) sync(fb *Framebuffer) {
	d := s.rc.Device
	id := DefaultFramebuffer
	colors := 1
	var w, h int
	if fb != nil {
		id = fb.id
		colors = fb.desc.ColorAttachments
		w, h = fb.Size()
	} else {
		w, h = s.rc.Window.Size()
	}

	if id != s.bound {
		d.BindFramebuffer(id)
		s.bound = id
		s.rc.Stats.FramebufferBinds++
	} else {
		s.rc.Stats.FramebufferBindsSkipped++
	}

	vp := Viewport{Width: w, Height: h}
	if vp != s.viewport {
		d.Viewport(vp)
		s.viewport = vp
		s.rc.Stats.ViewportChanges++
	}

	d.DrawBuffers(id, colors)
	if s.rc.debug {
		s.rc.log.Debug("framebuffer stack: target", zap.Uint32("id", uint32(id)), zap.Int("colors", colors))
	}
}
