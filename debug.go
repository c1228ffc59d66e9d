package strata

import "go.uber.org/zap"

// FrameStats counts state changes and draws issued during one frame. The
// Skipped counters record calls the stacks elided because the state was
// already current.
type FrameStats struct {
	NodesVisited int

	ProgramBinds        int
	ProgramBindsSkipped int
	UniformUploads      int

	TextureBinds        int
	TextureUnbinds      int
	TextureBindsSkipped int

	FramebufferBinds        int
	FramebufferBindsSkipped int
	ViewportChanges         int

	BufferUploads int
	DrawCalls     int
}

// Reset zeroes all counters.
func (s *FrameStats) Reset() {
	*s = FrameStats{}
}

// debugLog writes the frame's stats at debug level.
func (rc *RenderContext) debugLog() {
	if !rc.debug {
		return
	}
	s := &rc.Stats
	rc.log.Debug("frame",
		zap.Int("nodes", s.NodesVisited),
		zap.Int("programBinds", s.ProgramBinds),
		zap.Int("programBindsSkipped", s.ProgramBindsSkipped),
		zap.Int("uniforms", s.UniformUploads),
		zap.Int("textureBinds", s.TextureBinds),
		zap.Int("textureUnbinds", s.TextureUnbinds),
		zap.Int("textureBindsSkipped", s.TextureBindsSkipped),
		zap.Int("framebufferBinds", s.FramebufferBinds),
		zap.Int("viewportChanges", s.ViewportChanges),
		zap.Int("bufferUploads", s.BufferUploads),
		zap.Int("drawCalls", s.DrawCalls),
	)
}

// debugCheckStacks warns when a stack is left unbalanced at frame end, which
// means some component pushed without popping.
func (rc *RenderContext) debugCheckStacks() {
	check := func(name string, depth int) {
		if depth != 0 {
			rc.log.Warn("stack unbalanced at frame end", zap.String("stack", name), zap.Int("depth", depth))
		}
	}
	check("transform", rc.Transforms.Depth())
	check("shader", rc.Shaders.Depth())
	check("texture", rc.Textures.Depth())
	check("material", rc.Materials.Depth())
	check("framebuffer", rc.Framebuffers.Depth())
}

// debugMaxTreeDepth is the depth above which AddNode warns in debug mode.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(log *zap.Logger, n *SceneNode) {
	if depth := n.Depth(); depth > debugMaxTreeDepth {
		log.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth), zap.String("node", n.Name))
	}
}

// debugMaxChildCount is the child count above which AddNode warns in debug mode.
const debugMaxChildCount = 1000

func debugCheckChildCount(log *zap.Logger, n *SceneNode) {
	if c := n.NumChildren(); c > debugMaxChildCount {
		log.Warn("child count exceeds threshold",
			zap.Int("children", c), zap.Int("threshold", debugMaxChildCount), zap.String("node", n.Name))
	}
}
