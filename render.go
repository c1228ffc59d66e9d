package strata

// RenderFrame renders one frame of g: it resets the per-frame counters and
// the default framebuffer, refreshes the active camera, packs and uploads
// the lights, applies the per-frame resources and draws the graph. Run the
// frame's simulation callbacks before calling it.
func RenderFrame(rc *RenderContext, g *SceneGraph) {
	rc.Stats.Reset()
	rc.Framebuffers.Reset()
	if rc.Camera != nil {
		rc.Camera.Refresh()
	}
	rc.Lights.Apply()
	rc.Resources.ApplyPerFrame()
	g.Draw(rc)
	if rc.debug {
		rc.debugCheckStacks()
		rc.debugLog()
	}
}

// CheckDevice reports a pending driver error at a development checkpoint.
func CheckDevice(rc *RenderContext) error {
	return rc.Device.CheckError()
}
