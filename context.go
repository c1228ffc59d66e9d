package strata

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ContextConfig configures a RenderContext.
type ContextConfig struct {
	// Logger receives warnings and debug output. Nil means no logging.
	Logger *zap.Logger
	// LightCapacity is the number of light slots LightManager fills.
	// Zero means MaxLights; values above MaxLights are clamped.
	LightCapacity int
	// Debug enables tree sanity warnings and per-frame stats logging.
	Debug bool
}

// RenderContext is the render state threaded through traversal. It owns one
// instance of every state stack and global manager, so independent contexts
// never share state. A RenderContext is not safe for concurrent use.
type RenderContext struct {
	Device Device
	Window WindowSizer

	Transforms   *TransformStack
	Shaders      *ShaderStack
	Textures     *TextureStack
	Materials    *MaterialStack
	Framebuffers *FramebufferStack

	Resources *ResourceManager
	Lights    *LightManager

	// Camera is the active camera used for draws; nil means identity
	// view-projection.
	Camera *Camera

	// Stats accumulates call counts for the current frame.
	Stats FrameStats

	log   *zap.Logger
	debug bool
}

// NewRenderContext creates a context bound to d. win reports the default
// framebuffer size; when nil and d implements WindowSizer, d is used.
func NewRenderContext(d Device, win WindowSizer, cfg ContextConfig) (*RenderContext, error) {
	if d == nil {
		return nil, fmt.Errorf("new render context: %w", ErrNilResource)
	}
	if win == nil {
		if ws, ok := d.(WindowSizer); ok {
			win = ws
		} else {
			win = FixedWindow{}
		}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rc := &RenderContext{
		Device: d,
		Window: win,
		log:    log,
		debug:  cfg.Debug,
	}
	rc.Transforms = newTransformStack(rc)
	rc.Shaders = newShaderStack(rc)
	rc.Textures = newTextureStack(rc)
	rc.Materials = newMaterialStack(rc)
	rc.Framebuffers = newFramebufferStack(rc)
	rc.Resources = newResourceManager(rc)

	lights, err := newLightManager(rc, cfg.LightCapacity)
	if err != nil {
		return nil, fmt.Errorf("new render context: %w", err)
	}
	rc.Lights = lights
	return rc, nil
}

// Logger returns the context's logger.
func (rc *RenderContext) Logger() *zap.Logger {
	return rc.log
}

// Debug reports whether debug mode is enabled.
func (rc *RenderContext) Debug() bool {
	return rc.debug
}

// SetDebug enables or disables debug mode.
func (rc *RenderContext) SetDebug(enabled bool) {
	rc.debug = enabled
}

// ViewProjection returns the active camera's view-projection matrix, or
// identity without a camera.
func (rc *RenderContext) ViewProjection() mgl32.Mat4 {
	if rc.Camera == nil {
		return mgl32.Ident4()
	}
	return rc.Camera.ViewProjection()
}

// Release frees every global resource owned by the context.
func (rc *RenderContext) Release() {
	rc.Resources.Release()
}
