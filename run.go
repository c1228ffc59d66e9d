package strata

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// UpdateFunc advances the simulation by one fixed step.
type UpdateFunc func(dt time.Duration) error

// SetupFunc builds the scene once the render context exists.
type SetupFunc func(rc *RenderContext) (*SceneGraph, error)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	Resizable     bool
	VSync         bool
	ClearColor    Color
	Step          time.Duration
	MaxSteps      int
	Context       ContextConfig
	OnUpdate      UpdateFunc

	// ShowStats draws frame rate and FrameStats over the scene.
	ShowStats bool
	// ScreenshotDir receives captures queued with EbitenDevice.Screenshot.
	// Defaults to "screenshots".
	ScreenshotDir string
	// Keys binds keys to built-in actions. Nil disables them.
	Keys map[ebiten.Key]KeyAction
}

// RunConfig returns the Run settings described by c.
func (c *Config) RunConfig(log *zap.Logger) RunConfig {
	return RunConfig{
		Title:      c.Window.Title,
		Width:      c.Window.Width,
		Height:     c.Window.Height,
		Resizable:  c.Window.Resizable,
		VSync:      c.Window.VSync,
		ClearColor: c.ClearColor(),
		Step:       c.Render.Step,
		MaxSteps:   c.Render.MaxSteps,
		Context:    c.ContextConfig(log),

		ShowStats:     c.Render.ShowStats,
		ScreenshotDir: c.Render.ScreenshotDir,
		Keys:          DefaultKeys(),
	}
}

// ErrQuit is returned by an UpdateFunc to end Run normally.
var ErrQuit = errors.New("strata: quit")

// game adapts a scene to ebiten.Game. Update runs the fixed-step simulation,
// Draw renders one frame to the screen.
type game struct {
	cfg   RunConfig
	dev   *EbitenDevice
	rc    *RenderContext
	scene *SceneGraph
	step  FixedStep
	last  time.Time
}

func (g *game) Update() error {
	now := time.Now()
	elapsed := now.Sub(g.last)
	g.last = now
	if g.handleKeys(justPressed) {
		return ebiten.Termination
	}
	return g.simulate(elapsed)
}

// simulate runs the fixed steps covering elapsed. ErrQuit from OnUpdate ends
// the game loop without an error.
func (g *game) simulate(elapsed time.Duration) error {
	if g.cfg.OnUpdate == nil {
		return nil
	}
	var err error
	g.step.Advance(elapsed, func(dt time.Duration) {
		if err == nil {
			err = g.cfg.OnUpdate(dt)
		}
	})
	if errors.Is(err, ErrQuit) {
		return ebiten.Termination
	}
	return err
}

func (g *game) Draw(screen *ebiten.Image) {
	g.dev.BeginFrame(screen)
	g.rc.Framebuffers.Reset()
	g.dev.Clear(g.cfg.ClearColor, true)
	RenderFrame(g.rc, g.scene)
	if err := CheckDevice(g.rc); err != nil {
		g.rc.log.Error("device error", zap.Error(err))
	}
	g.dev.flushScreenshots(g.cfg.ScreenshotDir)
	if g.cfg.ShowStats {
		drawStatsOverlay(screen, g.rc.Stats)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens a window and drives the scene built by setup until the window
// closes or OnUpdate returns ErrQuit.
func Run(cfg RunConfig, setup SetupFunc) error {
	if cfg.Step <= 0 {
		cfg.Step = time.Second / 60
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	log := cfg.Context.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dev := NewEbitenDevice(cfg.Width, cfg.Height, log)
	rc, err := NewRenderContext(dev, dev, cfg.Context)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer rc.Release()
	scene, err := setup(rc)
	if err != nil {
		return fmt.Errorf("run: setup: %w", err)
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetVsyncEnabled(cfg.VSync)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	g := &game{
		cfg:   cfg,
		dev:   dev,
		rc:    rc,
		scene: scene,
		step:  FixedStep{Step: cfg.Step, MaxSteps: cfg.MaxSteps},
		last:  time.Now(),
	}
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
