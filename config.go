package strata

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the file-level configuration of an application built on strata.
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Render  RenderConfig  `toml:"render"`
	Logging LoggingConfig `toml:"logging"`
}

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
	VSync     bool   `toml:"vsync"`
}

type RenderConfig struct {
	LightCapacity int           `toml:"light_capacity"`
	ClearColor    [4]float32    `toml:"clear_color"`
	Debug         bool          `toml:"debug"`
	Step          time.Duration `toml:"step"`      // fixed simulation step
	MaxSteps      int           `toml:"max_steps"` // per frame, remainder dropped
	ShowStats     bool          `toml:"show_stats"`
	ScreenshotDir string        `toml:"screenshot_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// DefaultConfig returns the configuration used for keys a file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "strata",
			Width:     1280,
			Height:    720,
			Resizable: true,
			VSync:     true,
		},
		Render: RenderConfig{
			LightCapacity: MaxLights,
			ClearColor:    [4]float32{0.1, 0.1, 0.12, 1},
			Step:          time.Second / 60,
			MaxSteps:      5,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("parse config %s: unknown key %q", path, keys[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Render.LightCapacity < 0 || c.Render.LightCapacity > MaxLights {
		return fmt.Errorf("light_capacity %d not in [0, %d]", c.Render.LightCapacity, MaxLights)
	}
	if c.Render.Step <= 0 {
		return fmt.Errorf("step %v must be positive", c.Render.Step)
	}
	if c.Render.MaxSteps <= 0 {
		return fmt.Errorf("max_steps %d must be positive", c.Render.MaxSteps)
	}
	return nil
}

// ClearColor returns the render clear colour.
func (c *Config) ClearColor() Color {
	cc := c.Render.ClearColor
	return Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// ContextConfig returns the RenderContext settings with log attached.
func (c *Config) ContextConfig(log *zap.Logger) ContextConfig {
	return ContextConfig{
		Logger:        log,
		LightCapacity: c.Render.LightCapacity,
		Debug:         c.Render.Debug,
	}
}

// NewLogger builds a zap logger. Unknown levels fall back to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
