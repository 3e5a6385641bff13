// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Layout() LayoutConfig
	Viewport() ViewportConfig
	Batch() BatchConfig

	// Layout Setters
	SetLayoutCacheCapacity(int)
	SetLayoutIncremental(bool)
	SetLayoutViewportCulling(bool)
	SetLayoutUserAgentDefaults(bool)

	// Viewport Setters
	SetViewportSize(width, height float32)

	// Batch Setters
	SetBatchConcurrency(int)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	LayoutCfg   LayoutConfig   `mapstructure:"layout" yaml:"layout"`
	ViewportCfg ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	BatchCfg    BatchConfig    `mapstructure:"batch" yaml:"batch"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Layout() LayoutConfig     { return c.LayoutCfg }
func (c *Config) Viewport() ViewportConfig { return c.ViewportCfg }
func (c *Config) Batch() BatchConfig       { return c.BatchCfg }

// --- Interface Method Implementations (Setters) ---

// Layout Setters
func (c *Config) SetLayoutCacheCapacity(n int)      { c.LayoutCfg.CacheCapacity = n }
func (c *Config) SetLayoutIncremental(b bool)       { c.LayoutCfg.Incremental = b }
func (c *Config) SetLayoutViewportCulling(b bool)   { c.LayoutCfg.ViewportCulling = b }
func (c *Config) SetLayoutUserAgentDefaults(b bool) { c.LayoutCfg.UserAgentDefaults = b }

// Viewport Setters
func (c *Config) SetViewportSize(width, height float32) {
	c.ViewportCfg.Width = width
	c.ViewportCfg.Height = height
}

// Batch Setters
func (c *Config) SetBatchConcurrency(n int) { c.BatchCfg.Concurrency = n }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LayoutConfig tunes the layout engine.
type LayoutConfig struct {
	// CacheCapacity is the number of results kept before the oldest quarter
	// is evicted.
	CacheCapacity int `mapstructure:"cache_capacity" yaml:"cache_capacity"`
	// MaxNestingDepth and SecurityNodeMultiplier together bound the number
	// of nodes a single pass may register with the box solver.
	MaxNestingDepth        int  `mapstructure:"max_nesting_depth" yaml:"max_nesting_depth"`
	SecurityNodeMultiplier int  `mapstructure:"security_node_multiplier" yaml:"security_node_multiplier"`
	Incremental            bool `mapstructure:"incremental" yaml:"incremental"`
	ViewportCulling        bool `mapstructure:"viewport_culling" yaml:"viewport_culling"`
	UserAgentDefaults      bool `mapstructure:"user_agent_defaults" yaml:"user_agent_defaults"`
}

// NodeLimit is the largest node count a layout pass accepts.
func (l LayoutConfig) NodeLimit() int {
	return l.MaxNestingDepth * l.SecurityNodeMultiplier
}

// Validate checks the layout configuration.
func (l *LayoutConfig) Validate() error {
	if l.CacheCapacity <= 0 {
		return fmt.Errorf("layout.cache_capacity must be a positive integer")
	}
	if l.MaxNestingDepth <= 0 {
		return fmt.Errorf("layout.max_nesting_depth must be a positive integer")
	}
	if l.SecurityNodeMultiplier <= 0 {
		return fmt.Errorf("layout.security_node_multiplier must be a positive integer")
	}
	return nil
}

// ViewportConfig is the default viewport used by the CLI when no flags
// override it.
type ViewportConfig struct {
	Width            float32 `mapstructure:"width" yaml:"width"`
	Height           float32 `mapstructure:"height" yaml:"height"`
	RootFontSize     float32 `mapstructure:"root_font_size" yaml:"root_font_size"`
	Zoom             float32 `mapstructure:"zoom" yaml:"zoom"`
	DevicePixelRatio float32 `mapstructure:"device_pixel_ratio" yaml:"device_pixel_ratio"`
}

// Validate checks the viewport configuration.
func (v *ViewportConfig) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("viewport.width and viewport.height must be positive")
	}
	if v.RootFontSize < 0 || v.Zoom < 0 || v.DevicePixelRatio < 0 {
		return fmt.Errorf("viewport.root_font_size, viewport.zoom and viewport.device_pixel_ratio must not be negative")
	}
	return nil
}

// BatchConfig controls the concurrent batch command.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "stylebox")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Layout --
	v.SetDefault("layout.cache_capacity", 100)
	v.SetDefault("layout.max_nesting_depth", 100)
	v.SetDefault("layout.security_node_multiplier", 100)
	v.SetDefault("layout.incremental", true)
	v.SetDefault("layout.viewport_culling", true)
	v.SetDefault("layout.user_agent_defaults", true)

	// -- Viewport --
	v.SetDefault("viewport.width", 1280)
	v.SetDefault("viewport.height", 720)
	v.SetDefault("viewport.root_font_size", 16)
	v.SetDefault("viewport.zoom", 1)
	v.SetDefault("viewport.device_pixel_ratio", 1)

	// -- Batch --
	v.SetDefault("batch.concurrency", 4)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.LayoutCfg.Validate(); err != nil {
		return err
	}
	if err := c.ViewportCfg.Validate(); err != nil {
		return err
	}
	if c.BatchCfg.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be a positive integer")
	}
	return nil
}
