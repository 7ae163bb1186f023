package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all Paint3D configuration.
type Config struct {
	Drawing DrawingConfig `yaml:"drawing"`
	Camera  CameraConfig  `yaml:"camera"`
	Storage StorageConfig `yaml:"storage"`
	Share   ShareConfig   `yaml:"share"`
	Logging LoggingConfig `yaml:"logging"`
}

// DrawingConfig configures stroke capture.
type DrawingConfig struct {
	MinPointDistance float64 `yaml:"min_point_distance"` // world units
	DefaultColor     string  `yaml:"default_color"`
	DefaultWidth     int     `yaml:"default_width"`
	MinWidth         int     `yaml:"min_width"`
	MaxWidth         int     `yaml:"max_width"`
	PlaneHeight      float64 `yaml:"plane_height"` // y of the drawing plane
}

// CameraConfig configures the orbit camera.
type CameraConfig struct {
	FOV         float64    `yaml:"fov"` // degrees
	Position    [3]float64 `yaml:"position,flow"`
	MinDistance float64    `yaml:"min_distance"`
	MaxDistance float64    `yaml:"max_distance"`
}

// StorageConfig selects where saved works live.
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
	Path    string `yaml:"path"`    // directory for file, database file for sqlite
	Key     string `yaml:"key"`
}

// ShareConfig configures live sharing.
type ShareConfig struct {
	Enabled   bool `yaml:"enabled"`
	Port      int  `yaml:"port"`
	Advertise bool `yaml:"advertise"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Drawing: DrawingConfig{
			MinPointDistance: 0.1,
			DefaultColor:     "#ff6b6b",
			DefaultWidth:     3,
			MinWidth:         1,
			MaxWidth:         10,
		},
		Camera: CameraConfig{
			FOV:         60,
			Position:    [3]float64{8, 8, 8},
			MinDistance: 3,
			MaxDistance: 30,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(DefaultDir(), "works"),
			Key:     "paint3d_works",
		},
		Share: ShareConfig{
			Port:      8888,
			Advertise: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultDir is ~/.paint3d, or .paint3d when there is no home directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paint3d"
	}
	return filepath.Join(home, ".paint3d")
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads configuration from path on top of the defaults. A missing file
// is not an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAINT3D_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("PAINT3D_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("PAINT3D_SHARE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Share.Port = port
		}
	}
	if v := os.Getenv("PAINT3D_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the program cannot use.
func (c *Config) Validate() error {
	var errs []error
	d := c.Drawing
	if d.MinPointDistance < 0 {
		errs = append(errs, fmt.Errorf("drawing.min_point_distance must not be negative"))
	}
	if d.MinWidth < 1 || d.MaxWidth < d.MinWidth {
		errs = append(errs, fmt.Errorf("drawing width bounds %d..%d are invalid", d.MinWidth, d.MaxWidth))
	}
	if d.DefaultWidth < d.MinWidth || d.DefaultWidth > d.MaxWidth {
		errs = append(errs, fmt.Errorf("drawing.default_width %d is outside %d..%d", d.DefaultWidth, d.MinWidth, d.MaxWidth))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov must be in (0, 180)"))
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		errs = append(errs, fmt.Errorf("camera distance bounds %.1f..%.1f are invalid", c.Camera.MinDistance, c.Camera.MaxDistance))
	}
	switch c.Storage.Backend {
	case "file", "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	if c.Share.Port < 0 || c.Share.Port > 65535 {
		errs = append(errs, fmt.Errorf("share.port %d out of range", c.Share.Port))
	}
	return errors.Join(errs...)
}
