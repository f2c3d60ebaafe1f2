// Package config handles projtool configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Config holds all tool settings.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Projector ProjectorConfig `yaml:"projector"`
	Preview   PreviewConfig   `yaml:"preview"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Watch     WatchConfig     `yaml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// ProjectorConfig holds the settings new projectors start from.
type ProjectorConfig struct {
	Defaults projection.Parameters `yaml:"defaults"`
	// RandomColor replaces Defaults.Color with a random hue per projector.
	RandomColor bool `yaml:"random_color"`
}

// PreviewConfig holds CPU preview rendering settings.
type PreviewConfig struct {
	MaxSize     int     `yaml:"max_size"`     // longest edge in pixels
	Format      string  `yaml:"format"`       // "webp" or "png"
	Margin      float64 `yaml:"margin"`       // extra border around the lit area, fraction of its size
	OutputDir   string  `yaml:"output_dir"`   // used when no output path is given
	ShowOutline bool    `yaml:"show_outline"` // draw the frustum outline rectangle
}

// BridgeConfig holds host bridge (WebSocket) settings.
type BridgeConfig struct {
	Listen       string        `yaml:"listen"`
	Path         string        `yaml:"path"`
	ReadLimit    int64         `yaml:"read_limit"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// WatchConfig holds preset watching settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Projector: ProjectorConfig{
			Defaults:    projection.DefaultParameters(),
			RandomColor: true,
		},
		Preview: PreviewConfig{
			MaxSize:     640,
			Format:      "webp",
			Margin:      0.1,
			OutputDir:   ".",
			ShowOutline: true,
		},
		Bridge: BridgeConfig{
			Listen:       "127.0.0.1:7341",
			Path:         "/ws",
			ReadLimit:    64 << 10,
			WriteTimeout: 5 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 150 * time.Millisecond,
		},
	}
}
