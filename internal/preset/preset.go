// Package preset reads and writes projector parameter files (YAML or TOML)
// and watches them for changes.
package preset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/projector-rig/internal/logger"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// ErrUnknownFormat is returned for files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown preset format")

// Format is a preset file encoding.
type Format int

// Preset formats.
const (
	YAML Format = iota + 1
	TOML
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Preset is a named set of projector parameters.
type Preset struct {
	Name      string                `yaml:"name" toml:"name"`
	Projector projection.Parameters `yaml:"projector" toml:"projector"`
	// CustomImage is the custom texture's image, relative to the preset file.
	CustomImage string `yaml:"custom_image,omitempty" toml:"custom_image,omitempty"`

	// Clamped lists the fields pulled back into range on load.
	Clamped []string `yaml:"-" toml:"-"`
	// Path is the file the preset was read from.
	Path string `yaml:"-" toml:"-"`
}

// New returns a preset holding the default parameters.
func New(name string) *Preset {
	return &Preset{Name: name, Projector: projection.DefaultParameters()}
}

// Load reads a preset. Fields missing from the file keep their defaults;
// out-of-range numbers are clamped with a warning.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading preset %s: %w", path, err)
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	p, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("loading preset %s: %w", path, err)
	}
	p.Path = path
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(p.Clamped) > 0 {
		logger.Named("preset").Warn("clamped out-of-range preset values",
			zap.String("path", path), zap.Strings("fields", p.Clamped))
	}
	return p, nil
}

// Decode parses preset data, clamps it and validates what clamping cannot
// repair (resolution and texture source).
func Decode(data []byte, format Format) (*Preset, error) {
	p := New("")
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, p)
	case TOML:
		err = toml.Unmarshal(data, p)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	p.Projector, p.Clamped = p.Projector.Clamp()
	if err := p.Projector.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode serializes the preset.
func (p *Preset) Encode(format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(p)
	case TOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
}

// Save writes the preset to path in the format its extension names.
func (p *Preset) Save(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := p.Encode(format)
	if err != nil {
		return fmt.Errorf("encoding preset: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating preset dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing preset: %w", err)
	}
	return nil
}

// ImagePath returns the custom image path resolved against the preset's
// directory, or "" when none is set.
func (p *Preset) ImagePath() string {
	if p.CustomImage == "" {
		return ""
	}
	if filepath.IsAbs(p.CustomImage) || p.Path == "" {
		return p.CustomImage
	}
	return filepath.Join(filepath.Dir(p.Path), p.CustomImage)
}
