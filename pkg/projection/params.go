package projection

import "math"

// Parameter limits.
const (
	// MinPositive is the floor applied by Clamp to values that must stay > 0.
	MinPositive = 1e-4
	// MaxShiftPercent bounds the lens shift in either direction.
	MaxShiftPercent = 100.0
)

// RGB is a linear color with components in [0, 1].
type RGB struct {
	R float64 `yaml:"r" toml:"r" json:"r"`
	G float64 `yaml:"g" toml:"g" json:"g"`
	B float64 `yaml:"b" toml:"b" json:"b"`
}

// RGBA returns the color with an opaque alpha, as graph color sockets expect.
func (c RGB) RGBA() [4]float64 {
	return [4]float64{c.R, c.G, c.B, 1}
}

// Parameters are the user-facing projector settings.
type Parameters struct {
	ThrowRatio    float64 `yaml:"throw_ratio" toml:"throw_ratio" json:"throw_ratio"`
	FocusDistance float64 `yaml:"focus_distance" toml:"focus_distance" json:"focus_distance"`
	Power         float64 `yaml:"power" toml:"power" json:"power"`

	// Lens shift in percent of the image width/height.
	HShift float64 `yaml:"h_shift" toml:"h_shift" json:"h_shift"`
	VShift float64 `yaml:"v_shift" toml:"v_shift" json:"v_shift"`

	Resolution          Resolution    `yaml:"resolution" toml:"resolution" json:"resolution"`
	UseCustomTextureRes bool          `yaml:"use_custom_texture_res" toml:"use_custom_texture_res" json:"use_custom_texture_res"`
	Texture             TextureSource `yaml:"projected_texture" toml:"projected_texture" json:"projected_texture"`
	Color               RGB           `yaml:"projected_color" toml:"projected_color" json:"projected_color"`

	// Housing size in centimeters.
	ProjectorW float64 `yaml:"projector_w" toml:"projector_w" json:"projector_w"`
	ProjectorH float64 `yaml:"projector_h" toml:"projector_h" json:"projector_h"`
	ProjectorD float64 `yaml:"projector_d" toml:"projector_d" json:"projector_d"`

	ShowPixelGrid bool `yaml:"show_pixel_grid" toml:"show_pixel_grid" json:"show_pixel_grid"`
}

// DefaultParameters returns the settings of a freshly created projector.
// The projected color is white here; sessions pick a random one.
func DefaultParameters() Parameters {
	return Parameters{
		ThrowRatio:          1.0,
		FocusDistance:       1.0,
		Power:               100.0,
		Resolution:          DefaultResolution,
		UseCustomTextureRes: true,
		Texture:             Checker,
		Color:               RGB{1, 1, 1},
		ProjectorW:          52.0,
		ProjectorH:          14.0,
		ProjectorD:          48.0,
	}
}

// Validate checks every field and returns the first problem found.
func (p Parameters) Validate() error {
	checks := []error{
		requirePositive("throw_ratio", p.ThrowRatio),
		requirePositive("focus_distance", p.FocusDistance),
		requireFinite("power", p.Power),
		requireShift("h_shift", p.HShift),
		requireShift("v_shift", p.VShift),
		requirePositive("projector_w", p.ProjectorW),
		requirePositive("projector_h", p.ProjectorH),
		requirePositive("projector_d", p.ProjectorD),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if err := p.Resolution.Validate(); err != nil {
		return err
	}
	if !p.Texture.Valid() {
		return ErrUnknownTextureSource
	}
	return nil
}

// Clamp returns a copy with out-of-range numbers pulled back into range and
// the names of the fields it touched. Non-finite values become the defaults.
// Resolution and texture are not repaired.
func (p Parameters) Clamp() (Parameters, []string) {
	def := DefaultParameters()
	var touched []string

	positive := func(name string, v *float64, fallback float64) {
		switch {
		case math.IsNaN(*v) || math.IsInf(*v, 0):
			*v = fallback
		case *v < MinPositive:
			*v = MinPositive
		default:
			return
		}
		touched = append(touched, name)
	}
	shift := func(name string, v *float64) {
		switch {
		case math.IsNaN(*v) || math.IsInf(*v, 0):
			*v = 0
		case *v > MaxShiftPercent:
			*v = MaxShiftPercent
		case *v < -MaxShiftPercent:
			*v = -MaxShiftPercent
		default:
			return
		}
		touched = append(touched, name)
	}

	positive("throw_ratio", &p.ThrowRatio, def.ThrowRatio)
	positive("focus_distance", &p.FocusDistance, def.FocusDistance)
	positive("projector_w", &p.ProjectorW, def.ProjectorW)
	positive("projector_h", &p.ProjectorH, def.ProjectorH)
	positive("projector_d", &p.ProjectorD, def.ProjectorD)
	shift("h_shift", &p.HShift)
	shift("v_shift", &p.VShift)
	if math.IsNaN(p.Power) || math.IsInf(p.Power, 0) {
		p.Power = def.Power
		touched = append(touched, "power")
	}
	return p, touched
}
