package projector

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Field names accepted by Apply. They match the parameter keys used in
// presets and on the wire.
const (
	FieldThrowRatio          = "throw_ratio"
	FieldFocusDistance       = "focus_distance"
	FieldHShift              = "h_shift"
	FieldVShift              = "v_shift"
	FieldLensShift           = "lens_shift" // value: {"h": .., "v": ..}
	FieldResolution          = "resolution"
	FieldTexture             = "projected_texture"
	FieldUseCustomTextureRes = "use_custom_texture_res"
	FieldCustomImage         = "custom_image" // value: {"width": .., "height": ..} or null
	FieldColor               = "projected_color"
	FieldRandomColor         = "random_color" // no value
	FieldPower               = "power"
	FieldProjectorW          = "projector_w"
	FieldProjectorH          = "projector_h"
	FieldProjectorD          = "projector_d"
	FieldShowPixelGrid       = "show_pixel_grid"
	FieldProjectionWidth     = "projection_width"
	FieldProjectionHeight    = "projection_height"
	FieldProjectionDiagonal  = "projection_diagonal"
	FieldParameters          = "parameters" // value: full parameter object
)

// ErrUnknownField is returned by Apply for unsupported field names.
var ErrUnknownField = errors.New("unknown field")

// Change is a parameter-change event from the host.
type Change struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value,omitempty"`
	// CustomImage, when set, rebinds the custom image size before the
	// field is applied. The host resolves it from the bound image.
	CustomImage *projection.Size `json:"custom_image,omitempty"`
}

// NewChange builds a change with a JSON-encoded value.
func NewChange(field string, value any) (Change, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Change{}, fmt.Errorf("encoding %s: %w", field, err)
	}
	return Change{Field: field, Value: raw}, nil
}

type lensShift struct {
	H float64 `json:"h"`
	V float64 `json:"v"`
}

type sizeValue struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Apply dispatches a change to the matching setter. A CustomImage carried
// along is bound in the same commit.
func (p *Projector) Apply(c Change) (Update, error) {
	e, err := p.editFor(c)
	if err != nil {
		p.log.Warn("rejected change", zap.String("field", c.Field), zap.Error(err))
		return Update{}, err
	}
	if c.CustomImage != nil && c.Field != FieldCustomImage {
		e = withCustomImage(e, *c.CustomImage)
	}
	return p.mutate(e)
}

func (p *Projector) editFor(c Change) (edit, error) {
	switch c.Field {
	case FieldThrowRatio:
		return floatEdit(c, setThrowRatio)
	case FieldFocusDistance:
		return floatEdit(c, setFocusDistance)
	case FieldHShift:
		return floatEdit(c, setHShift)
	case FieldVShift:
		return floatEdit(c, setVShift)
	case FieldPower:
		return floatEdit(c, setPower)
	case FieldProjectorW, FieldProjectorH, FieldProjectorD:
		return floatEdit(c, func(v float64) edit { return setHousing(c.Field, v) })
	case FieldProjectionWidth, FieldProjectionHeight, FieldProjectionDiagonal:
		return floatEdit(c, func(v float64) edit { return setProjectionSize(c.Field, v) })

	case FieldLensShift:
		var v lensShift
		if err := decode(c, &v); err != nil {
			return edit{}, err
		}
		return setLensShift(v.H, v.V), nil

	case FieldResolution:
		var r projection.Resolution
		if err := decode(c, &r); err != nil {
			return edit{}, err
		}
		return setResolution(r), nil

	case FieldTexture:
		var t projection.TextureSource
		if err := decode(c, &t); err != nil {
			return edit{}, err
		}
		return setTexture(t), nil

	case FieldUseCustomTextureRes:
		return boolEdit(c, setUseCustomTextureRes)
	case FieldShowPixelGrid:
		return boolEdit(c, setShowPixelGrid)

	case FieldCustomImage:
		size := c.CustomImage
		if size == nil && len(c.Value) > 0 && string(c.Value) != "null" {
			var v sizeValue
			if err := decode(c, &v); err != nil {
				return edit{}, err
			}
			size = &projection.Size{Width: v.Width, Height: v.Height}
		}
		return setCustomImage(size), nil

	case FieldColor:
		var col projection.RGB
		if err := decode(c, &col); err != nil {
			return edit{}, err
		}
		return setColor(col), nil

	case FieldRandomColor:
		return p.randomizeColor(), nil

	case FieldParameters:
		if len(c.Value) == 0 {
			return edit{}, fmt.Errorf("setting %s: missing value", c.Field)
		}
		// Fields missing from the value keep their current setting.
		return edit{FieldParameters, groupAll, func(s *state) error {
			params := s.params
			if err := json.Unmarshal(c.Value, &params); err != nil {
				return err
			}
			return setParameters(params).fn(s)
		}}, nil
	}
	return edit{}, fmt.Errorf("%w: %q", ErrUnknownField, c.Field)
}

func decode(c Change, v any) error {
	if len(c.Value) == 0 {
		return fmt.Errorf("setting %s: missing value", c.Field)
	}
	if err := json.Unmarshal(c.Value, v); err != nil {
		return fmt.Errorf("setting %s: %w", c.Field, err)
	}
	return nil
}

func floatEdit(c Change, mk func(float64) edit) (edit, error) {
	var v float64
	if err := decode(c, &v); err != nil {
		return edit{}, err
	}
	return mk(v), nil
}

func boolEdit(c Change, mk func(bool) edit) (edit, error) {
	var v bool
	if err := decode(c, &v); err != nil {
		return edit{}, err
	}
	return mk(v), nil
}
