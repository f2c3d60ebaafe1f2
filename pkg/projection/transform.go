package projection

import "github.com/Faultbox/projector-rig/pkg/math"

// BaseFlip is the fixed scale applied once, when the pattern stage is built,
// so the image reads the right way round. It is never recomputed.
var BaseFlip = math.Vec2{X: -1, Y: -1}

// TextureTransform is the scale and translation of the second mapping stage.
// Scale is always positive; the flip lives in BaseFlip.
type TextureTransform struct {
	Scale math.Vec2 `json:"scale"`
	Shift math.Vec2 `json:"shift"`
}

// ComputeTextureTransform returns
//
//	scale = (1/tr, (1/tr) * height/width)
//	shift = ((h/100)/tr, (height/width) * (v/100) / tr)
func ComputeTextureTransform(throwRatio, hShiftPct, vShiftPct, width, height float64) (TextureTransform, error) {
	if err := requirePositive("throw_ratio", throwRatio); err != nil {
		return TextureTransform{}, err
	}
	if err := requireSize(width, height); err != nil {
		return TextureTransform{}, err
	}
	if err := requireFinite("h_shift", hShiftPct); err != nil {
		return TextureTransform{}, err
	}
	if err := requireFinite("v_shift", vShiftPct); err != nil {
		return TextureTransform{}, err
	}

	inv := 1 / throwRatio
	invAspect := height / width
	return TextureTransform{
		Scale: math.Vec2{X: inv, Y: inv * invAspect},
		Shift: math.Vec2{
			X: hShiftPct / 100 / throwRatio,
			Y: invAspect * (vShiftPct / 100) / throwRatio,
		},
	}, nil
}

// Composed returns the effective scale with the base flip applied.
func (t TextureTransform) Composed() math.Vec2 {
	return t.Scale.Mul(BaseFlip)
}
