package pattern

import (
	"image/color"
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// RandomColor picks a saturated, bright projected color.
func RandomColor(rng *rand.Rand) projection.RGB {
	c := colorful.Hsv(rng.Float64()*360, 0.5+0.5*rng.Float64(), 0.8+0.2*rng.Float64())
	r, g, b := c.LinearRgb()
	return projection.RGB{R: r, G: g, B: b}
}

// ToNRGBA converts a linear color to an opaque 8-bit sRGB color.
func ToNRGBA(c projection.RGB) color.NRGBA {
	r, g, b := colorful.LinearRgb(c.R, c.G, c.B).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Hex formats a linear color as #rrggbb in sRGB.
func Hex(c projection.RGB) string {
	return colorful.LinearRgb(c.R, c.G, c.B).Clamped().Hex()
}
