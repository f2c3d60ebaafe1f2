package pattern

import (
	gomath "math"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// PixelGridThreshold is the fraction of a pixel drawn as grid line.
const PixelGridThreshold = 0.025

// PixelGrid overlays one line per texture pixel.
type PixelGrid struct {
	Width  float64
	Height float64
}

// NewPixelGrid returns the overlay for a texture of the given size.
func NewPixelGrid(size projection.Size) PixelGrid {
	return PixelGrid{Width: size.Width, Height: size.Height}
}

// OnLine reports whether (u, v) falls on a pixel boundary.
func (g PixelGrid) OnLine(u, v float64) bool {
	return fract(u*g.Width) < PixelGridThreshold || fract(v*g.Height) < PixelGridThreshold
}

func fract(x float64) float64 {
	return x - gomath.Floor(x)
}
