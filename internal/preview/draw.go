package preview

import (
	"image"
	gomath "math"

	"golang.org/x/image/vector"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// outlineWidth is the stroke width of the outline in pixels.
const outlineWidth = 1.0

// drawOutline draws the outline rectangle and its crosshair, projected
// straight onto the plane.
func drawOutline(img *image.NRGBA, v View, o projection.Outline) {
	b := img.Bounds()
	ras := vector.NewRasterizer(b.Dx(), b.Dy())
	src := image.NewUniform(outlineColor)

	verts := OutlineVertices(o)
	for i := 0; i+5 < len(verts); i += 6 {
		x0, y0 := v.ToPixel(vec2(verts[i], verts[i+1]))
		x1, y1 := v.ToPixel(vec2(verts[i+3], verts[i+4]))

		ras.Reset(b.Dx(), b.Dy())
		if !strokeSegment(ras, snap(x0), snap(y0), snap(x1), snap(y1), outlineWidth/2) {
			continue
		}
		ras.Draw(img, b, src, image.Point{})
	}
}

// strokeSegment adds a square-capped stroke of half width hw as a quad.
// Zero-length segments add nothing and report false.
func strokeSegment(ras *vector.Rasterizer, x0, y0, x1, y1, hw float64) bool {
	dx, dy := x1-x0, y1-y0
	length := gomath.Hypot(dx, dy)
	if length == 0 {
		return false
	}
	ux, uy := dx/length*hw, dy/length*hw
	nx, ny := -uy, ux

	ras.MoveTo(float32(x0-ux+nx), float32(y0-uy+ny))
	ras.LineTo(float32(x1+ux+nx), float32(y1+uy+ny))
	ras.LineTo(float32(x1+ux-nx), float32(y1+uy-ny))
	ras.LineTo(float32(x0-ux-nx), float32(y0-uy-ny))
	ras.ClosePath()
	return true
}

// snap moves a pixel coordinate to the center of its pixel so axis-aligned
// strokes cover whole pixels.
func snap(x float64) float64 {
	return gomath.Floor(x) + 0.5
}
