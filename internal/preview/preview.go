// Package preview renders what a projector casts onto the plane at its
// focus distance.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	gomath "math"

	"github.com/Faultbox/projector-rig/internal/pattern"
	"github.com/Faultbox/projector-rig/pkg/math"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Options control rendering.
type Options struct {
	MaxSize     int     // longest edge in pixels
	Margin      float64 // border around the lit area, fraction of its size
	ShowOutline bool
}

// DefaultOptions returns a 640 pixel preview with a 10% margin.
func DefaultOptions() Options {
	return Options{MaxSize: 640, Margin: 0.1, ShowOutline: true}
}

var (
	backgroundColor = color.NRGBA{R: 18, G: 18, B: 20, A: 255}
	outlineColor    = color.NRGBA{R: 255, G: 140, B: 0, A: 255}
)

// View maps the screen plane to pixels. Y grows upwards on the plane and
// downwards in the image.
type View struct {
	Min, Max math.Vec2
	Width    int
	Height   int
}

// ToPlane returns the plane point at the pixel coordinate (px, py).
func (v View) ToPlane(px, py float64) math.Vec2 {
	return math.Vec2{
		X: v.Min.X + px/float64(v.Width)*(v.Max.X-v.Min.X),
		Y: v.Max.Y - py/float64(v.Height)*(v.Max.Y-v.Min.Y),
	}
}

// ToPixel returns the pixel coordinate of a plane point.
func (v View) ToPixel(p math.Vec2) (float64, float64) {
	px := (p.X - v.Min.X) / (v.Max.X - v.Min.X) * float64(v.Width)
	py := (v.Max.Y - p.Y) / (v.Max.Y - v.Min.Y) * float64(v.Height)
	return px, py
}

// Frame is a rendered preview.
type Frame struct {
	Image *image.NRGBA
	View  View
}

// Render shades every pixel of the plane z = -distance around the lit area
// and, optionally, the outline on top.
func Render(p *pattern.Pattern, outline projection.Outline, distance float64, opts Options) (*Frame, error) {
	if p == nil {
		return nil, errors.New("render: nil pattern")
	}
	if !(distance > 0) || gomath.IsInf(distance, 1) {
		return nil, fmt.Errorf("render: %w", &projection.ParamError{
			Field: "focus_distance", Value: distance, Reason: "must be positive",
		})
	}
	if opts.MaxSize <= 0 {
		return nil, fmt.Errorf("render: max size must be positive, got %d", opts.MaxSize)
	}

	view, err := frameView(p.Transform(), outline, distance, opts)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, view.Width, view.Height))
	for y := 0; y < view.Height; y++ {
		for x := 0; x < view.Width; x++ {
			pt := view.ToPlane(float64(x)+0.5, float64(y)+0.5)
			c, lit := p.Shade(math.Vec3{X: pt.X, Y: pt.Y, Z: -distance})
			if !lit {
				img.SetNRGBA(x, y, backgroundColor)
				continue
			}
			img.SetNRGBA(x, y, pattern.ToNRGBA(c))
		}
	}

	if opts.ShowOutline {
		drawOutline(img, view, outline)
	}
	return &Frame{Image: img, View: view}, nil
}

func frameView(tf projection.TextureTransform, outline projection.Outline, distance float64, opts Options) (View, error) {
	lo, hi := pattern.LitRect(tf, distance)
	if opts.ShowOutline {
		for _, c := range outline.Rect {
			lo = math.Vec2{X: gomath.Min(lo.X, c.X), Y: gomath.Min(lo.Y, c.Y)}
			hi = math.Vec2{X: gomath.Max(hi.X, c.X), Y: gomath.Max(hi.Y, c.Y)}
		}
	}

	span := hi.Sub(lo)
	if !(span.X > 0 && span.Y > 0) || !span.IsFinite() {
		return View{}, fmt.Errorf("render: empty frame %v..%v", lo, hi)
	}
	margin := span.Scale(gomath.Max(0, opts.Margin))
	lo, hi = lo.Sub(margin), hi.Add(margin)
	span = hi.Sub(lo)

	v := View{Min: lo, Max: hi}
	if span.X >= span.Y {
		v.Width = opts.MaxSize
		v.Height = max(1, int(gomath.Round(float64(opts.MaxSize)*span.Y/span.X)))
	} else {
		v.Height = opts.MaxSize
		v.Width = max(1, int(gomath.Round(float64(opts.MaxSize)*span.X/span.Y)))
	}
	return v, nil
}
