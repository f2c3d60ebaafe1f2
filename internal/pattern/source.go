package pattern

import (
	"image"
	gomath "math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Source produces a linear color for a texture coordinate in [0,1]².
// V grows upwards.
type Source interface {
	Sample(u, v float64) projection.RGB
}

// Checker is the procedural checker pattern. Color1 is fixed to white,
// Color2 is the projected color.
type Checker struct {
	Scale  float64
	Color1 projection.RGB
	Color2 projection.RGB
}

// NewChecker returns the checker with the rig's scale.
func NewChecker(color projection.RGB) Checker {
	return Checker{
		Scale:  projection.CheckerScale,
		Color1: projection.RGB{R: 1, G: 1, B: 1},
		Color2: color,
	}
}

// checkerDepth is the third texture coordinate fed to the checker: the
// combined vector carries z = 1, re-centered by +0.5.
const checkerDepth = 1.5

func (c Checker) Sample(u, v float64) projection.RGB {
	cell := func(x float64) int {
		x = (x*c.Scale + 0.000001) * 0.999999
		return int(gomath.Abs(gomath.Floor(x))) % 2
	}
	xi, yi, zi := cell(u), cell(v), cell(checkerDepth)
	if (xi == yi) == (zi == 1) {
		return c.Color1
	}
	return c.Color2
}

// ColorGrid is the generated color grid image.
// Columns sweep the hue, rows the brightness, with dark lines between cells.
type ColorGrid struct {
	Size  projection.Size
	Cells int
}

// NewColorGrid returns an 8×8 grid for a texture of the given size.
func NewColorGrid(size projection.Size) ColorGrid {
	return ColorGrid{Size: size, Cells: 8}
}

func (g ColorGrid) Sample(u, v float64) projection.RGB {
	n := float64(g.Cells)
	cu, fu := gomath.Modf(clamp01(u) * n)
	cv, fv := gomath.Modf(clamp01(v) * n)
	if u >= 1 {
		cu, fu = n-1, 0.5
	}
	if v >= 1 {
		cv, fv = n-1, 0.5
	}

	// Lines are one texel wide at the image's resolution.
	lu := n / g.Size.Width
	lv := n / g.Size.Height
	if fu < lu || fv < lv {
		return projection.RGB{R: 0.05, G: 0.05, B: 0.05}
	}

	hue := 360 * cu / n
	val := 0.35 + 0.65*(cv+1)/n
	r, gg, b := colorful.Hsv(hue, 0.75, val).LinearRgb()
	return projection.RGB{R: r, G: gg, B: b}
}

// MissingImageColor is shown when the custom texture has no image.
var MissingImageColor = projection.RGB{R: 1, G: 0, B: 1}

// ImageSource samples a custom image with nearest filtering.
type ImageSource struct {
	img  image.Image
	rect image.Rectangle
}

// NewImageSource wraps img. Images larger than maxDim on either side are
// downscaled first; maxDim <= 0 keeps the original.
func NewImageSource(img image.Image, maxDim int) *ImageSource {
	if img == nil {
		return &ImageSource{}
	}
	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		scale := float64(maxDim) / float64(max(b.Dx(), b.Dy()))
		w := max(1, int(gomath.Round(float64(b.Dx())*scale)))
		h := max(1, int(gomath.Round(float64(b.Dy())*scale)))
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}
	return &ImageSource{img: img, rect: img.Bounds()}
}

func (s *ImageSource) Sample(u, v float64) projection.RGB {
	if s.img == nil || s.rect.Empty() {
		return MissingImageColor
	}
	x := s.rect.Min.X + min(s.rect.Dx()-1, int(clamp01(u)*float64(s.rect.Dx())))
	// Image rows run top-down, V runs bottom-up.
	y := s.rect.Min.Y + min(s.rect.Dy()-1, int((1-clamp01(v))*float64(s.rect.Dy())))

	c, ok := colorful.MakeColor(s.img.At(x, y))
	if !ok {
		// Fully transparent pixel.
		return projection.RGB{}
	}
	r, g, b := c.LinearRgb()
	return projection.RGB{R: r, G: g, B: b}
}

func clamp01(x float64) float64 {
	return gomath.Max(0, gomath.Min(1, x))
}
