package pattern

import (
	"fmt"
	"image"

	"github.com/Faultbox/projector-rig/pkg/math"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Options describe the pattern a projector casts.
type Options struct {
	Transform     projection.TextureTransform
	Texture       projection.TextureSource
	Color         projection.RGB
	Size          projection.Size // texture resolution
	Image         image.Image     // custom texture, may be nil
	MaxImageSize  int
	ShowPixelGrid bool
}

// Pattern is a compiled set of options.
type Pattern struct {
	transform projection.TextureTransform
	source    Source
	grid      *PixelGrid
}

// New builds a pattern. The texture source must be one of the known ones.
func New(opts Options) (*Pattern, error) {
	var src Source
	switch opts.Texture {
	case projection.Checker:
		src = NewChecker(opts.Color)
	case projection.ColorGrid:
		src = NewColorGrid(opts.Size)
	case projection.CustomTexture:
		src = NewImageSource(opts.Image, opts.MaxImageSize)
	default:
		return nil, fmt.Errorf("building pattern: %w: %d", projection.ErrUnknownTextureSource, int(opts.Texture))
	}

	p := &Pattern{transform: opts.Transform, source: src}
	if opts.ShowPixelGrid {
		g := NewPixelGrid(opts.Size)
		p.grid = &g
	}
	return p, nil
}

// Shade returns the color cast along dir. Directions outside the image
// return black and false.
func (p *Pattern) Shade(dir math.Vec3) (projection.RGB, bool) {
	uv, ok := ProjectUV(dir, p.transform)
	if !ok {
		return projection.RGB{}, false
	}
	if p.grid != nil && p.grid.OnLine(uv.X, uv.Y) {
		return projection.RGB{}, true
	}
	return p.source.Sample(uv.X, uv.Y), true
}

// Transform returns the texture transform the pattern was built with.
func (p *Pattern) Transform() projection.TextureTransform {
	return p.transform
}
