package projection

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a pixel resolution as floats, the form every formula consumes.
type Size struct {
	Width  float64 `yaml:"width" toml:"width" json:"width"`
	Height float64 `yaml:"height" toml:"height" json:"height"`
}

// InverseAspect returns height/width.
func (s Size) InverseAspect() float64 {
	return s.Height / s.Width
}

// Aspect returns width/height.
func (s Size) Aspect() float64 {
	return s.Width / s.Height
}

// String returns the size as "WxH".
func (s Size) String() string {
	return strconv.FormatFloat(s.Width, 'f', -1, 64) + "x" + strconv.FormatFloat(s.Height, 'f', -1, 64)
}

// Resolution is a standard resolution token such as "1920x1080".
type Resolution string

// DefaultResolution is selected for new projectors.
const DefaultResolution Resolution = "1920x1080"

// FallbackSize is used when the custom texture resolution is requested but no
// image is bound.
var FallbackSize = Size{Width: 300, Height: 300}

// ResolutionInfo describes one entry of the resolution menu.
type ResolutionInfo struct {
	Token   Resolution
	Label   string
	Ordinal int
}

// Resolutions lists the standard resolutions in menu order.
var Resolutions = []ResolutionInfo{
	// 16:10
	{"1280x800", "WXGA (1280x800) 16:10", 1},
	{"1440x900", "WXGA+ (1440x900) 16:10", 2},
	{"1920x1200", "WUXGA (1920x1200) 16:10", 3},
	// 16:9
	{"1280x720", "720p (1280x720) 16:9", 4},
	{"1920x1080", "1080p (1920x1080) 16:9", 5},
	{"3840x2160", "4K Ultra HD (3840x2160) 16:9", 6},
	// 4:3
	{"768x576", "PAL-D (768x576) 4:3", 7},
	{"800x600", "SVGA (800x600) 4:3", 8},
	{"1024x768", "XGA (1024x768) 4:3", 9},
	{"1400x1050", "SXGA+ (1400x1050) 4:3", 10},
	{"1600x1200", "UXGA (1600x1200) 4:3", 11},
	// 17:9
	{"4096x2160", "Native 4K (4096x2160) 17:9", 12},
	// 1:1
	{"1000x1000", "Square (1000x1000) 1:1", 13},
	// 1:2
	{"1000x2000", "Landscape (1000x2000) 1:2", 14},
	// 2:1
	{"2000x1000", "Portrait (2000x1000) 2:1", 15},
}

// LookupResolution finds a token in the standard table.
func LookupResolution(token Resolution) (ResolutionInfo, bool) {
	for _, info := range Resolutions {
		if info.Token == token {
			return info, true
		}
	}
	return ResolutionInfo{}, false
}

// Valid reports whether r is one of the standard resolutions.
func (r Resolution) Valid() bool {
	_, ok := LookupResolution(r)
	return ok
}

// Validate rejects tokens outside the standard table, wrapping
// ErrMalformedResolution.
func (r Resolution) Validate() error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q is not a standard resolution", ErrMalformedResolution, r)
	}
	return nil
}

// Size parses the token.
func (r Resolution) Size() (Size, error) {
	return ParseResolution(string(r))
}

// ParseResolution parses "WxH" with strictly positive integers.
func ParseResolution(token string) (Size, error) {
	w, h, ok := strings.Cut(token, "x")
	if !ok {
		return Size{}, fmt.Errorf("%w: %q", ErrMalformedResolution, token)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return Size{}, fmt.Errorf("%w: %q: bad width", ErrMalformedResolution, token)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return Size{}, fmt.Errorf("%w: %q: bad height", ErrMalformedResolution, token)
	}
	return Size{Width: float64(width), Height: float64(height)}, nil
}

// MustParseResolution is like ParseResolution but panics on a malformed token.
// The resolution table is closed, so a failure here means the table and the
// parser drifted apart.
func MustParseResolution(token Resolution) Size {
	s, err := ParseResolution(string(token))
	if err != nil {
		panic(err)
	}
	return s
}

// ResolveResolution returns the resolution the projector currently uses.
//
// With UseCustomTextureRes set and a custom texture selected, the bound
// image's pixel size wins; a missing image (nil, or a size that is not
// strictly positive) falls back to FallbackSize. Otherwise the selected
// resolution token is parsed.
func ResolveResolution(p Parameters, custom *Size) (Size, error) {
	if p.UseCustomTextureRes && p.Texture == CustomTexture {
		if custom == nil || requireSize(custom.Width, custom.Height) != nil {
			return FallbackSize, nil
		}
		return *custom, nil
	}
	return p.Resolution.Size()
}

// GeneratedTextureName is the name of the generated color grid image for a
// resolution.
func GeneratedTextureName(r Resolution) string {
	return "_proj.tex." + string(r)
}
