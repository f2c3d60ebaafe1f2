package projection

import "fmt"

// TextureSource selects the pattern that feeds the emission output.
type TextureSource int

// Texture sources, numbered like the menu ordinals.
const (
	Checker TextureSource = iota + 1
	ColorGrid
	CustomTexture
)

// TextureSources lists every source in menu order.
var TextureSources = []TextureSource{Checker, ColorGrid, CustomTexture}

// String returns the interchange identifier.
func (t TextureSource) String() string {
	switch t {
	case Checker:
		return "checker_texture"
	case ColorGrid:
		return "color_grid_texture"
	case CustomTexture:
		return "custom_texture"
	default:
		return fmt.Sprintf("TextureSource(%d)", int(t))
	}
}

// Label returns the menu label.
func (t TextureSource) Label() string {
	switch t {
	case Checker:
		return "Checker"
	case ColorGrid:
		return "Color Grid"
	case CustomTexture:
		return "Custom Texture"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is a known source.
func (t TextureSource) Valid() bool {
	return t >= Checker && t <= CustomTexture
}

// ParseTextureSource parses an interchange identifier.
func ParseTextureSource(s string) (TextureSource, error) {
	for _, t := range TextureSources {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTextureSource, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TextureSource) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTextureSource, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TextureSource) UnmarshalText(text []byte) error {
	v, err := ParseTextureSource(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// GraphScope says which node tree owns the node feeding the emission.
type GraphScope int

// Graph scopes.
const (
	GroupScope GraphScope = iota // inside the projector node group
	RootScope                    // in the light's root tree
)

func (s GraphScope) String() string {
	if s == RootScope {
		return "root"
	}
	return "group"
}

// MarshalText implements encoding.TextMarshaler.
func (s GraphScope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *GraphScope) UnmarshalText(text []byte) error {
	switch string(text) {
	case "group":
		*s = GroupScope
	case "root":
		*s = RootScope
	default:
		return fmt.Errorf("unknown graph scope %q", text)
	}
	return nil
}

// PatternSource names the node output wired to the emission color.
type PatternSource struct {
	Source TextureSource `json:"source"`
	Scope  GraphScope    `json:"scope"`
	Node   string        `json:"node"`
	Output int           `json:"output"`
}

// String formats the feed as scope:node:output.
func (p PatternSource) String() string {
	return fmt.Sprintf("%s:%s:%d", p.Scope, p.Node, p.Output)
}

// SelectPatternFeed returns the feed for a texture source. Every source can be
// selected from every other; there are no transition restrictions.
func SelectPatternFeed(t TextureSource) (PatternSource, error) {
	switch t {
	case Checker:
		return PatternSource{Source: t, Scope: GroupScope, Node: "Mix.001", Output: 0}, nil
	case ColorGrid:
		return PatternSource{Source: t, Scope: GroupScope, Node: "Image Texture", Output: 0}, nil
	case CustomTexture:
		return PatternSource{Source: t, Scope: RootScope, Node: "Image Texture", Output: 0}, nil
	default:
		return PatternSource{}, fmt.Errorf("%w: %d", ErrUnknownTextureSource, int(t))
	}
}
