// Package projector holds projector instances and keeps their derived
// outputs in step with their parameters.
package projector

import (
	"fmt"
	gomath "math"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/projector-rig/internal/logger"
	"github.com/Faultbox/projector-rig/internal/pattern"
	"github.com/Faultbox/projector-rig/pkg/math"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Derived is every output computed from a projector's parameters.
type Derived struct {
	Resolution  projection.Size             `json:"resolution"`
	Lens        projection.Lens             `json:"lens"`
	Texture     projection.TextureTransform `json:"texture"`
	CameraShift math.Vec2                   `json:"camera_shift"`
	Outline     projection.Outline          `json:"outline"`
	Extents     projection.Extents          `json:"extents"`
	Housing     projection.Housing          `json:"housing"`
	PatternFeed projection.PatternSource    `json:"pattern_feed"`
	// ImageName is the generated color grid image for the selected resolution.
	ImageName string `json:"image_name"`
}

func derive(p projection.Parameters, custom *projection.Size) (Derived, error) {
	var d Derived
	var err error

	if d.Resolution, err = projection.ResolveResolution(p, custom); err != nil {
		return Derived{}, err
	}
	w, h := d.Resolution.Width, d.Resolution.Height

	if d.Lens, err = projection.ComputeLens(p.ThrowRatio, w, h); err != nil {
		return Derived{}, err
	}
	if d.Texture, err = projection.ComputeTextureTransform(p.ThrowRatio, p.HShift, p.VShift, w, h); err != nil {
		return Derived{}, err
	}
	if d.CameraShift, err = projection.CameraShift(p.HShift, p.VShift, w, h); err != nil {
		return Derived{}, err
	}
	if d.Outline, err = projection.FrustumOutline(p.ThrowRatio, p.FocusDistance, p.HShift, p.VShift, w, h); err != nil {
		return Derived{}, err
	}
	d.Extents = d.Outline.Extents()
	if d.Housing, err = projection.HousingDimensions(p.ProjectorW, p.ProjectorH, p.ProjectorD); err != nil {
		return Derived{}, err
	}
	if d.PatternFeed, err = projection.SelectPatternFeed(p.Texture); err != nil {
		return Derived{}, err
	}
	d.ImageName = projection.GeneratedTextureName(p.Resolution)
	return d, nil
}

// Option configures a new projector.
type Option func(*Projector)

// WithCustomImage binds the pixel size of the custom texture's image.
func WithCustomImage(size projection.Size) Option {
	return func(p *Projector) {
		s := size
		p.custom = &s
	}
}

// WithRand sets the random source used for projected colors.
func WithRand(rng *rand.Rand) Option {
	return func(p *Projector) {
		p.rng = rng
	}
}

// WithRandomColor replaces the initial projected color with a random one.
// Pass it only for projectors created from default parameters.
func WithRandomColor() Option {
	return func(p *Projector) {
		p.randomColor = true
	}
}

// Projector is one projector instance. All methods are safe for concurrent
// use; each mutation and its recompute happen under one lock.
type Projector struct {
	mu sync.Mutex

	id      string
	params  projection.Parameters
	custom  *projection.Size
	derived Derived

	rng         *rand.Rand
	randomColor bool
	log         *zap.Logger
}

// New validates params and returns the projector together with the full
// initial update, including the static rig settings.
func New(id string, params projection.Parameters, opts ...Option) (*Projector, Update, error) {
	p := &Projector{
		id:     id,
		params: params,
		log:    logger.Named("projector").With(zap.String("id", id)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if p.randomColor {
		p.params.Color = pattern.RandomColor(p.rng)
	}

	if err := p.params.Validate(); err != nil {
		return nil, Update{}, fmt.Errorf("creating projector %s: %w", id, err)
	}
	if err := validateColor(p.params.Color); err != nil {
		return nil, Update{}, fmt.Errorf("creating projector %s: %w", id, err)
	}
	d, err := derive(p.params, p.custom)
	if err != nil {
		return nil, Update{}, fmt.Errorf("creating projector %s: %w", id, err)
	}
	p.derived = d

	u := p.updateLocked(groupAll)
	rig := projection.DefaultRig()
	u.Rig = &rig
	p.log.Debug("projector created",
		zap.Float64("throw_ratio", p.params.ThrowRatio),
		zap.Stringer("resolution", d.Resolution),
		zap.Stringer("texture", p.params.Texture))
	return p, u, nil
}

// ID returns the projector's identifier.
func (p *Projector) ID() string {
	return p.id
}

// Parameters returns a copy of the current parameters.
func (p *Projector) Parameters() projection.Parameters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// CustomImage returns the bound custom image size, if any.
func (p *Projector) CustomImage() (projection.Size, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.custom == nil {
		return projection.Size{}, false
	}
	return *p.custom, true
}

// Derived returns a consistent snapshot of the derived outputs.
func (p *Projector) Derived() Derived {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.derived
}

// Snapshot returns parameters and derived outputs taken under one lock.
func (p *Projector) Snapshot() (projection.Parameters, Derived) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params, p.derived
}

type state struct {
	params projection.Parameters
	custom *projection.Size
}

// edit is one pending change: the outputs it refreshes and how it
// modifies a copy of the state.
type edit struct {
	field  string
	groups group
	fn     func(*state) error
}

// mutate applies e to a copy of the state, recomputes and commits. On any
// error the previous state stays in place.
func (p *Projector) mutate(e edit) (Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := state{params: p.params, custom: p.custom}
	if err := e.fn(&next); err != nil {
		return p.reject(e.field, err)
	}
	if err := next.params.Validate(); err != nil {
		return p.reject(e.field, err)
	}
	d, err := derive(next.params, next.custom)
	if err != nil {
		return p.reject(e.field, err)
	}

	p.params, p.custom, p.derived = next.params, next.custom, d
	p.log.Debug("recomputed", zap.String("field", e.field), zap.Stringer("groups", e.groups))
	return p.updateLocked(e.groups), nil
}

func (p *Projector) reject(field string, err error) (Update, error) {
	p.log.Warn("rejected parameter update", zap.String("field", field), zap.Error(err))
	return Update{}, fmt.Errorf("setting %s: %w", field, err)
}

// SetThrowRatio sets the throw ratio.
func (p *Projector) SetThrowRatio(tr float64) (Update, error) {
	return p.mutate(setThrowRatio(tr))
}

// SetFocusDistance sets the distance of the outline plane.
func (p *Projector) SetFocusDistance(fd float64) (Update, error) {
	return p.mutate(setFocusDistance(fd))
}

// SetLensShift sets both shifts, in percent.
func (p *Projector) SetLensShift(h, v float64) (Update, error) {
	return p.mutate(setLensShift(h, v))
}

// SetHShift sets the horizontal shift, in percent.
func (p *Projector) SetHShift(h float64) (Update, error) {
	return p.mutate(setHShift(h))
}

// SetVShift sets the vertical shift, in percent.
func (p *Projector) SetVShift(v float64) (Update, error) {
	return p.mutate(setVShift(v))
}

// SetResolution selects one of the standard resolutions.
func (p *Projector) SetResolution(r projection.Resolution) (Update, error) {
	return p.mutate(setResolution(r))
}

// SetTexture selects the projected pattern source.
func (p *Projector) SetTexture(t projection.TextureSource) (Update, error) {
	return p.mutate(setTexture(t))
}

// SetUseCustomTextureRes toggles whether a custom image's size wins over
// the selected resolution.
func (p *Projector) SetUseCustomTextureRes(on bool) (Update, error) {
	return p.mutate(setUseCustomTextureRes(on))
}

// SetCustomImage binds (or, with nil, unbinds) the custom image size.
func (p *Projector) SetCustomImage(size *projection.Size) (Update, error) {
	return p.mutate(setCustomImage(size))
}

// SetColor sets the checker's second color.
func (p *Projector) SetColor(c projection.RGB) (Update, error) {
	return p.mutate(setColor(c))
}

// RandomizeColor picks a new random projected color.
func (p *Projector) RandomizeColor() (Update, error) {
	return p.mutate(p.randomizeColor())
}

// SetPower sets the spotlight energy in watts.
func (p *Projector) SetPower(w float64) (Update, error) {
	return p.mutate(setPower(w))
}

// SetHousingW sets the housing width in centimeters.
func (p *Projector) SetHousingW(cm float64) (Update, error) {
	return p.mutate(setHousing(FieldProjectorW, cm))
}

// SetHousingH sets the housing height in centimeters.
func (p *Projector) SetHousingH(cm float64) (Update, error) {
	return p.mutate(setHousing(FieldProjectorH, cm))
}

// SetHousingD sets the housing depth in centimeters.
func (p *Projector) SetHousingD(cm float64) (Update, error) {
	return p.mutate(setHousing(FieldProjectorD, cm))
}

// SetShowPixelGrid toggles the pixel grid overlay.
func (p *Projector) SetShowPixelGrid(on bool) (Update, error) {
	return p.mutate(setShowPixelGrid(on))
}

// SetProjectionWidth picks the throw ratio giving an image of the given
// width at the focus distance.
func (p *Projector) SetProjectionWidth(width float64) (Update, error) {
	return p.mutate(setProjectionSize(FieldProjectionWidth, width))
}

// SetProjectionHeight picks the throw ratio giving an image of the given
// height at the focus distance.
func (p *Projector) SetProjectionHeight(height float64) (Update, error) {
	return p.mutate(setProjectionSize(FieldProjectionHeight, height))
}

// SetProjectionDiagonal picks the throw ratio giving an image of the given
// diagonal at the focus distance.
func (p *Projector) SetProjectionDiagonal(diagonal float64) (Update, error) {
	return p.mutate(setProjectionSize(FieldProjectionDiagonal, diagonal))
}

// SetParameters replaces every parameter at once, e.g. from a reloaded
// preset. The custom image binding is kept.
func (p *Projector) SetParameters(params projection.Parameters) (Update, error) {
	return p.mutate(setParameters(params))
}

func validateColor(c projection.RGB) error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"projected_color.r", c.R}, {"projected_color.g", c.G}, {"projected_color.b", c.B}} {
		if gomath.IsNaN(v.val) || gomath.IsInf(v.val, 0) || v.val < 0 {
			return &projection.ParamError{Field: v.name, Value: v.val, Reason: "must be a finite value >= 0"}
		}
	}
	return nil
}
