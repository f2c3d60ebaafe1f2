package projector

import (
	"strings"

	"github.com/Faultbox/projector-rig/pkg/math"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// group is a set of derived outputs touched by a change.
type group uint16

const (
	groupLens group = 1 << iota
	groupTexture
	groupCameraShift
	groupOutline // outline and extents
	groupHousing
	groupPower
	groupColor
	groupPixelGrid
	groupFeed
	groupImage

	groupAll = groupLens | groupTexture | groupCameraShift | groupOutline |
		groupHousing | groupPower | groupColor | groupPixelGrid | groupFeed | groupImage
)

// Outputs refreshed per changed field.
const (
	throwRatioGroups = groupLens | groupTexture | groupCameraShift | groupOutline | groupFeed
	focusGroups      = groupOutline
	shiftGroups      = groupCameraShift | groupTexture | groupOutline
	resolutionGroups = groupImage | groupTexture | groupLens | groupCameraShift |
		groupOutline | groupPixelGrid | groupFeed
)

var groupNames = []struct {
	g    group
	name string
}{
	{groupLens, "lens"},
	{groupTexture, "texture"},
	{groupCameraShift, "camera_shift"},
	{groupOutline, "outline"},
	{groupHousing, "housing"},
	{groupPower, "power"},
	{groupColor, "color"},
	{groupPixelGrid, "pixel_grid"},
	{groupFeed, "feed"},
	{groupImage, "image"},
}

func (g group) String() string {
	var names []string
	for _, n := range groupNames {
		if g&n.g != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// PixelGrid is the pixel grid overlay state.
type PixelGrid struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible bool    `json:"visible"`
}

// Update lists the derived outputs a change refreshed. Groups that did not
// change are nil.
type Update struct {
	ID string `json:"id"`

	Lens         *projection.Lens                         `json:"lens,omitempty"`
	Texture      *projection.TextureTransform             `json:"texture,omitempty"`
	CameraShift  *math.Vec2                               `json:"camera_shift,omitempty"`
	Outline      *[projection.OutlinePointCount]math.Vec3 `json:"outline,omitempty"`
	Extents      *projection.Extents                      `json:"extents,omitempty"`
	Housing      *projection.Housing                      `json:"housing,omitempty"`
	LightPower   *float64                                 `json:"light_power,omitempty"`
	CheckerColor *projection.RGB                          `json:"checker_color,omitempty"`
	PixelGrid    *PixelGrid                               `json:"pixel_grid,omitempty"`
	PatternFeed  *projection.PatternSource                `json:"pattern_feed,omitempty"`
	ImageName    *string                                  `json:"image_name,omitempty"`

	// Rig is only set on the initial update.
	Rig *projection.Rig `json:"rig,omitempty"`
}

// Empty reports whether the update carries nothing to apply.
func (u Update) Empty() bool {
	return u.Lens == nil && u.Texture == nil && u.CameraShift == nil &&
		u.Outline == nil && u.Extents == nil && u.Housing == nil &&
		u.LightPower == nil && u.CheckerColor == nil && u.PixelGrid == nil &&
		u.PatternFeed == nil && u.ImageName == nil && u.Rig == nil
}

// updateLocked builds an update for groups from the committed state.
// Callers hold p.mu.
func (p *Projector) updateLocked(groups group) Update {
	d := p.derived
	u := Update{ID: p.id}

	if groups&groupLens != 0 {
		lens := d.Lens
		u.Lens = &lens
	}
	if groups&groupTexture != 0 {
		tf := d.Texture
		u.Texture = &tf
	}
	if groups&groupCameraShift != 0 {
		shift := d.CameraShift
		u.CameraShift = &shift
	}
	if groups&groupOutline != 0 {
		pts := d.Outline.Points()
		ext := d.Extents
		u.Outline = &pts
		u.Extents = &ext
	}
	if groups&groupHousing != 0 {
		h := d.Housing
		u.Housing = &h
	}
	if groups&groupPower != 0 {
		power := p.params.Power
		u.LightPower = &power
	}
	if groups&groupColor != 0 {
		c := p.params.Color
		u.CheckerColor = &c
	}
	if groups&groupPixelGrid != 0 {
		u.PixelGrid = &PixelGrid{
			Width:   d.Resolution.Width,
			Height:  d.Resolution.Height,
			Visible: p.params.ShowPixelGrid,
		}
	}
	if groups&groupFeed != 0 {
		feed := d.PatternFeed
		u.PatternFeed = &feed
	}
	if groups&groupImage != 0 {
		name := d.ImageName
		u.ImageName = &name
	}
	return u
}

// Socket is one value to write into the host's scene or shading graph.
type Socket struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Sockets flattens the update into named assignments, in a stable order.
func (u Update) Sockets() []Socket {
	var out []Socket
	add := func(path string, v any) {
		out = append(out, Socket{Path: path, Value: v})
	}

	if r := u.Rig; r != nil {
		add("camera.sensor_width", r.SensorWidth)
		add("camera.display_size", r.CameraDisplaySize)
		add("camera.rotation_euler", vec3(r.CameraRotation))
		add("Spot.spot_size", r.SpotSize)
		add("Spot.spot_blend", r.SpotBlend)
		add("Spot.shadow_soft_size", r.SpotShadowSoftSize)
		add("Spot.scale", vec3(r.SpotScale))
		add("Checker Texture.Scale", r.CheckerScale)
		add("Checker Texture.Color1", r.CheckerColor1.RGBA())
	}
	if u.Lens != nil {
		add("camera.lens", u.Lens.FocalLength)
	}
	if u.CameraShift != nil {
		add("camera.shift_x", u.CameraShift.X)
		add("camera.shift_y", u.CameraShift.Y)
	}
	if u.Texture != nil {
		s := u.Texture.Composed()
		add("Mapping.Scale", [3]float64{s.X, s.Y, 1})
		add("Mapping.001.Location", [3]float64{u.Texture.Shift.X, u.Texture.Shift.Y, 0})
	}
	if u.ImageName != nil {
		add("Image Texture.image", *u.ImageName)
	}
	if u.PatternFeed != nil {
		add("Emission.Color", u.PatternFeed.String())
	}
	if u.CheckerColor != nil {
		add("Checker Texture.Color2", u.CheckerColor.RGBA())
	}
	if u.LightPower != nil {
		add("Spot.energy", *u.LightPower)
	}
	if u.PixelGrid != nil {
		add("pixel_grid._width", u.PixelGrid.Width)
		add("pixel_grid._height", u.PixelGrid.Height)
		add("pixel_grid.enabled", u.PixelGrid.Visible)
	}
	if u.Outline != nil {
		pts := make([][3]float64, len(u.Outline))
		for i, pt := range u.Outline {
			pts[i] = vec3(pt)
		}
		add("outline.points", pts)
	}
	if u.Extents != nil {
		add("projection.width", u.Extents.Width)
		add("projection.height", u.Extents.Height)
		add("projection.diagonal", u.Extents.Diagonal)
	}
	if u.Housing != nil {
		add("Projector_Cube.dimensions", vec3(u.Housing.Dimensions))
		add("Projector_Cube.location_z", u.Housing.ZOffset)
	}
	return out
}

func vec3(v math.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
