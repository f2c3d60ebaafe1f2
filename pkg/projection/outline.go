package projection

import "github.com/Faultbox/projector-rig/pkg/math"

// OutlinePointCount is the size of the outline point array consumers index.
const OutlinePointCount = 17

// Outline point indices.
const (
	// Corners of the projected rectangle: top-left, top-right,
	// bottom-right, bottom-left (as seen from the projector).
	CornerTopLeft     = 0
	CornerTopRight    = 1
	CornerBottomRight = 2
	CornerBottomLeft  = 3
	// ClosingPoint repeats the first corner.
	ClosingPoint = 4
	// Indices 5..10 alternate origin and corners 1..3; 11..16 stay zero.
	firstCrosshairPoint = 5
)

// Segment is a line from From to To.
type Segment struct {
	From math.Vec3 `json:"from"`
	To   math.Vec3 `json:"to"`
}

// Outline is the frustum outline at the focus distance: the projected
// rectangle plus three apex lines from the projector origin to corners
// 1, 2 and 3.
type Outline struct {
	Rect      [4]math.Vec3 `json:"rect"`
	Crosshair [3]Segment   `json:"crosshair"`
}

// Extents are the measured size of the projected image.
type Extents struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Diagonal float64 `json:"diagonal"`
}

// FrustumOutline computes the outline for the given settings:
//
//	factor = fd / tr / 2
//	half_h = (h/w) * factor
//	hs = h_shift/100, vs = (h/w) * (v_shift/100) / tr
//
// with corners at z = -fd.
func FrustumOutline(throwRatio, focusDistance, hShiftPct, vShiftPct, width, height float64) (Outline, error) {
	if err := requirePositive("throw_ratio", throwRatio); err != nil {
		return Outline{}, err
	}
	if err := requirePositive("focus_distance", focusDistance); err != nil {
		return Outline{}, err
	}
	if err := requireSize(width, height); err != nil {
		return Outline{}, err
	}
	if err := requireFinite("h_shift", hShiftPct); err != nil {
		return Outline{}, err
	}
	if err := requireFinite("v_shift", vShiftPct); err != nil {
		return Outline{}, err
	}

	invAspect := height / width
	factor := focusDistance / throwRatio / 2
	halfH := invAspect * factor
	hs := hShiftPct / 100
	vs := invAspect * (vShiftPct / 100) / throwRatio
	z := -focusDistance

	var o Outline
	o.Rect[CornerTopLeft] = math.Vec3{X: -factor + hs, Y: halfH + vs, Z: z}
	o.Rect[CornerTopRight] = math.Vec3{X: factor + hs, Y: halfH + vs, Z: z}
	o.Rect[CornerBottomRight] = math.Vec3{X: factor + hs, Y: -halfH + vs, Z: z}
	o.Rect[CornerBottomLeft] = math.Vec3{X: -factor + hs, Y: -halfH + vs, Z: z}
	for i := range o.Crosshair {
		o.Crosshair[i] = Segment{To: o.Rect[i+1]}
	}
	return o, nil
}

// Points returns the outline in its fixed 17-point layout:
//
//	0-3   corners, 4 closes the rectangle
//	5-10  origin, corner 1, origin, corner 2, origin, corner 3
//	11-16 zero
func (o Outline) Points() [OutlinePointCount]math.Vec3 {
	var pts [OutlinePointCount]math.Vec3
	copy(pts[:4], o.Rect[:])
	pts[ClosingPoint] = o.Rect[CornerTopLeft]
	for i, seg := range o.Crosshair {
		pts[firstCrosshairPoint+2*i] = seg.From
		pts[firstCrosshairPoint+2*i+1] = seg.To
	}
	return pts
}

// Extents measures the rectangle: top edge, right edge, and the 0-2 diagonal.
func (o Outline) Extents() Extents {
	return ProjectedExtents(o.Points())
}

// Center returns the mean of the four corners.
func (o Outline) Center() math.Vec3 {
	var c math.Vec3
	for _, p := range o.Rect {
		c = c.Add(p)
	}
	return c.Scale(0.25)
}

// Transform returns the outline with every point mapped by m.
func (o Outline) Transform(m math.Mat4) Outline {
	var out Outline
	for i, p := range o.Rect {
		out.Rect[i] = m.TransformPoint(p)
	}
	for i, seg := range o.Crosshair {
		out.Crosshair[i] = Segment{From: m.TransformPoint(seg.From), To: m.TransformPoint(seg.To)}
	}
	return out
}

// ProjectedExtents measures an outline given in the 17-point layout: the
// distances between points 0-1, 1-2 and 0-2.
func ProjectedExtents(points [OutlinePointCount]math.Vec3) Extents {
	return Extents{
		Width:    points[0].Distance(points[1]),
		Height:   points[1].Distance(points[2]),
		Diagonal: points[0].Distance(points[2]),
	}
}
