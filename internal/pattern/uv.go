// Package pattern evaluates what a projector casts along a given direction.
//
// It mirrors the projector's shading graph: the incoming direction is
// flipped, divided by its depth, mapped through the inverse texture
// transform and re-centered, then the active source is sampled with
// clipping at the image border.
package pattern

import (
	"github.com/Faultbox/projector-rig/pkg/math"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// ProjectUV maps a direction in projector space (looking down -Z) to a
// texture coordinate. The boolean is false when the direction falls outside
// the image or does not point in front of the lens.
func ProjectUV(dir math.Vec3, tf projection.TextureTransform) (math.Vec2, bool) {
	if dir.Z >= 0 || !dir.IsFinite() {
		return math.Vec2{}, false
	}
	if tf.Scale.X == 0 || tf.Scale.Y == 0 {
		return math.Vec2{}, false
	}

	flipped := dir.XY().Mul(projection.BaseFlip)
	q := flipped.Scale(1 / dir.Z)

	uv := math.Vec2{
		X: (q.X-tf.Shift.X)/tf.Scale.X + 0.5,
		Y: (q.Y-tf.Shift.Y)/tf.Scale.Y + 0.5,
	}
	return uv, inside(uv)
}

// LitRect returns the rectangle lit on the plane z = -distance, as
// (min, max) corners in projector space.
func LitRect(tf projection.TextureTransform, distance float64) (lo, hi math.Vec2) {
	half := tf.Scale.Scale(0.5)
	lo = tf.Shift.Sub(half).Scale(distance)
	hi = tf.Shift.Add(half).Scale(distance)
	return lo, hi
}

func inside(uv math.Vec2) bool {
	return uv.X >= 0 && uv.X <= 1 && uv.Y >= 0 && uv.Y <= 1
}
