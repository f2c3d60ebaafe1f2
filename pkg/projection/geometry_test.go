package projection

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/projector-rig/pkg/math"
)

const eps = 1e-12

var throwRatios = []float64{0.05, 0.3, 0.5, 1.0, 1.37, 2.0, 5.0, 12.5}

func TestLensFocalLength(t *testing.T) {
	prev := 0.0
	for _, tr := range throwRatios {
		got, err := LensFocalLength(tr)
		require.NoError(t, err)
		assert.Equal(t, 10*tr, got)
		assert.Greater(t, got, prev, "focal length must grow with throw ratio")
		prev = got
	}
}

func TestComputeLensFieldOfView(t *testing.T) {
	lens, err := ComputeLens(1.0, 1920, 1080)
	require.NoError(t, err)
	assert.Equal(t, 10.0, lens.FocalLength)
	// A throw ratio of 1 covers one unit of width per unit of distance.
	assert.InDelta(t, 2*gomath.Atan(0.5), lens.HorizontalFOV, eps)
	assert.InDelta(t, 2*gomath.Atan(0.5*1080/1920), lens.VerticalFOV, eps)
}

func TestTextureTransformAspect(t *testing.T) {
	for _, res := range Resolutions {
		size := MustParseResolution(res.Token)
		for _, tr := range throwRatios {
			tf, err := ComputeTextureTransform(tr, 12.5, -40, size.Width, size.Height)
			require.NoError(t, err)
			assert.InDelta(t, size.Height/size.Width, tf.Scale.Y/tf.Scale.X, eps, "%s tr=%v", res.Token, tr)
			assert.Equal(t, 1/tr, tf.Scale.X)
			assert.Positive(t, tf.Scale.X)
			assert.Positive(t, tf.Scale.Y)
		}
	}
}

func TestTextureTransformShift(t *testing.T) {
	tf, err := ComputeTextureTransform(2.0, 50, 20, 1920, 1080)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, tf.Shift.X, eps)
	assert.InDelta(t, 1080.0/1920*0.2/2, tf.Shift.Y, eps)

	flipped := tf.Composed()
	assert.Equal(t, -tf.Scale.X, flipped.X)
	assert.Equal(t, -tf.Scale.Y, flipped.Y)
}

func TestCameraShiftIgnoresThrowRatio(t *testing.T) {
	shift, err := CameraShift(50, 20, 1920, 1080)
	require.NoError(t, err)
	assert.Equal(t, 0.5, shift.X)
	assert.InDelta(t, 1080.0/1920*0.2, shift.Y, eps)

	// The texture shift for the same input is divided by the throw ratio.
	tf, err := ComputeTextureTransform(2.0, 50, 20, 1920, 1080)
	require.NoError(t, err)
	assert.InDelta(t, shift.X/2, tf.Shift.X, eps)
	assert.InDelta(t, shift.Y/2, tf.Shift.Y, eps)
}

func TestFrustumOutlineIsRectangle(t *testing.T) {
	shifts := []float64{-100, -33, 0, 12.5, 100}
	for _, tr := range throwRatios {
		for _, fd := range []float64{0.01, 1, 7.5, 30} {
			for _, hs := range shifts {
				for _, vs := range shifts {
					o, err := FrustumOutline(tr, fd, hs, vs, 1024, 768)
					require.NoError(t, err)
					r := o.Rect
					assert.InDelta(t, r[0].Distance(r[1]), r[3].Distance(r[2]), 1e-9)
					assert.InDelta(t, r[0].Distance(r[3]), r[1].Distance(r[2]), 1e-9)
					for _, c := range r {
						assert.Equal(t, -fd, c.Z)
					}
				}
			}
		}
	}
}

func TestFrustumOutlineZeroShiftIsCentered(t *testing.T) {
	for _, tr := range throwRatios {
		o, err := FrustumOutline(tr, 3, 0, 0, 1280, 800)
		require.NoError(t, err)
		c := o.Center()
		assert.InDelta(t, 0, c.X, eps)
		assert.InDelta(t, 0, c.Y, eps)
	}
}

func TestFrustumOutlineReference(t *testing.T) {
	o, err := FrustumOutline(1.0, 1.0, 0, 0, 1920, 1080)
	require.NoError(t, err)

	assert.Equal(t, math.Vec3{X: -0.5, Y: 0.28125, Z: -1}, o.Rect[CornerTopLeft])
	assert.Equal(t, math.Vec3{X: 0.5, Y: 0.28125, Z: -1}, o.Rect[CornerTopRight])
	assert.Equal(t, math.Vec3{X: 0.5, Y: -0.28125, Z: -1}, o.Rect[CornerBottomRight])
	assert.Equal(t, math.Vec3{X: -0.5, Y: -0.28125, Z: -1}, o.Rect[CornerBottomLeft])

	ext := o.Extents()
	assert.InDelta(t, 1.0, ext.Width, eps)
	assert.InDelta(t, 0.5625, ext.Height, eps)
	assert.InDelta(t, gomath.Sqrt(1+0.5625*0.5625), ext.Diagonal, eps)
	assert.InDelta(t, 1.1473, ext.Diagonal, 1e-4)
}

func TestFrustumOutlineShifted(t *testing.T) {
	o, err := FrustumOutline(2.0, 4.0, 10, 50, 1000, 2000)
	require.NoError(t, err)
	// factor = 4/2/2 = 1, half_h = 2, hs = 0.1, vs = 2*0.5/2 = 0.5
	assert.InDelta(t, -0.9, o.Rect[0].X, eps)
	assert.InDelta(t, 2.5, o.Rect[0].Y, eps)
	assert.InDelta(t, 1.1, o.Rect[2].X, eps)
	assert.InDelta(t, -1.5, o.Rect[2].Y, eps)
}

func TestOutlinePointsLayout(t *testing.T) {
	o, err := FrustumOutline(1.5, 2.0, 20, -10, 800, 600)
	require.NoError(t, err)
	pts := o.Points()

	require.Len(t, pts, 17)
	for i := 0; i < 4; i++ {
		assert.Equal(t, o.Rect[i], pts[i])
	}
	assert.Equal(t, pts[0], pts[4])

	zero := math.Vec3{}
	assert.Equal(t, zero, pts[5])
	assert.Equal(t, pts[1], pts[6])
	assert.Equal(t, zero, pts[7])
	assert.Equal(t, pts[2], pts[8])
	assert.Equal(t, zero, pts[9])
	assert.Equal(t, pts[3], pts[10])
	for i := 11; i < 17; i++ {
		assert.Equal(t, zero, pts[i], "point %d", i)
	}

	assert.Equal(t, o.Extents(), ProjectedExtents(pts))
}

func TestOutlineTransform(t *testing.T) {
	o, err := FrustumOutline(1, 1, 0, 0, 1000, 1000)
	require.NoError(t, err)

	world := o.Transform(DefaultRig().CameraMatrix(math.Vec3{X: 5}))
	// The rig camera is turned to look along +Y.
	for _, c := range world.Rect {
		assert.InDelta(t, 1.0, c.Y, 1e-9)
	}
	assert.InDelta(t, 5.0, world.Crosshair[0].From.X, 1e-9)
	assert.InDelta(t, o.Extents().Width, world.Extents().Width, 1e-9)
}

func TestIdempotence(t *testing.T) {
	a, errA := FrustumOutline(1.37, 2.5, 33.3, -12.1, 1400, 1050)
	b, errB := FrustumOutline(1.37, 2.5, 33.3, -12.1, 1400, 1050)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a.Points(), b.Points())

	ta, _ := ComputeTextureTransform(0.7, 5, 5, 3840, 2160)
	tb, _ := ComputeTextureTransform(0.7, 5, 5, 3840, 2160)
	assert.Equal(t, ta, tb)
}

func TestZeroThrowRatioRejected(t *testing.T) {
	for _, tr := range []float64{0, -1, gomath.NaN(), gomath.Inf(1)} {
		_, err := LensFocalLength(tr)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = ComputeLens(tr, 1920, 1080)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = ComputeTextureTransform(tr, 0, 0, 1920, 1080)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = FrustumOutline(tr, 1, 0, 0, 1920, 1080)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	}

	var pe *ParamError
	_, err := FrustumOutline(0, 1, 0, 0, 1920, 1080)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "throw_ratio", pe.Field)
}

func TestZeroSizeRejected(t *testing.T) {
	_, err := ComputeTextureTransform(1, 0, 0, 0, 1080)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = CameraShift(0, 0, 1920, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = FrustumOutline(1, 0, 0, 0, 1920, 1080)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = FrustumOutline(1, 1, gomath.NaN(), 0, 1920, 1080)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestHousingDimensions(t *testing.T) {
	h, err := HousingDimensions(52, 14, 48)
	require.NoError(t, err)
	assert.InDelta(t, 0.52, h.Dimensions.X, eps)
	assert.InDelta(t, 0.14, h.Dimensions.Y, eps)
	assert.InDelta(t, 0.48, h.Dimensions.Z, eps)
	assert.InDelta(t, 0.24, h.ZOffset, eps)

	_, err = HousingDimensions(52, 0, 48)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
