package projection

import (
	gomath "math"

	"github.com/Faultbox/projector-rig/pkg/math"
)

// SensorWidth is the fixed camera sensor width in millimeters. With it the
// focal length is simply ten times the throw ratio.
const SensorWidth = 10.0

// Lens holds the camera lens attributes derived from the throw ratio.
type Lens struct {
	FocalLength   float64 `json:"focal_length"` // millimeters
	SensorWidth   float64 `json:"sensor_width"` // millimeters
	HorizontalFOV float64 `json:"horizontal_fov"`
	VerticalFOV   float64 `json:"vertical_fov"`
}

// LensFocalLength returns 10 * throwRatio.
func LensFocalLength(throwRatio float64) (float64, error) {
	if err := requirePositive("throw_ratio", throwRatio); err != nil {
		return 0, err
	}
	return SensorWidth * throwRatio, nil
}

// ComputeLens derives focal length and field of view. The vertical angle uses
// the sensor height implied by the image aspect.
func ComputeLens(throwRatio, width, height float64) (Lens, error) {
	focal, err := LensFocalLength(throwRatio)
	if err != nil {
		return Lens{}, err
	}
	if err := requireSize(width, height); err != nil {
		return Lens{}, err
	}
	return Lens{
		FocalLength:   focal,
		SensorWidth:   SensorWidth,
		HorizontalFOV: FieldOfView(SensorWidth, focal),
		VerticalFOV:   FieldOfView(SensorWidth*height/width, focal),
	}, nil
}

// FieldOfView returns the angle in radians covered by a sensor extent at the
// given focal length: 2 * atan(extent / (2 * focal)).
func FieldOfView(sensorExtent, focalLength float64) float64 {
	return 2 * gomath.Atan(sensorExtent/(2*focalLength))
}

// CameraShift returns the camera's physical lens shift as a fraction of the
// image plane: (h/100, (height/width) * v/100).
//
// Unlike the texture shift this is not divided by the throw ratio; the two
// live in different spaces.
func CameraShift(hShiftPct, vShiftPct, width, height float64) (math.Vec2, error) {
	if err := requireSize(width, height); err != nil {
		return math.Vec2{}, err
	}
	if err := requireFinite("h_shift", hShiftPct); err != nil {
		return math.Vec2{}, err
	}
	if err := requireFinite("v_shift", vShiftPct); err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{
		X: hShiftPct / 100,
		Y: height / width * (vShiftPct / 100),
	}, nil
}
