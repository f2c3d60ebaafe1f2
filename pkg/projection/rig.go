package projection

import (
	gomath "math"

	"github.com/Faultbox/projector-rig/pkg/math"
)

// CheckerScale is the checker texture's scale input.
const CheckerScale = 8.0

// Rig holds the fixed settings applied once when a projector is created.
type Rig struct {
	SensorWidth       float64   `json:"sensor_width"`
	CameraDisplaySize float64   `json:"camera_display_size"`
	CameraRotation    math.Vec3 `json:"camera_rotation"` // XYZ euler, radians

	SpotSize           float64   `json:"spot_size"` // cone angle, radians
	SpotBlend          float64   `json:"spot_blend"`
	SpotShadowSoftSize float64   `json:"spot_shadow_soft_size"`
	SpotScale          math.Vec3 `json:"spot_scale"`

	BaseFlip      math.Vec2 `json:"base_flip"`
	CheckerScale  float64   `json:"checker_scale"`
	CheckerColor1 RGB       `json:"checker_color1"`
}

// DefaultRig returns the creation-time settings. The spot cone is opened to
// just under a half sphere so the texture, not the cone, bounds the image.
func DefaultRig() Rig {
	return Rig{
		SensorWidth:       SensorWidth,
		CameraDisplaySize: 0.01,
		CameraRotation:    math.Vec3{X: gomath.Pi / 2},

		SpotSize:           gomath.Pi - 0.001,
		SpotBlend:          0,
		SpotShadowSoftSize: 0,
		SpotScale:          math.Vec3{X: 0.01, Y: 0.01, Z: 0.01},

		BaseFlip:      BaseFlip,
		CheckerScale:  CheckerScale,
		CheckerColor1: RGB{1, 1, 1},
	}
}

// CameraMatrix returns the projector's local-to-world transform when placed
// at location with the rig's camera rotation.
func (r Rig) CameraMatrix(location math.Vec3) math.Mat4 {
	rot := math.EulerXYZ(r.CameraRotation.X, r.CameraRotation.Y, r.CameraRotation.Z)
	return math.Translate(location.X, location.Y, location.Z).Mul(rot)
}
