package projection

import "github.com/Faultbox/projector-rig/pkg/math"

// HousingUnit converts the user's housing inputs (centimeters) to scene units.
const HousingUnit = 0.01

// Housing is the projector body cuboid.
type Housing struct {
	Dimensions math.Vec3 `json:"dimensions"`
	// ZOffset lifts the cuboid so it sits on the pivot instead of being
	// centered on it.
	ZOffset float64 `json:"z_offset"`
}

// HousingDimensions converts width, height and depth to scene units.
func HousingDimensions(wCm, hCm, dCm float64) (Housing, error) {
	if err := requirePositive("projector_w", wCm); err != nil {
		return Housing{}, err
	}
	if err := requirePositive("projector_h", hCm); err != nil {
		return Housing{}, err
	}
	if err := requirePositive("projector_d", dCm); err != nil {
		return Housing{}, err
	}
	return Housing{
		Dimensions: math.Vec3{X: wCm * HousingUnit, Y: hCm * HousingUnit, Z: dCm * HousingUnit},
		ZOffset:    dCm * HousingUnit / 2,
	}, nil
}
