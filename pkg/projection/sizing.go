package projection

import gomath "math"

// ProjectionSize returns the image size on a screen at focusDistance:
// width fd/tr, height (h/w)*fd/tr and their diagonal. It matches
// FrustumOutline's extents when the lens is not shifted.
func ProjectionSize(throwRatio, focusDistance, width, height float64) (Extents, error) {
	if err := requirePositive("throw_ratio", throwRatio); err != nil {
		return Extents{}, err
	}
	if err := requirePositive("focus_distance", focusDistance); err != nil {
		return Extents{}, err
	}
	if err := requireSize(width, height); err != nil {
		return Extents{}, err
	}
	w := focusDistance / throwRatio
	h := w * height / width
	return Extents{Width: w, Height: h, Diagonal: gomath.Hypot(w, h)}, nil
}

// ThrowRatioForWidth returns the throw ratio that makes the image target
// wide at focusDistance.
func ThrowRatioForWidth(target, focusDistance float64) (float64, error) {
	if err := requirePositive("projection_width", target); err != nil {
		return 0, err
	}
	if err := requirePositive("focus_distance", focusDistance); err != nil {
		return 0, err
	}
	return focusDistance / target, nil
}

// ThrowRatioForHeight returns the throw ratio that makes the image target
// tall at focusDistance for a width×height image.
func ThrowRatioForHeight(target, focusDistance, width, height float64) (float64, error) {
	if err := requirePositive("projection_height", target); err != nil {
		return 0, err
	}
	if err := requirePositive("focus_distance", focusDistance); err != nil {
		return 0, err
	}
	if err := requireSize(width, height); err != nil {
		return 0, err
	}
	return focusDistance * height / width / target, nil
}

// ThrowRatioForDiagonal returns the throw ratio that gives the image a
// target diagonal at focusDistance.
func ThrowRatioForDiagonal(target, focusDistance, width, height float64) (float64, error) {
	if err := requirePositive("projection_diagonal", target); err != nil {
		return 0, err
	}
	if err := requirePositive("focus_distance", focusDistance); err != nil {
		return 0, err
	}
	if err := requireSize(width, height); err != nil {
		return 0, err
	}
	return focusDistance * gomath.Hypot(1, height/width) / target, nil
}
