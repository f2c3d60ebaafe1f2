package projector

import (
	"fmt"

	"github.com/Faultbox/projector-rig/internal/pattern"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

func setThrowRatio(tr float64) edit {
	return edit{FieldThrowRatio, throwRatioGroups, func(s *state) error {
		s.params.ThrowRatio = tr
		return nil
	}}
}

func setFocusDistance(fd float64) edit {
	return edit{FieldFocusDistance, focusGroups, func(s *state) error {
		s.params.FocusDistance = fd
		return nil
	}}
}

func setLensShift(h, v float64) edit {
	return edit{FieldLensShift, shiftGroups, func(s *state) error {
		s.params.HShift, s.params.VShift = h, v
		return nil
	}}
}

func setHShift(h float64) edit {
	return edit{FieldHShift, shiftGroups, func(s *state) error {
		s.params.HShift = h
		return nil
	}}
}

func setVShift(v float64) edit {
	return edit{FieldVShift, shiftGroups, func(s *state) error {
		s.params.VShift = v
		return nil
	}}
}

func setResolution(r projection.Resolution) edit {
	return edit{FieldResolution, resolutionGroups, func(s *state) error {
		if err := r.Validate(); err != nil {
			return err
		}
		s.params.Resolution = r
		return nil
	}}
}

func setTexture(t projection.TextureSource) edit {
	return edit{FieldTexture, resolutionGroups, func(s *state) error {
		s.params.Texture = t
		return nil
	}}
}

func setUseCustomTextureRes(on bool) edit {
	return edit{FieldUseCustomTextureRes, resolutionGroups, func(s *state) error {
		s.params.UseCustomTextureRes = on
		return nil
	}}
}

func setCustomImage(size *projection.Size) edit {
	return edit{FieldCustomImage, resolutionGroups, func(s *state) error {
		if size == nil {
			s.custom = nil
			return nil
		}
		c := *size
		s.custom = &c
		return nil
	}}
}

func setColor(c projection.RGB) edit {
	return edit{FieldColor, groupColor, func(s *state) error {
		if err := validateColor(c); err != nil {
			return err
		}
		s.params.Color = c
		return nil
	}}
}

// randomizeColor draws from p.rng, which mutate only touches under p.mu.
func (p *Projector) randomizeColor() edit {
	return edit{FieldRandomColor, groupColor, func(s *state) error {
		s.params.Color = pattern.RandomColor(p.rng)
		return nil
	}}
}

func setPower(w float64) edit {
	return edit{FieldPower, groupPower, func(s *state) error {
		s.params.Power = w
		return nil
	}}
}

func setHousing(field string, cm float64) edit {
	return edit{field, groupHousing, func(s *state) error {
		switch field {
		case FieldProjectorW:
			s.params.ProjectorW = cm
		case FieldProjectorH:
			s.params.ProjectorH = cm
		case FieldProjectorD:
			s.params.ProjectorD = cm
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		return nil
	}}
}

func setShowPixelGrid(on bool) edit {
	return edit{FieldShowPixelGrid, groupPixelGrid, func(s *state) error {
		s.params.ShowPixelGrid = on
		return nil
	}}
}

// setProjectionSize solves the throw ratio for a target width, height or
// diagonal at the current focus distance and resolution.
func setProjectionSize(field string, target float64) edit {
	return edit{field, throwRatioGroups, func(s *state) error {
		res, err := projection.ResolveResolution(s.params, s.custom)
		if err != nil {
			return err
		}
		fd := s.params.FocusDistance

		var tr float64
		switch field {
		case FieldProjectionWidth:
			tr, err = projection.ThrowRatioForWidth(target, fd)
		case FieldProjectionHeight:
			tr, err = projection.ThrowRatioForHeight(target, fd, res.Width, res.Height)
		case FieldProjectionDiagonal:
			tr, err = projection.ThrowRatioForDiagonal(target, fd, res.Width, res.Height)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		if err != nil {
			return err
		}
		s.params.ThrowRatio = tr
		return nil
	}}
}

func setParameters(params projection.Parameters) edit {
	return edit{FieldParameters, groupAll, func(s *state) error {
		if err := validateColor(params.Color); err != nil {
			return err
		}
		s.params = params
		return nil
	}}
}

// withCustomImage binds a custom image size before e runs, as part of the
// same commit.
func withCustomImage(e edit, size projection.Size) edit {
	bind := setCustomImage(&size)
	return edit{e.field, e.groups | bind.groups, func(s *state) error {
		if err := bind.fn(s); err != nil {
			return err
		}
		return e.fn(s)
	}}
}
