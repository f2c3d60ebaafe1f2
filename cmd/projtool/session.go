package main

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/projector-rig/internal/assets"
	"github.com/Faultbox/projector-rig/internal/config"
	"github.com/Faultbox/projector-rig/internal/logger"
	"github.com/Faultbox/projector-rig/internal/pattern"
	"github.com/Faultbox/projector-rig/internal/preset"
	"github.com/Faultbox/projector-rig/internal/preview"
	"github.com/Faultbox/projector-rig/internal/projector"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// session is one projector loaded from a preset file, or from the
// configured defaults when no file is given.
type session struct {
	cfg    *config.Config
	store  *assets.Store
	preset *preset.Preset
	proj   *projector.Projector
	update projector.Update
}

// createFunc creates a projector; projector.New and Registry.Create both fit.
type createFunc func(id string, params projection.Parameters, opts ...projector.Option) (*projector.Projector, projector.Update, error)

func openSession(cfg *config.Config, path string, create createFunc) (*session, error) {
	s := &session{cfg: cfg, store: assets.NewStore("")}

	var opts []projector.Option
	if path == "" {
		s.preset = preset.New("default")
		s.preset.Projector = cfg.Projector.Defaults
		if cfg.Projector.RandomColor {
			opts = append(opts, projector.WithRandomColor())
		}
	} else {
		p, err := preset.Load(path)
		if err != nil {
			return nil, err
		}
		s.preset = p
	}

	if size := s.imageSize(); size != nil {
		opts = append(opts, projector.WithCustomImage(*size))
	}

	proj, update, err := create(s.preset.Name, s.preset.Projector, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating projector %q: %w", s.preset.Name, err)
	}
	s.proj = proj
	s.update = update
	return s, nil
}

// imageSize reads the dimensions of the preset's custom image. A missing or unreadable image
// is not fatal; the projector falls back to its default texture size.
func (s *session) imageSize() *projection.Size {
	path := s.preset.ImagePath()
	if path == "" {
		return nil
	}
	size, err := s.store.Size(path)
	if err != nil {
		logger.Warn("Custom image unavailable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return &size
}

// reload applies a freshly loaded preset to the running projector.
func (s *session) reload(p *preset.Preset) (projector.Update, error) {
	if old := s.preset.ImagePath(); old != "" {
		s.store.Forget(old)
	}
	s.preset = p

	change, err := projector.NewChange(projector.FieldParameters, p.Projector)
	if err != nil {
		return projector.Update{}, err
	}
	change.CustomImage = s.imageSize()
	if change.CustomImage == nil {
		if _, bound := s.proj.CustomImage(); bound {
			if _, err := s.proj.SetCustomImage(nil); err != nil {
				return projector.Update{}, err
			}
		}
	}
	return s.proj.Apply(change)
}

// render draws what the projector casts at its focus distance.
func (s *session) render(maxSize int) (*preview.Frame, error) {
	params, d := s.proj.Snapshot()

	var img image.Image
	if params.Texture == projection.CustomTexture {
		if path := s.preset.ImagePath(); path != "" {
			loaded, err := s.store.Image(path)
			if err != nil {
				logger.Warn("Custom image unavailable", zap.String("path", path), zap.Error(err))
			} else {
				img = loaded
			}
		}
	}

	if maxSize <= 0 {
		maxSize = s.cfg.Preview.MaxSize
	}

	pat, err := pattern.New(pattern.Options{
		Transform:     d.Texture,
		Texture:       params.Texture,
		Color:         params.Color,
		Size:          d.Resolution,
		Image:         img,
		MaxImageSize:  maxSize,
		ShowPixelGrid: params.ShowPixelGrid,
	})
	if err != nil {
		return nil, err
	}

	return preview.Render(pat, d.Outline, params.FocusDistance, preview.Options{
		MaxSize:     maxSize,
		Margin:      s.cfg.Preview.Margin,
		ShowOutline: s.cfg.Preview.ShowOutline,
	})
}
