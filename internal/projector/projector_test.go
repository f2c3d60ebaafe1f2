package projector

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

func newProjector(t *testing.T, opts ...Option) *Projector {
	t.Helper()
	p, _, err := New("p1", projection.DefaultParameters(), opts...)
	require.NoError(t, err)
	return p
}

func socket(t *testing.T, u Update, path string) any {
	t.Helper()
	for _, s := range u.Sockets() {
		if s.Path == path {
			return s.Value
		}
	}
	t.Fatalf("socket %q not in update", path)
	return nil
}

func hasSocket(u Update, path string) bool {
	for _, s := range u.Sockets() {
		if s.Path == path {
			return true
		}
	}
	return false
}

func TestNewInitialUpdate(t *testing.T) {
	p, u, err := New("p1", projection.DefaultParameters())
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID())
	assert.Equal(t, "p1", u.ID)

	require.NotNil(t, u.Rig)
	require.NotNil(t, u.Lens)
	require.NotNil(t, u.Texture)
	require.NotNil(t, u.CameraShift)
	require.NotNil(t, u.Outline)
	require.NotNil(t, u.Extents)
	require.NotNil(t, u.Housing)
	require.NotNil(t, u.LightPower)
	require.NotNil(t, u.CheckerColor)
	require.NotNil(t, u.PixelGrid)
	require.NotNil(t, u.PatternFeed)
	require.NotNil(t, u.ImageName)

	assert.Equal(t, 10.0, u.Lens.FocalLength)
	assert.Equal(t, 100.0, *u.LightPower)
	assert.Equal(t, "_proj.tex.1920x1080", *u.ImageName)
	assert.Equal(t, "Mix.001", u.PatternFeed.Node)
	assert.InDelta(t, 1.0, u.Extents.Width, 1e-12)
	assert.InDelta(t, 0.5625, u.Extents.Height, 1e-12)
	assert.InDelta(t, 0.52, u.Housing.Dimensions.X, 1e-12)
	assert.InDelta(t, 0.24, u.Housing.ZOffset, 1e-12)
	assert.False(t, u.PixelGrid.Visible)
	assert.Equal(t, 1920.0, u.PixelGrid.Width)

	assert.Equal(t, 10.0, socket(t, u, "camera.lens"))
	assert.Equal(t, 8.0, socket(t, u, "Checker Texture.Scale"))
}

func TestNewRejectsInvalid(t *testing.T) {
	params := projection.DefaultParameters()
	params.ThrowRatio = 0
	_, _, err := New("bad", params)
	assert.ErrorIs(t, err, projection.ErrInvalidParameter)

	params = projection.DefaultParameters()
	params.Color.G = -1
	_, _, err = New("bad", params)
	assert.ErrorIs(t, err, projection.ErrInvalidParameter)
}

func TestNewRandomColor(t *testing.T) {
	a := newProjector(t, WithRandomColor(), WithRand(rand.New(rand.NewPCG(3, 4))))
	b := newProjector(t, WithRandomColor(), WithRand(rand.New(rand.NewPCG(3, 4))))
	assert.Equal(t, a.Parameters().Color, b.Parameters().Color)
	assert.NotEqual(t, projection.RGB{R: 1, G: 1, B: 1}, a.Parameters().Color)
}

func TestSetThrowRatioGroups(t *testing.T) {
	p := newProjector(t)
	u, err := p.SetThrowRatio(2)
	require.NoError(t, err)

	require.NotNil(t, u.Lens)
	assert.Equal(t, 20.0, u.Lens.FocalLength)
	assert.NotNil(t, u.Texture)
	assert.NotNil(t, u.CameraShift)
	assert.NotNil(t, u.Outline)
	assert.NotNil(t, u.Extents)
	assert.NotNil(t, u.PatternFeed)

	assert.Nil(t, u.Housing)
	assert.Nil(t, u.LightPower)
	assert.Nil(t, u.CheckerColor)
	assert.Nil(t, u.PixelGrid)
	assert.Nil(t, u.ImageName)
	assert.Nil(t, u.Rig)

	assert.Equal(t, [3]float64{-0.5, -0.28125, 1}, socket(t, u, "Mapping.Scale"))
	assert.Equal(t, [3]float64{0, 0, 0}, socket(t, u, "Mapping.001.Location"))
	assert.InDelta(t, 0.5, u.Extents.Width, 1e-12)
}

func TestRejectedUpdateKeepsState(t *testing.T) {
	p := newProjector(t)
	beforeParams, beforeDerived := p.Snapshot()

	tests := []struct {
		name string
		set  func() (Update, error)
	}{
		{"zero throw ratio", func() (Update, error) { return p.SetThrowRatio(0) }},
		{"negative focus", func() (Update, error) { return p.SetFocusDistance(-1) }},
		{"shift too large", func() (Update, error) { return p.SetHShift(150) }},
		{"nan shift", func() (Update, error) { return p.SetVShift(nanValue()) }},
		{"zero housing", func() (Update, error) { return p.SetHousingW(0) }},
		{"bad color", func() (Update, error) { return p.SetColor(projection.RGB{R: -0.5}) }},
		{"zero projection width", func() (Update, error) { return p.SetProjectionWidth(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.set()
			assert.ErrorIs(t, err, projection.ErrInvalidParameter)
			assert.True(t, u.Empty())

			params, derived := p.Snapshot()
			assert.Equal(t, beforeParams, params)
			assert.Equal(t, beforeDerived, derived)
		})
	}
}

func TestSetFocusDistanceOnlyOutline(t *testing.T) {
	p := newProjector(t)
	u, err := p.SetFocusDistance(3)
	require.NoError(t, err)

	assert.NotNil(t, u.Outline)
	assert.NotNil(t, u.Extents)
	assert.Nil(t, u.Lens)
	assert.Nil(t, u.Texture)
	assert.InDelta(t, -3, u.Outline[0].Z, 1e-12)
	assert.InDelta(t, 3, u.Extents.Width, 1e-12)
}

func TestSetLensShift(t *testing.T) {
	p := newProjector(t)
	u, err := p.SetLensShift(20, -40)
	require.NoError(t, err)

	require.NotNil(t, u.CameraShift)
	assert.InDelta(t, 0.2, u.CameraShift.X, 1e-12)
	assert.InDelta(t, -0.4*0.5625, u.CameraShift.Y, 1e-12)
	require.NotNil(t, u.Texture)
	assert.InDelta(t, 0.2, u.Texture.Shift.X, 1e-12)
	assert.Nil(t, u.Lens)

	params := p.Parameters()
	assert.Equal(t, 20.0, params.HShift)
	assert.Equal(t, -40.0, params.VShift)
}

func TestSetResolution(t *testing.T) {
	p := newProjector(t)

	_, err := p.SetResolution("123x")
	assert.ErrorIs(t, err, projection.ErrMalformedResolution)

	u, err := p.SetResolution("1280x800")
	require.NoError(t, err)
	require.NotNil(t, u.ImageName)
	assert.Equal(t, "_proj.tex.1280x800", *u.ImageName)
	require.NotNil(t, u.PixelGrid)
	assert.Equal(t, 1280.0, u.PixelGrid.Width)
	assert.Equal(t, 800.0, u.PixelGrid.Height)
	assert.InDelta(t, 0.625, u.Extents.Height, 1e-12)
}

func TestCustomTextureResolution(t *testing.T) {
	p := newProjector(t)

	_, err := p.SetTexture(projection.CustomTexture)
	require.NoError(t, err)
	assert.Equal(t, projection.FallbackSize, p.Derived().Resolution, "no image bound")
	assert.Equal(t, projection.RootScope, p.Derived().PatternFeed.Scope)

	_, err = p.SetCustomImage(&projection.Size{Width: 640, Height: 480})
	require.NoError(t, err)
	assert.Equal(t, projection.Size{Width: 640, Height: 480}, p.Derived().Resolution)

	_, err = p.SetUseCustomTextureRes(false)
	require.NoError(t, err)
	assert.Equal(t, projection.Size{Width: 1920, Height: 1080}, p.Derived().Resolution)

	_, err = p.SetUseCustomTextureRes(true)
	require.NoError(t, err)
	_, err = p.SetCustomImage(nil)
	require.NoError(t, err)
	_, ok := p.CustomImage()
	assert.False(t, ok)
	assert.Equal(t, projection.FallbackSize, p.Derived().Resolution)
}

func TestProjectionSizeSetters(t *testing.T) {
	p := newProjector(t)
	_, err := p.SetFocusDistance(2)
	require.NoError(t, err)

	_, err = p.SetProjectionWidth(4)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p.Parameters().ThrowRatio, 1e-12)
	assert.InDelta(t, 4, p.Derived().Extents.Width, 1e-12)

	_, err = p.SetProjectionHeight(1.125)
	require.NoError(t, err)
	assert.InDelta(t, 1.125, p.Derived().Extents.Height, 1e-12)

	u, err := p.SetProjectionDiagonal(3)
	require.NoError(t, err)
	require.NotNil(t, u.Lens)
	assert.InDelta(t, 3, p.Derived().Extents.Diagonal, 1e-12)
}

func TestOtherSetters(t *testing.T) {
	p := newProjector(t, WithRand(rand.New(rand.NewPCG(1, 1))))

	u, err := p.SetPower(250)
	require.NoError(t, err)
	require.NotNil(t, u.LightPower)
	assert.Equal(t, 250.0, *u.LightPower)
	assert.Equal(t, 250.0, socket(t, u, "Spot.energy"))

	u, err = p.SetColor(projection.RGB{R: 0.2, G: 0.4, B: 0.6})
	require.NoError(t, err)
	assert.Equal(t, [4]float64{0.2, 0.4, 0.6, 1}, socket(t, u, "Checker Texture.Color2"))

	u, err = p.RandomizeColor()
	require.NoError(t, err)
	require.NotNil(t, u.CheckerColor)
	assert.NotEqual(t, projection.RGB{R: 0.2, G: 0.4, B: 0.6}, *u.CheckerColor)

	u, err = p.SetHousingD(60)
	require.NoError(t, err)
	require.NotNil(t, u.Housing)
	assert.InDelta(t, 0.3, u.Housing.ZOffset, 1e-12)
	assert.False(t, hasSocket(u, "camera.lens"))

	u, err = p.SetShowPixelGrid(true)
	require.NoError(t, err)
	assert.Equal(t, true, socket(t, u, "pixel_grid.enabled"))
}

func TestApply(t *testing.T) {
	p := newProjector(t)

	c, err := NewChange(FieldThrowRatio, 1.5)
	require.NoError(t, err)
	u, err := p.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, 15.0, u.Lens.FocalLength)

	u, err = p.Apply(Change{Field: FieldTexture, Value: json.RawMessage(`"color_grid_texture"`)})
	require.NoError(t, err)
	assert.Equal(t, projection.ColorGrid, p.Parameters().Texture)
	assert.Equal(t, "Image Texture", u.PatternFeed.Node)

	_, err = p.Apply(Change{Field: FieldLensShift, Value: json.RawMessage(`{"h": 10, "v": -20}`)})
	require.NoError(t, err)
	assert.Equal(t, -20.0, p.Parameters().VShift)

	_, err = p.Apply(Change{Field: FieldResolution, Value: json.RawMessage(`"800x600"`)})
	require.NoError(t, err)
	assert.Equal(t, projection.Resolution("800x600"), p.Parameters().Resolution)

	_, err = p.Apply(Change{Field: FieldShowPixelGrid, Value: json.RawMessage(`true`)})
	require.NoError(t, err)
	assert.True(t, p.Parameters().ShowPixelGrid)

	_, err = p.Apply(Change{Field: FieldColor, Value: json.RawMessage(`{"r": 1, "g": 0, "b": 0}`)})
	require.NoError(t, err)
	assert.Equal(t, projection.RGB{R: 1}, p.Parameters().Color)

	_, err = p.Apply(Change{Field: FieldRandomColor})
	require.NoError(t, err)
}

func TestApplyErrors(t *testing.T) {
	p := newProjector(t)

	_, err := p.Apply(Change{Field: "zoom", Value: json.RawMessage(`2`)})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = p.Apply(Change{Field: FieldThrowRatio})
	assert.Error(t, err, "missing value")

	_, err = p.Apply(Change{Field: FieldThrowRatio, Value: json.RawMessage(`"fast"`)})
	assert.Error(t, err)

	_, err = p.Apply(Change{Field: FieldTexture, Value: json.RawMessage(`"video"`)})
	assert.ErrorIs(t, err, projection.ErrUnknownTextureSource)

	_, err = p.Apply(Change{Field: FieldThrowRatio, Value: json.RawMessage(`0`)})
	assert.ErrorIs(t, err, projection.ErrInvalidParameter)
	assert.Equal(t, 1.0, p.Parameters().ThrowRatio)
}

func TestApplyCustomImageIsAtomic(t *testing.T) {
	p := newProjector(t)
	_, err := p.SetTexture(projection.CustomTexture)
	require.NoError(t, err)

	_, err = p.Apply(Change{
		Field:       FieldThrowRatio,
		Value:       json.RawMessage(`0`),
		CustomImage: &projection.Size{Width: 800, Height: 600},
	})
	require.Error(t, err)
	_, ok := p.CustomImage()
	assert.False(t, ok, "failed change must not bind the image")

	u, err := p.Apply(Change{
		Field:       FieldThrowRatio,
		Value:       json.RawMessage(`2`),
		CustomImage: &projection.Size{Width: 800, Height: 600},
	})
	require.NoError(t, err)
	require.NotNil(t, u.PixelGrid, "image binding refreshes the pixel grid")
	assert.Equal(t, 800.0, u.PixelGrid.Width)
	assert.Equal(t, projection.Size{Width: 800, Height: 600}, p.Derived().Resolution)

	_, err = p.Apply(Change{Field: FieldCustomImage, Value: json.RawMessage(`null`)})
	require.NoError(t, err)
	_, ok = p.CustomImage()
	assert.False(t, ok)

	_, err = p.Apply(Change{Field: FieldCustomImage, Value: json.RawMessage(`{"width": 100, "height": 50}`)})
	require.NoError(t, err)
	size, ok := p.CustomImage()
	assert.True(t, ok)
	assert.Equal(t, 100.0, size.Width)
}

func TestApplyParametersMerges(t *testing.T) {
	p := newProjector(t)
	u, err := p.Apply(Change{Field: FieldParameters, Value: json.RawMessage(`{"power": 50, "h_shift": 5}`)})
	require.NoError(t, err)

	params := p.Parameters()
	assert.Equal(t, 50.0, params.Power)
	assert.Equal(t, 5.0, params.HShift)
	assert.Equal(t, 1.0, params.ThrowRatio)
	assert.NotNil(t, u.Housing)
	assert.Nil(t, u.Rig)
}

func TestUpdateJSON(t *testing.T) {
	p := newProjector(t)
	u, err := p.SetPower(42)
	require.NoError(t, err)

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "p1", m["id"])
	assert.Equal(t, 42.0, m["light_power"])
	assert.NotContains(t, m, "lens")
	assert.NotContains(t, m, "outline")
}

func TestGroupString(t *testing.T) {
	assert.Equal(t, "outline", focusGroups.String())
	assert.Equal(t, "texture|camera_shift|outline", shiftGroups.String())
}

func TestConcurrentUpdatesStayConsistent(t *testing.T) {
	p := newProjector(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr := 0.5 + float64((i+j)%10)*0.25
				if _, err := p.SetThrowRatio(tr); err != nil {
					t.Errorf("SetThrowRatio(%v): %v", tr, err)
					return
				}
				params, d := p.Snapshot()
				if d.Lens.FocalLength != 10*params.ThrowRatio {
					t.Errorf("focal length %v does not match throw ratio %v", d.Lens.FocalLength, params.ThrowRatio)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestNonStandardResolutionRejectedEverywhere(t *testing.T) {
	params := projection.DefaultParameters()
	params.Resolution = "7x3"

	_, _, err := New("odd", params)
	assert.ErrorIs(t, err, projection.ErrMalformedResolution)

	p := newProjector(t)
	_, err = p.SetParameters(params)
	assert.ErrorIs(t, err, projection.ErrMalformedResolution)
	_, err = p.SetResolution("7x3")
	assert.ErrorIs(t, err, projection.ErrMalformedResolution)
	assert.Equal(t, projection.DefaultResolution, p.Parameters().Resolution)
}
