package ebitenstage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/tableau"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStageViewport(t *testing.T) {
	s := New(800, 600, nil)
	assert.Equal(t, tableau.Vec2{X: 800, Y: 600}, s.Viewport())
	w, h := s.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestStageLoadTexture(t *testing.T) {
	fsys := fstest.MapFS{"img/hero.png": {Data: pngBytes(t, 3, 2)}}
	s := New(800, 600, fsys)

	tex, err := s.LoadTexture(context.Background(), "img/hero.png")
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
	assert.IsType(t, &Texture{}, tex)

	_, err = s.LoadTexture(context.Background(), "img/missing.png")
	assert.ErrorContains(t, err, "img/missing.png")
}

func TestStageLoadTextureCanceled(t *testing.T) {
	s := New(800, 600, fstest.MapFS{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.LoadTexture(ctx, "a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageServesScope(t *testing.T) {
	fsys := fstest.MapFS{"hero.png": {Data: pngBytes(t, 10, 20)}}
	scope := tableau.NewScope(New(800, 600, fsys))
	require.NoError(t, scope.Load(context.Background(), &tableau.Config{
		Sprites: map[string]*tableau.SpriteConfig{
			"hero": {X: tableau.Centered(), Y: tableau.Centered()},
		},
	}))
	hero, ok := scope.Sprite("hero")
	require.True(t, ok)
	assert.Equal(t, 10.0, hero.Width)
	assert.Equal(t, 20.0, hero.Height)
}

func TestPoolReuse(t *testing.T) {
	var p layerPool
	img := p.acquire(100, 60)
	b := img.Bounds()
	assert.Equal(t, 128, b.Dx())
	assert.Equal(t, 64, b.Dy())
	assert.Equal(t, 1, p.live)

	p.release(img)
	assert.Zero(t, p.live)
	assert.Same(t, img, p.acquire(120, 33))

	other := p.acquire(120, 33)
	assert.NotSame(t, img, other)
	p.release(other)
	p.release(img)
	p.release(nil)
	assert.Zero(t, p.live)
	assert.Len(t, p.buckets[poolKey(128, 64)], 2)
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8},
		{600, 1024}, {800, 1024}, {1024, 1024}, {1025, 2048},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPowerOfTwo(tt.in), "nextPowerOfTwo(%d)", tt.in)
	}
}

func TestBlurPasses(t *testing.T) {
	tests := []struct{ radius, want int }{{0, 1}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {8, 3}, {9, 4}}
	for _, tt := range tests {
		assert.Equal(t, tt.want, blurPasses(tt.radius), "radius %d", tt.radius)
	}
}

func TestColorMatrices(t *testing.T) {
	a := alphaMatrix(0.25)
	assert.Equal(t, 0.25, a[18])
	assert.Equal(t, 1.0, a[0])

	b := brightnessMatrix(1.5)
	assert.Equal(t, []float64{1.5, 1.5, 1.5, 1}, []float64{b[0], b[6], b[12], b[18]})

	s := silhouetteMatrix(tableau.ColorGlow)
	assert.Equal(t, []float64{1, 1, 0}, []float64{s[4], s[9], s[14]})
	assert.Zero(t, s[0])
}

func TestFilterPassesFollowScope(t *testing.T) {
	s := New(800, 600, nil)
	f := &tableau.Filter{Type: tableau.FilterBlur}
	p := s.pass(f)
	assert.Same(t, p, s.pass(f))

	f.Dispose()
	s.sweepFilters()
	assert.Empty(t, s.filters)
}
