// Package ebitenstage draws a tableau scope with Ebitengine and serves its
// textures from a file system.
package ebitenstage

import (
	"context"
	"fmt"
	_ "image/jpeg" // register decoders for LoadTexture
	_ "image/png"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/phanxgames/tableau"
)

// Texture is an Ebitengine image handed to the scope as a sprite texture.
type Texture struct {
	Image *ebiten.Image
}

// Size implements tableau.Texture.
func (t *Texture) Size() (int, int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Option configures a Stage.
type Option func(*Stage)

// WithLogger sets the logger used for texture loads.
func WithLogger(l *zap.Logger) Option {
	return func(s *Stage) { s.logger = l }
}

// WithDebug prints per-frame draw stats to stderr.
func WithDebug(enabled bool) Option {
	return func(s *Stage) { s.debug = enabled }
}

// Stage is the Ebitengine backend of a tableau scope: it reports the
// viewport, decodes textures and draws the resolved scene.
type Stage struct {
	width, height int
	fsys          fs.FS
	logger        *zap.Logger
	debug         bool

	pool    layerPool
	filters map[*tableau.Filter]*filterPass
	meshes  meshBuffers
}

// New returns a stage with a width×height viewport. Textures are read from
// fsys; a nil fsys reads from the working directory.
func New(width, height int, fsys fs.FS, opts ...Option) *Stage {
	s := &Stage{
		width:   width,
		height:  height,
		fsys:    fsys,
		logger:  zap.NewNop(),
		filters: make(map[*tableau.Filter]*filterPass),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Viewport implements tableau.Backend.
func (s *Stage) Viewport() tableau.Vec2 {
	return tableau.Vec2{X: float64(s.width), Y: float64(s.height)}
}

// Size returns the viewport in pixels.
func (s *Stage) Size() (int, int) { return s.width, s.height }

// LoadTexture implements tableau.Backend.
func (s *Stage) LoadTexture(ctx context.Context, path string) (tableau.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		img *ebiten.Image
		err error
	)
	if s.fsys != nil {
		img, _, err = ebitenutil.NewImageFromFileSystem(s.fsys, path)
	} else {
		img, _, err = ebitenutil.NewImageFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("ebitenstage: decode %s: %w", path, err)
	}
	s.logger.Debug("texture loaded", zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return &Texture{Image: img}, nil
}
