package tableau

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTexture struct{ w, h int }

func (t fakeTexture) Size() (int, int) { return t.w, t.h }

// fakeBackend serves textures of fixed sizes and records every request.
type fakeBackend struct {
	viewport Vec2
	sizes    map[string]fakeTexture
	failing  map[string]bool
	onLoad   func(path string)

	mu    sync.Mutex
	loads []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		viewport: Vec2{800, 600},
		sizes:    map[string]fakeTexture{},
		failing:  map[string]bool{},
	}
}

func (b *fakeBackend) Viewport() Vec2 { return b.viewport }

func (b *fakeBackend) LoadTexture(ctx context.Context, path string) (Texture, error) {
	if b.onLoad != nil {
		b.onLoad(path)
	}
	b.mu.Lock()
	b.loads = append(b.loads, path)
	b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.failing[path] {
		return nil, errors.New("decode failed")
	}
	if tex, ok := b.sizes[path]; ok {
		return tex, nil
	}
	return fakeTexture{100, 100}, nil
}

func (b *fakeBackend) loaded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.loads...)
}

// fakeClock is a manually advanced session clock.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Add(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	scope   *Scope
	backend *fakeBackend
	clock   *fakeClock
	logs    *observer.ObservedLogs
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &harness{
		backend: newFakeBackend(),
		clock:   &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		logs:    logs,
	}
	opts = append([]Option{WithLogger(zap.New(core)), WithClock(h.clock.Now)}, opts...)
	h.scope = NewScope(h.backend, opts...)
	return h
}

func (h *harness) load(t *testing.T, cfg *Config) {
	t.Helper()
	require.NoError(t, h.scope.Load(context.Background(), cfg))
}

func f64(v float64) *float64 { return &v }

func sprite(mods ...func(*SpriteConfig)) *SpriteConfig {
	cfg := &SpriteConfig{X: Centered(), Y: Centered()}
	for _, m := range mods {
		m(cfg)
	}
	return cfg
}

func rect(w, h float64, mods ...func(*GraphicConfig)) *GraphicConfig {
	cfg := &GraphicConfig{Kind: ShapeRectangle, X: Centered(), Y: Centered(), Width: w, Height: h, Color: ColorWhite}
	for _, m := range mods {
		m(cfg)
	}
	return cfg
}
