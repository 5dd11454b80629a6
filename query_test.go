package tableau

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitTestPicksTopmost(t *testing.T) {
	h := newHarness(t)
	h.load(t, &Config{
		Sprites: map[string]*SpriteConfig{
			"bg":   sprite(func(c *SpriteConfig) { c.Width, c.Height = f64(1), f64(1) }),
			"hero": sprite(func(c *SpriteConfig) { c.ZIndex = 2; c.OnClick = []string{"jump"} }),
		},
		Graphics: map[string]*GraphicConfig{
			"panel": rect(0.5, 0.5, func(c *GraphicConfig) { c.ZIndex = 1 }),
		},
	})

	hit, ok := h.scope.HitTest(400, 300)
	require.True(t, ok)
	assert.Equal(t, "hero", hit.Identifier)
	assert.Equal(t, KindSprite, hit.Kind)
	cfg, ok := hit.Config.(*SpriteConfig)
	require.True(t, ok)
	assert.Equal(t, []string{"jump"}, cfg.OnClick)

	hit, ok = h.scope.HitTest(250, 300)
	require.True(t, ok)
	assert.Equal(t, "panel", hit.Identifier)
	assert.Equal(t, KindGraphic, hit.Kind)

	hit, ok = h.scope.HitTest(20, 20)
	require.True(t, ok)
	assert.Equal(t, "bg", hit.Identifier)

	_, ok = h.scope.HitTest(-10, -10)
	assert.False(t, ok)
}

func TestHitTestTieGoesToLastDrawn(t *testing.T) {
	h := newHarness(t)
	h.load(t, &Config{Sprites: map[string]*SpriteConfig{"a": sprite(), "b": sprite()}})

	hit, ok := h.scope.HitTest(400, 300)
	require.True(t, ok)
	assert.Equal(t, "b", hit.Identifier)
}

func TestHitTestReturnsCopy(t *testing.T) {
	h := newHarness(t)
	h.load(t, &Config{Sprites: map[string]*SpriteConfig{"a": sprite()}})

	hit, _ := h.scope.HitTest(400, 300)
	hit.Config.(*SpriteConfig).ZIndex = 99

	a, _ := h.scope.Sprite("a")
	cfg, _ := h.scope.sprites.Config(a)
	assert.Zero(t, cfg.ZIndex)
}

func TestHitTestSkipsMasks(t *testing.T) {
	h := newHarness(t)
	h.load(t, &Config{
		Sprites:  map[string]*SpriteConfig{"hero": sprite(func(c *SpriteConfig) { c.Mask = "window" })},
		Graphics: map[string]*GraphicConfig{"window": rect(0.5, 0.5, func(c *GraphicConfig) { c.ZIndex = 5 })},
	})

	hit, ok := h.scope.HitTest(400, 300)
	require.True(t, ok)
	assert.Equal(t, "hero", hit.Identifier)

	_, ok = h.scope.HitTest(250, 300)
	assert.False(t, ok)
}

func leftEdge() *SpriteConfig {
	return sprite(func(c *SpriteConfig) { c.X = pos(0, 0, 0) })
}

func TestHitTestFlippedScene(t *testing.T) {
	h := newHarness(t, WithFlipped(true))
	h.load(t, &Config{Sprites: map[string]*SpriteConfig{"left": leftEdge()}})
	assert.True(t, h.scope.Flipped())

	hit, ok := h.scope.HitTest(750, 300)
	require.True(t, ok)
	assert.Equal(t, "left", hit.Identifier)

	_, ok = h.scope.HitTest(50, 300)
	assert.False(t, ok)
}

func TestHitTestFlippedContainer(t *testing.T) {
	h := newHarness(t)
	h.load(t, &Config{
		Containers: map[string]*ContainerConfig{"mirror": {X: Centered(), Y: Centered(), Flipped: true}},
		Sprites: map[string]*SpriteConfig{"left": sprite(func(c *SpriteConfig) {
			c.X = pos(0, 0, 0)
			c.Parent = "mirror"
		})},
	})

	hit, ok := h.scope.HitTest(750, 300)
	require.True(t, ok)
	assert.Equal(t, "left", hit.Identifier)

	_, ok = h.scope.HitTest(50, 300)
	assert.False(t, ok)
}

func TestHitMarshalJSON(t *testing.T) {
	h := newHarness(t)
	h.load(t, &Config{Sprites: map[string]*SpriteConfig{
		"hero": sprite(func(c *SpriteConfig) { c.ZIndex = 3; c.OnClick = []string{"open"} }),
	}})
	hit, ok := h.scope.HitTest(400, 300)
	require.True(t, ok)

	data, err := json.Marshal(hit)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "hero", record["identifier"])
	assert.Equal(t, 3.0, record["zIndex"])
	assert.Equal(t, []any{"open"}, record["onClick"])
}
