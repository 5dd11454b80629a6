package tableau

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonScene = `{
  "sprites": {
    "bg": {"x": {"value": 0, "anchors": {"self": 0.5, "parent": 0.5}}, "y": {"value": 0, "anchors": {"self": 0.5, "parent": 0.5}}, "zIndex": -1}
  },
  "graphics": {
    "rule": {
      "kind": "line",
      "points": [{"x": {"value": 0, "parent": 0}, "y": {"value": 0, "parent": 0.5}}, {"x": {"value": 0, "parent": 1}, "y": {"value": 0, "parent": 0.5}}],
      "thickness": {"height": 0.01},
      "cap": "round",
      "color": "#ffffff"
    }
  },
  "transitions": {
    "fade": {"kind": "sprites", "property": "alpha", "frames": [0, 1], "times": [0, 250], "include": {"identifiers": ["bg"]}, "repeat": true}
  },
  "aliases": {"bg": {"assetPath": "backgrounds/sky.png"}}
}`

func TestLoadJSON(t *testing.T) {
	cfg, err := LoadJSON(strings.NewReader(jsonScene))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, -1, cfg.Sprites["bg"].ZIndex)
	assert.Equal(t, CapRound, cfg.Graphics["rule"].Cap)
	assert.Len(t, cfg.Graphics["rule"].Points, 2)
	assert.Equal(t, KindSprite, cfg.Transitions["fade"].Kind)
	assert.True(t, cfg.Transitions["fade"].Repeat)
	assert.Equal(t, "backgrounds/sky.png", cfg.Aliases["bg"].AssetPath)

	h := newHarness(t)
	h.load(t, cfg)
	assert.Equal(t, []string{"backgrounds/sky.png"}, h.backend.loaded())

	rule, _ := h.scope.Graphic("rule")
	assert.Equal(t, []Vec2{{0, 0}, {800, 0}}, rule.Geometry.Points)
	assert.InDelta(t, 6.0, rule.Geometry.Thickness, epsilon)
}

func TestLoadJSONUnknownKind(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"transitions": {"t": {"kind": "sound"}}}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"sprite", "sprites"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, KindSprite, k)
	}
	k, err := ParseKind("filters")
	require.NoError(t, err)
	assert.Equal(t, KindFilter, k)

	_, err = ParseKind("Sprite")
	assert.ErrorIs(t, err, ErrUnknownKind)

	text, err := KindContainer.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "container", string(text))
	assert.Equal(t, "kind(9)", Kind(9).String())
	assert.Equal(t, "graphic:panel", Ref{KindGraphic, "panel"}.String())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Graphics: map[string]*GraphicConfig{
			"star":   {Kind: "star"},
			"ring":   {Kind: ShapeCircle},
			"tilted": {Kind: ShapeLine, Rotation: 0.1, Points: []LinePoint{corner(0, 0), corner(1, 1)}},
		},
		Filters: map[string]*FilterConfig{
			"sepia": {Type: "sepia", Include: Include{Tags: []string{"all"}}},
			"lost":  {Type: FilterBlur},
		},
		Transitions: map[string]*TransitionConfig{
			"jerky": {Kind: KindSprite, Property: "x", Easing: "jerk", Frames: []any{0.0}, Times: []float64{0}, Include: Include{Tags: []string{"all"}}},
			"short": {Kind: KindSprite, Property: "x", Frames: []any{0.0, 1.0}, Times: []float64{0}, Include: Include{Tags: []string{"all"}}},
		},
		Sprites: map[string]*SpriteConfig{"empty": nil},
	}

	err := cfg.Validate()
	require.Error(t, err)

	type key struct {
		kind  Kind
		id    string
		field string
	}
	var got []key
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ce *ConfigurationError
		require.True(t, errors.As(e, &ce), "%v", e)
		got = append(got, key{ce.Kind, ce.Identifier, ce.Field})
	}
	assert.ElementsMatch(t, []key{
		{KindGraphic, "ring", "radius"},
		{KindGraphic, "star", "kind"},
		{KindGraphic, "tilted", "rotation"},
		{KindFilter, "lost", "include"},
		{KindFilter, "sepia", "type"},
		{KindTransition, "jerky", "easing"},
		{KindTransition, "short", "times"},
		{KindSprite, "empty", ""},
	}, got)
}

func TestValidateAcceptsDanglingReferences(t *testing.T) {
	cfg := &Config{
		Sprites: map[string]*SpriteConfig{"a": sprite(func(c *SpriteConfig) { c.Parent = "nobody"; c.Mask = "nothing" })},
		Filters: map[string]*FilterConfig{"f": {Type: FilterAlpha, Include: Include{Identifiers: []string{"ghost"}}}},
	}
	assert.NoError(t, cfg.Validate())
}

func TestCloneIsDeepForRecords(t *testing.T) {
	cfg := &Config{
		Sprites: map[string]*SpriteConfig{"a": sprite(), "skip": nil},
		Aliases: map[string]Alias{"a": {AssetPath: "x.png"}},
	}
	cp := cfg.clone()
	cp.Sprites["a"].ZIndex = 4
	cp.Aliases["a"] = Alias{AssetPath: "y.png"}

	assert.Zero(t, cfg.Sprites["a"].ZIndex)
	assert.Equal(t, "x.png", cfg.Aliases["a"].AssetPath)
	assert.NotContains(t, cp.Sprites, "skip")
}

func TestRelativeLength(t *testing.T) {
	parent := Frame{Width: 800, Height: 600}
	assert.InDelta(t, 80.0, OfWidth(0.1).Resolve(parent), epsilon)
	assert.InDelta(t, 60.0, OfHeight(0.1).Resolve(parent), epsilon)
	assert.Zero(t, RelativeLength{}.Resolve(parent))
	assert.True(t, RelativeLength{}.IsZero())
	assert.False(t, OfWidth(0).IsZero())
}

func TestFingerprintTracksContent(t *testing.T) {
	a := spin(0, 1000)
	b := spin(0, 1000)
	assert.Equal(t, fingerprint(a), fingerprint(b))
	b.Repeat = true
	assert.NotEqual(t, fingerprint(a), fingerprint(b))
}
