package tableau

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
//
// In configuration a color may be written as a 0xRRGGBB integer, a
// "#rrggbb" or "#rrggbbaa" string, an {r, g, b, a} record, or an
// [r, g, b] / [r, g, b, a] array.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorGlow is the default glow color.
var ColorGlow = Color{1, 1, 0, 1}

// NRGBA converts the color to an 8-bit non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: channel8(c.R),
		G: channel8(c.G),
		B: channel8(c.B),
		A: channel8(c.A),
	}
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c Color) Hex() string {
	n := c.NRGBA()
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

func channel8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}

// ColorFromHex builds an opaque color from a 0xRRGGBB value.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float64(hex>>16&0xff) / 255,
		G: float64(hex>>8&0xff) / 255,
		B: float64(hex&0xff) / 255,
		A: 1,
	}
}

// MarshalJSON encodes the color as a hex string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// UnmarshalJSON accepts every configuration form of a color.
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := colorFromValue(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes the color as a hex string.
func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// UnmarshalYAML accepts every configuration form of a color.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := colorFromValue(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// colorFromValue converts a decoded configuration value (or a transition
// frame) into a Color.
func colorFromValue(v any) (Color, error) {
	switch x := v.(type) {
	case Color:
		return x, nil
	case string:
		return parseColorString(x)
	case map[string]any:
		var c Color
		var err error
		fields := [...]struct {
			key string
			dst *float64
		}{{"r", &c.R}, {"g", &c.G}, {"b", &c.B}, {"a", &c.A}}
		c.A = 1
		for _, f := range fields {
			raw, ok := x[f.key]
			if !ok {
				if f.key == "a" {
					continue
				}
				return Color{}, fmt.Errorf("color record missing %q", f.key)
			}
			if *f.dst, err = toFloat(raw); err != nil {
				return Color{}, fmt.Errorf("color %s: %w", f.key, err)
			}
		}
		return c, nil
	case []any:
		if len(x) != 3 && len(x) != 4 {
			return Color{}, fmt.Errorf("color array needs 3 or 4 components, got %d", len(x))
		}
		comps := [4]float64{0, 0, 0, 1}
		for i, raw := range x {
			f, err := toFloat(raw)
			if err != nil {
				return Color{}, fmt.Errorf("color component %d: %w", i, err)
			}
			comps[i] = f
		}
		return Color{comps[0], comps[1], comps[2], comps[3]}, nil
	case []float64:
		generic := make([]any, len(x))
		for i, f := range x {
			generic[i] = f
		}
		return colorFromValue(generic)
	default:
		n, err := toFloat(v)
		if err != nil {
			return Color{}, fmt.Errorf("unsupported color value %v (%T)", v, v)
		}
		if n < 0 || n > 0xffffff {
			return Color{}, fmt.Errorf("color value %v out of range", n)
		}
		return ColorFromHex(uint32(n)), nil
	}
}

func parseColorString(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color string %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color string %q: %w", s, err)
	}
	if len(hex) == 6 {
		return ColorFromHex(uint32(n)), nil
	}
	c := ColorFromHex(uint32(n >> 8))
	c.A = float64(n&0xff) / 255
	return c, nil
}
