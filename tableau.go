package tableau

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Frame is the resolved geometry a child is positioned against: an absolute
// center, an extent, and a rotation in radians.
type Frame struct {
	X, Y          float64
	Width, Height float64
	Rotation      float64
}

// Kind is the closed set of entity kinds a configuration can describe.
type Kind uint8

const (
	KindSprite     Kind = iota // image-backed visual
	KindGraphic                // vector shape visual
	KindContainer              // group with size, alpha, mask and flip
	KindFilter                 // post-processing effect attached to visuals
	KindTransition             // keyframe timeline targeting one of the above
)

var kindNames = [...]string{
	KindSprite:     "sprite",
	KindGraphic:    "graphic",
	KindContainer:  "container",
	KindFilter:     "filter",
	KindTransition: "transition",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a configuration name ("sprite", "graphic", ...) into a
// Kind. Plural forms are accepted.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if s == name || s == name+"s" {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Ref names an entity across kind namespaces.
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string {
	return r.Kind.String() + ":" + r.ID
}

// turnsToRadians converts configuration rotation (full turns) to radians.
func turnsToRadians(turns float64) float64 {
	return turns * 2 * math.Pi
}
