package tableau

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is one scene snapshot. Each kind maps identifiers to records; the
// identifiers are unique within a kind. It decodes from JSON or YAML.
type Config struct {
	Sprites     map[string]*SpriteConfig     `json:"sprites,omitempty" yaml:"sprites,omitempty" jsonschema:"description=Image-backed visuals keyed by identifier"`
	Graphics    map[string]*GraphicConfig    `json:"graphics,omitempty" yaml:"graphics,omitempty" jsonschema:"description=Vector shapes keyed by identifier"`
	Containers  map[string]*ContainerConfig  `json:"containers,omitempty" yaml:"containers,omitempty" jsonschema:"description=Groups carrying size, alpha, mask and flip"`
	Filters     map[string]*FilterConfig     `json:"filters,omitempty" yaml:"filters,omitempty" jsonschema:"description=Post-processing effects attached by identifier or tag"`
	Transitions map[string]*TransitionConfig `json:"transitions,omitempty" yaml:"transitions,omitempty" jsonschema:"description=Keyframe timelines driving entity properties"`
	Aliases     map[string]Alias             `json:"aliases,omitempty" yaml:"aliases,omitempty" jsonschema:"description=Logical identifiers mapped to asset paths"`
}

// Alias maps a logical identifier to an asset path.
type Alias struct {
	AssetPath string `json:"assetPath" yaml:"assetPath" jsonschema:"required,minLength=1"`
}

// Anchors selects the aligned point on the entity itself and the reference
// point on its parent. 0 is the near edge, 0.5 the center and 1 the far edge.
type Anchors struct {
	Self   float64 `json:"self" yaml:"self" jsonschema:"description=Aligned point on the entity"`
	Parent float64 `json:"parent" yaml:"parent" jsonschema:"description=Reference point on the parent"`
}

// AnchoredPosition is a one-axis offset expressed as a fraction of the
// parent's extent plus an anchor pair.
type AnchoredPosition struct {
	Value   float64 `json:"value" yaml:"value" jsonschema:"description=Shift from the parent anchor as a fraction of parent extent"`
	Anchors Anchors `json:"anchors" yaml:"anchors"`
}

// Centered returns the position that centers an entity on its parent.
func Centered() AnchoredPosition {
	return AnchoredPosition{Anchors: Anchors{Self: 0.5, Parent: 0.5}}
}

// RelativeLength is a length measured against either the parent's width or
// its height. Exactly one of the two is set.
type RelativeLength struct {
	Width  *float64 `json:"width,omitempty" yaml:"width,omitempty" jsonschema:"description=Fraction of the parent width"`
	Height *float64 `json:"height,omitempty" yaml:"height,omitempty" jsonschema:"description=Fraction of the parent height"`
}

// OfWidth returns a length measured against the parent width.
func OfWidth(f float64) RelativeLength { return RelativeLength{Width: &f} }

// OfHeight returns a length measured against the parent height.
func OfHeight(f float64) RelativeLength { return RelativeLength{Height: &f} }

// IsZero reports whether neither dimension is set.
func (l RelativeLength) IsZero() bool { return l.Width == nil && l.Height == nil }

// Resolve converts the length to pixels against the parent frame.
func (l RelativeLength) Resolve(parent Frame) float64 {
	switch {
	case l.Width != nil:
		return *l.Width * parent.Width
	case l.Height != nil:
		return *l.Height * parent.Height
	}
	return 0
}

// PointCoordinate positions one axis of a line point. The point's own anchor
// is always its center.
type PointCoordinate struct {
	Value  float64 `json:"value" yaml:"value"`
	Parent float64 `json:"parent" yaml:"parent"`
}

func (c PointCoordinate) anchored() AnchoredPosition {
	return AnchoredPosition{Value: c.Value, Anchors: Anchors{Self: 0.5, Parent: c.Parent}}
}

// LinePoint is one vertex of a line graphic.
type LinePoint struct {
	X PointCoordinate `json:"x" yaml:"x"`
	Y PointCoordinate `json:"y" yaml:"y"`
}

// Include is an inclusion rule: explicit identifiers and/or tags. At least one
// of the two lists must be non-empty.
type Include struct {
	Identifiers []string `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// IsEmpty reports whether the rule names nothing.
func (in Include) IsEmpty() bool { return len(in.Identifiers) == 0 && len(in.Tags) == 0 }

// SpriteConfig describes an image-backed visual. The identifier doubles as
// the asset path (optionally through the alias table).
//
// Sizing: with both Width and Height set each is a fraction of the parent
// extent; with one set the other follows the aspect ratio (Ratio when given,
// otherwise the texture's); with neither the texture's native size is used.
type SpriteConfig struct {
	X                 AnchoredPosition `json:"x" yaml:"x"`
	Y                 AnchoredPosition `json:"y" yaml:"y"`
	Width             *float64         `json:"width,omitempty" yaml:"width,omitempty" jsonschema:"description=Fraction of the parent width"`
	Height            *float64         `json:"height,omitempty" yaml:"height,omitempty" jsonschema:"description=Fraction of the parent height"`
	Ratio             *float64         `json:"ratio,omitempty" yaml:"ratio,omitempty" jsonschema:"description=Width to height ratio overriding the texture's"`
	Parent            string           `json:"parent,omitempty" yaml:"parent,omitempty"`
	Tag               string           `json:"tag,omitempty" yaml:"tag,omitempty"`
	ZIndex            int              `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
	Mask              string           `json:"mask,omitempty" yaml:"mask,omitempty" jsonschema:"description=Identifier of a graphic used as mask"`
	OnClick           []string         `json:"onClick,omitempty" yaml:"onClick,omitempty"`
	Alpha             *float64         `json:"alpha,omitempty" yaml:"alpha,omitempty" jsonschema:"minimum=0,maximum=1"`
	Rotation          float64          `json:"rotation,omitempty" yaml:"rotation,omitempty" jsonschema:"description=Rotation in turns"`
	UseParentRotation bool             `json:"useParentRotation,omitempty" yaml:"useParentRotation,omitempty"`
}

// ShapeKind is the closed set of graphic shapes.
type ShapeKind string

const (
	ShapeRectangle        ShapeKind = "rectangle"
	ShapeCircle           ShapeKind = "circle"
	ShapeRoundedRectangle ShapeKind = "rounded rectangle"
	ShapeLine             ShapeKind = "line"
	ShapeEllipse          ShapeKind = "ellipse"
)

// LineCap is the end style of a line graphic.
type LineCap string

const (
	CapButt   LineCap = "butt"
	CapRound  LineCap = "round"
	CapSquare LineCap = "square"
)

// GraphicConfig describes a vector shape. Which fields apply depends on Kind.
type GraphicConfig struct {
	Kind              ShapeKind        `json:"kind" yaml:"kind" jsonschema:"required,enum=rectangle,enum=circle,enum=rounded rectangle,enum=line,enum=ellipse"`
	X                 AnchoredPosition `json:"x,omitempty" yaml:"x,omitempty"`
	Y                 AnchoredPosition `json:"y,omitempty" yaml:"y,omitempty"`
	Width             float64          `json:"width,omitempty" yaml:"width,omitempty" jsonschema:"description=Fraction of the parent width"`
	Height            float64          `json:"height,omitempty" yaml:"height,omitempty" jsonschema:"description=Fraction of the parent height"`
	Radius            RelativeLength   `json:"radius,omitempty" yaml:"radius,omitempty"`
	Thickness         RelativeLength   `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	Points            []LinePoint      `json:"points,omitempty" yaml:"points,omitempty"`
	Cap               LineCap          `json:"cap,omitempty" yaml:"cap,omitempty" jsonschema:"enum=butt,enum=round,enum=square"`
	Color             Color            `json:"color" yaml:"color" jsonschema:"required"`
	Parent            string           `json:"parent,omitempty" yaml:"parent,omitempty"`
	Tag               string           `json:"tag,omitempty" yaml:"tag,omitempty"`
	ZIndex            int              `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
	Mask              string           `json:"mask,omitempty" yaml:"mask,omitempty"`
	Alpha             *float64         `json:"alpha,omitempty" yaml:"alpha,omitempty" jsonschema:"minimum=0,maximum=1"`
	Rotation          float64          `json:"rotation,omitempty" yaml:"rotation,omitempty" jsonschema:"description=Rotation in turns; not allowed on lines"`
	UseParentRotation bool             `json:"useParentRotation,omitempty" yaml:"useParentRotation,omitempty"`
}

// ContainerConfig describes a group. Width and Height are fractions of the
// viewport and default to 1.
type ContainerConfig struct {
	X       AnchoredPosition `json:"x,omitempty" yaml:"x,omitempty"`
	Y       AnchoredPosition `json:"y,omitempty" yaml:"y,omitempty"`
	Width   *float64         `json:"width,omitempty" yaml:"width,omitempty"`
	Height  *float64         `json:"height,omitempty" yaml:"height,omitempty"`
	Tag     string           `json:"tag,omitempty" yaml:"tag,omitempty"`
	ZIndex  int              `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
	Alpha   *float64         `json:"alpha,omitempty" yaml:"alpha,omitempty" jsonschema:"minimum=0,maximum=1"`
	Mask    string           `json:"mask,omitempty" yaml:"mask,omitempty"`
	Flipped bool             `json:"flipped,omitempty" yaml:"flipped,omitempty"`
}

// FilterType is the closed set of filter effects.
type FilterType string

const (
	FilterBlur       FilterType = "blur"
	FilterAlpha      FilterType = "alpha"
	FilterBrightness FilterType = "brightness"
	FilterGlow       FilterType = "glow"
)

// FilterConfig describes a post-processing effect. Amount is read per type:
// blur radius, alpha multiplier, brightness level or glow strength.
type FilterConfig struct {
	Type    FilterType `json:"type" yaml:"type" jsonschema:"required,enum=blur,enum=alpha,enum=brightness,enum=glow"`
	Amount  float64    `json:"amount" yaml:"amount"`
	Include Include    `json:"include" yaml:"include" jsonschema:"required"`
	Tag     string     `json:"tag,omitempty" yaml:"tag,omitempty"`
	Color   *Color     `json:"color,omitempty" yaml:"color,omitempty" jsonschema:"description=Glow color; defaults to yellow"`
}

// TransitionConfig is a keyframe timeline. Frames and Times are parallel;
// Times are milliseconds from scene start and never decrease.
type TransitionConfig struct {
	Kind     Kind      `json:"kind" yaml:"kind" jsonschema:"required,description=Target kind: sprite, graphic, container or filter"`
	Property string    `json:"property" yaml:"property" jsonschema:"required"`
	Frames   []any     `json:"frames" yaml:"frames" jsonschema:"required"`
	Times    []float64 `json:"times" yaml:"times" jsonschema:"required"`
	Include  Include   `json:"include" yaml:"include" jsonschema:"required"`
	Tag      string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	Easing   string    `json:"easing,omitempty" yaml:"easing,omitempty"`
	Repeat   bool      `json:"repeat,omitempty" yaml:"repeat,omitempty"`
}

// LoadJSON decodes a scene configuration from JSON.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML decodes a scene configuration from YAML.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// clone copies every record so property writes made by the scope never reach
// the caller's configuration.
func (c *Config) clone() *Config {
	out := &Config{
		Sprites:     cloneRecords(c.Sprites),
		Graphics:    cloneRecords(c.Graphics),
		Containers:  cloneRecords(c.Containers),
		Filters:     cloneRecords(c.Filters),
		Transitions: cloneRecords(c.Transitions),
		Aliases:     make(map[string]Alias, len(c.Aliases)),
	}
	for id, a := range c.Aliases {
		out.Aliases[id] = a
	}
	return out
}

func cloneRecords[T any](in map[string]*T) map[string]*T {
	out := make(map[string]*T, len(in))
	for id, rec := range in {
		if rec == nil {
			continue
		}
		cp := *rec
		out[id] = &cp
	}
	return out
}
