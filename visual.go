package tableau

import "math"

// Spatial is the resolved numeric state shared by every drawable entity.
// X and Y are the absolute center in viewport pixels, Rotation is in
// radians and already includes any inherited parent rotation.
type Spatial struct {
	X, Y          float64
	Width, Height float64
	Rotation      float64
	Alpha         float64
	ZIndex        int

	// Mask, when set, clips the entity to the graphic's shape.
	Mask *Graphic
	// Filters are applied in order when the entity is drawn.
	Filters []*Filter
	// Group is the nearest container ancestor, if any.
	Group *Container

	seq      int
	disposed bool
}

// Frame returns the geometry children are positioned against.
func (s *Spatial) Frame() Frame {
	return Frame{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height, Rotation: s.Rotation}
}

// Matrix returns the affine transform mapping the entity's local space
// (origin at its top-left corner, unrotated) to viewport space.
func (s *Spatial) Matrix() [6]float64 {
	sin, cos := math.Sincos(s.Rotation)
	rotate := [6]float64{cos, sin, -sin, cos, s.X, s.Y}
	return multiplyAffine(rotate, [6]float64{1, 0, 0, 1, -s.Width / 2, -s.Height / 2})
}

// Dispose marks the entity released. Disposed entities are never returned by
// the scope's indices.
func (s *Spatial) Dispose() { s.disposed = true }

// IsDisposed reports whether the entity has been released.
func (s *Spatial) IsDisposed() bool { return s.disposed }

// Base returns the shared state.
func (s *Spatial) Base() *Spatial { return s }

func (s *Spatial) attach(f *Filter) {
	for _, existing := range s.Filters {
		if existing == f {
			return
		}
	}
	s.Filters = append(s.Filters, f)
}

// Visual is a drawable entity: a *Sprite or a *Graphic.
type Visual interface {
	Kind() Kind
	Base() *Spatial
	// Bounds is the axis-aligned box containing the entity in viewport
	// space.
	Bounds() Rect
}

// Sprite is an image-backed visual.
type Sprite struct {
	Spatial
	Texture Texture
}

// Kind implements Visual.
func (*Sprite) Kind() Kind { return KindSprite }

// Bounds implements Visual.
func (s *Sprite) Bounds() Rect {
	return worldAABB(s.Matrix(), s.Width, s.Height)
}

// Graphic is a vector shape visual.
type Graphic struct {
	Spatial
	Geometry Geometry
}

// Kind implements Visual.
func (*Graphic) Kind() Kind { return KindGraphic }

// Bounds implements Visual.
func (g *Graphic) Bounds() Rect {
	if g.Geometry.Kind != ShapeLine {
		return worldAABB(g.Matrix(), g.Width, g.Height)
	}
	if len(g.Geometry.Points) == 0 {
		return Rect{X: g.X, Y: g.Y}
	}
	half := g.Geometry.Thickness / 2
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range g.Geometry.Points {
		minX = math.Min(minX, g.X+p.X)
		minY = math.Min(minY, g.Y+p.Y)
		maxX = math.Max(maxX, g.X+p.X)
		maxY = math.Max(maxY, g.Y+p.Y)
	}
	return Rect{X: minX - half, Y: minY - half, Width: maxX - minX + 2*half, Height: maxY - minY + 2*half}
}

// Container groups visuals. Its alpha multiplies into its descendants and a
// flip mirrors them horizontally around PivotX.
type Container struct {
	Spatial
	Flipped bool
	PivotX  float64
	ScaleX  float64
}

// Kind returns KindContainer.
func (*Container) Kind() Kind { return KindContainer }

// MirrorX maps an x coordinate through the container's flip.
func (c *Container) MirrorX(x float64) float64 {
	if c == nil || !c.Flipped {
		return x
	}
	return (x - c.PivotX) * c.ScaleX
}

// Filter is a post-processing effect. One Filter may be attached to many
// visuals; every field reflects the current configuration.
type Filter struct {
	Type FilterType

	Blur         float64 // blur radius in pixels
	Alpha        float64 // alpha multiplier
	Brightness   float64 // brightness level, 1 is unchanged
	GlowStrength float64
	GlowColor    Color

	disposed bool
}

func newFilter(t FilterType) *Filter {
	return &Filter{Type: t, Alpha: 1, Brightness: 1, GlowColor: ColorGlow}
}

// Amount returns the type-specific parameter the configuration's amount
// maps to.
func (f *Filter) Amount() float64 {
	switch f.Type {
	case FilterBlur:
		return f.Blur
	case FilterAlpha:
		return f.Alpha
	case FilterBrightness:
		return f.Brightness
	case FilterGlow:
		return f.GlowStrength
	}
	return 0
}

func (f *Filter) setAmount(amount float64) {
	switch f.Type {
	case FilterBlur:
		f.Blur = amount
	case FilterAlpha:
		f.Alpha = amount
	case FilterBrightness:
		f.Brightness = amount
	case FilterGlow:
		f.GlowStrength = amount
	}
}

// Dispose marks the filter released.
func (f *Filter) Dispose() { f.disposed = true }

// IsDisposed reports whether the filter has been released.
func (f *Filter) IsDisposed() bool { return f.disposed }

// Transition is the compiled form of a TransitionConfig. Its runtime
// progress lives in the scope's Playhead arena.
type Transition struct {
	Target   Kind
	Property string
	Easing   Easing

	// discrete transitions step from frame to frame without interpolating.
	discrete bool
	disposed bool
}

// Dispose marks the transition released.
func (t *Transition) Dispose() { t.disposed = true }

// IsDisposed reports whether the transition has been released.
func (t *Transition) IsDisposed() bool { return t.disposed }

// Playhead is the runtime progress of one transition.
type Playhead struct {
	// Frame is the current keyframe index; -1 means not started.
	Frame int
	// Offset is added to every keyframe time; it grows by the total
	// duration on each repeat.
	Offset float64
	// Loops counts completed repeats.
	Loops int

	duration    float64
	hasDuration bool
}

func newPlayhead() *Playhead { return &Playhead{Frame: -1} }

// totalDuration returns last time minus first time, computed once.
func (p *Playhead) totalDuration(times []float64) float64 {
	if !p.hasDuration {
		p.duration = times[len(times)-1] - times[0]
		p.hasDuration = true
	}
	return p.duration
}
