package tableau

import (
	"fmt"
	"math"
)

// Geometry is the fully recomputed shape of a graphic. Outline and Points are
// in the graphic's local space: Outline relative to its center, Points
// relative to its first point.
type Geometry struct {
	Kind  ShapeKind
	Color Color

	// Outline is a closed convex polygon for every kind except lines.
	Outline []Vec2
	// Radius is the resolved corner or circle radius.
	Radius float64

	Points    []Vec2
	Thickness float64
	Cap       LineCap
}

const (
	ellipseSegments = 48
	cornerSegments  = 8
)

// shapeRules is the per-kind sizing rule: it returns the graphic's
// extent and local outline against the parent frame.
var shapeRules = map[ShapeKind]func(cfg *GraphicConfig, parent Frame) (w, h, radius float64, outline []Vec2){
	ShapeRectangle: func(cfg *GraphicConfig, parent Frame) (float64, float64, float64, []Vec2) {
		w, h := cfg.Width*parent.Width, cfg.Height*parent.Height
		return w, h, 0, rectangleOutline(w, h)
	},
	ShapeEllipse: func(cfg *GraphicConfig, parent Frame) (float64, float64, float64, []Vec2) {
		w, h := cfg.Width*parent.Width, cfg.Height*parent.Height
		return w, h, 0, ellipseOutline(w/2, h/2)
	},
	ShapeCircle: func(cfg *GraphicConfig, parent Frame) (float64, float64, float64, []Vec2) {
		r := cfg.Radius.Resolve(parent)
		return 2 * r, 2 * r, r, ellipseOutline(r, r)
	},
	ShapeRoundedRectangle: func(cfg *GraphicConfig, parent Frame) (float64, float64, float64, []Vec2) {
		w, h := cfg.Width*parent.Width, cfg.Height*parent.Height
		r := math.Min(cfg.Radius.Resolve(parent), math.Min(w, h)/2)
		return w, h, r, roundedRectangleOutline(w, h, r)
	},
}

// drawGraphic recomputes every resolved field of g from cfg against parent.
// On error g is left untouched.
func drawGraphic(g *Graphic, id string, cfg *GraphicConfig, parent Frame) error {
	if cfg.Kind == ShapeLine {
		return drawLine(g, id, cfg, parent)
	}
	rule, ok := shapeRules[cfg.Kind]
	if !ok {
		return &ConfigurationError{Kind: KindGraphic, Identifier: id, Field: "kind",
			Reason: fmt.Sprintf("unknown shape kind %q", cfg.Kind)}
	}
	w, h, radius, outline := rule(cfg, parent)
	center := ResolvePosition(cfg.X, cfg.Y, w, h, parent, cfg.UseParentRotation)

	g.X, g.Y = center.X, center.Y
	g.Width, g.Height = w, h
	g.Rotation = turnsToRadians(cfg.Rotation)
	g.ZIndex = cfg.ZIndex
	g.Alpha = alphaOrOpaque(cfg.Alpha)
	g.Geometry = Geometry{Kind: cfg.Kind, Color: cfg.Color, Outline: outline, Radius: radius}
	return nil
}

// drawLine resolves each point independently as a zero-sized entity centered
// on its anchor. The graphic sits on the first point and never rotates.
func drawLine(g *Graphic, id string, cfg *GraphicConfig, parent Frame) error {
	if cfg.Rotation != 0 {
		return &ConfigurationError{Kind: KindGraphic, Identifier: id, Field: "rotation",
			Reason: "lines cannot rotate"}
	}
	if len(cfg.Points) < 2 {
		return &ConfigurationError{Kind: KindGraphic, Identifier: id, Field: "points",
			Reason: fmt.Sprintf("a line needs at least 2 points, got %d", len(cfg.Points))}
	}
	lineCap := cfg.Cap
	if lineCap == "" {
		lineCap = CapButt
	}

	abs := make([]Vec2, len(cfg.Points))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range cfg.Points {
		abs[i] = ResolvePosition(p.X.anchored(), p.Y.anchored(), 0, 0, parent, cfg.UseParentRotation)
		minX, maxX = math.Min(minX, abs[i].X), math.Max(maxX, abs[i].X)
		minY, maxY = math.Min(minY, abs[i].Y), math.Max(maxY, abs[i].Y)
	}
	local := make([]Vec2, len(abs))
	for i, p := range abs {
		local[i] = Vec2{p.X - abs[0].X, p.Y - abs[0].Y}
	}

	g.X, g.Y = abs[0].X, abs[0].Y
	g.Width, g.Height = maxX-minX, maxY-minY
	g.Rotation = 0
	g.ZIndex = cfg.ZIndex
	g.Alpha = alphaOrOpaque(cfg.Alpha)
	g.Geometry = Geometry{
		Kind:      ShapeLine,
		Color:     cfg.Color,
		Points:    local,
		Thickness: cfg.Thickness.Resolve(parent),
		Cap:       lineCap,
	}
	return nil
}

func alphaOrOpaque(a *float64) float64 {
	if a == nil {
		return 1
	}
	return *a
}

func rectangleOutline(w, h float64) []Vec2 {
	hw, hh := w/2, h/2
	return []Vec2{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
}

func ellipseOutline(rx, ry float64) []Vec2 {
	out := make([]Vec2, ellipseSegments)
	for i := range out {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		out[i] = Vec2{rx * math.Cos(a), ry * math.Sin(a)}
	}
	return out
}

func roundedRectangleOutline(w, h, r float64) []Vec2 {
	if r <= 0 {
		return rectangleOutline(w, h)
	}
	hw, hh := w/2, h/2
	// corner centers clockwise from top-left, each with its arc start angle
	corners := [4]struct {
		cx, cy, start float64
	}{
		{-hw + r, -hh + r, math.Pi},
		{hw - r, -hh + r, 1.5 * math.Pi},
		{hw - r, hh - r, 0},
		{-hw + r, hh - r, 0.5 * math.Pi},
	}
	out := make([]Vec2, 0, 4*(cornerSegments+1))
	for _, c := range corners {
		for i := 0; i <= cornerSegments; i++ {
			a := c.start + 0.5*math.Pi*float64(i)/cornerSegments
			out = append(out, Vec2{c.cx + r*math.Cos(a), c.cy + r*math.Sin(a)})
		}
	}
	return out
}
