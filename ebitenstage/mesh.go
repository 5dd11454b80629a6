package ebitenstage

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/tableau"
)

// capSegments is the number of fan triangles in a round line cap.
const capSegments = 12

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white image. Untextured
// shapes sample it at its center.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// meshBuffers holds vertex and index slices grown to a high-water mark and
// reused every frame.
type meshBuffers struct {
	verts []ebiten.Vertex
	inds  []uint16
}

func (m *meshBuffers) reset() {
	m.verts = m.verts[:0]
	m.inds = m.inds[:0]
}

func (m *meshBuffers) vertex(p tableau.Vec2, geo *ebiten.GeoM, tint tableau.Color, alpha float64) uint16 {
	x, y := geo.Apply(p.X, p.Y)
	m.verts = append(m.verts, ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(tint.R),
		ColorG: float32(tint.G),
		ColorB: float32(tint.B),
		ColorA: float32(tint.A * alpha),
	})
	return uint16(len(m.verts) - 1)
}

// appendFan adds a fan-triangulated convex polygon. N vertices, 3*(N-2)
// indices.
func (m *meshBuffers) appendFan(points []tableau.Vec2, geo *ebiten.GeoM, tint tableau.Color, alpha float64) {
	if len(points) < 3 {
		return
	}
	first := m.vertex(points[0], geo, tint, alpha)
	for _, p := range points[1:] {
		m.vertex(p, geo, tint, alpha)
	}
	for i := 1; i < len(points)-1; i++ {
		m.inds = append(m.inds, first, first+uint16(i), first+uint16(i+1))
	}
}

// appendLine adds a thick polyline as a triangle strip: two vertices per
// point offset along the averaged normal, plus the end caps.
func (m *meshBuffers) appendLine(g *tableau.Geometry, geo *ebiten.GeoM, alpha float64) {
	points := g.Points
	n := len(points)
	if n < 2 || g.Thickness <= 0 {
		return
	}
	half := g.Thickness / 2

	if g.Cap == tableau.CapSquare {
		points = extendEnds(points, half)
	}

	start := uint16(len(m.verts))
	for i := 0; i < n; i++ {
		nx, ny := joinNormal(points, i)
		m.vertex(tableau.Vec2{X: points[i].X + nx*half, Y: points[i].Y + ny*half}, geo, g.Color, alpha)
		m.vertex(tableau.Vec2{X: points[i].X - nx*half, Y: points[i].Y - ny*half}, geo, g.Color, alpha)
	}
	for i := 0; i < n-1; i++ {
		v := start + uint16(i*2)
		m.inds = append(m.inds, v, v+1, v+2, v+1, v+3, v+2)
	}

	if g.Cap == tableau.CapRound {
		m.appendFan(disc(points[0], half), geo, g.Color, alpha)
		m.appendFan(disc(points[n-1], half), geo, g.Color, alpha)
	}
}

// joinNormal returns the normal at point i: the segment normal at the ends,
// the averaged miter normal in between, scaled to keep the stroke width and
// clamped at 2x for sharp corners.
func joinNormal(points []tableau.Vec2, i int) (float64, float64) {
	n := len(points)
	switch i {
	case 0:
		return perpendicular(points[0], points[1])
	case n - 1:
		return perpendicular(points[n-2], points[n-1])
	}
	nx0, ny0 := perpendicular(points[i-1], points[i])
	nx1, ny1 := perpendicular(points[i], points[i+1])
	nx, ny := nx0+nx1, ny0+ny1
	ln := math.Sqrt(nx*nx + ny*ny)
	if ln < 1e-10 {
		return nx0, ny0
	}
	nx, ny = nx/ln, ny/ln
	if dot := nx0*nx + ny0*ny; dot > 0.1 {
		scale := math.Min(1/dot, 2)
		nx, ny = nx*scale, ny*scale
	}
	return nx, ny
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b tableau.Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// extendEnds returns a copy of points with the first and last pushed
// outward by d along their segments.
func extendEnds(points []tableau.Vec2, d float64) []tableau.Vec2 {
	out := append([]tableau.Vec2(nil), points...)
	n := len(out)
	push := func(from, to tableau.Vec2) tableau.Vec2 {
		dx, dy := to.X-from.X, to.Y-from.Y
		ln := math.Sqrt(dx*dx + dy*dy)
		if ln < 1e-10 {
			return to
		}
		return tableau.Vec2{X: to.X + dx/ln*d, Y: to.Y + dy/ln*d}
	}
	out[0] = push(points[1], points[0])
	out[n-1] = push(points[n-2], points[n-1])
	return out
}

func disc(center tableau.Vec2, r float64) []tableau.Vec2 {
	out := make([]tableau.Vec2, capSegments)
	for i := range out {
		a := 2 * math.Pi * float64(i) / capSegments
		out[i] = tableau.Vec2{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return out
}

// graphicGeoM maps a graphic's local geometry into screen space. Outlines
// are centered on the graphic; line points are relative to its first point.
func graphicGeoM(g *tableau.Graphic) ebiten.GeoM {
	var geo ebiten.GeoM
	if g.Geometry.Kind != tableau.ShapeLine {
		geo.Rotate(g.Rotation)
	}
	geo.Translate(g.X, g.Y)
	return geo
}

// spriteGeoM scales a w×h texture to the sprite's size and places it
// rotated around its center.
func spriteGeoM(sp *tableau.Sprite, w, h int) ebiten.GeoM {
	var geo ebiten.GeoM
	if w > 0 && h > 0 {
		geo.Scale(sp.Width/float64(w), sp.Height/float64(h))
	}
	geo.Translate(-sp.Width/2, -sp.Height/2)
	geo.Rotate(sp.Rotation)
	geo.Translate(sp.X, sp.Y)
	return geo
}

// flipGeoM returns the mirror applied after a visual's own transform: the
// group's flip around its pivot, then the scene flip around the viewport.
func flipGeoM(group *tableau.Container, sceneFlipped bool, width float64) ebiten.GeoM {
	var geo ebiten.GeoM
	if group != nil && group.Flipped {
		geo.Translate(-group.PivotX, 0)
		geo.Scale(group.ScaleX, 1)
	}
	if sceneFlipped {
		geo.Scale(-1, 1)
		geo.Translate(width, 0)
	}
	return geo
}
