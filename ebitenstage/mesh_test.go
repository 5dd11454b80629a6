package ebitenstage

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/tableau"
)

const epsilon = 1e-4

func TestAppendFan(t *testing.T) {
	var m meshBuffers
	var geo ebiten.GeoM
	geo.Translate(100, 50)
	square := []tableau.Vec2{{X: -10, Y: -10}, {X: 10, Y: -10}, {X: 10, Y: 10}, {X: -10, Y: 10}}

	m.appendFan(square, &geo, tableau.Color{R: 1, A: 0.5}, 0.5)
	require.Len(t, m.verts, 4)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, m.inds)
	assert.Equal(t, float32(90), m.verts[0].DstX)
	assert.Equal(t, float32(40), m.verts[0].DstY)
	assert.Equal(t, float32(0.25), m.verts[0].ColorA)
	assert.Equal(t, float32(0.5), m.verts[0].SrcX)

	m.appendFan(square[:2], &geo, tableau.ColorWhite, 1)
	assert.Len(t, m.verts, 4, "degenerate polygons are skipped")

	m.appendFan(square[:3], &geo, tableau.ColorWhite, 1)
	assert.Equal(t, []uint16{4, 5, 6}, m.inds[6:])

	m.reset()
	assert.Empty(t, m.verts)
	assert.Empty(t, m.inds)
}

func lineGeometry(lineCap tableau.LineCap, points ...tableau.Vec2) *tableau.Geometry {
	return &tableau.Geometry{Kind: tableau.ShapeLine, Color: tableau.ColorWhite, Points: points, Thickness: 4, Cap: lineCap}
}

func TestAppendLineButt(t *testing.T) {
	var m meshBuffers
	var geo ebiten.GeoM
	m.appendLine(lineGeometry(tableau.CapButt, tableau.Vec2{}, tableau.Vec2{X: 10}), &geo, 1)

	require.Len(t, m.verts, 4)
	assert.Equal(t, []uint16{0, 1, 2, 1, 3, 2}, m.inds)
	assert.InDelta(t, 0, m.verts[0].DstX, epsilon)
	assert.InDelta(t, 2, m.verts[0].DstY, epsilon)
	assert.InDelta(t, -2, m.verts[1].DstY, epsilon)
	assert.InDelta(t, 10, m.verts[2].DstX, epsilon)
}

func TestAppendLineSquareExtends(t *testing.T) {
	var m meshBuffers
	var geo ebiten.GeoM
	m.appendLine(lineGeometry(tableau.CapSquare, tableau.Vec2{}, tableau.Vec2{X: 10}), &geo, 1)

	require.Len(t, m.verts, 4)
	assert.InDelta(t, -2, m.verts[0].DstX, epsilon)
	assert.InDelta(t, 12, m.verts[2].DstX, epsilon)
}

func TestAppendLineRoundAddsCaps(t *testing.T) {
	var m meshBuffers
	var geo ebiten.GeoM
	m.appendLine(lineGeometry(tableau.CapRound, tableau.Vec2{}, tableau.Vec2{X: 10}, tableau.Vec2{X: 10, Y: 10}), &geo, 1)

	assert.Len(t, m.verts, 6+2*capSegments)
	assert.Len(t, m.inds, 12+2*3*(capSegments-2))
}

func TestAppendLineNeedsTwoPoints(t *testing.T) {
	var m meshBuffers
	var geo ebiten.GeoM
	m.appendLine(lineGeometry(tableau.CapButt, tableau.Vec2{}), &geo, 1)
	assert.Empty(t, m.verts)

	g := lineGeometry(tableau.CapButt, tableau.Vec2{}, tableau.Vec2{X: 1})
	g.Thickness = 0
	m.appendLine(g, &geo, 1)
	assert.Empty(t, m.verts)
}

func TestJoinNormal(t *testing.T) {
	corner := []tableau.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}

	nx, ny := joinNormal(corner, 0)
	assert.InDelta(t, 0, nx, epsilon)
	assert.InDelta(t, 1, ny, epsilon)

	nx, ny = joinNormal(corner, 1)
	// miter at a right angle reaches sqrt(2) along the diagonal
	assert.InDelta(t, -1, nx, epsilon)
	assert.InDelta(t, 1, ny, epsilon)
	assert.InDelta(t, math.Sqrt2, math.Hypot(nx, ny), epsilon)

	back := []tableau.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	nx, ny = joinNormal(back, 1)
	assert.InDelta(t, 0, nx, epsilon)
	assert.InDelta(t, 1, ny, epsilon)
}

func TestPerpendicular(t *testing.T) {
	nx, ny := perpendicular(tableau.Vec2{}, tableau.Vec2{Y: 5})
	assert.InDelta(t, -1, nx, epsilon)
	assert.InDelta(t, 0, ny, epsilon)

	nx, ny = perpendicular(tableau.Vec2{X: 3}, tableau.Vec2{X: 3})
	assert.Equal(t, 0.0, nx)
	assert.Equal(t, -1.0, ny)
}

func TestSpriteGeoM(t *testing.T) {
	sp := &tableau.Sprite{}
	sp.X, sp.Y, sp.Width, sp.Height = 400, 300, 200, 100

	geo := spriteGeoM(sp, 50, 50)
	x, y := geo.Apply(0, 0)
	assert.InDelta(t, 300, x, epsilon)
	assert.InDelta(t, 250, y, epsilon)
	x, y = geo.Apply(50, 50)
	assert.InDelta(t, 500, x, epsilon)
	assert.InDelta(t, 350, y, epsilon)

	sp.Rotation = math.Pi / 2
	geo = spriteGeoM(sp, 50, 50)
	x, y = geo.Apply(25, 25)
	assert.InDelta(t, 400, x, epsilon)
	assert.InDelta(t, 300, y, epsilon)
	x, y = geo.Apply(0, 0)
	assert.InDelta(t, 450, x, epsilon)
	assert.InDelta(t, 200, y, epsilon)
}

func TestGraphicGeoMIgnoresRotationForLines(t *testing.T) {
	g := &tableau.Graphic{Geometry: tableau.Geometry{Kind: tableau.ShapeLine}}
	g.X, g.Y, g.Rotation = 10, 20, math.Pi
	geo := graphicGeoM(g)
	x, y := geo.Apply(5, 0)
	assert.InDelta(t, 15, x, epsilon)
	assert.InDelta(t, 20, y, epsilon)

	g.Geometry.Kind = tableau.ShapeRectangle
	geo = graphicGeoM(g)
	x, y = geo.Apply(5, 0)
	assert.InDelta(t, 5, x, epsilon)
	assert.InDelta(t, 20, y, epsilon)
}

func TestFlipGeoM(t *testing.T) {
	geo := flipGeoM(nil, false, 800)
	x, _ := geo.Apply(100, 0)
	assert.InDelta(t, 100, x, epsilon)

	geo = flipGeoM(nil, true, 800)
	x, _ = geo.Apply(100, 0)
	assert.InDelta(t, 700, x, epsilon)

	group := &tableau.Container{Flipped: true, PivotX: 800, ScaleX: -1}
	geo = flipGeoM(group, false, 800)
	x, _ = geo.Apply(100, 0)
	assert.InDelta(t, group.MirrorX(100), x, epsilon)

	geo = flipGeoM(group, true, 800)
	x, _ = geo.Apply(100, 0)
	assert.InDelta(t, 100, x, epsilon)
}
