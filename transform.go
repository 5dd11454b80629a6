package tableau

import "math"

// ResolveAxis returns the offset from the parent's center along one axis.
//
// The parent anchor picks a reference point on the parent (0 near edge, 0.5
// center, 1 far edge), the value shifts it by a fraction of the parent's
// extent, and the self anchor picks which point of the entity lands there.
func ResolveAxis(pos AnchoredPosition, selfExtent, parentExtent float64) float64 {
	return parentExtent*(-0.5+pos.Anchors.Parent+pos.Value) + selfExtent*(0.5-pos.Anchors.Self)
}

// ResolvePosition returns the absolute center of an entity of size w×h
// placed by x and y against parent. With inherit set and a rotated parent
// the local offset turns with the parent.
func ResolvePosition(x, y AnchoredPosition, w, h float64, parent Frame, inherit bool) Vec2 {
	dx := ResolveAxis(x, w, parent.Width)
	dy := ResolveAxis(y, h, parent.Height)
	if inherit && parent.Rotation != 0 {
		sin, cos := math.Sincos(parent.Rotation)
		dx, dy = cos*dx-sin*dy, sin*dx+cos*dy
	}
	return Vec2{parent.X + dx, parent.Y + dy}
}

// RootFrame is the frame of entities without a parent: the whole viewport.
func RootFrame(viewport Vec2) Frame {
	return Frame{X: viewport.X / 2, Y: viewport.Y / 2, Width: viewport.X, Height: viewport.Y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// worldAABB returns the axis-aligned bounds of a w×h box after transform.
func worldAABB(transform [6]float64, w, h float64) Rect {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = transformPoint(transform, 0, 0)
	xs[1], ys[1] = transformPoint(transform, w, 0)
	xs[2], ys[2] = transformPoint(transform, w, h)
	xs[3], ys[3] = transformPoint(transform, 0, h)

	minX := math.Min(math.Min(xs[0], xs[1]), math.Min(xs[2], xs[3]))
	minY := math.Min(math.Min(ys[0], ys[1]), math.Min(ys[2], ys[3]))
	maxX := math.Max(math.Max(xs[0], xs[1]), math.Max(xs[2], xs[3]))
	maxY := math.Max(math.Max(ys[0], ys[1]), math.Max(ys[2], ys[3]))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
