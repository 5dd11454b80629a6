package ebitenstage

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/tableau"
)

// Draw renders the scope's visuals onto screen in render order. Graphics
// used as masks clip instead of drawing. Masked or filtered visuals are
// drawn through a pooled offscreen layer.
func (s *Stage) Draw(screen *ebiten.Image, scope *tableau.Scope) {
	var stats drawStats
	start := time.Now()

	s.sweepFilters()
	masks := scope.MaskGraphics()
	flipped := scope.Flipped()
	width := float64(s.width)

	for _, v := range scope.Visuals() {
		if g, ok := v.(*tableau.Graphic); ok && masks[g] {
			continue
		}
		base := v.Base()
		alpha := base.Alpha
		var groupMask *tableau.Graphic
		if base.Group != nil {
			alpha *= base.Group.Alpha
			groupMask = base.Group.Mask
		}
		if alpha <= 0 {
			stats.skipped++
			continue
		}
		flip := flipGeoM(base.Group, flipped, width)

		if base.Mask == nil && groupMask == nil && len(base.Filters) == 0 {
			s.drawVisual(screen, v, alpha, flip)
			stats.direct++
			continue
		}

		layer := s.pool.acquire(s.width, s.height)
		s.drawVisual(layer, v, alpha, flip)
		for _, m := range [2]*tableau.Graphic{base.Mask, groupMask} {
			if m != nil {
				s.clip(layer, m, flipped)
				stats.masks++
			}
		}
		for _, f := range base.Filters {
			if f.IsDisposed() {
				continue
			}
			layer = s.filter(f, layer)
			stats.filters++
		}
		var op ebiten.DrawImageOptions
		screen.DrawImage(layer, &op)
		s.pool.release(layer)
		stats.layered++
	}

	stats.total = time.Since(start)
	if s.debug {
		s.debugLog(stats)
	}
}

// drawVisual draws v with its own transform followed by flip.
func (s *Stage) drawVisual(dst *ebiten.Image, v tableau.Visual, alpha float64, flip ebiten.GeoM) {
	switch v := v.(type) {
	case *tableau.Sprite:
		tex, ok := v.Texture.(*Texture)
		if !ok || tex == nil || tex.Image == nil {
			return
		}
		w, h := tex.Size()
		var op ebiten.DrawImageOptions
		op.GeoM = spriteGeoM(v, w, h)
		op.GeoM.Concat(flip)
		op.ColorScale.ScaleAlpha(float32(alpha))
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(tex.Image, &op)
	case *tableau.Graphic:
		s.drawGraphic(dst, v, alpha, flip)
	}
}

func (s *Stage) drawGraphic(dst *ebiten.Image, g *tableau.Graphic, alpha float64, flip ebiten.GeoM) {
	geo := graphicGeoM(g)
	geo.Concat(flip)

	s.meshes.reset()
	if g.Geometry.Kind == tableau.ShapeLine {
		s.meshes.appendLine(&g.Geometry, &geo, alpha)
	} else {
		s.meshes.appendFan(g.Geometry.Outline, &geo, g.Geometry.Color, alpha)
	}
	if len(s.meshes.inds) == 0 {
		return
	}
	dst.DrawTriangles(s.meshes.verts, s.meshes.inds, ensureWhitePixel(), &ebiten.DrawTrianglesOptions{})
}

// clip keeps layer's pixels only where the mask graphic is opaque.
func (s *Stage) clip(layer *ebiten.Image, mask *tableau.Graphic, flipped bool) {
	stencil := s.pool.acquire(s.width, s.height)
	s.drawGraphic(stencil, mask, 1, flipGeoM(mask.Group, flipped, float64(s.width)))

	var op ebiten.DrawImageOptions
	op.Blend = blendMask
	layer.DrawImage(stencil, &op)
	s.pool.release(stencil)
}

// filter renders layer through f into a fresh pooled image and releases
// layer.
func (s *Stage) filter(f *tableau.Filter, layer *ebiten.Image) *ebiten.Image {
	out := s.pool.acquire(s.width, s.height)
	var scratch *ebiten.Image
	if f.Type == tableau.FilterGlow {
		scratch = s.pool.acquire(s.width, s.height)
	}
	s.pass(f).apply(f, layer, out, scratch)
	s.pool.release(scratch)
	s.pool.release(layer)
	return out
}
