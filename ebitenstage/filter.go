package ebitenstage

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/tableau"
)

// Ebitengine uses premultiplied alpha; the shader un-premultiplies before
// applying the matrix and re-premultiplies its output.
const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	// 4x5 row-major matrix, offsets in elements 4, 9, 14, 19.
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("ebitenstage: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

// alphaMatrix scales alpha by a.
func alphaMatrix(a float64) [20]float64 {
	return [20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, a, 0,
	}
}

// brightnessMatrix multiplies the color channels by b; 1 is unchanged and 0
// is black.
func brightnessMatrix(b float64) [20]float64 {
	return [20]float64{
		b, 0, 0, 0, 0,
		0, b, 0, 0, 0,
		0, 0, b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// silhouetteMatrix replaces the color channels with c and scales alpha by
// c's alpha.
func silhouetteMatrix(c tableau.Color) [20]float64 {
	return [20]float64{
		0, 0, 0, 0, c.R,
		0, 0, 0, 0, c.G,
		0, 0, 0, 0, c.B,
		0, 0, 0, c.A, 0,
	}
}

// colorMatrix renders src through a 4x5 color matrix.
type colorMatrix struct {
	uniforms    map[string]any
	matrixF32   [20]float32
	matrixSlice []float32
	shaderOp    ebiten.DrawRectShaderOptions
}

func newColorMatrix() *colorMatrix {
	m := &colorMatrix{uniforms: make(map[string]any, 1)}
	m.matrixSlice = m.matrixF32[:]
	m.uniforms["Matrix"] = m.matrixSlice
	return m
}

func (m *colorMatrix) apply(matrix [20]float64, src, dst *ebiten.Image) {
	shader := ensureColorMatrixShader()
	for i, v := range matrix {
		m.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	m.shaderOp.Images[0] = src
	m.shaderOp.Uniforms = m.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &m.shaderOp)
}

// kawaseBlur blurs with iterative downscale and upscale passes. Bilinear
// filtering during DrawImage does the work.
type kawaseBlur struct {
	temps []*ebiten.Image
	imgOp ebiten.DrawImageOptions
}

// blurPasses is log2(radius), minimum 1.
func blurPasses(radius int) int {
	if radius <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(radius))))
}

func (k *kawaseBlur) apply(radius int, src, dst *ebiten.Image) {
	op := &k.imgOp
	if radius <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := blurPasses(radius)
	for len(k.temps) < passes {
		k.temps = append(k.temps, nil)
	}
	for i := passes; i < len(k.temps); i++ {
		if k.temps[i] != nil {
			k.temps[i].Deallocate()
			k.temps[i] = nil
		}
	}
	k.temps = k.temps[:passes]

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	current := src
	for i := 0; i < passes; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		if k.temps[i] == nil || k.temps[i].Bounds().Dx() != w || k.temps[i].Bounds().Dy() != h {
			if k.temps[i] != nil {
				k.temps[i].Deallocate()
			}
			k.temps[i] = ebiten.NewImage(w, h)
		} else {
			k.temps[i].Clear()
		}
		k.scaleInto(current, k.temps[i])
		current = k.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		k.temps[i].Clear()
		k.scaleInto(current, k.temps[i])
		current = k.temps[i]
	}
	k.scaleInto(current, dst)
}

func (k *kawaseBlur) scaleInto(src, dst *ebiten.Image) {
	op := &k.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Scale(
		float64(dst.Bounds().Dx())/float64(src.Bounds().Dx()),
		float64(dst.Bounds().Dy())/float64(src.Bounds().Dy()),
	)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

func (k *kawaseBlur) dispose() {
	for _, img := range k.temps {
		if img != nil {
			img.Deallocate()
		}
	}
	k.temps = nil
}

// glowOffsets are the eight directions a glow silhouette is stamped in.
var glowOffsets = [8][2]float64{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// filterPass is the render state for one tableau filter. It reads the
// filter's fields each frame, so transitions on the filter take effect
// immediately.
type filterPass struct {
	matrix *colorMatrix
	blur   kawaseBlur
	imgOp  ebiten.DrawImageOptions
}

func newFilterPass() *filterPass {
	return &filterPass{matrix: newColorMatrix()}
}

// apply renders src into dst with f's effect. scratch is a cleared image
// the size of src, used by glow.
func (p *filterPass) apply(f *tableau.Filter, src, dst, scratch *ebiten.Image) {
	switch f.Type {
	case tableau.FilterBlur:
		p.blur.apply(int(math.Round(f.Blur)), src, dst)
	case tableau.FilterAlpha:
		p.matrix.apply(alphaMatrix(f.Alpha), src, dst)
	case tableau.FilterBrightness:
		p.matrix.apply(brightnessMatrix(f.Brightness), src, dst)
	case tableau.FilterGlow:
		p.glow(f, src, dst, scratch)
	default:
		p.copy(src, dst)
	}
}

// glow stamps a tinted silhouette of src around itself at the filter's
// strength in pixels, softens it, then draws the original on top.
func (p *filterPass) glow(f *tableau.Filter, src, dst, scratch *ebiten.Image) {
	p.matrix.apply(silhouetteMatrix(f.GlowColor), src, scratch)

	op := &p.imgOp
	d := f.GlowStrength
	for _, off := range glowOffsets {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Translate(off[0]*d, off[1]*d)
		dst.DrawImage(scratch, op)
	}
	if r := int(math.Round(d / 2)); r > 0 {
		scratch.Clear()
		p.blur.apply(r, dst, scratch)
		dst.Clear()
		p.copy(scratch, dst)
	}
	p.copy(src, dst)
}

func (p *filterPass) copy(src, dst *ebiten.Image) {
	op := &p.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Filter = ebiten.FilterNearest
	dst.DrawImage(src, op)
}

func (p *filterPass) dispose() {
	p.blur.dispose()
}

// pass returns the render state for f, creating it on first use and
// dropping state for filters the scope has released.
func (s *Stage) pass(f *tableau.Filter) *filterPass {
	p, ok := s.filters[f]
	if !ok {
		p = newFilterPass()
		s.filters[f] = p
	}
	return p
}

func (s *Stage) sweepFilters() {
	for f, p := range s.filters {
		if f.IsDisposed() {
			p.dispose()
			delete(s.filters, f)
		}
	}
}
