package ebitenstage

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// layerPool manages reusable offscreen images keyed by power-of-two
// dimensions. After warmup, acquire and release do not allocate.
type layerPool struct {
	buckets map[uint64][]*ebiten.Image
	live    int
}

func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// acquire returns a cleared offscreen image with at least w×h pixels.
func (p *layerPool) acquire(w, h int) *ebiten.Image {
	pw, ph := nextPowerOfTwo(w), nextPowerOfTwo(h)
	key := poolKey(pw, ph)
	p.live++

	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
		return img
	}
	return ebiten.NewImageWithOptions(image.Rect(0, 0, pw, ph), &ebiten.NewImageOptions{Unmanaged: true})
}

// release returns an image to the pool. It is cleared on the next acquire.
func (p *layerPool) release(img *ebiten.Image) {
	if img == nil {
		return
	}
	p.live--
	b := img.Bounds()
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	key := poolKey(b.Dx(), b.Dy())
	p.buckets[key] = append(p.buckets[key], img)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// blendMask keeps the destination only where the source is opaque.
var blendMask = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorZero,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}
