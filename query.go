package tableau

import (
	"encoding/json"
	"fmt"
)

// Hit is the result of a hit query: the configuration record of the visual
// under the point, plus its identity.
type Hit struct {
	Kind       Kind
	Identifier string
	// Config is a copy of the *SpriteConfig or *GraphicConfig.
	Config any
}

// MarshalJSON encodes the configuration record with an added "identifier"
// field, the shape hosts receive hit results in.
func (h Hit) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(h.Config)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("tableau: hit record: %w", err)
	}
	if record == nil {
		record = map[string]any{}
	}
	record["identifier"] = h.Identifier
	return json.Marshal(record)
}

// HitTest returns the topmost visual whose bounds contain (x, y) in screen
// coordinates. When the scene is flipped x is mirrored first. Among
// overlapping visuals the highest z-index wins, then the one drawn last.
// Graphics used as masks are never hit.
func (s *Scope) HitTest(x, y float64) (Hit, bool) {
	if s.flipped {
		x = s.Viewport().X - x
	}
	masks := s.MaskGraphics()

	var best Visual
	for _, v := range s.Visuals() {
		if g, ok := v.(*Graphic); ok && masks[g] {
			continue
		}
		b := v.Bounds()
		if group := v.Base().Group; group != nil && group.Flipped {
			left, right := group.MirrorX(b.X), group.MirrorX(b.X+b.Width)
			b.X, b.Width = min(left, right), max(left, right)-min(left, right)
		}
		if !b.Contains(x, y) {
			continue
		}
		// Visuals come in render order, so a later equal z wins.
		if best == nil || v.Base().ZIndex >= best.Base().ZIndex {
			best = v
		}
	}
	if best == nil {
		return Hit{}, false
	}

	switch v := best.(type) {
	case *Sprite:
		id, _ := s.sprites.Identifier(v)
		cfg, _ := s.sprites.Config(v)
		cp := *cfg
		return Hit{Kind: KindSprite, Identifier: id, Config: &cp}, true
	case *Graphic:
		id, _ := s.graphics.Identifier(v)
		cfg, _ := s.graphics.Config(v)
		cp := *cfg
		return Hit{Kind: KindGraphic, Identifier: id, Config: &cp}, true
	}
	return Hit{}, false
}

// MaskGraphics returns the graphics some entity uses as a mask. They clip
// instead of drawing.
func (s *Scope) MaskGraphics() map[*Graphic]bool {
	masks := make(map[*Graphic]bool)
	for _, v := range s.Visuals() {
		if m := v.Base().Mask; m != nil {
			masks[m] = true
		}
	}
	for _, c := range s.Containers() {
		if c.Mask != nil {
			masks[c.Mask] = true
		}
	}
	return masks
}
