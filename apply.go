package tableau

import (
	"encoding/json"
	"fmt"
	"math"
)

// setter writes one property of an entity and brings its resolved state
// back in line with its configuration. A failing setter mutates nothing.
type setter func(s *Scope, id, property string, value any) error

// capability lists the properties a kind accepts and how to set them. A
// property mapped to true is discrete: transitions step to it instead of
// interpolating.
type capability struct {
	properties map[string]bool
	set        setter
}

var capabilities = [...]capability{
	KindSprite: {
		properties: map[string]bool{
			"x": false, "y": false, "width": false, "height": false, "ratio": false,
			"alpha": false, "rotation": false, "zIndex": false, "mask": true,
		},
		set: applySprite,
	},
	KindGraphic: {
		properties: map[string]bool{
			"x": false, "y": false, "width": false, "height": false, "radius": false,
			"thickness": false, "points": false, "color": false, "alpha": false,
			"rotation": false, "zIndex": false,
		},
		set: applyGraphic,
	},
	KindContainer: {
		properties: map[string]bool{
			"alpha": false, "mask": true, "flipped": true,
			"x": false, "y": false, "width": false, "height": false,
		},
		set: applyContainer,
	},
	KindFilter: {
		properties: map[string]bool{"amount": false, "color": false},
		set:        applyFilter,
	},
	KindTransition: {},
}

func capabilityOf(kind Kind) capability {
	if int(kind) < len(capabilities) {
		return capabilities[kind]
	}
	return capability{}
}

// supportsProperty reports whether property can be set on kind and whether
// it is discrete.
func supportsProperty(kind Kind, property string) (supported, discrete bool) {
	discrete, supported = capabilityOf(kind).properties[property]
	return supported, discrete
}

// Apply sets one property of one entity, the same way a transition does.
// The value takes the configuration form of the property: a number, an
// anchored position record, a color, a list of points, and so on.
func (s *Scope) Apply(kind Kind, id, property string, value any) error {
	c := capabilityOf(kind)
	if c.set == nil {
		return &ConfigurationError{Kind: kind, Identifier: id, Field: property,
			Reason: "kind has no settable properties"}
	}
	if _, ok := c.properties[property]; !ok {
		return &ConfigurationError{Kind: kind, Identifier: id, Field: property,
			Reason: "unsupported property"}
	}
	return c.set(s, id, property, value)
}

func applySprite(s *Scope, id, property string, value any) error {
	sp, ok := s.sprites.Get(id)
	if !ok {
		return &ReferenceError{Kind: KindSprite, Identifier: id, Field: property, Missing: id}
	}
	cfg, _ := s.sprites.Config(sp)
	next := *cfg
	if err := setSpriteField(&next, property, value); err != nil {
		return propertyError(KindSprite, id, property, err)
	}
	if property == "mask" && next.Mask != "" {
		if _, ok := s.graphics.Get(next.Mask); !ok {
			return &ReferenceError{Kind: KindSprite, Identifier: id, Field: "mask", Missing: next.Mask}
		}
	}
	*cfg = next
	sp.Mask = s.maskFor(KindSprite, id, cfg.Mask)
	return s.refresh(Ref{KindSprite, id}, map[Ref]bool{})
}

func setSpriteField(cfg *SpriteConfig, property string, value any) error {
	switch property {
	case "x":
		return decodeValue(value, &cfg.X)
	case "y":
		return decodeValue(value, &cfg.Y)
	case "mask":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected an identifier, got %T", value)
		}
		cfg.Mask = str
		return nil
	}
	f, err := toFloat(value)
	if err != nil {
		return err
	}
	switch property {
	case "width":
		cfg.Width = &f
	case "height":
		cfg.Height = &f
	case "ratio":
		cfg.Ratio = &f
	case "alpha":
		cfg.Alpha = &f
	case "rotation":
		cfg.Rotation = f
	case "zIndex":
		cfg.ZIndex = int(math.Round(f))
	}
	return nil
}

func applyGraphic(s *Scope, id, property string, value any) error {
	g, ok := s.graphics.Get(id)
	if !ok {
		return &ReferenceError{Kind: KindGraphic, Identifier: id, Field: property, Missing: id}
	}
	cfg, _ := s.graphics.Config(g)
	next := *cfg
	if err := setGraphicField(&next, property, value); err != nil {
		return propertyError(KindGraphic, id, property, err)
	}
	// Redraw into a scratch copy first so a bad value leaves g untouched.
	parent, _ := s.parentFrame(Ref{KindGraphic, id})
	scratch := *g
	if err := drawGraphic(&scratch, id, &next, parent); err != nil {
		return err
	}
	*cfg = next
	return s.refresh(Ref{KindGraphic, id}, map[Ref]bool{})
}

func setGraphicField(cfg *GraphicConfig, property string, value any) error {
	switch property {
	case "x":
		return decodeValue(value, &cfg.X)
	case "y":
		return decodeValue(value, &cfg.Y)
	case "radius":
		return setRelativeLength(&cfg.Radius, value)
	case "thickness":
		return setRelativeLength(&cfg.Thickness, value)
	case "points":
		var pts []LinePoint
		if err := decodeValue(value, &pts); err != nil {
			return err
		}
		cfg.Points = pts
		return nil
	case "color":
		c, err := colorFromValue(value)
		if err != nil {
			return err
		}
		cfg.Color = c
		return nil
	}
	f, err := toFloat(value)
	if err != nil {
		return err
	}
	switch property {
	case "width":
		cfg.Width = f
	case "height":
		cfg.Height = f
	case "alpha":
		cfg.Alpha = &f
	case "rotation":
		cfg.Rotation = f
	case "zIndex":
		cfg.ZIndex = int(math.Round(f))
	}
	return nil
}

// setRelativeLength accepts either a full {width|height} record or a bare
// number, which keeps the dimension already configured.
func setRelativeLength(dst *RelativeLength, value any) error {
	if f, ok := number(value); ok {
		if dst.Height != nil && dst.Width == nil {
			*dst = OfHeight(f)
		} else {
			*dst = OfWidth(f)
		}
		return nil
	}
	var l RelativeLength
	if err := decodeValue(value, &l); err != nil {
		return err
	}
	*dst = l
	return nil
}

func applyContainer(s *Scope, id, property string, value any) error {
	c, ok := s.containers.Get(id)
	if !ok {
		return &ReferenceError{Kind: KindContainer, Identifier: id, Field: property, Missing: id}
	}
	cfg, _ := s.containers.Config(c)
	switch property {
	case "alpha":
		f, err := toFloat(value)
		if err != nil {
			return propertyError(KindContainer, id, property, err)
		}
		cfg.Alpha = &f
		c.Alpha = f
		return nil
	case "mask":
		mask, ok := value.(string)
		if !ok {
			return propertyError(KindContainer, id, property, fmt.Errorf("expected an identifier, got %T", value))
		}
		if mask != "" {
			if _, ok := s.graphics.Get(mask); !ok {
				return &ReferenceError{Kind: KindContainer, Identifier: id, Field: "mask", Missing: mask}
			}
		}
		cfg.Mask = mask
		c.Mask = s.maskFor(KindContainer, id, mask)
		return nil
	case "flipped":
		flipped, err := toBool(value)
		if err != nil {
			return propertyError(KindContainer, id, property, err)
		}
		cfg.Flipped = flipped
		c.setFlipped(flipped, s.Viewport().X)
		return nil
	}

	next := *cfg
	switch property {
	case "x":
		if err := decodeValue(value, &next.X); err != nil {
			return propertyError(KindContainer, id, property, err)
		}
	case "y":
		if err := decodeValue(value, &next.Y); err != nil {
			return propertyError(KindContainer, id, property, err)
		}
	case "width", "height":
		f, err := toFloat(value)
		if err != nil {
			return propertyError(KindContainer, id, property, err)
		}
		if property == "width" {
			next.Width = &f
		} else {
			next.Height = &f
		}
	}
	*cfg = next
	return s.refresh(Ref{KindContainer, id}, map[Ref]bool{})
}

func applyFilter(s *Scope, id, property string, value any) error {
	f, ok := s.filters.Get(id)
	if !ok {
		return &ReferenceError{Kind: KindFilter, Identifier: id, Field: property, Missing: id}
	}
	cfg, _ := s.filters.Config(f)
	switch property {
	case "amount":
		amount, err := toFloat(value)
		if err != nil {
			return propertyError(KindFilter, id, property, err)
		}
		cfg.Amount = amount
		f.setAmount(amount)
	case "color":
		c, err := colorFromValue(value)
		if err != nil {
			return propertyError(KindFilter, id, property, err)
		}
		cfg.Color = &c
		f.GlowColor = c
	}
	return nil
}

func propertyError(kind Kind, id, property string, err error) error {
	return &ConfigurationError{Kind: kind, Identifier: id, Field: property, Reason: err.Error()}
}

// decodeValue converts a decoded frame value (maps, slices, numbers) into
// a typed configuration field through its JSON form.
func decodeValue(value, dst any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func toBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if f, ok := number(v); ok {
		return f != 0, nil
	}
	return false, fmt.Errorf("expected a boolean, got %v (%T)", v, v)
}
