package tableau

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for errors that would abort a load:
// unknown shape, filter or easing names, unsupported transition
// properties, malformed timelines, empty inclusion rules and rotated lines.
// All problems are reported together. Dangling parent, mask and inclusion
// references are not errors here; the scope logs and skips them.
func (c *Config) Validate() error {
	var errs []error
	for _, id := range sortedKeys(c.Graphics) {
		errs = append(errs, validateGraphic(id, c.Graphics[id])...)
	}
	for _, id := range sortedKeys(c.Filters) {
		errs = append(errs, validateFilter(id, c.Filters[id])...)
	}
	for _, id := range sortedKeys(c.Transitions) {
		errs = append(errs, validateTransition(id, c.Transitions[id])...)
	}
	for _, id := range sortedKeys(c.Sprites) {
		if c.Sprites[id] == nil {
			errs = append(errs, &ConfigurationError{Kind: KindSprite, Identifier: id, Reason: "empty record"})
		}
	}
	for _, id := range sortedKeys(c.Containers) {
		if c.Containers[id] == nil {
			errs = append(errs, &ConfigurationError{Kind: KindContainer, Identifier: id, Reason: "empty record"})
		}
	}
	return errors.Join(errs...)
}

func validateGraphic(id string, g *GraphicConfig) []error {
	if g == nil {
		return []error{&ConfigurationError{Kind: KindGraphic, Identifier: id, Reason: "empty record"}}
	}
	bad := func(field, reason string) error {
		return &ConfigurationError{Kind: KindGraphic, Identifier: id, Field: field, Reason: reason}
	}
	var errs []error
	switch g.Kind {
	case ShapeRectangle, ShapeEllipse:
	case ShapeCircle:
		if g.Radius.IsZero() {
			errs = append(errs, bad("radius", "circle needs a radius"))
		}
	case ShapeRoundedRectangle:
		if g.Radius.IsZero() {
			errs = append(errs, bad("radius", "rounded rectangle needs a radius"))
		}
	case ShapeLine:
		if g.Rotation != 0 {
			errs = append(errs, bad("rotation", "lines cannot rotate"))
		}
		if len(g.Points) < 2 {
			errs = append(errs, bad("points", fmt.Sprintf("a line needs at least 2 points, got %d", len(g.Points))))
		}
		switch g.Cap {
		case "", CapButt, CapRound, CapSquare:
		default:
			errs = append(errs, bad("cap", fmt.Sprintf("unknown line cap %q", g.Cap)))
		}
	default:
		errs = append(errs, bad("kind", fmt.Sprintf("unknown shape kind %q", g.Kind)))
	}
	if g.Radius.Width != nil && g.Radius.Height != nil {
		errs = append(errs, bad("radius", "set width or height, not both"))
	}
	if g.Thickness.Width != nil && g.Thickness.Height != nil {
		errs = append(errs, bad("thickness", "set width or height, not both"))
	}
	return errs
}

func validateFilter(id string, f *FilterConfig) []error {
	if f == nil {
		return []error{&ConfigurationError{Kind: KindFilter, Identifier: id, Reason: "empty record"}}
	}
	var errs []error
	if !knownFilterType(f.Type) {
		errs = append(errs, &ConfigurationError{Kind: KindFilter, Identifier: id, Field: "type",
			Reason: fmt.Sprintf("unknown filter type %q", f.Type)})
	}
	if f.Include.IsEmpty() {
		errs = append(errs, &ConfigurationError{Kind: KindFilter, Identifier: id, Field: "include",
			Reason: "needs identifiers or tags"})
	}
	return errs
}

func validateTransition(id string, t *TransitionConfig) []error {
	if t == nil {
		return []error{&ConfigurationError{Kind: KindTransition, Identifier: id, Reason: "empty record"}}
	}
	var errs []error
	if supported, _ := supportsProperty(t.Kind, t.Property); !supported {
		errs = append(errs, &ConfigurationError{Kind: KindTransition, Identifier: id, Field: "property",
			Reason: fmt.Sprintf("%s has no transitionable property %q", t.Kind, t.Property)})
	}
	if _, ok := LookupEasing(t.Easing); !ok {
		errs = append(errs, &ConfigurationError{Kind: KindTransition, Identifier: id, Field: "easing",
			Reason: fmt.Sprintf("unknown easing %q", t.Easing)})
	}
	if t.Include.IsEmpty() {
		errs = append(errs, &ConfigurationError{Kind: KindTransition, Identifier: id, Field: "include",
			Reason: "needs identifiers or tags"})
	}
	if err := checkTimeline(id, t); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// checkTimeline requires a non-empty timeline with one time per frame and
// times that never decrease.
func checkTimeline(id string, t *TransitionConfig) error {
	bad := func(reason string) error {
		return &ConfigurationError{Kind: KindTransition, Identifier: id, Field: "times", Reason: reason}
	}
	if len(t.Frames) == 0 {
		return bad("no keyframes")
	}
	if len(t.Times) != len(t.Frames) {
		return bad(fmt.Sprintf("%d times for %d frames", len(t.Times), len(t.Frames)))
	}
	for i := 1; i < len(t.Times); i++ {
		if t.Times[i] < t.Times[i-1] {
			return bad(fmt.Sprintf("time %v at index %d is before %v", t.Times[i], i, t.Times[i-1]))
		}
	}
	return nil
}
