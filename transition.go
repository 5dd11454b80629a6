package tableau

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// configureTransitions compiles every entry and gives it a playhead. kept
// holds playheads carried over from the previous load.
func (s *Scope) configureTransitions(cfgs map[string]*TransitionConfig, kept map[string]*Playhead) error {
	compiled := make(map[string]*Transition, len(cfgs))
	ids := sortedKeys(cfgs)
	for _, id := range ids {
		t, err := compileTransition(id, cfgs[id])
		if err != nil {
			return err
		}
		compiled[id] = t
	}

	clear(s.playheads)
	clear(s.fingerprints)
	for _, id := range ids {
		cfg := cfgs[id]
		s.transitions.Store(id, compiled[id], cfg, cfg.Tag)
		if p, ok := kept[id]; ok {
			s.playheads[id] = p
		} else {
			s.playheads[id] = newPlayhead()
		}
		s.fingerprints[id] = fingerprint(cfg)
	}
	s.order = ids
	return nil
}

func compileTransition(id string, cfg *TransitionConfig) (*Transition, error) {
	supported, discrete := supportsProperty(cfg.Kind, cfg.Property)
	if !supported {
		return nil, &ConfigurationError{Kind: KindTransition, Identifier: id, Field: "property",
			Reason: fmt.Sprintf("%s has no transitionable property %q", cfg.Kind, cfg.Property)}
	}
	easing, ok := LookupEasing(cfg.Easing)
	if !ok {
		return nil, &ConfigurationError{Kind: KindTransition, Identifier: id, Field: "easing",
			Reason: fmt.Sprintf("unknown easing %q", cfg.Easing)}
	}
	if err := checkTimeline(id, cfg); err != nil {
		return nil, err
	}
	return &Transition{Target: cfg.Kind, Property: cfg.Property, Easing: easing, discrete: discrete}, nil
}

// keepPlayheads returns the playheads that survive a reload under
// PreserveTransitions: same identifier, same configuration fingerprint.
func (s *Scope) keepPlayheads(next map[string]*TransitionConfig) map[string]*Playhead {
	if s.policy != PreserveTransitions {
		return nil
	}
	kept := make(map[string]*Playhead)
	for id, cfg := range next {
		p, ok := s.playheads[id]
		if ok && s.fingerprints[id] == fingerprint(cfg) {
			kept[id] = p
		}
	}
	return kept
}

// Advance evaluates every transition at elapsed time since scene start.
// Each transition moves at most one keyframe per call. A failing transition
// is logged and skipped; the others still run.
func (s *Scope) Advance(elapsed time.Duration) {
	s.ticking = true
	defer func() { s.ticking = false }()
	s.elapsed = elapsed

	t := float64(elapsed) / float64(time.Millisecond)
	for _, id := range s.order {
		tr, ok := s.transitions.Get(id)
		if !ok {
			continue
		}
		cfg, _ := s.transitions.Config(tr)
		if err := s.perform(id, tr, cfg, s.playheads[id], t); err != nil {
			s.logger.Error("transition failed",
				zap.String("transition", id),
				zap.Stringer("kind", cfg.Kind),
				zap.String("property", cfg.Property),
				zap.Error(err),
			)
		}
	}
}

func (s *Scope) perform(id string, tr *Transition, cfg *TransitionConfig, p *Playhead, t float64) error {
	if !step(p, cfg, t) {
		return nil
	}
	value, err := frameValue(tr, cfg, p, t)
	if err != nil {
		var ie *InterpolationError
		if errors.As(err, &ie) {
			ie.Transition = id
		}
		return err
	}

	for _, target := range cfg.Include.Identifiers {
		if !s.exists(tr.Target, target) {
			return &ReferenceError{Kind: KindTransition, Identifier: id, Field: "include.identifiers", Missing: target}
		}
	}
	c := capabilityOf(tr.Target)
	for _, target := range cfg.Include.Identifiers {
		if err := c.set(s, target, tr.Property, value); err != nil {
			return err
		}
	}
	for _, tag := range cfg.Include.Tags {
		for _, target := range s.taggedIdentifiers(tr.Target, tag) {
			if err := c.set(s, target, tr.Property, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// step moves the playhead for time t and reports whether the transition has
// started. It never advances more than one keyframe.
func step(p *Playhead, cfg *TransitionConfig, t float64) bool {
	last := len(cfg.Times) - 1
	at := func(i int) float64 { return cfg.Times[i] + p.Offset }

	switch {
	case p.Frame < 0:
		if t < at(0) {
			return false
		}
		p.Frame = 0
	case p.Frame < last && at(p.Frame+1) <= t:
		p.Frame++
	}

	if cfg.Repeat && p.Frame == last && at(last) < t {
		if d := p.totalDuration(cfg.Times); d > 0 {
			p.Offset += d
			p.Frame = 0
			p.Loops++
		}
	}
	return true
}

// frameValue is the value at time t: the eased interpolation toward the
// next keyframe, or the exact current keyframe when holding at the end.
func frameValue(tr *Transition, cfg *TransitionConfig, p *Playhead, t float64) (any, error) {
	i := p.Frame
	if i+1 >= len(cfg.Frames) || tr.discrete {
		return cfg.Frames[i], nil
	}
	start, end := cfg.Times[i]+p.Offset, cfg.Times[i+1]+p.Offset
	ratio := 1.0
	if end > start {
		ratio = clamp01((t - start) / (end - start))
	}
	return LerpEased(cfg.Frames[i], cfg.Frames[i+1], ratio, tr.Easing)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *Scope) exists(kind Kind, id string) bool {
	var ok bool
	switch kind {
	case KindSprite:
		_, ok = s.sprites.Get(id)
	case KindGraphic:
		_, ok = s.graphics.Get(id)
	case KindContainer:
		_, ok = s.containers.Get(id)
	case KindFilter:
		_, ok = s.filters.Get(id)
	}
	return ok
}

func (s *Scope) taggedIdentifiers(kind Kind, tag string) []string {
	switch kind {
	case KindSprite:
		return identifiersOf(s.sprites, tag)
	case KindGraphic:
		return identifiersOf(s.graphics, tag)
	case KindContainer:
		return identifiersOf(s.containers, tag)
	case KindFilter:
		return identifiersOf(s.filters, tag)
	}
	return nil
}

func identifiersOf[E Disposable, C any](ix *Index[E, C], tag string) []string {
	tagged := ix.Tagged(tag)
	ids := make([]string, 0, len(tagged))
	for _, e := range tagged {
		if id, ok := ix.Identifier(e); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
