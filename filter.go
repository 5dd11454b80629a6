package tableau

import (
	"fmt"

	"go.uber.org/zap"
)

// filterHandler is one step of configuring a filter entry.
type filterHandler func(s *Scope, id string, f *Filter, cfg *FilterConfig)

// filterHandlers run in order for every entry.
var filterHandlers = [...]filterHandler{
	storeFilter,
	applyFilterProperties,
	attachFilterByIdentifier,
	attachFilterByTag,
}

// configureFilters creates or reuses one Filter per entry and attaches it
// to every visual its inclusion rule matches. Types are checked for every
// entry before any visual is touched.
func (s *Scope) configureFilters(cfgs map[string]*FilterConfig) error {
	ids := sortedKeys(cfgs)
	for _, id := range ids {
		if !knownFilterType(cfgs[id].Type) {
			return &ConfigurationError{Kind: KindFilter, Identifier: id, Field: "type",
				Reason: fmt.Sprintf("unknown filter type %q", cfgs[id].Type)}
		}
	}
	for _, id := range ids {
		cfg := cfgs[id]
		f, ok := s.filters.Get(id)
		if !ok || f.Type != cfg.Type {
			if ok {
				f.Dispose()
			}
			f = newFilter(cfg.Type)
		}
		for _, handle := range filterHandlers {
			handle(s, id, f, cfg)
		}
	}
	return nil
}

func knownFilterType(t FilterType) bool {
	switch t {
	case FilterBlur, FilterAlpha, FilterBrightness, FilterGlow:
		return true
	}
	return false
}

func storeFilter(s *Scope, id string, f *Filter, cfg *FilterConfig) {
	s.filters.Store(id, f, cfg, cfg.Tag)
}

func applyFilterProperties(_ *Scope, _ string, f *Filter, cfg *FilterConfig) {
	f.setAmount(cfg.Amount)
	if cfg.Color != nil {
		f.GlowColor = *cfg.Color
	} else {
		f.GlowColor = ColorGlow
	}
}

func attachFilterByIdentifier(s *Scope, id string, f *Filter, cfg *FilterConfig) {
	for _, target := range cfg.Include.Identifiers {
		sp, isSprite := s.sprites.Get(target)
		if isSprite {
			sp.attach(f)
		}
		g, isGraphic := s.graphics.Get(target)
		if isGraphic {
			g.attach(f)
		}
		if !isSprite && !isGraphic {
			s.logger.Warn("filter target not found",
				zap.String("filter", id),
				zap.Error(&ReferenceError{Kind: KindFilter, Identifier: id, Field: "include.identifiers", Missing: target}))
		}
	}
}

func attachFilterByTag(s *Scope, _ string, f *Filter, cfg *FilterConfig) {
	for _, tag := range cfg.Include.Tags {
		for _, sp := range s.sprites.Tagged(tag) {
			sp.attach(f)
		}
		for _, g := range s.graphics.Tagged(tag) {
			g.attach(f)
		}
	}
}
