package tableau

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// Easing is a named easing curve. The zero value is linear.
type Easing struct {
	name string
	fn   ease.TweenFunc
}

var easings = map[string]ease.TweenFunc{
	"linear": ease.Linear,

	"easeInQuad":    ease.InQuad,
	"easeOutQuad":   ease.OutQuad,
	"easeInOutQuad": ease.InOutQuad,

	"easeInCubic":    ease.InCubic,
	"easeOutCubic":   ease.OutCubic,
	"easeInOutCubic": ease.InOutCubic,

	"easeInQuart":    ease.InQuart,
	"easeOutQuart":   ease.OutQuart,
	"easeInOutQuart": ease.InOutQuart,

	"easeInQuint":    ease.InQuint,
	"easeOutQuint":   ease.OutQuint,
	"easeInOutQuint": ease.InOutQuint,

	"easeInSine":    ease.InSine,
	"easeOutSine":   ease.OutSine,
	"easeInOutSine": ease.InOutSine,

	"easeInExpo":    ease.InExpo,
	"easeOutExpo":   ease.OutExpo,
	"easeInOutExpo": ease.InOutExpo,

	"easeInCirc":    ease.InCirc,
	"easeOutCirc":   ease.OutCirc,
	"easeInOutCirc": ease.InOutCirc,

	"easeInBack":    ease.InBack,
	"easeOutBack":   ease.OutBack,
	"easeInOutBack": ease.InOutBack,

	"easeInElastic":    ease.InElastic,
	"easeOutElastic":   ease.OutElastic,
	"easeInOutElastic": ease.InOutElastic,

	"easeInBounce":    ease.InBounce,
	"easeOutBounce":   ease.OutBounce,
	"easeInOutBounce": ease.InOutBounce,
}

// LookupEasing returns the easing with the given name. The empty name is
// linear.
func LookupEasing(name string) (Easing, bool) {
	if name == "" {
		return Easing{}, true
	}
	fn, ok := easings[name]
	if !ok {
		return Easing{}, false
	}
	return Easing{name: name, fn: fn}, true
}

// EasingNames returns the catalogue in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the catalogue name ("linear" for the zero value).
func (e Easing) Name() string {
	if e.name == "" {
		return "linear"
	}
	return e.name
}

// Ease maps progress t through the curve. Inputs are clamped to [0, 1] and
// the endpoints are exact: Ease(0) == 0 and Ease(1) == 1.
func (e Easing) Ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	// linear stays in float64 so halfway points are exact
	if e.fn == nil || e.name == "linear" {
		return t
	}
	return float64(e.fn(float32(t), 0, 1, 1))
}
