package tableau

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Lerp interpolates linearly between two frame values. Numbers interpolate
// directly; arrays and string-keyed records interpolate leaf by leaf and must
// share a shape. The result is a float64, []any or map[string]any.
//
// t is not clamped: values outside [0, 1] extrapolate. Lerp(a, b, 0) returns
// a and Lerp(a, b, 1) returns b exactly.
func Lerp(a, b any, t float64) (any, error) {
	return lerpPath(a, b, t, "")
}

// LerpEased maps t through the easing before interpolating.
func LerpEased(a, b any, t float64, e Easing) (any, error) {
	return lerpPath(a, b, e.Ease(t), "")
}

func lerpPath(a, b any, t float64, path string) (any, error) {
	if x, ok := number(a); ok {
		y, ok := number(b)
		if !ok {
			return nil, &InterpolationError{Path: path, Reason: fmt.Sprintf("cannot interpolate number %v with %T", x, b)}
		}
		return lerpFloat(x, y, t), nil
	}

	if xs, ok := asSlice(a); ok {
		ys, ok := asSlice(b)
		if !ok {
			return nil, &InterpolationError{Path: path, Reason: fmt.Sprintf("cannot interpolate array with %T", b)}
		}
		if len(xs) != len(ys) {
			return nil, &InterpolationError{Path: path, Reason: fmt.Sprintf("array lengths differ: %d and %d", len(xs), len(ys))}
		}
		out := make([]any, len(xs))
		for i := range xs {
			v, err := lerpPath(xs[i], ys[i], t, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	if xm, ok := a.(map[string]any); ok {
		ym, ok := b.(map[string]any)
		if !ok {
			return nil, &InterpolationError{Path: path, Reason: fmt.Sprintf("cannot interpolate record with %T", b)}
		}
		if len(xm) != len(ym) {
			return nil, &InterpolationError{Path: path, Reason: fmt.Sprintf("record key sets differ: %v and %v", keysOf(xm), keysOf(ym))}
		}
		out := make(map[string]any, len(xm))
		for k, xv := range xm {
			yv, ok := ym[k]
			if !ok {
				return nil, &InterpolationError{Path: path, Reason: fmt.Sprintf("record key %q missing from end frame", k)}
			}
			v, err := lerpPath(xv, yv, t, joinPath(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}

	return nil, &InterpolationError{Path: path, Reason: fmt.Sprintf("non-numeric leaf %v (%T)", a, a)}
}

// lerpFloat keeps the endpoints exact instead of relying on a+(b-a)*t
// rounding back to them.
func lerpFloat(a, b, t float64) float64 {
	switch {
	case t == 0 || a == b:
		return a
	case t == 1:
		return b
	}
	return a + (b-a)*t
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

// number reports v as a float64 when it is one of the numeric types produced
// by the JSON and YAML decoders or by Go callers.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, error) {
	if f, ok := number(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %v (%T)", v, v)
}
