package tableau

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned when a configuration names a kind outside
	// the closed set.
	ErrUnknownKind = errors.New("tableau: unknown kind")

	// ErrLoadInProgress is returned by Load while another load is running.
	ErrLoadInProgress = errors.New("tableau: load already in progress")

	// ErrReentrantLoad is returned by Load when called from inside a tick.
	ErrReentrantLoad = errors.New("tableau: load called from inside a tick")
)

// ConfigurationError reports configuration the scope cannot act on: an
// unknown filter or shape kind, an unknown easing, a transition naming a
// property its target kind does not support, or a malformed timeline. It
// aborts the configure pass in progress.
type ConfigurationError struct {
	Kind       Kind
	Identifier string
	Field      string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tableau: %s %q: %s: %s", e.Kind, e.Identifier, e.Field, e.Reason)
	}
	return fmt.Sprintf("tableau: %s %q: %s", e.Kind, e.Identifier, e.Reason)
}

// ReferenceError reports an identifier that names no entity: a parent, a
// mask, or an inclusion rule entry.
type ReferenceError struct {
	Kind       Kind   // kind of the entity holding the reference
	Identifier string // identifier of the entity holding the reference
	Field      string // "parent", "mask", "include.identifiers", ...
	Missing    string // the identifier that could not be resolved
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("tableau: %s %q: %s references unknown identifier %q",
		e.Kind, e.Identifier, e.Field, e.Missing)
}

// InterpolationError reports frames whose shapes cannot be interpolated:
// mismatched array lengths, mismatched record keys, or non-numeric leaves.
type InterpolationError struct {
	Transition string // empty when raised outside the scheduler
	Path       string // location of the offending leaf, e.g. "[1].x"
	Reason     string
}

func (e *InterpolationError) Error() string {
	path := e.Path
	if path == "" {
		path = "value"
	}
	if e.Transition == "" {
		return fmt.Sprintf("tableau: cannot interpolate %s: %s", path, e.Reason)
	}
	return fmt.Sprintf("tableau: transition %q: cannot interpolate %s: %s", e.Transition, path, e.Reason)
}
