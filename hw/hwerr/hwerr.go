// Package hwerr defines the errors surfaced by the machine core.
//
// Only construction and state loading report errors to the caller. Runtime
// anomalies (unmapped accesses, writes to ROM, CPU jams) are absorbed by the
// hardware and only show up in logs and counters.
package hwerr

//go:generate go tool stringer -type=Kind -trimprefix=Kind

import (
	"github.com/go-faster/errors"
)

type Kind int

const (
	KindConstruction Kind = iota // invalid configuration of a component
	KindState                    // malformed or out of range snapshot
	KindMigration                // snapshot version can't be migrated
)

// Error is the typed error returned by the core components.
type Error struct {
	Kind      Kind
	Component string // e.g "bus", "cpu", "clock", "ram"
	Op        string // e.g "new", "flash", "restore"
	Err       error
}

func (e *Error) Error() string {
	return e.Component + ": " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, component, op, format string, args ...any) error {
	return &Error{
		Kind:      kind,
		Component: component,
		Op:        op,
		Err:       errors.Errorf(format, args...),
	}
}

func Constructionf(component, op, format string, args ...any) error {
	return newf(KindConstruction, component, op, format, args...)
}

func Statef(component, op, format string, args ...any) error {
	return newf(KindState, component, op, format, args...)
}

func Migrationf(component, op, format string, args ...any) error {
	return newf(KindMigration, component, op, format, args...)
}

// Wrap annotates err with msg and tags it with kind, component and op. If
// err is already a *Error, its kind is preserved.
func Wrap(kind Kind, component, op string, err error, msg string) error {
	if err == nil {
		return nil
	}
	var herr *Error
	if errors.As(err, &herr) {
		kind = herr.Kind
	}
	return &Error{
		Kind:      kind,
		Component: component,
		Op:        op,
		Err:       errors.Wrap(err, msg),
	}
}

// Is reports whether err, or any error it wraps, is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var herr *Error
	if !errors.As(err, &herr) {
		return false
	}
	return herr.Kind == kind
}
