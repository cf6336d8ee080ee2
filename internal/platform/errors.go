package platform

import (
	"errors"
	"fmt"
)

// Kind classifies failures by the component that produced them.
type Kind string

const (
	KindProbe       Kind = "probe"
	KindDevice      Kind = "device"
	KindSeat        Kind = "seat"
	KindWindowState Kind = "window_state"
	KindAction      Kind = "action"
)

// Error is the error type shared by every layer of a session.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op != "" {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err, or anything it wraps, is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	// Keep the innermost classification when layers re-wrap.
	var existing *Error
	if errors.As(err, &existing) && existing.Kind == kind {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// ProbeErr wraps a display or geometry query failure.
func ProbeErr(op string, err error) error { return newError(KindProbe, op, err) }

// DeviceErr wraps a virtual device creation or teardown failure.
func DeviceErr(op string, err error) error { return newError(KindDevice, op, err) }

// SeatErr wraps a seat create/attach/remove failure.
func SeatErr(op string, err error) error { return newError(KindSeat, op, err) }

// WindowStateErr wraps a stacking-flag read or write failure.
func WindowStateErr(op string, err error) error { return newError(KindWindowState, op, err) }

// ActionErr wraps an invalid action argument.
func ActionErr(op string, err error) error { return newError(KindAction, op, err) }
