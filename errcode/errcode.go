package errcode

import (
	"context"
	"errors"

	"touchcode-go/drivers/spd2010"
	"touchcode-go/drivers/tca9554"
)

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"
	NotReady      Code = "not_ready"

	UnknownBus Code = "unknown_bus"
	UnknownPin Code = "unknown_pin"
	BusFault   Code = "bus_fault"
	ShortRead  Code = "short_read"
	Protocol   Code = "protocol"
	Timeout    Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return MapDriverErr(err)
}

// MapDriverErr maps low-level driver errors to a Code.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, spd2010.ErrInvalidParam),
		errors.Is(err, tca9554.ErrInvalidPin),
		errors.Is(err, tca9554.ErrInvalidAddress):
		return InvalidParams
	case errors.Is(err, spd2010.ErrShortRead):
		return ShortRead
	case errors.Is(err, spd2010.ErrProtocol):
		return Protocol
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, spd2010.ErrBus), errors.Is(err, tca9554.ErrBus):
		return BusFault
	}
	return Error
}
