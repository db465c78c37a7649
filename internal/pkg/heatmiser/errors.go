package heatmiser

import (
	"errors"
	"fmt"
)

// ErrWrongPin is reported when the thermostat rejects the access code. The
// device signals this by returning a zero-length DCB rather than an explicit
// status, so it is detected while parsing the read reply.
var ErrWrongPin = errors.New("heatmiser: access code rejected by device")

// TransportError wraps a connect, deadline or socket failure. The poll daemon
// treats it as recoverable for the affected device cycle.
type TransportError struct {
	Addr string
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("heatmiser: transport %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a malformed or inconsistent frame or DCB. Expected
// and Got carry the disagreeing values (lengths, opcodes, checksums); Raw
// holds the offending bytes for diagnosis.
type ProtocolError struct {
	Reason   string
	Expected int
	Got      int
	Raw      []byte
	Err      error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("heatmiser: protocol: %s: %v", e.Reason, e.Err)
	}
	if e.Expected != e.Got {
		return fmt.Sprintf("heatmiser: protocol: %s: expected %d, got %d", e.Reason, e.Expected, e.Got)
	}
	return fmt.Sprintf("heatmiser: protocol: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ValidationError reports malformed encoder input: an unknown or read-only
// field, a value of the wrong type or range, or a program grid that does not
// match the device's schedule mode. It indicates a caller bug and is never
// retried or swallowed by the daemon.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("heatmiser: invalid write: %s", e.Reason)
	}
	return fmt.Sprintf("heatmiser: invalid write of %q: %s", e.Field, e.Reason)
}

// IsRecoverable reports whether err is a per-cycle recoverable failure
// (transport or protocol) as opposed to a caller error.
func IsRecoverable(err error) bool {
	var te *TransportError
	var pe *ProtocolError
	return errors.As(err, &te) || errors.As(err, &pe)
}
