package session

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes session errors so callers can decide whether an
// error is fatal (configuration) or scoped to the current connection.
type ErrorKind int

const (
	// KindConfiguration indicates a bad or missing certificate/key pair.
	// Fatal: surfaced before any socket is bound.
	KindConfiguration ErrorKind = iota
	// KindHandshake indicates a TLS negotiation failure. Aborts the
	// current connection attempt only.
	KindHandshake
	// KindStream indicates a read/write failure on an established
	// session. Terminates the current exchange, triggers cleanup.
	KindStream
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "Configuration Error"
	case KindHandshake:
		return "Handshake Error"
	case KindStream:
		return "Stream Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a classified session error.
type Error struct {
	Kind ErrorKind // category of error
	Op   string    // operation that failed, e.g. "load_keypair"
	Err  error     // underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsConfiguration checks whether err is a configuration error
func IsConfiguration(err error) bool {
	return hasKind(err, KindConfiguration)
}

// IsHandshake checks whether err is a TLS handshake error
func IsHandshake(err error) bool {
	return hasKind(err, KindHandshake)
}

// IsStream checks whether err is a mid-session stream error
func IsStream(err error) bool {
	return hasKind(err, KindStream)
}

func hasKind(err error, kind ErrorKind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
