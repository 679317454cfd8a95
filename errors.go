package ftp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can branch on what went wrong
// instead of on concrete error types.
type Kind int

const (
	// KindConnection covers address resolution and connect failures on the
	// control or data channel.
	KindConnection Kind = iota + 1

	// KindProtocol covers malformed responses, unexpected response codes and
	// malformed passive-mode tuples.
	KindProtocol

	// KindIO covers local file open/read/write failures and socket
	// read/write failures.
	KindIO

	// KindTransfer is a mid-stream send/receive failure on a data channel.
	// It is a specialization of KindIO.
	KindTransfer

	// KindState is returned when an operation is called in a session state
	// that does not allow it. No network I/O is attempted.
	KindState
)

// String returns the name of the error kind.
func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "ConnectionError"
	case KindProtocol:
		return "ProtocolError"
	case KindIO:
		return "IOError"
	case KindTransfer:
		return "TransferError"
	case KindState:
		return "StateError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error value returned by every session operation.
// It carries the kind of failure and, for protocol failures, the full
// context of the command/response exchange.
type Error struct {
	// Kind is the failure class.
	Kind Kind

	// Op is the session operation that failed (e.g. "download").
	Op string

	// Command is the FTP command that was sent, without arguments (e.g. "RETR").
	Command string

	// Code is the numeric response code, or 0 if no response was parsed.
	Code int

	// Message is a human-readable description, or the server's message for
	// protocol failures.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "ftp: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	if e.Command != "" {
		msg += e.Command + " failed: "
	}
	msg += e.Message
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the underlying cause, for github.com/pkg/errors.Cause.
func (e *Error) Cause() error {
	return e.Err
}

// Is4xx returns true if the error carries a transient negative completion code.
func (e *Error) Is4xx() bool {
	return e.Code >= 400 && e.Code < 500
}

// Is5xx returns true if the error carries a permanent negative completion code.
func (e *Error) Is5xx() bool {
	return e.Code >= 500 && e.Code < 600
}

// IsTemporary returns true if the server reported a temporary failure (4xx).
func (e *Error) IsTemporary() bool {
	return e.Is4xx()
}

// KindOf returns the kind of err, or 0 if err is not (and does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is an *Error of the given kind.
// A KindTransfer error also matches KindIO.
func IsKind(err error, kind Kind) bool {
	k := KindOf(err)
	if k == kind {
		return true
	}
	return kind == KindIO && k == KindTransfer
}

func newError(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

func connectionError(op string, cause error, format string, args ...any) *Error {
	return newError(KindConnection, op, fmt.Sprintf(format, args...), cause)
}

func ioError(op string, cause error, format string, args ...any) *Error {
	return newError(KindIO, op, fmt.Sprintf(format, args...), cause)
}

func transferError(op string, cause error, format string, args ...any) *Error {
	return newError(KindTransfer, op, fmt.Sprintf(format, args...), cause)
}

func stateError(op string, state State) *Error {
	return newError(KindState, op, fmt.Sprintf("not allowed in state %s", state), nil)
}

func protocolError(op, command string, code int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindProtocol,
		Op:      op,
		Command: command,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
