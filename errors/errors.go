package errors

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Re-exported so callers don't need both this package and the stdlib one.
var (
	Is = stderrors.Is
	As = stderrors.As
)

// Error is the base error type, adds a stack trace and error wrapping
type Error struct {
	msg     string
	wrapped error
	stack   []byte
}

// New makes a new error
func New(msg string, args ...interface{}) *Error {
	return &Error{
		msg:   fmt.Sprintf(msg, args...),
		stack: debug.Stack(),
	}
}

// Wrap wraps an error with a new error
func Wrap(err error, msg string, args ...interface{}) *Error {
	e := &Error{
		msg:     fmt.Sprintf(msg, args...),
		wrapped: err,
	}
	if _, ok := err.(*Error); !ok {
		e.stack = debug.Stack()
	}
	return e
}

// Error gets the error output
func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.wrapped.Error())
	}
	return e.msg
}

// Unwrap returns the inner error wrapped by this error
func (e *Error) Unwrap() error {
	return e.wrapped
}

// InnerMost returns the innermost error wrapped by this error
func (e *Error) InnerMost() error {
	if e.wrapped == nil {
		return e
	}
	if inner, ok := e.wrapped.(*Error); ok {
		return inner.InnerMost()
	}
	return e.wrapped
}

// Stack returns the stack trace captured when the error was created
func (e *Error) Stack() []byte {
	return e.stack
}

// DecodeError occurs when bytes read off the wire cannot be interpreted
// under the packstream grammar or the active protocol version. Fatal to
// the connection.
type DecodeError struct {
	Message string
}

// NewDecodeError makes a new DecodeError
func NewDecodeError(msg string, args ...interface{}) *DecodeError {
	return &DecodeError{Message: fmt.Sprintf(msg, args...)}
}

func (e *DecodeError) Error() string {
	return "bolt: decode error: " + e.Message
}

// FramingError occurs when the chunked message stream is malformed. Fatal
// to the connection.
type FramingError struct {
	Message string
	Err     error
}

// NewFramingError makes a new FramingError wrapping an underlying cause
func NewFramingError(err error, msg string, args ...interface{}) *FramingError {
	return &FramingError{Message: fmt.Sprintf(msg, args...), Err: err}
}

func (e *FramingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bolt: framing error: %s: %s", e.Message, e.Err)
	}
	return "bolt: framing error: " + e.Message
}

func (e *FramingError) Unwrap() error {
	return e.Err
}

// NegotiationError occurs when the server agrees to none of the proposed
// protocol versions. The connection is never established.
type NegotiationError struct {
	Message string
}

// NewNegotiationError makes a new NegotiationError
func NewNegotiationError(msg string, args ...interface{}) *NegotiationError {
	return &NegotiationError{Message: fmt.Sprintf(msg, args...)}
}

func (e *NegotiationError) Error() string {
	return "bolt: version negotiation failed: " + e.Message
}

// ProtocolViolationError occurs when the server sends a response that does
// not correspond to any expected observer or signature. Fatal to the
// connection.
type ProtocolViolationError struct {
	Message string
}

// NewProtocolViolationError makes a new ProtocolViolationError
func NewProtocolViolationError(msg string, args ...interface{}) *ProtocolViolationError {
	return &ProtocolViolationError{Message: fmt.Sprintf(msg, args...)}
}

func (e *ProtocolViolationError) Error() string {
	return "bolt: protocol violation: " + e.Message
}

// ServerError carries the code and message of a FAILURE response. The code
// namespace (e.g. Neo.ClientError.Statement.SyntaxError) classifies the
// failure but the session layer only forwards it.
type ServerError struct {
	Code    string
	Message string
}

// NewServerError makes a new ServerError from a failure code and message
func NewServerError(code, message string) *ServerError {
	return &ServerError{Code: code, Message: message}
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server failure: %s (%s)", e.Message, e.Code)
}

// Classification returns the second segment of the error code, one of
// ClientError, TransientError or DatabaseError. Empty when the code does
// not follow the namespace convention.
func (e *ServerError) Classification() string {
	parts := strings.Split(e.Code, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// IsTransient reports whether the failure is safe to retry on another
// connection.
func (e *ServerError) IsTransient() bool {
	return e.Classification() == "TransientError"
}

// DomainStateError is a client-side illegal-call error: running on a failed
// transaction, committing twice, using a feature the negotiated version
// does not support. Raised synchronously, never touches the wire.
type DomainStateError struct {
	Message string
}

// NewDomainStateError makes a new DomainStateError
func NewDomainStateError(msg string, args ...interface{}) *DomainStateError {
	return &DomainStateError{Message: fmt.Sprintf(msg, args...)}
}

func (e *DomainStateError) Error() string {
	return e.Message
}

// IgnoredError is delivered to an observer whose request the server ignored
// because an earlier statement in the same batch failed.
type IgnoredError struct {
	Cause error
}

// NewIgnoredError makes a new IgnoredError with the failure that caused the
// server to ignore the request
func NewIgnoredError(cause error) *IgnoredError {
	return &IgnoredError{Cause: cause}
}

func (e *IgnoredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("request ignored: an earlier statement failed: %s", e.Cause)
	}
	return "request ignored: an earlier statement failed"
}

func (e *IgnoredError) Unwrap() error {
	return e.Cause
}
