package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode Phase = "decode" // host string to Go
	PhaseEncode Phase = "encode" // Go to host string
	PhaseBind   Phase = "bind"   // host function registration
	PhaseLoad   Phase = "load"   // library or module loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidHandle    Kind = "invalid_handle"
	KindInvalidEncoding  Kind = "invalid_encoding"
	KindAllocation       Kind = "allocation"
	KindPendingException Kind = "pending_exception"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindNilPointer       Kind = "nil_pointer"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
	KindRegistration     Kind = "registration"
	KindUnavailable      Kind = "unavailable"
	KindHostPanic        Kind = "host_panic"
)

// Error is the structured error type used throughout nativeutil
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Encoding string
	Detail   string
	Offset   int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Encoding != "" {
		b.WriteString(" (")
		b.WriteString(e.Encoding)
		if e.Offset >= 0 && e.Kind == KindInvalidEncoding {
			fmt.Fprintf(&b, " at byte %d", e.Offset)
		}
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Fatal reports whether the error must be delivered to the host's fatal
// channel. Failures while moving a string across the boundary cannot be
// recovered inside the native call.
func (e *Error) Fatal() bool {
	return e.Phase == PhaseDecode || e.Phase == PhaseEncode
}

// IsFatal reports whether err, or any error it wraps, is a fatal interop error.
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Fatal()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Encoding sets the string encoding name
func (b *Builder) Encoding(name string) *Builder {
	b.err.Encoding = name
	return b
}

// Offset sets the byte offset of the failure
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidEncoding creates an invalid byte sequence error
func InvalidEncoding(phase Phase, encoding string, data []byte, offset int, detail string) *Error {
	var preview []byte
	if offset >= 0 && offset < len(data) {
		preview = data[offset:]
	}
	if len(preview) > 8 {
		preview = preview[:8]
	}
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidEncoding,
		Encoding: encoding,
		Offset:   offset,
		Detail:   fmt.Sprintf("%s: %x", detail, preview),
	}
}

// InvalidHandle creates an error for a handle the host cannot resolve
func InvalidHandle(phase Phase, handle uint64, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Offset: -1,
		Detail: fmt.Sprintf("handle %#x: %s", handle, detail),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Offset: -1,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// PendingException creates an error for a host exception raised by an interop call
func PendingException(phase Phase, call string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPendingException,
		Offset: -1,
		Detail: fmt.Sprintf("%s raised an exception", call),
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(phase Phase, offset, length uint32, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Offset: -1,
		Detail: fmt.Sprintf("range [%d, %d) exceeds memory size %d", offset, uint64(offset)+uint64(length), size),
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Offset: -1,
		Detail: what + " is nil",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Offset: -1,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// Registration creates a registration error
func Registration(namespace, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindRegistration,
		Offset: -1,
		Detail: fmt.Sprintf("register %s#%s", namespace, name),
		Cause:  cause,
	}
}

// Unavailable creates an error for a host facility missing from this build
func Unavailable(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnavailable,
		Offset: -1,
		Detail: what,
	}
}

// HostPanic creates an error for a panic raised while talking to the host
func HostPanic(phase Phase, recovered any) *Error {
	if err, ok := recovered.(error); ok {
		return &Error{
			Phase:  phase,
			Kind:   KindHostPanic,
			Offset: -1,
			Detail: "panic during host call",
			Cause:  err,
		}
	}
	return &Error{
		Phase:  phase,
		Kind:   KindHostPanic,
		Offset: -1,
		Detail: fmt.Sprintf("panic during host call: %v", recovered),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}
