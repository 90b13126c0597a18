// Package errors provides structured error types for nativeutil.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Decode and encode phase errors are fatal: they are raised while a string
// crosses the host boundary and the call cannot continue.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
//		Encoding("mutf8").
//		Offset(12).
//		Detail("truncated sequence").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(errors.PhaseDecode, h, "null reference")
//	err := errors.AllocationFailed(errors.PhaseEncode, 64, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
