//go:build !cgo

package jnienv

import (
	"unsafe"

	"github.com/gregtech/nativeutil"
	"github.com/gregtech/nativeutil/errors"
)

// ErrUnavailable is returned by every Env operation when the library is
// built without cgo. A JNIEnv can only be driven through cgo.
var ErrUnavailable = errors.Unavailable(errors.PhaseLoad, "JNI requires cgo; rebuild with CGO_ENABLED=1")

// Env is a stub implementation for when cgo is disabled.
// All operations return ErrUnavailable.
type Env struct {
	env unsafe.Pointer
}

var _ nativeutil.Host = (*Env)(nil)

func Wrap(env unsafe.Pointer) *Env {
	return &Env{env: env}
}

func HandleOf(obj unsafe.Pointer) nativeutil.Handle {
	return nativeutil.Handle(uintptr(obj))
}

func Pointer(h nativeutil.Handle) unsafe.Pointer {
	// jobjects are JVM-owned references, never Go heap pointers.
	return unsafe.Pointer(uintptr(h))
}

func (e *Env) Borrow(nativeutil.Handle) ([]byte, func(), error) {
	return nil, nil, ErrUnavailable
}

func (e *Env) Construct([]byte) (nativeutil.Handle, error) {
	return 0, ErrUnavailable
}

// Fatal has no JVM to report to and panics with err.
func (e *Env) Fatal(err error) {
	panic(err)
}
