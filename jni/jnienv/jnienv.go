//go:build cgo

package jnienv

/*
#cgo linux CFLAGS: -I/usr/lib/jvm/default-java/include -I/usr/lib/jvm/default-java/include/linux
#cgo darwin CFLAGS: -I/Library/Java/Home/include -I/Library/Java/Home/include/darwin
#include <stdlib.h>
#include <jni.h>

// Thin wrappers: cgo cannot call through the JNIEnv function table directly.
static jsize nu_get_string_utf_length(JNIEnv *env, jstring s) {
	return (*env)->GetStringUTFLength(env, s);
}

static const char *nu_get_string_utf_chars(JNIEnv *env, jstring s) {
	return (*env)->GetStringUTFChars(env, s, NULL);
}

static void nu_release_string_utf_chars(JNIEnv *env, jstring s, const char *chars) {
	(*env)->ReleaseStringUTFChars(env, s, chars);
}

static jstring nu_new_string_utf(JNIEnv *env, const char *chars) {
	return (*env)->NewStringUTF(env, chars);
}

static jboolean nu_exception_check(JNIEnv *env) {
	return (*env)->ExceptionCheck(env);
}

static void nu_exception_clear(JNIEnv *env) {
	(*env)->ExceptionClear(env);
}

static void nu_fatal_error(JNIEnv *env, const char *msg) {
	(*env)->FatalError(env, msg);
}
*/
import "C"

import (
	"unsafe"

	"github.com/gregtech/nativeutil"
	"github.com/gregtech/nativeutil/errors"
)

// Env implements nativeutil.Host over a JNIEnv pointer. It is only valid on
// the thread and for the duration of the native call that received it.
type Env struct {
	env *C.JNIEnv
}

var _ nativeutil.Host = (*Env)(nil)

// Wrap adapts the JNIEnv* passed to a native method.
func Wrap(env unsafe.Pointer) *Env {
	return &Env{env: (*C.JNIEnv)(env)}
}

// HandleOf converts a jstring (or any jobject) into a Handle.
func HandleOf(obj unsafe.Pointer) nativeutil.Handle {
	return nativeutil.Handle(uintptr(obj))
}

// Pointer converts a Handle back into the jobject it carries.
func Pointer(h nativeutil.Handle) unsafe.Pointer {
	// jobjects are JVM-owned references, never Go heap pointers.
	return unsafe.Pointer(uintptr(h))
}

// Borrow pins the modified UTF-8 chars of a jstring. The returned bytes
// point into JVM memory until release runs ReleaseStringUTFChars.
func (e *Env) Borrow(h nativeutil.Handle) ([]byte, func(), error) {
	if e.env == nil {
		return nil, nil, errors.NilPointer(errors.PhaseDecode, "JNIEnv")
	}
	if h == 0 {
		return nil, nil, errors.InvalidHandle(errors.PhaseDecode, 0, "null jstring")
	}

	s := C.jstring(Pointer(h))
	n := C.nu_get_string_utf_length(e.env, s)
	chars := C.nu_get_string_utf_chars(e.env, s)
	if chars == nil {
		if e.takeException() {
			return nil, nil, errors.PendingException(errors.PhaseDecode, "GetStringUTFChars")
		}
		return nil, nil, errors.InvalidHandle(errors.PhaseDecode, uint64(h), "GetStringUTFChars returned NULL")
	}

	release := func() {
		C.nu_release_string_utf_chars(e.env, s, chars)
	}
	if n <= 0 {
		return nil, release, nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(chars)), int(n)), release, nil
}

// Construct creates a new jstring from modified UTF-8 bytes. The bytes are
// copied into a NUL-terminated C buffer that is freed before returning.
func (e *Env) Construct(data []byte) (nativeutil.Handle, error) {
	if e.env == nil {
		return 0, errors.NilPointer(errors.PhaseEncode, "JNIEnv")
	}

	size := len(data) + 1
	buf := C.malloc(C.size_t(size))
	if buf == nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, size, nil)
	}
	defer C.free(buf)

	dst := unsafe.Slice((*byte)(buf), size)
	copy(dst, data)
	dst[len(data)] = 0

	s := C.nu_new_string_utf(e.env, (*C.char)(buf))
	if s == nil {
		var cause error
		if e.takeException() {
			cause = errors.PendingException(errors.PhaseEncode, "NewStringUTF")
		}
		return 0, errors.AllocationFailed(errors.PhaseEncode, len(data), cause)
	}
	return HandleOf(unsafe.Pointer(s)), nil
}

// Fatal reports err through FatalError. The JVM does not return from it.
func (e *Env) Fatal(err error) {
	msg := C.CString("nativeutil: " + err.Error())
	C.nu_fatal_error(e.env, msg)
	// unreachable while a JVM is attached
	C.free(unsafe.Pointer(msg))
	panic(err)
}

// takeException clears a pending Java exception and reports whether one was set.
func (e *Env) takeException() bool {
	if C.nu_exception_check(e.env) == C.JNI_TRUE {
		C.nu_exception_clear(e.env)
		return true
	}
	return false
}
