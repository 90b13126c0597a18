//go:build cgo

// Package fakejni provides an in-process JNIEnv backed by a hand-filled
// function table. Only the string, exception and FatalError entries are
// populated; anything else is NULL.
//
// The fake is process-global. Tests using it must not run in parallel.
package fakejni

/*
#cgo linux CFLAGS: -I/usr/lib/jvm/default-java/include -I/usr/lib/jvm/default-java/include/linux
#cgo darwin CFLAGS: -I/Library/Java/Home/include -I/Library/Java/Home/include/darwin
#include <stdlib.h>
#include <string.h>
#include <jni.h>

typedef struct {
	char  *data;
	jsize  len;
} fake_string;

enum {
	FAKE_BORROWS,
	FAKE_RELEASES,
	FAKE_NEW_STRINGS,
	FAKE_CLEARS,
	FAKE_FATALS,
	FAKE_COUNTERS
};

enum {
	FAKE_OK,
	FAKE_NULL,
	FAKE_NULL_WITH_EXCEPTION
};

static int fake_counters[FAKE_COUNTERS];
static int fake_chars_mode;
static int fake_new_mode;
static int fake_pending;
static char fake_fatal_msg[1024];

static struct JNINativeInterface_ fake_table;
static JNIEnv fake_env;

static jsize JNICALL fake_get_string_utf_length(JNIEnv *env, jstring s) {
	return ((fake_string *)s)->len;
}

static const char *JNICALL fake_get_string_utf_chars(JNIEnv *env, jstring s, jboolean *is_copy) {
	if (fake_chars_mode != FAKE_OK) {
		fake_pending = fake_chars_mode == FAKE_NULL_WITH_EXCEPTION;
		return NULL;
	}
	fake_counters[FAKE_BORROWS]++;
	if (is_copy != NULL) {
		*is_copy = JNI_FALSE;
	}
	return ((fake_string *)s)->data;
}

static void JNICALL fake_release_string_utf_chars(JNIEnv *env, jstring s, const char *chars) {
	fake_counters[FAKE_RELEASES]++;
}

static jstring fake_make_string(const char *data, jsize len) {
	fake_string *fs = malloc(sizeof *fs);
	fs->data = malloc((size_t)len + 1);
	memcpy(fs->data, data, (size_t)len);
	fs->data[len] = 0;
	fs->len = len;
	return (jstring)fs;
}

static jstring JNICALL fake_new_string_utf(JNIEnv *env, const char *utf) {
	if (fake_new_mode != FAKE_OK) {
		fake_pending = fake_new_mode == FAKE_NULL_WITH_EXCEPTION;
		return NULL;
	}
	fake_counters[FAKE_NEW_STRINGS]++;
	return fake_make_string(utf, (jsize)strlen(utf));
}

static jboolean JNICALL fake_exception_check(JNIEnv *env) {
	return fake_pending ? JNI_TRUE : JNI_FALSE;
}

static void JNICALL fake_exception_clear(JNIEnv *env) {
	fake_pending = 0;
	fake_counters[FAKE_CLEARS]++;
}

static void JNICALL fake_fatal_error(JNIEnv *env, const char *msg) {
	fake_counters[FAKE_FATALS]++;
	strncpy(fake_fatal_msg, msg, sizeof fake_fatal_msg - 1);
	fake_fatal_msg[sizeof fake_fatal_msg - 1] = 0;
}

static JNIEnv *fake_reset(void) {
	memset(&fake_table, 0, sizeof fake_table);
	fake_table.GetStringUTFLength = fake_get_string_utf_length;
	fake_table.GetStringUTFChars = fake_get_string_utf_chars;
	fake_table.ReleaseStringUTFChars = fake_release_string_utf_chars;
	fake_table.NewStringUTF = fake_new_string_utf;
	fake_table.ExceptionCheck = fake_exception_check;
	fake_table.ExceptionClear = fake_exception_clear;
	fake_table.FatalError = fake_fatal_error;
	fake_env = &fake_table;

	memset(fake_counters, 0, sizeof fake_counters);
	memset(fake_fatal_msg, 0, sizeof fake_fatal_msg);
	fake_chars_mode = FAKE_OK;
	fake_new_mode = FAKE_OK;
	fake_pending = 0;
	return &fake_env;
}

static int fake_counter(int which) { return fake_counters[which]; }
static void fake_set_chars_mode(int mode) { fake_chars_mode = mode; }
static void fake_set_new_mode(int mode) { fake_new_mode = mode; }
static int fake_exception_pending(void) { return fake_pending; }
static const char *fake_fatal_message(void) { return fake_fatal_msg; }
static const char *fake_string_data(jstring s) { return ((fake_string *)s)->data; }
static jsize fake_string_len(jstring s) { return ((fake_string *)s)->len; }

static void fake_free_string(jstring s) {
	fake_string *fs = (fake_string *)s;
	free(fs->data);
	free(fs);
}
*/
import "C"

import "unsafe"

// Mode selects how a fake JNI call behaves.
type Mode int

const (
	// OK performs the call.
	OK Mode = C.FAKE_OK
	// Null returns NULL without raising an exception.
	Null Mode = C.FAKE_NULL
	// NullWithException returns NULL and leaves an exception pending.
	NullWithException Mode = C.FAKE_NULL_WITH_EXCEPTION
)

// Env is the fake JNIEnv.
type Env struct {
	env     *C.JNIEnv
	strings []C.jstring
}

// New resets the fake and returns it.
func New() *Env {
	return &Env{env: C.fake_reset()}
}

// Pointer returns the JNIEnv* to hand to the adapter.
func (e *Env) Pointer() unsafe.Pointer {
	return unsafe.Pointer(e.env)
}

// NewString creates a jstring holding data verbatim.
func (e *Env) NewString(data []byte) unsafe.Pointer {
	var p *C.char
	if len(data) > 0 {
		p = (*C.char)(unsafe.Pointer(&data[0]))
	} else {
		p = C.CString("")
		defer C.free(unsafe.Pointer(p))
	}
	s := C.fake_make_string(p, C.jsize(len(data)))
	e.strings = append(e.strings, s)
	return unsafe.Pointer(s)
}

// Bytes returns a copy of the modified UTF-8 bytes held by s.
func Bytes(s unsafe.Pointer) []byte {
	js := C.jstring(s)
	return C.GoBytes(unsafe.Pointer(C.fake_string_data(js)), C.int(C.fake_string_len(js)))
}

// Free releases strings created through NewString. Strings returned by the
// adapter are released with FreeString.
func (e *Env) Free() {
	for _, s := range e.strings {
		C.fake_free_string(s)
	}
	e.strings = nil
}

// FreeString releases a string created by NewStringUTF.
func FreeString(s unsafe.Pointer) {
	if s != nil {
		C.fake_free_string(C.jstring(s))
	}
}

func (e *Env) SetStringChars(m Mode) { C.fake_set_chars_mode(C.int(m)) }
func (e *Env) SetNewString(m Mode)   { C.fake_set_new_mode(C.int(m)) }

func (e *Env) Borrows() int    { return int(C.fake_counter(C.FAKE_BORROWS)) }
func (e *Env) Releases() int   { return int(C.fake_counter(C.FAKE_RELEASES)) }
func (e *Env) NewStrings() int { return int(C.fake_counter(C.FAKE_NEW_STRINGS)) }
func (e *Env) Clears() int     { return int(C.fake_counter(C.FAKE_CLEARS)) }
func (e *Env) Fatals() int     { return int(C.fake_counter(C.FAKE_FATALS)) }

// ExceptionPending reports whether a fake exception is still set.
func (e *Env) ExceptionPending() bool { return C.fake_exception_pending() != 0 }

// FatalMessage returns the last message passed to FatalError.
func (e *Env) FatalMessage() string { return C.GoString(C.fake_fatal_message()) }
