// Package jnienv adapts a JNIEnv pointer to nativeutil.Host.
//
// Borrow maps to GetStringUTFChars/ReleaseStringUTFChars, Construct to
// NewStringUTF and Fatal to FatalError. Strings cross the boundary as
// modified UTF-8; pair this package with mutf8.Codec.
//
// jni.h is located through the default JDK paths in the cgo directives or
// through CGO_CFLAGS:
//
//	CGO_CFLAGS="-I$JAVA_HOME/include -I$JAVA_HOME/include/linux" go build ./...
//
// Note: this package requires cgo. Without it every operation returns
// ErrUnavailable.
package jnienv
