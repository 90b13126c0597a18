// Package nativeutil provides the native side of GregTech's RustUtility
// bridge: a greeting function callable from a managed host runtime.
//
// The host hands over one string it owns, the native side decodes it,
// formats "Hello, {input}!" and returns a new string allocated through the
// host's own allocator. Ownership of the result passes to the host.
//
// # Architecture Overview
//
//	nativeutil/             Root package with Handle, Host and Codec contracts
//	├── bridge/             Decode → format → encode pipeline and fatal routing
//	├── mutf8/              JVM modified UTF-8 codec
//	├── errors/             Structured error types
//	├── jni/                JNI symbol mangling and method descriptors
//	│   └── jnienv/         cgo adapter over JNIEnv*
//	├── wasmhost/           The same bridge as a wazero host function
//	└── cmd/librustutility/ c-shared library exporting the JNI symbol
//
// # Building the JNI Library
//
//	CGO_CFLAGS="-I$JAVA_HOME/include -I$JAVA_HOME/include/linux" \
//	    go build -buildmode=c-shared -o librustutility.so ./cmd/librustutility
//
// Java side:
//
//	package gregtech.api.util;
//
//	public class RustUtility {
//	    public static native String hello(String input);
//	}
//
// # Thread Safety
//
// Bridge is immutable after construction and safe for concurrent use.
// Host adapters are created per call and must not outlive it.
package nativeutil
