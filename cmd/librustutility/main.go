// Command librustutility builds the native library behind
// gregtech.api.util.RustUtility.
//
//	go build -buildmode=c-shared -o librustutility.so ./cmd/librustutility
package main

/*
#cgo linux CFLAGS: -I/usr/lib/jvm/default-java/include -I/usr/lib/jvm/default-java/include/linux
#cgo darwin CFLAGS: -I/Library/Java/Home/include -I/Library/Java/Home/include/darwin
#include <jni.h>
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/gregtech/nativeutil/bridge"
	"github.com/gregtech/nativeutil/jni"
	"github.com/gregtech/nativeutil/jni/jnienv"
	"github.com/gregtech/nativeutil/mutf8"
)

var greeter = bridge.New(mutf8.Codec{})

// Java_gregtech_api_util_RustUtility_hello implements
// RustUtility.hello(String): String. The class argument is unused.
//
//export Java_gregtech_api_util_RustUtility_hello
func Java_gregtech_api_util_RustUtility_hello(env *C.JNIEnv, _ C.jclass, input C.jstring) C.jstring {
	host := jnienv.Wrap(unsafe.Pointer(env))
	out := greeter.Greet(host, jnienv.HandleOf(unsafe.Pointer(input)))
	return C.jstring(jnienv.Pointer(out))
}

// JNI_OnLoad installs the production logger and checks every binding.
// A failed check refuses the load with JNI_ERR.
//
//export JNI_OnLoad
func JNI_OnLoad(_ *C.JavaVM, _ unsafe.Pointer) C.jint {
	log := newLogger()
	bridge.SetLogger(log)

	if err := onLoad(log, jni.Natives); err != nil {
		return C.jint(C.JNI_ERR)
	}
	return C.jint(jni.SupportedVersion)
}

func newLogger() *zap.Logger {
	log, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return log.Named("librustutility")
}

func onLoad(log *zap.Logger, natives []jni.Method) error {
	if err := jni.CheckNatives(natives); err != nil {
		log.Error("native bindings rejected", zap.Error(err))
		return err
	}
	for _, m := range natives {
		log.Debug("native bound", zap.Stringer("method", m), zap.String("symbol", m.Symbol()))
	}
	log.Info("librustutility loaded",
		zap.Stringer("jni", jni.SupportedVersion),
		zap.String("codec", greeter.Codec().Name()),
	)
	return nil
}

func main() {}
