package jni

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/gregtech/nativeutil/errors"
)

// Version is a JNI interface version as returned from JNI_OnLoad.
type Version int32

const (
	Version1_6 Version = 0x00010006
	Version1_8 Version = 0x00010008
	Version9   Version = 0x00090000
	Version10  Version = 0x000a0000
	Version19  Version = 0x00130000
	Version20  Version = 0x00140000
	Version21  Version = 0x00150000
)

// SupportedVersion is the version the library reports to the JVM.
const SupportedVersion = Version1_8

func (v Version) String() string {
	major, minor := int32(v)>>16, int32(v)&0xFFFF
	if minor == 0 {
		return fmt.Sprintf("JNI %d", major)
	}
	return fmt.Sprintf("JNI %d.%d", major, minor)
}

// Method identifies a Java native method bound to this library.
type Method struct {
	Class      string // binary name, e.g. "gregtech/api/util/RustUtility"
	Name       string
	Descriptor string
	Static     bool
}

// Symbol returns the short exported symbol name the JVM looks up first.
func (m Method) Symbol() string {
	return MangleName(m.Class, m.Name)
}

// LongSymbol returns the overloaded symbol name.
func (m Method) LongSymbol() (string, error) {
	return MangleLongName(m.Class, m.Name, m.Descriptor)
}

// Validate checks that the method can be bound.
func (m Method) Validate() error {
	if m.Class == "" {
		return errors.InvalidInput(errors.PhaseBind, "class name cannot be empty")
	}
	if m.Name == "" {
		return errors.InvalidInput(errors.PhaseBind, "method name cannot be empty")
	}
	if m.Name == "<init>" || m.Name == "<clinit>" {
		return errors.InvalidInput(errors.PhaseBind, "constructors cannot be native: "+m.Name)
	}
	_, _, err := ParseMethodDescriptor(m.Descriptor)
	return err
}

func (m Method) String() string {
	return m.Class + "." + m.Name + m.Descriptor
}

// RustUtilityHello is gregtech.api.util.RustUtility#hello(String): String.
var RustUtilityHello = Method{
	Class:      "gregtech/api/util/RustUtility",
	Name:       "hello",
	Descriptor: MethodDescriptor(String, String),
	Static:     true,
}

// Natives lists every method exported by the library.
var Natives = []Method{
	RustUtilityHello,
}

// CheckNatives validates every binding in methods. Bindings that fail
// Validate, or whose short symbols collide, are reported together.
func CheckNatives(methods []Method) error {
	var err error
	seen := make(map[string]Method, len(methods))
	for _, m := range methods {
		if verr := m.Validate(); verr != nil {
			err = multierr.Append(err, errors.Registration(m.Class, m.Name, verr))
			continue
		}
		sym := m.Symbol()
		if prev, ok := seen[sym]; ok {
			err = multierr.Append(err, errors.New(errors.PhaseBind, errors.KindRegistration).
				Detail("%s and %s both export %s", prev, m, sym).
				Build())
			continue
		}
		seen[sym] = m
	}
	return err
}
