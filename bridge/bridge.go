package bridge

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/gregtech/nativeutil"
	"github.com/gregtech/nativeutil/errors"
)

const (
	greetingPrefix = "Hello, "
	greetingSuffix = "!"
)

// Greeting formats name into "Hello, {name}!". The input is used verbatim.
func Greeting(name string) string {
	return greetingPrefix + name + greetingSuffix
}

// Bridge moves one string across a host boundary, greets it, and hands a
// new string back to the host. It holds no per-call state.
type Bridge struct {
	codec nativeutil.Codec
}

// New creates a Bridge using codec for the host's string encoding.
// A nil codec selects UTF8.
func New(codec nativeutil.Codec) *Bridge {
	if codec == nil {
		codec = UTF8
	}
	return &Bridge{codec: codec}
}

// Codec returns the host string codec.
func (b *Bridge) Codec() nativeutil.Codec {
	return b.codec
}

// Call runs decode → format → encode and returns the new host handle.
// Errors carry PhaseDecode or PhaseEncode and are all fatal.
func (b *Bridge) Call(host nativeutil.StringHost, in nativeutil.Handle) (nativeutil.Handle, error) {
	phase := errors.PhaseDecode
	return b.call(host, in, &phase)
}

// Greet is Call with the host's fatal channel attached. Any failure,
// including a panic inside the host adapter, is logged and delivered to
// host.Fatal. The zero handle is returned only if Fatal returns.
func (b *Bridge) Greet(host nativeutil.Host, in nativeutil.Handle) nativeutil.Handle {
	if host == nil {
		panic(errors.NilPointer(errors.PhaseDecode, "host"))
	}

	out, err := b.guardedCall(host, in)
	if err != nil {
		fields := []zap.Field{
			zap.String("codec", b.codec.Name()),
			zap.Uint64("handle", uint64(in)),
			zap.Error(err),
		}
		var e *errors.Error
		if stderrors.As(err, &e) {
			fields = append(fields, zap.String("phase", string(e.Phase)), zap.String("kind", string(e.Kind)))
		}
		Logger().Error("greet: fatal interop failure", fields...)
		host.Fatal(err)
		return 0
	}
	return out
}

func (b *Bridge) guardedCall(host nativeutil.Host, in nativeutil.Handle) (out nativeutil.Handle, err error) {
	phase := errors.PhaseDecode
	defer func() {
		if r := recover(); r != nil {
			out, err = 0, errors.HostPanic(phase, r)
		}
	}()
	return b.call(host, in, &phase)
}

func (b *Bridge) call(host nativeutil.StringHost, in nativeutil.Handle, phase *errors.Phase) (nativeutil.Handle, error) {
	if host == nil {
		return 0, errors.NilPointer(errors.PhaseDecode, "host")
	}

	input, err := b.decode(host, in)
	if err != nil {
		return 0, err
	}

	*phase = errors.PhaseEncode
	greeting := Greeting(input)

	out, err := b.encode(host, greeting)
	if err != nil {
		return 0, err
	}

	if ce := Logger().Check(zap.DebugLevel, "greet"); ce != nil {
		ce.Write(
			zap.String("codec", b.codec.Name()),
			zap.Int("input_len", len(input)),
			zap.Int("output_len", len(greeting)),
		)
	}
	return out, nil
}

// decode copies the borrowed host string into a Go string. The borrow is
// released before decode returns, on every path.
func (b *Bridge) decode(host nativeutil.StringHost, in nativeutil.Handle) (string, error) {
	data, release, err := host.Borrow(in)
	if err != nil {
		return "", withPhase(errors.PhaseDecode, errors.KindInvalidHandle, err, "borrow host string")
	}
	if release != nil {
		defer release()
	}

	s, err := b.codec.Decode(data)
	if err != nil {
		return "", withPhase(errors.PhaseDecode, errors.KindInvalidEncoding, err, "decode "+b.codec.Name())
	}
	return s, nil
}

func (b *Bridge) encode(host nativeutil.StringHost, s string) (nativeutil.Handle, error) {
	data, err := b.codec.Encode(s)
	if err != nil {
		return 0, withPhase(errors.PhaseEncode, errors.KindInvalidEncoding, err, "encode "+b.codec.Name())
	}

	out, err := host.Construct(data)
	if err != nil {
		return 0, withPhase(errors.PhaseEncode, errors.KindAllocation, err, "construct host string")
	}
	return out, nil
}

// withPhase keeps structured errors from the expected phase as they are and
// wraps everything else.
func withPhase(phase errors.Phase, kind errors.Kind, err error, detail string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Phase == phase {
		return err
	}
	return errors.Wrap(phase, kind, err, detail)
}
