// Package bridge implements the string bridge between a managed host
// runtime and native Go code.
//
// One call is a linear pipeline with no retries:
//
//	host handle ──Borrow──► host bytes ──Codec.Decode──► Go string
//	                                                        │
//	                                                    Greeting
//	                                                        │
//	host handle ◄─Construct── host bytes ◄─Codec.Encode─────┘
//
// The borrowed input is released before the result is encoded, on every
// exit path. The result handle is owned by the host once returned.
//
// # Failure Model
//
// Decode and encode failures cannot be recovered inside the call. Call
// returns them as *errors.Error values with PhaseDecode or PhaseEncode.
// Greet sends them to the host's fatal channel (nativeutil.FatalReporter)
// instead of returning a result. A panic inside a host adapter or codec is
// converted to a KindHostPanic error and takes the same route.
//
// # Usage
//
//	b := bridge.New(mutf8.Codec{})
//	out := b.Greet(host, in)
//
// # Thread Safety
//
// Bridge has no mutable state and is safe for concurrent use. Host values
// are expected to be per call.
package bridge
