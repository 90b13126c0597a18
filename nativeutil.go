package nativeutil

// Handle is an opaque reference to a string owned by the host runtime.
// Its meaning is defined by the host adapter that produced it.
type Handle uint64

// StringHost exposes the host runtime's string facilities.
type StringHost interface {
	// Borrow returns the encoded bytes behind h. The bytes are only valid
	// until release is called; release must be called exactly once.
	Borrow(h Handle) (data []byte, release func(), err error)
	// Construct allocates a new host string from encoded bytes and
	// transfers its ownership to the host.
	Construct(data []byte) (Handle, error)
}

// FatalReporter delivers unrecoverable interop failures to the host.
type FatalReporter interface {
	Fatal(err error)
}

// Host is a complete host runtime binding for one native call.
type Host interface {
	StringHost
	FatalReporter
}

// Codec converts between a host string encoding and Go strings.
type Codec interface {
	Name() string
	Decode(data []byte) (string, error)
	Encode(s string) ([]byte, error)
}
