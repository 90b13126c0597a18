// Package wasmhost exposes the greeting bridge to WebAssembly guests
// running under wazero.
//
// Guests import one function:
//
//	(import "gregtech:native/rust-utility" "hello"
//	  (func (param $ptr i32) (param $len i32) (param $retptr i32)))
//
// This is the canonical ABI lowering of hello: func(input: string) -> string.
// The input is read from guest memory, the greeting is written into memory
// obtained from the guest's cabi_realloc export, and the resulting
// (ptr, len) pair is stored little-endian at retptr.
//
// Failures trap the calling guest; the exported call that reached hello
// returns the structured error text.
//
// Usage:
//
//	r := wazero.NewRuntime(ctx)
//	defer r.Close(ctx)
//	if _, err := wasmhost.Instantiate(ctx, r, nil); err != nil {
//		return err
//	}
//	guest, err := r.Instantiate(ctx, wasmBytes)
package wasmhost
