package wasmhost

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/gregtech/nativeutil"
	"github.com/gregtech/nativeutil/errors"
)

// Return area of a lowered string result: two little-endian u32 values.
const (
	retAreaSize  = 8
	retAreaAlign = 4
)

// AllocatorExports lists the guest allocator exports, in lookup order.
var AllocatorExports = []string{"cabi_realloc", "canonical_abi_realloc"}

// PackHandle packs a guest (ptr, len) pair into a Handle.
func PackHandle(ptr, length uint32) nativeutil.Handle {
	return nativeutil.Handle(uint64(ptr)<<32 | uint64(length))
}

// UnpackHandle splits a Handle produced by PackHandle.
func UnpackHandle(h nativeutil.Handle) (ptr, length uint32) {
	return uint32(h >> 32), uint32(h)
}

// guestHost implements nativeutil.Host over one guest instance for the
// duration of a single call.
type guestHost struct {
	ctx   context.Context
	mem   api.Memory
	alloc api.Function
}

var _ nativeutil.Host = (*guestHost)(nil)

func newGuestHost(ctx context.Context, mod api.Module) (*guestHost, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "memory", mod.Name())
	}
	for _, name := range AllocatorExports {
		if fn := mod.ExportedFunction(name); fn != nil {
			return &guestHost{ctx: ctx, mem: mem, alloc: fn}, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseLoad, "allocator export", AllocatorExports[0])
}

// Borrow returns a view of guest memory. The view is invalidated by memory
// growth, so it must be released before the allocator runs.
func (g *guestHost) Borrow(h nativeutil.Handle) ([]byte, func(), error) {
	ptr, n := UnpackHandle(h)
	data, ok := g.mem.Read(ptr, n)
	if !ok {
		return nil, nil, errors.OutOfBounds(errors.PhaseDecode, ptr, n, g.mem.Size())
	}
	return data, func() {}, nil
}

// Construct copies data into a fresh guest allocation.
func (g *guestHost) Construct(data []byte) (nativeutil.Handle, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return 0, errors.AllocationFailed(errors.PhaseEncode, len(data), nil)
	}
	n := uint32(len(data))

	results, err := g.alloc.Call(g.ctx, 0, 0, 1, uint64(n))
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, len(data), err)
	}
	if len(results) != 1 {
		return 0, errors.AllocationFailed(errors.PhaseEncode, len(data), nil)
	}

	ptr := api.DecodeU32(results[0])
	if !g.mem.Write(ptr, data) {
		return 0, errors.OutOfBounds(errors.PhaseEncode, ptr, n, g.mem.Size())
	}
	return PackHandle(ptr, n), nil
}

// checkRetptr validates the 8-byte (ptr, len) return area. It runs before
// any guest allocation so a bad retptr traps without leaking memory.
func (g *guestHost) checkRetptr(retptr uint32) error {
	if retptr%retAreaAlign != 0 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Detail("retptr %d is not %d-byte aligned", retptr, retAreaAlign).
			Build()
	}
	if uint64(retptr)+retAreaSize > uint64(g.mem.Size()) {
		return errors.OutOfBounds(errors.PhaseEncode, retptr, retAreaSize, g.mem.Size())
	}
	return nil
}

// Fatal traps the guest. wazero turns the panic into an error returned
// from the guest's exported call.
func (g *guestHost) Fatal(err error) {
	panic(err)
}
