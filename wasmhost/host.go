package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/gregtech/nativeutil/bridge"
	"github.com/gregtech/nativeutil/errors"
)

const (
	// ModuleName is the import module guests link hello against.
	ModuleName = "gregtech:native/rust-utility"
	// FuncHello is the exported greeting function.
	FuncHello = "hello"
)

type helloFunc struct {
	bridge *bridge.Bridge
}

// Instantiate registers the host module on r. A nil bridge greets with
// the strict UTF-8 codec, which matches the canonical ABI string encoding.
func Instantiate(ctx context.Context, r wazero.Runtime, b *bridge.Bridge) (api.Module, error) {
	if r == nil {
		return nil, errors.NilPointer(errors.PhaseBind, "wazero runtime")
	}
	if b == nil {
		b = bridge.New(bridge.UTF8)
	}

	params, results, retptr := coreSignature(helloParams, helloResults)
	if !retptr {
		return nil, errors.Registration(ModuleName, FuncHello,
			errors.InvalidInput(errors.PhaseBind, "string result must be returned through retptr"))
	}

	h := &helloFunc{bridge: b}
	mod, err := r.NewHostModuleBuilder(ModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.call), params, results).
		WithParameterNames("ptr", "len", "retptr").
		Export(FuncHello).
		Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(ModuleName, FuncHello, err)
	}

	Logger().Debug("host module instantiated",
		zap.String("module", ModuleName),
		zap.String("codec", b.Codec().Name()))
	return mod, nil
}

// call handles hello(ptr, len, retptr). The result (ptr, len) pair is
// stored little-endian at retptr.
func (h *helloFunc) call(ctx context.Context, mod api.Module, stack []uint64) {
	host, err := newGuestHost(ctx, mod)
	if err != nil {
		Logger().Error("hello: guest not linkable", zap.String("guest", mod.Name()), zap.Error(err))
		panic(err)
	}

	in := PackHandle(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
	retptr := api.DecodeU32(stack[2])
	if err := host.checkRetptr(retptr); err != nil {
		Logger().Error("hello: bad return area", zap.String("guest", mod.Name()), zap.Error(err))
		host.Fatal(err)
	}

	out := h.bridge.Greet(host, in)
	ptr, n := UnpackHandle(out)

	if !host.mem.WriteUint32Le(retptr, ptr) || !host.mem.WriteUint32Le(retptr+4, n) {
		host.Fatal(errors.OutOfBounds(errors.PhaseEncode, retptr, 8, host.mem.Size()))
	}
}
