package wasmhost

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/gregtech/nativeutil/bridge"
	"github.com/gregtech/nativeutil/mutf8"
)

const i32 = 0x7f

func uleb(v int) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func name(s string) []byte {
	return cat(uleb(len(s)), []byte(s))
}

func vec(items ...[]byte) []byte {
	return cat(uleb(len(items)), cat(items...))
}

func section(id byte, payload []byte) []byte {
	return cat([]byte{id}, uleb(len(payload)), payload)
}

// guestWASM builds a guest that imports hello, exports memory, a bump
// allocator under allocExport and a "hello" export forwarding to the import.
func guestWASM(allocExport string) []byte {
	realloc := []byte{
		0x01, 0x01, i32, // one i32 local
		0x23, 0x00, // global.get 0
		0x21, 0x04, // local.set 4
		0x23, 0x00, // global.get 0
		0x20, 0x03, // local.get 3
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
		0x20, 0x04, // local.get 4
		0x0b,
	}
	hello := []byte{
		0x00,
		0x20, 0x00, 0x20, 0x01, 0x20, 0x02,
		0x10, 0x00, // call import
		0x0b,
	}

	return cat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(1, vec(
			[]byte{0x60, 0x03, i32, i32, i32, 0x00},
			[]byte{0x60, 0x04, i32, i32, i32, i32, 0x01, i32},
		)),
		section(2, vec(cat(name(ModuleName), name(FuncHello), []byte{0x00, 0x00}))),
		section(3, vec([]byte{0x01}, []byte{0x00})),
		section(5, vec([]byte{0x00, 0x01})),
		section(6, vec([]byte{i32, 0x01, 0x41, 0x80, 0x08, 0x0b})), // mut i32 = 1024
		section(7, vec(
			cat(name("memory"), []byte{0x02, 0x00}),
			cat(name(allocExport), []byte{0x00, 0x01}),
			cat(name("hello"), []byte{0x00, 0x02}),
		)),
		section(10, vec(
			cat(uleb(len(realloc)), realloc),
			cat(uleb(len(hello)), hello),
		)),
	)
}

type guest struct {
	mod   api.Module
	alloc api.Function
	hello api.Function
}

func newRuntime(t *testing.T, b *bridge.Bridge) (context.Context, wazero.Runtime) {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { r.Close(ctx) })

	if _, err := Instantiate(ctx, r, b); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	return ctx, r
}

func newGuest(t *testing.T, ctx context.Context, r wazero.Runtime, modName, allocExport string) *guest {
	t.Helper()
	mod, err := r.InstantiateWithConfig(ctx, guestWASM(allocExport), wazero.NewModuleConfig().WithName(modName))
	if err != nil {
		t.Fatalf("instantiate guest: %v", err)
	}
	return &guest{
		mod:   mod,
		alloc: mod.ExportedFunction(allocExport),
		hello: mod.ExportedFunction("hello"),
	}
}

func (g *guest) malloc(ctx context.Context, size uint32) (uint32, error) {
	res, err := g.alloc.Call(ctx, 0, 0, 1, uint64(size))
	if err != nil {
		return 0, err
	}
	return api.DecodeU32(res[0]), nil
}

// retArea allocates a 4-byte aligned 8-byte return area.
func (g *guest) retArea(ctx context.Context) (uint32, error) {
	p, err := g.malloc(ctx, 8+3)
	if err != nil {
		return 0, err
	}
	return (p + 3) &^ 3, nil
}

// callRaw invokes hello(ptr, len, retptr) and returns the stored result.
func (g *guest) callRaw(ctx context.Context, ptr, n uint32) ([]byte, uint32, error) {
	retptr, err := g.retArea(ctx)
	if err != nil {
		return nil, 0, err
	}
	if _, err := g.hello.Call(ctx, uint64(ptr), uint64(n), uint64(retptr)); err != nil {
		return nil, retptr, err
	}

	mem := g.mod.Memory()
	rp, _ := mem.ReadUint32Le(retptr)
	rl, _ := mem.ReadUint32Le(retptr + 4)
	data, ok := mem.Read(rp, rl)
	if !ok {
		return nil, retptr, fmt.Errorf("result [%d, +%d) out of bounds", rp, rl)
	}
	return append([]byte(nil), data...), retptr, nil
}

func (g *guest) greet(ctx context.Context, input []byte) (string, error) {
	ptr, err := g.malloc(ctx, uint32(len(input)))
	if err != nil {
		return "", err
	}
	g.mod.Memory().Write(ptr, input)

	out, _, err := g.callRaw(ctx, ptr, uint32(len(input)))
	return string(out), err
}

func TestCoreSignature(t *testing.T) {
	in, out, retptr := coreSignature(helloParams, helloResults)
	if !retptr {
		t.Error("string result should use retptr")
	}
	if len(out) != 0 {
		t.Errorf("results = %v, want none", out)
	}
	want := []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
	if fmt.Sprint(in) != fmt.Sprint(want) {
		t.Errorf("params = %v, want %v", in, want)
	}

	in, out, retptr = coreSignature([]wit.Type{wit.U64{}, wit.F32{}}, []wit.Type{wit.U32{}})
	if retptr {
		t.Error("u32 result fits in one flat value")
	}
	if fmt.Sprint(in) != fmt.Sprint([]api.ValueType{api.ValueTypeI64, api.ValueTypeF32}) {
		t.Errorf("params = %v", in)
	}
	if fmt.Sprint(out) != fmt.Sprint([]api.ValueType{api.ValueTypeI32}) {
		t.Errorf("results = %v", out)
	}

	many := make([]wit.Type, 9)
	for i := range many {
		many[i] = wit.String{}
	}
	in, _, _ = coreSignature(many, nil)
	if len(in) != 1 {
		t.Errorf("18 flat params should spill to one pointer, got %d", len(in))
	}
}

func TestHandlePacking(t *testing.T) {
	h := PackHandle(0xdeadbeef, 42)
	ptr, n := UnpackHandle(h)
	if ptr != 0xdeadbeef || n != 42 {
		t.Errorf("UnpackHandle = (%#x, %d)", ptr, n)
	}
}

func TestHello(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	g := newGuest(t, ctx, r, "guest", "cabi_realloc")

	tests := []struct {
		input string
		want  string
	}{
		{"World", "Hello, World!"},
		{"", "Hello, !"},
		{"Bob!", "Hello, Bob!!"},
		{"Hello, World!", "Hello, Hello, World!!"},
		{"Grüße 🌍", "Hello, Grüße 🌍!"},
		{strings.Repeat("x", 10000), "Hello, " + strings.Repeat("x", 10000) + "!"},
	}

	for _, tt := range tests {
		got, err := g.greet(ctx, []byte(tt.input))
		if err != nil {
			t.Errorf("hello(%.20q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("hello(%.20q) = %.40q, want %.40q", tt.input, got, tt.want)
		}
	}
}

func TestHello_NestedGreeting(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	g := newGuest(t, ctx, r, "guest", "cabi_realloc")

	first, err := g.greet(ctx, []byte("World"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.greet(ctx, []byte(first))
	if err != nil {
		t.Fatal(err)
	}
	if second != "Hello, Hello, World!!" {
		t.Errorf("nested greeting = %q", second)
	}
}

func TestHello_LegacyAllocator(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	g := newGuest(t, ctx, r, "legacy", "canonical_abi_realloc")

	got, err := g.greet(ctx, []byte("World"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello, World!" {
		t.Errorf("got %q", got)
	}
}

func TestHello_ModifiedUTF8Bridge(t *testing.T) {
	ctx, r := newRuntime(t, bridge.New(mutf8.Codec{}))
	g := newGuest(t, ctx, r, "guest", "cabi_realloc")

	got, err := g.greet(ctx, []byte{'a', 0xC0, 0x80, 'b'})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello, a\xC0\x80b!" {
		t.Errorf("got %q", got)
	}
}

func TestHello_Concurrent(t *testing.T) {
	ctx, r := newRuntime(t, nil)

	const workers = 8
	guests := make([]*guest, workers)
	for i := range guests {
		guests[i] = newGuest(t, ctx, r, fmt.Sprintf("guest-%d", i), "cabi_realloc")
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i, g := range guests {
		wg.Add(1)
		go func(i int, g *guest) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				in := fmt.Sprintf("w%d-%d", i, j)
				got, err := g.greet(ctx, []byte(in))
				if err != nil {
					errs <- err
					return
				}
				if got != "Hello, "+in+"!" {
					errs <- fmt.Errorf("greet(%q) = %q", in, got)
					return
				}
			}
		}(i, g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestHello_InvalidUTF8Traps(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	g := newGuest(t, ctx, r, "guest", "cabi_realloc")

	ptr, err := g.malloc(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	g.mod.Memory().Write(ptr, []byte{'a', 0xFF, 'b'})

	_, retptr, err := g.callRaw(ctx, ptr, 3)
	if err == nil {
		t.Fatal("expected trap for invalid UTF-8")
	}
	if !strings.Contains(err.Error(), "invalid_encoding") {
		t.Errorf("error = %v, want invalid_encoding", err)
	}

	rp, _ := g.mod.Memory().ReadUint32Le(retptr)
	rl, _ := g.mod.Memory().ReadUint32Le(retptr + 4)
	if rp != 0 || rl != 0 {
		t.Errorf("retptr written on failure: (%d, %d)", rp, rl)
	}
}

func TestHello_OutOfBoundsTraps(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	g := newGuest(t, ctx, r, "guest", "cabi_realloc")

	_, _, err := g.callRaw(ctx, 70000, 10)
	if err == nil {
		t.Fatal("expected trap for out of bounds input")
	}
	if !strings.Contains(err.Error(), "out_of_bounds") {
		t.Errorf("error = %v, want out_of_bounds", err)
	}
}

func TestHello_MissingAllocator(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	g := newGuest(t, ctx, r, "noalloc", "malloc")

	ptr, err := g.malloc(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	g.mod.Memory().Write(ptr, []byte("World"))

	if _, _, err := g.callRaw(ctx, ptr, 5); err == nil {
		t.Fatal("expected trap without an allocator export")
	} else if !strings.Contains(err.Error(), "not_found") {
		t.Errorf("error = %v, want not_found", err)
	}
}

func TestInstantiate_NilRuntime(t *testing.T) {
	if _, err := Instantiate(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil runtime")
	}
}

func TestInstantiate_Twice(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	if _, err := Instantiate(ctx, r, nil); err == nil {
		t.Error("second Instantiate on the same runtime should fail")
	}
}

func TestHello_BadRetptrTrapsBeforeAllocating(t *testing.T) {
	ctx, r := newRuntime(t, nil)
	g := newGuest(t, ctx, r, "guest", "cabi_realloc")

	ptr, err := g.malloc(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	g.mod.Memory().Write(ptr, []byte("World"))
	aligned, err := g.retArea(ctx)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		retptr uint32
		kind   string
	}{
		{"out of bounds", 70000, "out_of_bounds"},
		{"straddles end", g.mod.Memory().Size() - 4, "out_of_bounds"},
		{"misaligned", aligned + 1, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := g.malloc(ctx, 0)
			if err != nil {
				t.Fatal(err)
			}

			_, err = g.hello.Call(ctx, uint64(ptr), 5, uint64(tt.retptr))
			if err == nil {
				t.Fatal("expected trap")
			}
			if !strings.Contains(err.Error(), tt.kind) {
				t.Errorf("error = %v, want %s", err, tt.kind)
			}

			after, err := g.malloc(ctx, 0)
			if err != nil {
				t.Fatal(err)
			}
			if after != before {
				t.Errorf("guest allocated %d bytes before trapping", after-before)
			}
		})
	}
}
