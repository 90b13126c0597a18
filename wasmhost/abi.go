package wasmhost

import (
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// Canonical ABI flattening limits.
const (
	MaxFlatParams  = 16
	MaxFlatResults = 1
)

// hello: func(input: string) -> string
var (
	helloParams  = []wit.Type{wit.String{}}
	helloResults = []wit.Type{wit.String{}}
)

// flatTypes lowers a WIT type to its flat core value types. Only the
// scalar and string cases are needed by the exported functions.
func flatTypes(t wit.Type) []api.ValueType {
	switch t.(type) {
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}
	case wit.F32:
		return []api.ValueType{api.ValueTypeF32}
	case wit.F64:
		return []api.ValueType{api.ValueTypeF64}
	case wit.String:
		return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	}
	return []api.ValueType{api.ValueTypeI32}
}

func flatten(types []wit.Type) []api.ValueType {
	var out []api.ValueType
	for _, t := range types {
		out = append(out, flatTypes(t)...)
	}
	return out
}

// coreSignature returns the lowered core signature of a function. Results
// that do not fit in MaxFlatResults are written through a trailing retptr
// parameter.
func coreSignature(params, results []wit.Type) (in, out []api.ValueType, retptr bool) {
	in = flatten(params)
	if len(in) > MaxFlatParams {
		in = []api.ValueType{api.ValueTypeI32}
	}
	out = flatten(results)
	if len(out) > MaxFlatResults {
		return append(in, api.ValueTypeI32), nil, true
	}
	return in, out, false
}
