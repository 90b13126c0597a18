package jni

import (
	"strings"

	"github.com/gregtech/nativeutil/errors"
)

// Field type descriptors used by the bound methods.
const (
	Void    = "V"
	Boolean = "Z"
	Int     = "I"
	Long    = "J"
	String  = "Ljava/lang/String;"
)

// Object returns the field descriptor for a class binary name.
func Object(class string) string {
	return "L" + strings.ReplaceAll(class, ".", "/") + ";"
}

// Array returns the descriptor for an array of elem.
func Array(elem string) string {
	return "[" + elem
}

// MethodDescriptor builds "(params...)ret".
func MethodDescriptor(ret string, params ...string) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range params {
		b.WriteString(p)
	}
	b.WriteByte(')')
	b.WriteString(ret)
	return b.String()
}

// ParseMethodDescriptor splits a method descriptor into its parameter and
// return field descriptors.
func ParseMethodDescriptor(desc string) (params []string, ret string, err error) {
	if desc == "" || desc[0] != '(' {
		return nil, "", invalidDescriptor(desc, "missing '('")
	}

	i := 1
	for i < len(desc) && desc[i] != ')' {
		n := fieldLen(desc[i:])
		if n == 0 {
			return nil, "", invalidDescriptor(desc, "bad parameter type")
		}
		params = append(params, desc[i:i+n])
		i += n
	}
	if i >= len(desc) {
		return nil, "", invalidDescriptor(desc, "missing ')'")
	}

	ret = desc[i+1:]
	if ret == "" || (ret != Void && fieldLen(ret) != len(ret)) {
		return nil, "", invalidDescriptor(desc, "bad return type")
	}
	return params, ret, nil
}

// argumentSignature returns the text between the parentheses of desc.
func argumentSignature(desc string) (string, error) {
	if _, _, err := ParseMethodDescriptor(desc); err != nil {
		return "", err
	}
	return desc[1:strings.IndexByte(desc, ')')], nil
}

// fieldLen returns the length of the field descriptor at the start of s,
// or 0 if there is none.
func fieldLen(s string) int {
	dims := 0
	for dims < len(s) && s[dims] == '[' {
		dims++
	}
	if dims == len(s) || dims > 255 {
		return 0
	}
	switch s[dims] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return dims + 1
	case 'L':
		end := strings.IndexByte(s[dims:], ';')
		if end <= 1 {
			return 0
		}
		return dims + end + 1
	}
	return 0
}

func invalidDescriptor(desc, detail string) *errors.Error {
	return errors.New(errors.PhaseBind, errors.KindInvalidInput).
		Detail("method descriptor %q: %s", desc, detail).
		Build()
}
