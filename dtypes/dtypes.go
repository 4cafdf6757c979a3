// Package dtypes defines the primitive data types of an IDL (integers, floats, bool, bytes, string and
// public keys), with their sizes in the Borsh layout and their Go spelling.
package dtypes

import "strings"

//go:generate go tool enumer -type=DType -transform=title-lower -output=dtype_enumer.go dtypes.go

// DType is a primitive IDL data type.
type DType int

const (
	// Invalid represents an invalid (or not set) dtype.
	Invalid DType = iota
	Bool
	U8
	I8
	U16
	I16
	U32
	I32
	U64
	I64
	U128
	I128
	F32
	F64
	Bytes
	String
	PublicKey
)

// MapOfNames maps IDL spellings (and a few aliases) to their DType.
var MapOfNames = func() map[string]DType {
	m := make(map[string]DType)
	for _, dtype := range DTypeValues() {
		if dtype == Invalid {
			continue
		}
		name := dtype.String()
		m[name] = dtype
		m[strings.ToUpper(name)] = dtype
	}
	m["pubkey"] = PublicKey
	m["Pubkey"] = PublicKey
	m["PublicKey"] = PublicKey
	m["usize"] = U64
	m["isize"] = I64
	return m
}()

// FromName returns the DType for an IDL type name, or Invalid.
func FromName(name string) DType {
	return MapOfNames[name]
}

// IsInteger returns whether dtype is a signed or unsigned integer.
func (dtype DType) IsInteger() bool {
	return dtype >= U8 && dtype <= I128
}

// IsUnsigned returns whether dtype is an unsigned integer.
func (dtype DType) IsUnsigned() bool {
	switch dtype {
	case U8, U16, U32, U64, U128:
		return true
	}
	return false
}

// IsFloat returns whether dtype is a floating point type.
func (dtype DType) IsFloat() bool {
	return dtype == F32 || dtype == F64
}

// Size returns the number of bytes dtype takes in the Borsh layout, or -1 for variable sized types
// (bytes and string).
func (dtype DType) Size() int {
	switch dtype {
	case Bool, U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	case U128, I128:
		return 16
	case PublicKey:
		return 32
	}
	return -1
}

// IsStatic returns whether dtype always has the same size once packed.
func (dtype DType) IsStatic() bool {
	return dtype.Size() >= 0
}

// GoType returns how generated Go code spells dtype. Types provided by the runtime libraries are
// qualified with their package name ("borsh" or "solana").
func (dtype DType) GoType() string {
	switch dtype {
	case Bool:
		return "bool"
	case U8:
		return "uint8"
	case I8:
		return "int8"
	case U16:
		return "uint16"
	case I16:
		return "int16"
	case U32:
		return "uint32"
	case I32:
		return "int32"
	case U64:
		return "uint64"
	case I64:
		return "int64"
	case U128:
		return "borsh.Uint128"
	case I128:
		return "borsh.Int128"
	case F32:
		return "float32"
	case F64:
		return "float64"
	case Bytes:
		return "[]byte"
	case String:
		return "string"
	case PublicKey:
		return "solana.PublicKey"
	}
	return ""
}

// GoPackage returns the runtime package (by its last path element) that GoType refers to, if any.
func (dtype DType) GoPackage() string {
	switch dtype {
	case U128, I128:
		return "borsh"
	case PublicKey:
		return "solana"
	}
	return ""
}
