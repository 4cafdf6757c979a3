// Package idl reads Anchor IDL files (the JSON description of a Solana program: its types, accounts,
// instructions, constants, events and errors) into Go values.
//
// The JSON encoding of an IDL is loosely typed: a type is either a string or an object with one of
// several keys, enum variant fields are either named or positional, and account items are either
// single accounts or nested groups. This package resolves all of those once, while parsing, into
// explicit tagged variants (Type.Kind, EnumVariant.Kind, AccountItem.Group), so the rest of the
// program never inspects raw JSON shapes.
package idl

import (
	"fmt"

	"github.com/gomlx/solmate/dtypes"
)

// TypeKind enumerates the shapes an IDL type can take.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindPrimitive
	KindDefined
	KindOption
	KindCOption
	KindVec
	KindArray
)

var typeKindNames = [...]string{"invalid", "primitive", "defined", "option", "coption", "vec", "array"}

func (k TypeKind) String() string {
	if k < 0 || int(k) >= len(typeKindNames) {
		return fmt.Sprintf("TypeKind(%d)", int(k))
	}
	return typeKindNames[k]
}

// Type is an IDL type. Which fields are meaningful depends on Kind:
//
//   - KindPrimitive: DType.
//   - KindDefined: Name, the name of a type defined in this IDL (or declared external).
//   - KindOption, KindCOption, KindVec: Elem.
//   - KindArray: Elem and Len.
type Type struct {
	Kind  TypeKind
	DType dtypes.DType
	Name  string
	Elem  *Type
	Len   int
}

// Primitive returns a primitive type.
func Primitive(dtype dtypes.DType) *Type { return &Type{Kind: KindPrimitive, DType: dtype} }

// Defined returns a reference to a user defined type.
func Defined(name string) *Type { return &Type{Kind: KindDefined, Name: name} }

// OptionOf returns Option<elem>.
func OptionOf(elem *Type) *Type { return &Type{Kind: KindOption, Elem: elem} }

// COptionOf returns COption<elem>.
func COptionOf(elem *Type) *Type { return &Type{Kind: KindCOption, Elem: elem} }

// VecOf returns Vec<elem>.
func VecOf(elem *Type) *Type { return &Type{Kind: KindVec, Elem: elem} }

// ArrayOf returns [elem; n].
func ArrayOf(elem *Type, n int) *Type { return &Type{Kind: KindArray, Elem: elem, Len: n} }

// String renders the type in Rust-like notation, e.g. "Vec<Option<u64>>" or "[u8; 32]".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPrimitive:
		return t.DType.String()
	case KindDefined:
		return t.Name
	case KindOption:
		return fmt.Sprintf("Option<%s>", t.Elem)
	case KindCOption:
		return fmt.Sprintf("COption<%s>", t.Elem)
	case KindVec:
		return fmt.Sprintf("Vec<%s>", t.Elem)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	}
	return t.Kind.String()
}

// IsOptional returns whether t is an Option or a COption.
func (t *Type) IsOptional() bool {
	return t.Kind == KindOption || t.Kind == KindCOption
}

// Walk calls fn for t and every type nested in it, outermost first.
func (t *Type) Walk(fn func(*Type)) {
	for ; t != nil; t = t.Elem {
		fn(t)
	}
}

// DefinedNames returns the names of user defined types t refers to, directly or nested.
func (t *Type) DefinedNames() []string {
	var names []string
	t.Walk(func(inner *Type) {
		if inner.Kind == KindDefined {
			names = append(names, inner.Name)
		}
	})
	return names
}

// Field is a named and typed member of a struct, an instruction's arguments or a named enum variant.
type Field struct {
	Name string
	Docs []string
	Type *Type
}

// DefKind tells whether a TypeDef is a struct or an enum.
type DefKind int

const (
	DefStruct DefKind = iota
	DefEnum
)

func (k DefKind) String() string {
	if k == DefEnum {
		return "enum"
	}
	return "struct"
}

// FieldsKind enumerates the payload shapes of an enum variant.
type FieldsKind int

const (
	// FieldsNone is a unit variant.
	FieldsNone FieldsKind = iota
	// FieldsNamed is a variant carrying named fields, like a struct.
	FieldsNamed
	// FieldsTuple is a variant carrying positional fields.
	FieldsTuple
)

// EnumVariant is one variant of an enum type definition.
type EnumVariant struct {
	Name  string
	Kind  FieldsKind
	Named []Field
	Tuple []*Type
}

// Types returns the types carried by the variant, in order, whatever its Kind.
func (v *EnumVariant) Types() []*Type {
	switch v.Kind {
	case FieldsNamed:
		types := make([]*Type, len(v.Named))
		for ii := range v.Named {
			types[ii] = v.Named[ii].Type
		}
		return types
	case FieldsTuple:
		return v.Tuple
	}
	return nil
}

// TypeDef is a user defined type: either a struct (Fields) or an enum (Variants).
type TypeDef struct {
	Name     string
	Docs     []string
	Kind     DefKind
	Fields   []Field
	Variants []EnumVariant
}

// IsUnitEnum returns whether def is an enum whose variants carry no data.
func (def *TypeDef) IsUnitEnum() bool {
	if def.Kind != DefEnum {
		return false
	}
	for _, v := range def.Variants {
		if v.Kind != FieldsNone {
			return false
		}
	}
	return true
}

// Account is an account an instruction reads or writes.
type Account struct {
	Name       string
	Docs       []string
	IsMut      bool
	IsSigner   bool
	IsOptional bool

	// IsArray marks a variable length list of accounts, e.g. multisig signers. It is never set by
	// parsing; program specific generators add such accounts.
	IsArray bool

	// Metadata holds free form, program specific annotations.
	Metadata map[string]any
}

// MetadataBool returns the boolean metadata value under key, or false.
func (a *Account) MetadataBool(key string) bool {
	v, _ := a.Metadata[key].(bool)
	return v
}

// MetadataString returns the string metadata value under key, or "".
func (a *Account) MetadataString(key string) string {
	v, _ := a.Metadata[key].(string)
	return v
}

// AccountGroup is a named, nested group of accounts.
type AccountGroup struct {
	Name     string
	Accounts []AccountItem
}

// AccountItem is either a single Account or a Group. Exactly one of them is set.
type AccountItem struct {
	Account *Account
	Group   *AccountGroup
}

// FlatAccount is an account reached by flattening nested groups. Path holds the names of the
// enclosing groups, outermost first.
type FlatAccount struct {
	*Account
	Path []string
}

// Flatten lists the accounts of items depth first, in declaration order.
func Flatten(items []AccountItem) []FlatAccount {
	var flat []FlatAccount
	var walk func(items []AccountItem, path []string)
	walk = func(items []AccountItem, path []string) {
		for _, item := range items {
			if item.Group != nil {
				walk(item.Group.Accounts, append(path[:len(path):len(path)], item.Group.Name))
				continue
			}
			flat = append(flat, FlatAccount{Account: item.Account, Path: path})
		}
	}
	walk(items, nil)
	return flat
}

// Instruction is a program instruction: the accounts it touches and its arguments.
type Instruction struct {
	Name     string
	Docs     []string
	Accounts []AccountItem
	Args     []Field
}

// ErrorCode is a custom program error.
type ErrorCode struct {
	Code int
	Name string
	Msg  string
}

// Const is a named program constant. Value is kept as written in the IDL.
type Const struct {
	Name  string
	Type  *Type
	Value string
}

// EventField is a field of an event.
type EventField struct {
	Field
	Index bool
}

// Event is a program event.
type Event struct {
	Name   string
	Fields []EventField
}

// State is the legacy Anchor program state.
type State struct {
	Struct  TypeDef
	Methods []Instruction
}

// IDL describes one program.
type IDL struct {
	Version      string
	Name         string
	Docs         []string
	Constants    []Const
	Instructions []Instruction
	State        *State
	Accounts     []TypeDef
	Types        []TypeDef
	Events       []Event
	Errors       []ErrorCode
	Metadata     map[string]any
}

// Address returns the program address recorded in the IDL metadata, or "".
func (spec *IDL) Address() string {
	address, _ := spec.Metadata["address"].(string)
	return address
}

// TypeDefs returns the types followed by the accounts: all the definitions that generate a Go type.
func (spec *IDL) TypeDefs() []*TypeDef {
	defs := make([]*TypeDef, 0, len(spec.Types)+len(spec.Accounts))
	for ii := range spec.Types {
		defs = append(defs, &spec.Types[ii])
	}
	for ii := range spec.Accounts {
		defs = append(defs, &spec.Accounts[ii])
	}
	return defs
}

// FindTypeDef returns the type or account definition with the given name, or nil.
func (spec *IDL) FindTypeDef(name string) *TypeDef {
	for _, def := range spec.TypeDefs() {
		if def.Name == name {
			return def
		}
	}
	return nil
}

// SkipTypes removes the named definitions from Types.
func (spec *IDL) SkipTypes(names ...string) {
	if len(names) == 0 {
		return
	}
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}
	kept := spec.Types[:0]
	for _, def := range spec.Types {
		if !skip[def.Name] {
			kept = append(kept, def)
		}
	}
	spec.Types = kept
}
