package idl

import (
	"path/filepath"
	"testing"

	"github.com/gomlx/solmate/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	spec, err := ParseFile(filepath.Join("testdata", "demo.json"))
	require.NoError(t, err)
	assert.Equal(t, "demo", spec.Name)
	assert.Equal(t, "0.1.0", spec.Version)
	assert.Equal(t, []string{"Demo program."}, spec.Docs)
	assert.Equal(t, "Demo111111111111111111111111111111111111111", spec.Address())
	assert.Nil(t, spec.State)

	t.Run("constants", func(t *testing.T) {
		require.Len(t, spec.Constants, 2)
		assert.Equal(t, "MAX_POINTS", spec.Constants[0].Name)
		assert.Equal(t, Primitive(dtypes.U16), spec.Constants[0].Type)
		assert.Equal(t, "16", spec.Constants[0].Value)
		assert.Equal(t, `"demo"`, spec.Constants[1].Value)
	})

	t.Run("instructions", func(t *testing.T) {
		require.Len(t, spec.Instructions, 2)
		initialize := spec.Instructions[0]
		assert.Equal(t, "initialize", initialize.Name)
		assert.Equal(t, []string{"Creates the registry."}, initialize.Docs)
		require.Len(t, initialize.Accounts, 3)
		assert.True(t, initialize.Accounts[0].Account.IsMut)
		assert.True(t, initialize.Accounts[0].Account.IsSigner)
		require.NotNil(t, initialize.Accounts[2].Group)
		assert.Nil(t, initialize.Accounts[2].Account)
		assert.Equal(t, "programs", initialize.Accounts[2].Group.Name)

		flat := Flatten(initialize.Accounts)
		require.Len(t, flat, 4)
		assert.Equal(t, "systemProgram", flat[2].Name)
		assert.Equal(t, []string{"programs"}, flat[2].Path)
		assert.True(t, flat[3].IsOptional)
		assert.Empty(t, flat[0].Path)

		require.Len(t, initialize.Args, 2)
		assert.Equal(t, OptionOf(Defined("Point")), initialize.Args[1].Type)

		addPoint := spec.Instructions[1]
		assert.True(t, addPoint.Accounts[1].Account.MetadataBool("allowMultisig"))
		assert.False(t, addPoint.Accounts[0].Account.MetadataBool("allowMultisig"))
		assert.Equal(t, Defined("Point"), addPoint.Args[0].Type)
		assert.Equal(t, "Vec<string>", addPoint.Args[1].Type.String())
		assert.Equal(t, "[u8; 32]", addPoint.Args[2].Type.String())
	})

	t.Run("types", func(t *testing.T) {
		require.Len(t, spec.Accounts, 1)
		registry := spec.Accounts[0]
		assert.Equal(t, DefStruct, registry.Kind)
		assert.Equal(t, "Vec<Point>", registry.Fields[1].Type.String())
		assert.Equal(t, COptionOf(Primitive(dtypes.PublicKey)), registry.Fields[2].Type)
		assert.True(t, registry.Fields[2].Type.IsOptional())

		shape := spec.FindTypeDef("Shape")
		require.NotNil(t, shape)
		assert.Equal(t, DefEnum, shape.Kind)
		assert.False(t, shape.IsUnitEnum())
		require.Len(t, shape.Variants, 4)
		assert.Equal(t, FieldsNone, shape.Variants[0].Kind)
		assert.Equal(t, FieldsNamed, shape.Variants[1].Kind)
		assert.Equal(t, "radius", shape.Variants[1].Named[1].Name)
		assert.Equal(t, FieldsTuple, shape.Variants[2].Kind)
		assert.Equal(t, []*Type{Defined("Point"), Defined("Point")}, shape.Variants[2].Types())
		assert.Equal(t, FieldsNone, shape.Variants[3].Kind)
		assert.Nil(t, shape.Variants[3].Types())

		names := make([]string, 0, 3)
		for _, def := range spec.TypeDefs() {
			names = append(names, def.Name)
		}
		assert.Equal(t, []string{"Point", "Shape", "Registry"}, names)
		assert.Nil(t, spec.FindTypeDef("Missing"))
	})

	t.Run("events and errors", func(t *testing.T) {
		require.Len(t, spec.Events, 1)
		assert.False(t, spec.Events[0].Fields[0].Index)
		assert.True(t, spec.Events[0].Fields[1].Index)
		require.Len(t, spec.Errors, 2)
		assert.Equal(t, ErrorCode{Code: 6000, Name: "RegistryFull", Msg: "Registry is full"}, spec.Errors[0])
		assert.Equal(t, "", spec.Errors[1].Msg)
	})
}

func TestParse_Errors(t *testing.T) {
	for _, tc := range []struct {
		name, json, contains string
	}{
		{"invalid json", `{"name": `, "invalid JSON"},
		{"not an object", `[1, 2]`, "must be a JSON object"},
		{"missing name", `{"version": "1"}`, "missing the program"},
		{"unknown primitive", `{"name": "p", "types": [{"name": "T", "type": {"kind": "struct", "fields": [{"name": "a", "type": "u256"}]}}]}`, `unknown primitive type "u256"`},
		{"bad array", `{"name": "p", "types": [{"name": "T", "type": {"kind": "struct", "fields": [{"name": "a", "type": {"array": ["u8"]}}]}}]}`, "array type must be"},
		{"bad kind", `{"name": "p", "types": [{"name": "T", "type": {"kind": "union"}}]}`, `unsupported type definition kind "union"`},
		{"unsupported type", `{"name": "p", "instructions": [{"name": "ix", "args": [{"name": "a", "type": {"map": "u8"}}]}]}`, "unsupported type"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.json))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}

	_, err := Parse([]byte(`{"name": "p", "types": [{"name": "Bad", "type": {"kind": "struct", "fields": [{"name": "a", "type": "u256"}]}}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `type "Bad"`)
	assert.Contains(t, err.Error(), `field "a"`)
	assert.Contains(t, err.Error(), `program "p"`)

	_, err = ParseFile(filepath.Join("testdata", "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestParse_StateAndNewerLayout(t *testing.T) {
	spec, err := Parse([]byte(`{
		"address": "Prog1111111111111111111111111111111111111111",
		"metadata": {"name": "newer", "version": "0.2.0"},
		"instructions": [{"name": "init", "accounts": [{"name": "a", "writable": true, "signer": true, "optional": true}], "args": []}],
		"state": {"struct": {"name": "S", "type": {"kind": "struct", "fields": []}}, "methods": [{"name": "m", "accounts": [], "args": []}]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "newer", spec.Name)
	assert.Equal(t, "0.2.0", spec.Version)
	assert.Equal(t, "Prog1111111111111111111111111111111111111111", spec.Address())
	a := spec.Instructions[0].Accounts[0].Account
	assert.True(t, a.IsMut && a.IsSigner && a.IsOptional)
	require.NotNil(t, spec.State)
	assert.Equal(t, "S", spec.State.Struct.Name)
	require.Len(t, spec.State.Methods, 1)
}

func TestSkipTypes(t *testing.T) {
	spec := &IDL{Types: []TypeDef{{Name: "A"}, {Name: "B"}, {Name: "C"}}}
	spec.SkipTypes("B", "Z")
	require.Len(t, spec.Types, 2)
	assert.Equal(t, "A", spec.Types[0].Name)
	assert.Equal(t, "C", spec.Types[1].Name)
}

func TestType_DefinedNames(t *testing.T) {
	ty := VecOf(OptionOf(Defined("Fee")))
	assert.Equal(t, []string{"Fee"}, ty.DefinedNames())
	assert.Empty(t, ArrayOf(Primitive(dtypes.U8), 4).DefinedNames())
	assert.Equal(t, "COption<u64>", COptionOf(Primitive(dtypes.U64)).String())
}
