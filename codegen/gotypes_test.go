package codegen

import (
	"testing"

	"github.com/gomlx/solmate/dtypes"
	"github.com/gomlx/solmate/idl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignColumns(t *testing.T) {
	got := alignColumns("\t", [][]string{
		{"X", "int64"},
		{"// Radius of the circle."},
		{"Radius", "uint32"},
		{"Tag", "borsh.Enum", "= iota"},
	})
	assert.Equal(t, []string{
		"\tX      int64\n",
		"\t// Radius of the circle.\n",
		"\tRadius uint32\n",
		"\tTag    borsh.Enum = iota\n",
	}, got)
	assert.Empty(t, alignColumns("\t", nil))
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "points", packageName("points"))
	assert.Equal(t, "tokenprogram", packageName("token_program"))
	assert.Equal(t, "marinadefinance", packageName("marinade-finance"))
	assert.Equal(t, "tokenlending", packageName("tokenLending"))

	assert.Equal(t, "spiritstypes", importAlias("example.com/spirits/types"))
	assert.Equal(t, "types", importAlias("types"))
	assert.Equal(t, "v2types", importAlias("example.com/2/v2/types/"))
	assert.Equal(t, "p", receiverName("Point"))
}

func TestDefaultGoType(t *testing.T) {
	g, err := New(&idl.IDL{Name: "points"}, Options{OutDir: t.TempDir(), Package: testPackage})
	require.NoError(t, err)
	e, err := g.Editor("points.instructions.move", true)
	require.NoError(t, err)
	ctx := g.typeContext(e, false)

	testCases := []struct {
		t    *idl.Type
		want string
	}{
		{idl.Primitive(dtypes.U64), "uint64"},
		{idl.Primitive(dtypes.U128), "borsh.Uint128"},
		{idl.Primitive(dtypes.PublicKey), "solana.PublicKey"},
		{idl.Primitive(dtypes.Bytes), "[]byte"},
		{idl.OptionOf(idl.Primitive(dtypes.String)), "*string"},
		{idl.COptionOf(idl.Primitive(dtypes.PublicKey)), "borsh.COption[solana.PublicKey]"},
		{idl.VecOf(idl.Defined("Point")), "[]types.Point"},
		{idl.ArrayOf(idl.Primitive(dtypes.U8), 32), "[32]uint8"},
		{idl.ArrayOf(idl.VecOf(idl.Primitive(dtypes.I16)), 2), "[2][]int16"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ctx.GoType(tc.t), "type %s", tc.t)
	}
	assert.True(t, g.expected["Point"])
	assert.Equal(t, []string{
		"import (\n",
		"\t\"example.com/bindings/points/types\"\n",
		"\t\"github.com/gomlx/solmate/borsh\"\n",
		"\t\"github.com/gomlx/solmate/solana\"\n",
		")\n",
	}, e.Imports().Render(e.Syntax()))
}

func TestConstantValue(t *testing.T) {
	g, err := New(&idl.IDL{Name: "points"}, Options{OutDir: t.TempDir(), Package: testPackage})
	require.NoError(t, err)
	e, err := g.Editor("points.constants", true)
	require.NoError(t, err)
	ctx := g.typeContext(e, false)

	testCases := []struct {
		name    string
		c       idl.Const
		isConst bool
		want    string
	}{
		{"u64", idl.Const{Type: idl.Primitive(dtypes.U64), Value: "1_000_000"}, true, "1_000_000"},
		{"i8", idl.Const{Type: idl.Primitive(dtypes.I8), Value: "-3"}, true, "-3"},
		{"bool", idl.Const{Type: idl.Primitive(dtypes.Bool), Value: "true"}, true, "true"},
		{"quoted string", idl.Const{Type: idl.Primitive(dtypes.String), Value: `"seed"`}, true, `"seed"`},
		{"bare string", idl.Const{Type: idl.Primitive(dtypes.String), Value: "seed"}, true, `"seed"`},
		{"u128", idl.Const{Type: idl.Primitive(dtypes.U128), Value: "7"}, false, "borsh.NewUint128(7)"},
		{"bytes", idl.Const{Type: idl.Primitive(dtypes.Bytes), Value: "[1, 2]"}, false, "[]byte{1, 2}"},
		{"array", idl.Const{Type: idl.ArrayOf(idl.Primitive(dtypes.U8), 2), Value: "[3, 4]"}, false, "[2]uint8{3, 4}"},
		{"public key", idl.Const{Type: idl.Primitive(dtypes.PublicKey), Value: `"SysvarRent111111111111111111111111111111111"`},
			false, `solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			isConst, value, err := constantValue(ctx, tc.c)
			require.NoError(t, err)
			assert.Equal(t, tc.isConst, isConst)
			assert.Equal(t, tc.want, value)
		})
	}

	for _, c := range []idl.Const{
		{Type: idl.Primitive(dtypes.U8), Value: "256"},
		{Type: idl.Primitive(dtypes.U64), Value: "10 * 60"},
		{Type: idl.Defined("Point"), Value: "{}"},
		{Type: idl.Primitive(dtypes.PublicKey), Value: "nope"},
	} {
		_, _, err := constantValue(ctx, c)
		assert.Error(t, err, "constant %s = %s", c.Type, c.Value)
	}
}
