package dtypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapOfNames(t *testing.T) {
	require.Equal(t, U64, MapOfNames["u64"])
	require.Equal(t, U64, MapOfNames["U64"])
	require.Equal(t, U64, MapOfNames["usize"])
	require.Equal(t, PublicKey, MapOfNames["publicKey"])
	require.Equal(t, PublicKey, MapOfNames["pubkey"])
	require.Equal(t, Bool, FromName("bool"))
	require.Equal(t, Invalid, FromName("defined"))
	require.Equal(t, Invalid, FromName("invalid"))
}

func TestDTypeValues(t *testing.T) {
	values := DTypeValues()
	require.Len(t, values, int(PublicKey)+1)
	for i, dtype := range values {
		require.Equal(t, DType(i), dtype)
		require.True(t, dtype.IsADType())
		if dtype != Invalid {
			require.Equal(t, dtype, FromName(dtype.String()), "round trip of %s", dtype)
		}
	}
	require.False(t, DType(99).IsADType())
	require.Equal(t, Uint64, U64)

	dtype, err := DTypeString("PUBLICKEY")
	require.NoError(t, err)
	require.Equal(t, PublicKey, dtype)
	_, err = DTypeString("u256")
	require.Error(t, err)
}

func TestDType_Properties(t *testing.T) {
	require.Equal(t, "publicKey", PublicKey.String())
	require.Equal(t, "DType(99)", DType(99).String())

	require.True(t, I128.IsInteger())
	require.False(t, I128.IsUnsigned())
	require.True(t, U16.IsUnsigned())
	require.False(t, F32.IsInteger())
	require.True(t, F64.IsFloat())

	require.Equal(t, 16, U128.Size())
	require.Equal(t, 32, PublicKey.Size())
	require.Equal(t, -1, String.Size())
	require.False(t, Bytes.IsStatic())
	require.True(t, Bool.IsStatic())
}

func TestDType_GoType(t *testing.T) {
	require.Equal(t, "uint32", U32.GoType())
	require.Equal(t, "borsh.Uint128", U128.GoType())
	require.Equal(t, "borsh", U128.GoPackage())
	require.Equal(t, "solana.PublicKey", PublicKey.GoType())
	require.Equal(t, "solana", PublicKey.GoPackage())
	require.Equal(t, "", U8.GoPackage())
	require.Equal(t, "[]byte", Bytes.GoType())
}
