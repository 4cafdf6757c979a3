package borsh

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitives(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value any
		want  []byte
	}{
		{"u8", uint8(7), []byte{7}},
		{"u16", uint16(0x0102), []byte{2, 1}},
		{"i32", int32(-1), []byte{0xff, 0xff, 0xff, 0xff}},
		{"u64", uint64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"int", -2, []byte{0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"bool", true, []byte{1}},
		{"f32", float32(1), []byte{0, 0, 0x80, 0x3f}},
		{"string", "ab", []byte{2, 0, 0, 0, 'a', 'b'}},
		{"bytes", []byte{9, 8}, []byte{2, 0, 0, 0, 9, 8}},
		{"array", [3]uint8{1, 2, 3}, []byte{1, 2, 3}},
		{"u16 slice", []uint16{1, 2}, []byte{2, 0, 0, 0, 1, 0, 2, 0}},
		{"u128", NewUint128(1), append([]byte{1}, make([]byte, 15)...)},
		{"i128", NewInt128(-1), bytes.Repeat([]byte{0xff}, 16)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type point struct {
	X, Y int64
}

type sample struct {
	Flag    bool
	Count   uint32
	Name    string
	Data    []byte
	Points  []point
	Key     [4]byte
	Origin  *point
	Missing *uint8
	Big     Uint128
	Signed  Int128
	Ratio   float64
	hidden  int
	Ignored string `borsh:"-"`
}

func TestRoundTrip(t *testing.T) {
	in := sample{
		Flag:    true,
		Count:   3,
		Name:    "solmate",
		Data:    []byte{1, 2, 3},
		Points:  []point{{1, -2}, {3, 4}},
		Key:     [4]byte{0xa, 0xb, 0xc, 0xd},
		Origin:  &point{X: 5},
		Big:     Uint128{Lo: 1, Hi: 2},
		Signed:  NewInt128(-42),
		Ratio:   0.5,
		hidden:  7,
		Ignored: "not packed",
	}
	raw, err := Marshal(in)
	require.NoError(t, err)

	// Marshal dereferences pointers.
	raw2, err := Marshal(&in)
	require.NoError(t, err)
	assert.Equal(t, raw, raw2)

	var out sample
	require.NoError(t, Unmarshal(raw, &out))
	assert.Equal(t, "", out.Ignored)
	assert.Equal(t, 0, out.hidden)
	in.Ignored, in.hidden = "", 0
	assert.Equal(t, in, out)

	pointRaw, err := Marshal(point{X: 1, Y: -2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, pointRaw)
}

func TestOption(t *testing.T) {
	type opt struct {
		V *uint16
	}
	raw, err := Marshal(opt{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, raw)

	v := uint16(5)
	raw, err = Marshal(opt{V: &v})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 5, 0}, raw)

	var out opt
	require.NoError(t, Unmarshal(raw, &out))
	require.NotNil(t, out.V)
	assert.Equal(t, uint16(5), *out.V)

	require.NoError(t, Unmarshal([]byte{0}, &out))
	assert.Nil(t, out.V)

	err = Unmarshal([]byte{2, 0, 0}, &out)
	require.ErrorIs(t, err, ErrInvalidOption)
}

type circle struct {
	Radius uint32
}

type shape struct {
	Enum
	Empty  Unit
	Circle circle
	Pair   [2]uint8
}

func TestEnum(t *testing.T) {
	raw, err := Marshal(shape{Enum: 1, Circle: circle{Radius: 7}})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 7, 0, 0, 0}, raw)

	raw, err = Marshal(shape{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, raw)

	out := shape{Enum: 1, Circle: circle{Radius: 99}}
	require.NoError(t, Unmarshal([]byte{2, 4, 5}, &out))
	assert.Equal(t, shape{Enum: 2, Pair: [2]uint8{4, 5}}, out)

	_, err = Marshal(shape{Enum: 3})
	require.ErrorIs(t, err, ErrInvalidEnumTag)
	err = Unmarshal([]byte{5}, &out)
	require.ErrorIs(t, err, ErrInvalidEnumTag)

	_, ok := StaticSizeOf[shape]()
	assert.False(t, ok)
}

type versioned struct {
	A uint8
}

func (v *versioned) MarshalBorsh(e *Encoder) error {
	e.WriteU8(0xee)
	return e.EncodeFields(v)
}

func (v *versioned) UnmarshalBorsh(d *Decoder) error {
	if d.ReadU8() != 0xee {
		return errors.New("bad version")
	}
	return d.DecodeFields(v)
}

func TestHooks(t *testing.T) {
	raw, err := Marshal(versioned{A: 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xee, 3}, raw)

	raw, err = Marshal([]versioned{{A: 1}, {A: 2}})
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 0, 0, 0xee, 1, 0xee, 2}, raw)

	var out []versioned
	require.NoError(t, Unmarshal(raw, &out))
	assert.Equal(t, []versioned{{A: 1}, {A: 2}}, out)

	err = Unmarshal([]byte{1, 0, 0, 0, 0xdd, 1}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad version")
}

func TestCOption(t *testing.T) {
	type account struct {
		Delegate COption[[4]byte]
		Amount   uint64
	}
	size, ok := StaticSizeOf[account]()
	require.True(t, ok)
	assert.Equal(t, 16, size)
	size, ok = StaticSize(new(account))
	require.True(t, ok)
	assert.Equal(t, 16, size)
	_, ok = StaticSize([]byte{})
	assert.False(t, ok)

	raw, err := Marshal(account{Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}, raw)

	in := account{Delegate: Some([4]byte{1, 2, 3, 4}), Amount: 2}
	raw, err = Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 1, 2, 3, 4, 2, 0, 0, 0, 0, 0, 0, 0}, raw)

	var out account
	require.NoError(t, Unmarshal(raw, &out))
	assert.Equal(t, in, out)
	key, present := out.Delegate.Get()
	assert.True(t, present)
	assert.Equal(t, [4]byte{1, 2, 3, 4}, key)
	assert.Equal(t, "None", COption[uint8]{}.String())
	assert.Equal(t, "Some(3)", Some(uint8(3)).String())

	raw[0] = 2
	require.ErrorIs(t, Unmarshal(raw, &out), ErrInvalidOption)
}

func TestRepeat(t *testing.T) {
	values := []uint32{0, 1, 1000, 1 << 31}
	var raw []byte
	for _, v := range values {
		packed, err := Marshal(v)
		require.NoError(t, err)
		raw = append(raw, packed...)
	}

	var r Repeat[uint32]
	require.NoError(t, Unmarshal(raw, &r))
	require.Equal(t, 4, r.Len())
	for ii, want := range values {
		got, err := r.At(ii)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		// Indexing wraps around.
		got, err = r.At(ii + len(values))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	last, err := r.At(-1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<31), last)

	built, err := NewRepeat(values...)
	require.NoError(t, err)
	repacked, err := Marshal(built)
	require.NoError(t, err)
	assert.Equal(t, raw, repacked)

	err = Unmarshal(raw[:5], &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a whole number")

	_, err = NewRepeat[string]("a")
	require.Error(t, err)

	var empty Repeat[uint32]
	_, err = empty.At(0)
	require.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	var u32 uint32
	require.ErrorIs(t, Unmarshal([]byte{1, 2}, &u32), ErrShortBuffer)

	var b bool
	require.ErrorIs(t, Unmarshal([]byte{2}, &b), ErrInvalidBool)

	var u8 uint8
	require.ErrorIs(t, Unmarshal([]byte{1, 0}, &u8), ErrTrailingBytes)

	var huge []point
	require.ErrorIs(t, Unmarshal([]byte{0xff, 0xff, 0xff, 0x0f}, &huge), ErrShortBuffer)

	require.Error(t, Unmarshal([]byte{0}, u8))

	_, err := Marshal(map[string]int{"a": 1})
	require.Error(t, err)
	_, err = Marshal(nil)
	require.Error(t, err)

	// Partial decoding leaves the rest of the input.
	d := NewDecoder([]byte{1, 0, 9})
	var u16 uint16
	require.NoError(t, d.Decode(&u16))
	assert.Equal(t, uint16(1), u16)
	assert.Equal(t, 1, d.Remaining())
	assert.Equal(t, 2, d.Pos())
}

func TestInt128(t *testing.T) {
	assert.Equal(t, "-1", NewInt128(-1).String())
	assert.Equal(t, "42", NewUint128(42).String())

	twoPow64Plus5 := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(5))
	u, err := Uint128FromBig(twoPow64Plus5)
	require.NoError(t, err)
	assert.Equal(t, Uint128{Lo: 5, Hi: 1}, u)
	assert.Equal(t, twoPow64Plus5.String(), u.String())

	i, err := Int128FromBig(big.NewInt(-2))
	require.NoError(t, err)
	assert.Equal(t, NewInt128(-2), i)
	assert.Equal(t, int64(-1), i.Hi)

	_, err = Uint128FromBig(big.NewInt(-1))
	require.Error(t, err)
	_, err = Int128FromBig(new(big.Int).Lsh(big.NewInt(1), 127))
	require.Error(t, err)
}
