package borsh

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/pkg/errors"
)

// Enum is the variant tag of an enum struct. An enum struct has Enum as its first field, followed by
// one field per variant, in tag order, holding the variant's payload:
//
//	type Shape struct {
//		borsh.Enum
//		Empty  borsh.Unit
//		Circle Circle
//	}
//
// Only the payload of the variant selected by the tag is packed.
type Enum uint8

// Unit is the payload of variants that carry no data.
type Unit struct{}

// COption is the fixed size optional value used by native Solana programs: a u32 flag (0 or 1)
// followed by the value, zeroed when absent. Unlike a pointer (a Borsh Option) it always takes the
// same room.
type COption[T any] struct {
	Value T
	Valid bool
}

// Some returns a present COption holding v.
func Some[T any](v T) COption[T] {
	return COption[T]{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (o COption[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

func (o COption[T]) String() string {
	if !o.Valid {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.Value)
}

func (o COption[T]) MarshalBorsh(e *Encoder) error {
	value := o.Value
	if o.Valid {
		e.WriteU32(1)
	} else {
		e.WriteU32(0)
		var zero T
		value = zero
	}
	return e.Encode(&value)
}

func (o *COption[T]) UnmarshalBorsh(d *Decoder) error {
	offset := d.Pos()
	flag := d.ReadU32()
	if d.Err() != nil {
		return d.Err()
	}
	if flag > 1 {
		return errors.Wrapf(ErrInvalidOption, "COption flag %d at offset %d", flag, offset)
	}
	if err := d.Decode(&o.Value); err != nil {
		return err
	}
	o.Valid = flag == 1
	if !o.Valid {
		var zero T
		o.Value = zero
	}
	return nil
}

func (o COption[T]) borshStaticSize() (int, bool) {
	n, ok := StaticSizeOf[T]()
	return 4 + n, ok
}

// Repeat is a read only view over the rest of an input, holding packed values of the fixed size
// type T back to back. Indexing wraps around: At(Len()) is At(0), which is how programs lay out
// ring buffers in accounts.
type Repeat[T any] struct {
	payload  []byte
	elemSize int
}

// NewRepeat packs elems into a Repeat.
func NewRepeat[T any](elems ...T) (*Repeat[T], error) {
	r := &Repeat[T]{}
	if err := r.init(); err != nil {
		return nil, err
	}
	for ii := range elems {
		raw, err := Marshal(&elems[ii])
		if err != nil {
			return nil, errors.WithMessagef(err, "element #%d", ii)
		}
		r.payload = append(r.payload, raw...)
	}
	return r, nil
}

func (r *Repeat[T]) init() error {
	size, ok := StaticSizeOf[T]()
	if !ok || size == 0 {
		return errors.Errorf("borsh: Repeat needs a fixed size element type, %s isn't", reflect.TypeFor[T]())
	}
	r.elemSize = size
	return nil
}

// Len returns the number of packed elements.
func (r *Repeat[T]) Len() int {
	if r.elemSize == 0 {
		return 0
	}
	return len(r.payload) / r.elemSize
}

// At unpacks element i, wrapping around both ends.
func (r *Repeat[T]) At(i int) (T, error) {
	var v T
	n := r.Len()
	if n == 0 {
		return v, errors.Errorf("borsh: index %d into an empty Repeat", i)
	}
	i = ((i % n) + n) % n
	err := Unmarshal(r.payload[i*r.elemSize:(i+1)*r.elemSize], &v)
	return v, err
}

func (Repeat[T]) borshStaticSize() (int, bool) { return 0, false }

// MarshalBorsh writes the packed elements, without prefix.
func (r *Repeat[T]) MarshalBorsh(e *Encoder) error {
	e.WriteRaw(r.payload)
	return e.Err()
}

// UnmarshalBorsh consumes the rest of the input, which must hold a whole number of elements.
func (r *Repeat[T]) UnmarshalBorsh(d *Decoder) error {
	if err := r.init(); err != nil {
		return err
	}
	rest := d.ReadRaw(d.Remaining())
	if len(rest)%r.elemSize != 0 {
		return errors.Errorf("borsh: %d bytes left is not a whole number of %d bytes elements", len(rest), r.elemSize)
	}
	r.payload = append([]byte(nil), rest...)
	return nil
}

// Uint128 is an unsigned 128 bits integer, packed as two little-endian u64 words, low word first.
type Uint128 struct {
	Lo, Hi uint64
}

// NewUint128 converts v to a Uint128.
func NewUint128(v uint64) Uint128 {
	return Uint128{Lo: v}
}

var (
	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two127 = new(big.Int).Lsh(big.NewInt(1), 127)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64 = new(big.Int).Sub(two64, big.NewInt(1))
)

// Uint128FromBig converts b, which must be in [0, 2^128).
func Uint128FromBig(b *big.Int) (Uint128, error) {
	if b.Sign() < 0 || b.Cmp(two128) >= 0 {
		return Uint128{}, errors.Errorf("borsh: %s doesn't fit a u128", b)
	}
	lo := new(big.Int).And(b, mask64).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return Uint128{Lo: lo, Hi: hi}, nil
}

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string { return u.Big().String() }

// Int128 is a signed 128 bits integer in two's complement, packed like Uint128.
type Int128 struct {
	Lo uint64
	Hi int64
}

// NewInt128 converts v to an Int128.
func NewInt128(v int64) Int128 {
	var hi int64
	if v < 0 {
		hi = -1
	}
	return Int128{Lo: uint64(v), Hi: hi}
}

// Int128FromBig converts b, which must be in [-2^127, 2^127).
func Int128FromBig(b *big.Int) (Int128, error) {
	if b.Cmp(new(big.Int).Neg(two127)) < 0 || b.Cmp(two127) >= 0 {
		return Int128{}, errors.Errorf("borsh: %s doesn't fit an i128", b)
	}
	u := new(big.Int).Set(b)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return Int128{Lo: lo, Hi: int64(hi)}, nil
}

// Big returns i as a big.Int.
func (i Int128) Big() *big.Int {
	b := big.NewInt(i.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(i.Lo))
}

func (i Int128) String() string { return i.Big().String() }
