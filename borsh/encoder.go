// Package borsh packs and unpacks values in the Borsh binary layout used by Solana programs:
// little-endian fixed width integers, u32 length prefixed strings, bytes and vectors, a u8 flag for
// options and a u8 tag for enums.
//
// Low level access is provided by Encoder and Decoder. Marshal and Unmarshal walk Go values by
// reflection:
//
//   - bool, sized integers and floats map to their Borsh counterparts; int and uint take 8 bytes.
//   - Strings, byte slices and other slices are prefixed by their length as a u32.
//   - Arrays are packed element by element, without prefix.
//   - A pointer is an Option: a u8 0 for nil, or 1 followed by the value.
//   - A struct is packed field by field, skipping unexported fields and fields tagged `borsh:"-"`.
//   - A struct whose first field has type Enum is an enum: the tag is packed as a u8 and followed by
//     the field selected by it (field tag+1).
//   - Types implementing Marshaler or Unmarshaler take over their own packing.
package borsh

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Encoder writes Borsh encoded values to an io.Writer. Errors are sticky: after the first failure
// every write is a no-op, and Err reports the failure.
type Encoder struct {
	w       io.Writer
	err     error
	scratch [8]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first error encountered, if any.
func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// WriteRaw writes b as is.
func (e *Encoder) WriteRaw(b []byte) {
	if e.err != nil || len(b) == 0 {
		return
	}
	if _, err := e.w.Write(b); err != nil {
		e.fail(errors.Wrap(err, "borsh: write failed"))
	}
}

func (e *Encoder) WriteU8(v uint8) {
	e.scratch[0] = v
	e.WriteRaw(e.scratch[:1])
}

func (e *Encoder) WriteU16(v uint16) {
	binary.LittleEndian.PutUint16(e.scratch[:2], v)
	e.WriteRaw(e.scratch[:2])
}

func (e *Encoder) WriteU32(v uint32) {
	binary.LittleEndian.PutUint32(e.scratch[:4], v)
	e.WriteRaw(e.scratch[:4])
}

func (e *Encoder) WriteU64(v uint64) {
	binary.LittleEndian.PutUint64(e.scratch[:8], v)
	e.WriteRaw(e.scratch[:8])
}

func (e *Encoder) WriteU128(v Uint128) {
	e.WriteU64(v.Lo)
	e.WriteU64(v.Hi)
}

func (e *Encoder) WriteI8(v int8)   { e.WriteU8(uint8(v)) }
func (e *Encoder) WriteI16(v int16) { e.WriteU16(uint16(v)) }
func (e *Encoder) WriteI32(v int32) { e.WriteU32(uint32(v)) }
func (e *Encoder) WriteI64(v int64) { e.WriteU64(uint64(v)) }

func (e *Encoder) WriteI128(v Int128) {
	e.WriteU64(v.Lo)
	e.WriteU64(uint64(v.Hi))
}

func (e *Encoder) WriteF32(v float32) { e.WriteU32(math.Float32bits(v)) }
func (e *Encoder) WriteF64(v float64) { e.WriteU64(math.Float64bits(v)) }

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.WriteU8(1)
	} else {
		e.WriteU8(0)
	}
}

// WriteLength writes a u32 length prefix.
func (e *Encoder) WriteLength(n int) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		e.fail(errors.Errorf("borsh: length %d doesn't fit a u32 prefix", n))
		return
	}
	e.WriteU32(uint32(n))
}

// WriteBytes writes b prefixed by its length.
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteLength(len(b))
	e.WriteRaw(b)
}

// WriteString writes s prefixed by its length in bytes.
func (e *Encoder) WriteString(s string) {
	e.WriteLength(len(s))
	e.WriteRaw([]byte(s))
}
