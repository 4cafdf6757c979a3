package borsh

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrShortBuffer is returned when the input ends before the value being decoded.
	ErrShortBuffer = errors.New("borsh: unexpected end of input")

	// ErrTrailingBytes is returned by Unmarshal when the input is longer than the value.
	ErrTrailingBytes = errors.New("borsh: trailing bytes after value")

	// ErrInvalidBool is returned for a bool byte other than 0 or 1.
	ErrInvalidBool = errors.New("borsh: invalid bool")

	// ErrInvalidOption is returned for an option flag other than 0 or 1.
	ErrInvalidOption = errors.New("borsh: invalid option flag")

	// ErrInvalidEnumTag is returned for an enum tag without a matching variant.
	ErrInvalidEnumTag = errors.New("borsh: invalid enum tag")
)

// Decoder reads Borsh encoded values from a byte slice. Like Encoder, errors are sticky: once a read
// fails the following reads return zero values.
type Decoder struct {
	data []byte
	pos  int
	err  error
}

// NewDecoder returns a Decoder reading data from its start.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Err returns the first error encountered, if any.
func (d *Decoder) Err() error { return d.err }

// Pos returns the offset of the next byte to read.
func (d *Decoder) Pos() int { return d.pos }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.pos }

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// ReadRaw returns the next n bytes. The returned slice aliases the input.
func (d *Decoder) ReadRaw(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || n > d.Remaining() {
		d.fail(errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, %d left", n, d.pos, d.Remaining()))
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *Decoder) ReadU8() uint8 {
	b := d.ReadRaw(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) ReadU16() uint16 {
	b := d.ReadRaw(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *Decoder) ReadU32() uint32 {
	b := d.ReadRaw(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *Decoder) ReadU64() uint64 {
	b := d.ReadRaw(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *Decoder) ReadU128() Uint128 {
	lo := d.ReadU64()
	hi := d.ReadU64()
	return Uint128{Lo: lo, Hi: hi}
}

func (d *Decoder) ReadI8() int8   { return int8(d.ReadU8()) }
func (d *Decoder) ReadI16() int16 { return int16(d.ReadU16()) }
func (d *Decoder) ReadI32() int32 { return int32(d.ReadU32()) }
func (d *Decoder) ReadI64() int64 { return int64(d.ReadU64()) }

func (d *Decoder) ReadI128() Int128 {
	lo := d.ReadU64()
	hi := d.ReadU64()
	return Int128{Lo: lo, Hi: int64(hi)}
}

func (d *Decoder) ReadF32() float32 { return math.Float32frombits(d.ReadU32()) }
func (d *Decoder) ReadF64() float64 { return math.Float64frombits(d.ReadU64()) }

func (d *Decoder) ReadBool() bool {
	offset := d.pos
	switch v := d.ReadU8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail(errors.Wrapf(ErrInvalidBool, "byte %d at offset %d", v, offset))
		return false
	}
}

// ReadLength reads a u32 length prefix.
func (d *Decoder) ReadLength() int {
	return int(d.ReadU32())
}

// ReadBytes reads a length prefixed byte string. The result is a copy.
func (d *Decoder) ReadBytes() []byte {
	raw := d.ReadRaw(d.ReadLength())
	if raw == nil {
		return nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// ReadString reads a length prefixed string.
func (d *Decoder) ReadString() string {
	return string(d.ReadRaw(d.ReadLength()))
}
