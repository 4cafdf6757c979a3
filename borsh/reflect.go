package borsh

import (
	"bytes"
	"reflect"

	"github.com/pkg/errors"
)

// Marshaler is implemented by types that pack themselves.
type Marshaler interface {
	MarshalBorsh(e *Encoder) error
}

// Unmarshaler is implemented by types that unpack themselves.
type Unmarshaler interface {
	UnmarshalBorsh(d *Decoder) error
}

var (
	marshalerType   = reflect.TypeFor[Marshaler]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
	enumTagType     = reflect.TypeFor[Enum]()
)

// Marshal returns the Borsh encoding of v. A pointer v is dereferenced first: Marshal(&x) and
// Marshal(x) produce the same bytes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into the value pointed to by v. All of data must be consumed.
func Unmarshal(data []byte, v any) error {
	d := NewDecoder(data)
	if err := d.Decode(v); err != nil {
		return err
	}
	if d.Remaining() != 0 {
		return errors.Wrapf(ErrTrailingBytes, "%d bytes left after decoding %T", d.Remaining(), v)
	}
	return nil
}

// Encode writes the Borsh encoding of v. A pointer v is dereferenced first.
func (e *Encoder) Encode(v any) error {
	rv, err := topLevel(v)
	if err != nil {
		e.fail(err)
		return e.err
	}
	e.encodeValue(rv, true)
	return e.err
}

// EncodeFields writes the fields of the struct pointed to by v, without calling v's own
// MarshalBorsh. Custom MarshalBorsh methods use it to fall back to the default layout.
func (e *Encoder) EncodeFields(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		e.fail(errors.Errorf("borsh: EncodeFields needs a non-nil pointer to a struct, got %T", v))
		return e.err
	}
	e.encodeValue(rv.Elem(), false)
	return e.err
}

// topLevel dereferences v and makes sure the result is addressable, so methods with pointer
// receivers are reachable on v and everything nested in it.
func topLevel(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return rv, errors.New("borsh: cannot encode nil")
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return rv, errors.Errorf("borsh: cannot encode nil %T", v)
		}
		return rv.Elem(), nil
	}
	addressable := reflect.New(rv.Type()).Elem()
	addressable.Set(rv)
	return addressable, nil
}

// hook returns v's implementation of iface, either by value or through its address. Pointers are
// never hooked themselves: they are options, and their element is checked instead.
func hook(v reflect.Value, iface reflect.Type) (any, bool) {
	if v.Kind() == reflect.Pointer || !v.CanInterface() {
		return nil, false
	}
	if v.Type().Implements(iface) {
		return v.Interface(), true
	}
	if v.CanAddr() && v.Addr().Type().Implements(iface) {
		return v.Addr().Interface(), true
	}
	return nil, false
}

func hasHooks(t reflect.Type) bool {
	return t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType) ||
		t.Implements(unmarshalerType) || reflect.PointerTo(t).Implements(unmarshalerType)
}

// isEnum returns whether t is an enum struct: its first field has type Enum.
func isEnum(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() > 0 && t.Field(0).Type == enumTagType
}

func skipField(f reflect.StructField) bool {
	return !f.IsExported() || f.Tag.Get("borsh") == "-"
}

func (e *Encoder) encodeValue(v reflect.Value, hooks bool) {
	if e.err != nil {
		return
	}
	if hooks {
		if m, ok := hook(v, marshalerType); ok {
			if err := m.(Marshaler).MarshalBorsh(e); err != nil {
				e.fail(err)
			}
			return
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		e.WriteBool(v.Bool())
	case reflect.Int8:
		e.WriteI8(int8(v.Int()))
	case reflect.Int16:
		e.WriteI16(int16(v.Int()))
	case reflect.Int32:
		e.WriteI32(int32(v.Int()))
	case reflect.Int, reflect.Int64:
		e.WriteI64(v.Int())
	case reflect.Uint8:
		e.WriteU8(uint8(v.Uint()))
	case reflect.Uint16:
		e.WriteU16(uint16(v.Uint()))
	case reflect.Uint32:
		e.WriteU32(uint32(v.Uint()))
	case reflect.Uint, reflect.Uint64:
		e.WriteU64(v.Uint())
	case reflect.Float32:
		e.WriteF32(float32(v.Float()))
	case reflect.Float64:
		e.WriteF64(v.Float())
	case reflect.String:
		e.WriteString(v.String())
	case reflect.Slice:
		elem := v.Type().Elem()
		if elem.Kind() == reflect.Uint8 && !hasHooks(elem) {
			e.WriteBytes(v.Bytes())
			return
		}
		e.WriteLength(v.Len())
		for ii := 0; ii < v.Len() && e.err == nil; ii++ {
			e.encodeValue(v.Index(ii), true)
		}
	case reflect.Array:
		elem := v.Type().Elem()
		if elem.Kind() == reflect.Uint8 && !hasHooks(elem) && v.CanAddr() {
			e.WriteRaw(v.Bytes())
			return
		}
		for ii := 0; ii < v.Len() && e.err == nil; ii++ {
			e.encodeValue(v.Index(ii), true)
		}
	case reflect.Pointer:
		if v.IsNil() {
			e.WriteU8(0)
			return
		}
		e.WriteU8(1)
		e.encodeValue(v.Elem(), true)
	case reflect.Struct:
		e.encodeStruct(v)
	default:
		e.fail(errors.Errorf("borsh: cannot encode values of type %s", v.Type()))
	}
}

func (e *Encoder) encodeStruct(v reflect.Value) {
	t := v.Type()
	if isEnum(t) {
		tag := int(v.Field(0).Uint())
		if tag+1 >= t.NumField() {
			e.fail(errors.Wrapf(ErrInvalidEnumTag, "%s has %d variants, got tag %d", t, t.NumField()-1, tag))
			return
		}
		e.WriteU8(uint8(tag))
		e.encodeValue(v.Field(tag+1), true)
		return
	}
	for ii := 0; ii < t.NumField() && e.err == nil; ii++ {
		if skipField(t.Field(ii)) {
			continue
		}
		e.encodeValue(v.Field(ii), true)
	}
}

// Decode reads the next value into the value pointed to by v.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		d.fail(errors.Errorf("borsh: Decode needs a non-nil pointer, got %T", v))
		return d.err
	}
	d.decodeValue(rv.Elem(), true)
	return d.err
}

// DecodeFields reads the fields of the struct pointed to by v, without calling v's own
// UnmarshalBorsh.
func (d *Decoder) DecodeFields(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		d.fail(errors.Errorf("borsh: DecodeFields needs a non-nil pointer to a struct, got %T", v))
		return d.err
	}
	d.decodeValue(rv.Elem(), false)
	return d.err
}

func (d *Decoder) decodeValue(v reflect.Value, hooks bool) {
	if d.err != nil {
		return
	}
	if hooks {
		if u, ok := hook(v, unmarshalerType); ok {
			if err := u.(Unmarshaler).UnmarshalBorsh(d); err != nil {
				d.fail(err)
			}
			return
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(d.ReadBool())
	case reflect.Int8:
		v.SetInt(int64(d.ReadI8()))
	case reflect.Int16:
		v.SetInt(int64(d.ReadI16()))
	case reflect.Int32:
		v.SetInt(int64(d.ReadI32()))
	case reflect.Int, reflect.Int64:
		v.SetInt(d.ReadI64())
	case reflect.Uint8:
		v.SetUint(uint64(d.ReadU8()))
	case reflect.Uint16:
		v.SetUint(uint64(d.ReadU16()))
	case reflect.Uint32:
		v.SetUint(uint64(d.ReadU32()))
	case reflect.Uint, reflect.Uint64:
		v.SetUint(d.ReadU64())
	case reflect.Float32:
		v.SetFloat(float64(d.ReadF32()))
	case reflect.Float64:
		v.SetFloat(d.ReadF64())
	case reflect.String:
		v.SetString(d.ReadString())
	case reflect.Slice:
		d.decodeSlice(v)
	case reflect.Array:
		elem := v.Type().Elem()
		if elem.Kind() == reflect.Uint8 && !hasHooks(elem) && v.CanAddr() {
			copy(v.Bytes(), d.ReadRaw(v.Len()))
			return
		}
		for ii := 0; ii < v.Len() && d.err == nil; ii++ {
			d.decodeValue(v.Index(ii), true)
		}
	case reflect.Pointer:
		offset := d.pos
		switch flag := d.ReadU8(); flag {
		case 0:
			v.SetZero()
		case 1:
			p := reflect.New(v.Type().Elem())
			d.decodeValue(p.Elem(), true)
			v.Set(p)
		default:
			d.fail(errors.Wrapf(ErrInvalidOption, "flag %d at offset %d", flag, offset))
		}
	case reflect.Struct:
		d.decodeStruct(v)
	default:
		d.fail(errors.Errorf("borsh: cannot decode values of type %s", v.Type()))
	}
}

func (d *Decoder) decodeSlice(v reflect.Value) {
	n := d.ReadLength()
	if d.err != nil {
		return
	}
	elem := v.Type().Elem()
	if elem.Kind() == reflect.Uint8 && !hasHooks(elem) {
		raw := d.ReadRaw(n)
		if d.err == nil {
			b := reflect.MakeSlice(v.Type(), n, n)
			copy(b.Bytes(), raw)
			v.Set(b)
		}
		return
	}
	// Every element but zero sized ones takes at least one byte: don't trust huge prefixes.
	if n > d.Remaining() && elem.Size() > 0 {
		d.fail(errors.Wrapf(ErrShortBuffer, "%d elements of %s announced, %d bytes left", n, elem, d.Remaining()))
		return
	}
	s := reflect.MakeSlice(v.Type(), n, n)
	for ii := 0; ii < n && d.err == nil; ii++ {
		d.decodeValue(s.Index(ii), true)
	}
	v.Set(s)
}

func (d *Decoder) decodeStruct(v reflect.Value) {
	t := v.Type()
	if isEnum(t) {
		offset := d.pos
		tag := int(d.ReadU8())
		if d.err != nil {
			return
		}
		if tag+1 >= t.NumField() {
			d.fail(errors.Wrapf(ErrInvalidEnumTag, "%s has %d variants, got tag %d at offset %d",
				t, t.NumField()-1, tag, offset))
			return
		}
		for ii := 1; ii < t.NumField(); ii++ {
			if t.Field(ii).IsExported() {
				v.Field(ii).SetZero()
			}
		}
		v.Field(0).SetUint(uint64(tag))
		d.decodeValue(v.Field(tag+1), true)
		return
	}
	for ii := 0; ii < t.NumField() && d.err == nil; ii++ {
		if skipField(t.Field(ii)) {
			continue
		}
		d.decodeValue(v.Field(ii), true)
	}
}

// staticSizer is implemented by runtime types whose packed size doesn't follow from their fields.
type staticSizer interface {
	borshStaticSize() (int, bool)
}

var staticSizerType = reflect.TypeFor[staticSizer]()

// StaticSizeOf returns the packed size of every value of type T, if that size is fixed. Types with a
// custom MarshalBorsh are assumed to keep their field layout.
func StaticSizeOf[T any]() (int, bool) {
	return staticSize(reflect.TypeFor[T]())
}

// StaticSize is like StaticSizeOf, for the type of v, or of what v points to.
func StaticSize(v any) (int, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return 0, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return staticSize(t)
}

func staticSize(t reflect.Type) (int, bool) {
	if t.Implements(staticSizerType) {
		return reflect.Zero(t).Interface().(staticSizer).borshStaticSize()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1, true
	case reflect.Int16, reflect.Uint16:
		return 2, true
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4, true
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Float64:
		return 8, true
	case reflect.Array:
		n, ok := staticSize(t.Elem())
		return n * t.Len(), ok
	case reflect.Struct:
		if isEnum(t) {
			// Fixed only if every variant packs to the same size.
			size := -1
			for ii := 1; ii < t.NumField(); ii++ {
				n, ok := staticSize(t.Field(ii).Type)
				if !ok || (size >= 0 && n != size) {
					return 0, false
				}
				size = n
			}
			return 1 + max(size, 0), true
		}
		total := 0
		for ii := 0; ii < t.NumField(); ii++ {
			if skipField(t.Field(ii)) {
				continue
			}
			n, ok := staticSize(t.Field(ii).Type)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	}
	return 0, false
}
