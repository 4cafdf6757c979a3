package dtypes

// Aliases commonly found in hand-written IDLs.
const (
	Uint8  = U8
	Uint16 = U16
	Uint32 = U32
	Uint64 = U64
	Int8   = I8
	Int16  = I16
	Int32  = I32
	Int64  = I64
)
