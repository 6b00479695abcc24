package blt

import (
	"math/big"
	"reflect"
)

// LiteralEncoder writes one runtime-typed literal value's raw body
// (spec §4.1/§4.6). Kind identifies the wire encoding kind tag the value
// classifies to.
type LiteralEncoder interface {
	Kind() byte
	Encode(w *primitiveWriter, value any) error
}

// LiteralDecoder reads one literal body for the encoding kind it is
// registered under and returns the decoded runtime value.
type LiteralDecoder interface {
	Decode(r *primitiveReader) (any, error)
}

// LiteralRegistry is the pluggable per-runtime-type encoder/decoder map
// referenced by spec §4.6 and §6: an unregistered runtime type surfaces
// UnsupportedLiteral during node classification, before any bytes are
// emitted.
type LiteralRegistry struct {
	encoders map[reflect.Type]LiteralEncoder
	decoders map[encodingKind]LiteralDecoder
}

// NewLiteralRegistry returns an empty registry; use DefaultRegistry for
// one pre-populated with every built-in kind.
func NewLiteralRegistry() *LiteralRegistry {
	return &LiteralRegistry{
		encoders: make(map[reflect.Type]LiteralEncoder),
		decoders: make(map[encodingKind]LiteralDecoder),
	}
}

// Register adds enc for values of Go type t, and dec for the wire kind
// enc.Kind() identifies. Passing a custom type alongside a custom
// encodingKind lets a caller extend the format with application-specific
// literal kinds beyond §6's default table.
func (r *LiteralRegistry) Register(t reflect.Type, enc LiteralEncoder, dec LiteralDecoder) {
	r.encoders[t] = enc
	r.decoders[encodingKind(enc.Kind())] = dec
}

func (r *LiteralRegistry) encoderFor(value any) (LiteralEncoder, bool) {
	enc, ok := r.encoders[reflect.TypeOf(value)]
	return enc, ok
}

func (r *LiteralRegistry) decoderFor(kind encodingKind) (LiteralDecoder, bool) {
	dec, ok := r.decoders[kind]
	return dec, ok
}

// Char is a single UCS-2/UTF-16 code unit (spec §4.1: chars are 2 bytes
// on disk, distinct from a full UTF-8 rune).
type Char uint16

// Decimal is a 128-bit fixed-point decimal laid out as four little-endian
// 32-bit lanes: low, mid, high mantissa words, then flags (spec §4.1).
type Decimal struct {
	Lo, Mid, Hi, Flags uint32
}

// funcCodec adapts a pair of plain functions to LiteralEncoder/LiteralDecoder,
// so DefaultRegistry can register each built-in kind as one literal.
type funcCodec struct {
	kind   byte
	encode func(*primitiveWriter, any) error
	decode func(*primitiveReader) (any, error)
}

func (f funcCodec) Kind() byte                            { return f.kind }
func (f funcCodec) Encode(w *primitiveWriter, v any) error { return f.encode(w, v) }
func (f funcCodec) Decode(r *primitiveReader) (any, error) { return f.decode(r) }

func register[T any](
	r *LiteralRegistry,
	kind encodingKind,
	encode func(*primitiveWriter, T) error,
	decode func(*primitiveReader) (T, error),
) {
	codec := funcCodec{
		kind: byte(kind),
		encode: func(w *primitiveWriter, v any) error {
			return encode(w, v.(T))
		},
		decode: func(r *primitiveReader) (any, error) {
			return decode(r)
		},
	}
	r.Register(reflect.TypeOf(*new(T)), codec, codec)
}

// DefaultRegistry registers every literal kind in spec §6's tag table:
// strings, the eight fixed-width integer widths, both float widths,
// booleans, UCS-2 chars, 128-bit decimals, and arbitrary-precision
// integers.
func DefaultRegistry() *LiteralRegistry {
	r := NewLiteralRegistry()

	register(r, kindString,
		func(w *primitiveWriter, v string) error { return w.writeString(v) },
		func(r *primitiveReader) (string, error) { return r.readString() })

	register(r, kindInt8,
		func(w *primitiveWriter, v int8) error { return w.writeFixed(1, uint64(uint8(v))) },
		func(r *primitiveReader) (int8, error) { v, err := r.readFixed(1); return int8(v), err })

	register(r, kindInt16,
		func(w *primitiveWriter, v int16) error { return w.writeFixed(2, uint64(uint16(v))) },
		func(r *primitiveReader) (int16, error) { v, err := r.readFixed(2); return int16(v), err })

	register(r, kindInt32,
		func(w *primitiveWriter, v int32) error { return w.writeFixed(4, uint64(uint32(v))) },
		func(r *primitiveReader) (int32, error) { v, err := r.readFixed(4); return int32(v), err })

	register(r, kindInt64,
		func(w *primitiveWriter, v int64) error { return w.writeFixed(8, uint64(v)) },
		func(r *primitiveReader) (int64, error) { v, err := r.readFixed(8); return int64(v), err })

	register(r, kindUint8,
		func(w *primitiveWriter, v uint8) error { return w.writeFixed(1, uint64(v)) },
		func(r *primitiveReader) (uint8, error) { v, err := r.readFixed(1); return uint8(v), err })

	register(r, kindUint16,
		func(w *primitiveWriter, v uint16) error { return w.writeFixed(2, uint64(v)) },
		func(r *primitiveReader) (uint16, error) { v, err := r.readFixed(2); return uint16(v), err })

	register(r, kindUint32,
		func(w *primitiveWriter, v uint32) error { return w.writeFixed(4, uint64(v)) },
		func(r *primitiveReader) (uint32, error) { v, err := r.readFixed(4); return uint32(v), err })

	register(r, kindUint64,
		func(w *primitiveWriter, v uint64) error { return w.writeFixed(8, v) },
		func(r *primitiveReader) (uint64, error) { return r.readFixed(8) })

	register(r, kindFloat32,
		func(w *primitiveWriter, v float32) error { return w.writeFloat32(v) },
		func(r *primitiveReader) (float32, error) { return r.readFloat32() })

	register(r, kindFloat64,
		func(w *primitiveWriter, v float64) error { return w.writeFloat64(v) },
		func(r *primitiveReader) (float64, error) { return r.readFloat64() })

	register(r, kindBoolean,
		func(w *primitiveWriter, v bool) error { return w.writeBool(v) },
		func(r *primitiveReader) (bool, error) { return r.readBool() })

	register(r, kindChar,
		func(w *primitiveWriter, v Char) error { return w.writeChar(uint16(v)) },
		func(r *primitiveReader) (Char, error) { v, err := r.readChar(); return Char(v), err })

	register(r, kindDecimal,
		func(w *primitiveWriter, v Decimal) error {
			return w.writeDecimal([4]uint32{v.Lo, v.Mid, v.Hi, v.Flags})
		},
		func(r *primitiveReader) (Decimal, error) {
			lanes, err := r.readDecimal()
			if err != nil {
				return Decimal{}, err
			}
			return Decimal{Lo: lanes[0], Mid: lanes[1], Hi: lanes[2], Flags: lanes[3]}, nil
		})

	register(r, kindBigInteger,
		func(w *primitiveWriter, v *big.Int) error { return w.writeBigInt(v) },
		func(r *primitiveReader) (*big.Int, error) { return r.readBigInt() })

	return r
}
