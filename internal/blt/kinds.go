package blt

import "github.com/aleksaelezovic/bltree/pkg/ltree"

// encodingKind is the one-byte run-kind tag of spec §6.
type encodingKind byte

const (
	kindTemplatedNode encodingKind = iota
	kindIDNode
	kindString
	kindInt8
	kindInt16
	kindInt32
	kindInt64
	kindUint8
	kindUint16
	kindUint32
	kindUint64
	kindFloat32
	kindFloat64
	kindChar
	kindBoolean
	kindVoid
	kindNull
	kindDecimal
	kindBigInteger
	kindVariablyTemplatedNode
)

func (k encodingKind) isLeaf() bool {
	switch k {
	case kindIDNode, kindString, kindInt8, kindInt16, kindInt32, kindInt64,
		kindUint8, kindUint16, kindUint32, kindUint64, kindFloat32, kindFloat64,
		kindChar, kindBoolean, kindVoid, kindNull, kindDecimal, kindBigInteger:
		return true
	default:
		return false
	}
}

// literalKindOf maps the wire encoding kinds that carry a registry-encoded
// literal body back to the ltree.LiteralKind the decoder should tag the
// reconstructed node with. TemplatedNode/IdNode aren't literal kinds;
// String and Null are handled specially by the encoder/decoder (symbol
// reference, zero bytes) rather than through the registry, so they are
// absent here even though they are LiteralKinds.
var literalKindOf = map[encodingKind]ltree.LiteralKind{
	kindInt8:       ltree.KindInt8,
	kindInt16:      ltree.KindInt16,
	kindInt32:      ltree.KindInt32,
	kindInt64:      ltree.KindInt64,
	kindUint8:      ltree.KindUint8,
	kindUint16:     ltree.KindUint16,
	kindUint32:     ltree.KindUint32,
	kindUint64:     ltree.KindUint64,
	kindFloat32:    ltree.KindFloat32,
	kindFloat64:    ltree.KindFloat64,
	kindChar:       ltree.KindChar,
	kindBoolean:    ltree.KindBoolean,
	kindDecimal:    ltree.KindDecimal,
	kindBigInteger: ltree.KindBigInteger,
}
