package blt

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/aleksaelezovic/bltree/pkg/ltree"
)

func TestEncodeDecodeEmptyForest(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Header is magic + version; this implementation resolves the §6/§8
	// version-gate formula (high16=major, low16=minor) over §8 concrete
	// scenario 1's literal bytes, which only round-trip under the
	// opposite packing (see DESIGN.md).
	want := []byte{'B', 'L', 'T', 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}

	nodes, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected empty forest, got %d nodes", len(nodes))
	}
}

func TestEncodeSingleIdentifierBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, []ltree.Node{ltree.NewIdentifier("foo")}, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	body := buf.Bytes()[7:] // skip magic(3) + version(4)
	want := []byte{
		0x01, 0x03, 'f', 'o', 'o', // symtab: 1 symbol, len 3, "foo"
		0x00,                   // tmpltab: 0 entries
		0x01, 0x01, 0x01, 0x00, // node table: 1 run, count 1, kind IdNode(1), symref 0
		0x01, 0x00, // top-level: 1 entry, index 0
	}
	if !bytes.Equal(body, want) {
		t.Errorf("got % x, want % x", body, want)
	}
}

func TestEncodeInt32LiteralBytes(t *testing.T) {
	var buf bytes.Buffer
	lit := ltree.NewLiteral(ltree.KindInt32, int32(42))
	if err := Encode(&buf, []ltree.Node{lit}, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	body := buf.Bytes()[7:]
	want := []byte{
		0x00, // symtab empty
		0x00, // tmpltab empty
		0x01, 0x01, 0x05, 0x2A, 0x00, 0x00, 0x00, // 1 run, count 1, kind Int32(5), body LE 42
		0x01, 0x00, // top-level
	}
	if !bytes.Equal(body, want) {
		t.Errorf("got % x, want % x", body, want)
	}

	nodes, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 1 || !ltree.Equal(nodes[0], lit) {
		t.Errorf("round trip mismatch: got %v", nodes)
	}
}

func TestEncodeDecodeCall(t *testing.T) {
	call := ltree.NewCall(ltree.NewIdentifier("foo"),
		ltree.NewLiteral(ltree.KindInt32, int32(1)),
		ltree.NewLiteral(ltree.KindInt32, int32(2)))

	var buf bytes.Buffer
	if err := Encode(&buf, []ltree.Node{call}, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	nodes, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(nodes))
	}
	if !ltree.Equal(nodes[0], call) {
		t.Errorf("round trip mismatch: got %s, want %s", nodes[0], call)
	}
	if nodes[0].String() != "foo(1, 2)" {
		t.Errorf("unexpected String(): %s", nodes[0].String())
	}
}

func TestEncodeDecodeSharedSubtree(t *testing.T) {
	x := ltree.NewCall(ltree.NewIdentifier("baz"))
	forest := []ltree.Node{
		ltree.NewCall(ltree.NewIdentifier("bar"), x, x),
		ltree.NewCall(ltree.NewIdentifier("bar"), x, x),
	}

	var buf bytes.Buffer
	if err := Encode(&buf, forest, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	nodes, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(nodes))
	}
	if !ltree.Equal(nodes[0], nodes[1]) {
		t.Errorf("expected both top-level entries to be equal, got %s vs %s", nodes[0], nodes[1])
	}
}

func TestEncodeDecodeAttributes(t *testing.T) {
	node := ltree.NewIdentifier("foo").WithAttrs([]ltree.Node{ltree.NewIdentifier("a")})

	var buf bytes.Buffer
	if err := Encode(&buf, []ltree.Node{node}, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	nodes, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 1 || !ltree.Equal(nodes[0], node) {
		t.Errorf("round trip mismatch: got %v", nodes)
	}
	if nodes[0].String() != "@(a) foo" {
		t.Errorf("unexpected String(): %s", nodes[0].String())
	}
}

func TestEncodeDecodeAllBuiltinLiteralKinds(t *testing.T) {
	forest := []ltree.Node{
		ltree.NewLiteral(ltree.KindString, "hi"),
		ltree.NewLiteral(ltree.KindInt8, int8(-5)),
		ltree.NewLiteral(ltree.KindInt16, int16(-500)),
		ltree.NewLiteral(ltree.KindInt32, int32(-70000)),
		ltree.NewLiteral(ltree.KindInt64, int64(-5000000000)),
		ltree.NewLiteral(ltree.KindUint8, uint8(200)),
		ltree.NewLiteral(ltree.KindUint16, uint16(60000)),
		ltree.NewLiteral(ltree.KindUint32, uint32(4000000000)),
		ltree.NewLiteral(ltree.KindUint64, uint64(18000000000000000000)),
		ltree.NewLiteral(ltree.KindFloat32, float32(3.5)),
		ltree.NewLiteral(ltree.KindFloat64, 2.71828),
		ltree.NewLiteral(ltree.KindChar, Char('z')),
		ltree.NewLiteral(ltree.KindBoolean, true),
		ltree.NewNullLiteral(),
		ltree.NewLiteral(ltree.KindVoid, nil),
		ltree.NewLiteral(ltree.KindDecimal, Decimal{Lo: 1, Mid: 2, Hi: 3, Flags: 0x80000000}),
		ltree.NewLiteral(ltree.KindBigInteger, new(big.Int).Lsh(big.NewInt(1), 200)),
	}

	var buf bytes.Buffer
	if err := Encode(&buf, forest, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(forest) {
		t.Fatalf("expected %d top-level nodes, got %d", len(forest), len(got))
	}
	for i := range forest {
		if !ltree.Equal(got[i], forest[i]) {
			t.Errorf("node %d mismatch: got %s, want %s", i, got[i], forest[i])
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := []byte{'B', 'I', 'N', 0, 0, 0, 0}
	_, err := Decode(bytes.NewReader(data), "", nil)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
	if kind, ok := KindOf(err); !ok || kind != BadMagic {
		t.Errorf("expected BadMagic, got %v", err)
	}
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{'B', 'L', 'T'})
	pw := newPrimitiveWriter(&buf)
	// (MAX_MAJOR+1)<<16, using this implementation's formatMajor as the
	// supported maximum.
	if err := pw.writeInt32LE(encodeVersion(uint16(formatMajor+1), 0)); err != nil {
		t.Fatal(err)
	}
	pw.Flush()

	_, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if kind, ok := KindOf(err); !ok || kind != UnsupportedVersion {
		t.Errorf("expected UnsupportedVersion, got %v", err)
	}
}

func TestDecodeRejectsTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, []ltree.Node{ltree.NewIdentifier("foo")}, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-2]
	_, err := Decode(bytes.NewReader(truncated), "", nil)
	if err == nil {
		t.Fatal("expected error decoding a truncated stream")
	}
}

// TestDecodeVariablyTemplatedNodeRun hand-crafts a node-table run the
// writer never produces (it always starts a new run on a template
// change) to confirm the decoder still accepts a single run mixing two
// distinct CallIdTemplate entries, as spec §9 requires of foreign files.
func TestDecodeVariablyTemplatedNodeRun(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	pw := newPrimitiveWriter(&buf)
	if err := pw.writeInt32LE(encodeVersion(formatMajor, formatMinor)); err != nil {
		t.Fatal(err)
	}

	// symtab: ["foo", "bar"]
	if err := pw.writeUvarint(2); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeString("foo"); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeString("bar"); err != nil {
		t.Fatal(err)
	}

	// tmpltab: CallIdTemplate(target=0, arity=0), CallIdTemplate(target=1, arity=0)
	if err := pw.writeUvarint(2); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeByte(byte(tagCallIDTemplate)); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(0); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(0); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeByte(byte(tagCallIDTemplate)); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(1); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(0); err != nil {
		t.Fatal(err)
	}

	// node table: 1 run, count 2, kind VariablyTemplatedNode, each node
	// carries its own template index (no slots, arity 0).
	if err := pw.writeUvarint(1); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(2); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeByte(byte(kindVariablyTemplatedNode)); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(0); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(1); err != nil {
		t.Fatal(err)
	}

	// top-level: [0, 1]
	if err := pw.writeUvarint(2); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(0); err != nil {
		t.Fatal(err)
	}
	if err := pw.writeUvarint(1); err != nil {
		t.Fatal(err)
	}
	pw.Flush()

	nodes, err := Decode(bytes.NewReader(buf.Bytes()), "", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(nodes))
	}
	if nodes[0].String() != "foo()" || nodes[1].String() != "bar()" {
		t.Errorf("unexpected nodes: %s, %s", nodes[0], nodes[1])
	}
}

func TestEncodeUnsupportedLiteralType(t *testing.T) {
	type customType struct{ v int }
	lit := &ltree.Literal{Kind: ltree.LiteralKind(99), Value: customType{v: 1}}

	var buf bytes.Buffer
	err := Encode(&buf, []ltree.Node{lit}, nil)
	if err == nil {
		t.Fatal("expected error for unregistered literal type")
	}
	if kind, ok := KindOf(err); !ok || kind != UnsupportedLiteral {
		t.Errorf("expected UnsupportedLiteral, got %v", err)
	}
}
