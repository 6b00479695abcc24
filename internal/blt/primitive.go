package blt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/big"
)

// primitiveWriter wraps an io.Writer with the primitive encodings spec'd in
// §4.1: ULEB128 varints, little-endian fixed-width integers and floats,
// length-prefixed byte arrays, and arbitrary-precision integers.
type primitiveWriter struct {
	w     *bufio.Writer
	flush func() error
}

func newPrimitiveWriter(w io.Writer) *primitiveWriter {
	if bw, ok := w.(*bufio.Writer); ok {
		return &primitiveWriter{w: bw, flush: bw.Flush}
	}
	bw := bufio.NewWriter(w)
	return &primitiveWriter{w: bw, flush: bw.Flush}
}

func (w *primitiveWriter) Flush() error { return w.flush() }

func (w *primitiveWriter) writeByte(b byte) error { return w.w.WriteByte(b) }

func (w *primitiveWriter) writeBytes(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

// writeUvarint encodes v as an unsigned LEB128 varint.
func (w *primitiveWriter) writeUvarint(v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return w.writeBytes(buf[:n])
}

func (w *primitiveWriter) writeInt32LE(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return w.writeBytes(buf[:])
}

func (w *primitiveWriter) writeFixed(nbytes int, v uint64) error {
	buf := make([]byte, nbytes)
	for i := 0; i < nbytes; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return w.writeBytes(buf)
}

func (w *primitiveWriter) writeFloat32(v float32) error {
	return w.writeFixed(4, uint64(math.Float32bits(v)))
}

func (w *primitiveWriter) writeFloat64(v float64) error {
	return w.writeFixed(8, math.Float64bits(v))
}

func (w *primitiveWriter) writeBool(v bool) error {
	if v {
		return w.writeByte(1)
	}
	return w.writeByte(0)
}

// writeChar encodes a single UCS-2/UTF-16 code unit, little-endian.
func (w *primitiveWriter) writeChar(v uint16) error {
	return w.writeFixed(2, uint64(v))
}

// writeString writes a ULEB128 byte length followed by raw UTF-8 bytes.
func (w *primitiveWriter) writeString(s string) error {
	if err := w.writeUvarint(uint64(len(s))); err != nil {
		return err
	}
	return w.writeBytes([]byte(s))
}

// writeDecimal writes the four little-endian 32-bit lanes of a 128-bit
// fixed-point decimal: low, mid, high mantissa words, then flags.
func (w *primitiveWriter) writeDecimal(lanes [4]uint32) error {
	for _, lane := range lanes {
		if err := w.writeFixed(4, uint64(lane)); err != nil {
			return err
		}
	}
	return nil
}

// writeBigInt writes ULEB128(byteCount) followed by byteCount bytes of
// little-endian two's-complement signed representation.
func (w *primitiveWriter) writeBigInt(v *big.Int) error {
	b := bigIntBytes(v)
	if err := w.writeUvarint(uint64(len(b))); err != nil {
		return err
	}
	return w.writeBytes(b)
}

// bigIntBytes renders v as the minimal little-endian two's-complement byte
// sequence: the smallest n such that v fits in n signed bytes.
func bigIntBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}

	n := 1
	for !fitsSignedBytes(v, n) {
		n++
	}

	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	tc := new(big.Int).Mod(v, mod) // two's-complement bit pattern, as a non-negative value < mod

	be := tc.Bytes() // big-endian, shorter than n bytes if high bytes are zero
	padded := make([]byte, n)
	copy(padded[n-len(be):], be)

	out := make([]byte, n)
	for k := 0; k < n; k++ {
		out[k] = padded[n-1-k]
	}
	return out
}

func fitsSignedBytes(v *big.Int, n int) bool {
	bound := new(big.Int).Lsh(big.NewInt(1), uint(8*n-1))
	if v.Sign() >= 0 {
		max := new(big.Int).Sub(bound, big.NewInt(1))
		return v.Cmp(max) <= 0
	}
	neg := new(big.Int).Neg(bound)
	return v.Cmp(neg) >= 0
}

func bigIntFromBytes(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	negative := b[len(b)-1]&0x80 != 0
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	mag := new(big.Int).SetBytes(be)
	if !negative {
		return mag
	}
	bound := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
	return new(big.Int).Sub(mag, bound)
}

// primitiveReader mirrors primitiveWriter for decoding.
type primitiveReader struct {
	r interface {
		io.Reader
		io.ByteReader
	}
}

func newPrimitiveReader(r io.Reader) *primitiveReader {
	switch t := r.(type) {
	case *bytes.Buffer, *bytes.Reader, *bufio.Reader:
		return &primitiveReader{r: t.(interface {
			io.Reader
			io.ByteReader
		})}
	default:
		return &primitiveReader{r: bufio.NewReader(r)}
	}
}

func (r *primitiveReader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, wrapError(MalformedInput, "unexpected end of stream", err)
	}
	return b, nil
}

func (r *primitiveReader) readBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, wrapError(MalformedInput, "unexpected end of stream", err)
	}
	return buf, nil
}

func (r *primitiveReader) readUvarint() (uint64, error) {
	v, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, wrapError(MalformedInput, "malformed varint", err)
	}
	return v, nil
}

func (r *primitiveReader) readUvarintIndex() (int, error) {
	v, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (r *primitiveReader) readInt32LE() (int32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *primitiveReader) readFixed(nbytes int) (uint64, error) {
	b, err := r.readBytes(nbytes)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < nbytes; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v, nil
}

func (r *primitiveReader) readFloat32() (float32, error) {
	v, err := r.readFixed(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (r *primitiveReader) readFloat64() (float64, error) {
	v, err := r.readFixed(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *primitiveReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *primitiveReader) readChar() (uint16, error) {
	v, err := r.readFixed(2)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func (r *primitiveReader) readString() (string, error) {
	n, err := r.readUvarintIndex()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *primitiveReader) readDecimal() ([4]uint32, error) {
	var lanes [4]uint32
	for i := range lanes {
		v, err := r.readFixed(4)
		if err != nil {
			return lanes, err
		}
		lanes[i] = uint32(v)
	}
	return lanes, nil
}

func (r *primitiveReader) readBigInt() (*big.Int, error) {
	n, err := r.readUvarintIndex()
	if err != nil {
		return nil, err
	}
	b, err := r.readBytes(n)
	if err != nil {
		return nil, err
	}
	return bigIntFromBytes(b), nil
}
