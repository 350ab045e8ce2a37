package codec

import (
	"encoding/binary"

	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
)

// Writer builds a save stream in memory. All multi-byte writes are
// little-endian; lengths are written as 8 bytes.
type Writer struct {
	buf  []byte
	pool *ident.Pool
}

func NewWriter(pool *ident.Pool) *Writer {
	return &Writer{buf: make([]byte, 0, 256), pool: pool}
}

// WriteU8 writes 1 byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool writes 1 byte, 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// WriteU32 writes 4 bytes little-endian.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteI32 writes 4 bytes little-endian (two's complement).
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// WriteU64 writes 8 bytes little-endian.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUsize writes a length as 8 bytes little-endian.
func (w *Writer) WriteUsize(n int) {
	w.WriteU64(uint64(n))
}

// WriteTrap writes the type tag that prefixes a composite value.
func (w *Writer) WriteTrap(t Trap) {
	w.buf = append(w.buf, byte(t))
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteString writes a tagged string: the String trap, then the text
// as a byte vector.
func (w *Writer) WriteString(s string) {
	w.WriteTrap(TrapString)
	w.WriteTrap(TrapVec)
	w.WriteUsize(len(s))
	w.buf = append(w.buf, s...)
}

// WriteID writes an identifier as its namespace and key strings.
func (w *Writer) WriteID(id ident.ID) {
	w.WriteString(w.pool.Resolve(id.Namespace))
	w.WriteString(w.pool.Resolve(id.Key))
}

// WriteVecHeader opens a tagged vector of n elements. The caller
// writes the elements themselves.
func (w *Writer) WriteVecHeader(n int) {
	w.WriteTrap(TrapVec)
	w.WriteUsize(n)
}

// WriteOptionHeader opens a tagged optional value. The caller writes
// the value itself when present is true.
func (w *Writer) WriteOptionHeader(present bool) {
	w.WriteTrap(TrapOption)
	w.WriteBool(present)
}

// WriteVec2i writes a position as a two-element vector of i32.
func (w *Writer) WriteVec2i(v grid.Vec2i) {
	w.WriteVecHeader(2)
	w.WriteI32(v.X)
	w.WriteI32(v.Y)
}

// Bytes returns the accumulated stream.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}
