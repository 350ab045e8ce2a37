package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
)

// Reader decodes a save stream produced by Writer. Every read checks
// that enough bytes remain; a short buffer yields ErrUnexpectedEOF
// instead of a partial value.
type Reader struct {
	data []byte
	off  int
	pool *ident.Pool
}

func NewReader(data []byte, pool *ident.Pool) *Reader {
	return &Reader{data: data, pool: pool}
}

// Pool returns the identifier pool decoded names are interned into.
func (r *Reader) Pool() *ident.Pool {
	return r.pool
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) need(n int) error {
	if len(r.data)-r.off < n {
		return ErrUnexpectedEOF
	}
	return nil
}

// ReadU8 reads 1 byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// ReadBool reads 1 byte that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bool byte %#02x: %w", b, ErrInvalidValue)
	}
}

// ReadU32 reads 4 bytes little-endian.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// ReadI32 reads 4 bytes little-endian (two's complement).
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads 8 bytes little-endian.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

// ReadUsize reads an 8-byte length and rejects values that cannot be
// an in-memory size.
func (r *Reader) ReadUsize() (int, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("length %d: %w", v, ErrInvalidValue)
	}
	return int(v), nil
}

// ReadBytes reads n raw bytes as a subslice of the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadTrap reads the next type tag.
func (r *Reader) ReadTrap() (Trap, error) {
	b, err := r.ReadU8()
	if err != nil {
		return TrapUnknown, err
	}
	return trapFrom(b), nil
}

// ExpectTrap reads the next type tag and fails unless it is want.
func (r *Reader) ExpectTrap(want Trap) error {
	got, err := r.ReadTrap()
	if err != nil {
		return err
	}
	if got != want {
		return &TrapError{Expected: want, Found: got}
	}
	return nil
}

// ReadString reads a tagged string and validates it as UTF-8.
func (r *Reader) ReadString() (string, error) {
	if err := r.ExpectTrap(TrapString); err != nil {
		return "", err
	}
	if err := r.ExpectTrap(TrapVec); err != nil {
		return "", err
	}
	n, err := r.ReadUsize()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadID reads two strings and interns them as an identifier.
func (r *Reader) ReadID() (ident.ID, error) {
	ns, err := r.ReadString()
	if err != nil {
		return ident.ID{}, fmt.Errorf("identifier namespace: %w", err)
	}
	key, err := r.ReadString()
	if err != nil {
		return ident.ID{}, fmt.Errorf("identifier key: %w", err)
	}
	return r.pool.ID(ns, key), nil
}

// ReadVecHeader opens a tagged vector and returns its element count.
// Every element occupies at least one byte, so a count beyond the
// remaining input is rejected before anything is allocated for it.
func (r *Reader) ReadVecHeader() (int, error) {
	if err := r.ExpectTrap(TrapVec); err != nil {
		return 0, err
	}
	n, err := r.ReadUsize()
	if err != nil {
		return 0, err
	}
	if n > r.Remaining() {
		return 0, fmt.Errorf("vector of %d elements in %d bytes: %w", n, r.Remaining(), ErrUnexpectedEOF)
	}
	return n, nil
}

// ReadOptionHeader opens a tagged optional value and reports whether a
// value follows.
func (r *Reader) ReadOptionHeader() (bool, error) {
	if err := r.ExpectTrap(TrapOption); err != nil {
		return false, err
	}
	return r.ReadBool()
}

// ReadVec2i reads a position written by WriteVec2i.
func (r *Reader) ReadVec2i() (grid.Vec2i, error) {
	n, err := r.ReadVecHeader()
	if err != nil {
		return grid.Vec2i{}, err
	}
	if n != 2 {
		return grid.Vec2i{}, fmt.Errorf("position with %d components: %w", n, ErrInvalidValue)
	}
	x, err := r.ReadI32()
	if err != nil {
		return grid.Vec2i{}, err
	}
	y, err := r.ReadI32()
	if err != nil {
		return grid.Vec2i{}, err
	}
	return grid.Vec2i{X: x, Y: y}, nil
}
