package world

import (
	"fmt"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
)

// Encode writes the world header followed by every chunk, row by row
// from the minimum corner.
func (w *World) Encode(enc *codec.Writer) {
	enc.WriteTrap(codec.TrapWorld)
	enc.WriteI32(w.startX)
	enc.WriteI32(w.startY)
	enc.WriteU32(w.width)
	enc.WriteU32(w.height)
	w.eachChunk(func(c *Chunk) { c.encode(enc) })
}

func (c *Chunk) encode(enc *codec.Writer) {
	enc.WriteTrap(codec.TrapChunk)
	enc.WriteI32(c.X)
	enc.WriteI32(c.Y)
	enc.WriteUsize(len(c.cells))
	for i := range c.cells {
		enc.WriteU8(byte(c.cells[i].Direction))
		block.EncodeBlock(enc, c.cells[i].Block)
	}
}

// Decode reads a world written by Encode, rebuilding blocks through
// the registry. Chunks must arrive in encode order with coordinates
// matching the declared bounds.
func Decode(r *codec.Reader, reg *block.Registry) (*World, error) {
	if err := r.ExpectTrap(codec.TrapWorld); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	startX, err := r.ReadI32()
	if err != nil {
		return nil, fmt.Errorf("world origin: %w", err)
	}
	startY, err := r.ReadI32()
	if err != nil {
		return nil, fmt.Errorf("world origin: %w", err)
	}
	width, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("world size: %w", err)
	}
	height, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("world size: %w", err)
	}
	total := uint64(width) * uint64(height)
	if total == 0 {
		return nil, fmt.Errorf("world of %dx%d chunks: %w", width, height, codec.ErrInvalidValue)
	}
	if total > uint64(r.Remaining()) {
		return nil, fmt.Errorf("world of %d chunks in %d bytes: %w", total, r.Remaining(), codec.ErrUnexpectedEOF)
	}
	w := &World{
		startX: startX,
		startY: startY,
		width:  width,
		height: height,
		chunks: make(map[grid.Vec2i]*Chunk, total),
		empty:  reg.NewEmpty(),
	}
	for cy := int32(0); cy < int32(height); cy++ {
		for cx := int32(0); cx < int32(width); cx++ {
			c, err := decodeChunk(r, reg, startX+cx, startY+cy)
			if err != nil {
				return nil, err
			}
			w.chunks[grid.Vec2i{X: c.X, Y: c.Y}] = c
		}
	}
	return w, nil
}

func decodeChunk(r *codec.Reader, reg *block.Registry, wantX, wantY int32) (*Chunk, error) {
	if err := r.ExpectTrap(codec.TrapChunk); err != nil {
		return nil, fmt.Errorf("chunk %d,%d: %w", wantX, wantY, err)
	}
	x, err := r.ReadI32()
	if err != nil {
		return nil, fmt.Errorf("chunk %d,%d: %w", wantX, wantY, err)
	}
	y, err := r.ReadI32()
	if err != nil {
		return nil, fmt.Errorf("chunk %d,%d: %w", wantX, wantY, err)
	}
	if x != wantX || y != wantY {
		return nil, fmt.Errorf("chunk %d,%d where %d,%d belongs: %w", x, y, wantX, wantY, codec.ErrInvalidValue)
	}
	count, err := r.ReadUsize()
	if err != nil {
		return nil, fmt.Errorf("chunk %d,%d: %w", x, y, err)
	}
	if count != ChunkSize*ChunkSize {
		return nil, fmt.Errorf("chunk %d,%d with %d cells: %w", x, y, count, codec.ErrInvalidValue)
	}
	c := &Chunk{X: x, Y: y}
	for i := range c.cells {
		dir, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("chunk %d,%d cell %d: %w", x, y, i, err)
		}
		b, err := block.DecodeBlock(r, reg)
		if err != nil {
			return nil, fmt.Errorf("chunk %d,%d cell %d: %w", x, y, i, err)
		}
		c.cells[i] = Cell{Block: b, Direction: grid.DirectionFrom(dir)}
	}
	return c, nil
}
