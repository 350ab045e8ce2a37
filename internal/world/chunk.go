package world

import (
	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/grid"
)

// ChunkSize is the side length of a chunk in blocks.
const ChunkSize = 32

// Cell pairs a block with its facing.
type Cell struct {
	Block     block.Block
	Direction grid.Direction
}

// Chunk is a fixed square of cells addressed by block position modulo
// ChunkSize, with negative positions wrapped back into range.
type Chunk struct {
	X, Y  int32
	cells [ChunkSize * ChunkSize]Cell
}

func newChunk(x, y int32, empty block.Block) *Chunk {
	c := &Chunk{X: x, Y: y}
	for i := range c.cells {
		c.cells[i] = Cell{Block: empty.Clone(), Direction: grid.North}
	}
	return c
}

// chunkCoord is the floor division of a block coordinate by ChunkSize.
func chunkCoord(v int32) int32 {
	c := v / ChunkSize
	if v%ChunkSize < 0 {
		c--
	}
	return c
}

func localOffset(v int32) int32 {
	m := v % ChunkSize
	if m < 0 {
		m += ChunkSize
	}
	return m
}

func (c *Chunk) cell(pos grid.Vec2i) *Cell {
	return &c.cells[localOffset(pos.Y)*ChunkSize+localOffset(pos.X)]
}

// eachCell visits the cells in storage order with their absolute
// block positions.
func (c *Chunk) eachCell(fn func(pos grid.Vec2i, cell *Cell)) {
	baseX := c.X * ChunkSize
	baseY := c.Y * ChunkSize
	for i := range c.cells {
		pos := grid.Vec2i{X: baseX + int32(i%ChunkSize), Y: baseY + int32(i/ChunkSize)}
		fn(pos, &c.cells[i])
	}
}

func (c *Chunk) update(sched block.Scheduler) {
	c.eachCell(func(pos grid.Vec2i, cell *Cell) {
		if cell.Block.IsNone() {
			return
		}
		cell.Block.Update(sched, grid.BlockMeta{Position: pos, Direction: cell.Direction})
	})
}

func (c *Chunk) init() {
	c.eachCell(func(pos grid.Vec2i, cell *Cell) {
		cell.Block.Init(grid.BlockMeta{Position: pos, Direction: cell.Direction})
	})
}
