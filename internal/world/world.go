// Package world stores the block grid as a fixed rectangle of chunks
// and drives block lifecycle hooks.
package world

import (
	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
)

// World is a rectangle of chunks centered around the origin. Every
// cell inside the bounds holds a block, empty cells included.
type World struct {
	startX, startY int32
	width, height  uint32

	chunks map[grid.Vec2i]*Chunk
	empty  block.Block
}

// New creates a world of width by height chunks with the bounds
// centered on the origin, every cell filled with an empty block.
func New(pool *ident.Pool, width, height uint32) *World {
	w := &World{
		startX: -(int32(width) / 2),
		startY: -(int32(height) / 2),
		width:  width,
		height: height,
		chunks: make(map[grid.Vec2i]*Chunk, width*height),
		empty:  block.NewEmptyBlock(pool),
	}
	for cy := int32(0); cy < int32(height); cy++ {
		for cx := int32(0); cx < int32(width); cx++ {
			c := newChunk(w.startX+cx, w.startY+cy, w.empty)
			w.chunks[grid.Vec2i{X: c.X, Y: c.Y}] = c
		}
	}
	return w
}

// Bounds reports the chunk-space origin and size.
func (w *World) Bounds() (startX, startY int32, width, height uint32) {
	return w.startX, w.startY, w.width, w.height
}

// BlockBounds reports the minimum block position and the world extent
// in blocks.
func (w *World) BlockBounds() (min grid.Vec2i, width, height uint32) {
	min = grid.Vec2i{X: w.startX * ChunkSize, Y: w.startY * ChunkSize}
	return min, w.width * ChunkSize, w.height * ChunkSize
}

func (w *World) chunkFor(pos grid.Vec2i) (*Chunk, bool) {
	key := grid.Vec2i{X: chunkCoord(pos.X), Y: chunkCoord(pos.Y)}
	c, ok := w.chunks[key]
	return c, ok
}

// BlockAt returns the block at pos along with its placement metadata.
// Positions outside the world bounds report ok false.
func (w *World) BlockAt(pos grid.Vec2i) (block.Block, grid.BlockMeta, bool) {
	c, ok := w.chunkFor(pos)
	if !ok {
		return nil, grid.BlockMeta{}, false
	}
	cell := c.cell(pos)
	return cell.Block, grid.BlockMeta{Position: pos, Direction: cell.Direction}, true
}

// SetBlockAt installs b at pos facing dir and runs its Init hook.
// It reports false when pos is outside the world bounds.
func (w *World) SetBlockAt(pos grid.Vec2i, b block.Block, dir grid.Direction) bool {
	c, ok := w.chunkFor(pos)
	if !ok {
		return false
	}
	cell := c.cell(pos)
	cell.Block = b
	cell.Direction = dir
	b.Init(grid.BlockMeta{Position: pos, Direction: dir})
	return true
}

// PlaceBlock installs b on an empty cell, running its placement hook
// first so the block can inspect its surroundings.
func (w *World) PlaceBlock(pos grid.Vec2i, b block.Block, dir grid.Direction, sched block.Scheduler) bool {
	cur, _, ok := w.BlockAt(pos)
	if !ok || !cur.IsNone() {
		return false
	}
	b.OnBeforePlace(w, sched, grid.BlockMeta{Position: pos, Direction: dir})
	return w.SetBlockAt(pos, b, dir)
}

// DismantleAt removes the block at pos, restoring an empty cell. The
// removed block's contents and its item form go to player when one is
// given; anything the inventory cannot hold is lost.
func (w *World) DismantleAt(pos grid.Vec2i, sched block.Scheduler, player *inventory.Inventory) bool {
	cur, meta, ok := w.BlockAt(pos)
	if !ok || cur.IsNone() {
		return false
	}
	refund := cur.DestroyItems()
	w.SetBlockAt(pos, w.empty.Clone(), grid.North)
	cur.OnAfterDismantle(w, sched, meta)
	if player != nil {
		for _, it := range refund {
			player.TryAddItem(it)
		}
		bi := block.NewBlockItem(cur)
		bi.SetMetadata(1)
		player.TryAddItem(bi)
	}
	return true
}

// Update schedules one pass of deferred work for every non-empty
// block, visiting chunks in a fixed order so runs are reproducible.
func (w *World) Update(sched block.Scheduler) {
	w.eachChunk(func(c *Chunk) { c.update(sched) })
}

// Init runs the lifecycle hook of every cell, used once after a world
// has been decoded.
func (w *World) Init() {
	w.eachChunk(func(c *Chunk) { c.init() })
}

// EachBlock visits every non-empty cell in deterministic order.
func (w *World) EachBlock(fn func(pos grid.Vec2i, b block.Block, dir grid.Direction)) {
	w.eachChunk(func(c *Chunk) {
		c.eachCell(func(pos grid.Vec2i, cell *Cell) {
			if cell.Block.IsNone() {
				return
			}
			fn(pos, cell.Block, cell.Direction)
		})
	})
}

// eachChunk visits chunks row by row from the minimum corner, the
// same order the wire format uses.
func (w *World) eachChunk(fn func(c *Chunk)) {
	for cy := int32(0); cy < int32(w.height); cy++ {
		for cx := int32(0); cx < int32(w.width); cx++ {
			if c, ok := w.chunks[grid.Vec2i{X: w.startX + cx, Y: w.startY + cy}]; ok {
				fn(c)
			}
		}
	}
}

var _ block.World = (*World)(nil)

// PlaceFromInventory places the block form of the item in the given
// player slot, consuming one unit on success.
func (w *World) PlaceFromInventory(player *inventory.Inventory, slot int, pos grid.Vec2i, dir grid.Direction, sched block.Scheduler) bool {
	bi, ok := player.Item(slot).(*block.BlockItem)
	if !ok {
		return false
	}
	if !w.PlaceBlock(pos, bi.Block(), dir, sched) {
		return false
	}
	player.Consume(slot, 1)
	return true
}
