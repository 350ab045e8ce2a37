// Package grid holds the spatial value types shared by every layer of
// the simulation: facings, block coordinates, and the position+facing
// pair handed to block operations.
package grid

// BlockMeta is the spatial identity of one placed block: where it sits
// and which way it faces. Blocks never store their own position; the
// grid is the single source of spatial truth.
type BlockMeta struct {
	Position  Vec2i
	Direction Direction
}
