package block

import (
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

// mineYield is what one interaction with a node hands the player.
const mineYield = 8

// ResourceNode is an infinite deposit. Machines pull one unit at a
// time from any side; the player mines mineYield units per use.
type ResourceNode struct {
	Base
	yield item.Item
}

// NewResourceNode returns a node that yields clones of proto.
func NewResourceNode(id ident.ID, name, desc string, proto item.Item) *ResourceNode {
	return &ResourceNode{Base: newBase(id, name, desc), yield: proto}
}

func (b *ResourceNode) HasCapabilityPull(grid.Direction, grid.BlockMeta) bool { return true }
func (b *ResourceNode) CanPull(grid.Direction, grid.BlockMeta) bool           { return true }

// Pull hands out a single unit regardless of n. The deposit never
// runs dry.
func (b *ResourceNode) Pull(_ grid.Direction, _ grid.BlockMeta, n uint32) item.Item {
	if n == 0 {
		return nil
	}
	out := b.yield.Clone()
	out.SetMetadata(1)
	return out
}

func (b *ResourceNode) SupportsInteraction() bool { return true }
func (b *ResourceNode) InteractMessage() string   { return "Mine" }

// Interact mines a stack into the player inventory. Units that do not
// fit are lost; the inventory notifier reports what was gained.
func (b *ResourceNode) Interact(_ World, _ Scheduler, _ grid.BlockMeta, player *inventory.Inventory) {
	if player == nil {
		return
	}
	stack := b.yield.Clone()
	stack.SetMetadata(mineYield)
	player.TryAddItem(stack)
}

func (b *ResourceNode) Clone() Block {
	cp := *b
	return &cp
}
