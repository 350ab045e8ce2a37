package block

import (
	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

// containerSlots matches the player grid.
const containerSlots = 45

// StorageContainer is a 5x9 chest. Items flow in and out only across
// its facing axis, front or back.
type StorageContainer struct {
	Base
	inv *inventory.Inventory
}

func NewStorageContainer(pool *ident.Pool) *StorageContainer {
	return &StorageContainer{
		Base: newBase(pool.ID(Namespace, "storage_container"), "Storage Container",
			"Holds up to forty-five stacks of anything."),
		inv: inventory.New(containerSlots, nil),
	}
}

func onFacingAxis(side grid.Direction, meta grid.BlockMeta) bool {
	return side == meta.Direction || side.Add(grid.South) == meta.Direction
}

func (b *StorageContainer) HasCapabilityPush(side grid.Direction, meta grid.BlockMeta) bool {
	return onFacingAxis(side, meta)
}

func (b *StorageContainer) HasCapabilityPull(side grid.Direction, meta grid.BlockMeta) bool {
	return onFacingAxis(side, meta)
}

func (b *StorageContainer) CanPush(side grid.Direction, it item.Item, meta grid.BlockMeta) bool {
	return b.HasCapabilityPush(side, meta) && b.inv.CanPush(it)
}

func (b *StorageContainer) CanPull(side grid.Direction, meta grid.BlockMeta) bool {
	return b.HasCapabilityPull(side, meta) && b.inv.CanPull()
}

// Push absorbs as much of the stack as fits and returns the overflow.
func (b *StorageContainer) Push(side grid.Direction, it item.Item, meta grid.BlockMeta) item.Item {
	if !b.CanPush(side, it, meta) {
		return it
	}
	return b.inv.TryAddItem(it)
}

func (b *StorageContainer) Pull(side grid.Direction, meta grid.BlockMeta, n uint32) item.Item {
	if !b.CanPull(side, meta) {
		return nil
	}
	return b.inv.TryPull(n)
}

func (b *StorageContainer) InventoryCapability() *inventory.Inventory { return b.inv }

func (b *StorageContainer) DestroyItems() []item.Item { return b.inv.DestroyItems() }

func (b *StorageContainer) SupportsInteraction() bool { return true }
func (b *StorageContainer) InteractMessage() string   { return "Open" }

func (b *StorageContainer) Clone() Block {
	cp := *b
	cp.inv = b.inv.Clone()
	return &cp
}

func (b *StorageContainer) EncodeBody(w *codec.Writer) {
	b.inv.Encode(w)
}

func (b *StorageContainer) DecodeBody(r *codec.Reader, items *item.Registry) error {
	inv, err := inventory.Decode(r, items)
	if err != nil {
		return err
	}
	b.inv = inv
	return nil
}
