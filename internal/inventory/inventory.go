// Package inventory implements the fixed-size slotted storage used by
// machine buffers, containers and the player. Slots hold nullable
// items; stackable items merge up to MaxItemsPerSlot, durability items
// never merge.
package inventory

import (
	"fmt"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/item"
)

const (
	// MaxItemsPerSlot caps a single stack.
	MaxItemsPerSlot = 255

	// PlayerSlots is the 5x9 player grid.
	PlayerSlots = 45
)

// Notifier observes item count changes in a player inventory. delta is
// positive for gains and negative for losses, counted in units for
// stackable items and per item otherwise.
type Notifier func(it item.Item, delta int)

// Inventory is an ordered set of item slots. It is owned by exactly
// one block or player and is not safe for concurrent use.
type Inventory struct {
	slots  []item.Item
	notify Notifier
}

// New returns an inventory with size empty slots. notify may be nil;
// machine inventories pass nil.
func New(size int, notify Notifier) *Inventory {
	if size < 0 {
		size = 0
	}
	return &Inventory{slots: make([]item.Item, size), notify: notify}
}

// SetNotifier replaces the change observer.
func (inv *Inventory) SetNotifier(notify Notifier) {
	inv.notify = notify
}

// Size returns the slot count.
func (inv *Inventory) Size() int {
	return len(inv.slots)
}

// Resize changes the slot count. Growing appends empty slots;
// shrinking drops the tail slots along with anything in them.
func (inv *Inventory) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(inv.slots) {
		inv.slots = inv.slots[:n]
		return
	}
	grown := make([]item.Item, n)
	copy(grown, inv.slots)
	inv.slots = grown
}

// Item returns the item in slot, nil when empty or out of range.
func (inv *Inventory) Item(slot int) item.Item {
	if slot < 0 || slot >= len(inv.slots) {
		return nil
	}
	return inv.slots[slot]
}

// TakeItem empties slot and returns what it held.
func (inv *Inventory) TakeItem(slot int) item.Item {
	if slot < 0 || slot >= len(inv.slots) {
		return nil
	}
	it := inv.slots[slot]
	inv.slots[slot] = nil
	if it != nil {
		inv.notifyDelta(it, -units(it))
	}
	return it
}

// SetItem writes slot directly, bypassing stacking and notifications.
// Decode and block internals use it; gameplay paths go through
// AddItem/TryAddItem.
func (inv *Inventory) SetItem(slot int, it item.Item) {
	if slot < 0 || slot >= len(inv.slots) {
		return
	}
	inv.slots[slot] = it
}

// AddItem places it into one specific slot. Stackable items of the
// same kind merge up to MaxItemsPerSlot and the un-merged remainder
// comes back; anything else already in the slot is swapped out and
// returned.
func (inv *Inventory) AddItem(it item.Item, slot int) item.Item {
	if it == nil || slot < 0 || slot >= len(inv.slots) {
		return it
	}
	cur := inv.slots[slot]
	if cur == nil {
		inv.slots[slot] = it
		inv.notifyDelta(it, units(it))
		return nil
	}
	if cur.ID() == it.ID() && cur.MetadataIsStackSize() && it.MetadataIsStackSize() {
		total := uint64(cur.Metadata()) + uint64(it.Metadata())
		if total <= MaxItemsPerSlot {
			cur.SetMetadata(uint32(total))
			inv.notifyDelta(it, int(it.Metadata()))
			return nil
		}
		moved := int(MaxItemsPerSlot - cur.Metadata())
		cur.SetMetadata(MaxItemsPerSlot)
		it.SetMetadata(uint32(total - MaxItemsPerSlot))
		inv.notifyDelta(it, moved)
		return it
	}
	inv.slots[slot] = it
	inv.notifyDelta(cur, -units(cur))
	inv.notifyDelta(it, units(it))
	return cur
}

// TryAddItem places it wherever it fits: existing stacks of the same
// kind first, then the first empty slot. The return is whatever could
// not be placed, nil when everything fit.
func (inv *Inventory) TryAddItem(it item.Item) item.Item {
	if it == nil {
		return nil
	}
	added := 0
	if it.MetadataIsStackSize() {
		for _, cur := range inv.slots {
			if cur == nil || cur.ID() != it.ID() || !cur.MetadataIsStackSize() {
				continue
			}
			if cur.Metadata() >= MaxItemsPerSlot {
				continue
			}
			total := uint64(cur.Metadata()) + uint64(it.Metadata())
			if total <= MaxItemsPerSlot {
				cur.SetMetadata(uint32(total))
				added += int(it.Metadata())
				inv.notifyDelta(it, added)
				return nil
			}
			added += int(MaxItemsPerSlot - cur.Metadata())
			cur.SetMetadata(MaxItemsPerSlot)
			it.SetMetadata(uint32(total - MaxItemsPerSlot))
		}
	}
	for i, cur := range inv.slots {
		if cur != nil {
			continue
		}
		inv.slots[i] = it
		added += units(it)
		inv.notifyDelta(it, added)
		return nil
	}
	inv.notifyDelta(it, added)
	return it
}

// TryPull removes up to n units from the first occupied slot. A stack
// larger than n is split; smaller stacks and durability items come out
// whole. Returns nil when the inventory is empty or n is 0.
func (inv *Inventory) TryPull(n uint32) item.Item {
	if n == 0 {
		return nil
	}
	for i, cur := range inv.slots {
		if cur == nil {
			continue
		}
		if cur.MetadataIsStackSize() && cur.Metadata() > n {
			out := cur.Clone()
			out.SetMetadata(n)
			cur.SetMetadata(cur.Metadata() - n)
			inv.notifyDelta(out, -int(n))
			return out
		}
		inv.slots[i] = nil
		inv.notifyDelta(cur, -units(cur))
		return cur
	}
	return nil
}

// Consume removes up to n units from slot and reports whether
// anything was removed. Durability items always come out whole.
func (inv *Inventory) Consume(slot int, n uint32) bool {
	if n == 0 || slot < 0 || slot >= len(inv.slots) {
		return false
	}
	cur := inv.slots[slot]
	if cur == nil {
		return false
	}
	if cur.MetadataIsStackSize() && cur.Metadata() > n {
		cur.SetMetadata(cur.Metadata() - n)
		inv.notifyDelta(cur, -int(n))
		return true
	}
	inv.slots[slot] = nil
	inv.notifyDelta(cur, -units(cur))
	return true
}

// CanPush reports whether TryAddItem would place at least one unit of
// it. Non-mutating.
func (inv *Inventory) CanPush(it item.Item) bool {
	if it == nil {
		return false
	}
	for _, cur := range inv.slots {
		if cur == nil {
			return true
		}
		if it.MetadataIsStackSize() && cur.MetadataIsStackSize() &&
			cur.ID() == it.ID() && cur.Metadata() < MaxItemsPerSlot {
			return true
		}
	}
	return false
}

// CanPull reports whether any slot holds an item. Non-mutating.
func (inv *Inventory) CanPull() bool {
	for _, cur := range inv.slots {
		if cur != nil {
			return true
		}
	}
	return false
}

// SwitchItems swaps the contents of two slots.
func (inv *Inventory) SwitchItems(a, b int) {
	if a < 0 || a >= len(inv.slots) || b < 0 || b >= len(inv.slots) {
		return
	}
	inv.slots[a], inv.slots[b] = inv.slots[b], inv.slots[a]
}

// DestroyItems drains every slot and returns the removed items.
func (inv *Inventory) DestroyItems() []item.Item {
	var out []item.Item
	for i, cur := range inv.slots {
		if cur == nil {
			continue
		}
		out = append(out, cur)
		inv.slots[i] = nil
		inv.notifyDelta(cur, -units(cur))
	}
	return out
}

// Clone deep-copies the inventory. The copy carries no notifier.
func (inv *Inventory) Clone() *Inventory {
	cp := New(len(inv.slots), nil)
	for i, it := range inv.slots {
		if it != nil {
			cp.slots[i] = it.Clone()
		}
	}
	return cp
}

func (inv *Inventory) notifyDelta(it item.Item, delta int) {
	if inv.notify != nil && delta != 0 {
		inv.notify(it, delta)
	}
}

func units(it item.Item) int {
	if it.MetadataIsStackSize() {
		return int(it.Metadata())
	}
	return 1
}

// Encode writes the inventory as a vector of nullable item slots.
func (inv *Inventory) Encode(w *codec.Writer) {
	w.WriteVecHeader(len(inv.slots))
	for _, it := range inv.slots {
		item.EncodeOptional(w, it)
	}
}

// Decode reads an inventory written by Encode. The result carries no
// notifier; callers attach one with SetNotifier where needed.
func Decode(r *codec.Reader, reg *item.Registry) (*Inventory, error) {
	n, err := r.ReadVecHeader()
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	inv := New(n, nil)
	for i := 0; i < n; i++ {
		it, err := item.DecodeOptional(r, reg)
		if err != nil {
			return nil, fmt.Errorf("inventory slot %d: %w", i, err)
		}
		inv.slots[i] = it
	}
	return inv, nil
}
