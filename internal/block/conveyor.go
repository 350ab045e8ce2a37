package block

import (
	"time"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

const conveyorPeriod = 1000 * time.Millisecond

// Conveyor carries one item at a time toward its facing. Items enter
// from any other side, one unit per transfer.
type Conveyor struct {
	Base
	inv   *inventory.Inventory
	timer workTimer
	entry grid.Direction // side the buffered item entered through, kept for renderers
}

func NewConveyor(pool *ident.Pool) *Conveyor {
	return &Conveyor{
		Base: newBase(pool.ID(Namespace, "conveyor_belt"), "Conveyor Belt",
			"Moves items along its facing, one unit at a time."),
		inv:   inventory.New(1, nil),
		timer: newWorkTimer(conveyorPeriod),
	}
}

func (b *Conveyor) HasCapabilityPush(side grid.Direction, meta grid.BlockMeta) bool {
	return side != meta.Direction
}

func (b *Conveyor) CanPush(side grid.Direction, _ item.Item, meta grid.BlockMeta) bool {
	return b.HasCapabilityPush(side, meta) && b.inv.Item(0) == nil
}

func (b *Conveyor) Push(side grid.Direction, it item.Item, meta grid.BlockMeta) item.Item {
	if !b.CanPush(side, it, meta) {
		return it
	}
	taken, rest := splitSingle(it)
	b.inv.SetItem(0, taken)
	b.entry = side
	b.timer.reset()
	return rest
}

func (b *Conveyor) CanDoWork() bool       { return b.timer.ready() }
func (b *Conveyor) WorkProgress() float64 { return b.timer.progress() }

// InventoryCapability hides the buffer while the item is in transit.
func (b *Conveyor) InventoryCapability() *inventory.Inventory {
	if b.timer.ready() {
		return b.inv
	}
	return nil
}

func (b *Conveyor) DestroyItems() []item.Item { return b.inv.DestroyItems() }

func (b *Conveyor) Update(sched Scheduler, meta grid.BlockMeta) {
	sched.ScheduleUpdate(b.step, meta)
}

func (b *Conveyor) step(w World, meta grid.BlockMeta) {
	if !b.timer.ready() {
		return
	}
	dispatchToward(w, meta.Position, meta.Direction, b.inv)
}

func (b *Conveyor) Clone() Block {
	cp := *b
	cp.inv = b.inv.Clone()
	cp.timer.reset()
	return &cp
}

func (b *Conveyor) EncodeBody(w *codec.Writer) {
	item.EncodeOptional(w, b.inv.Item(0))
	w.WriteU8(byte(b.entry))
}

func (b *Conveyor) DecodeBody(r *codec.Reader, items *item.Registry) error {
	it, err := item.DecodeOptional(r, items)
	if err != nil {
		return err
	}
	b.inv.SetItem(0, it)
	dir, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.entry = grid.DirectionFrom(dir)
	return nil
}
