package block

import (
	"time"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

const extractorPeriod = 250 * time.Millisecond

// Extractor pulls one unit at a time out of the block behind it and
// sends it out the front.
type Extractor struct {
	Base
	inv   *inventory.Inventory
	timer workTimer
}

func NewExtractor(pool *ident.Pool) *Extractor {
	return &Extractor{
		Base: newBase(pool.ID(Namespace, "extractor"), "Extractor",
			"Pulls items out of the block behind it and sends them forward."),
		inv:   inventory.New(1, nil),
		timer: newWorkTimer(extractorPeriod),
	}
}

func (b *Extractor) CanDoWork() bool       { return b.timer.ready() }
func (b *Extractor) WorkProgress() float64 { return b.timer.progress() }

func (b *Extractor) InventoryCapability() *inventory.Inventory {
	if b.timer.ready() {
		return b.inv
	}
	return nil
}

func (b *Extractor) DestroyItems() []item.Item { return b.inv.DestroyItems() }

func (b *Extractor) Update(sched Scheduler, meta grid.BlockMeta) {
	sched.ScheduleUpdate(b.work, meta)
}

// work extracts into an empty slot first; a successful pull resets
// the timer, so the forward dispatch of that item waits for the next
// cooldown window.
func (b *Extractor) work(w World, meta grid.BlockMeta) {
	if b.timer.ready() && b.inv.Item(0) == nil {
		b.extract(w, meta)
	}
	if !b.timer.ready() {
		return
	}
	dispatchToward(w, meta.Position, meta.Direction, b.inv)
}

func (b *Extractor) extract(w World, meta grid.BlockMeta) {
	src, srcMeta, ok := w.BlockAt(meta.Position.AddDirectional(meta.Direction, -1))
	if !ok {
		return
	}
	side := meta.Direction.Opposite()
	if !src.HasCapabilityPull(side, srcMeta) || !src.CanPull(side, srcMeta) {
		return
	}
	if it := src.Pull(side, srcMeta, 1); it != nil {
		b.inv.SetItem(0, it)
		b.timer.reset()
	}
}

func (b *Extractor) Clone() Block {
	cp := *b
	cp.inv = b.inv.Clone()
	cp.timer.reset()
	return &cp
}

func (b *Extractor) EncodeBody(w *codec.Writer) {
	item.EncodeOptional(w, b.inv.Item(0))
}

func (b *Extractor) DecodeBody(r *codec.Reader, items *item.Registry) error {
	it, err := item.DecodeOptional(r, items)
	if err != nil {
		return err
	}
	b.inv.SetItem(0, it)
	return nil
}
