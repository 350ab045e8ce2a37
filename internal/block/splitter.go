package block

import (
	"time"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

const splitterPeriod = 200 * time.Millisecond

// Splitter takes items in from behind and deals them out across its
// left, front and right faces in turn.
type Splitter struct {
	Base
	inv       *inventory.Inventory
	timer     workTimer
	lastIdx   int
	choice    grid.Direction
	hasChoice bool
}

func NewSplitter(pool *ident.Pool) *Splitter {
	return &Splitter{
		Base: newBase(pool.ID(Namespace, "splitter"), "Splitter",
			"Distributes incoming items across its three outputs."),
		inv:   inventory.New(1, nil),
		timer: newWorkTimer(splitterPeriod),
	}
}

func (b *Splitter) HasCapabilityPush(side grid.Direction, meta grid.BlockMeta) bool {
	return side == meta.Direction.Opposite()
}

func (b *Splitter) CanPush(side grid.Direction, _ item.Item, meta grid.BlockMeta) bool {
	return b.HasCapabilityPush(side, meta) && b.inv.Item(0) == nil
}

func (b *Splitter) Push(side grid.Direction, it item.Item, meta grid.BlockMeta) item.Item {
	if !b.CanPush(side, it, meta) {
		return it
	}
	taken, rest := splitSingle(it)
	b.inv.SetItem(0, taken)
	b.timer.reset()
	return rest
}

func (b *Splitter) CanDoWork() bool       { return b.timer.ready() }
func (b *Splitter) WorkProgress() float64 { return b.timer.progress() }

func (b *Splitter) InventoryCapability() *inventory.Inventory { return b.inv }

func (b *Splitter) DestroyItems() []item.Item { return b.inv.DestroyItems() }

// Update schedules the output decision and the dispatch separately;
// the decision is free of the cooldown, the dispatch is not.
func (b *Splitter) Update(sched Scheduler, meta grid.BlockMeta) {
	sched.ScheduleUpdate(b.decide, meta)
	sched.ScheduleUpdate(b.dispatch, meta)
}

func (b *Splitter) outputs(meta grid.BlockMeta) [3]grid.Direction {
	return [3]grid.Direction{
		meta.Direction.Next(false),
		meta.Direction,
		meta.Direction.Next(true),
	}
}

// decide scans left, front, right starting one past the previous pick
// and caches the first output that accepts the buffered item.
func (b *Splitter) decide(w World, meta grid.BlockMeta) {
	it := b.inv.Item(0)
	if it == nil || b.hasChoice {
		return
	}
	sides := b.outputs(meta)
	for i := range sides {
		idx := (b.lastIdx + i) % len(sides)
		out := sides[idx]
		dst, dstMeta, ok := w.BlockAt(meta.Position.AddDirectional(out, 1))
		if !ok {
			continue
		}
		side := out.Opposite()
		if !dst.HasCapabilityPush(side, dstMeta) || !dst.CanPush(side, it, dstMeta) {
			continue
		}
		b.choice = out
		b.hasChoice = true
		b.lastIdx = (idx + 1) % len(sides)
		return
	}
}

func (b *Splitter) dispatch(w World, meta grid.BlockMeta) {
	if !b.timer.ready() || !b.hasChoice || b.inv.Item(0) == nil {
		return
	}
	dispatchToward(w, meta.Position, b.choice, b.inv)
	if b.inv.Item(0) == nil {
		b.hasChoice = false
	}
}

func (b *Splitter) Clone() Block {
	cp := *b
	cp.inv = b.inv.Clone()
	cp.timer.reset()
	cp.lastIdx = 0
	cp.hasChoice = false
	return &cp
}

func (b *Splitter) EncodeBody(w *codec.Writer) {
	item.EncodeOptional(w, b.inv.Item(0))
}

func (b *Splitter) DecodeBody(r *codec.Reader, items *item.Registry) error {
	it, err := item.DecodeOptional(r, items)
	if err != nil {
		return err
	}
	b.inv.SetItem(0, it)
	return nil
}
