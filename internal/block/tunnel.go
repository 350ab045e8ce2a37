package block

import (
	"fmt"
	"time"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

const (
	tunnelPeriod = 500 * time.Millisecond
	tunnelRange  = 7
)

// LinkState is the role a tunnel end plays, if any.
type LinkState uint8

const (
	LinkPushing LinkState = iota
	LinkReceiving
	LinkNone
)

// Tunnel moves items underground between two paired ends on the same
// axis, at most tunnelRange tiles apart. Items enter the Pushing end
// and come out of the Receiving end; interacting with either end
// reverses the flow.
type Tunnel struct {
	Base
	inv     *inventory.Inventory
	timer   workTimer
	entry   grid.Direction
	link    LinkState
	partner grid.Vec2i
}

func NewTunnel(pool *ident.Pool) *Tunnel {
	return &Tunnel{
		Base: newBase(pool.ID(Namespace, "tunnel"), "Tunnel",
			"Sends items underground to a paired tunnel up to seven tiles away."),
		inv:   inventory.New(1, nil),
		timer: newWorkTimer(tunnelPeriod),
		link:  LinkNone,
	}
}

// Link reports the current role and partner position.
func (b *Tunnel) Link() (LinkState, grid.Vec2i) {
	return b.link, b.partner
}

func (b *Tunnel) HasCapabilityPush(side grid.Direction, meta grid.BlockMeta) bool {
	return b.link == LinkPushing && side == meta.Direction.Opposite()
}

func (b *Tunnel) CanPush(side grid.Direction, _ item.Item, meta grid.BlockMeta) bool {
	return b.HasCapabilityPush(side, meta) && b.inv.Item(0) == nil
}

// Push takes the whole item; tunnels do not split stacks.
func (b *Tunnel) Push(side grid.Direction, it item.Item, meta grid.BlockMeta) item.Item {
	if !b.CanPush(side, it, meta) {
		return it
	}
	b.inv.SetItem(0, it)
	b.entry = side
	b.timer.reset()
	return nil
}

func (b *Tunnel) CanDoWork() bool       { return b.timer.ready() }
func (b *Tunnel) WorkProgress() float64 { return b.timer.progress() }

func (b *Tunnel) DestroyItems() []item.Item { return b.inv.DestroyItems() }

// OnBeforePlace pairs the new end with the nearest tunnel on its
// facing axis that has the same kind and facing and no link yet. The
// new end pushes, the found end receives.
func (b *Tunnel) OnBeforePlace(w World, _ Scheduler, meta grid.BlockMeta) {
	for d := int32(1); d <= tunnelRange; d++ {
		for _, pos := range [2]grid.Vec2i{
			meta.Position.AddDirectional(meta.Direction, d),
			meta.Position.AddDirectional(meta.Direction, -d),
		} {
			other, otherMeta, ok := w.BlockAt(pos)
			if !ok {
				continue
			}
			t, isTunnel := other.(*Tunnel)
			if !isTunnel || t.ID() != b.ID() || otherMeta.Direction != meta.Direction || t.link != LinkNone {
				continue
			}
			b.link, b.partner = LinkPushing, pos
			t.link, t.partner = LinkReceiving, meta.Position
			return
		}
	}
}

// OnAfterDismantle releases the surviving end of the pair.
func (b *Tunnel) OnAfterDismantle(w World, _ Scheduler, meta grid.BlockMeta) {
	if b.link == LinkNone {
		return
	}
	if other, _, ok := w.BlockAt(b.partner); ok {
		if t, isTunnel := other.(*Tunnel); isTunnel && t.partner == meta.Position {
			t.link = LinkNone
		}
	}
	b.link = LinkNone
}

func (b *Tunnel) SupportsInteraction() bool { return true }
func (b *Tunnel) InteractMessage() string   { return "Reverse" }

func (b *Tunnel) Interact(_ World, sched Scheduler, meta grid.BlockMeta, _ *inventory.Inventory) {
	sched.ScheduleUpdate(b.reverse, meta)
}

func (b *Tunnel) reverse(w World, meta grid.BlockMeta) {
	if b.link == LinkNone {
		return
	}
	other, _, ok := w.BlockAt(b.partner)
	if !ok {
		b.link = LinkNone
		return
	}
	t, isTunnel := other.(*Tunnel)
	if !isTunnel || t.partner != meta.Position {
		b.link = LinkNone
		return
	}
	b.link, t.link = t.link, b.link
}

func (b *Tunnel) Update(sched Scheduler, meta grid.BlockMeta) {
	sched.ScheduleUpdate(b.step, meta)
}

func (b *Tunnel) step(w World, meta grid.BlockMeta) {
	switch b.link {
	case LinkPushing:
		b.teleport(w, meta)
	case LinkReceiving:
		if b.timer.ready() {
			dispatchToward(w, meta.Position, meta.Direction, b.inv)
		}
	}
}

// teleport moves the buffered item into the partner's slot and starts
// the partner's cooldown. A missing or repaired-over partner drops
// the link instead.
func (b *Tunnel) teleport(w World, meta grid.BlockMeta) {
	if !b.timer.ready() || b.inv.Item(0) == nil {
		return
	}
	other, otherMeta, ok := w.BlockAt(b.partner)
	if !ok {
		b.link = LinkNone
		return
	}
	t, isTunnel := other.(*Tunnel)
	if !isTunnel || t.partner != meta.Position {
		b.link = LinkNone
		return
	}
	if t.inv.Item(0) != nil {
		return
	}
	t.inv.SetItem(0, b.inv.TakeItem(0))
	t.entry = otherMeta.Direction.Opposite()
	t.timer.reset()
}

func (b *Tunnel) Clone() Block {
	cp := *b
	cp.inv = b.inv.Clone()
	cp.timer.reset()
	return &cp
}

func (b *Tunnel) EncodeBody(w *codec.Writer) {
	b.inv.Encode(w)
	w.WriteU8(byte(b.entry))
	w.WriteU8(byte(b.link))
	if b.link != LinkNone {
		w.WriteVec2i(b.partner)
	}
}

func (b *Tunnel) DecodeBody(r *codec.Reader, items *item.Registry) error {
	inv, err := inventory.Decode(r, items)
	if err != nil {
		return err
	}
	b.inv = inv
	dir, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.entry = grid.DirectionFrom(dir)
	tag, err := r.ReadU8()
	if err != nil {
		return err
	}
	switch LinkState(tag) {
	case LinkPushing, LinkReceiving:
		b.link = LinkState(tag)
		pos, err := r.ReadVec2i()
		if err != nil {
			return err
		}
		b.partner = pos
	case LinkNone:
		b.link = LinkNone
	default:
		return fmt.Errorf("tunnel link tag %d: %w", tag, codec.ErrInvalidValue)
	}
	return nil
}
