// Package block implements the production blocks of the grid and the
// push/pull protocol they negotiate transfers through. Blocks never
// know their own position; every operation receives a BlockMeta pair
// naming where the block sits and which way it faces.
//
// The side argument of every capability call is the face of the
// receiving block the item crosses, and capability formulas evaluate
// against the receiver's own meta. A mover facing D therefore passes
// D.Opposite() both when pushing to the block ahead of it and when
// pulling from the block behind it.
package block

import (
	"time"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

// Namespace is the identifier namespace of the built-in content.
const Namespace = "placeholder_name_2"

// World is the grid access blocks get inside scheduled updates.
type World interface {
	// BlockAt returns the block at pos with its meta; ok is false
	// outside the loaded bounds.
	BlockAt(pos grid.Vec2i) (Block, grid.BlockMeta, bool)
}

// UpdateFn is deferred block work. It runs with exclusive world
// access when the task queue is drained.
type UpdateFn func(w World, meta grid.BlockMeta)

// Scheduler queues deferred work; blocks only ever append to it.
type Scheduler interface {
	ScheduleUpdate(fn UpdateFn, meta grid.BlockMeta)
}

// Block is one cell's behavior. Implementations embed Base and
// override the parts they participate in.
type Block interface {
	ID() ident.ID
	Name() string
	Description() string

	// IsNone reports a placeholder cell with no behavior.
	IsNone() bool

	// Init prepares a freshly placed or decoded block at meta.
	Init(meta grid.BlockMeta)

	// Static orientation capabilities.
	HasCapabilityPush(side grid.Direction, meta grid.BlockMeta) bool
	HasCapabilityPull(side grid.Direction, meta grid.BlockMeta) bool

	// Capability plus current buffer state.
	CanPush(side grid.Direction, it item.Item, meta grid.BlockMeta) bool
	CanPull(side grid.Direction, meta grid.BlockMeta) bool

	// Push deposits it and returns what was not taken; a refused push
	// returns it unchanged. Pull removes up to n units, nil when
	// nothing comes out.
	Push(side grid.Direction, it item.Item, meta grid.BlockMeta) item.Item
	Pull(side grid.Direction, meta grid.BlockMeta, n uint32) item.Item

	// CanDoWork gates throughput; WorkProgress is the same window as
	// a 0..1 fraction for renderers.
	CanDoWork() bool
	WorkProgress() float64

	// InventoryCapability exposes the block's storage to outside
	// surfaces, nil when there is none to show right now.
	InventoryCapability() *inventory.Inventory

	// DestroyItems drains the block's storage for dismantle refunds.
	DestroyItems() []item.Item

	SupportsInteraction() bool
	InteractMessage() string
	Interact(w World, sched Scheduler, meta grid.BlockMeta, player *inventory.Inventory)

	// OnBeforePlace runs before the block enters the world,
	// OnAfterDismantle after it left it.
	OnBeforePlace(w World, sched Scheduler, meta grid.BlockMeta)
	OnAfterDismantle(w World, sched Scheduler, meta grid.BlockMeta)

	// Update schedules this tick's deferred work.
	Update(sched Scheduler, meta grid.BlockMeta)

	// Clone returns an independent copy with a fresh timer.
	Clone() Block

	EncodeBody(w *codec.Writer)
	DecodeBody(r *codec.Reader, items *item.Registry) error
}

// Base is the identity every kind shares plus inert defaults for the
// rest of the Block interface.
type Base struct {
	id   ident.ID
	name string
	desc string
}

func newBase(id ident.ID, name, desc string) Base {
	return Base{id: id, name: name, desc: desc}
}

func (b Base) ID() ident.ID        { return b.id }
func (b Base) Name() string        { return b.name }
func (b Base) Description() string { return b.desc }
func (b Base) IsNone() bool        { return false }

func (b Base) Init(grid.BlockMeta) {}

func (b Base) HasCapabilityPush(grid.Direction, grid.BlockMeta) bool { return false }
func (b Base) HasCapabilityPull(grid.Direction, grid.BlockMeta) bool { return false }

func (b Base) CanPush(grid.Direction, item.Item, grid.BlockMeta) bool { return false }
func (b Base) CanPull(grid.Direction, grid.BlockMeta) bool            { return false }

func (b Base) Push(_ grid.Direction, it item.Item, _ grid.BlockMeta) item.Item { return it }
func (b Base) Pull(grid.Direction, grid.BlockMeta, uint32) item.Item           { return nil }

func (b Base) CanDoWork() bool        { return true }
func (b Base) WorkProgress() float64  { return 1 }

func (b Base) InventoryCapability() *inventory.Inventory { return nil }
func (b Base) DestroyItems() []item.Item                 { return nil }

func (b Base) SupportsInteraction() bool { return false }
func (b Base) InteractMessage() string   { return "" }

func (b Base) Interact(World, Scheduler, grid.BlockMeta, *inventory.Inventory) {}

func (b Base) OnBeforePlace(World, Scheduler, grid.BlockMeta)    {}
func (b Base) OnAfterDismantle(World, Scheduler, grid.BlockMeta) {}

func (b Base) Update(Scheduler, grid.BlockMeta) {}

func (b Base) EncodeBody(*codec.Writer) {}

func (b Base) DecodeBody(*codec.Reader, *item.Registry) error { return nil }

// workTimer is the cooldown shared by the moving kinds. The reset
// happens when work arrives, not when it is dispatched.
type workTimer struct {
	period    time.Duration
	lastReset time.Time
}

func newWorkTimer(period time.Duration) workTimer {
	return workTimer{period: period, lastReset: time.Now()}
}

func (t *workTimer) ready() bool {
	return time.Since(t.lastReset) >= t.period
}

func (t *workTimer) progress() float64 {
	if t.period <= 0 {
		return 1
	}
	p := float64(time.Since(t.lastReset)) / float64(t.period)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (t *workTimer) reset() {
	t.lastReset = time.Now()
}

// splitSingle carves one unit off a stackable item: the returned unit
// carries metadata 1 and rest keeps what remains. Items that do not
// stack move whole, with a nil rest.
func splitSingle(it item.Item) (taken, rest item.Item) {
	if it.MetadataIsStackSize() && it.Metadata() > 1 {
		one := it.Clone()
		one.SetMetadata(1)
		it.SetMetadata(it.Metadata() - 1)
		return one, it
	}
	return it, nil
}

// dispatchToward moves the buffered item in slot 0 of inv into the
// block one tile out of pos along out. A refused push leaves the item
// where it was.
func dispatchToward(w World, pos grid.Vec2i, out grid.Direction, inv *inventory.Inventory) {
	it := inv.Item(0)
	if it == nil {
		return
	}
	dst, dstMeta, ok := w.BlockAt(pos.AddDirectional(out, 1))
	if !ok {
		return
	}
	side := out.Opposite()
	if !dst.HasCapabilityPush(side, dstMeta) || !dst.CanPush(side, it, dstMeta) {
		return
	}
	taken := inv.TakeItem(0)
	if left := dst.Push(side, taken, dstMeta); left != nil {
		inv.SetItem(0, left)
	}
}
