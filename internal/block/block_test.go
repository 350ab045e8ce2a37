package block

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

// stubWorld is a sparse grid for driving block behavior directly.
type stubWorld struct {
	blocks map[grid.Vec2i]Block
	dirs   map[grid.Vec2i]grid.Direction
}

func newStubWorld() *stubWorld {
	return &stubWorld{
		blocks: make(map[grid.Vec2i]Block),
		dirs:   make(map[grid.Vec2i]grid.Direction),
	}
}

func (sw *stubWorld) put(pos grid.Vec2i, b Block, dir grid.Direction) {
	sw.blocks[pos] = b
	sw.dirs[pos] = dir
	b.Init(grid.BlockMeta{Position: pos, Direction: dir})
}

func (sw *stubWorld) place(pos grid.Vec2i, b Block, dir grid.Direction) {
	b.OnBeforePlace(sw, nil, grid.BlockMeta{Position: pos, Direction: dir})
	sw.put(pos, b, dir)
}

func (sw *stubWorld) BlockAt(pos grid.Vec2i) (Block, grid.BlockMeta, bool) {
	b, ok := sw.blocks[pos]
	if !ok {
		return nil, grid.BlockMeta{}, false
	}
	return b, grid.BlockMeta{Position: pos, Direction: sw.dirs[pos]}, true
}

// stubSched collects scheduled updates and runs them in order.
type stubSched struct {
	tasks []scheduledUpdate
}

type scheduledUpdate struct {
	fn   UpdateFn
	meta grid.BlockMeta
}

func (s *stubSched) ScheduleUpdate(fn UpdateFn, meta grid.BlockMeta) {
	s.tasks = append(s.tasks, scheduledUpdate{fn, meta})
}

func (s *stubSched) run(w World) {
	tasks := s.tasks
	s.tasks = nil
	for _, t := range tasks {
		t.fn(w, t.meta)
	}
}

// tick runs one update pass for the block at pos.
func tick(sw *stubWorld, pos grid.Vec2i) {
	b, meta, ok := sw.BlockAt(pos)
	if !ok {
		return
	}
	var s stubSched
	b.Update(&s, meta)
	s.run(sw)
}

func elapse(t *workTimer, d time.Duration) {
	t.lastReset = time.Now().Add(-d)
}

func testCoal(pool *ident.Pool, n uint32) item.Item {
	it := item.NewResource(pool.ID(Namespace, "coal"), "Coal")
	it.SetMetadata(n)
	return it
}

func newTestRegistries(pool *ident.Pool) (*Registry, *item.Registry) {
	items := item.NewRegistry()
	items.Register(item.NewResource(pool.ID(Namespace, "coal"), "Coal"))
	blocks := NewRegistry(pool, items)
	blocks.Register(NewConveyor(pool))
	blocks.Register(NewExtractor(pool))
	blocks.Register(NewSplitter(pool))
	blocks.Register(NewTunnel(pool))
	blocks.Register(NewStorageContainer(pool))
	blocks.Register(NewResourceNode(pool.ID(Namespace, "resource_node_brown"),
		"Resource Node", "A deposit that machines can mine indefinitely.",
		item.NewResource(pool.ID(Namespace, "coal"), "Coal")))
	return blocks, items
}

func TestRegistryAutoRegistersBlockItems(t *testing.T) {
	pool := ident.NewPool()
	blocks, items := newTestRegistries(pool)

	convID := pool.ID(Namespace, "conveyor_belt")
	it, ok := items.Lookup(convID)
	require.True(t, ok)
	bi, ok := it.(*BlockItem)
	require.True(t, ok)
	assert.Equal(t, convID, bi.ID())
	assert.Equal(t, "Conveyor Belt", bi.Name())
	assert.True(t, bi.MetadataIsStackSize())
	assert.Equal(t, uint32(0), bi.Metadata())

	placed := bi.Block()
	again := bi.Block()
	assert.NotSame(t, placed, again)
	assert.Equal(t, convID, placed.ID())

	assert.Equal(t, 6, blocks.Len())
	// coal plus one block item per registered kind
	assert.Equal(t, 7, items.Len())
}

func TestRegistryKeepsFirst(t *testing.T) {
	pool := ident.NewPool()
	items := item.NewRegistry()
	blocks := NewRegistry(pool, items)

	require.True(t, blocks.Register(NewConveyor(pool)))
	assert.False(t, blocks.Register(NewConveyor(pool)))
	assert.Equal(t, 1, blocks.Len())
}

func TestRegistryNewEmpty(t *testing.T) {
	pool := ident.NewPool()
	blocks := NewRegistry(pool, item.NewRegistry())

	a := blocks.NewEmpty()
	b := blocks.NewEmpty()
	assert.True(t, a.IsNone())
	assert.NotSame(t, a, b)
	_, registered := blocks.Lookup(a.ID())
	assert.False(t, registered)
}

func TestRefusedPushReturnsOriginal(t *testing.T) {
	pool := ident.NewPool()
	meta := grid.BlockMeta{Direction: grid.East}

	occupied := NewConveyor(pool)
	require.Nil(t, occupied.Push(grid.West, testCoal(pool, 1), meta))

	blocked := []Block{
		occupied,
		NewEmptyBlock(pool),
		NewExtractor(pool),
		NewTunnel(pool), // unlinked
		NewResourceNode(pool.ID(Namespace, "resource_node_brown"), "Resource Node", "", testCoal(pool, 1)),
	}
	for _, b := range blocked {
		it := testCoal(pool, 3)
		got := b.Push(grid.West, it, meta)
		assert.Same(t, it, got, "%s must return the refused item", b.Name())
		assert.Equal(t, uint32(3), got.Metadata())
	}

	container := NewStorageContainer(pool)
	it := testCoal(pool, 3)
	got := container.Push(grid.East, it, grid.BlockMeta{Direction: grid.North})
	assert.Same(t, it, got, "wrong side on a container")
}

func TestWorkTimerProgress(t *testing.T) {
	pool := ident.NewPool()
	conv := NewConveyor(pool)

	assert.False(t, conv.CanDoWork())
	elapse(&conv.timer, 500*time.Millisecond)
	assert.InDelta(t, 0.5, conv.WorkProgress(), 0.05)
	assert.False(t, conv.CanDoWork())

	elapse(&conv.timer, 3*time.Second)
	assert.Equal(t, 1.0, conv.WorkProgress())
	assert.True(t, conv.CanDoWork())
}

func TestEncodeDecodeEmptyBlock(t *testing.T) {
	pool := ident.NewPool()
	blocks, _ := newTestRegistries(pool)

	w := codec.NewWriter(pool)
	EncodeBlock(w, NewEmptyBlock(pool))
	assert.Equal(t, []byte{byte(codec.TrapBlock), 1}, w.Bytes())

	got, err := DecodeBlock(codec.NewReader(w.Bytes(), pool), blocks)
	require.NoError(t, err)
	assert.True(t, got.IsNone())
}

func TestEncodeDecodeConveyorWithItem(t *testing.T) {
	pool := ident.NewPool()
	blocks, _ := newTestRegistries(pool)

	conv := NewConveyor(pool)
	require.Nil(t, conv.Push(grid.South, testCoal(pool, 1), grid.BlockMeta{Direction: grid.East}))

	w := codec.NewWriter(pool)
	EncodeBlock(w, conv)

	got, err := DecodeBlock(codec.NewReader(w.Bytes(), pool), blocks)
	require.NoError(t, err)
	dec, ok := got.(*Conveyor)
	require.True(t, ok)
	require.NotNil(t, dec.inv.Item(0))
	assert.Equal(t, uint32(1), dec.inv.Item(0).Metadata())
	assert.Equal(t, grid.South, dec.entry)
}

func TestEncodeDecodeContainerContents(t *testing.T) {
	pool := ident.NewPool()
	blocks, _ := newTestRegistries(pool)

	c := NewStorageContainer(pool)
	c.inv.SetItem(7, testCoal(pool, 42))

	w := codec.NewWriter(pool)
	EncodeBlock(w, c)

	got, err := DecodeBlock(codec.NewReader(w.Bytes(), pool), blocks)
	require.NoError(t, err)
	dec := got.(*StorageContainer)
	require.NotNil(t, dec.inv.Item(7))
	assert.Equal(t, uint32(42), dec.inv.Item(7).Metadata())
	assert.Equal(t, containerSlots, dec.inv.Size())
}

func TestDecodeUnknownBlock(t *testing.T) {
	pool := ident.NewPool()
	blocks, _ := newTestRegistries(pool)

	w := codec.NewWriter(pool)
	w.WriteTrap(codec.TrapBlock)
	w.WriteBool(false)
	w.WriteID(pool.ID(Namespace, "quantum_duplicator"))

	_, err := DecodeBlock(codec.NewReader(w.Bytes(), pool), blocks)
	assert.ErrorIs(t, err, codec.ErrUnknownIdentifier)
}

func TestDecodeBadTunnelLinkTag(t *testing.T) {
	pool := ident.NewPool()
	blocks, _ := newTestRegistries(pool)

	w := codec.NewWriter(pool)
	w.WriteTrap(codec.TrapBlock)
	w.WriteBool(false)
	w.WriteID(pool.ID(Namespace, "tunnel"))
	inventory.New(1, nil).Encode(w)
	w.WriteU8(byte(grid.North))
	w.WriteU8(7) // not a link tag

	_, err := DecodeBlock(codec.NewReader(w.Bytes(), pool), blocks)
	assert.ErrorIs(t, err, codec.ErrInvalidValue)
}

func TestEncodeDecodeLinkedTunnel(t *testing.T) {
	pool := ident.NewPool()
	blocks, _ := newTestRegistries(pool)

	tn := NewTunnel(pool)
	tn.link = LinkReceiving
	tn.partner = grid.Vec2i{X: -4, Y: 12}

	w := codec.NewWriter(pool)
	EncodeBlock(w, tn)

	got, err := DecodeBlock(codec.NewReader(w.Bytes(), pool), blocks)
	require.NoError(t, err)
	dec := got.(*Tunnel)
	state, partner := dec.Link()
	assert.Equal(t, LinkReceiving, state)
	assert.Equal(t, grid.Vec2i{X: -4, Y: 12}, partner)
}
