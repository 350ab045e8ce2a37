package block

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
)

func linkOf(t *testing.T, b Block) (LinkState, grid.Vec2i) {
	t.Helper()
	tn, ok := b.(*Tunnel)
	require.True(t, ok)
	return tn.Link()
}

func TestTunnelPairsOnPlacement(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	posA := grid.Vec2i{X: 10, Y: 10}
	posB := posA.AddDirectional(grid.East, 4)
	a := NewTunnel(pool)
	b := NewTunnel(pool)

	sw.place(posA, a, grid.East)
	state, _ := a.Link()
	require.Equal(t, LinkNone, state, "nothing to pair with yet")

	sw.place(posB, b, grid.East)

	stateB, partnerB := b.Link()
	assert.Equal(t, LinkPushing, stateB)
	assert.Equal(t, posA, partnerB)

	stateA, partnerA := a.Link()
	assert.Equal(t, LinkReceiving, stateA)
	assert.Equal(t, posB, partnerA)
}

func TestTunnelPairsNearestFirst(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	origin := grid.Vec2i{X: 20, Y: 20}
	far := NewTunnel(pool)
	near := NewTunnel(pool)
	sw.place(origin.AddDirectional(grid.East, 5), far, grid.East)
	sw.place(origin.AddDirectional(grid.East, -2), near, grid.East)
	// The two existing ends are 7 apart and pair with each other;
	// rebuild them unlinked to isolate the scan order.
	far.link = LinkNone
	near.link = LinkNone

	fresh := NewTunnel(pool)
	sw.place(origin, fresh, grid.East)

	_, partner := fresh.Link()
	assert.Equal(t, origin.AddDirectional(grid.East, -2), partner)
	state, _ := near.Link()
	assert.Equal(t, LinkReceiving, state)
	stateFar, _ := far.Link()
	assert.Equal(t, LinkNone, stateFar)
}

func TestTunnelPrefersAheadAtEqualDistance(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	origin := grid.Vec2i{X: 20, Y: 20}
	ahead := NewTunnel(pool)
	behind := NewTunnel(pool)
	sw.put(origin.AddDirectional(grid.East, 3), ahead, grid.East)
	sw.put(origin.AddDirectional(grid.East, -3), behind, grid.East)

	fresh := NewTunnel(pool)
	sw.place(origin, fresh, grid.East)

	_, partner := fresh.Link()
	assert.Equal(t, origin.AddDirectional(grid.East, 3), partner)
}

func TestTunnelIgnoresMismatchedCandidates(t *testing.T) {
	pool := ident.NewPool()

	cases := []struct {
		name  string
		setup func(sw *stubWorld, origin grid.Vec2i)
	}{
		{"different facing", func(sw *stubWorld, origin grid.Vec2i) {
			sw.put(origin.AddDirectional(grid.East, 2), NewTunnel(pool), grid.North)
		}},
		{"already linked", func(sw *stubWorld, origin grid.Vec2i) {
			tn := NewTunnel(pool)
			tn.link = LinkReceiving
			sw.put(origin.AddDirectional(grid.East, 2), tn, grid.East)
		}},
		{"not a tunnel", func(sw *stubWorld, origin grid.Vec2i) {
			sw.put(origin.AddDirectional(grid.East, 2), NewConveyor(pool), grid.East)
		}},
		{"out of range", func(sw *stubWorld, origin grid.Vec2i) {
			sw.put(origin.AddDirectional(grid.East, tunnelRange+1), NewTunnel(pool), grid.East)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sw := newStubWorld()
			origin := grid.Vec2i{X: 20, Y: 20}
			tc.setup(sw, origin)

			fresh := NewTunnel(pool)
			sw.place(origin, fresh, grid.East)
			state, _ := fresh.Link()
			assert.Equal(t, LinkNone, state)
		})
	}
}

func TestTunnelMovesItemUnderground(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	posIn := grid.Vec2i{X: 10, Y: 10}
	posOut := posIn.AddDirectional(grid.East, 5)
	exit := NewTunnel(pool)
	entry := NewTunnel(pool)
	sw.place(posOut, exit, grid.East)
	sw.place(posIn, entry, grid.East)

	state, _ := entry.Link()
	require.Equal(t, LinkPushing, state)

	belt := NewConveyor(pool)
	sw.put(posOut.AddDirectional(grid.East, 1), belt, grid.East)

	metaIn := grid.BlockMeta{Position: posIn, Direction: grid.East}
	require.Nil(t, entry.Push(grid.West, testCoal(pool, 1), metaIn))

	elapse(&entry.timer, time.Second)
	tick(sw, posIn)

	assert.Nil(t, entry.inv.Item(0))
	require.NotNil(t, exit.inv.Item(0), "item teleported to the exit")
	assert.False(t, exit.CanDoWork(), "teleport starts the exit cooldown")

	elapse(&exit.timer, time.Second)
	tick(sw, posOut)

	assert.Nil(t, exit.inv.Item(0))
	require.NotNil(t, belt.inv.Item(0), "exit ejects forward")
}

func TestTunnelTeleportWaitsForFreeSlot(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	posIn := grid.Vec2i{X: 10, Y: 10}
	posOut := posIn.AddDirectional(grid.East, 3)
	exit := NewTunnel(pool)
	entry := NewTunnel(pool)
	sw.place(posOut, exit, grid.East)
	sw.place(posIn, entry, grid.East)

	exit.inv.SetItem(0, testCoal(pool, 1))
	metaIn := grid.BlockMeta{Position: posIn, Direction: grid.East}
	require.Nil(t, entry.Push(grid.West, testCoal(pool, 1), metaIn))
	elapse(&entry.timer, time.Second)

	tick(sw, posIn)

	assert.NotNil(t, entry.inv.Item(0), "exit occupied, item waits")
}

func TestTunnelOnlyPushingEndAccepts(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	posA := grid.Vec2i{X: 10, Y: 10}
	posB := posA.AddDirectional(grid.East, 2)
	receiver := NewTunnel(pool)
	pusher := NewTunnel(pool)
	sw.place(posA, receiver, grid.East)
	sw.place(posB, pusher, grid.East)

	metaA := grid.BlockMeta{Position: posA, Direction: grid.East}
	metaB := grid.BlockMeta{Position: posB, Direction: grid.East}

	it := testCoal(pool, 1)
	assert.Same(t, it, receiver.Push(grid.West, it, metaA), "receiving end refuses")
	assert.Nil(t, pusher.Push(grid.West, it, metaB))

	// Whole stacks ride the tunnel, unlike belts.
	stack := testCoal(pool, 5)
	pusher.inv.TakeItem(0)
	require.Nil(t, pusher.Push(grid.West, stack, metaB))
	assert.Equal(t, uint32(5), pusher.inv.Item(0).Metadata())
}

func TestTunnelInteractReversesFlow(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	posA := grid.Vec2i{X: 10, Y: 10}
	posB := posA.AddDirectional(grid.East, 2)
	a := NewTunnel(pool)
	b := NewTunnel(pool)
	sw.place(posA, a, grid.East)
	sw.place(posB, b, grid.East)

	var s stubSched
	b.Interact(sw, &s, grid.BlockMeta{Position: posB, Direction: grid.East}, nil)
	s.run(sw)

	stateA, _ := a.Link()
	stateB, _ := b.Link()
	assert.Equal(t, LinkPushing, stateA)
	assert.Equal(t, LinkReceiving, stateB)
}

func TestTunnelDismantleUnlinksPartner(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	posA := grid.Vec2i{X: 10, Y: 10}
	posB := posA.AddDirectional(grid.East, 2)
	a := NewTunnel(pool)
	b := NewTunnel(pool)
	sw.place(posA, a, grid.East)
	sw.place(posB, b, grid.East)

	delete(sw.blocks, posB)
	b.OnAfterDismantle(sw, nil, grid.BlockMeta{Position: posB, Direction: grid.East})

	stateA, _ := a.Link()
	stateB, _ := b.Link()
	assert.Equal(t, LinkNone, stateA)
	assert.Equal(t, LinkNone, stateB)
}

func TestTunnelDropsLinkWhenPartnerGone(t *testing.T) {
	pool := ident.NewPool()
	sw := newStubWorld()

	pos := grid.Vec2i{X: 10, Y: 10}
	tn := NewTunnel(pool)
	sw.put(pos, tn, grid.East)
	tn.link = LinkPushing
	tn.partner = pos.AddDirectional(grid.East, 3)
	tn.inv.SetItem(0, testCoal(pool, 1))
	elapse(&tn.timer, time.Second)

	tick(sw, pos)

	state, _ := tn.Link()
	assert.Equal(t, LinkNone, state)
	assert.NotNil(t, tn.inv.Item(0), "the stranded item stays buffered")
}
