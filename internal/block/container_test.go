package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
)

func TestContainerFacingAxis(t *testing.T) {
	pool := ident.NewPool()
	c := NewStorageContainer(pool)
	meta := grid.BlockMeta{Direction: grid.North}

	for _, side := range []grid.Direction{grid.North, grid.South} {
		assert.True(t, c.HasCapabilityPush(side, meta), "side %s", side)
		assert.True(t, c.HasCapabilityPull(side, meta), "side %s", side)
	}
	for _, side := range []grid.Direction{grid.East, grid.West} {
		assert.False(t, c.HasCapabilityPush(side, meta), "side %s", side)
		assert.False(t, c.HasCapabilityPull(side, meta), "side %s", side)
	}
}

func TestContainerAbsorbsWholeStack(t *testing.T) {
	pool := ident.NewPool()
	c := NewStorageContainer(pool)
	meta := grid.BlockMeta{Direction: grid.North}

	assert.Nil(t, c.Push(grid.North, testCoal(pool, 40), meta))
	require.NotNil(t, c.inv.Item(0))
	assert.Equal(t, uint32(40), c.inv.Item(0).Metadata())
}

func TestContainerOverflowComesBack(t *testing.T) {
	pool := ident.NewPool()
	c := NewStorageContainer(pool)
	meta := grid.BlockMeta{Direction: grid.North}

	for i := 0; i < c.inv.Size(); i++ {
		c.inv.SetItem(i, testCoal(pool, inventory.MaxItemsPerSlot))
	}
	it := testCoal(pool, 7)
	got := c.Push(grid.North, it, meta)
	assert.Same(t, it, got)
	assert.Equal(t, uint32(7), got.Metadata())
}

func TestContainerPullSplitsStacks(t *testing.T) {
	pool := ident.NewPool()
	c := NewStorageContainer(pool)
	meta := grid.BlockMeta{Direction: grid.North}
	c.inv.SetItem(0, testCoal(pool, 5))

	out := c.Pull(grid.South, meta, 1)
	require.NotNil(t, out)
	assert.Equal(t, uint32(1), out.Metadata())
	assert.Equal(t, uint32(4), c.inv.Item(0).Metadata())

	assert.Nil(t, c.Pull(grid.East, meta, 1), "wrong side")
}

func TestContainerExposesInventory(t *testing.T) {
	pool := ident.NewPool()
	c := NewStorageContainer(pool)

	require.NotNil(t, c.InventoryCapability())
	assert.Equal(t, containerSlots, c.InventoryCapability().Size())
	assert.True(t, c.SupportsInteraction())

	c.inv.SetItem(3, testCoal(pool, 9))
	refund := c.DestroyItems()
	require.Len(t, refund, 1)
	assert.False(t, c.inv.CanPull())
}

func TestNodePullsFromAnySide(t *testing.T) {
	pool := ident.NewPool()
	node := NewResourceNode(pool.ID(Namespace, "resource_node_brown"),
		"Resource Node", "", item.NewResource(pool.ID(Namespace, "coal"), "Coal"))
	meta := grid.BlockMeta{Direction: grid.North}

	for _, side := range []grid.Direction{grid.North, grid.East, grid.South, grid.West} {
		require.True(t, node.HasCapabilityPull(side, meta))
		out := node.Pull(side, meta, 1)
		require.NotNil(t, out)
		assert.Equal(t, uint32(1), out.Metadata())
	}
	assert.False(t, node.HasCapabilityPush(grid.North, meta))
}

func TestNodeYieldIsUnlimitedAndIndependent(t *testing.T) {
	pool := ident.NewPool()
	node := NewResourceNode(pool.ID(Namespace, "resource_node_brown"),
		"Resource Node", "", item.NewResource(pool.ID(Namespace, "coal"), "Coal"))
	meta := grid.BlockMeta{Direction: grid.North}

	a := node.Pull(grid.North, meta, 1)
	b := node.Pull(grid.North, meta, 1)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotSame(t, a, b)

	a.SetMetadata(200)
	assert.Equal(t, uint32(1), b.Metadata())
}

func TestNodeInteractMinesIntoPlayerInventory(t *testing.T) {
	pool := ident.NewPool()
	node := NewResourceNode(pool.ID(Namespace, "resource_node_brown"),
		"Resource Node", "", item.NewResource(pool.ID(Namespace, "coal"), "Coal"))

	gained := 0
	player := inventory.New(inventory.PlayerSlots, func(_ item.Item, delta int) {
		gained += delta
	})
	node.Interact(nil, nil, grid.BlockMeta{}, player)

	assert.Equal(t, mineYield, gained)
	require.NotNil(t, player.Item(0))
	assert.Equal(t, uint32(mineYield), player.Item(0).Metadata())

	node.Interact(nil, nil, grid.BlockMeta{}, player)
	assert.Equal(t, uint32(2*mineYield), player.Item(0).Metadata())
}
