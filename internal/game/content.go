package game

import (
	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/item"
)

// PlayerSlots is the player inventory size, five rows of nine.
const PlayerSlots = 45

// RegisterContent fills the registries with the built-in items and
// block kinds. Registering a block kind also registers its BlockItem,
// so every building is placeable from the inventory.
func RegisterContent(pool *ident.Pool, items *item.Registry, blocks *block.Registry) {
	coal := item.NewResource(pool.ID(block.Namespace, "coal"), "Coal")
	ironOre := item.NewResource(pool.ID(block.Namespace, "iron_ore"), "Iron Ore")
	copperOre := item.NewResource(pool.ID(block.Namespace, "copper_ore"), "Copper Ore")
	items.Register(coal)
	items.Register(ironOre)
	items.Register(copperOre)

	blocks.Register(block.NewConveyor(pool))
	blocks.Register(block.NewExtractor(pool))
	blocks.Register(block.NewSplitter(pool))
	blocks.Register(block.NewTunnel(pool))
	blocks.Register(block.NewStorageContainer(pool))
	blocks.Register(block.NewResourceNode(
		pool.ID(block.Namespace, "resource_node_brown"),
		"Brown Resource Node", "An endless deposit of coal.", coal))
	blocks.Register(block.NewResourceNode(
		pool.ID(block.Namespace, "resource_node_gray"),
		"Gray Resource Node", "An endless deposit of iron ore.", ironOre))
	blocks.Register(block.NewResourceNode(
		pool.ID(block.Namespace, "resource_node_orange"),
		"Orange Resource Node", "An endless deposit of copper ore.", copperOre))
}
