package block

import (
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/item"
)

// Registry maps block identifiers to their prototypes. Registering a
// kind also registers its BlockItem in the item registry, so every
// building exists as a placeable item.
type Registry struct {
	byID  map[ident.ID]Block
	order []ident.ID
	items *item.Registry
	empty Block
}

// NewRegistry returns an empty registry. Auto-registered BlockItems
// land in items.
func NewRegistry(pool *ident.Pool, items *item.Registry) *Registry {
	return &Registry{
		byID:  make(map[ident.ID]Block),
		items: items,
		empty: NewEmptyBlock(pool),
	}
}

// Register adds proto under its identifier. The first registration of
// an identifier wins; a duplicate is ignored and reported false.
func (reg *Registry) Register(proto Block) bool {
	id := proto.ID()
	if _, ok := reg.byID[id]; ok {
		return false
	}
	reg.byID[id] = proto
	reg.order = append(reg.order, id)
	reg.items.Register(NewBlockItem(proto))
	return true
}

func (reg *Registry) Lookup(id ident.ID) (Block, bool) {
	b, ok := reg.byID[id]
	return b, ok
}

// NewEmpty returns a fresh placeholder block. Empty is not a
// registered kind; it is what dismantling leaves behind.
func (reg *Registry) NewEmpty() Block {
	return reg.empty.Clone()
}

// Len returns the number of registered kinds.
func (reg *Registry) Len() int { return len(reg.byID) }

// IDs returns the registered identifiers in registration order.
func (reg *Registry) IDs() []ident.ID {
	out := make([]ident.ID, len(reg.order))
	copy(out, reg.order)
	return out
}
