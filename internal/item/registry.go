package item

import "github.com/pn2s/factory/internal/ident"

// Registry maps item identifiers to their prototypes. Lookup results
// are shared prototypes; callers clone before mutating.
type Registry struct {
	byID  map[ident.ID]Item
	order []ident.ID
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[ident.ID]Item)}
}

// Register adds proto under its identifier. The first registration of
// an identifier wins; a duplicate is ignored and reported false.
func (reg *Registry) Register(proto Item) bool {
	id := proto.ID()
	if _, ok := reg.byID[id]; ok {
		return false
	}
	reg.byID[id] = proto
	reg.order = append(reg.order, id)
	return true
}

func (reg *Registry) Lookup(id ident.ID) (Item, bool) {
	it, ok := reg.byID[id]
	return it, ok
}

// Len returns the number of registered kinds.
func (reg *Registry) Len() int { return len(reg.byID) }

// IDs returns the registered identifiers in registration order.
func (reg *Registry) IDs() []ident.ID {
	out := make([]ident.ID, len(reg.order))
	copy(out, reg.order)
	return out
}
