package block

import "github.com/pn2s/factory/internal/ident"

// EmptyBlock is the placeholder in unoccupied cells.
type EmptyBlock struct {
	Base
}

func NewEmptyBlock(pool *ident.Pool) *EmptyBlock {
	return &EmptyBlock{Base: newBase(pool.ID(Namespace, "empty"), "Empty", "")}
}

func (b *EmptyBlock) IsNone() bool { return true }

func (b *EmptyBlock) Clone() Block {
	cp := *b
	return &cp
}
