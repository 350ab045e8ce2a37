package block

import (
	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/item"
)

// BlockItem is the inventory form of a building. It shares the
// block's identifier and stacks like any resource.
type BlockItem struct {
	proto Block
	meta  uint32
}

// NewBlockItem wraps proto as an item prototype with metadata 0.
func NewBlockItem(proto Block) *BlockItem {
	return &BlockItem{proto: proto}
}

// Block returns a fresh block instance to place into the world.
func (it *BlockItem) Block() Block {
	return it.proto.Clone()
}

func (it *BlockItem) ID() ident.ID              { return it.proto.ID() }
func (it *BlockItem) Name() string              { return it.proto.Name() }
func (it *BlockItem) Metadata() uint32          { return it.meta }
func (it *BlockItem) SetMetadata(v uint32)      { it.meta = v }
func (it *BlockItem) MetadataIsStackSize() bool { return true }

func (it *BlockItem) Clone() item.Item {
	cp := *it
	return &cp
}

func (it *BlockItem) EncodeBody(*codec.Writer) {}

func (it *BlockItem) DecodeBody(*codec.Reader) error { return nil }
