package item

import (
	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/ident"
)

// Resource is a plain material item with no behavior of its own.
type Resource struct {
	id        ident.ID
	name      string
	meta      uint32
	stackMeta bool
}

// NewResource returns a stackable resource prototype with metadata 1.
func NewResource(id ident.ID, name string) *Resource {
	return &Resource{id: id, name: name, meta: 1, stackMeta: true}
}

// NewDurable returns a resource whose metadata is a durability value.
// Durable items never merge into stacks.
func NewDurable(id ident.ID, name string, durability uint32) *Resource {
	return &Resource{id: id, name: name, meta: durability}
}

func (it *Resource) ID() ident.ID              { return it.id }
func (it *Resource) Name() string              { return it.name }
func (it *Resource) Metadata() uint32          { return it.meta }
func (it *Resource) SetMetadata(v uint32)      { it.meta = v }
func (it *Resource) MetadataIsStackSize() bool { return it.stackMeta }

func (it *Resource) Clone() Item {
	cp := *it
	return &cp
}

// EncodeBody writes nothing; a resource has no state beyond metadata.
func (it *Resource) EncodeBody(*codec.Writer) {}

func (it *Resource) DecodeBody(*codec.Reader) error { return nil }
