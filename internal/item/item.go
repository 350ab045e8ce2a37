// Package item defines the polymorphic inventory items moved between
// blocks, plus the registry that maps identifiers back to prototypes
// when a save is decoded.
package item

import (
	"fmt"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/ident"
)

// Item is one inventory entry. Metadata is a stack count for stackable
// kinds and a durability value otherwise.
type Item interface {
	ID() ident.ID
	Name() string
	Metadata() uint32
	SetMetadata(v uint32)
	MetadataIsStackSize() bool

	// Clone returns an independent copy; mutating the copy must not
	// affect the original.
	Clone() Item

	EncodeBody(w *codec.Writer)
	DecodeBody(r *codec.Reader) error
}

// Encode writes it as a tagged item record.
func Encode(w *codec.Writer, it Item) {
	w.WriteTrap(codec.TrapItem)
	w.WriteID(it.ID())
	w.WriteU32(it.Metadata())
	it.EncodeBody(w)
}

// Decode reads a tagged item record, resolves its identifier in reg
// and returns a configured clone of the registered prototype.
func Decode(r *codec.Reader, reg *Registry) (Item, error) {
	if err := r.ExpectTrap(codec.TrapItem); err != nil {
		return nil, err
	}
	id, err := r.ReadID()
	if err != nil {
		return nil, err
	}
	meta, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	proto, ok := reg.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("item %s: %w", r.Pool().IDString(id), codec.ErrUnknownIdentifier)
	}
	it := proto.Clone()
	it.SetMetadata(meta)
	if err := it.DecodeBody(r); err != nil {
		return nil, err
	}
	return it, nil
}

// EncodeOptional writes a nullable item slot.
func EncodeOptional(w *codec.Writer, it Item) {
	w.WriteOptionHeader(it != nil)
	if it != nil {
		Encode(w, it)
	}
}

// DecodeOptional reads a nullable item slot; an absent value decodes
// as nil without error.
func DecodeOptional(r *codec.Reader, reg *Registry) (Item, error) {
	present, err := r.ReadOptionHeader()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return Decode(r, reg)
}
