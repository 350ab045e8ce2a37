package block

import (
	"fmt"

	"github.com/pn2s/factory/internal/codec"
)

// EncodeBlock writes b as a tagged block record. Empty cells encode
// as a single flag with no identifier.
func EncodeBlock(w *codec.Writer, b Block) {
	w.WriteTrap(codec.TrapBlock)
	w.WriteBool(b.IsNone())
	if b.IsNone() {
		return
	}
	w.WriteID(b.ID())
	b.EncodeBody(w)
}

// DecodeBlock reads a tagged block record, resolving its identifier
// against reg and decoding the kind's payload into a fresh clone of
// the registered prototype.
func DecodeBlock(r *codec.Reader, reg *Registry) (Block, error) {
	if err := r.ExpectTrap(codec.TrapBlock); err != nil {
		return nil, err
	}
	isEmpty, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if isEmpty {
		return reg.NewEmpty(), nil
	}
	id, err := r.ReadID()
	if err != nil {
		return nil, err
	}
	proto, ok := reg.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("block %s: %w", r.Pool().IDString(id), codec.ErrUnknownIdentifier)
	}
	b := proto.Clone()
	if err := b.DecodeBody(r, reg.items); err != nil {
		return nil, fmt.Errorf("block %s: %w", r.Pool().IDString(id), err)
	}
	return b, nil
}
