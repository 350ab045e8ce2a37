package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/ident"
)

func newTestRegistry(pool *ident.Pool) *Registry {
	reg := NewRegistry()
	reg.Register(NewResource(pool.ID("test", "coal"), "Coal"))
	reg.Register(NewResource(pool.ID("test", "iron_ore"), "Iron Ore"))
	reg.Register(NewDurable(pool.ID("test", "drill_head"), "Drill Head", 100))
	return reg
}

func TestCloneIndependence(t *testing.T) {
	pool := ident.NewPool()
	orig := NewResource(pool.ID("test", "coal"), "Coal")
	orig.SetMetadata(5)

	cp := orig.Clone()
	cp.SetMetadata(99)

	assert.Equal(t, uint32(5), orig.Metadata())
	assert.Equal(t, uint32(99), cp.Metadata())
	assert.Equal(t, orig.ID(), cp.ID())
}

func TestDurableMetadataKind(t *testing.T) {
	pool := ident.NewPool()
	drill := NewDurable(pool.ID("test", "drill_head"), "Drill Head", 100)
	assert.False(t, drill.MetadataIsStackSize())
	assert.Equal(t, uint32(100), drill.Metadata())

	coal := NewResource(pool.ID("test", "coal"), "Coal")
	assert.True(t, coal.MetadataIsStackSize())
	assert.Equal(t, uint32(1), coal.Metadata())
}

func TestRegistryKeepsFirst(t *testing.T) {
	pool := ident.NewPool()
	reg := NewRegistry()
	first := NewResource(pool.ID("test", "coal"), "Coal")
	second := NewResource(pool.ID("test", "coal"), "Impostor")

	require.True(t, reg.Register(first))
	assert.False(t, reg.Register(second))

	got, ok := reg.Lookup(pool.ID("test", "coal"))
	require.True(t, ok)
	assert.Equal(t, "Coal", got.Name())
	assert.Equal(t, 1, reg.Len())
}

func TestEncodeDecode(t *testing.T) {
	pool := ident.NewPool()
	reg := newTestRegistry(pool)

	it, _ := reg.Lookup(pool.ID("test", "coal"))
	stack := it.Clone()
	stack.SetMetadata(42)

	w := codec.NewWriter(pool)
	Encode(w, stack)

	got, err := Decode(codec.NewReader(w.Bytes(), pool), reg)
	require.NoError(t, err)
	assert.Equal(t, stack.ID(), got.ID())
	assert.Equal(t, uint32(42), got.Metadata())
	assert.Equal(t, "Coal", got.Name())
}

func TestDecodeUnknownIdentifier(t *testing.T) {
	pool := ident.NewPool()
	ghost := NewResource(pool.ID("test", "unobtainium"), "Unobtainium")

	w := codec.NewWriter(pool)
	Encode(w, ghost)

	_, err := Decode(codec.NewReader(w.Bytes(), pool), newTestRegistry(pool))
	assert.ErrorIs(t, err, codec.ErrUnknownIdentifier)
}

func TestDecodeWrongTrap(t *testing.T) {
	pool := ident.NewPool()
	w := codec.NewWriter(pool)
	w.WriteTrap(codec.TrapBlock)

	_, err := Decode(codec.NewReader(w.Bytes(), pool), newTestRegistry(pool))
	var trapErr *codec.TrapError
	require.ErrorAs(t, err, &trapErr)
	assert.Equal(t, codec.TrapItem, trapErr.Expected)
}

func TestOptionalRoundTrip(t *testing.T) {
	pool := ident.NewPool()
	reg := newTestRegistry(pool)

	w := codec.NewWriter(pool)
	EncodeOptional(w, nil)
	it, _ := reg.Lookup(pool.ID("test", "iron_ore"))
	EncodeOptional(w, it.Clone())

	r := codec.NewReader(w.Bytes(), pool)

	got, err := DecodeOptional(r, reg)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = DecodeOptional(r, reg)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, it.ID(), got.ID())
}
