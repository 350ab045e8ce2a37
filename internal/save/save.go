// Package save reads and writes world snapshot files. A file is the
// raw signature, the save time, the world, then the player inventory,
// all in the wire format of internal/codec.
package save

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
	"github.com/pn2s/factory/internal/world"
)

// Signature opens every save file.
const Signature = "PN2S_SAV"

// Deps carries the registries a snapshot decode resolves against.
type Deps struct {
	Pool   *ident.Pool
	Blocks *block.Registry
	Items  *item.Registry
}

// Snapshot is one saved game.
type Snapshot struct {
	SavedAt time.Time
	World   *world.World
	Player  *inventory.Inventory
}

// Encode appends the snapshot to w.
func Encode(w *codec.Writer, s *Snapshot) {
	w.WriteBytes([]byte(Signature))
	w.WriteTrap(codec.TrapTime)
	w.WriteU64(uint64(s.SavedAt.Unix()))
	s.World.Encode(w)
	s.Player.Encode(w)
}

// Decode parses a complete snapshot. Trailing bytes after the player
// inventory make the file invalid.
func Decode(data []byte, deps Deps) (*Snapshot, error) {
	r := codec.NewReader(data, deps.Pool)
	sig, err := r.ReadBytes(len(Signature))
	if err != nil {
		return nil, fmt.Errorf("save header: %w", err)
	}
	if string(sig) != Signature {
		return nil, fmt.Errorf("save signature %q: %w", sig, codec.ErrInvalidValue)
	}
	if err := r.ExpectTrap(codec.TrapTime); err != nil {
		return nil, fmt.Errorf("save time: %w", err)
	}
	unix, err := r.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("save time: %w", err)
	}
	w, err := world.Decode(r, deps.Blocks)
	if err != nil {
		return nil, err
	}
	player, err := inventory.Decode(r, deps.Items)
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("save with %d trailing bytes: %w", r.Remaining(), codec.ErrInvalidValue)
	}
	return &Snapshot{
		SavedAt: time.Unix(int64(unix), 0).UTC(),
		World:   w,
		Player:  player,
	}, nil
}

// Sniff reports whether data begins with the save signature.
func Sniff(data []byte) bool {
	return len(data) >= len(Signature) && string(data[:len(Signature)]) == Signature
}

// WriteFile writes the snapshot to path, staging through a temporary
// file in the same directory so a crash never leaves a torn save.
func WriteFile(path string, s *Snapshot, pool *ident.Pool) error {
	w := codec.NewWriter(pool)
	Encode(w, s)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("stage save: %w", err)
	}
	if _, err := tmp.Write(w.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// ReadFile loads and decodes the snapshot at path.
func ReadFile(path string, deps Deps) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	s, err := Decode(data, deps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Checksum digests an encoded snapshot for the save catalog.
func Checksum(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}
