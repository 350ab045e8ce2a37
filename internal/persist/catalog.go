// Package persist archives world snapshots in Postgres. The running
// game works entirely from save files; the catalog keeps a compressed
// history of them for inspection and rollback.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/pn2s/factory/internal/config"
)

// ErrNotFound reports a catalog id with no row behind it.
var ErrNotFound = errors.New("save not found")

// Catalog wraps a pgx connection pool plus the zstd codecs used for
// snapshot payloads.
type Catalog struct {
	pool *pgxpool.Pool
	log  *zap.Logger
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// SaveMeta describes the snapshot being archived.
type SaveMeta struct {
	SavedAt time.Time
	Width   uint32 // world size in chunks
	Height  uint32
	Blocks  int // non-empty cells
}

// SaveRecord is one archived snapshot, without its payload.
type SaveRecord struct {
	ID        uuid.UUID
	Name      string
	SavedAt   time.Time
	CreatedAt time.Time
	Width     int32
	Height    int32
	Blocks    int32
	SizeBytes int64
	Checksum  []byte
}

func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Catalog, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		pool.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Catalog{pool: pool, log: log, enc: enc, dec: dec}, nil
}

func (c *Catalog) Close() {
	c.enc.Close()
	c.dec.Close()
	c.pool.Close()
}

// RecordSave archives an encoded snapshot under name, writing the row
// and its "saved" event in one transaction.
func (c *Catalog) RecordSave(ctx context.Context, name string, raw []byte, meta SaveMeta) (uuid.UUID, error) {
	id := uuid.New()
	sum := blake2b.Sum256(raw)
	payload := c.enc.EncodeAll(raw, nil)

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO saves (id, name, saved_at, width, height, blocks, size_bytes, checksum, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, name, meta.SavedAt, int32(meta.Width), int32(meta.Height), int32(meta.Blocks),
		int64(len(raw)), sum[:], payload,
	); err != nil {
		return uuid.Nil, fmt.Errorf("save insert: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO save_events (save_id, event) VALUES ($1, $2)`,
		id, "saved",
	); err != nil {
		return uuid.Nil, fmt.Errorf("save event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("save commit: %w", err)
	}

	c.log.Debug("snapshot archived",
		zap.String("save_id", id.String()),
		zap.Int("bytes", len(raw)),
		zap.Int("compressed", len(payload)))
	return id, nil
}

// ListSaves returns the newest archive entries for name, most recent
// first.
func (c *Catalog) ListSaves(ctx context.Context, name string, limit int) ([]SaveRecord, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, name, saved_at, created_at, width, height, blocks, size_bytes, checksum
		 FROM saves
		 WHERE name = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, name, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SaveRecord
	for rows.Next() {
		var r SaveRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.SavedAt, &r.CreatedAt,
			&r.Width, &r.Height, &r.Blocks, &r.SizeBytes, &r.Checksum); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// LoadPayload fetches an archived snapshot, decompresses it and
// verifies it against the stored digest.
func (c *Catalog) LoadPayload(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var payload, sum []byte
	err := c.pool.QueryRow(ctx,
		`SELECT payload, checksum FROM saves WHERE id = $1`, id,
	).Scan(&payload, &sum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("save %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	raw, err := c.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress save %s: %w", id, err)
	}
	got := blake2b.Sum256(raw)
	if !bytes.Equal(got[:], sum) {
		return nil, fmt.Errorf("save %s fails its checksum", id)
	}

	if _, err := c.pool.Exec(ctx,
		`INSERT INTO save_events (save_id, event) VALUES ($1, $2)`, id, "loaded",
	); err != nil {
		c.log.Warn("save event not recorded", zap.String("save_id", id.String()), zap.Error(err))
	}
	return raw, nil
}
