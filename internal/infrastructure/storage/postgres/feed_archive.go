package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"fieldstock/internal/core/apperror"
)

const snapshotTable = "sync_snapshots"

// snapshotRetention is how many snapshots are kept; older ones are
// pruned on every save.
const snapshotRetention = 50

// Snapshot is one archived raw feed payload.
type Snapshot struct {
	ID         uuid.UUID `db:"id"`
	OrderCount int       `db:"order_count"`
	RawSize    int       `db:"raw_size"`
	Payload    []byte    `db:"payload_compressed"`
	CreatedAt  time.Time `db:"created_at"`
}

// FeedArchive stores zstd-compressed raw feed payloads for later
// inspection of what the feed actually returned.
type FeedArchive struct {
	tx      *TxManager
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFeedArchive creates a feed archive.
func NewFeedArchive(tx *TxManager) (*FeedArchive, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &FeedArchive{tx: tx, encoder: encoder, decoder: decoder}, nil
}

// Save archives one fetched payload and prunes snapshots beyond the
// retention window.
func (a *FeedArchive) Save(ctx context.Context, payload []byte, orderCount int) error {
	compressed := a.encoder.EncodeAll(payload, nil)

	sql := `
		INSERT INTO sync_snapshots (id, order_count, raw_size, payload_compressed, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	querier := a.tx.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		uuid.New(), orderCount, len(payload), compressed, time.Now().UTC())
	if err != nil {
		return apperror.NewDatabase(err)
	}

	prune := `
		DELETE FROM sync_snapshots
		WHERE id NOT IN (
			SELECT id FROM sync_snapshots ORDER BY created_at DESC LIMIT $1
		)
	`
	if _, err := querier.Exec(ctx, prune, snapshotRetention); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// Latest returns the newest snapshot with its payload decompressed.
func (a *FeedArchive) Latest(ctx context.Context) (*Snapshot, []byte, error) {
	sql := `
		SELECT id, order_count, raw_size, payload_compressed, created_at
		FROM sync_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`
	var s Snapshot
	err := a.tx.GetQuerier(ctx).QueryRow(ctx, sql).
		Scan(&s.ID, &s.OrderCount, &s.RawSize, &s.Payload, &s.CreatedAt)
	if err != nil {
		return nil, nil, apperror.NewNotFound(snapshotTable, "latest").WithCause(err)
	}

	payload, err := a.decoder.DecodeAll(s.Payload, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return &s, payload, nil
}
