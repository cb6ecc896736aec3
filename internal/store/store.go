// Package store is the durable side of the service: the key-addressed
// document store the persistence loops flush to, the daily-activity ledger,
// and the append-only error log.
package store

import "context"

// Store is the interface the room registry and persistence loops depend on.
type Store interface {
	// GameExists reports whether the backing record a room would attach to
	// is present.
	GameExists(ctx context.Context, id string) (bool, error)

	// GetRoomContent returns the stored content for a room, with found=false
	// when no record exists yet.
	GetRoomContent(ctx context.Context, id string) (content string, found bool, err error)

	// UpsertRoomContent writes the room's serialized content, stamping the
	// modification time. Label is optional metadata (e.g. a tutorial name).
	UpsertRoomContent(ctx context.Context, id, content, label string) error

	// TouchActivity upserts the (room, day) activity marker. Idempotent:
	// repeated touches on the same day are no-ops.
	TouchActivity(ctx context.Context, roomID, day string) error

	Close() error
}
