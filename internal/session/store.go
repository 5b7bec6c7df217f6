package session

import (
	"context"
	"time"

	"github.com/scamtrap-ai/scamtrap/internal/intel"
)

// Snapshot is a point-in-time copy of a conversation's accumulated state.
// Mutating a snapshot never affects the store.
type Snapshot struct {
	ID           string
	MessageCount int
	Intel        intel.Set
	Reported     bool
	CreatedAt    time.Time
	LastSeenAt   time.Time
}

// Store tracks per-conversation engagement state. Implementations must make
// Record linearizable per id and MarkReported an atomic test-and-set, since
// two messages for the same conversation can arrive concurrently.
type Store interface {
	// Record attributes one inbound message to the conversation, merging the
	// extracted indicators, and returns the post-merge cumulative snapshot.
	// Unknown ids are created implicitly.
	Record(ctx context.Context, id string, extracted intel.Set) (Snapshot, error)

	// Get returns the current snapshot, or ok=false for an unseen id.
	Get(ctx context.Context, id string) (Snapshot, bool, error)

	// MarkReported flips the write-once reported flag. It returns true for
	// exactly one caller per conversation, even under concurrent triggering.
	MarkReported(ctx context.Context, id string) (bool, error)
}
