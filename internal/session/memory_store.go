package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/scamtrap-ai/scamtrap/internal/intel"
)

const shardCount = 32

type record struct {
	messageCount int
	intel        intel.Set
	reported     bool
	createdAt    time.Time
	lastSeenAt   time.Time
}

type shard struct {
	mu       sync.Mutex
	sessions map[string]*record
}

// MemoryStore is an in-process Store sharded by conversation id so that
// contention stays scoped to a single id rather than a global lock.
type MemoryStore struct {
	shards [shardCount]*shard
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a MemoryStore. ttl bounds how long an idle
// conversation is retained by Sweep; zero disables eviction.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{ttl: ttl, now: time.Now}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*record)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, id string, extracted intel.Set) (Snapshot, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec := sh.sessions[id]
	if rec == nil {
		now := s.now()
		rec = &record{createdAt: now}
		sh.sessions[id] = rec
	}
	rec.messageCount++
	rec.intel.Merge(extracted)
	rec.lastSeenAt = s.now()

	return s.snapshotLocked(id, rec), nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Snapshot, bool, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.sessions[id]
	if !ok {
		return Snapshot{}, false, nil
	}
	return s.snapshotLocked(id, rec), true, nil
}

// MarkReported implements Store. The flag transition happens under the shard
// lock, so at most one caller observes true.
func (s *MemoryStore) MarkReported(_ context.Context, id string) (bool, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec := sh.sessions[id]
	if rec == nil {
		rec = &record{createdAt: s.now(), lastSeenAt: s.now()}
		sh.sessions[id] = rec
	}
	if rec.reported {
		return false, nil
	}
	rec.reported = true
	return true, nil
}

// Sweep evicts conversations idle longer than the configured TTL and returns
// how many were removed. A zero TTL makes Sweep a no-op.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, rec := range sh.sessions {
			if rec.lastSeenAt.Before(cutoff) {
				delete(sh.sessions, id)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	return evicted
}

// RunJanitor sweeps on the given interval until ctx is cancelled.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) snapshotLocked(id string, rec *record) Snapshot {
	return Snapshot{
		ID:           id,
		MessageCount: rec.messageCount,
		Intel:        rec.intel.Clone(),
		Reported:     rec.reported,
		CreatedAt:    rec.createdAt,
		LastSeenAt:   rec.lastSeenAt,
	}
}
