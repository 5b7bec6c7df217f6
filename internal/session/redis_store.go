package session

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/scamtrap-ai/scamtrap/internal/intel"
)

// DefaultSessionTTL matches the engagement window a decoy conversation is
// expected to stay live.
const DefaultSessionTTL = 24 * time.Hour

var intelCategories = []string{"bank", "upi", "link", "phone", "keyword"}

// RedisStore is a Store backed by Redis, for deployments where several
// honeypot instances share conversation state. Counters use HINCRBY and the
// reported flag uses SETNX, so the Store atomicity contract holds across
// processes.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore creates a RedisStore. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("scamtrap.internal.session")
	}
	return &RedisStore{redis: client, ttl: ttl, tracer: tracer}
}

// Record implements Store.
func (s *RedisStore) Record(ctx context.Context, id string, extracted intel.Set) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "session.record")
	defer span.End()

	now := time.Now().UTC()
	pipe := s.redis.TxPipeline()
	pipe.HSetNX(ctx, sessionKey(id), "created_at", now.Format(time.RFC3339Nano))
	pipe.HSet(ctx, sessionKey(id), "last_seen", now.Format(time.RFC3339Nano))
	count := pipe.HIncrBy(ctx, sessionKey(id), "count", 1)
	for category, items := range categoryItems(extracted) {
		if len(items) == 0 {
			continue
		}
		members := make([]interface{}, 0, len(items))
		for _, item := range items {
			if item == "" {
				continue
			}
			members = append(members, item)
		}
		if len(members) > 0 {
			pipe.SAdd(ctx, intelKey(id, category), members...)
		}
	}
	for _, key := range allKeys(id) {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return Snapshot{}, fmt.Errorf("session: failed to record message: %w", err)
	}

	snap, err := s.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return Snapshot{}, err
	}
	// The pipelined HINCRBY result is the linearizable count for this call.
	snap.MessageCount = int(count.Val())
	return snap, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (Snapshot, bool, error) {
	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	exists, err := s.redis.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		return Snapshot{}, false, fmt.Errorf("session: failed to check session: %w", err)
	}
	if exists == 0 {
		return Snapshot{}, false, nil
	}

	snap, err := s.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// MarkReported implements Store.
func (s *RedisStore) MarkReported(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "session.mark_reported")
	defer span.End()

	won, err := s.redis.SetNX(ctx, reportedKey(id), "1", s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("session: failed to mark reported: %w", err)
	}
	return won, nil
}

func (s *RedisStore) load(ctx context.Context, id string) (Snapshot, error) {
	pipe := s.redis.Pipeline()
	fields := pipe.HGetAll(ctx, sessionKey(id))
	members := make(map[string]*redis.StringSliceCmd, len(intelCategories))
	for _, category := range intelCategories {
		members[category] = pipe.SMembers(ctx, intelKey(id, category))
	}
	reported := pipe.Exists(ctx, reportedKey(id))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Snapshot{}, fmt.Errorf("session: failed to load session: %w", err)
	}

	snap := Snapshot{ID: id, Reported: reported.Val() > 0}
	if countStr, ok := fields.Val()["count"]; ok {
		if n, err := strconv.Atoi(countStr); err == nil {
			snap.MessageCount = n
		}
	}
	if created, ok := fields.Val()["created_at"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			snap.CreatedAt = t
		}
	}
	if seen, ok := fields.Val()["last_seen"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, seen); err == nil {
			snap.LastSeenAt = t
		}
	}

	snap.Intel = intel.Set{
		BankAccounts:       sorted(members["bank"].Val()),
		UPIIDs:             sorted(members["upi"].Val()),
		PhishingLinks:      sorted(members["link"].Val()),
		PhoneNumbers:       sorted(members["phone"].Val()),
		SuspiciousKeywords: sorted(members["keyword"].Val()),
	}
	snap.Intel.Flagged = !snap.Intel.Empty()
	return snap, nil
}

func categoryItems(set intel.Set) map[string][]string {
	return map[string][]string{
		"bank":    set.BankAccounts,
		"upi":     set.UPIIDs,
		"link":    set.PhishingLinks,
		"phone":   set.PhoneNumbers,
		"keyword": set.SuspiciousKeywords,
	}
}

// sorted gives Redis set members a stable order for callers and tests.
func sorted(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := append([]string(nil), items...)
	sort.Strings(out)
	return out
}

func sessionKey(id string) string {
	return fmt.Sprintf("honeypot:session:%s", id)
}

func intelKey(id, category string) string {
	return fmt.Sprintf("honeypot:intel:%s:%s", id, category)
}

func reportedKey(id string) string {
	return fmt.Sprintf("honeypot:reported:%s", id)
}

func allKeys(id string) []string {
	keys := []string{sessionKey(id)}
	for _, category := range intelCategories {
		keys = append(keys, intelKey(id, category))
	}
	return keys
}
