package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scamtrap-ai/scamtrap/internal/observability/metrics"
	"github.com/scamtrap-ai/scamtrap/internal/persona"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

var errEmptyReply = errors.New("llm: provider returned empty reply")

// Turn is one prior message of the conversation as supplied by the caller.
type Turn struct {
	Sender string
	Text   string
}

// Pool is one priority tier: a set of interchangeable client slots (one per
// credential) with a shared timeout, attempt budget, and circuit breaker.
// Immutable after construction; the round-robin cursor is atomic.
type Pool struct {
	name         string
	clients      []Client
	timeout      time.Duration
	maxAttempts  int
	historyAware bool

	cursor  atomic.Uint32
	breaker *gobreaker.CircuitBreaker
}

// NewPool builds a tier. maxAttempts is clamped to at least 1; a pool with no
// clients is skipped by the orchestrator.
func NewPool(name string, clients []Client, timeout time.Duration, maxAttempts int, historyAware bool) *Pool {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Pool{
		name:         name,
		clients:      clients,
		timeout:      timeout,
		maxAttempts:  maxAttempts,
		historyAware: historyAware,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Name returns the tier name used in logs and metrics.
func (p *Pool) Name() string { return p.name }

// Size returns the number of credential slots in the pool.
func (p *Pool) Size() int { return len(p.clients) }

// next picks the next client slot round-robin.
func (p *Pool) next() Client {
	idx := p.cursor.Add(1) - 1
	return p.clients[int(idx)%len(p.clients)]
}

// Orchestrator walks the configured pools strictly in priority order and
// falls back to the persona library when every tier is exhausted, so it
// always produces a reply.
type Orchestrator struct {
	pools       []*Pool
	window      int
	maxTokens   int32
	temperature float32
	logger      *logging.Logger
	metrics     *metrics.EngineMetrics
}

// NewOrchestrator creates an orchestrator over the given tiers. window bounds
// how many trailing history turns are sent to history-aware providers.
func NewOrchestrator(pools []*Pool, window int, maxTokens int32, temperature float32, logger *logging.Logger, m *metrics.EngineMetrics) *Orchestrator {
	if window <= 0 {
		window = 6
	}
	if maxTokens <= 0 {
		maxTokens = 60
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		pools:       pools,
		window:      window,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
		metrics:     m,
	}
}

// GenerateReply produces a victim reply for the latest message. First tier
// success wins; total upstream outage resolves to the persona fallback rather
// than an error.
func (o *Orchestrator) GenerateReply(ctx context.Context, history []Turn, latest string) string {
	for _, pool := range o.pools {
		if pool == nil || len(pool.clients) == 0 {
			continue
		}

		req := Request{
			System:      []string{persona.SystemPrompt()},
			Messages:    o.buildMessages(history, latest, pool.historyAware),
			MaxTokens:   o.maxTokens,
			Temperature: o.temperature,
		}

		for attempt := 0; attempt < pool.maxAttempts; attempt++ {
			client := pool.next()

			callCtx, cancel := context.WithTimeout(ctx, pool.timeout)
			result, err := pool.breaker.Execute(func() (interface{}, error) {
				resp, err := client.Complete(callCtx, req)
				if err != nil {
					return nil, err
				}
				return resp, nil
			})
			cancel()

			if err == nil {
				text := strings.TrimSpace(result.(Response).Text)
				if text != "" {
					o.metrics.ObserveProviderAttempt(pool.name, "success")
					return text
				}
				err = errEmptyReply
			}

			o.metrics.ObserveProviderAttempt(pool.name, "error")
			o.logger.Warn("provider attempt failed",
				"provider", pool.name,
				"attempt", attempt+1,
				"error", err.Error(),
			)

			if errors.Is(err, gobreaker.ErrOpenState) {
				// The whole tier is tripped; retrying other slots is pointless.
				break
			}
		}
	}

	o.metrics.ObserveFallback()
	o.logger.Info("all providers exhausted, using persona fallback")
	return persona.Fallback(latest)
}

// buildMessages assembles the bounded chat context. Stateless tiers get only
// the latest message; history-aware tiers get the trailing window too.
func (o *Orchestrator) buildMessages(history []Turn, latest string, historyAware bool) []ChatMessage {
	var messages []ChatMessage
	if historyAware {
		start := len(history) - o.window
		if start < 0 {
			start = 0
		}
		for _, turn := range history[start:] {
			text := strings.TrimSpace(turn.Text)
			if text == "" {
				continue
			}
			role := ChatRoleAssistant
			if isCounterpart(turn.Sender) {
				role = ChatRoleUser
			}
			messages = append(messages, ChatMessage{Role: role, Content: text})
		}
	}
	return append(messages, ChatMessage{Role: ChatRoleUser, Content: latest})
}

// isCounterpart reports whether a history turn came from the external sender
// rather than from us.
func isCounterpart(sender string) bool {
	switch strings.ToLower(strings.TrimSpace(sender)) {
	case "bot", "assistant", "agent", "honeypot":
		return false
	default:
		return true
	}
}
