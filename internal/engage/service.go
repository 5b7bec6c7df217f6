package engage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scamtrap-ai/scamtrap/internal/intel"
	"github.com/scamtrap-ai/scamtrap/internal/llm"
	"github.com/scamtrap-ai/scamtrap/internal/observability/metrics"
	"github.com/scamtrap-ai/scamtrap/internal/session"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

// Replies used when there is nothing to work with. Surfacing an error would
// break the engagement illusion, so the persona plays confused instead.
const (
	emptyTextReply = "Hello? I cannot hear you."
	recoveredReply = "I am trying to follow your instructions, please wait."
	unknownSession = "unknown_session"
	statusSuccess  = "success"
)

// ReplyGenerator produces a victim reply. Implemented by llm.Orchestrator.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []llm.Turn, latest string) string
}

// Reporter delivers a Report to the external collector. Implementations are
// best-effort; Dispatch must never block the caller's reply path.
type Reporter interface {
	Dispatch(report Report)
}

// Service is the per-message decision logic: extract, accumulate, reply,
// and report at most once per conversation.
type Service struct {
	store         session.Store
	generator     ReplyGenerator
	reporter      Reporter
	lowThreshold  int
	highThreshold int
	logger        *logging.Logger
	metrics       *metrics.EngineMetrics
}

// NewService wires the engagement engine. lowThreshold gates reporting when
// critical intel (payment handle, bank account, or phone number) is present;
// highThreshold triggers on engagement volume alone.
func NewService(store session.Store, generator ReplyGenerator, reporter Reporter, lowThreshold, highThreshold int, logger *logging.Logger, m *metrics.EngineMetrics) *Service {
	if store == nil {
		panic("engage: session store cannot be nil")
	}
	if generator == nil {
		panic("engage: reply generator cannot be nil")
	}
	if lowThreshold <= 0 {
		lowThreshold = 3
	}
	if highThreshold < lowThreshold {
		highThreshold = 8
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:         store,
		generator:     generator,
		reporter:      reporter,
		lowThreshold:  lowThreshold,
		highThreshold: highThreshold,
		logger:        logger,
		metrics:       m,
	}
}

// HandleMessage runs the per-message pipeline and always returns a usable
// reply. Report dispatch happens on a detached goroutine and adds no latency
// here.
func (s *Service) HandleMessage(ctx context.Context, in Inbound) Response {
	start := time.Now()
	defer func() {
		s.metrics.ObserveReplyLatency(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(in.SessionID) == "" {
		in.SessionID = unknownSession
	}
	if strings.TrimSpace(in.Text) == "" {
		return Response{Status: statusSuccess, Reply: emptyTextReply}
	}

	extracted := intel.Extract(in.Text)
	s.metrics.ObserveMessage(extracted.Flagged)

	snap, err := s.store.Record(ctx, in.SessionID, extracted)
	if err != nil {
		// Keep the conversation alive; the evidence for this turn is lost but
		// the counterpart must not notice.
		s.logger.Error("failed to record message", "session_id", in.SessionID, "error", err)
	}

	reply := s.generator.GenerateReply(ctx, in.History, in.Text)

	if err == nil {
		s.evaluateReport(ctx, snap)
	}

	return Response{Status: statusSuccess, Reply: reply}
}

// Session exposes the accumulated state for the operator surface.
func (s *Service) Session(ctx context.Context, id string) (session.Snapshot, bool, error) {
	return s.store.Get(ctx, id)
}

// evaluateReport applies the trigger heuristic and dispatches at most once.
func (s *Service) evaluateReport(ctx context.Context, snap session.Snapshot) {
	if !s.shouldReport(snap) {
		return
	}

	won, err := s.store.MarkReported(ctx, snap.ID)
	if err != nil {
		s.logger.Error("failed to mark session reported", "session_id", snap.ID, "error", err)
		return
	}
	if !won {
		return
	}

	report := buildReport(snap)
	s.logger.Info("report triggered",
		"session_id", snap.ID,
		"messages", snap.MessageCount,
		"notes", report.AgentNotes,
	)

	if s.reporter == nil {
		return
	}
	// Fire-and-forget: the reply to the caller must not wait on the collector.
	go s.reporter.Dispatch(report)
}

func (s *Service) shouldReport(snap session.Snapshot) bool {
	if snap.MessageCount >= s.highThreshold {
		return true
	}
	return snap.Intel.HasCriticalIntel() && snap.MessageCount >= s.lowThreshold
}

func buildReport(snap session.Snapshot) Report {
	return Report{
		SessionID:              snap.ID,
		ScamDetected:           true,
		TotalMessagesExchanged: snap.MessageCount,
		ExtractedIntelligence: Intelligence{
			BankAccounts:       orEmpty(snap.Intel.BankAccounts),
			UPIIDs:             orEmpty(snap.Intel.UPIIDs),
			PhishingLinks:      orEmpty(snap.Intel.PhishingLinks),
			PhoneNumbers:       orEmpty(snap.Intel.PhoneNumbers),
			SuspiciousKeywords: orEmpty(snap.Intel.SuspiciousKeywords),
		},
		AgentNotes: buildNotes(snap.Intel),
	}
}

// buildNotes summarizes which indicator categories drove the detection.
func buildNotes(set intel.Set) string {
	categories := set.NonEmptyCategories()
	if len(categories) == 0 {
		return "Sustained engagement with no extractable payment vectors."
	}
	return fmt.Sprintf("Scam detected via: %s", strings.Join(categories, ", "))
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
