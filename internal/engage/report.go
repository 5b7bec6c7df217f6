package engage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scamtrap-ai/scamtrap/internal/observability/metrics"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

// ReportDispatcher POSTs reports to the external collector. Delivery is
// best-effort: one attempt with a short deadline, failures logged and
// dropped, never retried and never surfaced to the conversation.
type ReportDispatcher struct {
	client  *http.Client
	url     string
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.EngineMetrics
}

// NewReportDispatcher creates a dispatcher for the collector URL. An empty
// URL disables dispatch (reports are logged only).
func NewReportDispatcher(url string, timeout time.Duration, logger *logging.Logger, m *metrics.EngineMetrics) *ReportDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportDispatcher{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Dispatch implements Reporter. It runs on its own detached deadline so a
// cancelled inbound request cannot abort an already-triggered report.
func (d *ReportDispatcher) Dispatch(report Report) {
	if d.url == "" {
		d.logger.Warn("collector url not configured, dropping report", "session_id", report.SessionID)
		d.metrics.ObserveReport("dropped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.post(ctx, report); err != nil {
		d.logger.Error("report dispatch failed",
			"session_id", report.SessionID,
			"error", err,
		)
		d.metrics.ObserveReport("failed")
		return
	}

	d.logger.Info("report dispatched",
		"session_id", report.SessionID,
		"messages", report.TotalMessagesExchanged,
	)
	d.metrics.ObserveReport("sent")
}

func (d *ReportDispatcher) post(ctx context.Context, report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("engage: failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("engage: failed to build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("engage: collector request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("engage: collector returned status %d", resp.StatusCode)
	}
	return nil
}
