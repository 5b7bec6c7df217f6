package engage

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

func sampleReport() Report {
	return Report{
		SessionID:              "conv-9",
		ScamDetected:           true,
		TotalMessagesExchanged: 5,
		ExtractedIntelligence: Intelligence{
			BankAccounts:       []string{},
			UPIIDs:             []string{"scammer@okaxis"},
			PhishingLinks:      []string{},
			PhoneNumbers:       []string{},
			SuspiciousKeywords: []string{"urgent"},
		},
		AgentNotes: "Scam detected via: upiIds, suspiciousKeywords",
	}
}

func TestDispatchPostsJSONReport(t *testing.T) {
	received := make(chan Report, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var report Report
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			t.Errorf("failed to decode report: %v", err)
		}
		received <- report
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewReportDispatcher(srv.URL, time.Second, logging.NewWithWriter("error", io.Discard), nil)
	d.Dispatch(sampleReport())

	select {
	case report := <-received:
		if report.SessionID != "conv-9" || !report.ScamDetected {
			t.Fatalf("malformed report on the wire: %+v", report)
		}
		if len(report.ExtractedIntelligence.UPIIDs) != 1 {
			t.Fatalf("intelligence lost in transit: %+v", report.ExtractedIntelligence)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("collector never received the report")
	}
}

func TestDispatchDoesNotRetryOnCollectorError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewReportDispatcher(srv.URL, time.Second, logging.NewWithWriter("error", io.Discard), nil)
	d.Dispatch(sampleReport())

	if got := hits.Load(); got != 1 {
		t.Fatalf("expected exactly one delivery attempt, got %d", got)
	}
}

func TestDispatchWithoutCollectorURLDropsQuietly(t *testing.T) {
	d := NewReportDispatcher("", time.Second, logging.NewWithWriter("error", io.Discard), nil)
	// Must not panic or block.
	d.Dispatch(sampleReport())
}

func TestDispatchHonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	d := NewReportDispatcher(srv.URL, 50*time.Millisecond, logging.NewWithWriter("error", io.Discard), nil)

	start := time.Now()
	d.Dispatch(sampleReport())
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("dispatch blocked past its deadline: %v", elapsed)
	}
}
