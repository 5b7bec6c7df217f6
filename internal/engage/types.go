package engage

import (
	"github.com/scamtrap-ai/scamtrap/internal/llm"
)

// Inbound is a normalized inbound message after tolerant decoding.
type Inbound struct {
	SessionID string
	Text      string
	History   []llm.Turn
}

// Response is the synchronous reply envelope returned to the caller.
type Response struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// Intelligence is the report's evidence block. Slices are always non-nil so
// the collector receives arrays, never null.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Report is the at-most-once payload sent to the external collector.
type Report struct {
	SessionID              string       `json:"sessionId"`
	ScamDetected           bool         `json:"scamDetected"`
	TotalMessagesExchanged int          `json:"totalMessagesExchanged"`
	ExtractedIntelligence  Intelligence `json:"extractedIntelligence"`
	AgentNotes             string       `json:"agentNotes"`
}
