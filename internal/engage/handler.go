package engage

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scamtrap-ai/scamtrap/internal/llm"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

// Handler wires HTTP requests to the engagement service.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an engagement handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// inboundEvent mirrors the caller's payload. Message is kept raw because
// senders deliver it either as an object or as a bare string.
type inboundEvent struct {
	SessionID    string          `json:"sessionId"`
	SessionIDAlt string          `json:"session_id"`
	Message      json.RawMessage `json:"message"`
	History      []historyItem   `json:"conversationHistory"`
}

type historyItem struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type messageObject struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Entry handles POST /honey-pot-entry. A syntactically broken body still gets
// a bland in-persona reply; the counterpart must never see an error.
func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	var event inboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Warn("undecodable inbound body", "error", err)
		h.writeJSON(w, Response{Status: statusSuccess, Reply: recoveredReply})
		return
	}

	resp := h.service.HandleMessage(r.Context(), normalize(event))
	h.writeJSON(w, resp)
}

// Session handles GET /sessions/{sessionID}: the operator view of what has
// been collected so far.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	snap, ok, err := h.service.Session(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"sessionId":             snap.ID,
		"totalMessages":         snap.MessageCount,
		"reported":              snap.Reported,
		"extractedIntelligence": snap.Intel,
	}); err != nil {
		h.logger.Error("failed to write session response", "error", err)
	}
}

func normalize(event inboundEvent) Inbound {
	sessionID := event.SessionID
	if strings.TrimSpace(sessionID) == "" {
		sessionID = event.SessionIDAlt
	}

	text := decodeMessageText(event.Message)

	history := make([]llm.Turn, 0, len(event.History))
	for _, item := range event.History {
		history = append(history, llm.Turn{Sender: item.Sender, Text: item.Text})
	}

	return Inbound{SessionID: sessionID, Text: text, History: history}
}

// decodeMessageText accepts {"text": ...} objects and bare strings.
func decodeMessageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var obj messageObject
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Text != "" {
		return obj.Text
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
