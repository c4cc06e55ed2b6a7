package api

import (
	"net/http"

	"github.com/dhyanakaruna/chat-parser/internal/store"
)

const maxSenderFilterLen = 100

// listMessages handles GET /api/v1/messages?sender=.
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	sender := r.URL.Query().Get("sender")
	if len(sender) > maxSenderFilterLen {
		s.writeError(w, http.StatusBadRequest, "sender filter is too long", nil)
		return
	}

	if s.store == nil {
		s.writeError(w, http.StatusInternalServerError, "database is not configured", nil)
		return
	}

	messages, err := s.store.ListMessages(r.Context(), sender)
	if err != nil {
		s.logger.Error("failed to list messages", "sender", sender, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to fetch messages", err)
		return
	}
	if messages == nil {
		messages = []store.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    messages,
		"count":   len(messages),
	})
}
