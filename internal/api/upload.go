package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// uploadTranscript handles POST /api/v1/messages/upload.
//
// File validations run first, each answering 400 on its own; configuration
// is only checked once the file itself is acceptable, so an empty upload
// gets its 400 even on a misconfigured deployment. The manual parser is
// never run ahead of the model stage: a valid file with no API key is a
// 500, not a silent degradation.
func (s *Server) uploadTranscript(w http.ResponseWriter, r *http.Request) {
	// Slack over the content ceiling covers multipart framing overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+64*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxUploadBytes), nil)
			return
		}
		s.writeError(w, http.StatusBadRequest, "no file uploaded", err)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".txt") {
		s.writeError(w, http.StatusBadRequest, "only .txt files are accepted", nil)
		return
	}

	if header.Size > s.cfg.MaxUploadBytes {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxUploadBytes), nil)
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read uploaded file", err)
		return
	}

	content := string(raw)
	if strings.TrimSpace(content) == "" {
		s.writeError(w, http.StatusBadRequest, "uploaded file is empty", nil)
		return
	}

	if s.cfg.MaxContentChars > 0 && len(content) > s.cfg.MaxContentChars {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("file content exceeds %d characters", s.cfg.MaxContentChars), nil)
		return
	}

	if s.cfg.AnthropicAPIKey == "" {
		s.writeError(w, http.StatusInternalServerError, "model API key is not configured", nil)
		return
	}
	if s.store == nil || s.proc == nil {
		s.writeError(w, http.StatusInternalServerError, "database is not configured", nil)
		return
	}

	result, err := s.proc.ProcessUpload(r.Context(), header.Filename, content)
	if err != nil {
		s.logger.Error("upload processing failed", "filename", header.Filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to process transcript", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("extracted %d messages", len(result.Messages)),
		"data":     result.Messages,
		"count":    len(result.Messages),
		"fallback": result.Fallback,
		"model":    result.Model,
	})
}
