package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dhyanakaruna/chat-parser/internal/config"
	"github.com/dhyanakaruna/chat-parser/internal/processor"
	"github.com/dhyanakaruna/chat-parser/internal/store"
)

// Server owns the HTTP surface. store and proc may be nil when the process
// is missing configuration; affected endpoints then answer 500 per request
// instead of the process refusing to start.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	store  *store.Store
	proc   *processor.Processor
	logger *slog.Logger
}

func NewServer(cfg config.Config, db *store.Store, proc *processor.Processor, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		cfg:    cfg,
		store:  db,
		proc:   proc,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Post("/api/v1/messages/upload", s.uploadTranscript)
	router.Get("/api/v1/messages", s.listMessages)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError answers with {"error": msg}; outside production the
// underlying error rides along in a details field.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil && !s.cfg.Production() {
		body["details"] = err.Error()
	}
	writeJSON(w, status, body)
}
