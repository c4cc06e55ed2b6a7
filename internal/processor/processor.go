package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhyanakaruna/chat-parser/internal/extractor"
	"github.com/dhyanakaruna/chat-parser/internal/hermes"
	"github.com/dhyanakaruna/chat-parser/internal/store"
)

// Processor ties an upload's lifecycle together: extraction, persistence,
// and the optional processed-event notification.
type Processor struct {
	store     *store.Store
	extractor *extractor.Extractor
	hermes    *hermes.Client // nil when NATS is not configured
	logger    *slog.Logger
}

// Result is what an upload produced once persisted.
type Result struct {
	Messages []store.ChatMessage
	Fallback bool
	Model    string
}

func New(s *store.Store, ext *extractor.Extractor, h *hermes.Client, logger *slog.Logger) *Processor {
	return &Processor{
		store:     s,
		extractor: ext,
		hermes:    h,
		logger:    logger,
	}
}

// ProcessUpload runs one transcript through the extraction pipeline and
// persists the result. No partial state survives a failure: extraction has
// no side effects and the insert is a single transaction.
func (p *Processor) ProcessUpload(ctx context.Context, filename, content string) (*Result, error) {
	extracted, err := p.extractor.Extract(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extract transcript: %w", err)
	}

	messages, err := p.store.InsertMessages(ctx, extracted.Records)
	if err != nil {
		return nil, fmt.Errorf("persist messages: %w", err)
	}

	p.logger.Info("transcript processed",
		"filename", filename,
		"messages", len(messages),
		"fallback", extracted.Fallback,
		"model", extracted.Model,
	)

	if p.hermes != nil {
		evt := hermes.TranscriptProcessed{
			Filename:     filename,
			MessageCount: len(messages),
			Fallback:     extracted.Fallback,
			Model:        extracted.Model,
			ProcessedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := p.hermes.Publish(hermes.SubjectTranscriptProcessed, evt); err != nil {
			p.logger.Warn("failed to publish processed event", "filename", filename, "error", err)
		}
	}

	return &Result{
		Messages: messages,
		Fallback: extracted.Fallback,
		Model:    extracted.Model,
	}, nil
}
