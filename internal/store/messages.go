package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhyanakaruna/chat-parser/internal/extractor"
)

// ChatMessage is the persisted record. ID and CreatedAt are owned by the
// store; the remaining fields come from the extraction pipeline.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Timestamp string    `json:"timestamp"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// InsertMessages persists one upload's records as a single transaction.
// CreatedAt is assigned here, strictly non-decreasing within the batch so
// the createdAt-descending read order stays stable.
func (s *Store) InsertMessages(ctx context.Context, records []extractor.Record) ([]ChatMessage, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	base := time.Now().UTC()
	messages := make([]ChatMessage, 0, len(records))
	for i, rec := range records {
		msg := ChatMessage{
			ID:        uuid.New(),
			Sender:    rec.Sender,
			Timestamp: rec.Timestamp,
			Message:   rec.Message,
			CreatedAt: base.Add(time.Duration(i) * time.Microsecond),
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_messages (id, sender, msg_timestamp, message, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			msg.ID, msg.Sender, msg.Timestamp, msg.Message, msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert message %d: %w", i, err)
		}
		messages = append(messages, msg)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return messages, nil
}

// ListMessages returns stored messages newest first. A non-empty sender
// filters by case-insensitive substring match.
func (s *Store) ListMessages(ctx context.Context, sender string) ([]ChatMessage, error) {
	query := `
		SELECT id, sender, msg_timestamp, message, created_at
		FROM chat_messages
		ORDER BY created_at DESC`
	args := []any{}

	if sender != "" {
		query = `
			SELECT id, sender, msg_timestamp, message, created_at
			FROM chat_messages
			WHERE sender ILIKE '%' || $1 || '%'
			ORDER BY created_at DESC`
		args = append(args, sender)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.Sender, &m.Timestamp, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
