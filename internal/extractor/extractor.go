package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dhyanakaruna/chat-parser/internal/anthropic"
)

const (
	// UnknownValue fills in sender/timestamp fields the source never stated.
	UnknownValue = "Unknown"

	maxResponseTokens = 4096
	temperature       = 0.1
	previewLen        = 300
)

// Record is one extracted chat message, before the store assigns identity.
type Record struct {
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// Result is the pipeline output. Fallback is set when the manual line
// parser produced the records instead of a model; Model names the candidate
// whose response was used, empty on the fallback path.
type Result struct {
	Records  []Record
	Fallback bool
	Model    string
}

// Extractor runs the transcript extraction pipeline: prompt construction,
// sequential multi-model completion attempts, response sanitization and
// parsing, and the manual line-parser fallback.
type Extractor struct {
	llm            *anthropic.Client
	models         []string
	attemptTimeout time.Duration
	maxChars       int // 0 = unlimited
	logger         *slog.Logger
}

func New(llm *anthropic.Client, models []string, attemptTimeout time.Duration, maxChars int, logger *slog.Logger) *Extractor {
	return &Extractor{
		llm:            llm,
		models:         models,
		attemptTimeout: attemptTimeout,
		maxChars:       maxChars,
		logger:         logger,
	}
}

// Extract processes a raw transcript and returns validated records.
func (e *Extractor) Extract(ctx context.Context, transcript string) (*Result, error) {
	text := strings.TrimSpace(transcript)
	if text == "" {
		return nil, fmt.Errorf("transcript is empty")
	}
	if e.maxChars > 0 && len(text) > e.maxChars {
		return nil, fmt.Errorf("transcript exceeds %d characters", e.maxChars)
	}

	raw, model, lastErr := e.attemptModels(ctx, text)

	if raw == "" {
		// No candidate produced anything. Last resort: pure line heuristics
		// on the original transcript, skipping the sanitize/parse stages.
		if records := ParseChatLines(text); len(records) > 0 {
			e.logger.Warn("all models failed, using manual line parser",
				"records", len(records),
				"last_error", lastErr,
			)
			return &Result{Records: records, Fallback: true}, nil
		}
		if errors.Is(lastErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("model request timed out and transcript could not be parsed manually: %w", lastErr)
		}
		if lastErr != nil {
			return nil, fmt.Errorf("all models failed: %w", lastErr)
		}
		if len(e.models) == 0 {
			return nil, fmt.Errorf("no completion models configured")
		}
		return nil, fmt.Errorf("all models returned empty responses")
	}

	records, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	e.logger.Info("extraction complete",
		"model", model,
		"records", len(records),
		"transcript_len", len(text),
	)

	return &Result{Records: records, Model: model}, nil
}

// attemptModels walks the candidate list in order, one completion call per
// candidate with its own timeout, and returns the first non-empty response.
// Per-attempt errors are logged and swallowed; only the last one is kept
// for the final failure message.
func (e *Extractor) attemptModels(ctx context.Context, text string) (raw, model string, lastErr error) {
	prompt := fmt.Sprintf(extractionUserPrompt, text)
	messages := []anthropic.Message{{Role: "user", Content: prompt}}

	for _, candidate := range e.models {
		attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		out, err := e.llm.Complete(attemptCtx, candidate, systemPrompt, messages, maxResponseTokens, temperature)
		cancel()

		if err != nil {
			e.logger.Warn("model attempt failed", "model", candidate, "error", err)
			lastErr = err
			continue
		}
		if strings.TrimSpace(out) == "" {
			e.logger.Warn("model returned empty response", "model", candidate)
			continue
		}
		return out, candidate, nil
	}
	return "", "", lastErr
}

// parseResponse turns raw model output into validated records: sanitize,
// strict JSON-array parse, then the key/value line-scan recovery.
func parseResponse(raw string) ([]Record, error) {
	candidate := sanitizeResponse(raw)

	// Only a top-level array is acceptable; a valid object or scalar is a
	// shape error, anything else goes through the key/value recovery.
	if json.Valid([]byte(candidate)) && !strings.HasPrefix(candidate, "[") {
		return nil, fmt.Errorf("expected an array of messages")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &elements); err != nil {
		if records := recoverKeyValues(raw); len(records) > 0 {
			return records, nil
		}
		return nil, fmt.Errorf("could not parse model response (%s): %s", diagnoseResponse(raw), preview(raw))
	}

	records := make([]Record, 0, len(elements))
	for i, el := range elements {
		var obj map[string]any
		if err := json.Unmarshal(el, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("message at index %d is not an object", i)
		}
		records = append(records, normalizeRecord(Record{
			Sender:    stringField(obj, "sender"),
			Timestamp: stringField(obj, "timestamp"),
			Message:   stringField(obj, "message"),
		}))
	}
	return records, nil
}

var (
	reKVSender    = regexp.MustCompile(`"sender"\s*:\s*"([^"]*)"`)
	reKVTimestamp = regexp.MustCompile(`"timestamp"\s*:\s*"([^"]*)"`)
	reKVMessage   = regexp.MustCompile(`"message"\s*:\s*"([^"]*)"`)
)

// recoverKeyValues scans unparseable model output line by line for quoted
// sender/timestamp/message pairs, assembling partial records from whatever
// keys each line carries.
func recoverKeyValues(raw string) []Record {
	var records []Record
	for _, line := range strings.Split(raw, "\n") {
		var rec Record
		var found bool
		if m := reKVSender.FindStringSubmatch(line); m != nil {
			rec.Sender = m[1]
			found = true
		}
		if m := reKVTimestamp.FindStringSubmatch(line); m != nil {
			rec.Timestamp = m[1]
			found = true
		}
		if m := reKVMessage.FindStringSubmatch(line); m != nil {
			rec.Message = m[1]
			found = true
		}
		if found {
			records = append(records, normalizeRecord(rec))
		}
	}
	return records
}

// diagnoseResponse classifies why a response failed strict parsing, for the
// error message shown to the caller.
func diagnoseResponse(raw string) string {
	switch {
	case strings.Contains(raw, "```"):
		return "response contains markdown code fencing"
	case !strings.Contains(raw, "[") || !strings.Contains(raw, "]"):
		return "response lacks JSON array brackets"
	default:
		return "response is structurally malformed JSON"
	}
}

func preview(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > previewLen {
		return s[:previewLen] + "..."
	}
	return s
}

// normalizeRecord applies the field defaults: sender and timestamp fall
// back to "Unknown", message to the empty string.
func normalizeRecord(r Record) Record {
	r.Sender = strings.TrimSpace(r.Sender)
	r.Timestamp = strings.TrimSpace(r.Timestamp)
	r.Message = strings.TrimSpace(r.Message)
	if r.Sender == "" {
		r.Sender = UnknownValue
	}
	if r.Timestamp == "" {
		r.Timestamp = UnknownValue
	}
	return r
}

// stringField pulls a JSON value out as a string. Absent, null and empty
// values come back "" so normalizeRecord can apply defaults; non-string
// scalars are rendered rather than dropped.
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
