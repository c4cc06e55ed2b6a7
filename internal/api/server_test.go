package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhyanakaruna/chat-parser/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		Port:            8460,
		Environment:     "development",
		AnthropicAPIKey: "sk-test",
		MaxUploadBytes:  1024 * 1024,
		MaxContentChars: 50000,
	}
}

// newTestServer builds a server with no store and no processor, which is
// exactly the misconfigured-deployment shape the handlers must survive.
func newTestServer(cfg config.Config) *Server {
	return NewServer(cfg, nil, nil, discardLogger())
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, srv *Server, field, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, filename, content)
	req := httptest.NewRequest("POST", "/api/v1/messages/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(testConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestUpload_NoFile(t *testing.T) {
	srv := newTestServer(testConfig())

	w := doUpload(t, srv, "attachment", "chat.txt", "Alice: hi")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "no file uploaded" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestUpload_WrongExtension(t *testing.T) {
	srv := newTestServer(testConfig())

	w := doUpload(t, srv, "file", "chat.pdf", "Alice: hi")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "only .txt files are accepted" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestUpload_UppercaseExtensionAccepted(t *testing.T) {
	// Passes extension validation, then hits the config check. A 500 here
	// proves .TXT was not rejected as a bad extension.
	cfg := testConfig()
	cfg.AnthropicAPIKey = ""
	srv := newTestServer(cfg)

	w := doUpload(t, srv, "file", "CHAT.TXT", "Alice: hi")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestUpload_EmptyFile(t *testing.T) {
	// Empty file is a 400 even with no API key and no database: file
	// validation runs before the configuration checks.
	cfg := testConfig()
	cfg.AnthropicAPIKey = ""
	srv := newTestServer(cfg)

	w := doUpload(t, srv, "file", "chat.txt", "   \n\t ")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "uploaded file is empty" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestUpload_FileTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 10
	srv := newTestServer(cfg)

	w := doUpload(t, srv, "file", "chat.txt", "Alice: this file body is past ten bytes")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if errMsg, _ := body["error"].(string); !strings.Contains(errMsg, "byte limit") {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestUpload_ContentTooLong(t *testing.T) {
	cfg := testConfig()
	cfg.MaxContentChars = 10
	srv := newTestServer(cfg)

	w := doUpload(t, srv, "file", "chat.txt", "Alice: this is well over ten characters")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if errMsg, _ := body["error"].(string); !strings.Contains(errMsg, "exceeds 10 characters") {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestUpload_MissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.AnthropicAPIKey = ""
	srv := newTestServer(cfg)

	w := doUpload(t, srv, "file", "chat.txt", "Alice: Hello there")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "model API key is not configured" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestUpload_MissingDatabase(t *testing.T) {
	srv := newTestServer(testConfig())

	w := doUpload(t, srv, "file", "chat.txt", "Alice: Hello there")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "database is not configured" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestListMessages_SenderTooLong(t *testing.T) {
	srv := newTestServer(testConfig())

	req := httptest.NewRequest("GET", "/api/v1/messages?sender="+strings.Repeat("a", 101), nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "sender filter is too long" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestListMessages_MissingDatabase(t *testing.T) {
	srv := newTestServer(testConfig())

	req := httptest.NewRequest("GET", "/api/v1/messages", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestErrorDetails_HiddenInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	srv := newTestServer(cfg)

	w := doUpload(t, srv, "attachment", "chat.txt", "Alice: hi")
	body := decodeBody(t, w)
	if _, ok := body["details"]; ok {
		t.Error("details must not leak in production")
	}
}

func TestErrorDetails_PresentInDevelopment(t *testing.T) {
	srv := newTestServer(testConfig())

	w := doUpload(t, srv, "attachment", "chat.txt", "Alice: hi")
	body := decodeBody(t, w)
	if _, ok := body["details"]; !ok {
		t.Error("expected details field outside production")
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(testConfig())

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
