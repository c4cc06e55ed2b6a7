package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port            int
	Environment     string
	LogLevel        string
	DatabaseURL     string
	NatsURL         string
	NatsToken       string
	AnthropicAPIKey string
	Models          []string
	AttemptTimeout  int // seconds, per completion attempt
	MaxUploadBytes  int64
	MaxContentChars int // 0 = unlimited
}

func Load() Config {
	return Config{
		Port:            envInt("CHATPARSER_PORT", 8460),
		Environment:     envStr("APP_ENV", "development"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		Models: envList("CHATPARSER_MODELS", []string{
			"claude-3-5-haiku-20241022",
			"claude-sonnet-4-20250514",
			"claude-opus-4-1-20250805",
		}),
		AttemptTimeout:  envInt("CHATPARSER_ATTEMPT_TIMEOUT_SECS", 25),
		MaxUploadBytes:  int64(envInt("CHATPARSER_MAX_UPLOAD_BYTES", 2*1024*1024)),
		MaxContentChars: envInt("CHATPARSER_MAX_CONTENT_CHARS", 50000),
	}
}

func (c Config) Production() bool {
	return c.Environment == "production"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
