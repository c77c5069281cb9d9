package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyHTTP(t *testing.T) {
	base := errors.New("api failure")

	tests := []struct {
		name      string
		status    int
		detail    string
		transient bool
		policy    bool
	}{
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", true, false},
		{"server error", http.StatusInternalServerError, "server_error", true, false},
		{"bad gateway", http.StatusBadGateway, "", true, false},
		{"request timeout", http.StatusRequestTimeout, "", true, false},
		{"content policy", http.StatusBadRequest, "content_policy_violation", false, true},
		{"content filter", http.StatusBadRequest, "blocked by content_filter", false, true},
		{"moderation", http.StatusForbidden, "flagged by moderation", false, true},
		{"plain bad request", http.StatusBadRequest, "invalid_request_error missing field", false, false},
		{"auth failure", http.StatusUnauthorized, "invalid api key", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyHTTP(tt.status, tt.detail, base)
			if got := IsTransient(err); got != tt.transient {
				t.Errorf("IsTransient = %v, want %v", got, tt.transient)
			}
			if got := IsPolicy(err); got != tt.policy {
				t.Errorf("IsPolicy = %v, want %v", got, tt.policy)
			}
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("root cause")

	if !errors.Is(&TransientError{Err: fmt.Errorf("wrap: %w", base)}, base) {
		t.Error("TransientError should unwrap to the root cause")
	}
	if !errors.Is(&PolicyError{Err: base}, base) {
		t.Error("PolicyError should unwrap to the root cause")
	}
}

func TestNewProvider_Factory(t *testing.T) {
	tests := []struct {
		provider string
		config   Config
		wantErr  bool
		wantName string
	}{
		{"openai", Config{Provider: "openai", APIKey: "k"}, false, "openai"},
		{"anthropic", Config{Provider: "anthropic", APIKey: "k"}, false, "anthropic"},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, false, "anthropic"},
		{"ollama", Config{Provider: "ollama"}, false, "ollama"},
		{"unknown", Config{Provider: "bard"}, true, ""},
		{"empty", Config{}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tt.wantName)
			}
		})
	}
}
