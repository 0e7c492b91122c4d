package ai

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/config"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestGenerateOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header")
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"extracted"}}]}`))
	}))
	defer srv.Close()

	c := NewLLMClient(config.LLMConfig{
		Provider: "openai",
		Endpoint: srv.URL,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
	}, testLogger)

	out, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "extracted" {
		t.Errorf("expected 'extracted', got %q", out)
	}
}

func TestGenerateRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	c := NewLLMClient(config.LLMConfig{
		Provider: "openai",
		Endpoint: srv.URL,
		APIKey:   "sk-test",
	}, testLogger)

	_, err := c.Generate(context.Background(), "prompt")
	if !types.IsRateLimit(err) {
		t.Errorf("expected rate-limit classification, got %v", err)
	}
}

func TestGenerateOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"response":"local output"}`))
	}))
	defer srv.Close()

	c := NewLLMClient(config.LLMConfig{
		Provider: "ollama",
		Endpoint: srv.URL,
		Model:    "llama3",
	}, testLogger)

	out, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "local output" {
		t.Errorf("expected 'local output', got %q", out)
	}
}

func TestGenerateUnknownProvider(t *testing.T) {
	c := NewLLMClient(config.LLMConfig{Provider: "gemini"}, testLogger)
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestExtractJSONArray(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`[{"a":1}]`, `[{"a":1}]`},
		{"Here you go:\n```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{`prefix [1, [2, 3]] suffix`, `[1, [2, 3]]`},
		{`[{"t":"a ] b"}] rest`, `[{"t":"a ] b"}]`},
		{`no array here`, `[]`},
		{`[unterminated`, `[]`},
	}
	for _, tc := range cases {
		if got := ExtractJSONArray(tc.in); got != tc.want {
			t.Errorf("ExtractJSONArray(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
