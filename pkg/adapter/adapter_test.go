package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zen-systems/askcmd/pkg/config"
)

const chatCompletionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1,
  "model": "test-model",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "  ls -la \n"}, "finish_reason": "stop"}]
}`

type recordedRequest struct {
	Path   string
	Header http.Header
	Body   map[string]any
}

// newServer returns a test server replying with status and body, and a
// counter of requests it received.
func newServer(t *testing.T, status int, body string, last *recordedRequest) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if last != nil {
			raw, _ := io.ReadAll(r.Body)
			last.Path = r.URL.Path
			last.Header = r.Header.Clone()
			last.Body = map[string]any{}
			_ = json.Unmarshal(raw, &last.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestDeepSeekTrimsResponseAndSendsParameters(t *testing.T) {
	var req recordedRequest
	srv, calls := newServer(t, http.StatusOK, chatCompletionBody, &req)

	a, err := NewDeepSeekAdapter(Settings{
		APIKey:      "ds-key",
		BaseURL:     srv.URL + "/v1",
		Model:       "deepseek-chat",
		Temperature: 0.3,
		MaxTokens:   2000,
	}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	got, err := a.Query(context.Background(), "list files")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != "ls -la" {
		t.Fatalf("expected trimmed command, got %q", got)
	}
	if *calls != 1 {
		t.Fatalf("expected one request, got %d", *calls)
	}
	if req.Path != "/v1/chat/completions" {
		t.Fatalf("unexpected path %q", req.Path)
	}
	if auth := req.Header.Get("Authorization"); auth != "Bearer ds-key" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if req.Body["model"] != "deepseek-chat" {
		t.Fatalf("unexpected model %v", req.Body["model"])
	}
	if req.Body["temperature"] != 0.3 {
		t.Fatalf("unexpected temperature %v", req.Body["temperature"])
	}
	if req.Body["max_tokens"] != float64(2000) {
		t.Fatalf("unexpected max_tokens %v", req.Body["max_tokens"])
	}
}

func TestOpenAIReturnsContentUntrimmed(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, chatCompletionBody, nil)

	a, err := NewOpenAIAdapter(Settings{APIKey: "oa-key", BaseURL: srv.URL, Model: "gpt-3.5-turbo"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	got, err := a.Query(context.Background(), "list files")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != "  ls -la \n" {
		t.Fatalf("expected raw content, got %q", got)
	}
}

func TestOpenAIAuthenticationFailure(t *testing.T) {
	srv, calls := newServer(t, http.StatusUnauthorized,
		`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`, nil)

	core, logs := observer.New(zap.ErrorLevel)
	a, err := NewOpenAIAdapter(Settings{APIKey: "bad", BaseURL: srv.URL, Model: "gpt-3.5-turbo"}, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	_, err = a.Query(context.Background(), "list files")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	var adapterErr *Error
	if !errors.As(err, &adapterErr) || adapterErr.Status != http.StatusUnauthorized || adapterErr.Adapter != "openai" {
		t.Fatalf("unexpected error details: %#v", adapterErr)
	}
	if *calls != 1 {
		t.Fatalf("expected exactly one request, got %d", *calls)
	}
	if logs.FilterMessage("Invalid OpenAI API key").Len() != 1 {
		t.Fatalf("expected diagnostic log line, got %v", logs.All())
	}
}

func TestRateLimitIsNotRetried(t *testing.T) {
	srv, calls := newServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"}}`, nil)

	a, err := NewDeepSeekAdapter(Settings{APIKey: "ds-key", BaseURL: srv.URL, Model: "deepseek-chat"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	_, err = a.Query(context.Background(), "list files")
	if !errors.Is(err, ErrRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected no retries, got %d requests", *calls)
	}
}

func TestOpenAINoChoices(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`, nil)

	a, err := NewOpenAIAdapter(Settings{APIKey: "oa-key", BaseURL: srv.URL, Model: "gpt-3.5-turbo"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	_, err = a.Query(context.Background(), "list files")
	var adapterErr *Error
	if !errors.As(err, &adapterErr) || adapterErr.Kind != KindEmpty {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestAnthropicReturnsFirstTextBlock(t *testing.T) {
	var req recordedRequest
	srv, _ := newServer(t, http.StatusOK, `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-haiku-20240307",
  "content": [{"type": "text", "text": "ls -la"}, {"type": "text", "text": "ignored"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 3}
}`, &req)

	a, err := NewAnthropicAdapter(Settings{
		APIKey:    "ant-key",
		BaseURL:   srv.URL,
		Model:     "claude-3-haiku-20240307",
		MaxTokens: 2000,
	}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	got, err := a.Query(context.Background(), "list files")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != "ls -la" {
		t.Fatalf("unexpected content %q", got)
	}
	if req.Body["max_tokens"] != float64(2000) {
		t.Fatalf("expected explicit max token cap, got %v", req.Body["max_tokens"])
	}
	if key := req.Header.Get("X-Api-Key"); key != "ant-key" {
		t.Fatalf("unexpected api key header %q", key)
	}
}

func TestAnthropicAuthenticationFailure(t *testing.T) {
	srv, calls := newServer(t, http.StatusUnauthorized,
		`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`, nil)

	a, err := NewAnthropicAdapter(Settings{APIKey: "bad", BaseURL: srv.URL, Model: "claude-3-haiku-20240307"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	_, err = a.Query(context.Background(), "list files")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected exactly one request, got %d", *calls)
	}
}

func TestGoogleReturnsText(t *testing.T) {
	var req recordedRequest
	srv, _ := newServer(t, http.StatusOK,
		`{"candidates": [{"content": {"role": "model", "parts": [{"text": "ls -la"}]}}]}`, &req)

	a, err := NewGoogleAdapter(Settings{APIKey: "g-key", BaseURL: srv.URL, Model: "gemini-pro", Temperature: 0.3}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	got, err := a.Query(context.Background(), "list files")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != "ls -la" {
		t.Fatalf("unexpected content %q", got)
	}
	if !strings.HasSuffix(req.Path, "models/gemini-pro:generateContent") {
		t.Fatalf("unexpected path %q", req.Path)
	}
	gen, _ := req.Body["generationConfig"].(map[string]any)
	if gen == nil || gen["temperature"] == nil {
		t.Fatalf("expected construction-time temperature in request, got %v", req.Body)
	}
}

func TestGoogleRateLimit(t *testing.T) {
	srv, _ := newServer(t, http.StatusTooManyRequests,
		`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`, nil)

	a, err := NewGoogleAdapter(Settings{APIKey: "g-key", BaseURL: srv.URL, Model: "gemini-pro"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	_, err = a.Query(context.Background(), "list files")
	if !errors.Is(err, ErrRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestConstructorsRequireAPIKey(t *testing.T) {
	if _, err := NewDeepSeekAdapter(Settings{}); err == nil {
		t.Fatalf("deepseek: expected error")
	}
	if _, err := NewOpenAIAdapter(Settings{}); err == nil {
		t.Fatalf("openai: expected error")
	}
	if _, err := NewGoogleAdapter(Settings{}); err == nil {
		t.Fatalf("google: expected error")
	}
	if _, err := NewAnthropicAdapter(Settings{}); err == nil {
		t.Fatalf("anthropic: expected error")
	}
}

func TestNewResolvesSettings(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAIAPIKey = "oa-key"

	temp := 0.0
	a, err := New(config.OpenAI, cfg, Overrides{Model: "gpt-4o-mini", Temperature: &temp})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.Name() != "openai" || a.Model() != "gpt-4o-mini" {
		t.Fatalf("unexpected adapter %s/%s", a.Name(), a.Model())
	}

	s := SettingsFor(config.OpenAI, cfg, Overrides{Temperature: &temp})
	if s.Temperature != 0 || s.MaxTokens != cfg.MaxTokens || s.Model != cfg.OpenAIModel {
		t.Fatalf("unexpected settings %+v", s)
	}

	s = SettingsFor(config.Claude, cfg, Overrides{Model: "opus"})
	if s.Model != "claude-3-opus-20240229" {
		t.Fatalf("alias not resolved: %q", s.Model)
	}

	if _, err := New(config.Claude, cfg, Overrides{}); err == nil {
		t.Fatalf("expected error for adapter without key")
	}
	if _, err := New(config.AdapterName("mock"), cfg, Overrides{}); err == nil {
		t.Fatalf("expected error for unknown adapter")
	}
}

type countingTransport struct {
	base  http.RoundTripper
	calls int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.base.RoundTrip(r)
}

func TestAdaptersUseSuppliedHTTPClient(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, chatCompletionBody, nil)

	tests := []struct {
		name string
		new  func(Settings, ...Option) (Adapter, error)
	}{
		{"deepseek", func(s Settings, o ...Option) (Adapter, error) { return NewDeepSeekAdapter(s, o...) }},
		{"openai", func(s Settings, o ...Option) (Adapter, error) { return NewOpenAIAdapter(s, o...) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &countingTransport{base: srv.Client().Transport}
			a, err := tt.new(Settings{APIKey: "k", BaseURL: srv.URL, Model: "m"},
				WithHTTPClient(&http.Client{Transport: transport}))
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			if _, err := a.Query(context.Background(), "list files"); err != nil {
				t.Fatalf("query: %v", err)
			}
			if got := atomic.LoadInt32(&transport.calls); got != 1 {
				t.Fatalf("expected the supplied client to carry 1 request, got %d", got)
			}
		})
	}
}
