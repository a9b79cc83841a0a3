package router

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zen-systems/askcmd/pkg/adapter"
	"github.com/zen-systems/askcmd/pkg/config"
)

type constructRecorder struct {
	calls []config.AdapterName
	fail  map[config.AdapterName]error
}

func (r *constructRecorder) construct(_ context.Context, name config.AdapterName) (adapter.Adapter, error) {
	r.calls = append(r.calls, name)
	if err := r.fail[name]; err != nil {
		return nil, err
	}
	return adapter.NewMockAdapter(string(name), "echo ok"), nil
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name         string
		keys         map[config.AdapterName]string
		fail         map[config.AdapterName]error
		requested    config.AdapterName
		wantAdapter  config.AdapterName
		wantFallback bool
		wantErr      bool
		wantCalls    []config.AdapterName
	}{
		{
			name:        "requested available",
			keys:        map[config.AdapterName]string{config.DeepSeek: "k", config.Gemini: "k"},
			requested:   config.DeepSeek,
			wantAdapter: config.DeepSeek,
			wantCalls:   []config.AdapterName{config.DeepSeek},
		},
		{
			name:         "requested missing key falls back",
			keys:         map[config.AdapterName]string{config.Gemini: "k"},
			requested:    config.DeepSeek,
			wantAdapter:  config.Gemini,
			wantFallback: true,
			wantCalls:    []config.AdapterName{config.Gemini},
		},
		{
			name:         "requested construction failure falls back",
			keys:         map[config.AdapterName]string{config.OpenAI: "k", config.Gemini: "k"},
			fail:         map[config.AdapterName]error{config.OpenAI: errors.New("boom")},
			requested:    config.OpenAI,
			wantAdapter:  config.Gemini,
			wantFallback: true,
			wantCalls:    []config.AdapterName{config.OpenAI, config.Gemini},
		},
		{
			name:      "both unavailable",
			keys:      map[config.AdapterName]string{},
			requested: config.DeepSeek,
			wantErr:   true,
		},
		{
			name:      "fallback construction fails",
			keys:      map[config.AdapterName]string{config.Gemini: "k"},
			fail:      map[config.AdapterName]error{config.Gemini: errors.New("boom")},
			requested: config.Claude,
			wantErr:   true,
			wantCalls: []config.AdapterName{config.Gemini},
		},
		{
			name:      "requested is the fallback",
			keys:      map[config.AdapterName]string{config.DeepSeek: "k"},
			requested: config.Gemini,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.DeepSeekAPIKey = tt.keys[config.DeepSeek]
			cfg.OpenAIAPIKey = tt.keys[config.OpenAI]
			cfg.GoogleAPIKey = tt.keys[config.Gemini]
			cfg.AnthropicAPIKey = tt.keys[config.Claude]

			rec := &constructRecorder{fail: tt.fail}
			sel, err := NewSelector(cfg, rec.construct).Select(context.Background(), tt.requested)

			if tt.wantErr {
				if !errors.Is(err, ErrNoAdapter) {
					t.Fatalf("expected ErrNoAdapter, got %v", err)
				}
			} else {
				if err != nil {
					t.Fatalf("select: %v", err)
				}
				if sel.Name != tt.wantAdapter || sel.Adapter.Name() != string(tt.wantAdapter) {
					t.Fatalf("expected %s, got %s", tt.wantAdapter, sel.Name)
				}
				if sel.FallbackUsed != tt.wantFallback {
					t.Fatalf("expected fallback=%v, got %v", tt.wantFallback, sel.FallbackUsed)
				}
				if sel.Requested != tt.requested {
					t.Fatalf("expected requested %s, got %s", tt.requested, sel.Requested)
				}
			}

			if len(rec.calls) != len(tt.wantCalls) {
				t.Fatalf("expected construct calls %v, got %v", tt.wantCalls, rec.calls)
			}
			for i := range rec.calls {
				if rec.calls[i] != tt.wantCalls[i] {
					t.Fatalf("expected construct calls %v, got %v", tt.wantCalls, rec.calls)
				}
			}
		})
	}
}

func TestSelectLogsFallback(t *testing.T) {
	cfg := config.Default()
	cfg.GoogleAPIKey = "k"

	core, logs := observer.New(zap.InfoLevel)
	rec := &constructRecorder{}
	_, err := NewSelector(cfg, rec.construct, WithLogger(zap.New(core))).Select(context.Background(), config.DeepSeek)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if logs.FilterMessage("Falling back to gemini adapter").Len() != 1 {
		t.Fatalf("expected fallback log entry, got %v", logs.All())
	}
}
