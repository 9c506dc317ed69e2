package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProvider_Chat(t *testing.T) {
	var got openAIChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"I'm here for you."}}]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider(srv.URL+"/", "k", "")
	reply, err := p.Chat(context.Background(), []Message{{Role: RoleSystem, Content: SystemPrompt}, {Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "I'm here for you." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Model != "llama-3.1-8b-instant" || got.MaxTokens != 400 || len(got.Messages) != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "k", "m", "https://mindease.app", "MindEase")
	_, err := p.Chat(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected upstream error, got %v", err)
	}

	p.APIKey = ""
	if _, err := p.Chat(context.Background(), nil); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestOllamaProvider_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"hello"}}`))
	}))
	defer srv.Close()

	reply, err := NewOllamaProvider(srv.URL, "").Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil || reply != "hello" {
		t.Fatalf("unexpected %q %v", reply, err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(" Ollama ", func(ctx context.Context, model string) (Provider, error) {
		return NewOllamaProvider("", model), nil
	})
	p, err := reg.Get(context.Background(), "OLLAMA", "phi3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.(*OllamaProvider).Model != "phi3" {
		t.Fatalf("model not passed through")
	}
	if _, err := reg.Get(context.Background(), "nope", ""); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "ollama" {
		t.Fatalf("unexpected names %v", names)
	}
}
