package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Policy{
		MaxAttempts:    2,
		InitialBackoff: 1,
		MaxBackoff:     1,
		BackoffFactor:  2,
		BreakerEnabled: false,
	})
}

func TestInvokeSendsModelAndMessages(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  jawaban  "}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "test-key", testExecutor())
	answer, err := client.Invoke(context.Background(), "planner-model", []domain.ChatTurn{
		{Role: "system", Content: "aturan"},
		{Role: "user", Content: "pertanyaan"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if answer != "jawaban" {
		t.Fatalf("answer = %q, want trimmed content", answer)
	}
	if captured.Model != "planner-model" {
		t.Fatalf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[1].Content != "pertanyaan" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
}

func TestInvokeRetriesOnServerError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "k", testExecutor())
	answer, err := client.Invoke(context.Background(), "m", []domain.ChatTurn{{Role: "user", Content: "q"}})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if answer != "ok" || hits.Load() != 2 {
		t.Fatalf("answer=%q hits=%d, want retried success", answer, hits.Load())
	}
}

func TestInvokeDoesNotRetryClientError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unknown model", http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, "k", testExecutor())
	_, err := client.Invoke(context.Background(), "m", []domain.ChatTurn{{Role: "user", Content: "q"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "unknown model") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("client error must not retry, hits = %d", hits.Load())
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("client error must not be marked temporary")
	}
}

func TestInvokeMarksExhaustedRetriesTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(server.URL, "k", testExecutor())
	_, err := client.Invoke(context.Background(), "m", []domain.ChatTurn{{Role: "user", Content: "q"}})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestInvokeRejectsEmptyModel(t *testing.T) {
	client := New("http://unused", "k", testExecutor())
	_, err := client.Invoke(context.Background(), "", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
