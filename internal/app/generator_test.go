package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"docchat/internal/ai"
	"docchat/internal/rag"
)

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []ai.ChatMessage `json:"messages"`
	Temperature float64          `json:"temperature"`
	TopP        float64          `json:"top_p"`
	MaxTokens   int              `json:"max_tokens"`
}

// newChatBackend serves an OpenAI-compatible /chat/completions endpoint
// that records the last request and replies with a fixed completion.
func newChatBackend(t *testing.T, reply string, status int) (*httptest.Server, *chatRequest) {
	t.Helper()
	last := &chatRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(last); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if status != http.StatusOK {
			http.Error(w, "backend unavailable", status)
			return
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply)
	}))
	t.Cleanup(server.Close)
	return server, last
}

func TestGenerateBuildsGroundedPrompt(t *testing.T) {
	server, last := newChatBackend(t, "the revenue grew", http.StatusOK)
	gen := NewAnswerGenerator(ai.NewClient(), ai.ChatConfig{BaseURL: server.URL, Model: "test-model"})

	answer, err := gen.Generate(context.Background(), "how did revenue change?", []rag.Result{
		{Content: "Revenue grew 12% in Q3.", Filename: "q3.pdf", Score: 0.93},
		{Content: "Costs were flat.", Filename: "q3.pdf", Score: 0.71},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if answer != "the revenue grew" {
		t.Fatalf("unexpected answer %q", answer)
	}

	if len(last.Messages) != 1 || last.Messages[0].Role != "user" {
		t.Fatalf("expected a single user message, got %+v", last.Messages)
	}
	prompt := last.Messages[0].Content
	for _, want := range []string{
		"Based on the following context, please answer the question.",
		"If the answer cannot be found in the context, please say so.",
		"Document 1 (q3.pdf):\nRevenue grew 12% in Q3.",
		"Document 2 (q3.pdf):\nCosts were flat.",
		"Question: how did revenue change?",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.HasSuffix(prompt, "\n\nAnswer:") {
		t.Fatalf("prompt should end with the answer cue:\n%s", prompt)
	}
	if last.Temperature != 0.7 || last.TopP != 0.9 || last.MaxTokens != 1000 {
		t.Fatalf("wrong sampling options: temp=%f top_p=%f max=%d", last.Temperature, last.TopP, last.MaxTokens)
	}
}

func TestGenerateWrapsBackendFailure(t *testing.T) {
	server, _ := newChatBackend(t, "", http.StatusInternalServerError)
	gen := NewAnswerGenerator(ai.NewClient(), ai.ChatConfig{BaseURL: server.URL, Model: "test-model"})

	_, err := gen.Generate(context.Background(), "q", []rag.Result{{Content: "c", Filename: "f"}})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestGenerateTitleShort(t *testing.T) {
	server, last := newChatBackend(t, "  Quarterly Revenue Review  ", http.StatusOK)
	gen := NewAnswerGenerator(ai.NewClient(), ai.ChatConfig{BaseURL: server.URL, Model: "test-model"})

	title := gen.GenerateTitle(context.Background(), "how did revenue change?")
	if title != "Quarterly Revenue Review" {
		t.Fatalf("unexpected title %q", title)
	}
	if !strings.Contains(last.Messages[0].Content, "how did revenue change?") {
		t.Fatalf("title prompt missing the seed message:\n%s", last.Messages[0].Content)
	}
	if last.Temperature != 0.5 || last.MaxTokens != 50 {
		t.Fatalf("wrong title sampling: temp=%f max=%d", last.Temperature, last.MaxTokens)
	}
}

func TestGenerateTitleTruncates(t *testing.T) {
	long := strings.Repeat("Summary of the annual compliance review ", 3)
	server, _ := newChatBackend(t, long, http.StatusOK)
	gen := NewAnswerGenerator(ai.NewClient(), ai.ChatConfig{BaseURL: server.URL, Model: "test-model"})

	title := gen.GenerateTitle(context.Background(), "seed")
	if n := utf8.RuneCountInString(title); n != 50 {
		t.Fatalf("truncated title should be exactly 50 runes, got %d", n)
	}
	if !strings.HasSuffix(title, "...") {
		t.Fatalf("truncated title should end with an ellipsis, got %q", title)
	}
	trimmed := strings.TrimSpace(long)
	if !strings.HasPrefix(trimmed, strings.TrimSuffix(title, "...")) {
		t.Fatalf("truncated title is not a prefix of the completion: %q", title)
	}
}

func TestGenerateTitleFallsBackOnError(t *testing.T) {
	server, _ := newChatBackend(t, "", http.StatusBadGateway)
	gen := NewAnswerGenerator(ai.NewClient(), ai.ChatConfig{BaseURL: server.URL, Model: "test-model"})

	if title := gen.GenerateTitle(context.Background(), "seed"); title != "New Chat" {
		t.Fatalf("expected default title, got %q", title)
	}
}

func TestGenerateTitleFallsBackOnBlank(t *testing.T) {
	server, _ := newChatBackend(t, "   ", http.StatusOK)
	gen := NewAnswerGenerator(ai.NewClient(), ai.ChatConfig{BaseURL: server.URL, Model: "test-model"})

	if title := gen.GenerateTitle(context.Background(), "seed"); title != "New Chat" {
		t.Fatalf("expected default title for blank completion, got %q", title)
	}
}

func TestApologyCarriesCause(t *testing.T) {
	msg := Apology(errors.New("model offline"))
	if !strings.HasPrefix(msg, "I apologize, but I encountered an error while generating a response: ") {
		t.Fatalf("wrong apology prefix: %q", msg)
	}
	if !strings.HasSuffix(msg, "model offline") {
		t.Fatalf("apology should carry the cause: %q", msg)
	}
}
