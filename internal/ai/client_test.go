package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"first"}},{"message":{"content":"second"}}]}`))
	}))
	defer server.Close()

	client := NewClient()
	answer, err := client.Complete(context.Background(), ChatConfig{
		BaseURL: server.URL + "/",
		APIKey:  "secret",
		Model:   "test-model",
	}, []ChatMessage{{Role: "user", Content: "hi"}}, SamplingOptions{Temperature: 0.7})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if answer != "first" {
		t.Fatalf("expected the first choice, got %q", answer)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("wrong auth header %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Fatalf("wrong model in body: %v", gotBody["model"])
	}
	if gotBody["stream"] != false {
		t.Fatalf("stream must be disabled, got %v", gotBody["stream"])
	}
	if _, present := gotBody["max_tokens"]; present {
		t.Fatalf("zero max_tokens must be omitted from the request")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: server.URL}, nil, SamplingOptions{})
	if err == nil || !strings.Contains(err.Error(), "empty llm choices") {
		t.Fatalf("expected empty choices error, got %v", err)
	}
}

func TestCompleteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: server.URL}, nil, SamplingOptions{})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestEmbedReturnsVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	client := NewClient()
	vec, err := client.Embed(context.Background(), EmbeddingConfig{
		BaseURL:   server.URL,
		Model:     "embed-model",
		Dimension: 3,
	}, "some text")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("unexpected vector %v", vec)
	}
}

func TestEmbedRejectsWrongDimension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]}]}`))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Embed(context.Background(), EmbeddingConfig{
		BaseURL:   server.URL,
		Dimension: 384,
	}, "text")
	if err == nil || !strings.Contains(err.Error(), "dimension") {
		t.Fatalf("expected dimension error, got %v", err)
	}
}

func TestEmbedEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient()
	if _, err := client.Embed(context.Background(), EmbeddingConfig{BaseURL: server.URL}, "text"); err == nil {
		t.Fatalf("expected error for empty data")
	}
}
