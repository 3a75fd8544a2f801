package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	temperature := 0.0
	return NewClient(Config{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		MaxTokens:   500,
		Temperature: &temperature,
	}, nil)
}

func simpleRequest() *ChatRequest {
	return &ChatRequest{
		Model: "test-model",
		Messages: []Message{
			{Role: "developer", Content: "persona"},
			{Role: "user", Content: []ContentPart{TextPart("hello")}, Name: "alice#0"},
		},
	}
}

func TestChatCompleteSuccess(t *testing.T) {
	var captured map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("request path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`))
	})

	text, err := client.ChatComplete(context.Background(), simpleRequest())
	if err != nil {
		t.Fatalf("ChatComplete() error: %v", err)
	}
	if text != "hi there" {
		t.Errorf("ChatComplete() = %q, want %q", text, "hi there")
	}

	if captured["model"] != "test-model" {
		t.Errorf("wire model = %v, want test-model", captured["model"])
	}
	if captured["max_tokens"] != float64(500) {
		t.Errorf("wire max_tokens = %v, want 500", captured["max_tokens"])
	}
	if _, ok := captured["temperature"]; !ok {
		t.Error("wire temperature missing; zero must be sent explicitly")
	}

	messages := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("wire messages = %d, want 2", len(messages))
	}
	user := messages[1].(map[string]any)
	if user["name"] != "alice#0" {
		t.Errorf("wire user name = %v, want alice#0", user["name"])
	}
	parts := user["content"].([]any)
	part := parts[0].(map[string]any)
	if part["type"] != "text" || part["text"] != "hello" {
		t.Errorf("wire content part = %v, want text part", part)
	}
}

func TestChatCompleteMultimodalWireShape(t *testing.T) {
	data, err := json.Marshal(Message{
		Role:    "user",
		Content: []ContentPart{TextPart("look"), ImagePart("https://cdn/img.png")},
		Name:    "alice#0",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"role":"user","content":[{"type":"text","text":"look"},{"type":"image_url","image_url":{"url":"https://cdn/img.png"}}],"name":"alice#0"}`
	if string(data) != want {
		t.Errorf("wire message = %s, want %s", data, want)
	}
}

func TestChatCompleteEmptyPartListMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(Message{Role: "user", Content: []ContentPart{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"content":[]`) {
		t.Errorf("wire message = %s, want empty content array, not null", data)
	}
}

func TestChatCompleteStructuredError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`))
	})

	_, err := client.ChatComplete(context.Background(), simpleRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ChatComplete() error = %v, want *APIError", err)
	}
	if apiErr.Message != "Rate limit reached" || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("APIError = %+v, want the payload's message and status", apiErr)
	}
}

func TestChatCompleteErrorPayloadWithOKStatus(t *testing.T) {
	// Some proxies return the error payload with a 200; the shape, not
	// the status, decides the classification.
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":{"message":"The model is unavailable"}}`))
	})

	_, err := client.ChatComplete(context.Background(), simpleRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ChatComplete() error = %v, want *APIError", err)
	}
	if apiErr.Message != "The model is unavailable" {
		t.Errorf("APIError message = %q, want the payload's message", apiErr.Message)
	}
}

func TestChatCompleteNoChoices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.ChatComplete(context.Background(), simpleRequest())
	if !errors.Is(err, ErrNoChoices) {
		t.Errorf("ChatComplete() error = %v, want ErrNoChoices", err)
	}
}

func TestChatCompleteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(Config{BaseURL: server.URL, APIKey: "k"}, nil)
	server.Close() // connection refused from here on

	_, err := client.ChatComplete(context.Background(), simpleRequest())
	if err == nil {
		t.Fatal("ChatComplete() against closed server returned nil error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure classified as *APIError: %v", err)
	}
}

func TestChatCompleteNonJSONErrorBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.ChatComplete(context.Background(), simpleRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ChatComplete() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("APIError status = %d, want 502", apiErr.StatusCode)
	}
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	client := NewClient(Config{}, nil)
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}

	client = NewClient(Config{BaseURL: "https://example.com/v1/"}, nil)
	if client.baseURL != "https://example.com/v1" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", client.baseURL)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	if got := truncate("long enough to cut", 4); got != "long..." {
		t.Errorf("truncate() = %q, want %q", got, "long...")
	}
}
