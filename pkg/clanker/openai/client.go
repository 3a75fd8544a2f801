// Package openai implements a minimal client for OpenAI-compatible chat
// completion endpoints. The same endpoint may answer with either a choices
// payload or a structured error payload; the client accepts both and
// classifies the outcome for the caller.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultBaseURL is used when no endpoint is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// ErrNoChoices is returned when a well-formed success response carries no
// usable choice. Empty choice lists do happen; they are not a panic case.
var ErrNoChoices = errors.New("completion response contained no choices")

// APIError is a structured error payload returned by the completion API,
// distinct from transport failures reaching it.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion API error (%d): %s", e.StatusCode, e.Message)
	}
	return "completion API error: " + e.Message
}

// Config holds the client settings.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates requests. Empty falls back to OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`

	// MaxTokens caps the reply length. Zero omits the field.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature, when set, is sent verbatim (0 is a meaningful value).
	Temperature *float64 `yaml:"temperature"`
}

// Client talks to one OpenAI-compatible endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	maxTokens   int
	temperature *float64
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a client. No global request timeout is set; callers
// control cancellation through the context, and the transport guards
// against hung connection setup.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   5,
				IdleConnTimeout:       120 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 180 * time.Second,
			},
		},
		logger: logger.With("component", "openai"),
	}
}

// ---------- Wire Types ----------

// ChatRequest is the chat completions request body.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Message is one entry in the request's message list. Content is either a
// plain string or a []ContentPart for multimodal user messages.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ContentPart is one piece of multimodal message content.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference for vision input.
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image-reference content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// chatResponse covers both shapes the endpoint produces: a choices payload
// on success and an error payload on failure.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ---------- Requests ----------

// ChatComplete sends the request and returns the first choice's text
// verbatim. Failures are classified: a structured error payload yields
// *APIError, a missing choice yields ErrNoChoices, and anything failing
// before a response is parsed is returned as a wrapped transport error.
func (c *Client) ChatComplete(ctx context.Context, req *ChatRequest) (string, error) {
	body := *req
	if body.MaxTokens == 0 {
		body.MaxTokens = c.maxTokens
	}
	if body.Temperature == nil {
		body.Temperature = c.temperature
	}

	payload, err := json.Marshal(&body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.resolveAPIKey())

	c.logger.Debug("sending chat completion",
		"model", body.Model,
		"messages", len(body.Messages),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &APIError{StatusCode: resp.StatusCode, Message: truncate(string(respBody), 200)}
		}
		return "", fmt.Errorf("parsing completion response: %w", err)
	}

	if parsed.Error != nil {
		c.logger.Error("completion API error",
			"status", resp.StatusCode,
			"type", parsed.Error.Type,
			"message", truncate(parsed.Error.Message, 200),
		)
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Type:       parsed.Error.Type,
			Message:    parsed.Error.Message,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: truncate(string(respBody), 200)}
	}
	if len(parsed.Choices) == 0 {
		return "", ErrNoChoices
	}

	c.logger.Debug("chat completion done",
		"duration_ms", time.Since(start).Milliseconds(),
		"choices", len(parsed.Choices),
	)

	return parsed.Choices[0].Message.Content, nil
}

// resolveAPIKey returns the configured key, falling back to the standard
// environment variable.
func (c *Client) resolveAPIKey() string {
	if c.apiKey != "" {
		return c.apiKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

// truncate shortens s for log and error output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
