// Package llm talks to language-model inference backends: a local Ollama
// daemon or an OpenAI-compatible remote API.
package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrBackendUnavailable = errors.New("inference backend unavailable")
	ErrEmptyResponse      = errors.New("inference backend returned an empty response")
	ErrMalformedResponse  = errors.New("inference backend returned a malformed response")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the generation parameters sent with every completion.
type Options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumCtx      int     `json:"num_ctx,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// DefaultOptions keeps replies calm and short.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.3,
		TopP:        0.8,
		NumCtx:      4096,
		NumPredict:  256,
	}
}

type ChatRequest struct {
	Model    string
	Messages []Message
	Options  Options
}

type Backend interface {
	Ping(ctx context.Context) error
	ListModels(ctx context.Context) ([]string, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// APIError is a non-2xx answer from a backend. Message holds the error text
// the backend reported so callers can tell resource failures apart.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inference backend status %d: %s", e.StatusCode, e.Message)
}
