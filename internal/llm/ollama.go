package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	TransportChat     = "chat"
	TransportGenerate = "generate"
)

type OllamaBackend struct {
	baseURL   string
	transport string
	client    *http.Client
}

func NewOllamaBackend(baseURL, transport string, client *http.Client) *OllamaBackend {
	if client == nil {
		client = http.DefaultClient
	}
	if transport == "" {
		transport = TransportChat
	}
	return &OllamaBackend{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		client:    client,
	}
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options"`
}

type ollamaChatResponse struct {
	Message *Message `json:"message"`
	Done    bool     `json:"done"`
	Error   string   `json:"error,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Options Options `json:"options"`
}

type ollamaGenerateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (b *OllamaBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

func (b *OllamaBackend) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build tags request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decode tags: %v", ErrMalformedResponse, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

func (b *OllamaBackend) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if b.transport == TransportGenerate {
		return b.generate(ctx, req)
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
		Options:  req.Options,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	resp, err := b.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %v", ErrMalformedResponse, err)
	}
	if out.Error != "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	if out.Message == nil {
		return "", fmt.Errorf("%w: chat response has no message", ErrMalformedResponse)
	}

	content := strings.TrimSpace(out.Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// generate uses the older /api/generate endpoint. Ollama answers it either
// with one JSON object or, when streaming, with one object per line; the
// decoder below reads both shapes.
func (b *OllamaBackend) generate(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:   req.Model,
		Prompt:  BuildPrompt(req.Messages),
		Options: req.Options,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	resp, err := b.post(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	chunks := 0
	dec := json.NewDecoder(resp.Body)
	for {
		var chunk ollamaGenerateChunk
		err := dec.Decode(&chunk)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if chunks == 0 {
				return "", fmt.Errorf("%w: decode generate response: %v", ErrMalformedResponse, err)
			}
			logrus.Warnf("generate stream ended with undecodable chunk after %d chunks: %v", chunks, err)
			break
		}
		if chunk.Error != "" {
			return "", &APIError{StatusCode: resp.StatusCode, Message: chunk.Error}
		}
		sb.WriteString(chunk.Response)
		chunks++
		if chunk.Done {
			break
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (b *OllamaBackend) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return resp, nil
}

// BuildPrompt flattens a conversation into the plain-text prompt the
// generate endpoint expects.
func BuildPrompt(messages []Message) string {
	var system []string
	var turns []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, strings.ToUpper(m.Role)+": "+m.Content)
	}

	var sb strings.Builder
	if len(system) > 0 {
		sb.WriteString("SYSTEM:\n")
		sb.WriteString(strings.Join(system, "\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.Join(turns, "\n\n"))
	sb.WriteString("\n\nASSISTANT:")
	return sb.String()
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := strings.TrimSpace(string(raw))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
