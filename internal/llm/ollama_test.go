package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaBackend_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"phi3:latest"},{"name":"llama3.2:1b"}]}`))
	}))
	defer server.Close()

	b := NewOllamaBackend(server.URL, TransportChat, server.Client())
	require.NoError(t, b.Ping(context.Background()))

	models, err := b.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"phi3:latest", "llama3.2:1b"}, models)
}

func TestOllamaBackend_PingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewOllamaBackend(url, TransportChat, nil).Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestOllamaBackend_Chat(t *testing.T) {
	var got ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"message":{"role":"assistant","content":"  Take a slow breath.  "},"done":true}`))
	}))
	defer server.Close()

	b := NewOllamaBackend(server.URL, TransportChat, server.Client())
	reply, err := b.Chat(context.Background(), ChatRequest{
		Model:    "llama3.2:1b",
		Messages: []Message{{Role: RoleSystem, Content: "be kind"}, {Role: RoleUser, Content: "hi"}},
		Options:  DefaultOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Take a slow breath.", reply)

	assert.Equal(t, "llama3.2:1b", got.Model)
	assert.False(t, got.Stream)
	assert.Len(t, got.Messages, 2)
	assert.InDelta(t, 0.3, got.Options.Temperature, 1e-9)
	assert.InDelta(t, 0.8, got.Options.TopP, 1e-9)
	assert.Equal(t, 4096, got.Options.NumCtx)
	assert.Equal(t, 256, got.Options.NumPredict)
}

func TestOllamaBackend_ChatEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"role":"assistant","content":"   "},"done":true}`))
	}))
	defer server.Close()

	_, err := NewOllamaBackend(server.URL, TransportChat, server.Client()).Chat(context.Background(), ChatRequest{Model: "m"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllamaBackend_ChatMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>nope</html>`))
	}))
	defer server.Close()

	_, err := NewOllamaBackend(server.URL, TransportChat, server.Client()).Chat(context.Background(), ChatRequest{Model: "m"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestOllamaBackend_ChatErrorStatusCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model requires more system memory (5.1 GiB) than is available (3.2 GiB)"}`))
	}))
	defer server.Close()

	_, err := NewOllamaBackend(server.URL, TransportChat, server.Client()).Chat(context.Background(), ChatRequest{Model: "m"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "system memory")
}

func TestOllamaBackend_GenerateStream(t *testing.T) {
	var got ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("{\"response\":\"You are \",\"done\":false}\n{\"response\":\"not alone.\",\"done\":false}\n{\"response\":\"\",\"done\":true}\n"))
	}))
	defer server.Close()

	b := NewOllamaBackend(server.URL, TransportGenerate, server.Client())
	reply, err := b.Chat(context.Background(), ChatRequest{
		Model:    "phi3",
		Messages: []Message{{Role: RoleSystem, Content: "persona"}, {Role: RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are not alone.", reply)
	assert.Equal(t, "phi3", got.Model)
	assert.Equal(t, "SYSTEM:\npersona\n\nUSER: hello\n\nASSISTANT:", got.Prompt)
}

func TestOllamaBackend_GenerateSingleObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"One step at a time.","done":true}`))
	}))
	defer server.Close()

	reply, err := NewOllamaBackend(server.URL, TransportGenerate, server.Client()).
		Chat(context.Background(), ChatRequest{Model: "phi3", Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "One step at a time.", reply)
}

func TestBuildPrompt_NoSystem(t *testing.T) {
	prompt := BuildPrompt([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	assert.Equal(t, "USER: hi\n\nASSISTANT: hello\n\nASSISTANT:", prompt)
}
