package companion

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"mindease/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	pingErr error
	models  []string
	listErr error
	chat    func(ctx context.Context, req llm.ChatRequest) (string, error)

	calls []llm.ChatRequest
}

func (f *fakeBackend) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeBackend) ListModels(ctx context.Context) ([]string, error) {
	return f.models, f.listErr
}

func (f *fakeBackend) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.chat == nil {
		return "ok", nil
	}
	return f.chat(ctx, req)
}

func newTestEngine(b llm.Backend) *Engine {
	return NewEngine(b, NewClassifier(rand.NewSource(1)), EngineConfig{
		PreferredModel:   "llama3.2:1b",
		FallbackFamilies: []string{"phi3", "llama3"},
		ProbeTimeout:     time.Second,
		ChatTimeout:      time.Second,
	})
}

func allPools() []string {
	var out []string
	for _, g := range intentOrder {
		out = append(out, Pool(g.intent)...)
	}
	out = append(out, Pool(IntentDefault)...)
	return append(out, ListeningMessage, FallbackMessage)
}

func TestEngine_SendsLastTenTurnsInOrder(t *testing.T) {
	backend := &fakeBackend{
		models: []string{"llama3.2:1b"},
		chat: func(ctx context.Context, req llm.ChatRequest) (string, error) {
			return "Let's take this one step at a time.", nil
		},
	}
	var history []llm.Message
	for i := 0; i < 15; i++ {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	reply, err := newTestEngine(backend).Reply(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, SourceModel, reply.Source)
	assert.Equal(t, "Let's take this one step at a time.", reply.Text)

	require.Len(t, backend.calls, 1)
	sent := backend.calls[0].Messages
	require.Len(t, sent, 11)
	assert.Equal(t, llm.RoleSystem, sent[0].Role)
	assert.Equal(t, history[5:], sent[1:])
	assert.Equal(t, "llama3.2:1b", backend.calls[0].Model)
	assert.InDelta(t, 0.3, backend.calls[0].Options.Temperature, 1e-9)
	assert.InDelta(t, 0.8, backend.calls[0].Options.TopP, 1e-9)
}

func TestEngine_UnreachableUsesRules(t *testing.T) {
	backend := &fakeBackend{pingErr: llm.ErrBackendUnavailable}
	engine := newTestEngine(backend)

	inputs := []string{"Hello", "I want to end it all", "", "random words", "exam stress"}
	for _, in := range inputs {
		reply, err := engine.Reply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: in}})
		require.NoError(t, err)
		assert.NotEmpty(t, reply.Text)
		assert.Contains(t, allPools(), reply.Text)
	}
	assert.Empty(t, backend.calls)

	reply, _ := engine.Reply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "Hello"}})
	assert.Equal(t, SourceRules, reply.Source)
	assert.Contains(t, Pool(IntentGreeting), reply.Text)
}

func TestEngine_NoModelsUsesRules(t *testing.T) {
	backend := &fakeBackend{models: nil}
	reply, err := newTestEngine(backend).Reply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "Hello"}})
	require.NoError(t, err)
	assert.Equal(t, SourceRules, reply.Source)
	assert.Empty(t, backend.calls)
}

func TestEngine_FailureMapping(t *testing.T) {
	tests := []struct {
		name       string
		chat       func(ctx context.Context, req llm.ChatRequest) (string, error)
		wantText   string
		wantSource string
	}{
		{
			name: "server error",
			chat: func(context.Context, llm.ChatRequest) (string, error) {
				return "", &llm.APIError{StatusCode: 500, Message: "internal error"}
			},
			wantText:   FallbackMessage,
			wantSource: SourceFallback,
		},
		{
			name: "memory",
			chat: func(context.Context, llm.ChatRequest) (string, error) {
				return "", &llm.APIError{StatusCode: 500, Message: "model requires more system memory than is available"}
			},
			wantText:   MemoryErrorMessage,
			wantSource: SourceMemory,
		},
		{
			name: "degenerate",
			chat: func(context.Context, llm.ChatRequest) (string, error) {
				return " ... ", nil
			},
			wantText:   FallbackMessage,
			wantSource: SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{models: []string{"phi3:latest"}, chat: tt.chat}
			reply, err := newTestEngine(backend).Reply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, reply.Text)
			assert.Equal(t, tt.wantSource, reply.Source)
		})
	}
}

func TestEngine_MalformedResponseUsesRules(t *testing.T) {
	backend := &fakeBackend{
		models: []string{"llama3.2:1b"},
		chat: func(context.Context, llm.ChatRequest) (string, error) {
			return "", fmt.Errorf("decode chat response: %w", llm.ErrMalformedResponse)
		},
	}

	reply, err := newTestEngine(backend).Reply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "I want to end it all"}})
	require.NoError(t, err)
	assert.Equal(t, SourceRules, reply.Source)
	assert.Contains(t, Pool(IntentCrisis), reply.Text)
	assert.Contains(t, reply.Text, "988")
}

func TestEngine_ChatTimeoutUsesRules(t *testing.T) {
	backend := &fakeBackend{
		models: []string{"phi3:latest"},
		chat: func(ctx context.Context, req llm.ChatRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	engine := NewEngine(backend, NewClassifier(rand.NewSource(1)), EngineConfig{ChatTimeout: 20 * time.Millisecond})

	reply, err := engine.Reply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "Hello"}})
	require.NoError(t, err)
	assert.Equal(t, SourceRules, reply.Source)
	assert.Contains(t, Pool(IntentGreeting), reply.Text)
}

func TestEngine_Misconfigured(t *testing.T) {
	_, err := NewEngine(nil, nil, EngineConfig{}).Reply(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrMisconfigured))

	reply, err := NewEngine(nil, NewClassifier(rand.NewSource(1)), EngineConfig{}).
		Reply(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "Hello"}})
	require.NoError(t, err)
	assert.Equal(t, SourceRules, reply.Source)
}

func TestSelectModel(t *testing.T) {
	tests := []struct {
		name   string
		models []string
		want   string
	}{
		{"exact", []string{"phi3:latest", "llama3.2:1b"}, "llama3.2:1b"},
		{"prefix", []string{"phi3:latest", "Llama3.2:1b-instruct-q4"}, "Llama3.2:1b-instruct-q4"},
		{"first family", []string{"mistral", "llama3:8b", "phi3:mini"}, "phi3:mini"},
		{"second family", []string{"mistral", "llama3:8b"}, "llama3:8b"},
		{"first installed", []string{"mistral", "gemma"}, "mistral"},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectModel(tt.models, "llama3.2:1b", []string{"phi3", "llama3"}))
		})
	}
}

func TestWindow_SkipsSystemTurns(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleSystem, Content: "old preamble"},
		{Role: llm.RoleUser, Content: "a"},
		{Role: llm.RoleAssistant, Content: "b"},
	}
	assert.Equal(t, history[1:], Window(history, 10))
	assert.Equal(t, history[2:], Window(history, 1))
}
