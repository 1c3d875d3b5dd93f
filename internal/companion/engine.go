package companion

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"mindease/internal/llm"

	"github.com/sirupsen/logrus"
)

// ContextWindow is how many recent turns are sent to the model.
const ContextWindow = 10

var ErrMisconfigured = errors.New("companion engine has neither a backend nor a classifier")

// Reply sources.
const (
	SourceModel    = "model"
	SourceRules    = "rules"
	SourceFallback = "fallback"
	SourceMemory   = "memory"
)

type Reply struct {
	Text   string
	Source string
	Model  string
}

type EngineConfig struct {
	SystemPrompt     string
	PreferredModel   string
	FallbackFamilies []string
	Options          llm.Options
	ProbeTimeout     time.Duration
	ChatTimeout      time.Duration
}

// Engine turns a conversation into the companion's next message. It never
// reports backend failures to the caller: they become a rule-based reply or
// one of the fixed supportive messages.
type Engine struct {
	backend    llm.Backend
	classifier *Classifier
	cfg        EngineConfig
}

func NewEngine(backend llm.Backend, classifier *Classifier, cfg EngineConfig) *Engine {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Options == (llm.Options{}) {
		cfg.Options = llm.DefaultOptions()
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	// Completions on a cold local model include load time, so they get far
	// longer than the liveness probe before counting as unreachable.
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = 60 * time.Second
	}
	return &Engine{
		backend:    backend,
		classifier: classifier,
		cfg:        cfg,
	}
}

// Reply produces the assistant's next message for history. The only error it
// returns is ErrMisconfigured.
func (e *Engine) Reply(ctx context.Context, history []llm.Message) (Reply, error) {
	if e.backend == nil && e.classifier == nil {
		return Reply{}, ErrMisconfigured
	}
	if e.backend == nil {
		return e.ruleReply(history), nil
	}

	model, err := e.selectBackendModel(ctx)
	if err != nil {
		logrus.Warnf("inference backend unavailable, using rule-based reply: %v", err)
		return e.ruleReply(history), nil
	}

	messages := make([]llm.Message, 0, ContextWindow+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: e.cfg.SystemPrompt})
	messages = append(messages, Window(history, ContextWindow)...)

	chatCtx, cancel := context.WithTimeout(ctx, e.cfg.ChatTimeout)
	defer cancel()

	text, err := e.backend.Chat(chatCtx, llm.ChatRequest{
		Model:    model,
		Messages: messages,
		Options:  e.cfg.Options,
	})
	switch {
	case err == nil && !isDegenerate(text):
		return Reply{Text: strings.TrimSpace(text), Source: SourceModel, Model: model}, nil
	case err == nil:
		logrus.WithField("model", model).Warn("model returned a degenerate reply")
		return Reply{Text: FallbackMessage, Source: SourceFallback, Model: model}, nil
	case isMemoryError(err):
		logrus.WithField("model", model).Errorf("model failed to load for lack of memory: %v", err)
		return Reply{Text: MemoryErrorMessage, Source: SourceMemory, Model: model}, nil
	case isUnreachable(err):
		logrus.WithField("model", model).Warnf("chat request did not complete, using rule-based reply: %v", err)
		return e.ruleReply(history), nil
	default:
		logrus.WithField("model", model).Errorf("chat request failed: %v", err)
		return Reply{Text: FallbackMessage, Source: SourceFallback, Model: model}, nil
	}
}

func (e *Engine) selectBackendModel(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
	defer cancel()

	if err := e.backend.Ping(probeCtx); err != nil {
		return "", err
	}
	models, err := e.backend.ListModels(probeCtx)
	if err != nil {
		return "", err
	}
	model := SelectModel(models, e.cfg.PreferredModel, e.cfg.FallbackFamilies)
	if model == "" {
		return "", errors.New("no models installed")
	}
	return model, nil
}

func (e *Engine) ruleReply(history []llm.Message) Reply {
	if e.classifier == nil {
		return Reply{Text: FallbackMessage, Source: SourceFallback}
	}
	return Reply{Text: e.classifier.Reply(history), Source: SourceRules}
}

// SelectModel picks the model to use: the preferred name (exact or as a
// prefix), then the first model of each fallback family in order, then
// whatever is installed first. It returns "" when models is empty.
func SelectModel(models []string, preferred string, families []string) string {
	if len(models) == 0 {
		return ""
	}
	if preferred != "" {
		want := strings.ToLower(preferred)
		for _, m := range models {
			if strings.ToLower(m) == want {
				return m
			}
		}
		for _, m := range models {
			if strings.HasPrefix(strings.ToLower(m), want) {
				return m
			}
		}
	}
	for _, family := range families {
		family = strings.ToLower(family)
		for _, m := range models {
			if strings.HasPrefix(strings.ToLower(m), family) {
				return m
			}
		}
	}
	return models[0]
}

// Window returns the last n non-system turns of history, oldest first.
func Window(history []llm.Message, n int) []llm.Message {
	turns := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role == llm.RoleSystem {
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns
}

func isMemoryError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "memory")
}

// isUnreachable reports failures that get a rule-based reply. An undecodable
// payload counts: the backend answered, but with nothing usable.
func isUnreachable(err error) bool {
	return errors.Is(err, llm.ErrBackendUnavailable) ||
		errors.Is(err, llm.ErrMalformedResponse) ||
		errors.Is(err, context.DeadlineExceeded)
}

func isDegenerate(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
