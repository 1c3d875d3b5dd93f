package companion

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"mindease/internal/llm"
)

// Classifier produces canned supportive replies without any network access.
// Replies are drawn from the pool of the first matching intent using the
// injected random source, so a fixed seed gives a fixed sequence.
type Classifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewClassifier(src rand.Source) *Classifier {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Classifier{rng: rand.New(src)}
}

// Classify returns the first intent in priority order whose keywords appear
// in text.
func Classify(text string) Intent {
	padded := " " + normalize(text) + " "
	for _, group := range intentOrder {
		for _, kw := range group.keywords {
			if matchKeyword(padded, kw) {
				return group.intent
			}
		}
	}
	return IntentDefault
}

// Reply answers the last turn of history. Only a trailing user turn is
// classified; anything else gets ListeningMessage.
func (c *Classifier) Reply(history []llm.Message) string {
	if len(history) == 0 {
		return ListeningMessage
	}
	last := history[len(history)-1]
	if last.Role != llm.RoleUser {
		return ListeningMessage
	}
	return c.pick(Classify(last.Content))
}

func (c *Classifier) pick(intent Intent) string {
	pool := responsePools[intent]
	if len(pool) == 0 {
		pool = responsePools[IntentDefault]
	}
	c.mu.Lock()
	i := c.rng.Intn(len(pool))
	c.mu.Unlock()
	return pool[i]
}

// Pool returns a copy of the canned replies for intent.
func Pool(intent Intent) []string {
	return append([]string(nil), responsePools[intent]...)
}

func matchKeyword(padded, kw string) bool {
	if stem, ok := strings.CutSuffix(kw, "*"); ok {
		return strings.Contains(padded, " "+normalize(stem))
	}
	return strings.Contains(padded, " "+normalize(kw)+" ")
}

// normalize lower-cases s and collapses every run of non-alphanumeric
// characters to a single space.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}
