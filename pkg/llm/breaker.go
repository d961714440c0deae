package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("text generator circuit is open")

// Breaker rejects calls to a TextGenerator for a cooldown period after
// repeated failures.
type Breaker struct {
	next      TextGenerator
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	probing  bool
}

// NewBreaker opens after threshold consecutive failures and half-opens
// after cooldown, letting one call through.
func NewBreaker(next TextGenerator, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{next: next, threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *Breaker) GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64, quality Quality) (string, error) {
	if !b.allow() {
		return "", ErrCircuitOpen
	}
	text, err := b.next.GenerateText(ctx, prompt, maxTokens, temperature, quality)
	b.record(err)
	return text, err
}

// Open reports whether calls are currently rejected.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && (b.probing || b.now().Sub(b.openedAt) < b.cooldown)
}

// allow admits every call while closed and a single trial call once the
// cooldown has passed.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if b.probing || b.now().Sub(b.openedAt) < b.cooldown {
		return false
	}
	b.probing = true
	return true
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if err == nil {
		b.failures = 0
		b.open = false
		return
	}
	b.failures++
	if b.open || b.failures >= b.threshold {
		b.open = true
		b.openedAt = b.now()
	}
}
