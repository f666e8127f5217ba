// Package speech acquires command phrases from the user. The guidance
// engine depends only on the Source interface; implementations cover a
// vosk-backed microphone listener, a typed-input source fed by the TUI or
// stdin, and a scripted source for tests.
package speech

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Recognition failures. All of them recover locally: the controller maps
// each to a re-prompt, never a fatal error.
var (
	// ErrTimeout means the listen window elapsed without speech.
	ErrTimeout = errors.New("listen timed out")
	// ErrUnintelligible means audio was captured but produced no words.
	ErrUnintelligible = errors.New("speech not understood")
	// ErrService means the recognition engine itself failed.
	ErrService = errors.New("recognition service error")
)

// Source yields one lowercase phrase per Listen call.
type Source interface {
	// Listen blocks until a phrase arrives, the listen window elapses
	// (ErrTimeout), or ctx is cancelled.
	Listen(ctx context.Context) (string, error)
	// Close releases any capture resources.
	Close() error
}

// Typed is a Source fed programmatically: the TUI's input box and the
// headless stdin reader both submit phrases here, so typed and spoken
// commands flow through one interface.
type Typed struct {
	ch     chan string
	window time.Duration
}

// NewTyped creates a typed source. window bounds each Listen call;
// zero means wait indefinitely (until ctx cancels).
func NewTyped(window time.Duration) *Typed {
	return &Typed{
		ch:     make(chan string, 8),
		window: window,
	}
}

// Submit queues a phrase for the next Listen. Non-blocking; phrases
// submitted faster than they are consumed are dropped.
func (s *Typed) Submit(phrase string) {
	select {
	case s.ch <- normalize(phrase):
	default:
	}
}

// Listen returns the next submitted phrase.
func (s *Typed) Listen(ctx context.Context) (string, error) {
	var window <-chan time.Time
	if s.window > 0 {
		t := time.NewTimer(s.window)
		defer t.Stop()
		window = t.C
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-window:
		return "", ErrTimeout
	case phrase := <-s.ch:
		return phrase, nil
	}
}

// Close is a no-op; Typed holds no capture resources.
func (s *Typed) Close() error { return nil }

// Scripted replays a fixed phrase sequence, then times out forever.
// Used by tests and the demo mode.
type Scripted struct {
	phrases []string
	next    int
}

// NewScripted creates a scripted source.
func NewScripted(phrases ...string) *Scripted {
	return &Scripted{phrases: phrases}
}

// Listen returns the next scripted phrase, or ErrTimeout once exhausted.
func (s *Scripted) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.phrases) {
		return "", ErrTimeout
	}
	phrase := s.phrases[s.next]
	s.next++
	return normalize(phrase), nil
}

// Close is a no-op.
func (s *Scripted) Close() error { return nil }

func normalize(phrase string) string {
	return strings.ToLower(strings.TrimSpace(phrase))
}
