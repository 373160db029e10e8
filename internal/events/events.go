// Package events publishes question-answering turn states outside the
// process.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valkyrie8787/llm-dictionary/internal/qa"
	"github.com/valkyrie8787/llm-dictionary/internal/retry"
	"github.com/valkyrie8787/llm-dictionary/internal/speech"
)

const (
	publishAttempts = 3
	publishBackoff  = 100 * time.Millisecond
	maxBackoff      = 2 * time.Second
)

// Event is the wire form of a qa.TurnState.
type Event struct {
	TurnID         uuid.UUID `json:"turn_id"`
	Phase          qa.Phase  `json:"phase"`
	Question       string    `json:"question"`
	MyLanguage     string    `json:"my_language"`
	TargetLanguage string    `json:"target_language"`
	Locale         string    `json:"locale"`
	Answer         string    `json:"answer"`
	Error          string    `json:"error,omitempty"`
	At             time.Time `json:"at"`
}

// FromState converts a TurnState. Locale is the speech-output locale for the
// answer's language.
func FromState(s qa.TurnState, at time.Time) Event {
	return Event{
		TurnID:         s.TurnID,
		Phase:          s.Phase,
		Question:       s.Question,
		MyLanguage:     s.MyLanguage,
		TargetLanguage: s.TargetLanguage,
		Locale:         speech.LocaleFor(s.MyLanguage),
		Answer:         s.Answer,
		Error:          s.Error,
		At:             at,
	}
}

// Publisher sends turn events to subscribers in other processes.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, ev Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.Publish(ctx, ev); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base, maxBackoff)):
		}
	}
	return nil
}

// Relay forwards states to p until states is closed or ctx ends.
func Relay(ctx context.Context, states <-chan qa.TurnState, p Publisher, log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			ev := FromState(s, time.Now().UTC())
			if err := PublishWithRetry(ctx, p, ev, publishAttempts, publishBackoff); err != nil {
				log.Error("failed to publish turn event", "turn_id", s.TurnID, "phase", s.Phase, "err", err)
			}
		}
	}
}
