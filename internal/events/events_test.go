package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/valkyrie8787/llm-dictionary/internal/logger"
	"github.com/valkyrie8787/llm-dictionary/internal/qa"
)

func TestFromState(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	ev := FromState(qa.TurnState{
		TurnID:         id,
		Phase:          qa.PhaseAnswered,
		Question:       "What is the capital of France?",
		MyLanguage:     "Korean",
		TargetLanguage: "English",
		Answer:         "파리",
	}, at)

	assert.Equal(t, id, ev.TurnID)
	assert.Equal(t, qa.PhaseAnswered, ev.Phase)
	assert.Equal(t, "ko-KR", ev.Locale)
	assert.Equal(t, "파리", ev.Answer)
	assert.Equal(t, at, ev.At)
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "turns.answered", subjectFor("turns", string(qa.PhaseAnswered)))
	assert.Equal(t, "app.qa.failed", subjectFor("app.qa", string(qa.PhaseFailed)))
}

func TestPublishWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*MockPublisher)
		attempts  int
		wantErr   bool
		wantCalls int
	}{
		{
			name: "first attempt succeeds",
			setup: func(p *MockPublisher) {
				p.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
			},
			attempts:  3,
			wantCalls: 1,
		},
		{
			name: "succeeds after transient failure",
			setup: func(p *MockPublisher) {
				p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats: timeout")).Once()
				p.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
			},
			attempts:  3,
			wantCalls: 2,
		},
		{
			name: "gives up after all attempts",
			setup: func(p *MockPublisher) {
				p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats: connection closed")).Times(3)
			},
			attempts:  3,
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name: "zero attempts still tries once",
			setup: func(p *MockPublisher) {
				p.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
			},
			attempts:  0,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(MockPublisher)
			tt.setup(p)

			err := PublishWithRetry(context.Background(), p, Event{Phase: qa.PhaseLoading}, tt.attempts, time.Millisecond)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			p.AssertNumberOfCalls(t, "Publish", tt.wantCalls)
			p.AssertExpectations(t)
		})
	}
}

func TestPublishWithRetryStopsOnCancel(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("down")).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PublishWithRetry(ctx, p, Event{Phase: qa.PhaseLoading}, 5, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	p.AssertNumberOfCalls(t, "Publish", 1)
}

func TestRelayForwardsUntilClosed(t *testing.T) {
	id := uuid.New()
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.MatchedBy(func(ev Event) bool {
		return ev.TurnID == id && ev.Phase == qa.PhaseLoading
	})).Return(nil).Once()
	p.On("Publish", mock.Anything, mock.MatchedBy(func(ev Event) bool {
		return ev.TurnID == id && ev.Phase == qa.PhaseAnswered && ev.Answer == "Paris"
	})).Return(nil).Once()

	states := make(chan qa.TurnState, 2)
	states <- qa.TurnState{TurnID: id, Phase: qa.PhaseLoading, Answer: qa.ProcessingAnswer}
	states <- qa.TurnState{TurnID: id, Phase: qa.PhaseAnswered, Answer: "Paris"}
	close(states)

	done := make(chan struct{})
	go func() {
		Relay(context.Background(), states, p, logger.Discard())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not return after channel close")
	}
	p.AssertExpectations(t)
}

func TestRelayStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	states := make(chan qa.TurnState)

	done := make(chan struct{})
	go func() {
		Relay(ctx, states, NewNoOp(), logger.Discard())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop on cancel")
	}
}

func TestNoOpPublisher(t *testing.T) {
	p := NewNoOp()
	require.NoError(t, p.Publish(context.Background(), Event{}))
	require.NoError(t, p.Close())
}
