// Package qa runs question-answering turns: it wraps a recognized question
// with the caller's language pair, adds the imported context, asks the
// completion client and publishes each state change to subscribers.
package qa

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/valkyrie8787/llm-dictionary/internal/completion"
	"github.com/valkyrie8787/llm-dictionary/internal/ragcontext"
)

var (
	// ErrSuperseded resolves a turn replaced by a newer ProcessQuestion call.
	ErrSuperseded = errors.New("turn superseded by a newer question")
	// ErrClosed resolves turns dropped by Close or started after it.
	ErrClosed = errors.New("coordinator closed")
)

const (
	defaultMyLanguage     = "English"
	defaultTargetLanguage = "Korean"
)

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithLanguages sets the language pair reported before the first turn.
func WithLanguages(myLanguage, targetLanguage string) Option {
	return func(c *Coordinator) {
		if myLanguage != "" {
			c.myLanguage = myLanguage
		}
		if targetLanguage != "" {
			c.targetLanguage = targetLanguage
		}
	}
}

// Coordinator owns the TurnState. At most one turn is in flight: starting a
// new one cancels the previous request and its result is never published.
type Coordinator struct {
	client completion.Client
	store  ragcontext.Store
	log    *slog.Logger

	mu             sync.Mutex
	state          TurnState
	myLanguage     string
	targetLanguage string
	current        *Turn
	cancel         context.CancelFunc
	closed         bool
	subs           map[int]chan TurnState
	nextSub        int

	wg sync.WaitGroup
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(client completion.Client, store ragcontext.Store, log *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:         client,
		store:          store,
		log:            log,
		state:          TurnState{Phase: PhaseIdle},
		myLanguage:     defaultMyLanguage,
		targetLanguage: defaultTargetLanguage,
		subs:           make(map[int]chan TurnState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessQuestion starts a turn and returns immediately. The request runs on
// its own goroutine. It keeps ctx's values but not its cancellation or
// deadline: a caller that stops waiting does not end the turn, only a newer
// question or Close does.
func (c *Coordinator) ProcessQuestion(ctx context.Context, question, myLanguage, targetLanguage string) *Turn {
	turn := newTurn(uuid.New())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		turn.resolve(TurnState{TurnID: turn.id, Phase: PhaseIdle}, ErrClosed)
		return turn
	}

	if c.current != nil {
		prev := c.current
		c.cancel()
		prevState := c.state
		c.log.Info("turn superseded", "turn_id", prev.id, "by", turn.id)
		prev.resolve(prevState, ErrSuperseded)
	}

	c.myLanguage = myLanguage
	c.targetLanguage = targetLanguage

	state := TurnState{
		TurnID:         turn.id,
		Phase:          PhaseLoading,
		Question:       question,
		MyLanguage:     myLanguage,
		TargetLanguage: targetLanguage,
		Prompt:         BuildPrompt(question, myLanguage, targetLanguage),
		Answer:         ProcessingAnswer,
	}
	turnCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.current = turn
	c.cancel = cancel
	c.setState(state)
	c.log.Info("turn started", "turn_id", turn.id, "my_language", myLanguage, "target_language", targetLanguage)

	c.wg.Add(1)
	go c.run(turnCtx, turn, state)
	return turn
}

func (c *Coordinator) run(ctx context.Context, turn *Turn, state TurnState) {
	defer c.wg.Done()

	answer, err := c.ask(ctx, state)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != turn {
		// Superseded or closed; the turn was already resolved.
		c.log.Debug("dropping stale turn result", "turn_id", turn.id)
		return
	}
	c.cancel()
	c.current = nil
	c.cancel = nil

	if err != nil {
		state = state.failed(err)
		c.log.Warn("turn failed", "turn_id", turn.id, "err", err)
	} else {
		state = state.answered(answer)
		c.log.Info("turn answered", "turn_id", turn.id, "answer_len", len(answer))
	}
	c.setState(state)
	turn.resolve(state, nil)
}

// ask reads the context at dispatch time and calls the completion client.
func (c *Coordinator) ask(ctx context.Context, state TurnState) (string, error) {
	if state.Question == "" {
		return "", completion.ErrEmptyQuestion
	}
	contextText, err := c.store.Get(ctx)
	if err != nil {
		return "", err
	}
	return c.client.Complete(ctx, state.Prompt, contextText)
}

// setState records and fans out a state. Caller holds mu.
func (c *Coordinator) setState(state TurnState) {
	c.state = state
	for id, ch := range c.subs {
		select {
		case ch <- state:
		default:
			c.log.Debug("subscriber lagging; state dropped", "subscriber", id, "phase", state.Phase)
		}
	}
}

// Subscribe returns a channel receiving every published TurnState and a
// function that ends the subscription. States are dropped for a subscriber
// whose buffer is full.
func (c *Coordinator) Subscribe(buffer int) (<-chan TurnState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan TurnState, buffer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// State returns the latest TurnState.
func (c *Coordinator) State() TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentAnswer returns the last published answer text, "" before any turn.
func (c *Coordinator) CurrentAnswer() string {
	return c.State().Answer
}

// Languages returns the most recently recorded language pair.
func (c *Coordinator) Languages() (myLanguage, targetLanguage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.myLanguage, c.targetLanguage
}

// Close cancels the in-flight turn without publishing its outcome, ends all
// subscriptions and waits for request goroutines to return.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		if c.current != nil {
			c.cancel()
			c.current.resolve(c.state, ErrClosed)
			c.current = nil
			c.cancel = nil
		}
		for id, ch := range c.subs {
			delete(c.subs, id)
			close(ch)
		}
	}
	c.mu.Unlock()
	c.wg.Wait()
}
