package qa

import (
	"context"

	"github.com/google/uuid"
)

// Turn is the pending result of one ProcessQuestion call.
type Turn struct {
	id    uuid.UUID
	done  chan struct{}
	state TurnState
	err   error
}

func newTurn(id uuid.UUID) *Turn {
	return &Turn{id: id, done: make(chan struct{})}
}

// ID returns the turn identifier.
func (t *Turn) ID() uuid.UUID {
	return t.id
}

// Done is closed once the turn is resolved.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn resolves or ctx ends. A resolved turn returns
// its terminal state, or ErrSuperseded / ErrClosed with the last state it
// published.
func (t *Turn) Wait(ctx context.Context) (TurnState, error) {
	select {
	case <-t.done:
		return t.state, t.err
	case <-ctx.Done():
		return TurnState{}, ctx.Err()
	}
}

// resolve must be called exactly once, under the coordinator lock.
func (t *Turn) resolve(state TurnState, err error) {
	t.state = state
	t.err = err
	close(t.done)
}
