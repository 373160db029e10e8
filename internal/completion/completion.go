// Package completion sends one question, with optional reference text, to a
// chat-completions endpoint and returns the first answer.
package completion

import (
	"context"
	"errors"
	"fmt"
)

// NoResponse is returned as a successful answer when the service replies
// without any choices.
const NoResponse = "No response"

const (
	assistantInstruction = "You are a helpful AI assistant."
	contextInstruction   = "Use the following context to answer questions. Context: "
)

// ErrEmptyQuestion is returned before any request is made.
var ErrEmptyQuestion = errors.New("question is required")

// Client is a minimal completion interface to allow pluggable providers.
type Client interface {
	Complete(ctx context.Context, question, contextText string) (string, error)
}

// APIError reports a non-2xx response from the completion service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.Status, e.Message)
}

// SystemPrompt returns the system instruction for the given context. An
// empty context yields the generic assistant instruction.
func SystemPrompt(contextText string) string {
	if contextText == "" {
		return assistantInstruction
	}
	return assistantInstruction + " " + contextInstruction + contextText
}
