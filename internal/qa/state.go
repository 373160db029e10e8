package qa

import (
	"fmt"

	"github.com/google/uuid"
)

// Phase is the lifecycle position of a question-answering turn.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseLoading  Phase = "loading"
	PhaseAnswered Phase = "answered"
	PhaseFailed   Phase = "failed"
)

// ProcessingAnswer is the visible answer while a turn is loading.
const ProcessingAnswer = "Processing..."

const errorAnswerPrefix = "Error: "

// TurnState is the observable state of the latest turn.
type TurnState struct {
	TurnID         uuid.UUID `json:"turn_id"`
	Phase          Phase     `json:"phase"`
	Question       string    `json:"question"`
	MyLanguage     string    `json:"my_language"`
	TargetLanguage string    `json:"target_language"`
	Prompt         string    `json:"prompt"`
	Answer         string    `json:"answer"`
	Error          string    `json:"error,omitempty"`
}

// IsLoading reports whether a request is in flight.
func (s TurnState) IsLoading() bool {
	return s.Phase == PhaseLoading
}

// Terminal reports whether the turn has finished.
func (s TurnState) Terminal() bool {
	return s.Phase == PhaseAnswered || s.Phase == PhaseFailed
}

func (s TurnState) answered(text string) TurnState {
	s.Phase = PhaseAnswered
	s.Answer = text
	s.Error = ""
	return s
}

func (s TurnState) failed(err error) TurnState {
	s.Phase = PhaseFailed
	s.Error = err.Error()
	s.Answer = errorAnswerPrefix + s.Error
	return s
}

// BuildPrompt wraps the question with the language pair it was asked in.
func BuildPrompt(question, myLanguage, targetLanguage string) string {
	return fmt.Sprintf("Please answer the following question in %s. The question was originally asked in %s: %s",
		myLanguage, targetLanguage, question)
}
