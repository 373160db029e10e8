package completion

import (
	"strings"
	"testing"
)

func TestSystemPrompt(t *testing.T) {
	tests := []struct {
		name    string
		context string
		want    string
	}{
		{
			name:    "no context",
			context: "",
			want:    "You are a helpful AI assistant.",
		},
		{
			name:    "with context",
			context: "Paris is the capital of France.",
			want:    "You are a helpful AI assistant. Use the following context to answer questions. Context: Paris is the capital of France.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SystemPrompt(tt.context); got != tt.want {
				t.Errorf("SystemPrompt(%q) = %q, want %q", tt.context, got, tt.want)
			}
		})
	}
}

func TestSystemPromptEmbedsContextVerbatim(t *testing.T) {
	contexts := []string{
		"x",
		"multi\nline\ncontext",
		"서울은 한국의 수도입니다.",
		"  padded  ",
	}
	for _, c := range contexts {
		got := SystemPrompt(c)
		if !strings.Contains(got, c) {
			t.Errorf("SystemPrompt(%q) = %q, expected literal context", c, got)
		}
		if got == SystemPrompt("") {
			t.Errorf("SystemPrompt(%q) should differ from the generic instruction", c)
		}
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: 401, Message: "Unauthorized"}
	if err.Error() != "API Error: 401 Unauthorized" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
