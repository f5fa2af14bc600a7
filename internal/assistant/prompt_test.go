package assistant_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"claude-chat/internal/assistant"
	"claude-chat/internal/domain"
)

func TestBuildPrompt_FirstTurn(t *testing.T) {
	prompt := assistant.BuildPrompt("Be concise.", nil, "What is Go?")

	if !strings.HasPrefix(prompt, "Be concise.\n\n") {
		t.Errorf("prompt should start with the system prompt, got %q", prompt)
	}
	if strings.Contains(prompt, "Previous conversation:") {
		t.Error("first turn should not include a history header")
	}
	if !strings.HasSuffix(prompt, "User: What is Go?") {
		t.Errorf("prompt should end with the new message, got %q", prompt)
	}
}

func TestBuildPrompt_WithHistory(t *testing.T) {
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "What is Go?"},
		{Role: domain.RoleAssistant, Content: "A programming language."},
	}

	prompt := assistant.BuildPrompt("Be concise.", history, "Who made it?")

	mustContain := []string{
		"Be concise.",
		"Previous conversation:",
		"User: What is Go?",
		"Assistant: A programming language.",
		"User: Who made it?",
	}
	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}

	// History precedes the new message.
	if strings.Index(prompt, "A programming language.") > strings.Index(prompt, "Who made it?") {
		t.Error("history should come before the new message")
	}
	if !strings.HasSuffix(prompt, "User: Who made it?") {
		t.Errorf("prompt should end with the new message, got %q", prompt)
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			"short message unchanged",
			"Hello there",
			"Hello there",
		},
		{
			"exactly fifty chars unchanged",
			strings.Repeat("a", 50),
			strings.Repeat("a", 50),
		},
		{
			"long message truncated",
			strings.Repeat("a", 51),
			strings.Repeat("a", 50) + "...",
		},
		{
			"multibyte message truncated on rune boundary",
			strings.Repeat("界", 51),
			strings.Repeat("界", 50) + "...",
		},
		{
			"fifty multibyte chars unchanged",
			strings.Repeat("界", 50),
			strings.Repeat("界", 50),
		},
		{
			"empty message",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assistant.DeriveTitle(tt.message)
			if got != tt.expected {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.expected)
			}
			if !utf8.ValidString(got) {
				t.Errorf("DeriveTitle() produced invalid UTF-8: %q", got)
			}
		})
	}
}
