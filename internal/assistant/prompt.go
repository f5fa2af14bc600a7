package assistant

import (
	"strings"

	"claude-chat/internal/domain"
)

// BuildPrompt flattens the system prompt, prior conversation and the new
// user message into the single prompt string the CLI consumes.
func BuildPrompt(systemPrompt string, history []domain.Message, message string) string {
	var b strings.Builder

	b.WriteString(systemPrompt)
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, msg := range history {
			if msg.Role == domain.RoleUser {
				b.WriteString("User: ")
			} else {
				b.WriteString("Assistant: ")
			}
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("User: ")
	b.WriteString(message)

	return b.String()
}

// DeriveTitle produces a conversation title from its first message,
// truncated the way the sidebar expects. Truncation counts runes, not
// bytes, so a multibyte character is never cut in half.
func DeriveTitle(message string) string {
	const maxLen = 50
	runes := []rune(message)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return message
}
