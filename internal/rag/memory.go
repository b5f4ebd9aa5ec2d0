package rag

import (
	"fmt"
	"strings"

	"github.com/codemind-go/internal/models"
)

// ConversationTurns maps the message log to model turns. Past assistant
// turns are tagged with their response type so the model knows which kind
// of answer it gave.
func ConversationTurns(history []models.ChatMessage) []Turn {
	turns := make([]Turn, 0, len(history))
	for _, msg := range history {
		text := msg.Content
		if msg.Role == models.RoleModel && msg.ResponseType != "" {
			text = fmt.Sprintf("[This was a %s response]\n\n%s", msg.ResponseType, msg.Content)
		}
		turns = append(turns, Turn{Role: msg.Role, Text: text})
	}
	return turns
}

// FormatTranscript renders history as "role: content" lines.
func FormatTranscript(history []models.ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n")
}
