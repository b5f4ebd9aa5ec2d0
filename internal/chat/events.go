package chat

import "github.com/codemind-go/internal/models"

// EventType names a streaming event.
type EventType string

const (
	// EventTurn carries a turn that was appended or replaced at Index.
	EventTurn EventType = "turn"
	// EventChunk carries text appended to the turn at Index.
	EventChunk EventType = "chunk"
	// EventDone marks the end of a Send call.
	EventDone EventType = "done"
)

// Event is one update produced while a message is processed.
type Event struct {
	Type    EventType           `json:"type"`
	Index   int                 `json:"index"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Text    string              `json:"text,omitempty"`
}

// Sink receives events in order from the goroutine running Send.
type Sink func(Event)

func discard(Event) {}
