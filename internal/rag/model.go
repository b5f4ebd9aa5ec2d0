package rag

import (
	"context"

	"github.com/codemind-go/internal/models"
)

// CompletionKind selects the prompt and output format of a completion.
type CompletionKind string

const (
	// KindAnswer streams a grounded answer over the search context.
	KindAnswer CompletionKind = "answer"
	// KindChitChat streams a conversational reply without context.
	KindChitChat CompletionKind = "chit_chat"
	// KindEdit streams a JSON edit proposal.
	KindEdit CompletionKind = "edit"
)

// CompletionRequest carries everything a completion needs. History ends with
// the user turn being answered.
type CompletionRequest struct {
	Kind    CompletionKind
	Mode    models.AppMode
	History []models.ChatMessage
	Context []models.SearchResult
}

// Chunk is one piece of a streamed completion. A chunk with Err set is the
// last one sent.
type Chunk struct {
	Text string
	Err  error
}

// LanguageModel is the external model used for classification and generation.
type LanguageModel interface {
	ID() models.ModelID
	ClassifyIntent(ctx context.Context, text string) (models.Intent, error)
	ClassifyContentType(ctx context.Context, content string) (models.FileViewType, error)
	// StreamCompletion starts generation. The channel is closed when the
	// stream ends; upstream failures arrive as a final Chunk with Err set.
	StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Chunk, error)
}

// Collect drains a chunk stream into one string.
func Collect(ctx context.Context, stream <-chan Chunk) (string, error) {
	var text []byte
	for {
		select {
		case <-ctx.Done():
			return string(text), ctx.Err()
		case chunk, ok := <-stream:
			if !ok {
				return string(text), nil
			}
			if chunk.Err != nil {
				return string(text), chunk.Err
			}
			text = append(text, chunk.Text...)
		}
	}
}
