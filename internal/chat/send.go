package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codemind-go/internal/data"
	"github.com/codemind-go/internal/diff"
	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/rag"
	"github.com/codemind-go/internal/suggestion"
)

const (
	thinkingText     = "Thinking about the file..."
	noEditTargetText = "I couldn't find any relevant files to modify for your request."
	malformedText    = "Sorry, I couldn't generate the edit correctly."
)

// turnContext is what a routed turn needs, captured under mu when the turn starts.
type turnContext struct {
	mode    models.AppMode
	modelID models.ModelID
	store   data.DocumentStore
	history []models.ChatMessage
	query   string
	sink    Sink
}

// Send appends a user turn and produces the assistant reply. Model and store
// failures become assistant text; only session-level conditions are returned
// as errors. Events are delivered to sink in order.
func (s *Session) Send(ctx context.Context, text string, sink Sink) error {
	if sink == nil {
		sink = discard
	}
	if strings.TrimSpace(text) == "" {
		return models.ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return models.ErrBusy
	}
	if s.datasetEmptyLocked() {
		s.mu.Unlock()
		return models.ErrDatasetEmpty
	}
	s.busy = true
	user := models.ChatMessage{ID: uuid.NewString(), Role: models.RoleUser, Content: text}
	s.messages = append(s.messages, user)
	idx := len(s.messages) - 1
	tc := turnContext{
		mode:    s.mode,
		modelID: s.model,
		store:   s.store(),
		history: s.messagesLocked(),
		query:   text,
		sink:    sink,
	}
	s.mu.Unlock()

	sink(Event{Type: EventTurn, Index: idx, Message: &user})

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.persistLocked(ctx)
		s.mu.Unlock()
		sink(Event{Type: EventDone, Index: idx})
	}()

	lm, err := s.models.Get(tc.modelID)
	if err != nil {
		s.appendFailure(tc, err)
		return nil
	}

	intent, err := lm.ClassifyIntent(ctx, text)
	if err != nil {
		s.logger.Warn("session", "Intent classification failed, answering as a query", map[string]interface{}{"error": err.Error()})
		intent = models.IntentQueryDocuments
	}
	s.logger.Info("session", "Routing message", map[string]interface{}{
		"intent": intent,
		"mode":   tc.mode,
		"model":  tc.modelID,
	})

	switch intent {
	case models.IntentGenerateCode:
		s.generateEdit(ctx, lm, tc)
	case models.IntentChitChat:
		s.chitChat(ctx, lm, tc)
	default:
		s.answer(ctx, lm, tc)
	}
	return nil
}

func (s *Session) answer(ctx context.Context, lm rag.LanguageModel, tc turnContext) {
	idx := s.appendTurn(tc, models.ChatMessage{
		Role:         models.RoleModel,
		Sources:      []models.Source{},
		ResponseType: models.ResponseRAG,
		ModelID:      tc.modelID,
	})

	results, err := tc.store.Search(ctx, tc.query)
	if err != nil {
		s.failTurn(tc, idx, err)
		return
	}

	stream, err := lm.StreamCompletion(ctx, rag.CompletionRequest{
		Kind:    rag.KindAnswer,
		Mode:    tc.mode,
		History: tc.history,
		Context: results,
	})
	if err != nil {
		s.failTurn(tc, idx, err)
		return
	}
	if err := s.consume(ctx, tc, idx, stream); err != nil {
		s.failTurn(tc, idx, err)
		return
	}

	sources := make([]models.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.Source)
	}
	s.updateTurn(tc, idx, func(m *models.ChatMessage) { m.Sources = sources })
}

func (s *Session) chitChat(ctx context.Context, lm rag.LanguageModel, tc turnContext) {
	idx := s.appendTurn(tc, models.ChatMessage{
		Role:         models.RoleModel,
		ResponseType: models.ResponseChitChat,
		ModelID:      tc.modelID,
	})

	stream, err := lm.StreamCompletion(ctx, rag.CompletionRequest{
		Kind:    rag.KindChitChat,
		Mode:    tc.mode,
		History: tc.history,
	})
	if err != nil {
		s.failTurn(tc, idx, err)
		return
	}
	if err := s.consume(ctx, tc, idx, stream); err != nil {
		s.failTurn(tc, idx, err)
	}
}

func (s *Session) generateEdit(ctx context.Context, lm rag.LanguageModel, tc turnContext) {
	idx := s.appendTurn(tc, models.ChatMessage{
		Role:         models.RoleModel,
		Content:      thinkingText,
		ResponseType: models.ResponseCodeGeneration,
		ModelID:      tc.modelID,
	})
	setText := func(text string) {
		s.updateTurn(tc, idx, func(m *models.ChatMessage) { m.Content = text })
	}

	results, err := tc.store.Search(ctx, tc.query)
	if err != nil {
		setText(errorText(err))
		return
	}
	if len(results) == 0 {
		setText(noEditTargetText)
		return
	}

	stream, err := lm.StreamCompletion(ctx, rag.CompletionRequest{
		Kind:    rag.KindEdit,
		Mode:    tc.mode,
		History: tc.history,
		Context: results,
	})
	if err != nil {
		setText(errorText(err))
		return
	}
	raw, err := rag.Collect(ctx, stream)
	if err != nil {
		setText(errorText(err))
		return
	}

	proposal, err := s.proposeEdit(ctx, tc.store, raw)
	if err != nil {
		s.logger.Warn("session", "Edit generation failed", map[string]interface{}{"error": err.Error()})
		setText(editFailureText(err))
		return
	}

	if diff.TooLarge(proposal.OriginalContent, proposal.SuggestedContent) {
		s.logger.Warn("session", "Suggestion exceeds the diff size limit", map[string]interface{}{"file": proposal.File.ID})
	}
	s.updateTurn(tc, idx, func(m *models.ChatMessage) {
		m.Content = fmt.Sprintf("I have a suggestion for `%s`. Here are the changes:", proposal.File.FileName)
		m.Suggestion = proposal
	})
}

// proposeEdit validates the model output, resolves its target and snapshots
// the original content.
func (s *Session) proposeEdit(ctx context.Context, store data.DocumentStore, raw string) (*models.CodeSuggestion, error) {
	resp, err := rag.ParseEditResponse(raw)
	if err != nil {
		return nil, err
	}
	files, err := store.GetAllFiles(ctx)
	if err != nil {
		return nil, err
	}
	target, err := suggestion.ResolveTarget(files, resp.TargetPath)
	if err != nil {
		return nil, &targetError{path: resp.TargetPath, err: err}
	}
	proposal, err := suggestion.New(store, s.ledger, s.logger).Propose(ctx, target, resp.Rationale, *resp.NewContent)
	if err != nil {
		return nil, &targetError{path: resp.TargetPath, file: target.FileName, err: err}
	}
	return proposal, nil
}

type targetError struct {
	path string
	file string
	err  error
}

func (e *targetError) Error() string { return e.err.Error() }
func (e *targetError) Unwrap() error { return e.err }

func editFailureText(err error) string {
	var declined *rag.DeclinedError
	var target *targetError
	switch {
	case errors.As(err, &declined):
		return declined.Reason
	case errors.As(err, &target) && errors.Is(err, models.ErrContentUnavailable):
		return fmt.Sprintf("Could not fetch original content for %s.", target.file)
	case errors.As(err, &target) && errors.Is(err, models.ErrTargetNotFound):
		return fmt.Sprintf("The model suggested editing a file I couldn't find: %s", target.path)
	case errors.Is(err, models.ErrMalformedModelOutput):
		return malformedText
	default:
		return errorText(err)
	}
}

func errorText(err error) string {
	return "Sorry, I encountered an error: " + err.Error()
}

// consume applies chunks to the turn at idx in arrival order. A stream that
// ends because ctx was cancelled is a failure, not a complete answer.
func (s *Session) consume(ctx context.Context, tc turnContext, idx int, stream <-chan rag.Chunk) error {
	for chunk := range stream {
		if chunk.Err != nil {
			return chunk.Err
		}
		if chunk.Text == "" {
			continue
		}
		s.mu.Lock()
		s.messages[idx].Content += chunk.Text
		s.mu.Unlock()
		tc.sink(Event{Type: EventChunk, Index: idx, Text: chunk.Text})
	}
	return ctx.Err()
}

func (s *Session) appendTurn(tc turnContext, msg models.ChatMessage) int {
	msg.ID = uuid.NewString()
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	idx := len(s.messages) - 1
	s.mu.Unlock()
	tc.sink(Event{Type: EventTurn, Index: idx, Message: &msg})
	return idx
}

func (s *Session) updateTurn(tc turnContext, idx int, fn func(*models.ChatMessage)) {
	s.mu.Lock()
	fn(&s.messages[idx])
	msg := s.messages[idx].Clone()
	s.mu.Unlock()
	tc.sink(Event{Type: EventTurn, Index: idx, Message: &msg})
}

// failTurn reports a failed streamed turn. An empty turn takes the error
// text; a turn that already streamed text is kept and the error follows it.
func (s *Session) failTurn(tc turnContext, idx int, err error) {
	s.logger.Error("session", "Turn failed", map[string]interface{}{"error": err})

	s.mu.Lock()
	empty := s.messages[idx].Content == ""
	s.mu.Unlock()
	if empty {
		s.updateTurn(tc, idx, func(m *models.ChatMessage) { m.Content = errorText(err) })
		return
	}
	s.appendFailure(tc, err)
}

func (s *Session) appendFailure(tc turnContext, err error) {
	s.appendTurn(tc, models.ChatMessage{Role: models.RoleModel, Content: errorText(err)})
}
