package chat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/codemind-go/internal/data"
	"github.com/codemind-go/internal/models"
)

// persistLocked saves the conversation blob, or removes it while the custom
// dataset is active since uploads are not persisted. Failures are logged only.
func (s *Session) persistLocked(ctx context.Context) {
	if s.kv == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if s.mode == models.ModeCustom {
		if err := s.kv.Delete(ctx, s.historyKey); err != nil {
			s.logger.Error("session", "Failed to clear saved state", map[string]interface{}{"error": err})
		}
		return
	}

	blob, err := json.Marshal(models.PersistedState{
		Messages: s.messages,
		Mode:     s.mode,
		Model:    s.model,
	})
	if err != nil {
		s.logger.Error("session", "Failed to encode state", map[string]interface{}{"error": err})
		return
	}
	if err := s.kv.Set(ctx, s.historyKey, blob); err != nil {
		s.logger.Error("session", "Failed to save state", map[string]interface{}{"error": err})
	}
}

// restore loads a saved conversation unless it belongs to the custom dataset.
func (s *Session) restore(ctx context.Context) {
	if s.kv == nil {
		return
	}
	blob, err := s.kv.Get(ctx, s.historyKey)
	if errors.Is(err, data.ErrKeyNotFound) {
		return
	}
	if err != nil {
		s.logger.Error("session", "Failed to read saved state", map[string]interface{}{"error": err})
		return
	}

	var state models.PersistedState
	if err := json.Unmarshal(blob, &state); err != nil {
		s.logger.Error("session", "Failed to parse saved state", map[string]interface{}{"error": err})
		return
	}
	if state.Mode == models.ModeCustom {
		return
	}

	if state.Mode.Valid() {
		s.mode = state.Mode
	}
	if s.models.Has(state.Model) {
		s.model = state.Model
	}
	s.messages = state.Messages
}
