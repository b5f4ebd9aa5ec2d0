package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemind-go/internal/models"
)

type stubModel struct{ id models.ModelID }

func (s stubModel) ID() models.ModelID { return s.id }
func (s stubModel) ClassifyIntent(context.Context, string) (models.Intent, error) {
	return models.IntentChitChat, nil
}
func (s stubModel) ClassifyContentType(context.Context, string) (models.FileViewType, error) {
	return models.ViewCode, nil
}
func (s stubModel) StreamCompletion(context.Context, CompletionRequest) (<-chan Chunk, error) {
	ch := make(chan Chunk)
	close(ch)
	return ch, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Default()
	assert.Error(t, err)

	require.NoError(t, r.Register(stubModel{id: models.ModelGeminiFlashLite}))
	require.NoError(t, r.Register(stubModel{id: models.ModelGeminiPro}))
	assert.Error(t, r.Register(stubModel{id: models.ModelGeminiPro}))

	def, err := r.Default()
	require.NoError(t, err)
	assert.Equal(t, models.ModelGeminiFlashLite, def.ID())

	m, err := r.Get(models.ModelGeminiPro)
	require.NoError(t, err)
	assert.Equal(t, models.ModelGeminiPro, m.ID())

	_, err = r.Get("gpt")
	assert.Error(t, err)
	assert.False(t, r.Has("gpt"))
	assert.True(t, r.Has(models.ModelGeminiPro))
	assert.Equal(t, []models.ModelID{models.ModelGeminiFlashLite, models.ModelGeminiPro}, r.IDs())
}
