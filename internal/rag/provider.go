package rag

import (
	"fmt"
	"sync"

	"github.com/codemind-go/internal/models"
)

// Registry holds the selectable language models. The first registered model is the default.
type Registry struct {
	mu     sync.RWMutex
	models map[models.ModelID]LanguageModel
	order  []models.ModelID
}

func NewRegistry() *Registry {
	return &Registry{
		models: make(map[models.ModelID]LanguageModel),
	}
}

// Register adds m under m.ID().
func (r *Registry) Register(m LanguageModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := m.ID()
	if _, exists := r.models[id]; exists {
		return fmt.Errorf("model %s already registered", id)
	}
	r.models[id] = m
	r.order = append(r.order, id)
	return nil
}

// Get returns the model registered as id.
func (r *Registry) Get(id models.ModelID) (LanguageModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[id]
	if !ok {
		return nil, fmt.Errorf("model %s not registered", id)
	}
	return m, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id models.ModelID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.models[id]
	return ok
}

// Default returns the first registered model.
func (r *Registry) Default() (LanguageModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, fmt.Errorf("no language model registered")
	}
	return r.models[r.order[0]], nil
}

// IDs lists the registered models in registration order.
func (r *Registry) IDs() []models.ModelID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.ModelID(nil), r.order...)
}
