package data

import (
	"context"
	"sync"

	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
)

// writableModes accept edits written back through UpdateContent.
var writableModes = map[models.AppMode]bool{
	models.ModeCodebase: true,
	models.ModeCustom:   true,
}

// Writable reports whether edits to mode's dataset can be persisted.
func Writable(mode models.AppMode) bool {
	return writableModes[mode]
}

// Catalog owns one store per dataset mode for the lifetime of a session.
// Built-in stores are seeded from the bundled datasets; the custom store
// starts empty and is swapped out on every upload.
type Catalog struct {
	mu     sync.RWMutex
	stores map[models.AppMode]DocumentStore
	opts   SearchOptions
	logger logger.ILogger
}

func NewCatalog(opts SearchOptions, log logger.ILogger) *Catalog {
	c := &Catalog{
		stores: make(map[models.AppMode]DocumentStore, 4),
		opts:   opts,
		logger: log,
	}
	c.stores[models.ModeCodebase] = c.newStore(models.ModeCodebase, codebaseDataset())
	c.stores[models.ModeResearch] = c.newStore(models.ModeResearch, researchDataset())
	c.stores[models.ModeSupport] = c.newStore(models.ModeSupport, supportDataset())
	c.stores[models.ModeCustom] = c.newStore(models.ModeCustom, nil)
	return c
}

func (c *Catalog) newStore(mode models.AppMode, docs []models.SearchResult) *MemoryStore {
	return NewMemoryStore(mode, docs, Writable(mode), c.opts, c.logger)
}

// Store returns the store serving mode, or nil for an unknown mode.
func (c *Catalog) Store(mode models.AppMode) DocumentStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stores[mode]
}

// Prepare builds a store for mode without installing it.
func (c *Catalog) Prepare(mode models.AppMode, docs []models.SearchResult) *MemoryStore {
	return c.newStore(mode, docs)
}

// Replace swaps the dataset behind mode and returns the files of the
// previous store so callers can drop state tied to them.
func (c *Catalog) Replace(mode models.AppMode, docs []models.SearchResult) []models.Source {
	return c.Install(mode, c.newStore(mode, docs))
}

// Install puts next behind mode and returns the files of the store it replaced.
func (c *Catalog) Install(mode models.AppMode, next DocumentStore) []models.Source {
	c.mu.Lock()
	prev := c.stores[mode]
	c.stores[mode] = next
	c.mu.Unlock()

	var dropped []models.Source
	if prev != nil {
		files, err := prev.GetAllFiles(context.Background())
		if err != nil {
			c.logger.Warn("catalog", "Could not list replaced dataset", map[string]interface{}{"mode": mode, "error": err.Error()})
		}
		dropped = files
	}

	c.logger.Info("catalog", "Replaced dataset", map[string]interface{}{
		"mode":      mode,
		"documents": next.Len(),
		"dropped":   len(dropped),
	})
	return dropped
}
