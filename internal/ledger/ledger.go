// Package ledger records the cumulative edits made to each file during a session.
package ledger

import (
	"sync"

	"github.com/codemind-go/internal/diff"
	"github.com/codemind-go/internal/models"
)

// Ledger maps file ids to their first-seen and latest content.
// The original content of an entry is set once, on the first record, and never replaced.
type Ledger struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*models.EditedFileRecord
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		entries: make(map[string]*models.EditedFileRecord),
	}
}

// Record upserts the entry for file. An existing entry keeps its original content
// and only has its current content replaced.
func (l *Ledger) Record(file models.Source, originalContent, newContent string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[file.ID]; ok {
		entry.CurrentContent = newContent
		return
	}
	l.entries[file.ID] = &models.EditedFileRecord{
		File:            file,
		OriginalContent: originalContent,
		CurrentContent:  newContent,
	}
	l.order = append(l.order, file.ID)
}

// Get returns a copy of the entry for id.
func (l *Ledger) Get(id string) (models.EditedFileRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[id]
	if !ok {
		return models.EditedFileRecord{}, false
	}
	return *entry, true
}

// Has reports whether id has been edited.
func (l *Ledger) Has(id string) bool {
	_, ok := l.Get(id)
	return ok
}

// List returns all entries in the order their files were first edited.
func (l *Ledger) List() []models.EditedFileRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.EditedFileRecord, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}

// DiffFor returns the cumulative diff of a file, empty when the file has no entry
// or its current content equals the original.
func (l *Ledger) DiffFor(id string) []diff.Line {
	entry, ok := l.Get(id)
	if !ok {
		return nil
	}
	return diff.Compute(entry.OriginalContent, entry.CurrentContent)
}

// Forget drops the entry for id. Used when the dataset that owned the file is replaced.
func (l *Ledger) Forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[id]; !ok {
		return
	}
	delete(l.entries, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of edited files.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}
