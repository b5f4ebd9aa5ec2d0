// internal/data/store.go
package data

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
)

// DocumentStore is the searchable, editable document set behind one dataset mode.
type DocumentStore interface {
	// Search returns the documents matching any keyword of query, in dataset order.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	// GetAllFiles returns the unique file identities of the dataset.
	GetAllFiles(ctx context.Context) ([]models.Source, error)
	// GetContent returns the trimmed content of file; ok is false when the file is unknown.
	GetContent(ctx context.Context, file models.Source) (content string, ok bool, err error)
	// UpdateContent replaces the content of file; ok is false when the write was refused.
	UpdateContent(ctx context.Context, file models.Source, content string) (ok bool, err error)
	// Len returns the number of documents.
	Len() int
}

// SearchOptions tunes the keyword filter.
type SearchOptions struct {
	MinKeywordLength int
	TopK             int
}

// MemoryStore keeps one dataset in memory. It is the only DocumentStore implementation;
// search is a keyword filter, not a ranking engine.
type MemoryStore struct {
	mu       sync.RWMutex
	mode     models.AppMode
	docs     []models.SearchResult
	writable bool
	opts     SearchOptions
	logger   logger.ILogger
}

// NewMemoryStore copies docs into a new store.
func NewMemoryStore(mode models.AppMode, docs []models.SearchResult, writable bool, opts SearchOptions, log logger.ILogger) *MemoryStore {
	if opts.MinKeywordLength <= 0 {
		opts.MinKeywordLength = 3
	}
	return &MemoryStore{
		mode:     mode,
		docs:     append([]models.SearchResult(nil), docs...),
		writable: writable,
		opts:     opts,
		logger:   log,
	}
}

// Mode returns the dataset mode the store serves.
func (s *MemoryStore) Mode() models.AppMode {
	return s.mode
}

func (s *MemoryStore) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keywords := Keywords(query, s.opts.MinKeywordLength)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.SearchResult
	for _, doc := range s.docs {
		haystack := strings.ToLower(doc.Source.FileName + " " + doc.Content)
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				results = append(results, doc)
				break
			}
		}
		if s.opts.TopK > 0 && len(results) == s.opts.TopK {
			break
		}
	}

	s.logger.Debug("store", "Search finished", map[string]interface{}{
		"mode":     s.mode,
		"query":    query,
		"keywords": keywords,
		"results":  len(results),
	})
	return results, nil
}

// Keywords lower-cases query, splits it on spaces and keeps words of at least minLen characters.
func Keywords(query string, minLen int) []string {
	var out []string
	for _, word := range strings.Split(strings.ToLower(query), " ") {
		if utf8.RuneCountInString(word) >= minLen {
			out = append(out, word)
		}
	}
	return out
}

func (s *MemoryStore) GetAllFiles(ctx context.Context) ([]models.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.docs))
	files := make([]models.Source, 0, len(s.docs))
	for _, doc := range s.docs {
		if seen[doc.Source.ID] {
			continue
		}
		seen[doc.Source.ID] = true
		files = append(files, doc.Source)
	}
	return files, nil
}

func (s *MemoryStore) GetContent(ctx context.Context, file models.Source) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.Source.ID == file.ID {
			return strings.TrimSpace(doc.Content), true, nil
		}
	}
	return "", false, nil
}

func (s *MemoryStore) UpdateContent(ctx context.Context, file models.Source, content string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !s.writable {
		s.logger.Warn("store", "Refusing update on read-only dataset", map[string]interface{}{
			"mode": s.mode,
			"file": file.ID,
		})
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.docs {
		if s.docs[i].Source.ID == file.ID {
			s.docs[i].Content = content
			s.logger.Info("store", "Updated file content", map[string]interface{}{
				"mode": s.mode,
				"file": file.FullPath(),
			})
			return true, nil
		}
	}
	s.logger.Warn("store", "Could not find file to update", map[string]interface{}{
		"mode": s.mode,
		"file": file.ID,
	})
	return false, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
