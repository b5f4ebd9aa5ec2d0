package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV keeps every key in one JSON file, rewritten on each change.
type FileKV struct {
	mu      sync.RWMutex
	dbPath  string
	entries map[string]json.RawMessage
}

// NewFileKV opens dbPath, creating its directory. A missing file starts empty.
func NewFileKV(dbPath string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	kv := &FileKV{
		dbPath:  dbPath,
		entries: make(map[string]json.RawMessage),
	}
	if err := kv.load(); err != nil {
		return nil, err
	}
	return kv, nil
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores value, which must be valid JSON.
func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = append(json.RawMessage(nil), value...)
	return f.save()
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[key]; !ok {
		return nil
	}
	delete(f.entries, key)
	return f.save()
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) load() error {
	data, err := os.ReadFile(f.dbPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &f.entries)
}

// save writes to a temp file and renames it over the old one.
func (f *FileKV) save() error {
	data, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp := f.dbPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.dbPath)
}
