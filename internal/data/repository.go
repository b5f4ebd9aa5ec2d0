package data

import (
	"fmt"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"

	"github.com/codemind-go/internal/config"
	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
)

// RepositoryLoader reads a local source tree into a dataset.
type RepositoryLoader struct {
	filters config.FileFiltersConfig
	upload  UploadOptions
	logger  logger.ILogger
}

func NewRepositoryLoader(cfg *config.Config, log logger.ILogger) *RepositoryLoader {
	return &RepositoryLoader{
		filters: cfg.FileFilters,
		upload: UploadOptions{
			MaxFileBytes:   cfg.Upload.MaxFileBytes,
			TextExtensions: cfg.Upload.TextExtensions,
		},
		logger: log,
	}
}

// GetRepositoryFiles lists every file under root that survives the
// excluded directory and file filters.
func (r *RepositoryLoader) GetRepositoryFiles(root string) ([]string, error) {
	var allFiles []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			dirName := filepath.Base(path)
			for _, excludedDir := range r.filters.ExcludedDirs {
				if dirName == excludedDir && path != root {
					return filepath.SkipDir
				}
			}
			return nil
		}

		fileName := filepath.Base(path)
		for _, excludedFile := range r.filters.ExcludedFiles {
			if fileName == excludedFile {
				return nil
			}
		}

		allFiles = append(allFiles, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return allFiles, nil
}

// LoadDataset reads the text files under root into documents whose ids
// are prefix plus the slash-separated path relative to root.
func (r *RepositoryLoader) LoadDataset(root, prefix string) ([]models.SearchResult, error) {
	files, err := r.GetRepositoryFiles(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	results := make([]models.SearchResult, 0, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return nil, err
		}
		if r.upload.MaxFileBytes > 0 && info.Size() > r.upload.MaxFileBytes {
			r.logger.Debug("repository", "Skipping large file", map[string]interface{}{"file": file, "size": info.Size()})
			continue
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		relPath, err := filepath.Rel(root, file)
		if err != nil {
			return nil, err
		}
		relPath = filepath.ToSlash(relPath)

		entry := UploadedFile{Name: relPath, Size: info.Size(), Content: content}
		if !IsTextFile(entry, r.upload.TextExtensions) {
			continue
		}

		dir, name := pathpkg.Split(relPath)
		results = append(results, models.SearchResult{
			Source: models.Source{
				ID:       prefix + relPath,
				FileName: name,
				Path:     strings.TrimSuffix(dir, "/"),
			},
			Content: string(content),
			Score:   1.0,
		})
	}

	r.logger.Info("repository", "Loaded dataset from directory", map[string]interface{}{
		"root":      root,
		"files":     len(files),
		"documents": len(results),
	})
	return results, nil
}
