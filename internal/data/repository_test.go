package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemind-go/internal/config"
	"github.com/codemind-go/internal/pkg/logger"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestRepositoryLoader_LoadDataset(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/auth.ts":               "export const auth = 1;",
		"README.md":                 "# Demo",
		"node_modules/dep/index.js": "module.exports = {}",
		"src/.DS_Store":             "junk",
		"assets/logo.png":           "\x89PNG\r\n\x1a\n\x00\x00",
	})

	cfg := config.Default()
	loader := NewRepositoryLoader(cfg, logger.NewNopLogger())

	files, err := loader.GetRepositoryFiles(root)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	docs, err := loader.LoadDataset(root, "codebase-")
	require.NoError(t, err)
	byID := map[string]string{}
	for _, d := range docs {
		byID[d.Source.ID] = d.Source.FullPath()
	}
	assert.Equal(t, map[string]string{
		"codebase-README.md":   "README.md",
		"codebase-src/auth.ts": "src/auth.ts",
	}, byID)
}

func TestRepositoryLoader_MissingRoot(t *testing.T) {
	loader := NewRepositoryLoader(config.Default(), logger.NewNopLogger())
	_, err := loader.LoadDataset(filepath.Join(t.TempDir(), "absent"), "x-")
	assert.Error(t, err)
}
