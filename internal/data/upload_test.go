package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemind-go/internal/config"
	"github.com/codemind-go/internal/pkg/logger"
)

var testUploadOptions = UploadOptions{MaxFileBytes: 1024, TextExtensions: config.DefaultTextExtensions}

func TestSourceForUpload(t *testing.T) {
	src := SourceForUpload(UploadedFile{Name: "project/src/main.go", Size: 42, LastModified: 1700000000000})
	assert.Equal(t, "custom-project/src/main.go-42-1700000000000", src.ID)
	assert.Equal(t, "main.go", src.FileName)
	assert.Equal(t, "project/src", src.Path)
	assert.Equal(t, "project/src/main.go", src.FullPath())

	bare := SourceForUpload(UploadedFile{Name: "notes.md", Size: 3})
	assert.Equal(t, "custom-notes.md-3-0", bare.ID)
	assert.Equal(t, "", bare.Path)
	assert.Equal(t, "notes.md", bare.FullPath())
}

func TestIsTextFile(t *testing.T) {
	exts := config.DefaultTextExtensions
	cases := []struct {
		name string
		file UploadedFile
		want bool
	}{
		{"text mime", UploadedFile{Name: "README", MIMEType: "text/plain"}, true},
		{"text mime with charset", UploadedFile{Name: "page", MIMEType: "text/html; charset=utf-8"}, true},
		{"json mime", UploadedFile{Name: "data", MIMEType: "application/json"}, true},
		{"known extension", UploadedFile{Name: "App.TSX", MIMEType: "application/x-unknown"}, true},
		{"sniffed text", UploadedFile{Name: "LICENSE", Content: []byte("MIT License\n\nPermission is hereby granted")}, true},
		{"image", UploadedFile{Name: "logo.png", MIMEType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'}}, false},
		{"sniffed binary", UploadedFile{Name: "blob", MIMEType: "application/octet-stream", Content: []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTextFile(tc.file, exts))
		})
	}
}

func TestBuildCustomDataset(t *testing.T) {
	files := []UploadedFile{
		{Name: "repo/main.go", MIMEType: "", Size: 12, LastModified: 5, Content: []byte("package main")},
		{Name: "repo/logo.png", MIMEType: "image/png", Size: 4, Content: []byte{0x89, 'P', 'N', 'G'}},
		{Name: "repo/big.txt", MIMEType: "text/plain", Size: 2048, Content: make([]byte, 2048)},
		{Name: "repo/broken.pdf", MIMEType: "application/pdf", Size: 3, Content: []byte("nope")},
		{Name: "repo/notes.md", MIMEType: "text/markdown", Size: 7, LastModified: 9, Content: []byte("# Notes")},
	}

	docs, skipped := BuildCustomDataset(files, testUploadOptions, logger.NewNopLogger())

	require.Len(t, docs, 2)
	assert.Equal(t, "custom-repo/main.go-12-5", docs[0].Source.ID)
	assert.Equal(t, "package main", docs[0].Content)
	assert.Equal(t, 1.0, docs[0].Score)
	assert.Equal(t, "notes.md", docs[1].Source.FileName)

	reasons := map[string]string{}
	for _, s := range skipped {
		reasons[s.Name] = s.Reason
	}
	assert.Equal(t, map[string]string{
		"repo/logo.png":   "not a text file",
		"repo/big.txt":    "file too large",
		"repo/broken.pdf": "unreadable pdf",
	}, reasons)
}

func TestBuildCustomDataset_Empty(t *testing.T) {
	docs, skipped := BuildCustomDataset(nil, testUploadOptions, logger.NewNopLogger())
	assert.Empty(t, docs)
	assert.Empty(t, skipped)
}

func TestExtractTextFromPDF_Invalid(t *testing.T) {
	_, err := ExtractTextFromPDF([]byte("not a pdf"))
	assert.Error(t, err)
}
