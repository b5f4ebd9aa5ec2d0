package data

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
)

// UploadedFile is one file of a custom dataset upload. Name is the path
// relative to the uploaded folder, or the bare file name.
type UploadedFile struct {
	Name         string
	MIMEType     string
	Size         int64
	LastModified int64
	Content      []byte
}

// UploadOptions limits which uploaded files become documents.
type UploadOptions struct {
	MaxFileBytes   int64
	TextExtensions []string
}

// SkippedFile records why an upload entry produced no document.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BuildCustomDataset turns an upload into documents. Files that are neither
// text-like nor PDF, are too large, or cannot be decoded are skipped; the
// remaining files keep their upload order.
func BuildCustomDataset(files []UploadedFile, opts UploadOptions, log logger.ILogger) ([]models.SearchResult, []SkippedFile) {
	results := make([]models.SearchResult, 0, len(files))
	var skipped []SkippedFile

	for _, f := range files {
		if opts.MaxFileBytes > 0 && int64(len(f.Content)) > opts.MaxFileBytes {
			skipped = append(skipped, SkippedFile{Name: f.Name, Reason: "file too large"})
			continue
		}

		var content string
		switch {
		case isPDF(f):
			text, err := ExtractTextFromPDF(f.Content)
			if err != nil {
				log.Warn("upload", "Failed to extract PDF text", map[string]interface{}{
					"file":  f.Name,
					"error": err.Error(),
				})
				skipped = append(skipped, SkippedFile{Name: f.Name, Reason: "unreadable pdf"})
				continue
			}
			content = text
		case IsTextFile(f, opts.TextExtensions):
			content = string(f.Content)
		default:
			log.Warn("upload", "Skipping non-text file", map[string]interface{}{
				"file": f.Name,
				"type": f.MIMEType,
			})
			skipped = append(skipped, SkippedFile{Name: f.Name, Reason: "not a text file"})
			continue
		}

		results = append(results, models.SearchResult{
			Source:  SourceForUpload(f),
			Content: content,
			Score:   1.0,
		})
	}

	log.Info("upload", "Built custom dataset", map[string]interface{}{
		"received": len(files),
		"accepted": len(results),
		"skipped":  len(skipped),
	})
	return results, skipped
}

// SourceForUpload derives the file identity of an uploaded file. The id
// combines path, size and modification time so re-uploads of a changed
// file get a new identity.
func SourceForUpload(f UploadedFile) models.Source {
	fullPath := strings.TrimPrefix(strings.ReplaceAll(f.Name, "\\", "/"), "/")
	dir, name := path.Split(fullPath)
	return models.Source{
		ID:       fmt.Sprintf("custom-%s-%d-%d", fullPath, f.Size, f.LastModified),
		FileName: name,
		Path:     strings.TrimSuffix(dir, "/"),
	}
}

// IsTextFile accepts text/* and JSON MIME types, a sniffed text type when
// the declared one is missing or generic, and any known text extension.
func IsTextFile(f UploadedFile, extensions []string) bool {
	declared := strings.ToLower(strings.TrimSpace(f.MIMEType))
	if isTextMIME(declared) {
		return true
	}
	if declared == "" || declared == "application/octet-stream" {
		if detected := mimetype.Detect(f.Content); isTextMIME(detected.String()) || detected.Is("text/plain") {
			return true
		}
	}
	lower := strings.ToLower(f.Name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func isTextMIME(t string) bool {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return strings.HasPrefix(t, "text/") || t == "application/json"
}

func isPDF(f UploadedFile) bool {
	if strings.EqualFold(f.MIMEType, "application/pdf") || strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
		return true
	}
	return mimetype.Detect(f.Content).Is("application/pdf")
}

// ExtractTextFromPDF returns the plain text of a PDF document.
func ExtractTextFromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	b, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", err
	}
	return buf.String(), nil
}
