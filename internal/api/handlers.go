// internal/api/handlers.go
package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codemind-go/internal/chat"
	"github.com/codemind-go/internal/data"
	"github.com/codemind-go/internal/diff"
	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/suggestion"
)

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type resolveSuggestionRequest struct {
	Decision models.SuggestionStatus `json:"decision" binding:"required,oneof=accepted rejected"`
}

type setModeRequest struct {
	Mode models.AppMode `json:"mode" binding:"required"`
}

type setModelRequest struct {
	Model models.ModelID `json:"model" binding:"required"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "CodeMind chat API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"Session": []string{
				"GET /session - current conversation state",
				"PUT /session/mode - switch built-in dataset",
				"PUT /session/model - switch language model",
			},
			"Chat": []string{
				"POST /chat/messages - send a message, streamed as server-sent events",
				"POST /chat/messages/:index/suggestion - accept or reject a proposed edit",
				"POST /chat/new - clear the conversation",
			},
			"Files": []string{
				"GET /files - files of the active dataset",
				"GET /files/{id} - open a file",
				"GET /edits - files changed in this session",
				"GET /edits/{id}/diff - cumulative diff of a changed file",
				"POST /datasets/custom - upload a custom dataset",
			},
		},
	})
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSetMode(c *gin.Context) {
	var req setModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := s.session.SetMode(c.Request.Context(), req.Mode); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSetModel(c *gin.Context) {
	var req setModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := s.session.SetModel(c.Request.Context(), req.Model); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleNewChat(c *gin.Context) {
	if err := s.session.NewChat(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.Snapshot())
}

// handleSendMessage streams the reply as server-sent events. Errors raised
// before the first event are returned as plain JSON responses.
func (s *Server) handleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.ErrEmptyMessage)
		return
	}

	ctx := c.Request.Context()
	events := make(chan chat.Event, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(events)
		errCh <- s.session.Send(ctx, req.Content, func(e chat.Event) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		})
	}()

	first, ok := <-events
	if !ok {
		if err := <-errCh; err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(string(first.Type), first)
	c.Writer.Flush()
	for e := range events {
		c.SSEvent(string(e.Type), e)
		c.Writer.Flush()
	}

	if err := <-errCh; err != nil {
		s.logger.Error("api", "Message processing failed", map[string]interface{}{"error": err})
		c.SSEvent("error", gin.H{"error": err.Error()})
		c.Writer.Flush()
	}
}

func (s *Server) handleResolveSuggestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message index must be an integer"})
		return
	}
	var req resolveSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	turn, err := s.session.ResolveSuggestion(c.Request.Context(), index, req.Decision)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": turn})
}

func (s *Server) handleListFiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mode":  s.session.Mode(),
		"files": s.session.Files(),
	})
}

func (s *Server) handleGetFile(c *gin.Context) {
	id := strings.TrimPrefix(c.Param("id"), "/")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file id is required"})
		return
	}
	view, err := s.session.SelectFile(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleListEdits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"edits": s.session.EditedFiles()})
}

// handleEditDiff serves /edits/{id}/diff. With format=text the diff is
// returned in the +/- line format.
func (s *Server) handleEditDiff(c *gin.Context) {
	raw := strings.TrimPrefix(c.Param("id"), "/")
	id, ok := strings.CutSuffix(raw, "/diff")
	if !ok || id == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	lines, err := s.session.EditDiff(id)
	if err != nil {
		writeError(c, err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, diff.Render(lines))
		return
	}
	added, removed := diff.Stats(lines)
	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"lines":   lines,
		"added":   added,
		"removed": removed,
	})
}

// handleUploadDataset accepts multipart "files" parts. Browsers send only the
// base name in the part header, so the relative paths travel in a parallel
// "paths" field and modification times in "last_modified" (unix millis).
func (s *Server) handleUploadDataset(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid upload: %v", err)})
		return
	}

	headers := form.File["files"]
	paths := form.Value["paths"]
	modified := form.Value["last_modified"]

	files := make([]data.UploadedFile, 0, len(headers))
	for i, fh := range headers {
		name := fh.Filename
		if i < len(paths) && paths[i] != "" {
			name = paths[i]
		}
		var lastModified int64
		if i < len(modified) {
			lastModified, _ = strconv.ParseInt(modified[i], 10, 64)
		}

		content, err := s.readPart(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("read %s: %v", name, err)})
			return
		}
		files = append(files, data.UploadedFile{
			Name:         name,
			MIMEType:     fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			LastModified: lastModified,
			Content:      content,
		})
	}

	result, err := s.session.UploadDataset(c.Request.Context(), files)
	if err != nil {
		writeError(c, err)
		return
	}
	s.logger.Info("api", "Custom dataset uploaded", map[string]interface{}{
		"accepted": len(result.Accepted),
		"skipped":  len(result.Skipped),
	})
	c.JSON(http.StatusOK, result)
}

// readPart reads at most one byte past the size limit; oversized files are
// rejected later by the dataset builder.
func (s *Server) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, s.config.Upload.MaxFileBytes+1))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrBusy),
		errors.Is(err, models.ErrDatasetEmpty),
		errors.Is(err, models.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, models.ErrNoSuggestion),
		errors.Is(err, chat.ErrFileNotFound),
		errors.Is(err, models.ErrContentUnavailable):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidMode),
		errors.Is(err, models.ErrEmptyMessage),
		errors.Is(err, chat.ErrUnknownModel),
		errors.Is(err, suggestion.ErrInvalidDecision):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
