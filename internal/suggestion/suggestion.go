package suggestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codemind-go/internal/data"
	"github.com/codemind-go/internal/ledger"
	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
)

const (
	discardedText = "Okay, I've discarded the changes."
	writeRefused  = "The file could not be found or updated in the document store."
)

// ErrInvalidDecision is returned when a resolution is neither accepted nor rejected.
var ErrInvalidDecision = errors.New("decision must be accepted or rejected")

// Lifecycle creates edit proposals against one document store and resolves
// them, recording accepted edits in the ledger.
type Lifecycle struct {
	store  data.DocumentStore
	ledger *ledger.Ledger
	logger logger.ILogger
}

func New(store data.DocumentStore, l *ledger.Ledger, log logger.ILogger) *Lifecycle {
	return &Lifecycle{store: store, ledger: l, logger: log}
}

// Outcome is the result of resolving a proposal. Turn is the assistant turn
// to append; Files is the refreshed file list after a successful write.
type Outcome struct {
	Status models.SuggestionStatus
	Turn   models.ChatMessage
	Files  []models.Source
	Err    error
}

// Propose snapshots the current content of target and returns a pending proposal.
func (lc *Lifecycle) Propose(ctx context.Context, target models.Source, rationale, proposed string) (*models.CodeSuggestion, error) {
	files, err := lc.store.GetAllFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	known := false
	for _, f := range files {
		if f.ID == target.ID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", models.ErrTargetNotFound, target.FullPath())
	}

	original, ok, err := lc.store.GetContent(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrContentUnavailable, target.FileName, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrContentUnavailable, target.FileName)
	}

	return &models.CodeSuggestion{
		File:             target,
		Thought:          rationale,
		OriginalContent:  original,
		SuggestedContent: proposed,
		Status:           models.StatusPending,
	}, nil
}

// Resolve moves a pending proposal to decision. The status changes even when
// the write fails; the failure is reported in Outcome.Err and the turn text.
func (lc *Lifecycle) Resolve(ctx context.Context, proposal *models.CodeSuggestion, decision models.SuggestionStatus) (Outcome, error) {
	if decision != models.StatusAccepted && decision != models.StatusRejected {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	if proposal.Status.Terminal() {
		return Outcome{}, fmt.Errorf("%w: %s", models.ErrAlreadyResolved, proposal.Status)
	}

	proposal.Status = decision
	if decision == models.StatusRejected {
		lc.logger.Info("suggestion", "Suggestion rejected", map[string]interface{}{"file": proposal.File.ID})
		return Outcome{
			Status: decision,
			Turn:   models.ChatMessage{Role: models.RoleModel, Content: discardedText},
		}, nil
	}

	file := proposal.File
	ok, err := lc.store.UpdateContent(ctx, file, proposal.SuggestedContent)
	if err == nil && !ok {
		err = errors.New(writeRefused)
	}
	if err != nil {
		lc.logger.Error("suggestion", "Failed to apply suggestion", map[string]interface{}{
			"file":  file.ID,
			"error": err,
		})
		return Outcome{
			Status: decision,
			Turn: models.ChatMessage{
				Role:    models.RoleModel,
				Content: fmt.Sprintf("Sorry, I failed to apply the changes to `%s`. Reason: %s", file.FileName, err.Error()),
			},
			Err: fmt.Errorf("%w: %v", models.ErrWriteFailed, err),
		}, nil
	}

	lc.ledger.Record(file, proposal.OriginalContent, proposal.SuggestedContent)

	files, listErr := lc.store.GetAllFiles(ctx)
	if listErr != nil {
		lc.logger.Warn("suggestion", "Could not refresh file list", map[string]interface{}{"error": listErr.Error()})
		files = nil
	}

	lc.logger.Info("suggestion", "Suggestion applied", map[string]interface{}{"file": file.FullPath()})
	edited := file
	return Outcome{
		Status: decision,
		Turn: models.ChatMessage{
			Role:       models.RoleModel,
			Content:    fmt.Sprintf("Great! I've applied the changes to `%s`.", file.FileName),
			EditedFile: &edited,
		},
		Files: files,
	}, nil
}

// ResolveTarget maps a path produced by the model to a known file. The
// comparison is against the full path, ignoring a leading slash.
func ResolveTarget(files []models.Source, targetPath string) (models.Source, error) {
	want := strings.TrimPrefix(strings.TrimSpace(targetPath), "/")
	for _, f := range files {
		if strings.TrimPrefix(f.FullPath(), "/") == want {
			return f, nil
		}
	}
	return models.Source{}, fmt.Errorf("%w: %s", models.ErrTargetNotFound, targetPath)
}
