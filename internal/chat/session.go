package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/codemind-go/internal/data"
	"github.com/codemind-go/internal/diff"
	"github.com/codemind-go/internal/ledger"
	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
	"github.com/codemind-go/internal/rag"
	"github.com/codemind-go/internal/suggestion"
)

var (
	// ErrFileNotFound is returned when a file id is not in the active dataset.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnknownModel is returned when selecting a model that is not registered.
	ErrUnknownModel = errors.New("unknown model")
)

// Deps are the collaborators of a Session.
type Deps struct {
	Catalog    *data.Catalog
	Models     *rag.Registry
	KV         data.KVStore
	HistoryKey string
	Upload     data.UploadOptions
	Logger     logger.ILogger
}

// Session is the single conversation served by the process. It owns the
// message log, the selected mode and model, the active file list and the
// edit ledger. State is guarded by mu; the busy flag serialises turns and
// suggestion resolution without holding mu across model calls.
type Session struct {
	mu       sync.Mutex
	id       string
	mode     models.AppMode
	model    models.ModelID
	messages []models.ChatMessage
	files    []models.Source
	busy     bool

	catalog    *data.Catalog
	ledger     *ledger.Ledger
	models     *rag.Registry
	kv         data.KVStore
	historyKey string
	upload     data.UploadOptions
	logger     logger.ILogger
}

// NewSession builds a session in Codebase mode with the default model, then
// restores a persisted conversation if one exists for a built-in mode.
func NewSession(ctx context.Context, deps Deps) (*Session, error) {
	def, err := deps.Models.Default()
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:         uuid.NewString(),
		mode:       models.ModeCodebase,
		model:      def.ID(),
		catalog:    deps.Catalog,
		ledger:     ledger.New(),
		models:     deps.Models,
		kv:         deps.KV,
		historyKey: deps.HistoryKey,
		upload:     deps.Upload,
		logger:     deps.Logger,
	}

	s.restore(ctx)
	if err := s.reloadFiles(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("session", "Session started", map[string]interface{}{
		"session":  s.id,
		"mode":     s.mode,
		"model":    s.model,
		"messages": len(s.messages),
	})
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) store() data.DocumentStore {
	return s.catalog.Store(s.mode)
}

// reloadFiles refreshes the file list of the active store. Callers hold mu
// or own the session exclusively.
func (s *Session) reloadFiles(ctx context.Context) error {
	files, err := s.store().GetAllFiles(ctx)
	if err != nil {
		return fmt.Errorf("load files for %s: %w", s.mode, err)
	}
	s.files = files
	return nil
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	ID           string               `json:"id"`
	Mode         models.AppMode       `json:"mode"`
	Model        models.ModelID       `json:"model"`
	Models       []models.ModelID     `json:"models"`
	Busy         bool                 `json:"busy"`
	DatasetEmpty bool                 `json:"datasetEmpty"`
	Messages     []models.ChatMessage `json:"messages"`
	Files        []models.Source      `json:"files"`
	EditedFiles  int                  `json:"editedFiles"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:           s.id,
		Mode:         s.mode,
		Model:        s.model,
		Models:       s.models.IDs(),
		Busy:         s.busy,
		DatasetEmpty: s.datasetEmptyLocked(),
		Messages:     s.messagesLocked(),
		Files:        append([]models.Source(nil), s.files...),
		EditedFiles:  s.ledger.Len(),
	}
}

// Messages returns a deep copy of the message log.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked()
}

func (s *Session) messagesLocked() []models.ChatMessage {
	out := make([]models.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out
}

// Files returns the file list of the active dataset.
func (s *Session) Files() []models.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Source(nil), s.files...)
}

// Mode returns the active dataset mode.
func (s *Session) Mode() models.AppMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// EditedFiles lists every file with an applied edit, in first-edit order.
func (s *Session) EditedFiles() []models.EditedFileRecord {
	return s.ledger.List()
}

// EditDiff returns the cumulative diff of an edited file.
func (s *Session) EditDiff(id string) ([]diff.Line, error) {
	if !s.ledger.Has(id) {
		return nil, fmt.Errorf("%w: no edits for %s", ErrFileNotFound, id)
	}
	return s.ledger.DiffFor(id), nil
}

func (s *Session) datasetEmptyLocked() bool {
	return s.mode == models.ModeCustom && s.store().Len() == 0
}

// SetMode switches to a built-in dataset, clearing the conversation.
// The custom dataset is entered only through UploadDataset.
func (s *Session) SetMode(ctx context.Context, mode models.AppMode) error {
	if !slices.Contains(models.BuiltinModes, mode) {
		return fmt.Errorf("%w: %q", models.ErrInvalidMode, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return models.ErrBusy
	}

	files, err := s.catalog.Store(mode).GetAllFiles(ctx)
	if err != nil {
		return fmt.Errorf("load files for %s: %w", mode, err)
	}

	prev := s.mode
	s.mode = mode
	s.messages = nil
	s.files = files
	s.persistLocked(ctx)

	s.logger.Info("session", "Mode changed", map[string]interface{}{"from": prev, "to": mode})
	return nil
}

// SetModel selects the model used for classification and generation.
func (s *Session) SetModel(ctx context.Context, id models.ModelID) error {
	if !s.models.Has(id) {
		return fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.model = id
	s.persistLocked(ctx)
	return nil
}

// NewChat clears the message log. Mode, model and ledger are kept.
func (s *Session) NewChat(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return models.ErrBusy
	}
	s.messages = nil
	s.persistLocked(ctx)
	return nil
}

// UploadResult summarises a custom dataset upload.
type UploadResult struct {
	Accepted []models.Source    `json:"accepted"`
	Skipped  []data.SkippedFile `json:"skipped,omitempty"`
}

// UploadDataset replaces the custom dataset and switches to it. Edits to
// files of the previous custom dataset leave the ledger with it. An upload
// with no usable file leaves the dataset empty and Send gated.
func (s *Session) UploadDataset(ctx context.Context, files []data.UploadedFile) (UploadResult, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return UploadResult{}, models.ErrBusy
	}
	s.busy = true
	s.mu.Unlock()
	defer s.clearBusy()

	docs, skipped := data.BuildCustomDataset(files, s.upload, s.logger)
	next := s.catalog.Prepare(models.ModeCustom, docs)
	nextFiles, err := next.GetAllFiles(ctx)
	if err != nil {
		return UploadResult{}, fmt.Errorf("load files for %s: %w", models.ModeCustom, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, old := range s.catalog.Install(models.ModeCustom, next) {
		s.ledger.Forget(old.ID)
	}
	s.mode = models.ModeCustom
	s.messages = nil
	s.files = nextFiles
	s.persistLocked(ctx)

	return UploadResult{Accepted: append([]models.Source(nil), s.files...), Skipped: skipped}, nil
}

// clearBusy releases the busy flag taken by a gated operation.
func (s *Session) clearBusy() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// FileViewKind says how a selected file should be shown.
type FileViewKind string

const (
	ViewDiff    FileViewKind = "diff"
	ViewContent FileViewKind = "content"
)

// FileView is the result of selecting a file.
type FileView struct {
	File        models.Source            `json:"file"`
	Kind        FileViewKind             `json:"kind"`
	Record      *models.EditedFileRecord `json:"record,omitempty"`
	Diff        []diff.Line              `json:"diff,omitempty"`
	Content     string                   `json:"content,omitempty"`
	ContentType models.FileViewType      `json:"contentType,omitempty"`
}

// SelectFile opens a file of the active dataset. Files with applied edits
// always open as their cumulative diff.
func (s *Session) SelectFile(ctx context.Context, id string) (FileView, error) {
	s.mu.Lock()
	mode := s.mode
	store := s.store()
	var file *models.Source
	for i := range s.files {
		if s.files[i].ID == id {
			f := s.files[i]
			file = &f
			break
		}
	}
	s.mu.Unlock()

	if rec, ok := s.ledger.Get(id); ok {
		return FileView{File: rec.File, Kind: ViewDiff, Record: &rec, Diff: s.ledger.DiffFor(id)}, nil
	}
	if file == nil {
		return FileView{}, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}

	content, ok, err := store.GetContent(ctx, *file)
	if err != nil {
		return FileView{}, err
	}
	if !ok {
		return FileView{}, fmt.Errorf("%w: %s", models.ErrContentUnavailable, file.FileName)
	}

	view := FileView{File: *file, Kind: ViewContent, Content: content}
	switch mode {
	case models.ModeCodebase:
		view.ContentType = models.ViewCode
	case models.ModeCustom:
		view.ContentType = s.classifyContent(ctx, content)
	default:
		view.ContentType = models.ViewDocument
	}
	return view, nil
}

func (s *Session) classifyContent(ctx context.Context, content string) models.FileViewType {
	if strings.TrimSpace(content) == "" {
		return models.ViewDocument
	}
	lm, err := s.models.Default()
	if err != nil {
		return models.ViewDocument
	}
	kind, err := lm.ClassifyContentType(ctx, content)
	if err != nil {
		s.logger.Warn("session", "Content classification failed, using document", map[string]interface{}{"error": err.Error()})
		return models.ViewDocument
	}
	return kind
}

// ResolveSuggestion accepts or rejects the proposal attached to the turn at
// index and appends the follow-up turn.
func (s *Session) ResolveSuggestion(ctx context.Context, index int, decision models.SuggestionStatus) (models.ChatMessage, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return models.ChatMessage{}, models.ErrBusy
	}
	if index < 0 || index >= len(s.messages) || s.messages[index].Suggestion == nil {
		s.mu.Unlock()
		return models.ChatMessage{}, fmt.Errorf("%w: message %d", models.ErrNoSuggestion, index)
	}
	proposal := *s.messages[index].Suggestion
	store := s.store()
	s.busy = true
	s.mu.Unlock()
	defer s.clearBusy()

	out, err := suggestion.New(store, s.ledger, s.logger).Resolve(ctx, &proposal, decision)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return models.ChatMessage{}, err
	}

	s.messages[index].Suggestion.Status = proposal.Status
	turn := out.Turn
	turn.ID = uuid.NewString()
	s.messages = append(s.messages, turn)
	if out.Files != nil {
		s.files = out.Files
	}
	s.persistLocked(ctx)

	return turn.Clone(), nil
}
