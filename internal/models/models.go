// internal/models/models.go
package models

import "path"

// MessageRole is the speaker of a conversation turn.
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

// AppMode selects the active document set.
type AppMode string

const (
	ModeCodebase AppMode = "Codebase"
	ModeResearch AppMode = "Research Papers"
	ModeSupport  AppMode = "Support Tickets"
	ModeCustom   AppMode = "Custom Dataset"
)

// BuiltinModes are the datasets that ship with the service, in display order.
var BuiltinModes = []AppMode{ModeCodebase, ModeResearch, ModeSupport}

// Valid reports whether m names a known dataset mode.
func (m AppMode) Valid() bool {
	switch m {
	case ModeCodebase, ModeResearch, ModeSupport, ModeCustom:
		return true
	}
	return false
}

// Intent is the classified purpose of a user turn.
type Intent string

const (
	IntentQueryDocuments Intent = "query_documents"
	IntentGenerateCode   Intent = "generate_code"
	IntentChitChat       Intent = "chit_chat"
	IntentUnknown        Intent = "unknown"
)

// ResponseType labels how an assistant turn was produced.
type ResponseType string

const (
	ResponseRAG            ResponseType = "RAG"
	ResponseChitChat       ResponseType = "Chit-Chat"
	ResponseCodeGeneration ResponseType = "Code Generation"
)

// FileViewType is the rendering hint for raw file content.
type FileViewType string

const (
	ViewCode     FileViewType = "code"
	ViewDocument FileViewType = "document"
)

// ModelID identifies a selectable language model.
type ModelID string

const (
	ModelGeminiFlashLite ModelID = "gemini-flash-lite"
	ModelGeminiPro       ModelID = "gemini-pro-vertex"
)

// ModelDefinition maps a selectable model to the upstream model name.
type ModelDefinition struct {
	ID    ModelID `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Model string  `json:"model" yaml:"model"`
}

// DefaultModels is the built-in model table; the first entry is the default.
var DefaultModels = []ModelDefinition{
	{ID: ModelGeminiFlashLite, Name: "Gemini Flash Lite", Model: "gemini-flash-lite-latest"},
	{ID: ModelGeminiPro, Name: "Gemini Pro (Advanced)", Model: "gemini-2.5-pro"},
}

// Source identifies one logical file across the session. Never mutated after creation.
type Source struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Path     string `json:"path"`
}

// FullPath returns "path/fileName", or just the file name when the path is empty.
func (s Source) FullPath() string {
	if s.Path == "" {
		return s.FileName
	}
	return path.Join(s.Path, s.FileName)
}

// SearchResult is one document of a dataset as returned by search.
type SearchResult struct {
	Source  Source  `json:"source"`
	Content string  `json:"contentSnippet"`
	Score   float64 `json:"score"`
}

// SuggestionStatus is the lifecycle state of an edit proposal.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "pending"
	StatusAccepted SuggestionStatus = "accepted"
	StatusRejected SuggestionStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s SuggestionStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CodeSuggestion is a single-file edit proposal attached to one assistant turn.
type CodeSuggestion struct {
	File             Source           `json:"file"`
	Thought          string           `json:"thought"`
	OriginalContent  string           `json:"originalContent"`
	SuggestedContent string           `json:"suggestedContent"`
	Status           SuggestionStatus `json:"status"`
}

// ChatMessage is one conversation turn.
type ChatMessage struct {
	ID           string          `json:"id,omitempty"`
	Role         MessageRole     `json:"role"`
	Content      string          `json:"content"`
	Sources      []Source        `json:"sources,omitempty"`
	Suggestion   *CodeSuggestion `json:"suggestion,omitempty"`
	EditedFile   *Source         `json:"editedFile,omitempty"`
	ResponseType ResponseType    `json:"responseType,omitempty"`
	ModelID      ModelID         `json:"modelId,omitempty"`
}

// Clone returns a deep copy so callers can hand turns out without sharing the suggestion pointer.
func (m ChatMessage) Clone() ChatMessage {
	out := m
	if m.Sources != nil {
		out.Sources = append([]Source(nil), m.Sources...)
	}
	if m.Suggestion != nil {
		s := *m.Suggestion
		out.Suggestion = &s
	}
	if m.EditedFile != nil {
		f := *m.EditedFile
		out.EditedFile = &f
	}
	return out
}

// EditedFileRecord is the cumulative edit state of one file.
type EditedFileRecord struct {
	File            Source `json:"file"`
	OriginalContent string `json:"originalContent"`
	CurrentContent  string `json:"currentContent"`
}

// PersistedState is the blob saved between sessions.
type PersistedState struct {
	Messages []ChatMessage `json:"messages"`
	Mode     AppMode       `json:"mode"`
	Model    ModelID       `json:"model"`
}
