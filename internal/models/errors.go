package models

import "errors"

// Turn-level failures. They are rendered as assistant text and never end a session.
var (
	ErrTargetNotFound       = errors.New("target file not found")
	ErrContentUnavailable   = errors.New("file content unavailable")
	ErrWriteFailed          = errors.New("file update failed")
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrUpstreamUnavailable  = errors.New("language model unavailable")
	ErrModelDeclined        = errors.New("model declined the request")
)

// Session-level failures, surfaced to the caller of the session API.
var (
	ErrBusy            = errors.New("a message is already being processed")
	ErrDatasetEmpty    = errors.New("the custom dataset has no files")
	ErrAlreadyResolved = errors.New("suggestion already resolved")
	ErrNoSuggestion    = errors.New("message has no suggestion")
	ErrInvalidMode     = errors.New("invalid dataset mode")
	ErrEmptyMessage    = errors.New("message is empty")
)
