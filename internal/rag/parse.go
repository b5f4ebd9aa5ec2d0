package rag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codemind-go/internal/models"
)

var validate = validator.New()

// ParseIntent maps a classifier reply to an Intent. Anything unrecognised is IntentUnknown.
func ParseIntent(reply string) models.Intent {
	switch models.Intent(normalizeLabel(reply)) {
	case models.IntentQueryDocuments:
		return models.IntentQueryDocuments
	case models.IntentGenerateCode:
		return models.IntentGenerateCode
	case models.IntentChitChat:
		return models.IntentChitChat
	default:
		return models.IntentUnknown
	}
}

// ParseContentType maps a classifier reply to a FileViewType, defaulting to document.
func ParseContentType(reply string) models.FileViewType {
	if models.FileViewType(normalizeLabel(reply)) == models.ViewCode {
		return models.ViewCode
	}
	return models.ViewDocument
}

func normalizeLabel(reply string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(reply)), "'\"`.")
}

// EditResponse is a validated edit proposal from the model.
type EditResponse struct {
	TargetPath string  `json:"targetPath" validate:"required"`
	Rationale  string  `json:"rationale" validate:"required"`
	NewContent *string `json:"newContent" validate:"required"`
}

// DeclinedError carries the model's explanation for refusing an edit.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("%s: %s", models.ErrModelDeclined, e.Reason)
}

func (e *DeclinedError) Unwrap() error {
	return models.ErrModelDeclined
}

type editEnvelope struct {
	EditResponse
	Error *string `json:"error"`
}

// ParseEditResponse decodes the concatenated edit stream. A non-empty error
// field yields a *DeclinedError; any other shape wraps ErrMalformedModelOutput.
func ParseEditResponse(raw string) (EditResponse, error) {
	body := StripCodeFences(raw)
	if body == "" {
		return EditResponse{}, fmt.Errorf("%w: empty response", models.ErrMalformedModelOutput)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var env editEnvelope
	if err := dec.Decode(&env); err != nil {
		return EditResponse{}, fmt.Errorf("%w: %v", models.ErrMalformedModelOutput, err)
	}
	if dec.More() {
		return EditResponse{}, fmt.Errorf("%w: trailing data after JSON object", models.ErrMalformedModelOutput)
	}

	if env.Error != nil && strings.TrimSpace(*env.Error) != "" {
		return EditResponse{}, &DeclinedError{Reason: strings.TrimSpace(*env.Error)}
	}
	if err := validate.Struct(env.EditResponse); err != nil {
		return EditResponse{}, fmt.Errorf("%w: %v", models.ErrMalformedModelOutput, err)
	}
	return env.EditResponse, nil
}

// StripCodeFences removes a surrounding ``` block, with or without a language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
