package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/codemind-go/internal/config"
	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
	"github.com/codemind-go/pkg/utils"
)

// streamBuffer decouples the upstream iterator from a slow consumer.
const streamBuffer = 16

var editSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"targetPath": {Type: genai.TypeString},
		"rationale":  {Type: genai.TypeString},
		"newContent": {Type: genai.TypeString},
		"error":      {Type: genai.TypeString, Nullable: true},
	},
}

// NewGeminiClient opens a Vertex AI client for the configured project.
func NewGeminiClient(ctx context.Context, cfg config.GoogleConfig) (*genai.Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("missing Google project id")
	}
	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("init Vertex AI client: %w", err)
	}
	return client, nil
}

// GeminiModel is a LanguageModel backed by one Gemini model on Vertex AI.
// Models share the client; closing it is the owner's job.
type GeminiModel struct {
	def    models.ModelDefinition
	client *genai.Client
	logger logger.ILogger
}

func NewGeminiModel(client *genai.Client, def models.ModelDefinition, log logger.ILogger) *GeminiModel {
	return &GeminiModel{def: def, client: client, logger: log}
}

func (g *GeminiModel) ID() models.ModelID {
	return g.def.ID
}

func (g *GeminiModel) ClassifyIntent(ctx context.Context, text string) (models.Intent, error) {
	reply, err := g.generate(ctx, IntentPrompt(text))
	if err != nil {
		return models.IntentUnknown, err
	}
	intent := ParseIntent(reply)
	g.logger.Debug("gemini", "Classified intent", map[string]interface{}{
		"model":  g.def.Model,
		"reply":  reply,
		"intent": intent,
	})
	return intent, nil
}

func (g *GeminiModel) ClassifyContentType(ctx context.Context, content string) (models.FileViewType, error) {
	reply, err := g.generate(ctx, ContentTypePrompt(utils.TruncateTokens(content, ContentSampleTokens)))
	if err != nil {
		return models.ViewDocument, err
	}
	kind := ParseContentType(reply)
	if kind == models.ViewDocument && normalizeLabel(reply) != string(models.ViewDocument) {
		g.logger.Warn("gemini", "Unknown content classification, using document", map[string]interface{}{
			"reply": reply,
		})
	}
	return kind, nil
}

func (g *GeminiModel) generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.def.Model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	return strings.TrimSpace(responseText(resp)), nil
}

func (g *GeminiModel) StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Chunk, error) {
	system, turns, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	model := g.client.GenerativeModel(g.def.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	if req.Kind == KindEdit {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = editSchema
	}

	cs := model.StartChat()
	cs.History = toContents(turns[:len(turns)-1])
	iter := cs.SendMessageStream(ctx, genai.Text(turns[len(turns)-1].Text))

	g.logger.Info("gemini", "Streaming completion", map[string]interface{}{
		"model":   g.def.Model,
		"kind":    req.Kind,
		"mode":    req.Mode,
		"turns":   len(turns),
		"context": len(req.Context),
	})

	out := make(chan Chunk, streamBuffer)
	go func() {
		defer close(out)
		send := func(c Chunk) bool {
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				cancelled(ctx, out)
				return false
			}
		}
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					cancelled(ctx, out)
					return
				}
				g.logger.Error("gemini", "Stream failed", map[string]interface{}{"model": g.def.Model, "error": err})
				send(Chunk{Err: fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)})
				return
			}
			if text := responseText(resp); text != "" {
				if !send(Chunk{Text: text}) {
					return
				}
			}
		}
	}()
	return out, nil
}

// cancelled reports the cancellation as the final chunk when the buffer has
// room; consumers also check ctx themselves.
func cancelled(ctx context.Context, out chan<- Chunk) {
	select {
	case out <- Chunk{Err: ctx.Err()}:
	default:
	}
}

func toContents(turns []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, &genai.Content{
			Role:  string(t.Role),
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
