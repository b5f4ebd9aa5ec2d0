package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemind-go/internal/models"
)

var sampleContext = []models.SearchResult{
	{
		Source:  models.Source{ID: "codebase-api", FileName: "api.ts", Path: "src/services"},
		Content: "\nexport const api = 1;\n  ",
		Score:   0.75,
	},
}

func sampleHistory() []models.ChatMessage {
	return []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleModel, Content: "Hi! Ask me about the code.", ResponseType: models.ResponseChitChat},
		{Role: models.RoleUser, Content: "How is the api configured?"},
	}
}

func TestConversationTurns_TagsModelResponses(t *testing.T) {
	turns := ConversationTurns(sampleHistory())
	require.Len(t, turns, 3)
	assert.Equal(t, "hello", turns[0].Text)
	assert.Equal(t, "[This was a Chit-Chat response]\n\nHi! Ask me about the code.", turns[1].Text)
	assert.Equal(t, models.RoleModel, turns[1].Role)
}

func TestFormatTranscript(t *testing.T) {
	assert.Equal(t, "user: hello\nmodel: Hi! Ask me about the code.", FormatTranscript(sampleHistory()[:2]))
	assert.Equal(t, "", FormatTranscript(nil))
}

func TestBuildPrompt_Answer(t *testing.T) {
	system, turns, err := BuildPrompt(CompletionRequest{
		Kind:    KindAnswer,
		Mode:    models.ModeResearch,
		History: sampleHistory(),
		Context: sampleContext,
	})
	require.NoError(t, err)
	assert.Equal(t, SystemInstruction(models.ModeResearch), system)
	require.Len(t, turns, 3)

	last := turns[2]
	assert.Equal(t, models.RoleUser, last.Role)
	assert.Contains(t, last.Text, "**SEARCH CONTEXT:**")
	assert.Contains(t, last.Text, "File: src/services/api.ts")
	assert.Contains(t, last.Text, "Relevance Score: 0.75")
	assert.Contains(t, last.Text, "```\nexport const api = 1;\n```")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(last.Text), "How is the api configured?"))
}

func TestBuildPrompt_ChitChatKeepsHistory(t *testing.T) {
	system, turns, err := BuildPrompt(CompletionRequest{Kind: KindChitChat, History: sampleHistory()})
	require.NoError(t, err)
	assert.Contains(t, system, "social comment")
	require.Len(t, turns, 3)
	assert.Equal(t, "How is the api configured?", turns[2].Text)
}

func TestBuildPrompt_Edit(t *testing.T) {
	system, turns, err := BuildPrompt(CompletionRequest{
		Kind:    KindEdit,
		Mode:    models.ModeCodebase,
		History: sampleHistory(),
		Context: sampleContext,
	})
	require.NoError(t, err)
	assert.Contains(t, system, `"targetPath"`)
	assert.Contains(t, system, `"newContent"`)

	last := turns[len(turns)-1]
	assert.Contains(t, last.Text, "**CONVERSATION HISTORY:**\nuser: hello\nmodel: Hi! Ask me about the code.")
	assert.Contains(t, last.Text, "File: src/services/api.ts\nContent:")
	assert.Contains(t, last.Text, "**USER'S CURRENT REQUEST:**\nHow is the api configured?")
}

func TestBuildPrompt_Errors(t *testing.T) {
	for _, kind := range []CompletionKind{KindAnswer, KindChitChat, KindEdit} {
		_, _, err := BuildPrompt(CompletionRequest{Kind: kind})
		assert.Error(t, err, kind)
	}
	_, _, err := BuildPrompt(CompletionRequest{Kind: "poem", History: sampleHistory()})
	assert.Error(t, err)
}

func TestSystemInstruction_PerMode(t *testing.T) {
	assert.Contains(t, SystemInstruction(models.ModeCodebase), "Elastic CodeMind")
	assert.Contains(t, SystemInstruction(models.ModeSupport), "customer support")
	assert.Contains(t, SystemInstruction(models.ModeCustom), "cannot be found in the provided documents")
}

func TestIntentAndContentPrompts(t *testing.T) {
	assert.True(t, strings.HasSuffix(IntentPrompt("add logging"), "User: \"add logging\"\nAssistant:"))
	assert.Contains(t, ContentTypePrompt("package main"), "---\npackage main\n---")
}

func TestToContentsAndResponseText(t *testing.T) {
	contents := toContents([]Turn{{Role: models.RoleUser, Text: "q"}, {Role: models.RoleModel, Text: "a"}})
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")}},
	}}}
	assert.Equal(t, "Hello, world", responseText(resp))
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
}

func TestCollect(t *testing.T) {
	ch := make(chan Chunk, 3)
	ch <- Chunk{Text: "a"}
	ch <- Chunk{Text: "b"}
	close(ch)
	text, err := Collect(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)

	failing := make(chan Chunk, 2)
	failing <- Chunk{Text: "partial"}
	failing <- Chunk{Err: models.ErrUpstreamUnavailable}
	close(failing)
	text, err = Collect(context.Background(), failing)
	assert.True(t, errors.Is(err, models.ErrUpstreamUnavailable))
	assert.Equal(t, "partial", text)
}
