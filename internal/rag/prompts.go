package rag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codemind-go/internal/models"
)

// ContentSampleTokens bounds the file content sent for content classification.
const ContentSampleTokens = 1000

var errEmptyHistory = errors.New("cannot generate a completion from an empty history")

// SystemInstruction returns the grounded-answer instruction for mode.
func SystemInstruction(mode models.AppMode) string {
	switch mode {
	case models.ModeResearch:
		return `You are a world-class research assistant. Your task is to answer the user's question based *only* on the context provided with the latest user message.
- Analyze the provided abstracts carefully.
- Synthesize information to provide a clear, concise, and accurate answer.
- If the context is insufficient, state that clearly.
- Do not use knowledge outside of the provided context.`
	case models.ModeSupport:
		return `You are a highly-skilled customer support specialist. Your task is to resolve the user's issue based *only* on the context provided with the latest user message.
- Analyze the provided tickets to identify the problem and solution.
- Formulate a helpful and empathetic response to the user.
- If no relevant tickets are found, suggest escalating the issue.
- Do not use knowledge outside of the provided context.`
	case models.ModeCustom:
		return `You are a helpful and intelligent assistant. Your task is to answer the user's question based *only* on the context provided with the latest user message.
- Analyze the provided document snippets carefully.
- Provide a clear, concise, and accurate answer based exclusively on the given text.
- Format your response in Markdown. If you include content from the source, use code blocks for easy reading.
- If the context is insufficient to answer the question, you must state that the answer cannot be found in the provided documents.
- Do not use any external knowledge.`
	default:
		return `You are "Elastic CodeMind", a world-class AI programming assistant.
Your task is to answer the user's question based *only* on the context provided with the latest user message.
- Analyze the provided code snippets and file paths carefully.
- Provide a clear, concise, and accurate answer.
- Format your response in Markdown, using code blocks for any code examples.
- If the context is insufficient, state that clearly.
- Do not invent information or use knowledge outside of the provided context.`
	}
}

const chitChatInstruction = `You are a helpful and friendly assistant whose main purpose is to answer questions about a specific set of documents.
The user is not asking a question about the documents, but is making a social comment.
Respond politely and conversationally. If appropriate, gently guide the user back to your main purpose.`

const editInstruction = `You are an expert AI assistant, skilled in both programming and content editing. Your task is to modify a source file based on the user's request, using the provided context and conversation history.

You MUST follow these rules exactly:
1.  Respond with a single, valid JSON object. Do not add any text, markdown, or comments before or after the JSON object.
2.  The JSON object must have this exact structure: { "targetPath": string, "rationale": string, "newContent": string } or { "error": string }.
3.  'targetPath': Identify the single most relevant file from the context to modify. The 'targetPath' value must exactly match the path and filename from the context (e.g., "src/lib/auth/auth.ts").
4.  'rationale': Provide a brief, one-sentence explanation of the changes you are making.
5.  'newContent': This field MUST contain the COMPLETE and UNALTERED content of the file with the requested modifications. It must be a single string.
6.  DO NOT use diff format (e.g., lines starting with '+' or '-').
7.  DO NOT return only the changed snippet. Return the ENTIRE file.
8.  If you cannot fulfill the request or the context is insufficient, respond with a JSON object containing an 'error' field. Example: { "error": "I could not find a relevant file to modify in the provided context." }`

// IntentPrompt builds the few-shot intent classification prompt.
func IntentPrompt(userQuery string) string {
	return `You are an advanced intent classifier for an AI assistant that helps with documents and code. Your job is to determine the user's primary intent.

Classify the user's message into one of three categories:
1. 'query_documents': The user is asking for information, asking a question, requesting a summary, or looking for something within the provided context.
2. 'generate_code': The user is asking to write new code, modify existing code, refactor, add features, fix bugs, or asking to edit or rewrite the content of a document.
3. 'chit_chat': The user is making a social comment, greeting, expressing gratitude, or saying something not related to the documents or code.

Respond with only one of the three category names: 'query_documents', 'generate_code', or 'chit_chat'.

User: "How does the authentication work?"
Assistant: query_documents

User: "Hey there"
Assistant: chit_chat

User: "Add a logout function to the auth service."
Assistant: generate_code

User: "Can you refactor the user model to include a new field?"
Assistant: generate_code

User: "That's awesome, thanks a lot!"
Assistant: chit_chat

User: "Rewrite the abstract for the BERT paper to be more concise."
Assistant: generate_code

User: "What's the difference between BERT and the Transformer model?"
Assistant: query_documents

User: "` + userQuery + `"
Assistant:`
}

// ContentTypePrompt builds the code/document classification prompt. content
// should already be cut to a sample.
func ContentTypePrompt(content string) string {
	return `You are a file content classifier. Your task is to determine if the provided text is primarily a programming script or a natural language document.

Respond with only one of the two words: 'code' or 'document'.

- 'code': for source code files like .js, .ts, .py, .java, JSON, YAML, etc.
- 'document': for text files like .md, .txt, articles, papers, tickets, etc.

Here is the content:
---
` + content + `
---
Classification:`
}

// Turn is one provider-neutral conversation entry.
type Turn struct {
	Role models.MessageRole
	Text string
}

// BuildPrompt turns a request into a system instruction and the turns to send.
// The last turn is always the user turn, rewritten to carry the context.
func BuildPrompt(req CompletionRequest) (string, []Turn, error) {
	turns := ConversationTurns(req.History)

	switch req.Kind {
	case KindChitChat:
		if len(turns) == 0 {
			return "", nil, errEmptyHistory
		}
		return chitChatInstruction, turns, nil

	case KindAnswer:
		if len(turns) == 0 {
			return "", nil, errEmptyHistory
		}
		last := turns[len(turns)-1]
		turns = turns[:len(turns)-1]
		prompt := fmt.Sprintf("\n**SEARCH CONTEXT:**\n%s\n\n**USER'S QUESTION:**\n%s\n", answerContext(req.Context), last.Text)
		return SystemInstruction(req.Mode), append(turns, Turn{Role: models.RoleUser, Text: prompt}), nil

	case KindEdit:
		if len(turns) == 0 {
			return "", nil, errEmptyHistory
		}
		last := turns[len(turns)-1]
		turns = turns[:len(turns)-1]
		prompt := fmt.Sprintf("\n**CONVERSATION HISTORY:**\n%s\n\n**SEARCH CONTEXT FOR CURRENT REQUEST:**\n%s\n\n**USER'S CURRENT REQUEST:**\n%s\n",
			FormatTranscript(req.History[:len(req.History)-1]), editContext(req.Context), last.Text)
		return editInstruction, append(turns, Turn{Role: models.RoleUser, Text: prompt}), nil

	default:
		return "", nil, fmt.Errorf("unknown completion kind %q", req.Kind)
	}
}

func answerContext(results []models.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "---\nFile: %s\nRelevance Score: %g\n\n```\n%s\n```\n---\n", r.Source.FullPath(), r.Score, strings.TrimSpace(r.Content))
	}
	return b.String()
}

func editContext(results []models.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "---\nFile: %s\nContent:\n```\n%s\n```\n---\n", r.Source.FullPath(), strings.TrimSpace(r.Content))
	}
	return b.String()
}
