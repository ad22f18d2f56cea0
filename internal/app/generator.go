package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"docchat/internal/ai"
	"docchat/internal/rag"
)

const maxTitleRunes = 50

// AnswerGenerator turns retrieved chunks and a user query into a grounded
// prompt and asks the model for an answer. The grounding instruction is
// the anti-hallucination control: the model must say so when the context
// does not contain the answer.
type AnswerGenerator struct {
	client *ai.Client
	cfg    ai.ChatConfig
}

func NewAnswerGenerator(client *ai.Client, cfg ai.ChatConfig) *AnswerGenerator {
	return &AnswerGenerator{client: client, cfg: cfg}
}

// Generate returns the model's raw completion for the query grounded in
// the retrieved chunks. Failures come back wrapped as ErrGeneration so
// the orchestrator can substitute an apology instead of failing the query.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, retrieved []rag.Result) (string, error) {
	prompt := buildAnswerPrompt(query, retrieved)
	answer, err := g.client.Complete(ctx, g.cfg, []ai.ChatMessage{
		{Role: "user", Content: prompt},
	}, ai.SamplingOptions{
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// GenerateTitle asks the model for a short chat title seeded with the
// given message. Output longer than 50 runes is cut to 47 plus an
// ellipsis. Any failure degrades to the default title.
func (g *AnswerGenerator) GenerateTitle(ctx context.Context, seedMessage string) string {
	prompt := fmt.Sprintf("Generate a short, descriptive title (maximum 6 words) for a chat that starts with this message: %q\n\nTitle:", seedMessage)
	title, err := g.client.Complete(ctx, g.cfg, []ai.ChatMessage{
		{Role: "user", Content: prompt},
	}, ai.SamplingOptions{
		Temperature: 0.5,
		MaxTokens:   50,
	})
	if err != nil {
		return "New Chat"
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "New Chat"
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		runes := []rune(title)
		title = string(runes[:maxTitleRunes-3]) + "..."
	}
	return title
}

// Apology wraps a generation failure into the user-facing answer that is
// recorded in place of a real one.
func Apology(err error) string {
	return "I apologize, but I encountered an error while generating a response: " + err.Error()
}

func buildAnswerPrompt(query string, retrieved []rag.Result) string {
	var sb strings.Builder
	sb.WriteString("Based on the following context, please answer the question. If the answer cannot be found in the context, please say so.\n\nContext:\n")
	for i, r := range retrieved {
		fmt.Fprintf(&sb, "Document %d (%s):\n%s\n\n", i+1, r.Filename, r.Content)
	}
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
