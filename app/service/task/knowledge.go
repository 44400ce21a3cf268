package task

import (
	"context"
	"encoding/json"
	"fairwaydesk/app/service/knowledge"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elliotchance/pie/v2"
)

// Backend phrasings that mean "nothing found" despite a non-empty payload,
// matched case-insensitively against the whole result text.
var noResultPhrases = []string{"no result", "not found", "queryset []"}

type searcher interface {
	Search(ctx context.Context, question string, topK int, maxDistance float64) ([]knowledge.Chunk, error)
}

// knowledgeTool answers free-text questions from the pre-embedded knowledge
// base. Empty or not-found-shaped results normalize to the NO_RESULT
// sentinel so the model never mistakes them for an answer.
type knowledgeTool struct {
	kb          searcher
	topK        int
	maxDistance float64
}

func (t *knowledgeTool) Name() string {
	return KindQueryGeneralData
}

func (t *knowledgeTool) Description() string {
	return "Retrieve knowledge base content relevant to a customer question. " +
		"Input must be a JSON object with a question field."
}

func (t *knowledgeTool) Call(ctx context.Context, input string) (string, error) {
	var params map[string]string
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("invalid params JSON: %w", err)
	}

	question := strings.TrimSpace(params[ParamQuestion])

	chunks, err := t.kb.Search(ctx, question, t.topK, t.maxDistance)
	if err != nil {
		slog.Warn("Knowledge search failed", "question", question, "error", err)
		chunks = nil
	}

	text := formatChunks(chunks)
	if text == "" || hasNoResultPhrase(text) {
		return fmt.Sprintf("Question: %s\n%s", question, SentinelNoResult), nil
	}

	return fmt.Sprintf("Question: %s\nAnswer:\n%s", question, text), nil
}

func formatChunks(chunks []knowledge.Chunk) string {
	var builder strings.Builder

	for _, chunk := range chunks {
		builder.WriteString(fmt.Sprintf("%s\nContent: %s\n\n", chunk.Source, chunk.Text))
	}

	return strings.TrimSpace(builder.String())
}

func hasNoResultPhrase(text string) bool {
	low := strings.ToLower(text)

	return pie.Any(noResultPhrases, func(phrase string) bool {
		return strings.Contains(low, phrase)
	})
}
