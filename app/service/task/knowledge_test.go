package task

import (
	"context"
	"errors"
	"fairwaydesk/app/service/knowledge"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	chunks []knowledge.Chunk
	err    error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int, _ float64) ([]knowledge.Chunk, error) {
	return f.chunks, f.err
}

func callKnowledge(t *testing.T, kb searcher) string {
	t.Helper()

	tool := &knowledgeTool{kb: kb, topK: 3, maxDistance: 0.3}

	out, err := tool.Call(context.Background(), `{"question":"what does the super pass cover"}`)
	require.NoError(t, err)

	return out
}

func TestKnowledgeTool_FormatsAnswer(t *testing.T) {
	out := callKnowledge(t, &fakeSearcher{chunks: []knowledge.Chunk{
		{Source: "plans.md", Text: "The Super Pass covers all nine regions.", Distance: 0.1},
	}})

	assert.Equal(t,
		"Question: what does the super pass cover\nAnswer:\nplans.md\nContent: The Super Pass covers all nine regions.",
		out)
}

func TestKnowledgeTool_EmptyResultIsSentinel(t *testing.T) {
	out := callKnowledge(t, &fakeSearcher{})

	assert.Equal(t, "Question: what does the super pass cover\n"+SentinelNoResult, out)
}

func TestKnowledgeTool_NoResultPhraseIsSentinel(t *testing.T) {
	out := callKnowledge(t, &fakeSearcher{chunks: []knowledge.Chunk{
		{Source: "faq.md", Text: "Not Found", Distance: 0.2},
	}})

	assert.Equal(t, "Question: what does the super pass cover\n"+SentinelNoResult, out)
}

func TestKnowledgeTool_SearchFailureIsSentinel(t *testing.T) {
	out := callKnowledge(t, &fakeSearcher{err: errors.New("weaviate unreachable")})

	assert.Equal(t, "Question: what does the super pass cover\n"+SentinelNoResult, out)
}

func TestKnowledgeTool_RejectsBadInput(t *testing.T) {
	tool := &knowledgeTool{kb: &fakeSearcher{}, topK: 3, maxDistance: 0.3}

	_, err := tool.Call(context.Background(), "{broken")

	assert.Error(t, err)
}
