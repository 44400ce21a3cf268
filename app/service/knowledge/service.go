package knowledge

import (
	"context"
	"encoding/json"
	"fairwaydesk/app/config"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Questions are truncated before embedding, long transcripts add nothing
// to the similarity signal.
const maxEmbedLength = 2000

type embedder interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Service searches the pre-embedded knowledge base. The chunks themselves
// are written by an external ingestion pipeline, this service only reads.
type Service struct {
	cfg      *config.Config
	client   *weaviate.Client
	embedder embedder
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	weaviateCfg := weaviate.Config{
		Scheme: cfg.Weaviate.Scheme,
		Host:   cfg.Weaviate.Host,
	}
	if cfg.Weaviate.APIKey != "" {
		weaviateCfg.AuthConfig = auth.ApiKey{Value: cfg.Weaviate.APIKey}
	}

	client, err := weaviate.NewClient(weaviateCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAI.Decision.Token)
	clientConfig.BaseURL = cfg.OpenAI.Decision.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Service{
		cfg:      cfg,
		client:   client,
		embedder: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Search embeds the question and returns the topK most similar chunks at
// or below maxDistance, closest first.
func (s *Service) Search(ctx context.Context, question string, topK int, maxDistance float64) ([]Chunk, error) {
	if len(question) > maxEmbedLength {
		question = question[:maxEmbedLength]
	}

	vector, err := s.embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector).
		WithDistance(float32(maxDistance))

	fields := []graphql.Field{
		{Name: "source"},
		{Name: "content"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "distance"},
		}},
	}

	resp, err := s.client.GraphQL().Get().
		WithClassName(s.cfg.Weaviate.Class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search failed: %s", resp.Errors[0].Message)
	}

	results, err := s.parseResults(resp.Data)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, Chunk{
			Source:   r.Source,
			Text:     r.Content,
			Distance: r.Additional.Distance,
		})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Distance < chunks[j].Distance
	})

	return chunks, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embedder.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.cfg.OpenAI.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return resp.Data[0].Embedding, nil
}

type chunkResult struct {
	Source     string `json:"source"`
	Content    string `json:"content"`
	Additional struct {
		Distance float64 `json:"distance"`
	} `json:"_additional"`
}

// parseResults goes through JSON to lift weaviate's dynamic response into
// typed results, the class name is configuration so the shape cannot be a
// static struct tag.
func (s *Service) parseResults(data map[string]models.JSONObject) ([]chunkResult, error) {
	raw, err := json.Marshal(data["Get"])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search response: %w", err)
	}

	var byClass map[string][]chunkResult
	if err = json.Unmarshal(raw, &byClass); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return byClass[s.cfg.Weaviate.Class], nil
}
