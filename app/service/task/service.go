package task

import (
	"context"
	"encoding/json"
	"fairwaydesk/app/client/appdb"
	"fairwaydesk/app/client/zoho"
	"fairwaydesk/app/config"
	"fairwaydesk/app/service/knowledge"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/tools"
)

const executorTimeout = 10 * time.Second

var _ do.Shutdownable = (*Service)(nil)

// Service dispatches structured task requests to their executors. Executors
// are stateless tools keyed by task kind, they see only the params extracted
// from the decision, never session state.
type Service struct {
	cfg        *config.Config
	tools      map[string]tools.Tool
	mcpClients []*mcpClientWrapper
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{
		cfg:   cfg,
		tools: make(map[string]tools.Tool),
	}

	s.Register(&accountTool{
		db:  do.MustInvoke[*appdb.Client](di),
		crm: do.MustInvoke[*zoho.Client](di),
	})

	s.Register(&knowledgeTool{
		kb:          do.MustInvoke[*knowledge.Service](di),
		topK:        cfg.Agent.TopK,
		maxDistance: cfg.Agent.MaxDistance,
	})

	if err := s.initializeMCPClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize MCP clients: %w", err)
	}

	return s, nil
}

func (s *Service) Register(tool tools.Tool) {
	s.tools[tool.Name()] = tool
}

// Dispatch runs the executor registered for kind and wraps its payload with
// the origin marker. Unrecognized kinds come back as UNKNOWN_TASK, executor
// failures as the not-found sentinel, never as an error: retrying is the
// model's call on its next turn.
func (s *Service) Dispatch(ctx context.Context, kind string, params map[string]string) Result {
	tool, ok := s.tools[kind]
	if !ok {
		payload, _ := json.Marshal(map[string]any{"app_task": kind, "params": params})
		return Result{Marker: MarkerUnknownTask, Payload: string(payload)}
	}

	input, err := json.Marshal(params)
	if err != nil {
		return Result{Marker: markerFor(kind), Payload: SentinelNoResult}
	}

	ctx, cancel := context.WithTimeout(ctx, executorTimeout)
	defer cancel()

	start := time.Now()
	payload, err := tool.Call(ctx, string(input))
	if err != nil {
		slog.Error("Executor failed", "kind", kind, "error", err)
		return Result{Marker: markerFor(kind), Payload: SentinelNoResult}
	}

	slog.Debug("Executed task",
		"kind", kind,
		"duration", time.Since(start))

	return Result{Marker: markerFor(kind), Payload: payload}
}

func (s *Service) Shutdown() error {
	for _, wrapper := range s.mcpClients {
		if err := wrapper.client.Close(); err != nil {
			slog.Warn("Failed to close MCP client", "name", wrapper.name, "error", err)
		}
	}

	return nil
}
