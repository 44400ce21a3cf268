package dialog

import (
	"context"
	"fairwaydesk/app/config"
	"fairwaydesk/app/service/session"
	"fairwaydesk/app/service/task"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/do"
)

type taskDispatcher interface {
	Dispatch(ctx context.Context, kind string, params map[string]string) task.Result
}

// Service runs the decide/execute loop for one inbound user message. All
// cycles for a message are serialized: every decision depends on the session
// state the previous cycle just wrote. Cross-session parallelism is free,
// sessions never share state.
type Service struct {
	cfg        *config.Config
	sessionSvc *session.Service
	taskSvc    taskDispatcher
	agent      *modelAgent
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Service{
		cfg:        cfg,
		sessionSvc: do.MustInvoke[*session.Service](di),
		taskSvc:    do.MustInvoke[*task.Service](di),
		agent: &modelAgent{
			client:    createClient(cfg.OpenAI.Decision),
			model:     cfg.OpenAI.Decision.Model,
			maxTokens: cfg.OpenAI.Decision.MaxTokens,
		},
	}, nil
}

// HandleUserTurn appends the user's message and loops decide/execute until
// the model produces a terminal message, which it returns. An empty
// userText re-runs the loop on existing history without appending, that is
// how a transport asks for an opening line mid-session.
func (s *Service) HandleUserTurn(ctx context.Context, sessionID, userText string) (string, error) {
	if strings.TrimSpace(userText) != "" {
		err := s.sessionSvc.Append(sessionID, session.Turn{
			Role:    session.RoleUser,
			Content: userText,
		})
		if err != nil {
			return "", fmt.Errorf("failed to append user turn: %w", err)
		}
	}

	for cycle := 0; cycle < s.cfg.Agent.MaxCycles; cycle++ {
		history, err := s.sessionSvc.Get(sessionID)
		if err != nil {
			return "", fmt.Errorf("failed to load session: %w", err)
		}

		decision := s.decide(ctx, history)

		fillDefaultQuestion(&decision, history)

		// The guard compares against history as it was before this
		// decision lands in it.
		suppress := decision.Task != nil && shouldSuppress(decision.Task, history)

		if err = s.appendDecision(sessionID, decision); err != nil {
			return "", err
		}

		if decision.Task == nil {
			return decision.MessageToUser, nil
		}

		if suppress {
			slog.Info("Suppressed repeated task",
				"session_id", sessionID,
				"kind", decision.Task.Kind)

			apology := Decision{MessageToUser: loopApologyMessage}
			if err = s.appendDecision(sessionID, apology); err != nil {
				return "", err
			}

			return apology.MessageToUser, nil
		}

		result := s.taskSvc.Dispatch(ctx, decision.Task.Kind, decision.Task.Params)

		err = s.sessionSvc.Append(sessionID, session.Turn{
			Role:    session.RoleCompany,
			Content: result.Text(),
		})
		if err != nil {
			return "", fmt.Errorf("failed to append company turn: %w", err)
		}
	}

	slog.Warn("Cycle ceiling reached",
		"session_id", sessionID,
		"max_cycles", s.cfg.Agent.MaxCycles,
		"telegram", true)

	fallback := Decision{MessageToUser: FallbackMessage}
	if err := s.appendDecision(sessionID, fallback); err != nil {
		return "", err
	}

	return fallback.MessageToUser, nil
}

// decide invokes the model and normalizes its raw output. Collaborator
// failures degrade to the fixed apology, the raw error never reaches the
// user.
func (s *Service) decide(ctx context.Context, history []session.Turn) Decision {
	raw, err := s.agent.Call(ctx, history)
	if err != nil {
		slog.Error("Model invocation failed", "error", err)
		return Decision{MessageToUser: FallbackMessage}
	}

	return Normalize(raw)
}

func (s *Service) appendDecision(sessionID string, decision Decision) error {
	err := s.sessionSvc.Append(sessionID, session.Turn{
		Role:    session.RoleAssistant,
		Content: decision.encode(),
		Task:    decision.Task,
	})
	if err != nil {
		return fmt.Errorf("failed to append assistant turn: %w", err)
	}

	return nil
}

// fillDefaultQuestion substitutes the last user message when the model
// requests a knowledge lookup without saying what to look up, a degenerate
// request that would otherwise search for nothing.
func fillDefaultQuestion(decision *Decision, history []session.Turn) {
	if decision.Task == nil || decision.Task.Kind != task.KindQueryGeneralData {
		return
	}

	if decision.Task.Params[task.ParamQuestion] != "" {
		return
	}

	question := lastUserText(history)
	if question == "" {
		question = "No user question found."
	}

	if decision.Task.Params == nil {
		decision.Task.Params = make(map[string]string, 1)
	}
	decision.Task.Params[task.ParamQuestion] = question
}
