package dialog

import (
	"context"
	"fairwaydesk/app/service/session"
	"fmt"
	"strings"
	"time"

	_ "embed"

	"github.com/sashabaranov/go-openai"
)

//go:embed system_prompt.txt
var systemPromptTemplate string

//go:embed plans.json
var plansJSON string

const companyDataPrefix = "[COMPANY_DATA]"

const maxReasonDuration = 30 * time.Second

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// modelAgent is the single model collaborator: full history in, raw text
// out. Interpreting that text is Normalize's job.
type modelAgent struct {
	client    completer
	model     string
	maxTokens int
}

func (a *modelAgent) Call(ctx context.Context, history []session.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemPrompt(),
	})

	for _, turn := range history {
		messages = append(messages, mapTurn(turn))
	}

	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	aiResponse, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:               a.model,
			Messages:            messages,
			MaxCompletionTokens: a.maxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return aiResponse.Choices[0].Message.Content, nil
}

// mapTurn renders a stored turn as the model should see it. Company turns
// become annotated assistant messages so the model can tell "what it said"
// from "what the backend told it".
func mapTurn(turn session.Turn) openai.ChatCompletionMessage {
	switch turn.Role {
	case session.RoleCompany:
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: companyDataPrefix + "\n" + turn.Content,
		}
	case session.RoleAssistant:
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: turn.Content,
		}
	case session.RoleSystem:
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: turn.Content,
		}
	default:
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: turn.Content,
		}
	}
}

func buildSystemPrompt() string {
	return strings.ReplaceAll(systemPromptTemplate, "{plans}", plansJSON)
}
