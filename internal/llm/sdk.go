package llm

import (
	"context"
	"fmt"

	"travelguide/config"
	"travelguide/internal/conversation"

	openai "github.com/sashabaranov/go-openai"
)

// SDKProvider is the go-openai backed Provider.
type SDKProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

func NewSDKProvider(cfg config.LLMConfig) *SDKProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = BaseURL(cfg)

	return &SDKProvider{
		client: openai.NewClientWithConfig(clientConfig),
		apiKey: cfg.APIKey,
		model:  ModelName(cfg),
	}
}

func (p *SDKProvider) Complete(ctx context.Context, turns []conversation.Turn, tools []Tool) (*conversation.AssistantTurn, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: toSDKMessages(turns),
	}
	if len(tools) > 0 {
		req.Tools = toSDKTools(tools)
		req.ToolChoice = "auto"
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	turn := &conversation.AssistantTurn{Content: msg.Content}
	for _, c := range msg.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, conversation.ToolCall{
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		})
	}
	return turn, nil
}

func toSDKMessages(turns []conversation.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		switch t := t.(type) {
		case conversation.SystemTurn:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: t.Content})
		case conversation.UserTurn:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: t.Content})
		case conversation.AssistantTurn:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: t.Content}
			for _, c := range t.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   c.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      c.Name,
						Arguments: c.Arguments,
					},
				})
			}
			out = append(out, msg)
		case conversation.ToolTurn:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    t.Content,
				Name:       t.Name,
				ToolCallID: t.CallID,
			})
		}
	}
	return out
}

func toSDKTools(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}
