package llm

import (
	"context"
	"fmt"
	"strings"

	"travelguide/config"
	"travelguide/internal/conversation"

	"github.com/go-resty/resty/v2"
)

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint
// (Groq, OpenAI, DeepSeek) over plain HTTP.
type OpenAIProvider struct {
	client  *resty.Client
	apiKey  string
	baseURL string
	model   string
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"` // For tool response messages
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIRequest struct {
	Model      string        `json:"model"`
	Messages   []wireMessage `json:"messages"`
	Tools      []Tool        `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	return &OpenAIProvider{
		client:  resty.New(),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(BaseURL(cfg), "/"),
		model:   ModelName(cfg),
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, turns []conversation.Turn, tools []Tool) (*conversation.AssistantTurn, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody := openAIRequest{
		Model:    p.model,
		Messages: toWire(turns),
	}
	if len(tools) > 0 {
		reqBody.Tools = tools
		reqBody.ToolChoice = "auto"
	}

	var respBody openAIResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&respBody).
		Post(p.baseURL + "/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("LLM API error (%d): %s", resp.StatusCode(), resp.String())
	}

	if len(respBody.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return fromWire(respBody.Choices[0].Message), nil
}

func toWire(turns []conversation.Turn) []wireMessage {
	out := make([]wireMessage, 0, len(turns))
	for _, t := range turns {
		switch t := t.(type) {
		case conversation.SystemTurn:
			out = append(out, wireMessage{Role: conversation.RoleSystem, Content: t.Content})
		case conversation.UserTurn:
			out = append(out, wireMessage{Role: conversation.RoleUser, Content: t.Content})
		case conversation.AssistantTurn:
			msg := wireMessage{Role: conversation.RoleAssistant, Content: t.Content}
			for _, c := range t.ToolCalls {
				var wc wireToolCall
				wc.ID = c.ID
				wc.Type = "function"
				wc.Function.Name = c.Name
				wc.Function.Arguments = c.Arguments
				msg.ToolCalls = append(msg.ToolCalls, wc)
			}
			out = append(out, msg)
		case conversation.ToolTurn:
			out = append(out, wireMessage{
				Role:       conversation.RoleTool,
				Content:    t.Content,
				Name:       t.Name,
				ToolCallID: t.CallID,
			})
		}
	}
	return out
}

func fromWire(m wireMessage) *conversation.AssistantTurn {
	turn := &conversation.AssistantTurn{Content: m.Content}
	for _, c := range m.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, conversation.ToolCall{
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		})
	}
	return turn
}
