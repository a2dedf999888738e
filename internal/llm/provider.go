package llm

import (
	"context"
	"errors"

	"travelguide/internal/conversation"
)

var (
	ErrMissingAPIKey = errors.New("LLM API key is not configured")
	ErrEmptyResponse = errors.New("empty response from LLM")
)

// Provider is a chat-completion backend with function calling.
//
// When tools is non-empty the model may answer with tool calls
// (tool_choice "auto"). With nil tools it must answer in text.
type Provider interface {
	Complete(ctx context.Context, turns []conversation.Turn, tools []Tool) (*conversation.AssistantTurn, error)
}

// Tool declares one callable function to the model.
type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

type Function struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

const WeatherToolName = "get_weather"

// WeatherTool is the get_weather declaration sent with the first model call.
var WeatherTool = Tool{
	Type: "function",
	Function: Function{
		Name:        WeatherToolName,
		Description: "Get current weather for a specific city. Use this when the user asks about weather, climate, travel plans, activities or mentions a location.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "The name of the city (e.g., Tokyo, Kyoto, Sapporo)",
				},
			},
			"required": []string{"city"},
		},
	},
}
