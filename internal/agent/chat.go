package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"travelguide/internal/conversation"
	"travelguide/internal/llm"
	"travelguide/internal/model"
	"travelguide/internal/weather"

	"go.uber.org/zap"
)

// WeatherErrorResult is the tool result sent to the model when the weather
// lookup failed.
const WeatherErrorResult = "Error fetching weather."

var ErrMalformedToolArguments = errors.New("malformed tool call arguments")

// TravelAgent answers one chat turn: a first model call with the weather tool
// declared, the requested tool calls, and a second model call that writes the
// final answer.
type TravelAgent struct {
	LLM     llm.Provider
	Weather weather.Service
	Logger  *zap.Logger
}

func NewTravelAgent(p llm.Provider, w weather.Service, logger *zap.Logger) *TravelAgent {
	return &TravelAgent{
		LLM:     p,
		Weather: w,
		Logger:  logger,
	}
}

func (a *TravelAgent) Name() string {
	return "TravelAgent"
}

func (a *TravelAgent) Process(ctx context.Context, msg *model.InternalMessage) (*model.ChatReply, error) {
	// 1. Construct Messages
	history := conversation.StripGreeting(msg.History)
	turns := conversation.Assemble(history, msg.Language)

	// 2. Call LLM (First Turn)
	first, err := a.LLM.Complete(ctx, turns, []llm.Tool{llm.WeatherTool})
	if err != nil {
		return nil, fmt.Errorf("first model call: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		return &model.ChatReply{Reply: first.Content}, nil
	}

	// 3. Handle Tool Calls, in order
	a.Logger.Info("Model requested tools", zap.Int("count", len(first.ToolCalls)))
	turns = append(turns, *first)

	var (
		meta   *model.WeatherMeta
		latest *weather.Summary
	)
	for _, call := range first.ToolCalls {
		content, summary, err := a.runTool(ctx, call, msg.Language)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			latest = summary
			meta = &model.WeatherMeta{
				City:      summary.Location,
				Condition: summary.Condition,
				Temp:      summary.Temperature,
			}
		}
		turns = append(turns, conversation.ToolTurn{
			CallID:  call.ID,
			Name:    call.Name,
			Content: content,
		})
	}

	// 4. Call LLM (Second Turn - Summary)
	final, err := a.LLM.Complete(ctx, turns, nil)
	if err != nil {
		return nil, fmt.Errorf("second model call: %w", err)
	}

	return &model.ChatReply{
		Reply:          final.Content,
		WeatherFetched: true,
		Weather:        meta,
		Summary:        latest,
	}, nil
}

// runTool executes one tool call and returns the tool turn content. The
// summary is non-nil only for a successful weather lookup. Malformed
// arguments and an unconfigured weather service are returned as errors.
func (a *TravelAgent) runTool(ctx context.Context, call conversation.ToolCall, lang conversation.Language) (string, *weather.Summary, error) {
	if call.Name != llm.WeatherToolName {
		a.Logger.Warn("Model requested unknown tool", zap.String("tool", call.Name))
		return "Unknown tool: " + call.Name, nil, nil
	}

	var args struct {
		City string `json:"city"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrMalformedToolArguments, call.Name, err)
	}

	city := strings.TrimSpace(args.City)
	if city == "" {
		a.Logger.Warn("get_weather called without a city", zap.String("call_id", call.ID))
		return WeatherErrorResult, nil, nil
	}

	out, err := a.Weather.Fetch(ctx, city, lang.Code())
	if err != nil {
		return "", nil, fmt.Errorf("get_weather: %w", err)
	}
	if !out.OK() {
		return WeatherErrorResult, nil, nil
	}

	b, err := json.Marshal(out.Summary)
	if err != nil {
		return "", nil, fmt.Errorf("encode weather summary: %w", err)
	}
	return string(b), out.Summary, nil
}
