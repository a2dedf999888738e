package core

import (
	"context"
	"errors"

	"travelguide/internal/agent"
	"travelguide/internal/model"

	"go.uber.org/zap"
)

var ErrNoAgent = errors.New("no agent registered")

type Dispatcher struct {
	Agents  map[string]agent.Agent
	Default string
	Logger  *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Agents: make(map[string]agent.Agent),
		Logger: logger,
	}
}

// RegisterAgent adds a; the first agent registered becomes the default.
func (d *Dispatcher) RegisterAgent(a agent.Agent) {
	d.Agents[a.Name()] = a
	if d.Default == "" {
		d.Default = a.Name()
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg *model.InternalMessage) (*model.ChatReply, error) {
	d.Logger.Info("Dispatching message",
		zap.String("platform", msg.Platform),
		zap.String("chat_id", msg.ChatID),
		zap.Int("turns", len(msg.History)),
		zap.String("language", msg.Language.Name()))

	targetAgent := d.Agents[d.Default]
	if targetAgent == nil {
		return nil, ErrNoAgent
	}

	reply, err := targetAgent.Process(ctx, msg)
	if err != nil {
		return nil, err
	}

	d.Logger.Info("Reply ready",
		zap.String("agent", targetAgent.Name()),
		zap.Bool("weather_fetched", reply.WeatherFetched))
	return reply, nil
}
