package agent

import (
	"context"

	"travelguide/internal/model"
)

type Agent interface {
	Name() string
	Process(ctx context.Context, msg *model.InternalMessage) (*model.ChatReply, error)
}
