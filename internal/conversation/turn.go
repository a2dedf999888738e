package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// Role names as they appear on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is one entry of a conversation. The concrete types are SystemTurn,
// UserTurn, AssistantTurn and ToolTurn; no other type can satisfy it.
type Turn interface {
	Role() string
	isTurn()
}

type SystemTurn struct {
	Content string
}

type UserTurn struct {
	Content string
}

// AssistantTurn is a model reply. ToolCalls is non-empty when the model asks
// the caller to run one or more tools before it answers.
type AssistantTurn struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolTurn carries a tool result back to the model. CallID must match the ID
// of a ToolCall in the assistant turn right before it.
type ToolTurn struct {
	CallID  string
	Name    string
	Content string
}

// ToolCall is a tool invocation requested by the model. Arguments is the raw
// JSON-encoded argument object.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func (SystemTurn) Role() string    { return RoleSystem }
func (UserTurn) Role() string      { return RoleUser }
func (AssistantTurn) Role() string { return RoleAssistant }
func (ToolTurn) Role() string      { return RoleTool }

func (SystemTurn) isTurn()    {}
func (UserTurn) isTurn()      {}
func (AssistantTurn) isTurn() {}
func (ToolTurn) isTurn()      {}

// Message is the role/content pair clients send as history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var ErrInvalidHistory = errors.New("invalid conversation history")

// ParseHistory converts client messages into turns. Only user and assistant
// roles are accepted and the last message must come from the user.
func ParseHistory(msgs []Message) ([]Turn, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: no messages", ErrInvalidHistory)
	}

	turns := make([]Turn, 0, len(msgs))
	for i, m := range msgs {
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case RoleUser:
			turns = append(turns, UserTurn{Content: m.Content})
		case RoleAssistant:
			turns = append(turns, AssistantTurn{Content: m.Content})
		default:
			return nil, fmt.Errorf("%w: message %d has unsupported role %q", ErrInvalidHistory, i, m.Role)
		}
	}

	last, ok := turns[len(turns)-1].(UserTurn)
	if !ok {
		return nil, fmt.Errorf("%w: last message must be from the user", ErrInvalidHistory)
	}
	if strings.TrimSpace(last.Content) == "" {
		return nil, fmt.Errorf("%w: last message is empty", ErrInvalidHistory)
	}
	return turns, nil
}
