package model

import (
	"travelguide/internal/conversation"
	"travelguide/internal/weather"
)

// InternalMessage is a chat request normalised across channels.
type InternalMessage struct {
	Platform string                // "api", "feishu"
	ChatID   string                // Conversation ID, informational only
	UserID   string                // Sender ID
	Language conversation.Language // Reply language tie-break
	History  []conversation.Turn   // user/assistant turns, last one from the user
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Messages []conversation.Message `json:"messages" binding:"required"`
	Language string                 `json:"language"`
}

// ChatReply is the body of a successful chat response.
type ChatReply struct {
	Reply          string       `json:"reply"`
	WeatherFetched bool         `json:"weatherFetched"`
	Weather        *WeatherMeta `json:"weather,omitempty"`

	// Summary is the last successful lookup, for channels that render it.
	Summary *weather.Summary `json:"-"`
}

// WeatherMeta lets clients theme the UI after the weather tool ran.
type WeatherMeta struct {
	City      string  `json:"city"`
	Condition string  `json:"condition"`
	Temp      float64 `json:"temp"`
}

// ErrorResponse is the body of every 4xx/5xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
