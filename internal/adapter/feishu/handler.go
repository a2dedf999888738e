package feishu

import (
	"context"
	"encoding/json"
	"strings"

	"travelguide/config"
	"travelguide/internal/conversation"
	"travelguide/internal/core"
	"travelguide/internal/model"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkevent "github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
	"go.uber.org/zap"
)

// Adapter answers Feishu text messages. Each message is handled as a
// one-turn conversation; nothing is remembered between messages.
type Adapter struct {
	Config     config.FeishuConfig
	Dispatcher *core.Dispatcher
	Language   conversation.Language
	Logger     *zap.Logger
	Client     *lark.Client
}

func NewAdapter(cfg config.FeishuConfig, lang conversation.Language, dispatcher *core.Dispatcher, logger *zap.Logger) *Adapter {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogReqAtDebug(true),
		lark.WithLogLevel(larkcore.LogLevelInfo),
	)

	return &Adapter{
		Config:     cfg,
		Dispatcher: dispatcher,
		Language:   lang,
		Logger:     logger,
		Client:     client,
	}
}

// Enabled reports whether Feishu credentials are configured.
func (a *Adapter) Enabled() bool {
	return a.Config.AppID != "" && a.Config.AppSecret != ""
}

// StartWS starts the WebSocket connection
func (a *Adapter) StartWS(ctx context.Context) error {
	eventHandler := larkevent.NewEventDispatcher(a.Config.VerificationToken, a.Config.EncryptKey).
		OnP2MessageReceiveV1(a.handleMessage)

	cli := larkws.NewClient(a.Config.AppID, a.Config.AppSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	a.Logger.Info("Starting Feishu WebSocket client...")
	return cli.Start(ctx)
}

// messageText extracts the text of a {"text":"..."} message body.
func messageText(content string) (string, bool) {
	var contentMap map[string]string
	if err := json.Unmarshal([]byte(content), &contentMap); err != nil {
		return "", false
	}
	text := strings.TrimSpace(contentMap["text"])
	return text, text != ""
}

// toInternal builds the one-turn request dispatched for a Feishu message.
func (a *Adapter) toInternal(chatID, senderID, text string) *model.InternalMessage {
	return &model.InternalMessage{
		Platform: "feishu",
		ChatID:   chatID,
		UserID:   senderID,
		Language: a.Language,
		History:  []conversation.Turn{conversation.UserTurn{Content: text}},
	}
}

func (a *Adapter) handleMessage(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
	if event.Event == nil || event.Event.Message == nil || event.Event.Message.Content == nil {
		return nil
	}
	msgID := larkcore.StringValue(event.Event.Message.MessageId)
	chatID := larkcore.StringValue(event.Event.Message.ChatId)
	senderID := ""
	if event.Event.Sender != nil && event.Event.Sender.SenderId != nil {
		senderID = larkcore.StringValue(event.Event.Sender.SenderId.OpenId)
	}

	text, ok := messageText(*event.Event.Message.Content)
	if !ok {
		a.Logger.Warn("Ignoring non-text Feishu message", zap.String("message_id", msgID))
		return nil
	}

	a.Logger.Info("Received message", zap.String("text", text), zap.String("sender", senderID))

	internalMsg := a.toInternal(chatID, senderID, text)

	go func() {
		reply, err := a.Dispatcher.Dispatch(context.Background(), internalMsg)
		if err != nil {
			a.Logger.Error("Dispatch failed", zap.Error(err))
			return
		}

		if text := replyText(reply); text != "" {
			a.Reply(msgID, text)
		}
	}()

	return nil
}

// replyText is the answer followed by the weather card when a lookup
// succeeded. Feishu text messages do not render Markdown, so the card's plain
// layout is used as is.
func replyText(reply *model.ChatReply) string {
	if reply == nil {
		return ""
	}
	text := strings.TrimSpace(reply.Reply)
	if reply.Summary == nil {
		return text
	}
	card := reply.Summary.ToMarkdown()
	if text == "" {
		return card
	}
	return text + "\n\n" + card
}

// textContent encodes text as a Feishu text message body.
func textContent(text string) (string, error) {
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Reply answers messageID in its thread.
func (a *Adapter) Reply(messageID string, text string) {
	content, err := textContent(text)
	if err != nil {
		a.Logger.Error("Failed to encode Feishu reply", zap.Error(err))
		return
	}

	req := larkim.NewReplyMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewReplyMessageReqBodyBuilder().
			MsgType(larkim.MsgTypeText).
			Content(content).
			Build()).
		Build()
	resp, err := a.Client.Im.Message.Reply(context.Background(), req)
	switch {
	case err != nil:
		a.Logger.Error("Feishu reply failed", zap.String("message_id", messageID), zap.Error(err))
	case !resp.Success():
		a.Logger.Error("Feishu reply rejected",
			zap.String("message_id", messageID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
	default:
		a.Logger.Info("Feishu reply sent", zap.String("message_id", messageID), zap.Int("chars", len(text)))
	}
}
