// Package line serves the LINE Messaging API webhook and talks back to the
// reply and profile endpoints through the official SDK.
package line

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/an26179529/GroupBot/internal/identity"
	"github.com/an26179529/GroupBot/internal/order"
)

const (
	Platform        = "line"
	SignatureHeader = "X-Line-Signature"

	maxBodyBytes = 1 << 20
)

// source is the part of a webhook source the bot cares about. chatID is the
// group or room id and is empty for one-on-one chats.
type source struct {
	userID string
	chatID string
}

func sourceOf(src webhook.SourceInterface) (source, bool) {
	switch s := src.(type) {
	case webhook.GroupSource:
		return source{userID: s.UserId, chatID: s.GroupId}, true
	case webhook.RoomSource:
		return source{userID: s.UserId, chatID: s.RoomId}, true
	case webhook.UserSource:
		return source{userID: s.UserId}, true
	}
	return source{}, false
}

// conversationKey returns the session key for the chat the source belongs to.
func (s source) conversationKey() string {
	if s.chatID != "" {
		return Platform + ":" + s.chatID
	}
	return Platform + ":" + s.userID
}

// ConversationKey returns the session key of the chat src belongs to, or ""
// for sources the bot does not handle.
func ConversationKey(src webhook.SourceInterface) string {
	s, ok := sourceOf(src)
	if !ok {
		return ""
	}
	return s.conversationKey()
}

// eventText extracts the command text and reply token from text messages and
// postbacks. Other events carry no command.
func eventText(event webhook.EventInterface) (text, replyToken string, src webhook.SourceInterface, ok bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		msg, isText := e.Message.(webhook.TextMessageContent)
		if !isText {
			return "", "", nil, false
		}
		return msg.Text, e.ReplyToken, e.Source, true
	case webhook.PostbackEvent:
		if e.Postback == nil {
			return "", "", nil, false
		}
		return e.Postback.Data, e.ReplyToken, e.Source, true
	}
	return "", "", nil, false
}

// Dispatcher is the part of order.Service the webhook needs.
type Dispatcher interface {
	HandleCommand(ctx context.Context, key string, actor identity.Actor, text string) order.Reply
}

type Replier interface {
	Reply(ctx context.Context, replyToken string, reply order.Reply) error
}

type WebhookRecorder interface {
	RecordWebhook(platform string, statusCode int)
}

// Handler is the http.Handler mounted at the webhook callback path.
type Handler struct {
	secret   string
	orders   Dispatcher
	replier  Replier
	recorder WebhookRecorder
}

func NewHandler(channelSecret string, orders Dispatcher, replier Replier, recorder WebhookRecorder) *Handler {
	return &Handler{secret: channelSecret, orders: orders, replier: replier, recorder: recorder}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.serve(w, r)
	if h.recorder != nil {
		h.recorder.RecordWebhook(Platform, status)
	}
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) int {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	cb, err := webhook.ParseRequest(h.secret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			log.Printf("line: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return http.StatusBadRequest
		}
		log.Printf("line: failed to parse webhook: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	for _, event := range cb.Events {
		h.handleEvent(r.Context(), event)
	}

	w.Write([]byte("OK"))
	return http.StatusOK
}

func (h *Handler) handleEvent(ctx context.Context, event webhook.EventInterface) {
	text, replyToken, src, ok := eventText(event)
	if !ok || replyToken == "" {
		return
	}
	s, ok := sourceOf(src)
	if !ok {
		log.Printf("line: ignoring event from unsupported source %T", src)
		return
	}

	key := s.conversationKey()
	actor := identity.Actor{
		Platform: Platform,
		UserID:   s.userID,
		GroupID:  s.chatID,
	}
	reply := h.orders.HandleCommand(ctx, key, actor, text)

	if err := h.replier.Reply(ctx, replyToken, reply); err != nil {
		log.Printf("line: failed to reply in %s: %v", key, err)
	}
}
