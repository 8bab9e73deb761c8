package line

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/an26179529/GroupBot/internal/identity"
	"github.com/an26179529/GroupBot/internal/order"
)

const (
	maxQuickReplyItems = 13
	maxLabelRunes      = 20
	maxTextRunes       = 5000
)

// Client wraps the Messaging API client for replies and profile lookups.
// The SDK client has no per-call context, so calls are bounded by the
// HTTP client timeout instead.
type Client struct {
	api *messaging_api.MessagingApiAPI
}

func NewClient(baseURL, accessToken string) (*Client, error) {
	opts := []messaging_api.MessagingApiAPIOption{
		messaging_api.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	}
	if baseURL != "" {
		opts = append(opts, messaging_api.WithEndpoint(baseURL))
	}
	api, err := messaging_api.NewMessagingApiAPI(accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}
	return &Client{api: api}, nil
}

// textMessage renders reply as a single text message, with its quick replies
// as message-action buttons.
func textMessage(reply order.Reply) messaging_api.TextMessage {
	msg := messaging_api.TextMessage{Text: truncate(reply.Text, maxTextRunes)}
	if len(reply.QuickReplies) == 0 {
		return msg
	}
	qr := &messaging_api.QuickReply{}
	for i, r := range reply.QuickReplies {
		if i == maxQuickReplyItems {
			break
		}
		qr.Items = append(qr.Items, messaging_api.QuickReplyItem{
			Type: "action",
			Action: messaging_api.MessageAction{
				Label: truncate(r.Label, maxLabelRunes),
				Text:  r.Payload,
			},
		})
	}
	msg.QuickReply = qr
	return msg
}

func (c *Client) Reply(_ context.Context, replyToken string, reply order.Reply) error {
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{textMessage(reply)},
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// NameFor looks up the display name of a LINE user. Group and room members
// are looked up through the chat so users who have not added the bot as a
// friend still resolve.
func (c *Client) NameFor(_ context.Context, a identity.Actor) (string, error) {
	if a.UserID == "" {
		return "", errors.New("missing user id")
	}

	switch {
	// Group ids start with C and room ids with R.
	case strings.HasPrefix(a.GroupID, "C"):
		p, err := c.api.GetGroupMemberProfile(a.GroupID, a.UserID)
		if err != nil {
			return "", fmt.Errorf("get group member profile: %w", err)
		}
		return p.DisplayName, nil
	case strings.HasPrefix(a.GroupID, "R"):
		p, err := c.api.GetRoomMemberProfile(a.GroupID, a.UserID)
		if err != nil {
			return "", fmt.Errorf("get room member profile: %w", err)
		}
		return p.DisplayName, nil
	default:
		p, err := c.api.GetProfile(a.UserID)
		if err != nil {
			return "", fmt.Errorf("get profile: %w", err)
		}
		return p.DisplayName, nil
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
