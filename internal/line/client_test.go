package line

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/an26179529/GroupBot/internal/identity"
	"github.com/an26179529/GroupBot/internal/order"
)

// replyBody mirrors the JSON the Messaging API receives on /message/reply.
type replyBody struct {
	ReplyToken string `json:"replyToken"`
	Messages   []struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		QuickReply *struct {
			Items []struct {
				Type   string `json:"type"`
				Action struct {
					Type  string `json:"type"`
					Label string `json:"label"`
					Text  string `json:"text"`
				} `json:"action"`
			} `json:"items"`
		} `json:"quickReply"`
	} `json:"messages"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", "token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestClientReply(t *testing.T) {
	var got replyBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/bot/message/reply" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{}`))
	})

	var replies []order.QuickReply
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("餐廳%02d", i)
		replies = append(replies, order.QuickReply{Label: name, Payload: order.SelectPayload(name)})
	}
	replies[0].Label = strings.Repeat("長", 30)

	err := c.Reply(context.Background(), "reply-token", order.Reply{Text: "開始點餐！", QuickReplies: replies})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if got.ReplyToken != "reply-token" || len(got.Messages) != 1 {
		t.Fatalf("request = %+v", got)
	}
	msg := got.Messages[0]
	if msg.Type != "text" || msg.Text != "開始點餐！" {
		t.Errorf("message = %+v", msg)
	}
	if msg.QuickReply == nil || len(msg.QuickReply.Items) != maxQuickReplyItems {
		t.Fatalf("quick replies = %+v", msg.QuickReply)
	}
	first := msg.QuickReply.Items[0].Action
	if len([]rune(first.Label)) != maxLabelRunes {
		t.Errorf("label runes = %d, want %d", len([]rune(first.Label)), maxLabelRunes)
	}
	if second := msg.QuickReply.Items[1].Action; second.Type != "message" || second.Text != "/order 餐廳01" {
		t.Errorf("action = %+v", second)
	}
}

func TestClientReplyWithoutQuickReplies(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{}`))
	})

	if err := c.Reply(context.Background(), "t", order.Reply{Text: "hi"}); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	msg := raw["messages"].([]any)[0].(map[string]any)
	if _, ok := msg["quickReply"]; ok {
		t.Errorf("quickReply present: %v", msg)
	}
}

func TestClientReplyError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid reply token"}`, http.StatusBadRequest)
	})

	err := c.Reply(context.Background(), "t", order.Reply{Text: "hi"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Reply() error = %v, want status 400", err)
	}
}

func TestClientNameFor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		names := map[string]string{
			"/v2/bot/group/C1/member/U1": "群組小明",
			"/v2/bot/room/R1/member/U1":  "聊天室小明",
			"/v2/bot/profile/U1":         "小明",
		}
		name, ok := names[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"userId": "U1", "displayName": name})
	})

	tests := []struct {
		actor   identity.Actor
		want    string
		wantErr bool
	}{
		{actor: identity.Actor{UserID: "U1", GroupID: "C1"}, want: "群組小明"},
		{actor: identity.Actor{UserID: "U1", GroupID: "R1"}, want: "聊天室小明"},
		{actor: identity.Actor{UserID: "U1"}, want: "小明"},
		{actor: identity.Actor{UserID: "U2"}, wantErr: true},
		{actor: identity.Actor{}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := c.NameFor(context.Background(), tt.actor)
		if (err != nil) != tt.wantErr {
			t.Errorf("NameFor(%+v) error = %v, wantErr %v", tt.actor, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NameFor(%+v) = %q, want %q", tt.actor, got, tt.want)
		}
	}
}
