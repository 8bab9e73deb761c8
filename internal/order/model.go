package order

import (
	"time"

	"github.com/an26179529/GroupBot/internal/catalog"
)

// Session is the open group order of one conversation.
type Session struct {
	ID         string       `json:"id"`
	Key        string       `json:"key"`
	Restaurant string       `json:"restaurant,omitempty"`
	Menu       catalog.Menu `json:"menu,omitempty"`
	Lines      []Line       `json:"lines"`
	OpenedBy   string       `json:"opened_by,omitempty"`
	OpenedAt   time.Time    `json:"opened_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Line is one accepted /join.
type Line struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Item            string    `json:"item"`
	Quantity        int       `json:"quantity"`
	At              time.Time `json:"at"`
}

// Clone returns a deep copy; nil stays nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Lines = append([]Line(nil), s.Lines...)
	c.Menu = append(catalog.Menu(nil), s.Menu...)
	return &c
}

// HasRestaurant reports whether a restaurant has been picked.
func (s *Session) HasRestaurant() bool {
	return s != nil && s.Restaurant != ""
}

func (s *Session) validate() error {
	if s == nil {
		return nil
	}
	if s.Restaurant == "" && len(s.Lines) > 0 {
		return ErrInvariant
	}
	for _, l := range s.Lines {
		if l.Quantity <= 0 {
			return ErrInvariant
		}
	}
	return nil
}

// QuickReply is a selectable option attached to a reply.
type QuickReply struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// Reply is what the transport sends back to the conversation.
type Reply struct {
	Text         string       `json:"text"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}
