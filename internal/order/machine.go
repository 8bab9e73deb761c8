package order

import (
	"time"

	"github.com/an26179529/GroupBot/internal/catalog"
)

// Input carries everything a transition needs from outside the session.
// It is gathered before the conversation's lock is taken.
type Input struct {
	Now       time.Time
	SessionID string
	ActorID   string
	ActorName string

	Restaurants    []catalog.Restaurant
	RestaurantsErr error

	Menu    catalog.Menu
	MenuErr error
}

// Outcome is the result of one transition. Next is the session to keep
// (nil when the conversation has none afterwards).
type Outcome struct {
	Next    *Session
	Reply   Reply
	Err     error
	Summary []ItemTotal
}

// Transition decides the effect of cmd on cur. It never mutates cur.
func Transition(cur *Session, cmd Command, in Input) Outcome {
	switch cmd.Kind {
	case KindOpen:
		return open(cur, in)
	case KindSelectRestaurant:
		return selectRestaurant(cur, cmd, in)
	case KindJoin:
		return join(cur, cmd, in)
	case KindList:
		return Outcome{Next: cur, Reply: Reply{Text: formatList(cur)}}
	case KindClose:
		return closeOrder(cur)
	case KindRestaurants:
		return restaurants(cur, in)
	default:
		return Outcome{Next: cur, Reply: Reply{Text: formatEcho(cmd.Text)}}
	}
}

func rejected(cur *Session, err error) Outcome {
	return Outcome{Next: cur, Reply: Reply{Text: err.Error()}, Err: err}
}

func open(cur *Session, in Input) Outcome {
	if cur != nil {
		return rejected(cur, ErrAlreadyOpen)
	}
	next := &Session{
		ID:        in.SessionID,
		OpenedBy:  in.ActorID,
		OpenedAt:  in.Now,
		UpdatedAt: in.Now,
	}
	// A catalog failure only costs the quick replies.
	var active []catalog.Restaurant
	if in.RestaurantsErr == nil {
		active = in.Restaurants
	}
	reply := Reply{Text: formatOpenPrompt(active)}
	for _, r := range active {
		reply.QuickReplies = append(reply.QuickReplies, QuickReply{Label: r.Name, Payload: SelectPayload(r.Name)})
	}
	return Outcome{Next: next, Reply: reply}
}

func selectRestaurant(cur *Session, cmd Command, in Input) Outcome {
	if cur == nil {
		return rejected(cur, ErrNoActiveSession)
	}
	if in.MenuErr != nil {
		return rejected(cur, ErrCatalogLookupFailed)
	}
	next := cur.Clone()
	next.Restaurant = cmd.Restaurant
	next.Menu = append(catalog.Menu(nil), in.Menu...)
	next.UpdatedAt = in.Now
	return Outcome{Next: next, Reply: Reply{Text: formatSelected(next.Restaurant, next.Menu)}}
}

func join(cur *Session, cmd Command, in Input) Outcome {
	switch {
	case cur == nil:
		return rejected(cur, ErrNoActiveSession)
	case !cur.HasRestaurant():
		return rejected(cur, ErrRestaurantNotSelected)
	case cmd.Malformed || cmd.Quantity <= 0 || cmd.Quantity > MaxQuantity || cmd.Item == "":
		return rejected(cur, ErrInvalidJoinFormat)
	}
	line := Line{
		ParticipantID:   in.ActorID,
		ParticipantName: in.ActorName,
		Item:            cmd.Item,
		Quantity:        cmd.Quantity,
		At:              in.Now,
	}
	next := cur.Clone()
	next.Lines = append(next.Lines, line)
	next.UpdatedAt = in.Now
	return Outcome{Next: next, Reply: Reply{Text: formatJoined(line)}}
}

func closeOrder(cur *Session) Outcome {
	if cur == nil {
		return rejected(nil, ErrNoActiveSession)
	}
	if len(cur.Lines) == 0 {
		return Outcome{Reply: Reply{Text: ErrEmptyOrderOnClose.Error()}, Err: ErrEmptyOrderOnClose}
	}
	totals := Aggregate(cur.Lines)
	return Outcome{Reply: Reply{Text: formatSummary(cur, totals)}, Summary: totals}
}

func restaurants(cur *Session, in Input) Outcome {
	if in.RestaurantsErr != nil {
		return Outcome{Next: cur, Reply: Reply{Text: "目前無法取得餐廳列表，請稍後再試"}, Err: ErrCatalogLookupFailed}
	}
	return Outcome{Next: cur, Reply: Reply{Text: formatRestaurants(in.Restaurants)}}
}
