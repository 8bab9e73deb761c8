package order

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/an26179529/GroupBot/internal/catalog"
	"github.com/an26179529/GroupBot/internal/identity"
)

const internalErrorReply = "系統發生錯誤，請稍後再試"

// Recorder receives per-command observations. metrics.Collector implements it.
type Recorder interface {
	RecordCommand(kind, result string, d time.Duration)
	SetOpenSessions(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCommand(string, string, time.Duration) {}
func (nopRecorder) SetOpenSessions(int)                        {}

// Service is the single entry point transports call per inbound message.
type Service struct {
	store   *Store
	catalog catalog.Catalog
	names   *identity.Fallback
	metrics Recorder
	now     func() time.Time
	newID   func() string
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *Store, cat catalog.Catalog, names identity.Resolver, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: cat,
		names:   identity.NewFallback(names),
		metrics: nopRecorder{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleCommand parses text, applies it to the conversation's session and
// returns the reply. It always returns a reply.
func (s *Service) HandleCommand(ctx context.Context, key string, actor identity.Actor, text string) (reply Reply) {
	start := time.Now()
	cmd := Parse(text)
	result := "ok"
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("order: panic handling %s for %s: %v\n%s", cmd.Kind, key, rec, debug.Stack())
			reply = Reply{Text: internalErrorReply}
			result = "internal_error"
		}
		s.metrics.RecordCommand(cmd.Kind.String(), result, time.Since(start))
	}()

	in := s.gather(ctx, key, cmd, actor)

	var out Outcome
	var corrupt error
	s.store.Apply(key, func(cur *Session) *Session {
		if err := cur.validate(); err != nil {
			corrupt = err
			return cur
		}
		out = Transition(cur, cmd, in)
		if err := out.Next.validate(); err != nil {
			corrupt = err
			return cur
		}
		if out.Next != nil {
			out.Next.Key = key
		}
		return out.Next
	})

	if corrupt != nil {
		log.Printf("order: %v (key=%s command=%s)", corrupt, key, cmd.Kind)
		result = "internal_error"
		return Reply{Text: internalErrorReply}
	}

	result = resultLabel(out.Err)
	s.logOutcome(key, cmd, out)
	if cmd.Kind == KindOpen || cmd.Kind == KindClose {
		s.metrics.SetOpenSessions(s.store.Len())
	}
	return out.Reply
}

// gather performs the collaborator lookups a command needs. It runs without
// holding the conversation lock.
func (s *Service) gather(ctx context.Context, key string, cmd Command, actor identity.Actor) Input {
	in := Input{Now: s.now(), ActorID: actor.UserID}

	switch cmd.Kind {
	case KindOpen:
		in.SessionID = s.newID()
		fallthrough
	case KindRestaurants:
		in.Restaurants, in.RestaurantsErr = s.catalog.ListActive(ctx)
		if in.RestaurantsErr != nil {
			log.Printf("order: failed to list restaurants for %s: %v", key, in.RestaurantsErr)
		}
	case KindSelectRestaurant:
		in.Menu, in.MenuErr = s.catalog.MenuFor(ctx, cmd.Restaurant)
		if in.MenuErr != nil && !errors.Is(in.MenuErr, catalog.ErrNotFound) {
			log.Printf("order: menu lookup for %q failed: %v", cmd.Restaurant, in.MenuErr)
		}
	case KindJoin:
		if !cmd.Malformed {
			in.ActorName = s.names.Name(ctx, actor)
		}
	}
	return in
}

func (s *Service) logOutcome(key string, cmd Command, out Outcome) {
	switch {
	case out.Err == nil && cmd.Kind == KindOpen:
		log.Printf("order: opened session %s for %s", out.Next.ID, key)
	case out.Err == nil && cmd.Kind == KindClose:
		log.Printf("order: closed session for %s with %d items", key, len(out.Summary))
	case errors.Is(out.Err, ErrEmptyOrderOnClose):
		log.Printf("order: closed empty session for %s", key)
	}
}

// Session returns a copy of the open session for key.
func (s *Service) Session(key string) (*Session, bool) {
	return s.store.Get(key)
}

// Sessions returns copies of all open sessions.
func (s *Service) Sessions() []*Session {
	return s.store.Snapshot()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyOpen):
		return "already_open"
	case errors.Is(err, ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, ErrRestaurantNotSelected):
		return "restaurant_not_selected"
	case errors.Is(err, ErrInvalidJoinFormat):
		return "invalid_join_format"
	case errors.Is(err, ErrEmptyOrderOnClose):
		return "empty_order"
	case errors.Is(err, ErrCatalogLookupFailed):
		return "catalog_lookup_failed"
	default:
		return "error"
	}
}
