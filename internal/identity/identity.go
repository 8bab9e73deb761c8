package identity

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Unknown is shown in place of a display name that could not be resolved.
const Unknown = "未知的成員"

// Actor identifies who sent a command and where.
type Actor struct {
	Platform string
	UserID   string
	GroupID  string
	// Hint is a name the transport already had at hand, if any.
	Hint string
}

type Resolver interface {
	NameFor(ctx context.Context, a Actor) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, a Actor) (string, error)

func (f ResolverFunc) NameFor(ctx context.Context, a Actor) (string, error) {
	return f(ctx, a)
}

// Platforms routes a lookup to the resolver registered for the actor's platform.
type Platforms map[string]Resolver

func (p Platforms) NameFor(ctx context.Context, a Actor) (string, error) {
	r, ok := p[a.Platform]
	if !ok || r == nil {
		return "", fmt.Errorf("no resolver for platform %q", a.Platform)
	}
	return r.NameFor(ctx, a)
}

// Fallback wraps a Resolver so that lookups never fail.
type Fallback struct {
	r Resolver
}

func NewFallback(r Resolver) *Fallback {
	return &Fallback{r: r}
}

// Name returns the display name for a, or the transport hint, or Unknown.
// Panics from the wrapped resolver are absorbed as well.
func (f *Fallback) Name(ctx context.Context, a Actor) (name string) {
	fallback := strings.TrimSpace(a.Hint)
	if fallback == "" {
		fallback = Unknown
	}
	if f == nil || f.r == nil {
		return fallback
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("identity: resolver panicked for %s/%s: %v", a.Platform, a.UserID, rec)
			name = fallback
		}
	}()

	resolved, err := f.r.NameFor(ctx, a)
	if err != nil {
		log.Printf("identity: failed to resolve %s/%s: %v", a.Platform, a.UserID, err)
		return fallback
	}
	if resolved = strings.TrimSpace(resolved); resolved == "" {
		return fallback
	}
	return resolved
}
