package bot

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/an26179529/GroupBot/internal/commands"
	"github.com/an26179529/GroupBot/internal/identity"
)

type memberSession interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// memberResolver prefers the guild nickname over the account username.
type memberResolver struct {
	session memberSession
}

func (r *memberResolver) NameFor(ctx context.Context, a identity.Actor) (string, error) {
	if a.UserID == "" {
		return "", errors.New("missing user id")
	}
	if a.GroupID == "" {
		user, err := r.session.User(a.UserID, discordgo.WithContext(ctx))
		if err != nil {
			return "", err
		}
		return commands.ActorName(nil, user), nil
	}

	member, err := r.session.GuildMember(a.GroupID, a.UserID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return commands.ActorName(member, nil), nil
}
