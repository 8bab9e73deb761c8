package bot

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/an26179529/GroupBot/internal/commands"
	"github.com/an26179529/GroupBot/internal/identity"
	"github.com/an26179529/GroupBot/internal/order"
)

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("%s is connected!", event.User.Username)

	// Register commands for all guilds
	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			log.Printf("Failed to register commands for guild %s: %v", guild.ID, err)
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	log.Printf("Guild available/joined: %s (id=%s), ensuring commands", event.Name, event.ID)
	if err := b.registerGuildCommands(event.ID); err != nil {
		log.Printf("Failed to register commands for guild %s: %v", event.ID, err)
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	cmds := commands.GetCommands()
	// Delete existing commands and register new ones
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, cmds)
	if err != nil {
		return err
	}

	log.Printf("Registered application commands for guild %s", guildID)
	return nil
}

type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(context.Background(), s, m)
}

func (b *Bot) handleMessage(ctx context.Context, s messageSender, m *discordgo.MessageCreate) {
	// Ignore bot messages
	if m.Author == nil || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}
	// Ordinary guild chatter is not echoed back.
	if m.GuildID != "" && order.Parse(content).Kind == order.KindEcho {
		return
	}

	actor := identity.Actor{
		Platform: Platform,
		UserID:   m.Author.ID,
		GroupID:  m.GuildID,
		Hint:     commands.ActorName(m.Member, m.Author),
	}
	reply := b.orders.HandleCommand(ctx, ConversationKey(m.ChannelID), actor, content)

	if _, err := s.ChannelMessageSendComplex(m.ChannelID, commands.MessageSend(reply)); err != nil {
		log.Printf("Failed to send reply to channel %s: %v", m.ChannelID, err)
	}
}

type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(context.Background(), s, i)
}

func (b *Bot) handleInteraction(ctx context.Context, s interactionResponder, i *discordgo.InteractionCreate) {
	var text string
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		text = commands.CommandText(i.ApplicationCommandData())
	case discordgo.InteractionMessageComponent:
		// Quick reply buttons carry the command text as their custom id.
		text = i.MessageComponentData().CustomID
	default:
		return
	}

	actor := identity.Actor{Platform: Platform, GroupID: i.GuildID}
	switch {
	case i.Member != nil && i.Member.User != nil:
		actor.UserID = i.Member.User.ID
	case i.User != nil:
		actor.UserID = i.User.ID
	}
	actor.Hint = commands.ActorName(i.Member, i.User)

	reply := b.orders.HandleCommand(ctx, ConversationKey(i.ChannelID), actor, text)
	commands.RespondReply(s, i, reply)
}
