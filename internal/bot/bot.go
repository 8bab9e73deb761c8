package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/an26179529/GroupBot/internal/identity"
	"github.com/an26179529/GroupBot/internal/order"
)

const (
	Platform  = "discord"
	keyPrefix = Platform + ":"
)

// Orders is the part of order.Service the bot drives.
type Orders interface {
	HandleCommand(ctx context.Context, key string, actor identity.Actor, text string) order.Reply
	Sessions() []*order.Session
}

type Bot struct {
	session  *discordgo.Session
	orders   Orders
	members  *memberResolver
	reminder *reminderWorker
}

func New(token string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session: session,
		members: &memberResolver{session: session},
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return bot, nil
}

// Members resolves Discord display names for the order service.
func (b *Bot) Members() identity.Resolver {
	return b.members
}

// Start connects to the gateway and begins handling commands. A positive
// remindAfter enables idle-order reminders.
func (b *Bot) Start(orders Orders, remindAfter time.Duration) error {
	if orders == nil {
		return errors.New("orders is required")
	}
	b.orders = orders
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	if remindAfter > 0 {
		b.reminder = newReminderWorker(b.session, orders, remindAfter)
		b.reminder.start()
	}
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	b.reminder.stop()
	return b.session.Close()
}

// ConversationKey is the session key of a Discord channel.
func ConversationKey(channelID string) string {
	return keyPrefix + channelID
}
