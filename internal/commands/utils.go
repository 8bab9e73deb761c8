package commands

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/an26179529/GroupBot/internal/order"
)

// CommandText turns a slash command into the chat text the order service
// parses, so slash commands and typed commands behave the same.
func CommandText(data discordgo.ApplicationCommandInteractionData) string {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		opts[opt.Name] = opt
	}

	switch data.Name {
	case "order":
		if opt, ok := opts["restaurant"]; ok {
			if name := strings.TrimSpace(opt.StringValue()); name != "" {
				return order.SelectPayload(name)
			}
		}
		return order.CmdOrder
	case "join":
		var item string
		var qty int64
		if opt, ok := opts["item"]; ok {
			item = strings.TrimSpace(opt.StringValue())
		}
		if opt, ok := opts["quantity"]; ok {
			qty = opt.IntValue()
		}
		return order.CmdJoin + " " + item + " " + strconv.FormatInt(qty, 10)
	case "list":
		return order.CmdList
	case "done":
		return order.CmdDone
	case "restaurants":
		return order.CmdRestaurants
	}
	return "/" + data.Name
}

// ActorName returns the best display name carried by an interaction or
// message author.
func ActorName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			user = member.User
		}
	}
	if user != nil {
		return user.Username
	}
	return ""
}
