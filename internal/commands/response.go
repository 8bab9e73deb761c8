package commands

import (
	"log"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/an26179529/GroupBot/internal/order"
)

const (
	maxButtonsPerRow = 5
	maxButtons       = 25
	maxLabelLen      = 80
	maxCustomIDLen   = 100
	maxContentLen    = 2000
)

// Components renders quick replies as rows of buttons whose custom id is the
// reply payload. Replies whose payload cannot be a custom id verbatim, or
// repeats an earlier payload, get no button.
func Components(replies []order.QuickReply) []discordgo.MessageComponent {
	seen := make(map[string]bool, len(replies))
	var buttons []discordgo.MessageComponent
	for _, r := range replies {
		if len(buttons) == maxButtons {
			break
		}
		if r.Payload == "" || utf8.RuneCountInString(r.Payload) > maxCustomIDLen || seen[r.Payload] {
			log.Printf("Skipping quick reply %q: payload unusable as custom id", r.Label)
			continue
		}
		seen[r.Payload] = true
		buttons = append(buttons, discordgo.Button{
			Label:    truncate(r.Label, maxLabelLen),
			Style:    discordgo.PrimaryButton,
			CustomID: r.Payload,
		})
	}

	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += maxButtonsPerRow {
		end := min(start+maxButtonsPerRow, len(buttons))
		rows = append(rows, discordgo.ActionsRow{Components: buttons[start:end]})
	}
	return rows
}

// ResponseData converts an order reply into an interaction response body.
func ResponseData(reply order.Reply) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    truncate(reply.Text, maxContentLen),
		Components: Components(reply.QuickReplies),
	}
}

// MessageSend converts an order reply into a channel message.
func MessageSend(reply order.Reply) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    truncate(reply.Text, maxContentLen),
		Components: Components(reply.QuickReplies),
	}
}

type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

func RespondReply(s interactionResponder, i *discordgo.InteractionCreate, reply order.Reply) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: ResponseData(reply),
	})
	if err != nil {
		log.Printf("Failed to respond to interaction in %s: %v", i.ChannelID, err)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
