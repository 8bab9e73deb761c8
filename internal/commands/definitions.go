package commands

import "github.com/bwmarrin/discordgo"

func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "order",
			Description: "開始團體點餐，或選擇餐廳",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "restaurant",
					Description: "餐廳名稱（省略則開始點餐）",
					Required:    false,
				},
			},
		},
		{
			Name:        "join",
			Description: "加入點餐",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "item",
					Description: "品項",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "quantity",
					Description: "數量",
					Required:    true,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "list",
			Description: "查看目前的點餐",
		},
		{
			Name:        "done",
			Description: "結束點餐並統計",
		},
		{
			Name:        "restaurants",
			Description: "查看可選餐廳",
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
