package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBalanceCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	rec, err := b.store.Read(context.Background(), user.ID)
	if err != nil {
		b.log.Error().Str("user", user.ID).Err(err).Msg("failed to read user record")
		respondEphemeral(s, i, "Couldn't look up your balance right now.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "💰 Your Balance",
		Description: fmt.Sprintf("You currently have **%d** coins", rec.Balance),
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Ways to earn coins",
				Value:  "• Trade with `/trade`\n• Visit the shop",
				Inline: true,
			},
			{
				Name:   "Current Balance",
				Value:  fmt.Sprintf("%d 💰", rec.Balance),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Earn coins by playing games and activities!"},
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func (b *Bot) handleInventoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	rec, err := b.store.Read(context.Background(), user.ID)
	if err != nil {
		b.log.Error().Str("user", user.ID).Err(err).Msg("failed to read user record")
		respondEphemeral(s, i, "Couldn't look up your inventory right now.")
		return
	}

	if len(rec.Inventory) == 0 {
		respondEphemeral(s, i, "Your inventory is empty. Visit the shop or trade with other users to get items!")
		return
	}

	var lines []string
	for _, line := range rec.Inventory {
		name := line.ID
		emoji := "📦"
		if item := b.catalog.ItemByID(line.ID); item != nil {
			name = item.Name
			if item.Emoji != "" {
				emoji = item.Emoji
			}
		}
		lines = append(lines, fmt.Sprintf("%s **%s** × %d", emoji, name, line.Quantity))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎒 Your Inventory",
		Description: strings.Join(lines, "\n"),
		Color:       colorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d item types", len(rec.Inventory))},
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
