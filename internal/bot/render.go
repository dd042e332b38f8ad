package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lordjumper/flourish/internal/trade"
)

const (
	colorInfo    = 0x0099ff
	colorSuccess = 0x00ff00
	colorFailure = 0xff0000
	colorGold    = 0xf1c40f
)

func formatMoney(amount int64) string {
	return fmt.Sprintf("💰 %d coins", amount)
}

// uiHandle encodes the location of the shared negotiation message as
// "<channelID>/<messageID>". The trade core stores it as an opaque string.
func uiHandle(channelID, messageID string) string {
	return channelID + "/" + messageID
}

func parseUIHandle(handle string) (channelID, messageID string, ok bool) {
	channelID, messageID, ok = strings.Cut(handle, "/")
	if channelID == "" || messageID == "" {
		return "", "", false
	}
	return channelID, messageID, ok
}

func (b *Bot) displayName(userID string) string {
	if user, err := b.session.User(userID); err == nil {
		return user.Username
	}
	return userID
}

func (b *Bot) offerText(offer trade.Offer) string {
	ids := make([]string, 0, len(offer.Items))
	for id := range offer.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lines []string
	for _, id := range ids {
		qty := offer.Items[id]
		if item := b.catalog.ItemByID(id); item != nil {
			emoji := item.Emoji
			if emoji == "" {
				emoji = "📦"
			}
			lines = append(lines, fmt.Sprintf("%s %dx %s", emoji, qty, item.Name))
		} else {
			lines = append(lines, fmt.Sprintf("📦 %dx Unknown Item", qty))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No items added")
	}
	if offer.Currency > 0 {
		lines = append(lines, formatMoney(offer.Currency))
	}
	return strings.Join(lines, "\n")
}

func readyLabel(ready bool) string {
	if ready {
		return "✅ Ready"
	}
	return "⏳ Not Ready"
}

func (b *Bot) tradeEmbed(v trade.View) *discordgo.MessageEmbed {
	initiatorName := b.displayName(v.InitiatorID)
	counterpartyName := b.displayName(v.CounterpartyID)

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Trade: %s ⟷ %s", initiatorName, counterpartyName),
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("%s's Offer (%s)", initiatorName, readyLabel(v.InitiatorReady)),
				Value: b.offerText(v.InitiatorOffer),
			},
			{
				Name:  fmt.Sprintf("%s's Offer (%s)", counterpartyName, readyLabel(v.CounterpartyReady)),
				Value: b.offerText(v.CounterpartyOffer),
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Trade ID: " + v.ID},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// Refresh redraws the shared negotiation message. Part of trade.Presenter.
func (b *Bot) Refresh(_ context.Context, s *trade.Session) error {
	channelID, messageID, ok := parseUIHandle(s.UIHandle)
	if !ok {
		return nil
	}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Embeds:  []*discordgo.MessageEmbed{b.tradeEmbed(s.View())},
	})
	return err
}

// Notify replaces the shared negotiation message with an outcome banner so
// both parties see how the trade ended. Part of trade.Presenter.
func (b *Bot) Notify(_ context.Context, s *trade.Session, outcome trade.Outcome, detail string) error {
	channelID, messageID, ok := parseUIHandle(s.UIHandle)
	if !ok {
		return nil
	}

	var (
		content string
		embed   *discordgo.MessageEmbed
	)
	switch outcome {
	case trade.OutcomeSettled:
		content = "✅ Trade completed successfully!"
		embed = &discordgo.MessageEmbed{
			Title:       "Trade Completed",
			Description: "Trade completed successfully! Both parties have received their items and money.",
			Color:       colorSuccess,
		}
	case trade.OutcomeFailed:
		content = "❌ Trade failed!"
		description := "The trade couldn't be completed. This could be because one of you no longer has the offered items or sufficient balance."
		if detail != "" {
			description = "The trade couldn't be completed: " + detail + "."
		}
		embed = &discordgo.MessageEmbed{
			Title:       "Trade Failed",
			Description: description,
			Color:       colorFailure,
		}
	case trade.OutcomeCancelled:
		content = "Trade has been cancelled."
		embed = &discordgo.MessageEmbed{
			Title:       "Trade Cancelled",
			Description: "The trade was cancelled by the initiator.",
			Color:       colorFailure,
		}
	case trade.OutcomeRejected:
		content = "Trade has been rejected."
		embed = &discordgo.MessageEmbed{
			Title:       "Trade Rejected",
			Description: "The trade was rejected by the recipient.",
			Color:       colorFailure,
		}
	case trade.OutcomeExpired:
		content = "This trade has expired due to inactivity."
		embed = &discordgo.MessageEmbed{
			Title:       "Trade Expired",
			Description: "This trade offer has expired.",
			Color:       colorFailure,
		}
	default:
		return nil
	}
	embed.Timestamp = time.Now().Format(time.RFC3339)

	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content,
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{},
	})
	return err
}
