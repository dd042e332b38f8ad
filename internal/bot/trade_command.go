package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/lordjumper/flourish/internal/trade"
)

func (b *Bot) handleTradeCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	initiator := interactionUser(i)

	var target *discordgo.User
	for _, opt := range data.Options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}

	if target == nil {
		respondEphemeral(s, i, "You need to specify a user to trade with.")
		return
	}
	if target.ID == initiator.ID {
		respondEphemeral(s, i, "You can't trade with yourself.")
		return
	}
	if target.Bot {
		respondEphemeral(s, i, "You can't trade with bots.")
		return
	}

	b.createTrade(s, i, initiator, target)
}

func (b *Bot) createTrade(s *discordgo.Session, i *discordgo.InteractionCreate, initiator, target *discordgo.User) {
	session, err := b.engine.Open(context.Background(), initiator.ID, target.ID)
	if err != nil {
		if errors.Is(err, trade.ErrAlreadyTrading) {
			respondEphemeral(s, i, "One or both users are already in an active trade.")
		} else {
			respondEphemeral(s, i, errorMessage(err))
		}
		return
	}

	// Public negotiation message both parties watch.
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("<@%s>, <@%s> wants to trade with you!", target.ID, initiator.ID),
			Embeds:  []*discordgo.MessageEmbed{b.tradeEmbed(session)},
		},
	})
	if err != nil {
		b.log.Error().Str("session", session.ID).Err(err).Msg("failed to post trade message")
		b.engine.Cancel(context.Background(), session.ID, initiator.ID)
		return
	}

	if msg, err := s.InteractionResponse(i.Interaction); err == nil {
		b.engine.SetUIHandle(session.ID, uiHandle(msg.ChannelID, msg.ID))
	} else {
		b.log.Warn().Str("session", session.ID).Err(err).Msg("failed to resolve trade message reference")
	}

	// Private control rows for each side. The initiator gets an ephemeral
	// follow-up; the counterparty is reached by DM, falling back to the
	// channel when DMs are closed.
	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content:    fmt.Sprintf("Use these controls to manage your trade with %s:", target.Username),
		Components: tradeControls(session.ID, initiator.ID, true),
		Flags:      discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.log.Warn().Str("session", session.ID).Err(err).Msg("failed to send initiator controls")
	}

	if err := b.sendCounterpartyControls(s, session.ID, initiator, target); err != nil {
		_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content:    fmt.Sprintf("<@%s>, I couldn't send you a direct message. Use these controls to manage your side of the trade:", target.ID),
			Components: tradeControls(session.ID, target.ID, false),
			Flags:      discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			b.log.Warn().Str("session", session.ID).Err(err).Msg("failed to send counterparty controls")
		}
	}
}

func (b *Bot) sendCounterpartyControls(s *discordgo.Session, sessionID string, initiator, target *discordgo.User) error {
	channel, err := s.UserChannelCreate(target.ID)
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("%s wants to trade with you! Use these controls to manage the trade:", initiator.Username),
		Components: tradeControls(sessionID, target.ID, false),
	})
	return err
}

// tradeControls builds a party's control row. The initiator's row carries
// Cancel, the counterparty's Reject; everything else is identical.
func tradeControls(sessionID, userID string, isInitiator bool) []discordgo.MessageComponent {
	closeAction := trade.Action{Kind: trade.KindReject, SessionID: sessionID}
	closeLabel := "Reject Trade"
	if isInitiator {
		closeAction.Kind = trade.KindCancel
		closeLabel = "Cancel Trade"
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Add Items",
					Style:    discordgo.PrimaryButton,
					CustomID: trade.Action{Kind: trade.KindAddItems, SessionID: sessionID, UserID: userID}.CustomID(),
				},
				discordgo.Button{
					Label:    "Add Money",
					Style:    discordgo.PrimaryButton,
					CustomID: trade.Action{Kind: trade.KindAddCurrency, SessionID: sessionID, UserID: userID}.CustomID(),
				},
				discordgo.Button{
					Label:    "Ready",
					Style:    discordgo.SuccessButton,
					CustomID: trade.Action{Kind: trade.KindReady, SessionID: sessionID, UserID: userID}.CustomID(),
				},
				discordgo.Button{
					Label:    closeLabel,
					Style:    discordgo.DangerButton,
					CustomID: closeAction.CustomID(),
				},
			},
		},
	}
}
