package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/lordjumper/flourish/internal/trade"
)

// HandleComponent routes button and select-menu interactions carrying trade
// correlation ids. It returns false when the custom id does not belong to
// the trading subsystem so other handlers in the process may attempt it.
func (b *Bot) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	data := i.MessageComponentData()
	action, ok := trade.ParseCustomID(data.CustomID)
	if !ok {
		return false
	}

	invoker := interactionUser(i)
	session, ok := b.engine.Session(action.SessionID)
	if !ok {
		respondEphemeral(s, i, "This trade is no longer active.")
		return true
	}
	if (action.UserID != "" && action.UserID != invoker.ID) || !session.IsParticipant(invoker.ID) {
		respondEphemeral(s, i, "You are not part of this trade.")
		return true
	}

	switch action.Kind {
	case trade.KindAddItems:
		b.handleAddItems(s, i, session, invoker.ID)
	case trade.KindAddCurrency:
		b.handleAddCurrency(s, i, session, invoker.ID)
	case trade.KindSelectItem:
		b.handleSelectItem(s, i, session, invoker.ID, data.Values)
	case trade.KindPresetCurrency:
		b.handlePresetCurrency(s, i, session, invoker.ID, action.Extra)
	case trade.KindCurrencyModal:
		b.showCurrencyModal(s, i, session, invoker.ID)
	case trade.KindReady:
		b.handleReady(s, i, session, invoker.ID)
	case trade.KindCancel:
		b.handleClose(s, i, session, invoker.ID, false)
	case trade.KindReject:
		b.handleClose(s, i, session, invoker.ID, true)
	}
	return true
}

// HandleModal routes trade modal submissions (item quantity, custom money
// amount). Same unhandled contract as HandleComponent.
func (b *Bot) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	data := i.ModalSubmitData()
	action, ok := trade.ParseCustomID(data.CustomID)
	if !ok {
		return false
	}

	invoker := interactionUser(i)
	session, ok := b.engine.Session(action.SessionID)
	if !ok {
		respondEphemeral(s, i, "This trade is no longer active.")
		return true
	}
	if (action.UserID != "" && action.UserID != invoker.ID) || !session.IsParticipant(invoker.ID) {
		respondEphemeral(s, i, "You are not part of this trade.")
		return true
	}

	switch action.Kind {
	case trade.KindQuantitySubmit:
		b.handleQuantitySubmit(s, i, session, invoker.ID, action.Extra, data)
	case trade.KindCurrencySubmit:
		b.handleCurrencySubmit(s, i, session, invoker.ID, data)
	}
	return true
}

// handleAddItems shows a select menu of the actor's tradeable inventory.
func (b *Bot) handleAddItems(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string) {
	rec, err := b.store.Read(context.Background(), userID)
	if err != nil {
		b.log.Error().Str("user", userID).Err(err).Msg("failed to read user record")
		respondEphemeral(s, i, "Something went wrong with the trade.")
		return
	}
	if len(rec.Inventory) == 0 {
		respondEphemeral(s, i, "You don't have any items in your inventory to trade.")
		return
	}

	var options []discordgo.SelectMenuOption
	for _, line := range rec.Inventory {
		if !b.catalog.IsTradeable(line.ID) {
			continue
		}
		item := b.catalog.ItemByID(line.ID)
		emoji := item.Emoji
		if emoji == "" {
			emoji = "📦"
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       item.Name,
			Description: fmt.Sprintf("You have: %d", line.Quantity),
			Value:       line.ID,
			Emoji:       discordgo.ComponentEmoji{Name: emoji},
		})
		// Discord caps select menus at 25 options.
		if len(options) == 25 {
			break
		}
	}
	if len(options) == 0 {
		respondEphemeral(s, i, "You don't have any tradeable items.")
		return
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Select an item to add to the trade:",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    trade.Action{Kind: trade.KindSelectItem, SessionID: session.ID, UserID: userID}.CustomID(),
							Placeholder: "Select an item to trade",
							Options:     options,
						},
					},
				},
			},
		},
	})
}

// handleSelectItem asks for a quantity via modal; the chosen item id rides
// along in the correlation id.
func (b *Bot) handleSelectItem(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string, values []string) {
	if len(values) == 0 {
		return
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: trade.Action{Kind: trade.KindQuantitySubmit, SessionID: session.ID, UserID: userID, Extra: values[0]}.CustomID(),
			Title:    "Add Item to Trade",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "quantity",
							Label:       "How many do you want to trade?",
							Style:       discordgo.TextInputShort,
							Placeholder: "Enter a number (1-999)",
							Required:    true,
							MinLength:   1,
							MaxLength:   3,
						},
					},
				},
			},
		},
	})
}

// handleAddCurrency shows preset amounts plus a custom-amount modal trigger.
func (b *Bot) handleAddCurrency(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string) {
	rec, err := b.store.Read(context.Background(), userID)
	if err != nil {
		b.log.Error().Str("user", userID).Err(err).Msg("failed to read user record")
		respondEphemeral(s, i, "Something went wrong with the trade.")
		return
	}

	presets := []int64{100, 500, 1000, 5000}
	row := discordgo.ActionsRow{}
	for _, amount := range presets {
		row.Components = append(row.Components, discordgo.Button{
			Label:    strconv.FormatInt(amount, 10),
			Style:    discordgo.SecondaryButton,
			CustomID: trade.Action{Kind: trade.KindPresetCurrency, SessionID: session.ID, UserID: userID, Extra: strconv.FormatInt(amount, 10)}.CustomID(),
		})
	}
	row.Components = append(row.Components, discordgo.Button{
		Label:    "Custom Amount",
		Style:    discordgo.PrimaryButton,
		CustomID: trade.Action{Kind: trade.KindCurrencyModal, SessionID: session.ID, UserID: userID}.CustomID(),
	})

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("Your balance: %s\nSelect an amount to add:", formatMoney(rec.Balance)),
			Flags:      discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{row},
		},
	})
}

func (b *Bot) handlePresetCurrency(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID, extra string) {
	amount, err := strconv.ParseInt(extra, 10, 64)
	if err != nil {
		return
	}
	b.applyCurrency(s, i, session, userID, amount)
}

func (b *Bot) showCurrencyModal(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: trade.Action{Kind: trade.KindCurrencySubmit, SessionID: session.ID, UserID: userID}.CustomID(),
			Title:    "Add Money to Trade",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "amount",
							Label:       "Enter amount",
							Style:       discordgo.TextInputShort,
							Placeholder: "Enter amount of coins",
							Required:    true,
							MinLength:   1,
							MaxLength:   10,
						},
					},
				},
			},
		},
	})
}

// handleQuantitySubmit applies an item offer from the quantity modal. The
// ownership check here is a courtesy so the user learns immediately; the
// binding check happens at settlement against fresh records.
func (b *Bot) handleQuantitySubmit(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID, itemID string, data discordgo.ModalSubmitInteractionData) {
	quantity, err := strconv.Atoi(textInputValue(data, "quantity"))
	if err != nil || quantity <= 0 {
		respondEphemeral(s, i, "Please enter a valid positive number.")
		return
	}

	rec, err := b.store.Read(context.Background(), userID)
	if err != nil {
		b.log.Error().Str("user", userID).Err(err).Msg("failed to read user record")
		respondEphemeral(s, i, "Something went wrong with the trade.")
		return
	}
	if rec.ItemQuantity(itemID) < quantity {
		respondEphemeral(s, i, fmt.Sprintf("You don't have %d of this item.", quantity))
		return
	}

	if err := b.engine.AddItem(context.Background(), session.ID, userID, itemID, quantity); err != nil {
		respondEphemeral(s, i, errorMessage(err))
		return
	}

	itemName := "item"
	if item := b.catalog.ItemByID(itemID); item != nil {
		itemName = item.Name
	}
	respondEphemeral(s, i, fmt.Sprintf("Added %dx %s to the trade.", quantity, itemName))
}

func (b *Bot) handleCurrencySubmit(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string, data discordgo.ModalSubmitInteractionData) {
	amount, err := strconv.ParseInt(textInputValue(data, "amount"), 10, 64)
	if err != nil || amount <= 0 {
		respondEphemeral(s, i, "Please enter a valid positive amount.")
		return
	}
	b.applyCurrency(s, i, session, userID, amount)
}

func (b *Bot) applyCurrency(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string, amount int64) {
	rec, err := b.store.Read(context.Background(), userID)
	if err != nil {
		b.log.Error().Str("user", userID).Err(err).Msg("failed to read user record")
		respondEphemeral(s, i, "Something went wrong with the trade.")
		return
	}
	if rec.Balance < amount {
		respondEphemeral(s, i, fmt.Sprintf("You don't have enough money. Your balance: %s", formatMoney(rec.Balance)))
		return
	}

	if err := b.engine.SetCurrency(context.Background(), session.ID, userID, amount); err != nil {
		respondEphemeral(s, i, errorMessage(err))
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Added %s to the trade.", formatMoney(amount)))
}

func (b *Bot) handleReady(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string) {
	result, err := b.engine.ToggleReady(context.Background(), session.ID, userID)
	if err != nil {
		respondEphemeral(s, i, errorMessage(err))
		return
	}

	switch result.Status {
	case trade.ReadySettled:
		respondEphemeral(s, i, "Trade completed successfully! Check your inventory and balance.")
	case trade.ReadySettleFailed:
		respondEphemeral(s, i, "The trade failed. This could be because one of you no longer has the offered items or sufficient balance.")
	default:
		state := "not ready"
		if result.Ready {
			state = "ready"
		}
		respondEphemeral(s, i, fmt.Sprintf("You are now %s for the trade.", state))
	}
}

func (b *Bot) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, session trade.View, userID string, reject bool) {
	if reject {
		if err := b.engine.Reject(context.Background(), session.ID, userID); err != nil {
			if errors.Is(err, trade.ErrForbidden) {
				respondEphemeral(s, i, "Only the recipient of the trade request can reject it.")
			} else {
				respondEphemeral(s, i, errorMessage(err))
			}
			return
		}
		respondEphemeral(s, i, "You have rejected the trade.")
		return
	}

	if err := b.engine.Cancel(context.Background(), session.ID, userID); err != nil {
		if errors.Is(err, trade.ErrForbidden) {
			respondEphemeral(s, i, "Only the person who initiated the trade can cancel it.")
		} else {
			respondEphemeral(s, i, errorMessage(err))
		}
		return
	}
	respondEphemeral(s, i, "You have cancelled the trade.")
}

// textInputValue digs a text input's value out of a modal submission.
func textInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		actionRow, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range actionRow.Components {
			if input, ok := c.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// errorMessage maps negotiation errors to user-facing replies.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, trade.ErrSessionNotFound):
		return "This trade is no longer active."
	case errors.Is(err, trade.ErrNotParticipant):
		return "You are not part of this trade."
	case errors.Is(err, trade.ErrForbidden):
		return "You can't do that in this trade."
	case errors.Is(err, trade.ErrInvalidQuantity):
		return "Please enter a valid positive number."
	case errors.Is(err, trade.ErrInvalidAmount):
		return "Please enter a valid amount."
	case errors.Is(err, trade.ErrItemNotTradeable):
		return "That item can't be traded."
	case errors.Is(err, trade.ErrSelfTrade):
		return "You can't trade with yourself."
	case errors.Is(err, trade.ErrAlreadyTrading):
		return "One or both users are already in an active trade."
	default:
		return "Something went wrong with the trade."
	}
}
