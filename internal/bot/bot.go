// Package bot hosts the Discord side of Flourish: slash commands, the
// component/modal gateway for trade negotiations, and the rendering of
// negotiation views.
package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/lordjumper/flourish/internal/economy"
	"github.com/lordjumper/flourish/internal/shop"
	"github.com/lordjumper/flourish/internal/trade"
)

type Bot struct {
	session *discordgo.Session
	engine  *trade.Engine
	store   economy.Store
	catalog *shop.Catalog
	log     zerolog.Logger
}

func New(token string, store economy.Store, catalog *shop.Catalog, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session: session,
		store:   store,
		catalog: catalog,
		log:     log,
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds

	return bot, nil
}

// SetEngine attaches the negotiation engine. The bot doubles as the engine's
// presenter, so the two are wired to each other after construction.
func (b *Bot) SetEngine(engine *trade.Engine) {
	b.engine = engine
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.log.Info().Msg("discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.log.Info().Str("user", event.User.Username).Msg("connected to discord")

	// Register commands for all guilds
	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			b.log.Error().Str("guild", guild.ID).Err(err).Msg("failed to register commands")
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	b.log.Info().Str("guild", event.ID).Str("name", event.Name).Msg("guild available, ensuring commands")
	if err := b.registerGuildCommands(event.ID); err != nil {
		b.log.Error().Str("guild", event.ID).Err(err).Msg("failed to register commands")
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "trade",
			Description: "Trade items or money with another user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to trade with",
					Required:    true,
				},
			},
		},
		{
			Name:        "balance",
			Description: "Check your current coin balance",
		},
		{
			Name:        "inventory",
			Description: "View the items you own",
		},
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, commands)
	if err != nil {
		return err
	}

	b.log.Info().Str("guild", guildID).Msg("registered application commands")
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleApplicationCommand(s, i)
	case discordgo.InteractionMessageComponent:
		if !b.HandleComponent(s, i) {
			b.log.Debug().Str("custom_id", i.MessageComponentData().CustomID).Msg("unhandled component interaction")
		}
	case discordgo.InteractionModalSubmit:
		if !b.HandleModal(s, i) {
			b.log.Debug().Str("custom_id", i.ModalSubmitData().CustomID).Msg("unhandled modal submission")
		}
	}
}

func (b *Bot) handleApplicationCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case "trade":
		b.handleTradeCommand(s, i, data)
	case "balance":
		b.handleBalanceCommand(s, i)
	case "inventory":
		b.handleInventoryCommand(s, i)
	}
}

// interactionUser returns the user who triggered the interaction, whether it
// arrived from a guild channel or a DM.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
