package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lordjumper/flourish/internal/api"
	"github.com/lordjumper/flourish/internal/bot"
	"github.com/lordjumper/flourish/internal/config"
	"github.com/lordjumper/flourish/internal/economy"
	"github.com/lordjumper/flourish/internal/shop"
	"github.com/lordjumper/flourish/internal/trade"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Pick the user record backend: flat JSON file by default, Postgres when
	// DATABASE_URL is set.
	var store economy.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := economy.NewPgStore(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pgStore.Close()
		if err := pgStore.RunMigrations(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		store = pgStore
		log.Info().Msg("using postgres user record store")
	} else {
		fileStore, err := economy.NewFileStore(cfg.UserDataFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open user data file")
		}
		store = fileStore
		log.Info().Str("path", cfg.UserDataFile).Msg("using file user record store")
	}

	// Load item catalog
	catalog, err := shop.Load(cfg.ShopItemsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load shop items")
	}
	log.Info().Int("items", len(catalog.Items())).Msg("shop catalog loaded")

	// Initialize Discord bot
	discordBot, err := bot.New(cfg.DiscordToken, store, catalog, log.With().Str("component", "bot").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord bot")
	}

	// Wire the trading core: the bot doubles as the engine's presenter.
	registry := trade.NewRegistry(trade.SystemClock(), cfg.TradeTimeout)
	settler := trade.NewSettler(store, trade.SystemClock())
	engine := trade.NewEngine(registry, catalog, settler, discordBot, log.With().Str("component", "trade").Logger())
	discordBot.SetEngine(engine)

	// Start Discord bot
	if err := discordBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start discord bot")
	}
	defer discordBot.Stop()

	// Start operator API when OAuth credentials are configured
	if cfg.APIEnabled() {
		apiServer := api.New(cfg, store, engine, log.With().Str("component", "api").Logger())
		go func() {
			if err := apiServer.Start(); err != nil {
				log.Error().Err(err).Msg("api server error")
			}
		}()
	} else {
		log.Info().Msg("operator api disabled (no oauth credentials)")
	}

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
}
