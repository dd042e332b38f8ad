// Package api exposes a small operator HTTP surface: Discord OAuth2 login
// and read-only views of user records and active trades.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/lordjumper/flourish/internal/config"
	"github.com/lordjumper/flourish/internal/economy"
	"github.com/lordjumper/flourish/internal/trade"
)

type API struct {
	router      *mux.Router
	store       economy.Store
	engine      *trade.Engine
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte
	log         zerolog.Logger
}

func New(cfg *config.Config, store economy.Store, engine *trade.Engine, log zerolog.Logger) *API {
	api := &API{
		router:    mux.NewRouter(),
		store:     store,
		engine:    engine,
		config:    cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		log:       log,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/me", a.handleMe).Methods("GET")
	protected.HandleFunc("/users/{user_id}", a.handleUserRecord).Methods("GET")
	protected.HandleFunc("/trades", a.handleActiveTrades).Methods("GET")
}

func (a *API) Start() error {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}

	handler := cors.New(corsOptions).Handler(a.router)

	a.log.Info().Str("bind", a.config.WebBind).Msg("api server listening")
	return http.ListenAndServe(a.config.WebBind, handler)
}
