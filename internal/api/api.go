package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/oauth2"

	"github.com/an26179529/GroupBot/internal/catalog"
	"github.com/an26179529/GroupBot/internal/config"
	"github.com/an26179529/GroupBot/internal/order"
)

const discordAPIBase = "https://discord.com/api"

// Orders exposes read access to open sessions.
type Orders interface {
	Session(key string) (*order.Session, bool)
}

// Deps are the collaborators the HTTP surface serves. LineWebhook and
// Metrics may be nil.
type Deps struct {
	Orders      Orders
	Catalog     catalog.Editor
	LineWebhook http.Handler
	Metrics     http.Handler
}

type API struct {
	router         *mux.Router
	orders         Orders
	catalog        catalog.Editor
	config         *config.Config
	oauthConfig    *oauth2.Config
	jwtSecret      []byte
	discordAPIBase string
	server         *http.Server
}

func New(cfg *config.Config, deps Deps) *API {
	api := &API{
		router:         mux.NewRouter(),
		orders:         deps.Orders,
		catalog:        deps.Catalog,
		config:         cfg,
		jwtSecret:      []byte(cfg.JWTSecret),
		discordAPIBase: discordAPIBase,
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

	api.setupRoutes(deps)
	return api
}

func (a *API) setupRoutes(deps Deps) {
	a.router.HandleFunc("/", a.handleHealth).Methods("GET")

	if deps.LineWebhook != nil {
		a.router.Handle("/callback", deps.LineWebhook).Methods("POST")
	}
	if deps.Metrics != nil {
		a.router.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Public endpoints
	a.router.HandleFunc("/api/public/restaurants", a.handlePublicRestaurants).Methods("GET")
	a.router.HandleFunc("/api/public/orders/{key}", a.handlePublicOrder).Methods("GET")

	// Admin endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware, a.adminMiddleware)

	protected.HandleFunc("/restaurants", a.handleListRestaurants).Methods("GET")
	protected.HandleFunc("/restaurants", a.handleCreateRestaurant).Methods("POST")
	protected.HandleFunc("/restaurants/{id:[0-9]+}/active", a.handleSetActive).Methods("PUT")
	protected.HandleFunc("/restaurants/{id:[0-9]+}/menu/{item}", a.handleSetMenuItem).Methods("PUT")
	protected.HandleFunc("/restaurants/{id:[0-9]+}/menu/{item}", a.handleRemoveMenuItem).Methods("DELETE")
}

// Handler returns the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	// Note: When AllowedOrigins is "*", AllowCredentials must be false
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a clean shutdown.
func (a *API) Start() error {
	a.server = &http.Server{
		Addr:              a.config.WebBind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("API server listening on http://%s", a.config.WebBind)
	return a.server.ListenAndServe()
}

func (a *API) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
