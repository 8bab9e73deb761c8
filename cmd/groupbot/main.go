package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/an26179529/GroupBot/internal/api"
	"github.com/an26179529/GroupBot/internal/bot"
	"github.com/an26179529/GroupBot/internal/catalog"
	"github.com/an26179529/GroupBot/internal/config"
	"github.com/an26179529/GroupBot/internal/db"
	"github.com/an26179529/GroupBot/internal/db/sqlite"
	"github.com/an26179529/GroupBot/internal/identity"
	"github.com/an26179529/GroupBot/internal/line"
	"github.com/an26179529/GroupBot/internal/metrics"
	"github.com/an26179529/GroupBot/internal/order"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	cat, closeCatalog, err := openCatalog(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open restaurant catalog: %v", err)
	}
	defer closeCatalog()

	if cfg.SeedDefaults {
		n, err := catalog.Seed(ctx, cat, catalog.Defaults())
		if err != nil {
			log.Fatalf("Failed to seed restaurants: %v", err)
		}
		if n > 0 {
			log.Printf("Seeded %d default restaurants", n)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	resolvers := identity.Platforms{}

	var discordBot *bot.Bot
	if cfg.DiscordEnabled() {
		discordBot, err = bot.New(cfg.DiscordToken)
		if err != nil {
			log.Fatalf("Failed to create discord bot: %v", err)
		}
		resolvers[bot.Platform] = discordBot.Members()
	}

	var lineClient *line.Client
	if cfg.LineEnabled() {
		lineClient, err = line.NewClient(cfg.LineAPIBaseURL, cfg.LineChannelAccessToken)
		if err != nil {
			log.Fatalf("Failed to create LINE client: %v", err)
		}
		resolvers[line.Platform] = lineClient
	}

	orders := order.NewService(order.NewStore(), cat, resolvers, order.WithRecorder(collector))

	var lineWebhook http.Handler
	if lineClient != nil {
		lineWebhook = line.NewHandler(cfg.LineChannelSecret, orders, lineClient, collector)
	}

	apiServer := api.New(cfg, api.Deps{
		Orders:      orders,
		Catalog:     cat,
		LineWebhook: lineWebhook,
		Metrics:     metrics.Handler(registry),
	})

	// Start Discord bot
	if discordBot != nil {
		if err := discordBot.Start(orders, cfg.ReminderAfter); err != nil {
			log.Fatalf("Failed to start discord bot: %v", err)
		}
		defer discordBot.Stop()
	}

	// Start API server
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("API server error: %v", err)
		}
	}()
	log.Printf("Open orders are readable at %s/api/public/orders/{key}", cfg.WebUIBaseURL)

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}
}

// openCatalog picks the catalog backend from the configuration: Postgres,
// SQLite, or an in-memory catalog when neither is set.
func openCatalog(ctx context.Context, cfg *config.Config) (catalog.Editor, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		log.Println("Using postgres restaurant catalog")
		return database, database.Close, nil

	case cfg.SQLitePath != "":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using sqlite restaurant catalog at %s", cfg.SQLitePath)
		return store, func() { _ = store.Close() }, nil

	default:
		log.Println("No database configured, using in-memory restaurant catalog")
		return catalog.NewMemory(), func() {}, nil
	}
}
