package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"petotel/internal/adapters/events"
	server "petotel/internal/adapters/http_server"
	"petotel/internal/adapters/liteapi"
	"petotel/internal/adapters/observability"
	redisad "petotel/internal/adapters/redis"
	"petotel/internal/app"
	"petotel/internal/checkout"
	"petotel/internal/domain"
	"petotel/internal/shared"
	mysqlrepo "petotel/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cache := redisad.New(rdb)
	store := redisad.NewCheckoutStore(rdb, cfg.CheckoutTTL)

	api, err := liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIBookBase, cfg.LiteAPIKey, cfg.LiteAPIRPS, cfg.LiteAPIRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LiteAPI client")
	}

	var pub interface {
		domain.EventPublisher
		Close() error
	} = events.Nop{}
	if cfg.NATSURL != "" {
		n, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Warn().Err(err).Msg("nats unavailable; booking events disabled")
		} else {
			pub = n
		}
	}

	details := app.NewDetailReader(api, cache, cfg.CacheTTL)
	h := &server.Handlers{
		API:     api,
		Details: details,
		Search:  app.NewSearchService(api, details, cfg.DetailConcurrency),
		Hotels:  app.NewHotelService(api, details),
		Q:       app.NewQueryService(repo, repo, cache, cfg.CacheTTL),
		Flow: checkout.NewFlow(api, store, checkout.Widget{
			PublicKey: cfg.LiteAPIPublicKey,
			BaseURL:   cfg.PublicBaseURL,
		}),
		Confirm: checkout.NewConfirmer(api, store, repo, pub),
		Ready: func(ctx context.Context) error {
			if err := repo.Ping(ctx); err != nil {
				return err
			}
			return cache.Ping(ctx)
		},
	}

	// http
	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closers := []closer{
		{"nats", pub.Close},
		{"redis", rdb.Close},
		{"mysql", db.Close},
	}
	if metricsSrv != nil {
		closers = append(closers, closer{"metrics", metricsSrv.Close})
	}
	if err := serve(ctx, httpSrv, 10*time.Second, closers...); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
