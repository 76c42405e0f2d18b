package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"petotel/internal/adapters/liteapi"
	"petotel/internal/adapters/observability"
	redisad "petotel/internal/adapters/redis"
	"petotel/internal/app"
	"petotel/internal/shared"
	mysqlrepo "petotel/internal/storage/mysql"
)

// The ingestor snapshots the pet policy of every hotel in INGEST_HOTEL_IDS
// into MySQL so the API can serve it without an upstream call.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.LiteAPIBase).
		Int("workers", cfg.Workers).
		Int("hotels", len(cfg.HotelIDs)).
		Msg("ingestor starting")

	if len(cfg.HotelIDs) == 0 {
		log.Warn().Msg("INGEST_HOTEL_IDS is empty; nothing to do")
		return
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIBookBase, cfg.LiteAPIKey, cfg.LiteAPIRPS, cfg.LiteAPIRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LiteAPI client")
	}
	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	cache := redisad.New(rdb)
	snaps := app.NewSnapshotService(client, repo, cache)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var (
		wg             sync.WaitGroup
		ok, miss, errs atomic.Int64
	)

	for _, id := range cfg.HotelIDs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("interrupted; waiting for running snapshots")
			break
		}

		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(1)

			snap, err := snaps.Snapshot(ctx, hotelID)
			switch {
			case err != nil:
				errs.Add(1)
				log.Warn().Str("id", hotelID).Err(err).Msg("snapshot failed")
			case snap == nil:
				miss.Add(1)
				log.Info().Str("id", hotelID).Msg("hotel not served upstream")
			default:
				ok.Add(1)
				log.Info().Str("id", hotelID).Bool("pet_friendly", snap.PetFriendly).Msg("snapshot ok")
			}
		}(id)
	}

	wg.Wait()
	log.Info().Int64("ok", ok.Load()).Int64("missed", miss.Load()).Int64("failed", errs.Load()).Msg("ingestion completed")
}
