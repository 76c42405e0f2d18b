package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	LiteAPIBase      string
	LiteAPIBookBase  string
	LiteAPIKey       string
	LiteAPIPublicKey string
	LiteAPIRPS       int
	LiteAPIRetries   int

	PublicBaseURL     string
	CacheTTL          time.Duration
	CheckoutTTL       time.Duration
	DetailConcurrency int
	Workers           int
	HotelIDs          []string
	NATSURL           string
	CORSOrigins       []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win over it.
func Load() Config {
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/petotel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		LiteAPIBase:      env("LITEAPI_BASE_URL", "https://api.liteapi.travel/v3.0"),
		LiteAPIBookBase:  env("LITEAPI_BOOK_URL", "https://book.liteapi.travel/v3.0"),
		LiteAPIKey:       env("LITEAPI_KEY", ""),
		LiteAPIPublicKey: env("LITEAPI_PUBLIC_KEY", "sandbox"),
		LiteAPIRPS:       atoi("LITEAPI_RPS", 5),
		LiteAPIRetries:   atoi("LITEAPI_RETRIES", 0),

		PublicBaseURL:     env("PUBLIC_BASE_URL", "http://localhost:3000"),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		CheckoutTTL:       time.Duration(atoi("CHECKOUT_TTL_SECONDS", 3600)) * time.Second,
		DetailConcurrency: atoi("SEARCH_DETAIL_CONCURRENCY", 0),
		Workers:           atoi("INGEST_WORKERS", 8),
		HotelIDs:          list(os.Getenv("INGEST_HOTEL_IDS")),
		NATSURL:           env("NATS_URL", ""),
		CORSOrigins:       list(os.Getenv("CORS_ORIGINS")),
	}
	if c.LiteAPIKey == "" {
		log.Warn().Msg("LITEAPI_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// list splits a comma separated value, dropping blanks.
func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
