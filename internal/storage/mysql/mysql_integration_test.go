//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"petotel/internal/domain"
	mysqlrepo "petotel/internal/storage/mysql"
)

// migrationsDir honors MIGRATIONS_DIR and falls back to the repo's migrations/.
func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=petotel",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/petotel?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_SnapshotsMissesAndLedger(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if _, err := repo.GetSnapshot(ctx, "lp1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	snap := domain.PetPolicySnapshot{
		HotelID:     "lp1",
		HotelName:   "Barkley Inn",
		PetFriendly: true,
		PolicyText:  "Dogs under 20kg",
		Source:      "policy",
		RawJSON:     []byte(`{"id":"lp1"}`),
	}
	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertSnapshot: %v", err)
	}
	// re-snapshot flips the verdict in place
	snap.PetFriendly, snap.PolicyText, snap.Source = false, "", ""
	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertSnapshot again: %v", err)
	}
	got, err := repo.GetSnapshot(ctx, "lp1")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got.PetFriendly || got.HotelName != "Barkley Inn" || got.PolicyText != "" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	if err := repo.LogMiss(ctx, "lp404", 404, "not found"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, "lp404", 404, "not found"); err != nil {
		t.Fatalf("LogMiss twice: %v", err)
	}

	entry := domain.LedgerEntry{
		BookingID:    "BK-1",
		AttemptID:    "a1",
		HotelID:      "lp1",
		HotelName:    "Barkley Inn",
		Checkin:      "2026-11-10",
		Checkout:     "2026-11-12",
		Status:       "CONFIRMED",
		Confirmation: "HC-7",
		Price:        240.5,
		Currency:     "USD",
		HolderEmail:  "jane@example.com",
		PetType:      "dog",
		PetCount:     "1",
		RawJSON:      []byte(`{"bookingId":"BK-1"}`),
		ConfirmedAt:  time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.RecordBooking(ctx, entry); err != nil {
		t.Fatalf("RecordBooking: %v", err)
	}
	if err := repo.RecordBooking(ctx, entry); err != nil {
		t.Fatalf("RecordBooking replay: %v", err)
	}
	be, err := repo.GetBooking(ctx, "BK-1")
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if be.AttemptID != "a1" || be.Checkin != "2026-11-10" || be.Price != 240.5 || !be.ConfirmedAt.Equal(entry.ConfirmedAt) {
		t.Fatalf("unexpected ledger entry: %+v", be)
	}
	if _, err := repo.GetBooking(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
