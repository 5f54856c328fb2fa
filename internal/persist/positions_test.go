package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/config"
	"github.com/l1jgo/guestsync/internal/geom"
)

// openTestDB connects to GUESTSYNC_TEST_DSN and applies migrations.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("GUESTSYNC_TEST_DSN")
	if dsn == "" {
		t.Skip("GUESTSYNC_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, config.PersistConfig{DSN: dsn, MaxConns: 2}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	version, err := RunMigrations(ctx, db.Pool)
	if err != nil {
		t.Fatal(err)
	}
	if version < 1 {
		t.Fatalf("schema version = %d after migrating", version)
	}
	return db
}

func TestPositionRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewPositionRepo(db)
	ctx := context.Background()
	id := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = repo.Delete(context.Background(), id) })

	if err := repo.SaveBatch(ctx, []PositionRow{{ParticipantID: id, Pos: geom.V3(1, 0.25, 2)}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveBatch(ctx, []PositionRow{{ParticipantID: id, Pos: geom.V3(3, 0.25, 4), Degraded: true}}); err != nil {
		t.Fatal(err)
	}

	row, err := repo.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.Pos != geom.V3(3, 0.25, 4) || !row.Degraded {
		t.Fatalf("Load() = %+v, want upserted row", row)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	if row, err := repo.Load(ctx, id); err != nil || row != nil {
		t.Fatalf("after Delete: row=%+v err=%v", row, err)
	}
	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestSaveBatchEmpty(t *testing.T) {
	// An empty batch never reaches the pool.
	repo := &PositionRepo{}
	if err := repo.SaveBatch(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
}
