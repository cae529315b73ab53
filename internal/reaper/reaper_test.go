package reaper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/board"
	"github.com/limbo-app/limbo/internal/db"
	"github.com/limbo-app/limbo/pkg/config"
	"github.com/limbo-app/limbo/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestReaper(t *testing.T) (*Reaper, *board.Service) {
	t.Helper()

	cfg := &config.Config{
		Board: config.BoardConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			ExpiryDays:      30,
			MaxTags:         5,
		},
		Moderation: config.ModerationConfig{
			AutoApproveConfessions: true,
			AutoApproveComments:    true,
		},
		Reaper: config.ReaperConfig{
			IntervalSeconds: 1,
			RepairBatch:     10,
		},
	}

	url := "sqlite://" + filepath.Join(t.TempDir(), "reaper.db")
	database, err := db.New(&config.DatabaseConfig{URL: url}, "ERROR")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})

	svc := board.New(cfg, database, nil)
	return New(cfg, svc), svc
}

func TestPassAdvancesCursor(t *testing.T) {
	r, svc := newTestReaper(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 3; i++ {
		c, err := svc.CreateConfession(ctx, board.CreateConfessionInput{
			Content: "a confession for the maintenance pass",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		lastID = c.ID
	}

	r.pass(ctx)
	if r.cursor != lastID {
		t.Errorf("cursor = %d, want %d", r.cursor, lastID)
	}

	// Next pass runs past the end and wraps the cursor
	r.pass(ctx)
	if r.cursor != 0 {
		t.Errorf("cursor = %d, want wrap to 0", r.cursor)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _ := newTestReaper(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
