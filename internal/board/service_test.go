package board

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/db"
	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/config"
	"github.com/limbo-app/limbo/pkg/logging"
)

// testTime is the frozen clock all board tests run under
var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	logging.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
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
	}
}

// newTestService builds a Service over a throwaway SQLite database with a
// frozen clock. mutate may adjust the config before construction.
func newTestService(t *testing.T, mutate func(*config.Config)) *Service {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	url := "sqlite://" + filepath.Join(t.TempDir(), "board.db")
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

	s := New(cfg, database, nil)
	s.now = func() time.Time { return testTime }
	return s
}

// seedConfession inserts an approved confession created one hour before
// testTime. mutate may adjust fields before insertion.
func seedConfession(t *testing.T, s *Service, mutate func(*models.Confession)) *models.Confession {
	t.Helper()

	c := &models.Confession{
		Title:     "a seeded confession",
		Content:   "something I have been meaning to say",
		Category:  models.CategoryOther,
		Status:    models.StatusApproved,
		CreatedAt: testTime.Add(-time.Hour),
		UpdatedAt: testTime.Add(-time.Hour),
	}
	if mutate != nil {
		mutate(c)
	}
	if err := s.confessions.Create(context.Background(), c); err != nil {
		t.Fatalf("failed to seed confession: %v", err)
	}
	return c
}

// reloadConfession fetches the current row state, failing the test when the
// row is missing.
func reloadConfession(t *testing.T, s *Service, id int64) *models.Confession {
	t.Helper()

	c, err := s.confessions.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload confession %d: %v", id, err)
	}
	if c == nil {
		t.Fatalf("confession %d vanished", id)
	}
	return c
}

func int64p(v int64) *int64 {
	return &v
}

func intp(v int) *int {
	return &v
}

// wantKind asserts err carries the expected kind
func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}
