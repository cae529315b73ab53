package board

import (
	"time"

	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/db"
	"github.com/limbo-app/limbo/pkg/config"
	"github.com/limbo-app/limbo/pkg/logging"
)

// Service is the confession board core: vote ledger, counter
// reconciliation, ranking and search over a passed-in persistence handle.
type Service struct {
	cfg         *config.Config
	db          *db.DB
	confessions *db.ConfessionRepository
	votes       *db.VoteRepository
	comments    *db.CommentRepository
	stats       *db.UserStatsRepository
	quota       Quota
	logger      *zap.Logger

	// now is swappable for tests
	now func() time.Time
}

// New creates a new board service. quota may be nil, in which case no
// operation is rate limited.
func New(cfg *config.Config, database *db.DB, quota Quota) *Service {
	repo := db.NewRepository(database.DB)
	return &Service{
		cfg:         cfg,
		db:          database,
		confessions: db.NewConfessionRepository(repo),
		votes:       db.NewVoteRepository(repo),
		comments:    db.NewCommentRepository(repo),
		stats:       db.NewUserStatsRepository(repo),
		quota:       quota,
		logger:      logging.GetLogger().With(zap.String("component", "board")),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// checkQuota consults the quota collaborator for a user-scoped action
func (s *Service) checkQuota(key string, action Action) error {
	if s.quota == nil || s.quota.Allow(key, action) {
		return nil
	}
	return Ef(KindRateLimited, "quota exceeded for %s", action)
}
