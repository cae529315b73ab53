package board

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/models"
)

// Per-user activity statistics. Recording is a collaborator call fired by
// the core's mutating operations; a failed recording never fails the
// operation that triggered it.

// GetUserStats returns the activity stats for a user. Users with no
// recorded activity get a zero-valued row, not an error.
func (s *Service) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	stats, err := s.stats.GetByUserID(ctx, userID)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load user stats")
	}
	if stats == nil {
		return &models.UserStats{UserID: userID}, nil
	}
	return stats, nil
}

func (s *Service) recordConfessionCreated(ctx context.Context, userID int64) {
	s.recordActivity(ctx, userID, func(stats *models.UserStats) {
		stats.ConfessionsCount++
	})
}

func (s *Service) recordCommentCreated(ctx context.Context, userID int64) {
	s.recordActivity(ctx, userID, func(stats *models.UserStats) {
		stats.CommentsCount++
	})
}

// recordVoteCast counts an added vote and, the first time a user ever
// votes, stamps FirstVotedAt.
func (s *Service) recordVoteCast(ctx context.Context, userID int64) {
	now := s.now()
	s.recordActivity(ctx, userID, func(stats *models.UserStats) {
		stats.VotesCast++
		if !stats.FirstVotedAt.Valid {
			stats.FirstVotedAt = sql.NullTime{Time: now, Valid: true}
		}
	})
}

func (s *Service) recordActivity(ctx context.Context, userID int64, mutate func(*models.UserStats)) {
	stats, err := s.stats.Ensure(ctx, userID, s.now())
	if err != nil {
		s.logger.Error("stats row load failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	mutate(stats)
	stats.LastActiveAt = s.now()
	if err := s.stats.Update(ctx, stats); err != nil {
		s.logger.Error("stats update failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
