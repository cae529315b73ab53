package board

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/telemetry"
)

// Reconciliation recomputes denormalized counters from the normalized
// vote/comment records. Every function here is idempotent: concurrent or
// repeated runs converge to the same values, so callers never lock.

// ReconcileConfessionVotes recomputes votes.heaven and votes.hell by
// counting current vote records, and persists both counters together with
// the refreshed hot score in a single write.
func (s *Service) ReconcileConfessionVotes(ctx context.Context, confessionID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "board.reconcile_votes")
	defer span.End()

	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		return Wrap(KindInternal, err, "load confession for vote reconcile")
	}
	if confession == nil {
		return Ef(KindNotFound, "confession %d not found", confessionID)
	}

	heaven, err := s.votes.CountByType(ctx, confessionID, models.VoteHeaven)
	if err != nil {
		return Wrap(KindInternal, err, "count heaven votes")
	}
	hell, err := s.votes.CountByType(ctx, confessionID, models.VoteHell)
	if err != nil {
		return Wrap(KindInternal, err, "count hell votes")
	}

	hot := hotScoreFor(confession, heaven+hell, s.now())
	if err := s.confessions.UpdateVoteCounters(ctx, confessionID, heaven, hell, hot); err != nil {
		return Wrap(KindInternal, err, "persist vote counters")
	}
	return nil
}

// ReconcileCommentCount recomputes commentsCount as the count of approved
// comments referencing the confession.
func (s *Service) ReconcileCommentCount(ctx context.Context, confessionID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "board.reconcile_comments")
	defer span.End()

	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		return Wrap(KindInternal, err, "load confession for comment reconcile")
	}
	if confession == nil {
		return Ef(KindNotFound, "confession %d not found", confessionID)
	}

	count, err := s.comments.CountApprovedByConfession(ctx, confessionID)
	if err != nil {
		return Wrap(KindInternal, err, "count approved comments")
	}

	confession.CommentsCount = count
	hot := hotScoreFor(confession, confession.TotalVotes(), s.now())
	if err := s.confessions.UpdateCommentCount(ctx, confessionID, count, hot); err != nil {
		return Wrap(KindInternal, err, "persist comment count")
	}
	return nil
}

// ReconcileReplyCount recomputes repliesCount for a comment as the count
// of approved comments whose parent is it.
func (s *Service) ReconcileReplyCount(ctx context.Context, parentID int64) error {
	comment, err := s.comments.GetByID(ctx, parentID)
	if err != nil {
		return Wrap(KindInternal, err, "load comment for reply reconcile")
	}
	if comment == nil {
		return Ef(KindNotFound, "comment %d not found", parentID)
	}

	count, err := s.comments.CountApprovedByParent(ctx, parentID)
	if err != nil {
		return Wrap(KindInternal, err, "count approved replies")
	}
	if err := s.comments.UpdateRepliesCount(ctx, parentID, count); err != nil {
		return Wrap(KindInternal, err, "persist reply count")
	}
	return nil
}

// triggerVoteReconcile runs vote reconciliation after a committed ledger
// write. Failures are logged and swallowed: the originating write already
// succeeded, and recompute-from-source self-corrects on the next run.
func (s *Service) triggerVoteReconcile(ctx context.Context, confessionID int64) {
	if err := s.ReconcileConfessionVotes(ctx, confessionID); err != nil {
		s.logger.Error("vote reconciliation failed",
			zap.Int64("confession_id", confessionID),
			zap.Error(err))
	}
}

// triggerCommentReconcile runs comment-count reconciliation on the
// confession and, when the comment has a parent, reply-count
// reconciliation on that parent. Failures are logged and swallowed.
func (s *Service) triggerCommentReconcile(ctx context.Context, confessionID int64, parentID sql.NullInt64) {
	if err := s.ReconcileCommentCount(ctx, confessionID); err != nil {
		s.logger.Error("comment count reconciliation failed",
			zap.Int64("confession_id", confessionID),
			zap.Error(err))
	}
	if parentID.Valid {
		if err := s.ReconcileReplyCount(ctx, parentID.Int64); err != nil {
			s.logger.Error("reply count reconciliation failed",
				zap.Int64("parent_id", parentID.Int64),
				zap.Error(err))
		}
	}
}
