package board

import (
	"context"

	"go.uber.org/zap"
)

// Background maintenance entry points used by the reaper worker.
// Reconciliation is idempotent, so repair can run concurrently with live
// traffic without coordination.

// RepairCounters re-runs counter reconciliation for a batch of approved
// confessions with ID greater than afterID, healing any drift left by
// interrupted triggers and refreshing the decayed hot scores. It returns
// the last processed ID, or 0 when the sweep wrapped around.
func (s *Service) RepairCounters(ctx context.Context, afterID int64, batch int) (int64, error) {
	ids, err := s.confessions.ListApprovedIDs(ctx, afterID, batch, s.now())
	if err != nil {
		return 0, Wrap(KindInternal, err, "list confessions for repair")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := s.ReconcileConfessionVotes(ctx, id); err != nil {
			s.logger.Error("counter repair failed", zap.Int64("confession_id", id), zap.Error(err))
			continue
		}
		if err := s.ReconcileCommentCount(ctx, id); err != nil {
			s.logger.Error("comment repair failed", zap.Int64("confession_id", id), zap.Error(err))
		}
	}

	return ids[len(ids)-1], nil
}

// SweepExpired cascade-deletes a batch of expired confessions. Expiry
// cleanup is an explicit orchestration step here rather than a
// storage-layer TTL, so the cascade stays visible and ordered. Returns
// how many confessions were removed.
func (s *Service) SweepExpired(ctx context.Context, batch int) (int, error) {
	ids, err := s.confessions.ListExpiredIDs(ctx, batch, s.now())
	if err != nil {
		return 0, Wrap(KindInternal, err, "list expired confessions")
	}

	removed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.DeleteConfession(ctx, id); err != nil {
			s.logger.Error("expiry sweep delete failed", zap.Int64("confession_id", id), zap.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}
