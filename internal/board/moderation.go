package board

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/telemetry"
)

// EntityType selects the target of a moderation action
type EntityType string

const (
	EntityConfession EntityType = "confession"
	EntityComment    EntityType = "comment"
)

// Valid reports whether t is a known entity type
func (t EntityType) Valid() bool {
	return t == EntityConfession || t == EntityComment
}

// Moderate applies a status transition to a confession or comment,
// stamps the moderation block and returns the updated entity
// (*models.Confession or *models.Comment). Authorization happens
// upstream; the core only applies the transition. When a comment
// crosses the approved boundary in either direction, the dependent
// counters are reconciled.
func (s *Service) Moderate(ctx context.Context, entityType EntityType, id int64, newStatus models.Status, reason string, moderatorID int64) (interface{}, error) {
	ctx, span := telemetry.StartSpan(ctx, "board.moderate")
	defer span.End()

	if !newStatus.Valid() {
		return nil, Ef(KindValidation, "invalid status %q", newStatus)
	}

	switch entityType {
	case EntityConfession:
		return s.moderateConfession(ctx, id, newStatus, reason, moderatorID)
	case EntityComment:
		return s.moderateComment(ctx, id, newStatus, reason, moderatorID)
	default:
		return nil, Ef(KindValidation, "invalid entity type %q", entityType)
	}
}

func (s *Service) moderateConfession(ctx context.Context, id int64, newStatus models.Status, reason string, moderatorID int64) (*models.Confession, error) {
	confession, err := s.confessions.GetByID(ctx, id)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return nil, Ef(KindNotFound, "confession %d not found", id)
	}

	confession.Status = newStatus
	confession.Moderation.ModeratedBy = sql.NullInt64{Int64: moderatorID, Valid: true}
	confession.Moderation.ModeratedAt = sql.NullTime{Time: s.now(), Valid: true}
	confession.Moderation.ModerationReason = reason

	if err := s.confessions.Update(ctx, confession); err != nil {
		return nil, Wrap(KindInternal, err, "persist confession moderation")
	}

	s.logger.Info("confession moderated",
		zap.Int64("confession_id", id),
		zap.String("status", string(newStatus)),
		zap.Int64("moderator_id", moderatorID))

	return confession, nil
}

func (s *Service) moderateComment(ctx context.Context, id int64, newStatus models.Status, reason string, moderatorID int64) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load comment")
	}
	if comment == nil {
		return nil, Ef(KindNotFound, "comment %d not found", id)
	}

	wasApproved := comment.Status == models.StatusApproved
	comment.Status = newStatus
	comment.Moderation.ModeratedBy = sql.NullInt64{Int64: moderatorID, Valid: true}
	comment.Moderation.ModeratedAt = sql.NullTime{Time: s.now(), Valid: true}
	comment.Moderation.ModerationReason = reason

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, Wrap(KindInternal, err, "persist comment moderation")
	}

	// Counters track approved comments only; reconcile when the approved
	// boundary is crossed in either direction.
	if wasApproved != (newStatus == models.StatusApproved) {
		s.triggerCommentReconcile(ctx, comment.ConfessionID, comment.ParentID)
	}

	s.logger.Info("comment moderated",
		zap.Int64("comment_id", id),
		zap.String("status", string(newStatus)),
		zap.Int64("moderator_id", moderatorID))

	return comment, nil
}

// BatchResult reports the outcome of one entity in a batch moderation
type BatchResult struct {
	ID    int64  `json:"id"`
	Error string `json:"error,omitempty"`
}

// BatchModerate applies a status transition to many entities. Per-entity
// failures are collected; one bad id does not abort the batch.
func (s *Service) BatchModerate(ctx context.Context, entityType EntityType, ids []int64, newStatus models.Status, reason string, moderatorID int64) ([]BatchResult, error) {
	if !entityType.Valid() {
		return nil, Ef(KindValidation, "invalid entity type %q", entityType)
	}
	if !newStatus.Valid() {
		return nil, Ef(KindValidation, "invalid status %q", newStatus)
	}

	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		res := BatchResult{ID: id}
		if _, err := s.Moderate(ctx, entityType, id, newStatus, reason, moderatorID); err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

// FeatureConfession toggles the featured flag on a confession
func (s *Service) FeatureConfession(ctx context.Context, id int64, featured bool, moderatorID int64) error {
	confession, err := s.confessions.GetByID(ctx, id)
	if err != nil {
		return Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return Ef(KindNotFound, "confession %d not found", id)
	}

	confession.Featured = featured
	if featured {
		confession.FeaturedAt = sql.NullTime{Time: s.now(), Valid: true}
	} else {
		confession.FeaturedAt = sql.NullTime{}
	}
	confession.Moderation.ModeratedBy = sql.NullInt64{Int64: moderatorID, Valid: true}
	confession.Moderation.ModeratedAt = sql.NullTime{Time: s.now(), Valid: true}

	if err := s.confessions.Update(ctx, confession); err != nil {
		return Wrap(KindInternal, err, "persist featured flag")
	}
	return nil
}

// ReportConfession flags a confession and bumps its report counter
func (s *Service) ReportConfession(ctx context.Context, id int64) error {
	res := s.db.DB.WithContext(ctx).Model(&models.Confession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_reported":  true,
			"report_count": gorm.Expr("report_count + ?", 1),
		})
	if res.Error != nil {
		return Wrap(KindInternal, res.Error, "report confession")
	}
	if res.RowsAffected == 0 {
		return Ef(KindNotFound, "confession %d not found", id)
	}
	return nil
}

// ReportComment flags a comment and bumps its report counter
func (s *Service) ReportComment(ctx context.Context, id int64) error {
	res := s.db.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_reported":  true,
			"report_count": gorm.Expr("report_count + ?", 1),
		})
	if res.Error != nil {
		return Wrap(KindInternal, res.Error, "report comment")
	}
	if res.RowsAffected == 0 {
		return Ef(KindNotFound, "comment %d not found", id)
	}
	return nil
}
