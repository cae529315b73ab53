package board

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/telemetry"
)

// Content length bounds, measured in bytes
const (
	minContentLen = 10
	maxContentLen = 2000
	maxTitleLen   = 100
	maxTagLen     = 32
)

// CreateConfessionInput carries the fields of a submission
type CreateConfessionInput struct {
	AuthorID  *int64
	Title     string
	Content   string
	Category  models.Category
	Tags      []string
	Anonymous bool

	// ExpiresInDays overrides the configured default expiry; 0 means never
	// expires. nil keeps the default.
	ExpiresInDays *int

	// QuotaKey identifies the requester for rate limiting when the
	// submission is unauthenticated (client address, typically).
	QuotaKey string
}

// CreateConfession validates and stores a new confession. New submissions
// start pending unless auto-approval is configured.
func (s *Service) CreateConfession(ctx context.Context, in CreateConfessionInput) (*models.Confession, error) {
	ctx, span := telemetry.StartSpan(ctx, "board.create_confession")
	defer span.End()

	if l := len(in.Content); l < minContentLen || l > maxContentLen {
		return nil, Ef(KindValidation, "content length must be between %d and %d, got %d", minContentLen, maxContentLen, l)
	}
	if len(in.Title) > maxTitleLen {
		return nil, Ef(KindValidation, "title must be at most %d characters", maxTitleLen)
	}

	category := in.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		return nil, Ef(KindValidation, "invalid category %q", category)
	}

	tags := normalizeTags(in.Tags)
	if len(tags) > s.cfg.Board.MaxTags {
		return nil, Ef(KindValidation, "at most %d tags allowed, got %d", s.cfg.Board.MaxTags, len(tags))
	}

	quotaKey := in.QuotaKey
	if in.AuthorID != nil {
		quotaKey = strconv.FormatInt(*in.AuthorID, 10)
	}
	if quotaKey == "" {
		quotaKey = "anon"
	}
	if err := s.checkQuota(quotaKey, ActionPost); err != nil {
		return nil, err
	}

	now := s.now()

	status := models.StatusPending
	if s.cfg.Moderation.AutoApproveConfessions {
		status = models.StatusApproved
	}

	confession := &models.Confession{
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		Anonymous: in.Anonymous,
		Category:  category,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.AuthorID != nil {
		confession.AuthorID = sql.NullInt64{Int64: *in.AuthorID, Valid: true}
	}

	expiryDays := s.cfg.Board.ExpiryDays
	if in.ExpiresInDays != nil {
		expiryDays = *in.ExpiresInDays
	}
	confession.ExpiresAt = expiresAfter(now, expiryDays)

	for _, tag := range tags {
		confession.Tags = append(confession.Tags, models.ConfessionTag{Tag: tag})
	}

	if err := s.confessions.Create(ctx, confession); err != nil {
		return nil, Wrap(KindInternal, err, "create confession")
	}

	if in.AuthorID != nil {
		s.recordConfessionCreated(ctx, *in.AuthorID)
	}

	return confession, nil
}

// GetConfession loads a confession. When recordView is set, the view
// counter is bumped atomically; a failed bump is logged, never surfaced.
func (s *Service) GetConfession(ctx context.Context, id int64, recordView bool) (*models.Confession, error) {
	confession, err := s.confessions.GetByID(ctx, id)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return nil, Ef(KindNotFound, "confession %d not found", id)
	}

	if recordView && confession.Status == models.StatusApproved {
		if err := s.confessions.IncrementViews(ctx, id); err != nil {
			s.logger.Error("view increment failed", zap.Int64("confession_id", id), zap.Error(err))
		} else {
			confession.ViewsCount++
		}
	}

	return confession, nil
}

// RecordShare bumps the share counter of an approved confession
func (s *Service) RecordShare(ctx context.Context, id int64) error {
	confession, err := s.confessions.GetByID(ctx, id)
	if err != nil {
		return Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return Ef(KindNotFound, "confession %d not found", id)
	}
	if err := s.confessions.IncrementShares(ctx, id); err != nil {
		return Wrap(KindInternal, err, "increment shares")
	}
	return nil
}

// DeleteConfession removes a confession and everything referencing it.
// The cascade is an explicit orchestration step: children first (votes,
// comments, tags), then the confession row, so ordering is visible and
// testable rather than a storage-layer side effect.
func (s *Service) DeleteConfession(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "board.delete_confession")
	defer span.End()

	confession, err := s.confessions.GetByID(ctx, id)
	if err != nil {
		return Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return Ef(KindNotFound, "confession %d not found", id)
	}

	if err := s.votes.DeleteByConfession(ctx, id); err != nil {
		return Wrap(KindInternal, err, "cascade delete votes")
	}
	if err := s.comments.DeleteByConfession(ctx, id); err != nil {
		return Wrap(KindInternal, err, "cascade delete comments")
	}
	if err := s.confessions.DeleteTags(ctx, id); err != nil {
		return Wrap(KindInternal, err, "cascade delete tags")
	}
	if err := s.confessions.Delete(ctx, id); err != nil {
		return Wrap(KindInternal, err, "delete confession")
	}

	s.logger.Info("confession deleted",
		zap.Int64("confession_id", id),
		zap.Int64("comments_count", confession.CommentsCount),
		zap.Int64("votes_total", confession.TotalVotes()))

	return nil
}

// normalizeTags lowercases, trims and dedupes tags, dropping empties and
// stripping a leading hash.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		if len(tag) > maxTagLen {
			tag = tag[:maxTagLen]
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// expiresAfter maps an expiry window in days to a nullable timestamp.
// Zero or negative days means no expiry.
func expiresAfter(now time.Time, days int) sql.NullTime {
	if days <= 0 {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: now.AddDate(0, 0, days), Valid: true}
}
