package board

import (
	"context"
	"testing"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/config"
)

func TestModerateConfession(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.Moderation.AutoApproveConfessions = false
	})
	ctx := context.Background()

	c, err := s.CreateConfession(ctx, CreateConfessionInput{Content: "awaiting moderation"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	entity, err := s.Moderate(ctx, EntityConfession, c.ID, models.StatusApproved, "looks fine", 9)
	if err != nil {
		t.Fatalf("moderate failed: %v", err)
	}
	moderated, ok := entity.(*models.Confession)
	if !ok {
		t.Fatalf("entity = %T, want *models.Confession", entity)
	}
	if moderated.Status != models.StatusApproved {
		t.Errorf("returned status = %s, want approved", moderated.Status)
	}

	row := reloadConfession(t, s, c.ID)
	if row.Status != models.StatusApproved {
		t.Errorf("status = %s, want approved", row.Status)
	}
	if !row.Moderation.ModeratedBy.Valid || row.Moderation.ModeratedBy.Int64 != 9 {
		t.Errorf("moderated by = %+v, want 9", row.Moderation.ModeratedBy)
	}
	if !row.Moderation.ModeratedAt.Valid {
		t.Error("moderated at not stamped")
	}
	if row.Moderation.ModerationReason != "looks fine" {
		t.Errorf("reason = %q", row.Moderation.ModerationReason)
	}
}

func TestModerateValidation(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		entityType EntityType
		id         int64
		status     models.Status
		wantKind   Kind
	}{
		{"unknown status", EntityConfession, 1, models.Status("vanished"), KindValidation},
		{"unknown entity type", EntityType("post"), 1, models.StatusApproved, KindValidation},
		{"missing confession", EntityConfession, 99999, models.StatusApproved, KindNotFound},
		{"missing comment", EntityComment, 99999, models.StatusApproved, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Moderate(ctx, tt.entityType, tt.id, tt.status, "", 9)
			wantKind(t, err, tt.wantKind)
		})
	}
}

func TestModerateCommentReconcilesCounters(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.Moderation.AutoApproveComments = false
	})
	ctx := context.Background()
	c := seedConfession(t, s, nil)

	comment, err := s.CreateComment(ctx, 1, c.ID, "pending comment", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row := reloadConfession(t, s, c.ID); row.CommentsCount != 0 {
		t.Fatalf("comments count = %d, want 0 before approval", row.CommentsCount)
	}

	// Crossing into approved bumps the counter
	if _, err := s.Moderate(ctx, EntityComment, comment.ID, models.StatusApproved, "", 9); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if row := reloadConfession(t, s, c.ID); row.CommentsCount != 1 {
		t.Errorf("comments count = %d, want 1 after approval", row.CommentsCount)
	}

	// Crossing back out drops it again
	if _, err := s.Moderate(ctx, EntityComment, comment.ID, models.StatusHidden, "spam", 9); err != nil {
		t.Fatalf("hide failed: %v", err)
	}
	if row := reloadConfession(t, s, c.ID); row.CommentsCount != 0 {
		t.Errorf("comments count = %d, want 0 after hiding", row.CommentsCount)
	}
}

func TestBatchModerate(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.Moderation.AutoApproveConfessions = false
	})
	ctx := context.Background()

	first, err := s.CreateConfession(ctx, CreateConfessionInput{Content: "first pending confession"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := s.CreateConfession(ctx, CreateConfessionInput{Content: "second pending confession"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	results, err := s.BatchModerate(ctx, EntityConfession,
		[]int64{first.ID, 99999, second.ID}, models.StatusApproved, "bulk", 9)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Error != "" || results[2].Error != "" {
		t.Errorf("unexpected per-entity errors: %+v", results)
	}
	if results[1].Error == "" {
		t.Error("missing entity did not report an error")
	}

	// The bad id did not abort the rest of the batch
	if row := reloadConfession(t, s, second.ID); row.Status != models.StatusApproved {
		t.Errorf("second status = %s, want approved", row.Status)
	}
}

func TestFeatureConfession(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	c := seedConfession(t, s, nil)

	if err := s.FeatureConfession(ctx, c.ID, true, 9); err != nil {
		t.Fatalf("feature failed: %v", err)
	}
	row := reloadConfession(t, s, c.ID)
	if !row.Featured || !row.FeaturedAt.Valid {
		t.Errorf("featured = (%v, %+v), want set", row.Featured, row.FeaturedAt)
	}

	if err := s.FeatureConfession(ctx, c.ID, false, 9); err != nil {
		t.Fatalf("unfeature failed: %v", err)
	}
	row = reloadConfession(t, s, c.ID)
	if row.Featured || row.FeaturedAt.Valid {
		t.Errorf("featured = (%v, %+v), want cleared", row.Featured, row.FeaturedAt)
	}

	wantKind(t, s.FeatureConfession(ctx, 99999, true, 9), KindNotFound)
}

func TestReportConfession(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	c := seedConfession(t, s, nil)

	if err := s.ReportConfession(ctx, c.ID); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if err := s.ReportConfession(ctx, c.ID); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	row := reloadConfession(t, s, c.ID)
	if !row.Moderation.IsReported || row.Moderation.ReportCount != 2 {
		t.Errorf("report state = (%v, %d), want (true, 2)",
			row.Moderation.IsReported, row.Moderation.ReportCount)
	}

	wantKind(t, s.ReportConfession(ctx, 99999), KindNotFound)
}

func TestReportComment(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	c := seedConfession(t, s, nil)

	comment, err := s.CreateComment(ctx, 1, c.ID, "reportable comment", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.ReportComment(ctx, comment.ID); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	reloaded, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reloaded.Moderation.IsReported || reloaded.Moderation.ReportCount != 1 {
		t.Errorf("report state = (%v, %d), want (true, 1)",
			reloaded.Moderation.IsReported, reloaded.Moderation.ReportCount)
	}

	wantKind(t, s.ReportComment(ctx, 99999), KindNotFound)
}
