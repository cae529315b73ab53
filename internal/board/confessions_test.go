package board

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/config"
)

func TestCreateConfessionValidation(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		in       CreateConfessionInput
		wantKind Kind
	}{
		{
			"content too short",
			CreateConfessionInput{Content: "too short"},
			KindValidation,
		},
		{
			"content too long",
			CreateConfessionInput{Content: strings.Repeat("x", 2001)},
			KindValidation,
		},
		{
			"title too long",
			CreateConfessionInput{Content: "long enough content", Title: strings.Repeat("t", 101)},
			KindValidation,
		},
		{
			"unknown category",
			CreateConfessionInput{Content: "long enough content", Category: "gossip"},
			KindValidation,
		},
		{
			"too many tags",
			CreateConfessionInput{
				Content: "long enough content",
				Tags:    []string{"a", "b", "c", "d", "e", "f"},
			},
			KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateConfession(ctx, tt.in)
			wantKind(t, err, tt.wantKind)
		})
	}
}

func TestCreateConfessionMultibyteContent(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	// 9 characters but 27 bytes; length is measured in bytes
	c, err := s.CreateConfession(ctx, CreateConfessionInput{Content: "我今天对同事撒了谎"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if c.ID == 0 {
		t.Error("confession not persisted")
	}
}

func TestCreateConfessionDefaults(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.Moderation.AutoApproveConfessions = false
	})
	ctx := context.Background()

	c, err := s.CreateConfession(ctx, CreateConfessionInput{
		AuthorID: int64p(42),
		Content:  "a confession with default settings",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if c.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", c.Status)
	}
	if c.Category != models.CategoryOther {
		t.Errorf("category = %s, want other", c.Category)
	}
	if !c.ExpiresAt.Valid {
		t.Fatal("expiry not set from configured default")
	}
	wantExpiry := testTime.AddDate(0, 0, 30)
	if !c.ExpiresAt.Time.Equal(wantExpiry) {
		t.Errorf("expires at = %v, want %v", c.ExpiresAt.Time, wantExpiry)
	}

	stats, err := s.GetUserStats(ctx, 42)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.ConfessionsCount != 1 {
		t.Errorf("confessions count = %d, want 1", stats.ConfessionsCount)
	}
}

func TestCreateConfessionExpiryOverride(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	t.Run("explicit days", func(t *testing.T) {
		c, err := s.CreateConfession(ctx, CreateConfessionInput{
			Content:       "a confession that expires in a week",
			ExpiresInDays: intp(7),
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		want := testTime.AddDate(0, 0, 7)
		if !c.ExpiresAt.Valid || !c.ExpiresAt.Time.Equal(want) {
			t.Errorf("expires at = %+v, want %v", c.ExpiresAt, want)
		}
	})

	t.Run("zero means never", func(t *testing.T) {
		c, err := s.CreateConfession(ctx, CreateConfessionInput{
			Content:       "a confession that never expires",
			ExpiresInDays: intp(0),
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if c.ExpiresAt.Valid {
			t.Errorf("expires at = %v, want unset", c.ExpiresAt.Time)
		}
	})
}

func TestCreateConfessionTags(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	c, err := s.CreateConfession(ctx, CreateConfessionInput{
		Content: "a confession carrying tags",
		Tags:    []string{"#Work", "work", "  Regret ", ""},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	reloaded := reloadConfession(t, s, c.ID)
	if got, want := reloaded.TagNames(), []string{"work", "regret"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"lowercase and trim", []string{" Work ", "LOVE"}, []string{"work", "love"}},
		{"strip leading hash", []string{"#secret"}, []string{"secret"}},
		{"dedupe", []string{"work", "Work", "#work"}, []string{"work"}},
		{"drop empties", []string{"", "  ", "#"}, nil},
		{"truncate long tags", []string{strings.Repeat("a", 40)}, []string{strings.Repeat("a", 32)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetConfessionViewCounting(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	approved := seedConfession(t, s, nil)
	pending := seedConfession(t, s, func(c *models.Confession) {
		c.Status = models.StatusPending
	})

	got, err := s.GetConfession(ctx, approved.ID, true)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ViewsCount != 1 {
		t.Errorf("views count = %d, want 1", got.ViewsCount)
	}

	// Views on non-approved content are not counted
	if _, err := s.GetConfession(ctx, pending.ID, true); err != nil {
		t.Fatalf("get pending failed: %v", err)
	}
	if row := reloadConfession(t, s, pending.ID); row.ViewsCount != 0 {
		t.Errorf("pending views count = %d, want 0", row.ViewsCount)
	}

	// recordView=false leaves the counter alone
	if _, err := s.GetConfession(ctx, approved.ID, false); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if row := reloadConfession(t, s, approved.ID); row.ViewsCount != 1 {
		t.Errorf("views count = %d, want 1", row.ViewsCount)
	}

	_, err = s.GetConfession(ctx, 99999, false)
	wantKind(t, err, KindNotFound)
}

func TestRecordShare(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()
	c := seedConfession(t, s, nil)

	if err := s.RecordShare(ctx, c.ID); err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if err := s.RecordShare(ctx, c.ID); err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if row := reloadConfession(t, s, c.ID); row.SharesCount != 2 {
		t.Errorf("shares count = %d, want 2", row.SharesCount)
	}

	wantKind(t, s.RecordShare(ctx, 99999), KindNotFound)
}

func TestDeleteConfessionCascade(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	c, err := s.CreateConfession(ctx, CreateConfessionInput{
		Content: "a confession about to disappear",
		Tags:    []string{"doomed"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.CastVote(ctx, 1, c.ID, models.VoteHeaven); err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if _, err := s.CreateComment(ctx, 2, c.ID, "last words", nil); err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	if err := s.DeleteConfession(ctx, c.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if got, err := s.confessions.GetByID(ctx, c.ID); err != nil || got != nil {
		t.Errorf("confession still present: %+v, err=%v", got, err)
	}
	if vote, err := s.votes.GetByUserConfession(ctx, 1, c.ID); err != nil || vote != nil {
		t.Errorf("vote survived cascade: %+v, err=%v", vote, err)
	}
	if count, err := s.comments.CountApprovedByConfession(ctx, c.ID); err != nil || count != 0 {
		t.Errorf("comments survived cascade: count=%d, err=%v", count, err)
	}

	wantKind(t, s.DeleteConfession(ctx, c.ID), KindNotFound)
	wantKind(t, s.ReconcileConfessionVotes(ctx, c.ID), KindNotFound)
}
