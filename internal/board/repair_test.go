package board

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/limbo-app/limbo/internal/models"
)

func TestRepairCountersHealsDrift(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		c := seedConfession(t, s, nil)
		if err := s.votes.Create(ctx, &models.Vote{UserID: 1, ConfessionID: c.ID, Type: models.VoteHeaven}); err != nil {
			t.Fatalf("seed vote failed: %v", err)
		}
		// Drifted counters, as if a reconcile trigger was lost
		if err := s.confessions.UpdateVoteCounters(ctx, c.ID, 50, 50, 0); err != nil {
			t.Fatalf("corrupt counters failed: %v", err)
		}
		ids = append(ids, c.ID)
	}

	last, err := s.RepairCounters(ctx, 0, 10)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	if last != ids[len(ids)-1] {
		t.Errorf("last processed id = %d, want %d", last, ids[len(ids)-1])
	}

	for _, id := range ids {
		row := reloadConfession(t, s, id)
		if row.Votes.Heaven != 1 || row.Votes.Hell != 0 {
			t.Errorf("confession %d counters = (%d, %d), want (1, 0)",
				id, row.Votes.Heaven, row.Votes.Hell)
		}
	}

	// Past the end of the table the sweep reports done
	done, err := s.RepairCounters(ctx, last, 10)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	if done != 0 {
		t.Errorf("expected wrap-around signal, got %d", done)
	}
}

func TestRepairCountersBatching(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	first := seedConfession(t, s, nil)
	second := seedConfession(t, s, nil)

	last, err := s.RepairCounters(ctx, 0, 1)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	if last != first.ID {
		t.Errorf("last = %d, want %d", last, first.ID)
	}

	last, err = s.RepairCounters(ctx, last, 1)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	if last != second.ID {
		t.Errorf("last = %d, want %d", last, second.ID)
	}
}

func TestSweepExpired(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	expired := seedConfession(t, s, func(c *models.Confession) {
		c.ExpiresAt = sql.NullTime{Time: testTime.Add(-time.Hour), Valid: true}
	})
	if _, err := s.CastVote(ctx, 1, seedConfession(t, s, nil).ID, models.VoteHeaven); err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	// Vote on the expired confession placed before it expired
	if err := s.votes.Create(ctx, &models.Vote{UserID: 2, ConfessionID: expired.ID, Type: models.VoteHell}); err != nil {
		t.Fatalf("seed vote failed: %v", err)
	}
	alive := seedConfession(t, s, func(c *models.Confession) {
		c.ExpiresAt = sql.NullTime{Time: testTime.Add(time.Hour), Valid: true}
	})

	removed, err := s.SweepExpired(ctx, 10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if got, err := s.confessions.GetByID(ctx, expired.ID); err != nil || got != nil {
		t.Errorf("expired confession survived: %+v, err=%v", got, err)
	}
	if vote, err := s.votes.GetByUserConfession(ctx, 2, expired.ID); err != nil || vote != nil {
		t.Errorf("vote survived expiry cascade: %+v, err=%v", vote, err)
	}
	if got := reloadConfession(t, s, alive.ID); got == nil {
		t.Error("unexpired confession was swept")
	}
}
