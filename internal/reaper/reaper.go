package reaper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/board"
	"github.com/limbo-app/limbo/pkg/config"
	"github.com/limbo-app/limbo/pkg/logging"
)

// Reaper is the background maintenance worker. Each pass sweeps expired
// confessions and repairs one batch of denormalized counters, which also
// refreshes the decayed hot scores. The repair cursor walks the table
// across passes and wraps around at the end.
type Reaper struct {
	cfg    *config.Config
	svc    *board.Service
	logger *zap.Logger

	cursor int64
}

// New creates a new reaper
func New(cfg *config.Config, svc *board.Service) *Reaper {
	return &Reaper{
		cfg:    cfg,
		svc:    svc,
		logger: logging.GetLogger().With(zap.String("component", "reaper")),
	}
}

// Run executes maintenance passes until the context is cancelled
func (r *Reaper) Run(ctx context.Context) error {
	interval := time.Duration(r.cfg.Reaper.IntervalSeconds) * time.Second
	r.logger.Info("Starting reaper", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			r.pass(ctx)
			if err := r.wait(ctx, interval); err != nil {
				return err
			}
		}
	}
}

// pass runs one maintenance iteration. Failures are logged and the pass
// continues; every step self-corrects on a later run.
func (r *Reaper) pass(ctx context.Context) {
	batch := r.cfg.Reaper.RepairBatch
	if batch <= 0 {
		batch = 200
	}

	swept, err := r.svc.SweepExpired(ctx, batch)
	if err != nil {
		r.logger.Error("expiry sweep failed", zap.Error(err))
	} else if swept > 0 {
		r.logger.Info("swept expired confessions", zap.Int("removed", swept))
	}

	next, err := r.svc.RepairCounters(ctx, r.cursor, batch)
	if err != nil {
		r.logger.Error("counter repair failed", zap.Int64("cursor", r.cursor), zap.Error(err))
		return
	}
	if next == 0 {
		r.logger.Debug("repair cursor wrapped around")
	}
	r.cursor = next
}

// wait sleeps for the interval or until the context is cancelled
func (r *Reaper) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
