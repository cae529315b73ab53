package board

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/limbo-app/limbo/pkg/config"
)

// Action names a rate-limited operation class
type Action string

const (
	ActionPost    Action = "post"
	ActionComment Action = "comment"
	ActionVote    Action = "vote"
)

// Quota is the rate-limiting collaborator consulted before mutating
// operations. Implementations decide per key (user id or client address).
type Quota interface {
	Allow(key string, action Action) bool
}

// RateQuota is a token-bucket Quota keyed by (key, action)
type RateQuota struct {
	cfg      *config.QuotaConfig
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateQuota creates a quota from per-minute rates in config
func NewRateQuota(cfg *config.QuotaConfig) *RateQuota {
	return &RateQuota{
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the action is within quota for the key
func (q *RateQuota) Allow(key string, action Action) bool {
	if !q.cfg.Enabled {
		return true
	}

	perMinute := 0
	switch action {
	case ActionPost:
		perMinute = q.cfg.PostsPerMinute
	case ActionComment:
		perMinute = q.cfg.CommentsPerMinute
	case ActionVote:
		perMinute = q.cfg.VotesPerMinute
	}
	if perMinute <= 0 {
		return true
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	bucket := string(action) + ":" + key
	limiter, ok := q.limiters[bucket]
	if !ok {
		burst := q.cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
		q.limiters[bucket] = limiter
	}
	return limiter.Allow()
}
