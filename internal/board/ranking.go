package board

import (
	"math"
	"time"

	"github.com/limbo-app/limbo/internal/models"
)

// Hot score weights. Engagement rewards votes and comments over passive
// views; the super-linear age denominator decays old posts out of
// prominence without letting brand-new zero-engagement posts dominate.
const (
	hotVoteWeight    = 2.0
	hotCommentWeight = 3.0
	hotViewWeight    = 0.1
	hotAgeOffset     = 2.0
	hotGravity       = 1.5
)

// HotScore computes the time-decayed ranking score:
//
//	(totalVotes*2 + comments*3 + views*0.1) / (ageHours + 2)^1.5
func HotScore(totalVotes, comments, views int64, age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	engagement := float64(totalVotes)*hotVoteWeight +
		float64(comments)*hotCommentWeight +
		float64(views)*hotViewWeight
	return engagement / math.Pow(age.Hours()+hotAgeOffset, hotGravity)
}

// hotScoreFor computes the score of a confession as of now, using the
// counters currently on the row plus the given vote total.
func hotScoreFor(c *models.Confession, totalVotes int64, now time.Time) float64 {
	return HotScore(totalVotes, c.CommentsCount, c.ViewsCount, now.Sub(c.CreatedAt))
}
