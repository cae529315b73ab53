package models

import (
	"database/sql"
	"time"
)

// UserStats aggregates per-user activity counters
type UserStats struct {
	UserID           int64 `gorm:"primaryKey;column:user_id" json:"userId"`
	ConfessionsCount int64 `gorm:"not null;default:0;column:confessions_count" json:"confessionsCount"`
	CommentsCount    int64 `gorm:"not null;default:0;column:comments_count" json:"commentsCount"`
	VotesCast        int64 `gorm:"not null;default:0;column:votes_cast" json:"votesCast"`

	// FirstVotedAt is set exactly once, on the user's first ever vote.
	FirstVotedAt sql.NullTime `gorm:"column:first_voted_at" json:"-"`
	LastActiveAt time.Time    `gorm:"not null;column:last_active_at" json:"lastActiveAt"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"-"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"-"`
}

// TableName specifies the table name for UserStats
func (UserStats) TableName() string {
	return "user_stats"
}
