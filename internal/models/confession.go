package models

import (
	"database/sql"
	"time"
)

// Status is the moderation status of user-submitted content
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusHidden   Status = "hidden"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusHidden:
		return true
	}
	return false
}

// Category is the confession category
type Category string

const (
	CategoryWork   Category = "work"
	CategoryLove   Category = "love"
	CategoryFamily Category = "family"
	CategorySchool Category = "school"
	CategoryHealth Category = "health"
	CategoryOther  Category = "other"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryLove, CategoryFamily, CategorySchool, CategoryHealth, CategoryOther:
		return true
	}
	return false
}

// VoteTotals holds the denormalized vote counters on a confession.
// These are a derived cache of the votes table, maintained by reconciliation,
// never an independent source of truth.
type VoteTotals struct {
	Heaven int64 `gorm:"not null;default:0;column:votes_heaven" json:"heaven"`
	Hell   int64 `gorm:"not null;default:0;column:votes_hell" json:"hell"`
}

// ModerationInfo holds the moderation block shared by confessions and comments
type ModerationInfo struct {
	IsReported       bool          `gorm:"not null;default:false;column:is_reported" json:"isReported"`
	ReportCount      int64         `gorm:"not null;default:0;column:report_count" json:"reportCount"`
	ModeratedBy      sql.NullInt64 `gorm:"column:moderated_by" json:"-"`
	ModeratedAt      sql.NullTime  `gorm:"column:moderated_at" json:"-"`
	ModerationReason string        `gorm:"type:varchar(500);column:moderation_reason" json:"moderationReason,omitempty"`
}

// Confession represents a confession post
type Confession struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title     string        `gorm:"type:varchar(100);column:title" json:"title,omitempty"`
	Content   string        `gorm:"type:varchar(2000);not null;column:content" json:"content"`
	AuthorID  sql.NullInt64 `gorm:"index;column:author_id" json:"-"`
	Anonymous bool          `gorm:"not null;default:false;column:is_anonymous" json:"isAnonymous"`
	Category  Category      `gorm:"type:varchar(16);not null;default:'other';index;column:category" json:"category"`
	Status    Status        `gorm:"type:varchar(16);not null;default:'pending';index;column:status" json:"status"`

	Votes         VoteTotals `gorm:"embedded" json:"votes"`
	CommentsCount int64      `gorm:"not null;default:0;column:comments_count" json:"commentsCount"`
	ViewsCount    int64      `gorm:"not null;default:0;column:views_count" json:"viewsCount"`
	SharesCount   int64      `gorm:"not null;default:0;column:shares_count" json:"sharesCount"`

	// HotScore is a persisted ranking score, refreshed on reconciliation and
	// periodically by the reaper. Read-time decay staleness is bounded by the
	// reaper interval.
	HotScore float64 `gorm:"type:float;not null;default:0;index;column:hot_score" json:"hotScore"`

	Moderation ModerationInfo `gorm:"embedded" json:"moderation"`

	Featured   bool         `gorm:"not null;default:false;column:is_featured" json:"isFeatured"`
	FeaturedAt sql.NullTime `gorm:"column:featured_at" json:"-"`
	ExpiresAt  sql.NullTime `gorm:"index;column:expires_at" json:"-"`

	CreatedAt time.Time `gorm:"not null;index;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updatedAt"`

	// Relationships
	Tags []ConfessionTag `gorm:"foreignKey:ConfessionID;references:ID" json:"tags,omitempty"`
}

// TableName specifies the table name for Confession
func (Confession) TableName() string {
	return "confessions"
}

// TotalVotes returns heaven + hell
func (c *Confession) TotalVotes() int64 {
	return c.Votes.Heaven + c.Votes.Hell
}

// HeavenPercentage returns the share of heaven votes, 0 when unvoted
func (c *Confession) HeavenPercentage() float64 {
	total := c.TotalVotes()
	if total == 0 {
		return 0
	}
	return float64(c.Votes.Heaven) / float64(total) * 100
}

// HellPercentage returns the share of hell votes, 0 when unvoted
func (c *Confession) HellPercentage() float64 {
	total := c.TotalVotes()
	if total == 0 {
		return 0
	}
	return float64(c.Votes.Hell) / float64(total) * 100
}

// IsExpired reports whether the confession has passed its expiry
func (c *Confession) IsExpired(now time.Time) bool {
	return c.ExpiresAt.Valid && c.ExpiresAt.Time.Before(now)
}

// IsAnonymous reports whether the author should be hidden
func (c *Confession) IsAnonymous() bool {
	return c.Anonymous || !c.AuthorID.Valid
}

// TagNames returns the tag strings of the loaded tag rows
func (c *Confession) TagNames() []string {
	names := make([]string, len(c.Tags))
	for i, t := range c.Tags {
		names[i] = t.Tag
	}
	return names
}

// ConfessionTag represents a confession-to-tag mapping
type ConfessionTag struct {
	ConfessionID int64  `gorm:"primaryKey;column:confession_id" json:"-"`
	Tag          string `gorm:"type:varchar(32);primaryKey;column:tag" json:"tag"`
}

// TableName specifies the table name for ConfessionTag
func (ConfessionTag) TableName() string {
	return "confession_tags"
}
