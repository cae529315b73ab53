package models

import (
	"database/sql"
	"time"
)

// Comment represents a threaded comment on a confession
type Comment struct {
	ID           int64         `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Content      string        `gorm:"type:varchar(500);not null;column:content" json:"content"`
	AuthorID     int64         `gorm:"not null;index;column:author_id" json:"authorId"`
	ConfessionID int64         `gorm:"not null;index;column:confession_id" json:"confessionId"`
	ParentID     sql.NullInt64 `gorm:"index;column:parent_id" json:"-"`
	Status       Status        `gorm:"type:varchar(16);not null;default:'pending';index;column:status" json:"status"`

	Likes    int64 `gorm:"not null;default:0;column:likes" json:"likes"`
	Dislikes int64 `gorm:"not null;default:0;column:dislikes" json:"dislikes"`

	// RepliesCount is a derived cache of approved direct children,
	// maintained by reconciliation.
	RepliesCount int64 `gorm:"not null;default:0;column:replies_count" json:"repliesCount"`

	Moderation ModerationInfo `gorm:"embedded" json:"moderation"`

	EditedAt  sql.NullTime `gorm:"column:edited_at" json:"-"`
	EditCount int          `gorm:"not null;default:0;column:edit_count" json:"editCount"`

	CreatedAt time.Time `gorm:"not null;index;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updatedAt"`

	// Relationships
	Parent   *Comment  `gorm:"foreignKey:ParentID;references:ID" json:"-"`
	Children []Comment `gorm:"foreignKey:ParentID;references:ID" json:"-"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// IsReply reports whether the comment is nested under another comment
func (c *Comment) IsReply() bool {
	return c.ParentID.Valid
}

// NetLikes returns likes - dislikes
func (c *Comment) NetLikes() int64 {
	return c.Likes - c.Dislikes
}

// IsEdited reports whether the comment was ever edited
func (c *Comment) IsEdited() bool {
	return c.EditCount > 0
}
