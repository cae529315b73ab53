package models

import (
	"time"
)

// VoteType is a binary judgment on a confession
type VoteType string

const (
	VoteHeaven VoteType = "heaven"
	VoteHell   VoteType = "hell"
)

// Valid reports whether t is a known vote type
func (t VoteType) Valid() bool {
	return t == VoteHeaven || t == VoteHell
}

// Opposite returns the other vote type
func (t VoteType) Opposite() VoteType {
	if t == VoteHeaven {
		return VoteHell
	}
	return VoteHeaven
}

// Vote is the ledger record for one user's judgment of one confession.
// The composite unique index is the authority preventing duplicate votes
// under concurrent requests; application checks are only a fast path.
type Vote struct {
	ID           int64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID       int64    `gorm:"not null;uniqueIndex:idx_votes_user_confession;column:user_id" json:"userId"`
	ConfessionID int64    `gorm:"not null;uniqueIndex:idx_votes_user_confession;index;column:confession_id" json:"confessionId"`
	Type         VoteType `gorm:"type:varchar(8);not null;column:type" json:"type"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}
