package models

import (
	"time"
)

type ReactionType string

const (
	ReactionTypeLike    ReactionType = "like"
	ReactionTypeDislike ReactionType = "dislike"
)

// ReactionTypes maps reaction value to display label.
var ReactionTypes = map[ReactionType]string{
	ReactionTypeLike:    "Like",
	ReactionTypeDislike: "Dislike",
}

func (t ReactionType) Label() string {
	return ReactionTypes[t]
}

func (t ReactionType) Emoji() string {
	switch t {
	case ReactionTypeLike:
		return "👍"
	case ReactionTypeDislike:
		return "👎"
	}
	return ""
}

func (t ReactionType) Valid() bool {
	_, ok := ReactionTypes[t]
	return ok
}

// Reaction is one like/dislike row. Exactly one of UserID and
// GuestFingerprint is set; the unique indexes enforce at most one
// reaction per identity per comment.
type Reaction struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	CommentID        uint         `gorm:"not null;uniqueIndex:idx_reactions_user;uniqueIndex:idx_reactions_guest" json:"comment_id"`
	Comment          Comment      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID           *uint        `gorm:"uniqueIndex:idx_reactions_user" json:"user_id"`
	User             *User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`
	GuestFingerprint *string      `gorm:"size:128;index;uniqueIndex:idx_reactions_guest" json:"guest_fingerprint,omitempty"`
	Type             ReactionType `gorm:"type:varchar(10);not null" json:"type"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (r *Reaction) IsGuest() bool {
	return r.GuestFingerprint != nil
}

func (r *Reaction) IsAuthenticated() bool {
	return r.UserID != nil
}
