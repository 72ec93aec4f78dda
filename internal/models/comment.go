package models

import (
	"time"

	"gorm.io/gorm"
)

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusSpam     CommentStatus = "spam"
)

// CommentStatuses maps status value to display label.
var CommentStatuses = map[CommentStatus]string{
	CommentStatusPending:  "Pending",
	CommentStatusApproved: "Approved",
	CommentStatusSpam:     "Spam",
}

func (s CommentStatus) Label() string {
	return CommentStatuses[s]
}

func (s CommentStatus) Valid() bool {
	_, ok := CommentStatuses[s]
	return ok
}

// Commentable is implemented by any entity comments can attach to.
type Commentable interface {
	CommentableType() string
	CommentableID() uint
}

// Owner is a plain (type, id) pair for callers that address an owning
// entity without loading it.
type Owner struct {
	Type string
	ID   uint
}

func (o Owner) CommentableType() string { return o.Type }
func (o Owner) CommentableID() uint     { return o.ID }

type Comment struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	CommentableType string        `gorm:"size:255;not null;index:idx_commentable" json:"commentable_type"`
	CommentableID   uint          `gorm:"not null;index:idx_commentable" json:"commentable_id"`
	UserID          *uint         `gorm:"index" json:"user_id"`
	User            *User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`
	GuestName       string        `gorm:"size:255" json:"guest_name,omitempty"`
	GuestEmail      string        `gorm:"size:255" json:"guest_email,omitempty"`
	GuestIP         string        `gorm:"size:45" json:"-"`
	Body            string        `gorm:"type:text;not null" json:"body"`
	ParentID        *uint         `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent          *Comment      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Depth           int           `gorm:"not null;default:0" json:"depth"` // root = 0
	Status          CommentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (c *Comment) IsApproved() bool {
	return c.Status == CommentStatusApproved
}

// AuthorName returns the display name for a comment: the related user's
// name when present, else the guest name.
func (c *Comment) AuthorName() string {
	if c.UserID != nil && c.User != nil && c.User.Name != "" {
		return c.User.Name
	}
	if c.GuestName != "" {
		return c.GuestName
	}
	return "Anonymous"
}

// ScopeApproved restricts a comment query to approved rows.
func ScopeApproved(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", CommentStatusApproved)
}

// ScopeOwner restricts a comment query to one owning entity.
func ScopeOwner(owner Commentable) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("commentable_type = ? AND commentable_id = ?", owner.CommentableType(), owner.CommentableID())
	}
}
