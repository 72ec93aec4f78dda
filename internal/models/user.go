package models

import (
	"time"
)

// User mirrors the host application's users table. Authentication lives
// outside this module; we only read the columns needed to display and
// relate comment authors.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
