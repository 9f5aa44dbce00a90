package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Role defaults to "user".
// PasswordHash is a bcrypt hash — the plaintext is never stored and the hash
// is never serialized into a response.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
