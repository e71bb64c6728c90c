package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an admin panel account. Admin accounts are provisioned out
// of band; the API only authenticates them.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
