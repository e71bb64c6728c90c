// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkerRole represents the marketplace role of a user account.
type WorkerRole string

const (
	RoleBuddyRunner WorkerRole = "buddyrunner"
	RoleBuddyCaller WorkerRole = "buddycaller"
)

// Worker represents a BuddyRunner who fulfills errands and commissions and
// earns periodic payouts. Read-only input to the settlement engine.
type Worker struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Role          WorkerRole
	AccountLocked bool // set by the overdue-settlement restriction
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
