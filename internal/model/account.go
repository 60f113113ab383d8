package model

import (
	"time"

	"github.com/google/uuid"
)

// Account is a tenant: it owns announcements and themes and is addressed
// by embeds exclusively through its opaque public APIKey, never its row id.
type Account struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	APIKey       string     `json:"api_key" db:"api_key"`
	Status       string     `json:"status" db:"status"`
	Plan         string     `json:"plan" db:"plan"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	TrialEndsAt  *time.Time `json:"trial_ends_at" db:"trial_ends_at"`
}

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountFilters struct {
	Status string
	Plan   string
	Search string
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
)
