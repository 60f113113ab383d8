package model

import (
	"time"

	"github.com/google/uuid"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// User role constants
const (
	UserRoleOwner  = "owner"
	UserRoleEditor = "editor"
	UserRoleViewer = "viewer"
)

// User represents a dashboard member of an account
type User struct {
	Base
	AccountID    uuid.UUID  `json:"account_id" db:"account_id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	Password     string     `json:"password,omitempty" db:"-"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	Status       string     `json:"status" db:"status"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=owner editor viewer"`
}

// UpdateUserRequest represents user update parameters
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Role   *string `json:"role" binding:"omitempty,oneof=owner editor viewer"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive pending"`
}

type UserFilters struct {
	AccountID  uuid.UUID `json:"account_id"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	SearchTerm string    `json:"search_term"`
}
