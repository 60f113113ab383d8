package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the auth middleware.
const (
	ContextAccountID = "account_id"
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
)

// AccountID returns the authenticated tenant from the request context.
func AccountID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(ContextAccountID)
	if !exists {
		return uuid.Nil, fmt.Errorf("no account in context")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid account in context")
	}
	return id, nil
}

// UserID returns the authenticated user from the request context.
func UserID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, fmt.Errorf("no user in context")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid user in context")
	}
	return id, nil
}

// Role returns the authenticated user's role, or empty.
func Role(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}
