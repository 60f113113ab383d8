package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Event types published through the outbox. The API process listens for
// these to invalidate cached config responses.
const (
	EventAnnouncementPublished   = "announcement.published"
	EventAnnouncementUnpublished = "announcement.unpublished"
	EventAnnouncementUpdated     = "announcement.updated"
	EventAnnouncementDeleted     = "announcement.deleted"
	EventThemeUpdated            = "theme.updated"
	EventThemeDeleted            = "theme.deleted"
	EventAccountCreated          = "account.created"
)

// ConfigChangedEvent is the payload for all announcement/theme change
// events; consumers only need to know which tenant's config went stale.
type ConfigChangedEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	APIKey    string    `json:"api_key"`
}

type OutboxEvent struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	EventType    string            `db:"event_type" json:"event_type"`
	Payload      json.RawMessage   `db:"payload" json:"payload"`
	Headers      map[string]string `json:"headers" db:"headers"`
	Status       string            `db:"status" json:"status"`
	ErrorMessage *string           `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time        `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
	RetryCount   int               `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time        `db:"retry_at" json:"retry_at,omitempty"`
}
