package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Placement is the visual slot an announcement renders in.
type Placement string

const (
	PlacementModal   Placement = "modal"
	PlacementBanner  Placement = "banner"
	PlacementToast   Placement = "toast"
	PlacementTooltip Placement = "tooltip"
)

// Valid reports whether p is one of the known placements.
func (p Placement) Valid() bool {
	switch p {
	case PlacementModal, PlacementBanner, PlacementToast, PlacementTooltip:
		return true
	}
	return false
}

// Frequency is the suppression rule controlling repeat visibility.
type Frequency string

const (
	FrequencyAlways         Frequency = "always"
	FrequencyOncePerSession Frequency = "once_per_session"
	FrequencyOncePerUser    Frequency = "once_per_user"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyAlways, FrequencyOncePerSession, FrequencyOncePerUser:
		return true
	}
	return false
}

// Button action/type constants
const (
	ButtonTypePrimary   = "primary"
	ButtonTypeSecondary = "secondary"

	ButtonActionClose    = "close"
	ButtonActionRedirect = "redirect"
)

// Button belongs to exactly one announcement; array position is display
// intent, but the widget always renders secondaries before the primary.
type Button struct {
	Label  string `json:"label"`
	Type   string `json:"type"`
	Action string `json:"action"`
	URL    string `json:"url,omitempty"`
}

// ButtonList is stored as a JSONB column.
type ButtonList []Button

func (b ButtonList) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

func (b *ButtonList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	}
	return fmt.Errorf("unsupported button list source type %T", src)
}

// StringList is stored as a JSONB column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("unsupported string list source type %T", src)
}

// Announcement is one piece of content to show on a customer page.
// It is eligible for delivery iff Draft is false and PublishedAt is set.
type Announcement struct {
	Base
	AccountID    uuid.UUID  `json:"account_id" db:"account_id"`
	Title        string     `json:"title" db:"title"`
	Message      string     `json:"message" db:"message"`
	Buttons      ButtonList `json:"buttons" db:"buttons"`
	Placement    Placement  `json:"placement" db:"placement"`
	Frequency    Frequency  `json:"frequency" db:"frequency"`
	Draft        bool       `json:"draft" db:"draft"`
	PublishedAt  *time.Time `json:"published_at" db:"published_at"`
	ThemeID      *uuid.UUID `json:"theme_id" db:"theme_id"`
	TargetRoutes StringList `json:"target_routes" db:"target_routes"`
}

// Eligible reports whether the announcement may be delivered to embeds.
func (a *Announcement) Eligible() bool {
	return !a.Draft && a.PublishedAt != nil && a.DeletedAt == nil
}

type AnnouncementFilters struct {
	AccountID uuid.UUID
	Draft     *bool
	Placement Placement
}

type CreateAnnouncementRequest struct {
	Title        string     `json:"title" binding:"required"`
	Message      string     `json:"message" binding:"required"`
	Buttons      ButtonList `json:"buttons"`
	Placement    Placement  `json:"placement" binding:"required,oneof=modal banner toast tooltip"`
	Frequency    Frequency  `json:"frequency" binding:"required,oneof=always once_per_session once_per_user"`
	ThemeID      *uuid.UUID `json:"theme_id"`
	TargetRoutes StringList `json:"target_routes"`
}

type UpdateAnnouncementRequest struct {
	Title        *string    `json:"title"`
	Message      *string    `json:"message"`
	Buttons      ButtonList `json:"buttons"`
	Placement    *Placement `json:"placement" binding:"omitempty,oneof=modal banner toast tooltip"`
	Frequency    *Frequency `json:"frequency" binding:"omitempty,oneof=always once_per_session once_per_user"`
	ThemeID      *uuid.UUID `json:"theme_id"`
	TargetRoutes StringList `json:"target_routes"`
}
