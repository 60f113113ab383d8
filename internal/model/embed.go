package model

import "github.com/google/uuid"

// EmbedTheme is the public wire shape of a theme inside a config response.
type EmbedTheme struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Config ThemeConfig `json:"config"`
}

// EmbedAnnouncement is the public wire shape of an eligible announcement.
// Theme is an embedded snapshot of the referenced theme's config so the
// widget never needs a second round trip. TargetRoutes is declared on the
// wire for forward compatibility but does not filter yet.
type EmbedAnnouncement struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Message      string       `json:"message"`
	Buttons      ButtonList   `json:"buttons"`
	ThemeID      *uuid.UUID   `json:"themeId,omitempty"`
	Theme        *ThemeConfig `json:"theme,omitempty"`
	Placement    Placement    `json:"placement"`
	Frequency    Frequency    `json:"frequency"`
	TargetRoutes StringList   `json:"targetRoutes"`
}

// EmbedConfig is the config resolver's response: the tenant's currently
// eligible announcements joined with the themes they reference, plus a
// deterministic version token for cache validation.
type EmbedConfig struct {
	AccountID     string              `json:"accountId"`
	WidgetURL     string              `json:"widgetUrl"`
	Themes        []EmbedTheme        `json:"themes"`
	Announcements []EmbedAnnouncement `json:"announcements"`
	Version       string              `json:"version"`
	CacheTTL      int                 `json:"cacheTTL"`
}
