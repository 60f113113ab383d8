package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StyleTokens is one group of style tokens, e.g. {"background": "#fff"}.
type StyleTokens map[string]string

// ThemeConfig bundles style tokens grouped by target. The modal/button/
// secondaryButton groups are the current shape; colors/typography/spacing
// are the legacy flat shape kept so themes created before the schema
// change still render without migration. Both may be populated at once.
type ThemeConfig struct {
	Modal           StyleTokens `json:"modal,omitempty"`
	Button          StyleTokens `json:"button,omitempty"`
	SecondaryButton StyleTokens `json:"secondaryButton,omitempty"`

	Colors     StyleTokens `json:"colors,omitempty"`
	Typography StyleTokens `json:"typography,omitempty"`
	Spacing    StyleTokens `json:"spacing,omitempty"`
}

// Empty reports whether no token group carries any value.
func (c ThemeConfig) Empty() bool {
	return len(c.Modal) == 0 && len(c.Button) == 0 && len(c.SecondaryButton) == 0 &&
		len(c.Colors) == 0 && len(c.Typography) == 0 && len(c.Spacing) == 0
}

func (c ThemeConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ThemeConfig) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = ThemeConfig{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return fmt.Errorf("unsupported theme config source type %T", src)
}

// Theme is a named bundle of style tokens owned by an account. Deleting a
// theme still referenced by an announcement is rejected, not cascaded.
type Theme struct {
	Base
	AccountID uuid.UUID   `json:"account_id" db:"account_id"`
	Name      string      `json:"name" db:"name"`
	IsDefault bool        `json:"is_default" db:"is_default"`
	Config    ThemeConfig `json:"config" db:"config"`
}

type CreateThemeRequest struct {
	Name   string      `json:"name" binding:"required"`
	Config ThemeConfig `json:"config"`
}

type UpdateThemeRequest struct {
	Name   *string      `json:"name"`
	Config *ThemeConfig `json:"config"`
}
