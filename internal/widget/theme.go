package widget

import (
	"fmt"
	"sort"
	"strings"

	"github.com/heraldhq/herald-api/internal/model"
)

// RootClass scopes all widget styles and custom properties.
const RootClass = "herald-widget"

// tokenGroup maps one theme token group to a custom-property prefix.
type tokenGroup struct {
	prefix string
	tokens model.StyleTokens
}

// ApplyTheme maps a theme's token groups onto CSS custom properties scoped
// to the widget root class. The modern groups and the legacy flat groups
// may both contribute; modern groups win only because they are emitted as
// part of a later, more specific rule set, not through override logic.
// An empty config yields no output and the built-in defaults apply.
func ApplyTheme(cfg model.ThemeConfig) string {
	return applyThemeTo("."+RootClass, cfg)
}

func applyThemeTo(selector string, cfg model.ThemeConfig) string {
	if cfg.Empty() {
		return ""
	}

	var b strings.Builder

	// Legacy path first so the modern groups land in the later rule.
	writeRule(&b, selector, []tokenGroup{
		{"--hw-color", cfg.Colors},
		{"--hw-type", cfg.Typography},
		{"--hw-space", cfg.Spacing},
	})
	writeRule(&b, selector, []tokenGroup{
		{"--hw-modal", cfg.Modal},
		{"--hw-btn", cfg.Button},
		{"--hw-btn2", cfg.SecondaryButton},
	})

	return b.String()
}

func writeRule(b *strings.Builder, selector string, groups []tokenGroup) {
	var props []string
	for _, g := range groups {
		keys := make([]string, 0, len(g.tokens))
		for k := range g.tokens {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			props = append(props, fmt.Sprintf("%s-%s: %s;", g.prefix, cssName(k), g.tokens[k]))
		}
	}
	if len(props) == 0 {
		return
	}
	b.WriteString(selector)
	b.WriteString(" { ")
	b.WriteString(strings.Join(props, " "))
	b.WriteString(" }\n")
}

// cssName converts a camelCase token name to its kebab-case property form.
func cssName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
