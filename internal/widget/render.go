package widget

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/heraldhq/herald-api/internal/model"
)

// baseCSS carries the built-in default values; theme custom properties
// only override these. No network fonts, no resets leaking to the host.
const baseCSS = `
.herald-widget { all: initial; font-family: var(--hw-type-font-family, system-ui, sans-serif); }
.herald-widget .hw-banner-region { position: fixed; top: 0; left: 0; right: 0; z-index: 2147483000; }
.herald-widget .hw-banner { background: var(--hw-modal-background, #1f2937); color: var(--hw-modal-text-color, #fff); padding: var(--hw-space-md, 12px) 16px; }
.herald-widget .hw-modal-backdrop { position: fixed; inset: 0; background: rgba(15, 23, 42, 0.5); z-index: 2147483100; display: flex; align-items: center; justify-content: center; }
.herald-widget .hw-modal { background: var(--hw-modal-background, #fff); color: var(--hw-modal-text-color, #111827); border-radius: var(--hw-modal-border-radius, 8px); padding: 24px; max-width: 480px; width: 90%; }
.herald-widget .hw-toast-region { position: fixed; bottom: 16px; right: 16px; z-index: 2147483050; }
.herald-widget .hw-toast { background: var(--hw-modal-background, #111827); color: var(--hw-modal-text-color, #fff); border-radius: var(--hw-modal-border-radius, 6px); padding: 12px 16px; margin-top: 8px; max-width: 360px; }
.herald-widget .hw-tooltip-region { position: fixed; bottom: 16px; left: 16px; z-index: 2147483050; }
.herald-widget .hw-tooltip { background: var(--hw-modal-background, #fff); color: var(--hw-modal-text-color, #111827); border: 1px solid #e5e7eb; border-radius: var(--hw-modal-border-radius, 6px); padding: 10px 14px; margin-top: 8px; max-width: 320px; }
.herald-widget .hw-title { font-size: var(--hw-type-title-size, 16px); font-weight: 600; margin: 0 0 8px; }
.herald-widget .hw-message { font-size: var(--hw-type-body-size, 14px); line-height: 1.5; }
.herald-widget .hw-actions { margin-top: 16px; display: flex; justify-content: flex-end; gap: 8px; }
.herald-widget .hw-btn { cursor: pointer; border: none; border-radius: var(--hw-btn-border-radius, 6px); padding: 8px 14px; font-size: 14px; }
.herald-widget .hw-btn-primary { background: var(--hw-btn-background, #2563eb); color: var(--hw-btn-text-color, #fff); }
.herald-widget .hw-btn-secondary { background: var(--hw-btn2-background, #e5e7eb); color: var(--hw-btn2-text-color, #111827); }
`

var widgetTmpl = template.Must(template.New("widget").Parse(`<div class="{{.RootClass}}">
<style>{{.Style}}</style>
{{- if .Banners}}
<div class="hw-banner-region">
{{- range .Banners}}{{template "announcement" .}}{{end}}
</div>
{{- end}}
{{- range .Modals}}
<div class="hw-modal-backdrop">{{template "announcement" .}}</div>
{{- end}}
{{- if .Toasts}}
<div class="hw-toast-region">
{{- range .Toasts}}{{template "announcement" .}}{{end}}
</div>
{{- end}}
{{- if .Tooltips}}
<div class="hw-tooltip-region">
{{- range .Tooltips}}{{template "announcement" .}}{{end}}
</div>
{{- end}}
</div>
{{- define "announcement"}}
<div class="hw-announcement hw-{{.Kind}}" id="hw-a-{{.ID}}" data-hw-id="{{.ID}}">
<h2 class="hw-title">{{.Title}}</h2>
<div class="hw-message">{{.Message}}</div>
{{- if .Buttons}}
<div class="hw-actions">
{{- range .Buttons}}
<button class="hw-btn hw-btn-{{.Kind}}" data-hw-action="{{.Action}}"{{if .URL}} data-hw-url="{{.URL}}"{{end}}>{{.Label}}</button>
{{- end}}
</div>
{{- end}}
</div>
{{- end}}`))

type renderData struct {
	RootClass string
	Style     template.CSS
	Banners   []announcementView
	Modals    []announcementView
	Toasts    []announcementView
	Tooltips  []announcementView
}

type announcementView struct {
	ID      string
	Kind    string
	Title   string
	Message template.HTML
	Buttons []buttonView
}

type buttonView struct {
	Label  string
	Kind   string
	Action string
	URL    string
}

// buildMarkup computes the complete widget markup for one render pass.
func buildMarkup(cfg *model.EmbedConfig, visible []model.EmbedAnnouncement) (string, error) {
	data := renderData{RootClass: RootClass}

	var css strings.Builder
	css.WriteString(baseCSS)

	for _, a := range visible {
		view := announcementView{
			ID:      a.ID.String(),
			Kind:    string(a.Placement),
			Title:   a.Title,
			Message: template.HTML(a.Message), // sanitized upstream by the authoring surface
			Buttons: orderButtons(a.Buttons),
		}

		if theme, ok := resolveTheme(a, cfg); ok {
			css.WriteString(applyThemeTo(fmt.Sprintf(".%s #hw-a-%s", RootClass, view.ID), theme))
		}

		switch a.Placement {
		case model.PlacementBanner:
			data.Banners = append(data.Banners, view)
		case model.PlacementModal:
			data.Modals = append(data.Modals, view)
		case model.PlacementToast:
			data.Toasts = append(data.Toasts, view)
		case model.PlacementTooltip:
			data.Tooltips = append(data.Tooltips, view)
		default:
			return "", fmt.Errorf("unknown placement %q", a.Placement)
		}
	}

	data.Style = template.CSS(css.String())

	var b strings.Builder
	if err := widgetTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// resolveTheme walks the fallback chain: explicit theme id, then the first
// theme in the config if any exists, then the built-in defaults (no
// overrides emitted at all).
func resolveTheme(a model.EmbedAnnouncement, cfg *model.EmbedConfig) (model.ThemeConfig, bool) {
	if a.ThemeID != nil {
		for _, t := range cfg.Themes {
			if t.ID == *a.ThemeID {
				return t.Config, true
			}
		}
	}
	if len(cfg.Themes) > 0 {
		return cfg.Themes[0].Config, true
	}
	return model.ThemeConfig{}, false
}

// orderButtons renders all secondary buttons before primaries, primary
// rightmost. The stored order inside each group is preserved.
func orderButtons(buttons model.ButtonList) []buttonView {
	var secondary, primary []buttonView
	for _, b := range buttons {
		v := buttonView{Label: b.Label, Kind: b.Type, Action: b.Action, URL: b.URL}
		if v.Kind != model.ButtonTypePrimary {
			v.Kind = model.ButtonTypeSecondary
			secondary = append(secondary, v)
			continue
		}
		primary = append(primary, v)
	}
	return append(secondary, primary...)
}
