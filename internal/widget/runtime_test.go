package widget

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/model"
)

func announcement(placement model.Placement, freq model.Frequency, buttons ...model.Button) model.EmbedAnnouncement {
	return model.EmbedAnnouncement{
		ID:        uuid.New(),
		Title:     "Release notes",
		Message:   "<p>We shipped something.</p>",
		Buttons:   buttons,
		Placement: placement,
		Frequency: freq,
	}
}

func config(announcements ...model.EmbedAnnouncement) *model.EmbedConfig {
	return &model.EmbedConfig{
		AccountID:     "pk_test",
		Announcements: announcements,
		Version:       "v1",
		CacheTTL:      300,
	}
}

func TestInitializeRendersEligibleAnnouncements(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()
	a := announcement(model.PlacementModal, model.FrequencyAlways)

	require.NoError(t, rt.Initialize(config(a), c))

	html := c.attachShadow().HTML()
	assert.Contains(t, html, "hw-modal-backdrop")
	assert.Contains(t, html, a.ID.String())
	assert.Contains(t, html, "Release notes")
	assert.Contains(t, html, "<p>We shipped something.</p>")
}

func TestEmptyConfigWritesNoMarkup(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()

	require.NoError(t, rt.Initialize(config(), c))

	assert.Empty(t, c.attachShadow().HTML())
}

func TestIdempotentReinitialize(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()
	a := announcement(model.PlacementBanner, model.FrequencyAlways)

	require.NoError(t, rt.Initialize(config(a), c))
	first := c.attachShadow()
	firstCount := strings.Count(first.HTML(), a.ID.String())

	require.NoError(t, rt.Initialize(config(a), c))
	second := c.attachShadow()

	assert.Same(t, first, second, "re-initialize must reuse the shadow root")
	assert.Equal(t, firstCount, strings.Count(second.HTML(), a.ID.String()), "markup must not duplicate")
}

func TestOncePerUserSuppressionSurvivesRenderPasses(t *testing.T) {
	user := NewMemoryStore()
	rt := NewRuntime(Options{UserStore: user})
	c := NewContainer()
	a := announcement(model.PlacementToast, model.FrequencyOncePerUser)

	require.NoError(t, rt.Initialize(config(a), c))
	assert.Contains(t, c.attachShadow().HTML(), a.ID.String())

	rt.Close()
	assert.Empty(t, c.attachShadow().HTML())

	// Re-running the pass without resetting storage must not show it again.
	rt.Show()
	assert.Empty(t, c.attachShadow().HTML())

	// A fresh durable store simulates a new browser: it shows again.
	fresh := NewRuntime(Options{UserStore: NewMemoryStore()})
	c2 := NewContainer()
	require.NoError(t, fresh.Initialize(config(a), c2))
	assert.Contains(t, c2.attachShadow().HTML(), a.ID.String())
}

func TestOncePerSessionSuppression(t *testing.T) {
	session := NewMemoryStore()
	rt := NewRuntime(Options{SessionStore: session})
	c := NewContainer()
	a := announcement(model.PlacementBanner, model.FrequencyOncePerSession)

	require.NoError(t, rt.Initialize(config(a), c))
	rt.Dismiss(a.ID)

	assert.Empty(t, c.attachShadow().HTML())
	rt.Show()
	assert.Empty(t, c.attachShadow().HTML())
	assert.True(t, session.Seen("herald:seen:"+a.ID.String()))
}

func TestCloseMarksAllVisibleSeen(t *testing.T) {
	session := NewMemoryStore()
	rt := NewRuntime(Options{SessionStore: session})
	c := NewContainer()
	banner := announcement(model.PlacementBanner, model.FrequencyOncePerSession)
	modal := announcement(model.PlacementModal, model.FrequencyOncePerSession)

	require.NoError(t, rt.Initialize(config(banner, modal), c))
	rt.Close()

	assert.True(t, session.Seen("herald:seen:"+banner.ID.String()))
	assert.True(t, session.Seen("herald:seen:"+modal.ID.String()))
	assert.Empty(t, c.attachShadow().HTML())
}

func TestAlwaysFrequencyReappearsAfterClose(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()
	a := announcement(model.PlacementModal, model.FrequencyAlways,
		model.Button{Label: "Got it", Type: model.ButtonTypePrimary, Action: model.ButtonActionClose})

	require.NoError(t, rt.Initialize(config(a), c))
	assert.Contains(t, c.attachShadow().HTML(), "hw-modal-backdrop")

	rt.Close()
	assert.Empty(t, c.attachShadow().HTML(), "close must remove the modal markup")

	// A recheck render pass shows it again: always never suppresses.
	rt.Show()
	assert.Contains(t, c.attachShadow().HTML(), "hw-modal-backdrop")
}

func TestSecondaryButtonsRenderBeforePrimary(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()
	a := announcement(model.PlacementModal, model.FrequencyAlways,
		model.Button{Label: "Learn more", Type: model.ButtonTypePrimary, Action: model.ButtonActionRedirect, URL: "https://example.com"},
		model.Button{Label: "Not now", Type: model.ButtonTypeSecondary, Action: model.ButtonActionClose},
	)

	require.NoError(t, rt.Initialize(config(a), c))

	html := c.attachShadow().HTML()
	assert.Less(t, strings.Index(html, "Not now"), strings.Index(html, "Learn more"),
		"secondary buttons render before the primary regardless of input order")
	assert.Contains(t, html, `data-hw-action="redirect"`)
	assert.Contains(t, html, `data-hw-url="https://example.com"`)
}

func TestThemeFallbackChain(t *testing.T) {
	missing := uuid.New()
	a := announcement(model.PlacementModal, model.FrequencyAlways)
	a.ThemeID = &missing

	// Unknown theme id with a non-empty list falls back to the first theme.
	cfg := config(a)
	cfg.Themes = []model.EmbedTheme{{
		ID:   uuid.New(),
		Name: "Default",
		Config: model.ThemeConfig{
			Modal: model.StyleTokens{"background": "#123456"},
		},
	}}

	rt := NewRuntime(Options{})
	c := NewContainer()
	require.NoError(t, rt.Initialize(cfg, c))
	assert.Contains(t, c.attachShadow().HTML(), "--hw-modal-background: #123456;")

	// Empty theme list falls back to built-ins: no overrides at all.
	rt2 := NewRuntime(Options{})
	c2 := NewContainer()
	require.NoError(t, rt2.Initialize(config(a), c2))
	assert.NotContains(t, c2.attachShadow().HTML(), "--hw-modal-background:")
}

func TestUpdateKeepsSuppression(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()
	seen := announcement(model.PlacementToast, model.FrequencyOncePerSession)
	fresh := announcement(model.PlacementToast, model.FrequencyOncePerSession)

	require.NoError(t, rt.Initialize(config(seen), c))
	rt.Dismiss(seen.ID)

	rt.Update(config(seen, fresh))

	html := c.attachShadow().HTML()
	assert.NotContains(t, html, seen.ID.String())
	assert.Contains(t, html, fresh.ID.String())
}

func TestRedirectDoesNotDismiss(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()
	a := announcement(model.PlacementModal, model.FrequencyOncePerSession,
		model.Button{Label: "Open", Type: model.ButtonTypePrimary, Action: model.ButtonActionRedirect, URL: "https://example.com/x"})

	require.NoError(t, rt.Initialize(config(a), c))

	url, ok := rt.Redirect(a.ID, "Open")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/x", url)
	assert.Contains(t, c.attachShadow().HTML(), a.ID.String(), "redirect must not close the announcement")
}

func TestCallsBeforeInitializeAreDropped(t *testing.T) {
	rt := NewRuntime(Options{})

	assert.NotPanics(t, func() {
		rt.Update(config())
		rt.Dismiss(uuid.New())
		rt.Close()
		rt.Show()
		rt.Destroy()
	})
	assert.Equal(t, PhaseUninitialized, rt.Phase())
}

func TestDestroyDiscardsState(t *testing.T) {
	rt := NewRuntime(Options{})
	c := NewContainer()
	a := announcement(model.PlacementBanner, model.FrequencyAlways)

	require.NoError(t, rt.Initialize(config(a), c))
	rt.Destroy()

	assert.Equal(t, PhaseDestroyed, rt.Phase())
	assert.True(t, c.Detached())
	assert.Empty(t, c.attachShadow().HTML())
	assert.Nil(t, rt.Config())
}
