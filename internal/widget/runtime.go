package widget

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/model"
)

// Phase is the runtime lifecycle state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseRendered
	PhaseDestroyed
)

// Options configures a runtime instance. Stores default to fresh in-memory
// stores, which is what the server-side preview wants.
type Options struct {
	// SessionStore backs once_per_session suppression.
	SessionStore Store
	// UserStore backs once_per_user suppression.
	UserStore Store
	Logger    zerolog.Logger
}

// Runtime owns one isolated rendering boundary and the widget state behind
// it. All state is instance-scoped; independent runtimes (live embed,
// dashboard preview) never interfere. Methods called before Initialize are
// dropped with a warning, never a panic.
type Runtime struct {
	opts      Options
	phase     Phase
	cfg       *model.EmbedConfig
	container *Container
	root      *ShadowRoot

	// visible holds the announcements rendered by the last pass; Close
	// marks exactly this set (intersected with the current config) seen.
	visible map[uuid.UUID]model.EmbedAnnouncement
}

func NewRuntime(opts Options) *Runtime {
	if opts.SessionStore == nil {
		opts.SessionStore = NewMemoryStore()
	}
	if opts.UserStore == nil {
		opts.UserStore = NewMemoryStore()
	}
	return &Runtime{opts: opts, visible: make(map[uuid.UUID]model.EmbedAnnouncement)}
}

func (r *Runtime) Phase() Phase {
	return r.phase
}

// HTML returns the markup currently inside the runtime's shadow root, or
// an empty string before Initialize. The dashboard preview reads this.
func (r *Runtime) HTML() string {
	if r.root == nil {
		return ""
	}
	return r.root.HTML()
}

// Config returns the last config snapshot the runtime was given.
func (r *Runtime) Config() *model.EmbedConfig {
	return r.cfg
}

// Initialize attaches the runtime to a container and runs the first render
// pass. Calling it again with an already shadow-rooted container reuses
// the existing boundary and replaces its content.
func (r *Runtime) Initialize(cfg *model.EmbedConfig, container *Container) error {
	if cfg == nil {
		return fmt.Errorf("widget: nil config")
	}
	if container == nil {
		return fmt.Errorf("widget: nil container")
	}

	r.cfg = cfg
	r.container = container
	r.root = container.attachShadow()
	r.phase = PhaseRendered
	r.renderPass(nil)
	return nil
}

// Update replaces the in-memory config and re-renders. Suppression state
// carries over: announcements seen earlier in this page load stay hidden.
func (r *Runtime) Update(cfg *model.EmbedConfig) {
	if !r.active("update") || cfg == nil {
		return
	}
	r.cfg = cfg
	r.renderPass(nil)
}

// Dismiss marks a single announcement seen and removes it from view.
func (r *Runtime) Dismiss(id uuid.UUID) {
	if !r.active("dismiss") {
		return
	}
	if a, ok := r.lookup(id); ok {
		r.markSeen(a)
	}
	r.renderPass(map[uuid.UUID]bool{id: true})
}

// Close marks every currently visible and currently eligible announcement
// seen, then clears them from view. Close means "I saw what's on screen",
// not a per-announcement acknowledgment.
func (r *Runtime) Close() {
	if !r.active("close") {
		return
	}
	exclude := make(map[uuid.UUID]bool, len(r.visible))
	for id := range r.visible {
		exclude[id] = true
		if a, ok := r.lookup(id); ok {
			r.markSeen(a)
		}
	}
	r.renderPass(exclude)
}

// Show re-runs the render pass against the current config. Announcements
// whose frequency never suppresses reappear here even after a Close.
func (r *Runtime) Show() {
	if !r.active("show") {
		return
	}
	r.renderPass(nil)
}

// Redirect resolves a redirect-action button for an announcement and
// returns the URL to open. Navigation and dismissal are independent: a
// redirect never implicitly closes the announcement.
func (r *Runtime) Redirect(id uuid.UUID, label string) (string, bool) {
	if !r.active("redirect") {
		return "", false
	}
	a, ok := r.lookup(id)
	if !ok {
		return "", false
	}
	for _, b := range a.Buttons {
		if b.Action == model.ButtonActionRedirect && b.Label == label && b.URL != "" {
			return b.URL, true
		}
	}
	return "", false
}

// Destroy detaches the container and discards all in-memory state.
func (r *Runtime) Destroy() {
	if r.phase == PhaseUninitialized || r.phase == PhaseDestroyed {
		return
	}
	r.root.setHTML("")
	r.container.detached = true
	r.cfg = nil
	r.visible = make(map[uuid.UUID]model.EmbedAnnouncement)
	r.phase = PhaseDestroyed
}

func (r *Runtime) active(op string) bool {
	if r.phase != PhaseRendered {
		r.opts.Logger.Warn().Str("op", op).Int("phase", int(r.phase)).
			Msg("widget call dropped: runtime not initialized")
		return false
	}
	return true
}

func (r *Runtime) lookup(id uuid.UUID) (model.EmbedAnnouncement, bool) {
	if r.cfg == nil {
		return model.EmbedAnnouncement{}, false
	}
	for _, a := range r.cfg.Announcements {
		if a.ID == id {
			return a, true
		}
	}
	return model.EmbedAnnouncement{}, false
}

func (r *Runtime) markSeen(a model.EmbedAnnouncement) {
	key := seenKeyPrefix + a.ID.String()
	switch a.Frequency {
	case model.FrequencyAlways:
	case model.FrequencyOncePerSession:
		r.opts.SessionStore.MarkSeen(key)
	case model.FrequencyOncePerUser:
		r.opts.UserStore.MarkSeen(key)
	}
}

func (r *Runtime) suppressed(a model.EmbedAnnouncement) bool {
	key := seenKeyPrefix + a.ID.String()
	switch a.Frequency {
	case model.FrequencyOncePerSession:
		return r.opts.SessionStore.Seen(key)
	case model.FrequencyOncePerUser:
		return r.opts.UserStore.Seen(key)
	default:
		return false
	}
}

// renderPass is the single write path for the shadow root: snapshot state,
// compute the full markup, then swap it in atomically. The exclude set
// hides announcements for this pass only (a just-closed always-frequency
// announcement disappears now but returns on the next pass).
func (r *Runtime) renderPass(exclude map[uuid.UUID]bool) {
	visible := make([]model.EmbedAnnouncement, 0, len(r.cfg.Announcements))
	for _, a := range r.cfg.Announcements {
		if exclude[a.ID] || r.suppressed(a) {
			continue
		}
		visible = append(visible, a)
	}

	r.visible = make(map[uuid.UUID]model.EmbedAnnouncement, len(visible))
	for _, a := range visible {
		r.visible[a.ID] = a
	}

	if len(visible) == 0 {
		r.root.setHTML("")
		return
	}

	markup, err := buildMarkup(r.cfg, visible)
	if err != nil {
		r.opts.Logger.Error().Err(err).Msg("widget render failed")
		r.root.setHTML("")
		r.visible = make(map[uuid.UUID]model.EmbedAnnouncement)
		return
	}
	r.root.setHTML(markup)
}
