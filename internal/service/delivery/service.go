package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository"
	"github.com/heraldhq/herald-api/internal/repository/postgres"
	apperrors "github.com/heraldhq/herald-api/pkg/errors"
	"github.com/heraldhq/herald-api/pkg/metrics"
)

// Service is the config resolver: it turns an opaque tenant key plus page
// context into the tenant's currently eligible announcements joined with
// their themes, fronted by an in-process cache with the same TTL the
// response advertises to shared caches.
type Service struct {
	accounts      repository.AccountRepository
	announcements repository.AnnouncementRepository
	themes        repository.ThemeRepository
	cache         *gocache.Cache
	cfg           config.EmbedConfig
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

func NewService(
	accounts repository.AccountRepository,
	announcements repository.AnnouncementRepository,
	themes repository.ThemeRepository,
	cfg config.EmbedConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	ttl := cfg.CacheTTL()
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		accounts:      accounts,
		announcements: announcements,
		themes:        themes,
		cache:         gocache.New(ttl, 2*ttl),
		cfg:           cfg,
		metrics:       m,
		logger:        logger,
	}
}

// Resolve returns the embed config for one tenant. pageURL and pagePath
// are accepted for forward compatibility; route targeting is declared in
// the wire format but does not filter yet.
func (s *Service) Resolve(ctx context.Context, tenantKey, pageURL, pagePath string) (*model.EmbedConfig, error) {
	if s.metrics != nil {
		timer := prometheus.NewTimer(s.metrics.ConfigResolveLatency)
		defer timer.ObserveDuration()
	}

	if tenantKey == "" {
		s.count("bad_request")
		return nil, apperrors.BadRequest("account_id is required", nil)
	}

	if cached, found := s.cache.Get(tenantKey); found {
		s.countCache("hit")
		s.count("ok")
		return cached.(*model.EmbedConfig), nil
	}
	s.countCache("miss")

	account, err := s.lookupAccount(ctx, tenantKey)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			s.count("not_found")
			return nil, apperrors.NotFound("account", err)
		}
		s.count("error")
		return nil, apperrors.Internal(fmt.Errorf("account lookup: %w", err))
	}

	cfg, err := s.build(ctx, account)
	if err != nil {
		s.count("error")
		return nil, apperrors.Internal(err)
	}

	if len(cfg.Announcements) == 0 && s.metrics != nil {
		s.metrics.ConfigEmptyResults.Inc()
	}

	s.cache.Set(tenantKey, cfg, gocache.DefaultExpiration)
	s.count("ok")
	return cfg, nil
}

// Invalidate drops any cached config for the tenant. Called when a change
// event for the tenant arrives over the broker.
func (s *Service) Invalidate(keys ...string) {
	for _, k := range keys {
		if k != "" {
			s.cache.Delete(k)
		}
	}
}

// lookupAccount tries the public API key first; a raw account id is the
// secondary path used by the dashboard's own preview, never by embeds.
func (s *Service) lookupAccount(ctx context.Context, tenantKey string) (*model.Account, error) {
	account, err := s.accounts.GetByAPIKey(ctx, tenantKey)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, postgres.ErrNotFound) {
		return nil, err
	}
	id, parseErr := uuid.Parse(tenantKey)
	if parseErr != nil {
		return nil, err
	}
	return s.accounts.Get(ctx, id)
}

func (s *Service) build(ctx context.Context, account *model.Account) (*model.EmbedConfig, error) {
	eligible, err := s.announcements.ListEligible(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list eligible announcements: %w", err)
	}

	// Only themes referenced by the eligible set go on the wire; a
	// tenant's full theme library is not public.
	themeIDs := make([]uuid.UUID, 0, len(eligible))
	seen := make(map[uuid.UUID]bool)
	for _, a := range eligible {
		if a.ThemeID != nil && !seen[*a.ThemeID] {
			seen[*a.ThemeID] = true
			themeIDs = append(themeIDs, *a.ThemeID)
		}
	}

	themes, err := s.themes.GetByIDs(ctx, themeIDs)
	if err != nil {
		return nil, fmt.Errorf("load referenced themes: %w", err)
	}
	themesByID := make(map[uuid.UUID]*model.Theme, len(themes))
	for _, t := range themes {
		themesByID[t.ID] = t
	}

	cfg := &model.EmbedConfig{
		AccountID:     account.APIKey,
		WidgetURL:     s.cfg.PublicBaseURL + "/embed/widget.js",
		Themes:        make([]model.EmbedTheme, 0, len(themes)),
		Announcements: make([]model.EmbedAnnouncement, 0, len(eligible)),
		Version:       computeVersion(eligible, themes),
		CacheTTL:      s.cfg.CacheTTLSeconds,
	}

	// Wire theme order follows first reference, so output is stable for
	// identical data.
	for _, id := range themeIDs {
		if t, ok := themesByID[id]; ok {
			cfg.Themes = append(cfg.Themes, model.EmbedTheme{ID: t.ID, Name: t.Name, Config: t.Config})
		}
	}

	for _, a := range eligible {
		ea := model.EmbedAnnouncement{
			ID:           a.ID,
			Title:        a.Title,
			Message:      a.Message,
			Buttons:      a.Buttons,
			ThemeID:      a.ThemeID,
			Placement:    a.Placement,
			Frequency:    a.Frequency,
			TargetRoutes: a.TargetRoutes,
		}
		if ea.TargetRoutes == nil {
			ea.TargetRoutes = model.StringList{}
		}
		if a.ThemeID != nil {
			if t, ok := themesByID[*a.ThemeID]; ok {
				snapshot := t.Config
				ea.Theme = &snapshot
			}
		}
		cfg.Announcements = append(cfg.Announcements, ea)
	}

	return cfg, nil
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.ConfigResolves.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) countCache(result string) {
	if s.metrics != nil {
		s.metrics.ConfigResolveCache.WithLabelValues(result).Inc()
	}
}
