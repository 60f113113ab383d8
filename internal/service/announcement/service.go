package announcement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository"
	"github.com/heraldhq/herald-api/internal/repository/postgres"
	"github.com/heraldhq/herald-api/internal/widget"
)

type AnnouncementServicer interface {
	Create(ctx context.Context, accountID uuid.UUID, req *model.CreateAnnouncementRequest) (*model.Announcement, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*model.Announcement, error)
	Update(ctx context.Context, accountID, id uuid.UUID, req *model.UpdateAnnouncementRequest) (*model.Announcement, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, filters *model.AnnouncementFilters) ([]*model.Announcement, error)
	Publish(ctx context.Context, accountID, id uuid.UUID) (*model.Announcement, error)
	Unpublish(ctx context.Context, accountID, id uuid.UUID) (*model.Announcement, error)
	Preview(ctx context.Context, accountID, id uuid.UUID) (string, error)
}

type Service struct {
	announcementRepo repository.AnnouncementRepository
	themeRepo        repository.ThemeRepository
	accountRepo      repository.AccountRepository
	outboxRepo       repository.OutboxRepository
	logger           zerolog.Logger
}

func NewService(
	announcementRepo repository.AnnouncementRepository,
	themeRepo repository.ThemeRepository,
	accountRepo repository.AccountRepository,
	outboxRepo repository.OutboxRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		announcementRepo: announcementRepo,
		themeRepo:        themeRepo,
		accountRepo:      accountRepo,
		outboxRepo:       outboxRepo,
		logger:           logger,
	}
}

// Create stores a new announcement as a draft. Nothing reaches embeds
// until an explicit publish.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req *model.CreateAnnouncementRequest) (*model.Announcement, error) {
	if err := validateContent(req.Title, req.Message, req.Placement, req.Frequency, req.Buttons); err != nil {
		return nil, err
	}
	if err := s.checkThemeOwnership(ctx, accountID, req.ThemeID); err != nil {
		return nil, err
	}

	a := &model.Announcement{
		AccountID:    accountID,
		Title:        req.Title,
		Message:      req.Message,
		Buttons:      req.Buttons,
		Placement:    req.Placement,
		Frequency:    req.Frequency,
		Draft:        true,
		ThemeID:      req.ThemeID,
		TargetRoutes: req.TargetRoutes,
	}

	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*model.Announcement, error) {
	return s.getOwned(ctx, accountID, id)
}

func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req *model.UpdateAnnouncementRequest) (*model.Announcement, error) {
	a, err := s.getOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Message != nil {
		a.Message = *req.Message
	}
	if req.Buttons != nil {
		a.Buttons = req.Buttons
	}
	if req.Placement != nil {
		a.Placement = *req.Placement
	}
	if req.Frequency != nil {
		a.Frequency = *req.Frequency
	}
	if req.ThemeID != nil {
		if err := s.checkThemeOwnership(ctx, accountID, req.ThemeID); err != nil {
			return nil, err
		}
		a.ThemeID = req.ThemeID
	}
	if req.TargetRoutes != nil {
		a.TargetRoutes = req.TargetRoutes
	}

	if err := validateContent(a.Title, a.Message, a.Placement, a.Frequency, a.Buttons); err != nil {
		return nil, err
	}

	if err := s.announcementRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}

	// Edits to a live announcement must reach embeds on their next poll.
	if a.Eligible() {
		s.emitEvent(ctx, model.EventAnnouncementUpdated, accountID)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	a, err := s.getOwned(ctx, accountID, id)
	if err != nil {
		return err
	}

	if err := s.announcementRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}

	if a.Eligible() {
		s.emitEvent(ctx, model.EventAnnouncementDeleted, accountID)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.AnnouncementFilters) ([]*model.Announcement, error) {
	return s.announcementRepo.List(ctx, filters)
}

// Publish flips the announcement live. The first publish stamps
// published_at; republishing after an unpublish keeps the original stamp.
func (s *Service) Publish(ctx context.Context, accountID, id uuid.UUID) (*model.Announcement, error) {
	a, err := s.getOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	var publishedAt *time.Time
	if a.PublishedAt == nil {
		now := time.Now()
		publishedAt = &now
	}

	if err := s.announcementRepo.SetPublished(ctx, id, false, publishedAt); err != nil {
		return nil, fmt.Errorf("failed to publish announcement: %w", err)
	}

	a.Draft = false
	if publishedAt != nil {
		a.PublishedAt = publishedAt
	}

	s.emitEvent(ctx, model.EventAnnouncementPublished, accountID)
	return a, nil
}

// Unpublish reverts to draft. published_at is kept so republishing
// preserves delivery order.
func (s *Service) Unpublish(ctx context.Context, accountID, id uuid.UUID) (*model.Announcement, error) {
	a, err := s.getOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if err := s.announcementRepo.SetPublished(ctx, id, true, nil); err != nil {
		return nil, fmt.Errorf("failed to unpublish announcement: %w", err)
	}

	a.Draft = true
	s.emitEvent(ctx, model.EventAnnouncementUnpublished, accountID)
	return a, nil
}

// Preview renders the announcement server-side exactly the way the embed
// widget renders it, drafts included. Frequency suppression does not
// apply; a preview always shows the content.
func (s *Service) Preview(ctx context.Context, accountID, id uuid.UUID) (string, error) {
	a, err := s.getOwned(ctx, accountID, id)
	if err != nil {
		return "", err
	}

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

	cfg := &model.EmbedConfig{Announcements: []model.EmbedAnnouncement{ea}}
	if a.ThemeID != nil {
		theme, err := s.themeRepo.Get(ctx, *a.ThemeID)
		if err != nil {
			return "", fmt.Errorf("failed to load theme: %w", err)
		}
		snapshot := theme.Config
		cfg.Announcements[0].Theme = &snapshot
		cfg.Themes = []model.EmbedTheme{{ID: theme.ID, Name: theme.Name, Config: theme.Config}}
	}

	rt := widget.NewRuntime(widget.Options{Logger: s.logger})
	if err := rt.Initialize(cfg, widget.NewContainer()); err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}
	return rt.HTML(), nil
}

func (s *Service) getOwned(ctx context.Context, accountID, id uuid.UUID) (*model.Announcement, error) {
	a, err := s.announcementRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	if a.AccountID != accountID {
		// Cross-tenant ids are indistinguishable from missing ones.
		return nil, fmt.Errorf("failed to get announcement: %w", postgres.ErrNotFound)
	}
	return a, nil
}

func (s *Service) checkThemeOwnership(ctx context.Context, accountID uuid.UUID, themeID *uuid.UUID) error {
	if themeID == nil {
		return nil
	}
	theme, err := s.themeRepo.Get(ctx, *themeID)
	if err != nil {
		return fmt.Errorf("theme not found: %w", err)
	}
	if theme.AccountID != accountID {
		return fmt.Errorf("theme not found")
	}
	return nil
}

func (s *Service) emitEvent(ctx context.Context, eventType string, accountID uuid.UUID) {
	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to load account for outbox event")
		return
	}

	payload, err := json.Marshal(model.ConfigChangedEvent{AccountID: account.ID, APIKey: account.APIKey})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal outbox payload")
		return
	}

	event := &model.OutboxEvent{EventType: eventType, Payload: payload}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to create outbox event")
	}
}

func validateContent(title, message string, placement model.Placement, frequency model.Frequency, buttons model.ButtonList) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if message == "" {
		return fmt.Errorf("message is required")
	}
	if !placement.Valid() {
		return fmt.Errorf("invalid placement: %s", placement)
	}
	if !frequency.Valid() {
		return fmt.Errorf("invalid frequency: %s", frequency)
	}

	primaries := 0
	for _, b := range buttons {
		if b.Label == "" {
			return fmt.Errorf("button label is required")
		}
		switch b.Type {
		case model.ButtonTypePrimary:
			primaries++
		case model.ButtonTypeSecondary:
		default:
			return fmt.Errorf("invalid button type: %s", b.Type)
		}
		switch b.Action {
		case model.ButtonActionClose:
		case model.ButtonActionRedirect:
			if b.URL == "" {
				return fmt.Errorf("redirect button requires a url")
			}
		default:
			return fmt.Errorf("invalid button action: %s", b.Action)
		}
	}
	if primaries > 1 {
		return fmt.Errorf("at most one primary button is allowed")
	}
	return nil
}
