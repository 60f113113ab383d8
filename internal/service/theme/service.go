package theme

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository"
	"github.com/heraldhq/herald-api/internal/repository/postgres"
)

// ErrThemeInUse is returned when deleting a theme that announcements
// still reference. Callers must retarget or delete those first.
var ErrThemeInUse = fmt.Errorf("theme is referenced by announcements")

type ThemeServicer interface {
	Create(ctx context.Context, accountID uuid.UUID, req *model.CreateThemeRequest) (*model.Theme, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*model.Theme, error)
	Update(ctx context.Context, accountID, id uuid.UUID, req *model.UpdateThemeRequest) (*model.Theme, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]*model.Theme, error)
}

type Service struct {
	themeRepo        repository.ThemeRepository
	announcementRepo repository.AnnouncementRepository
	accountRepo      repository.AccountRepository
	outboxRepo       repository.OutboxRepository
	logger           zerolog.Logger
}

func NewService(
	themeRepo repository.ThemeRepository,
	announcementRepo repository.AnnouncementRepository,
	accountRepo repository.AccountRepository,
	outboxRepo repository.OutboxRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		themeRepo:        themeRepo,
		announcementRepo: announcementRepo,
		accountRepo:      accountRepo,
		outboxRepo:       outboxRepo,
		logger:           logger,
	}
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req *model.CreateThemeRequest) (*model.Theme, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("theme name is required")
	}

	theme := &model.Theme{
		AccountID: accountID,
		Name:      req.Name,
		Config:    req.Config,
	}

	if err := s.themeRepo.Create(ctx, theme); err != nil {
		return nil, fmt.Errorf("failed to create theme: %w", err)
	}
	return theme, nil
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*model.Theme, error) {
	return s.getOwned(ctx, accountID, id)
}

func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req *model.UpdateThemeRequest) (*model.Theme, error) {
	theme, err := s.getOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("theme name is required")
		}
		theme.Name = *req.Name
	}
	if req.Config != nil {
		theme.Config = *req.Config
	}

	if err := s.themeRepo.Update(ctx, theme); err != nil {
		return nil, fmt.Errorf("failed to update theme: %w", err)
	}

	// A restyle changes every published announcement using the theme.
	s.emitEvent(ctx, model.EventThemeUpdated, accountID)
	return theme, nil
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, accountID, id); err != nil {
		return err
	}

	count, err := s.announcementRepo.CountByTheme(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count theme references: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d announcements", ErrThemeInUse, count)
	}

	if err := s.themeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}

	s.emitEvent(ctx, model.EventThemeDeleted, accountID)
	return nil
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*model.Theme, error) {
	return s.themeRepo.List(ctx, accountID)
}

func (s *Service) getOwned(ctx context.Context, accountID, id uuid.UUID) (*model.Theme, error) {
	theme, err := s.themeRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	if theme.AccountID != accountID {
		return nil, fmt.Errorf("failed to get theme: %w", postgres.ErrNotFound)
	}
	return theme, nil
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
