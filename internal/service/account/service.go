package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/email"
	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository"
	"github.com/heraldhq/herald-api/pkg/security"
)

var validate = validator.New()

type AccountServicer interface {
	CreateAccount(ctx context.Context, req *model.CreateAccountRequest) (*model.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	ListAccounts(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error)
	RotateAPIKey(ctx context.Context, id uuid.UUID) (*model.Account, error)
}

type Service struct {
	accountRepo repository.AccountRepository
	userRepo    repository.UserRepository
	themeRepo   repository.ThemeRepository
	outboxRepo  repository.OutboxRepository
	emailSvc    email.Service
	hasher      security.PasswordHasher
	logger      zerolog.Logger
}

func NewService(
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	themeRepo repository.ThemeRepository,
	outboxRepo repository.OutboxRepository,
	emailSvc email.Service,
	hasher security.PasswordHasher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		themeRepo:   themeRepo,
		outboxRepo:  outboxRepo,
		emailSvc:    emailSvc,
		hasher:      hasher,
		logger:      logger,
	}
}

// CreateAccount provisions a tenant: the account row with its public API
// key, the owner user, and a starter default theme.
func (s *Service) CreateAccount(ctx context.Context, req *model.CreateAccountRequest) (*model.Account, error) {
	if err := s.validateAccountRequest(req); err != nil {
		return nil, fmt.Errorf("invalid account request: %w", err)
	}

	if existing, _ := s.accountRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	now := time.Now()
	account := &model.Account{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		APIKey:       apiKey,
		Status:       string(model.AccountStatusActive),
		Plan:         "free",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	owner := &model.User{
		Base:         model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		AccountID:    account.ID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		Role:         model.UserRoleOwner,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner user: %w", err)
	}

	theme := &model.Theme{
		Base:      model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		AccountID: account.ID,
		Name:      "Default",
		IsDefault: true,
		Config: model.ThemeConfig{
			Modal:  model.StyleTokens{"background": "#ffffff", "textColor": "#1a1a2e"},
			Button: model.StyleTokens{"background": "#4f46e5", "textColor": "#ffffff"},
		},
	}
	if err := s.themeRepo.Create(ctx, theme); err != nil {
		return nil, fmt.Errorf("failed to create default theme: %w", err)
	}

	s.emitEvent(ctx, model.EventAccountCreated, account)

	if err := s.emailSvc.SendWelcome(ctx, account.Email, account.Name); err != nil {
		s.logger.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to send welcome email")
	}

	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accountRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *Service) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := s.validateAccount(account); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	account.UpdatedAt = time.Now()
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.accountRepo.Get(ctx, id); err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (s *Service) ListAccounts(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error) {
	return s.accountRepo.List(ctx)
}

// RotateAPIKey replaces the tenant's public key. Embeds still carrying the
// old key stop resolving immediately, which is the point of rotating.
func (s *Service) RotateAPIKey(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accountRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	account.APIKey = apiKey
	account.UpdatedAt = time.Now()
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *Service) emitEvent(ctx context.Context, eventType string, account *model.Account) {
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

func (s *Service) validateAccountRequest(req *model.CreateAccountRequest) error {
	if req.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if err := validate.Var(req.Email, "required,email"); err != nil {
		return fmt.Errorf("a valid email is required")
	}
	if len(req.Password) < security.MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", security.MinPasswordLen)
	}
	return nil
}

func (s *Service) validateAccount(account *model.Account) error {
	if account.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if account.Email == "" {
		return fmt.Errorf("email is required")
	}
	if account.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// generateAPIKey returns "pk_" plus 32 hex chars of randomness. The prefix
// makes the key recognizable in snippets and support tickets.
func generateAPIKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "pk_" + hex.EncodeToString(buf), nil
}
