package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/heraldhq/herald-api/internal/model"
)

// All repository interfaces in one file
type (
	// AccountRepository handles tenant account operations
	AccountRepository interface {
		Create(ctx context.Context, account *model.Account) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		GetByAPIKey(ctx context.Context, apiKey string) (*model.Account, error)
		GetByEmail(ctx context.Context, email string) (*model.Account, error)
		Update(ctx context.Context, account *model.Account) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Account, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
	}

	AnnouncementRepository interface {
		Create(ctx context.Context, a *model.Announcement) error
		Get(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
		Update(ctx context.Context, a *model.Announcement) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AnnouncementFilters) ([]*model.Announcement, error)
		// ListEligible returns published, non-draft, non-deleted announcements
		// for one account, ordered by publish time.
		ListEligible(ctx context.Context, accountID uuid.UUID) ([]*model.Announcement, error)
		SetPublished(ctx context.Context, id uuid.UUID, draft bool, publishedAt *time.Time) error
		CountByTheme(ctx context.Context, themeID uuid.UUID) (int, error)
	}

	ThemeRepository interface {
		Create(ctx context.Context, theme *model.Theme) error
		Get(ctx context.Context, id uuid.UUID) (*model.Theme, error)
		Update(ctx context.Context, theme *model.Theme) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, accountID uuid.UUID) ([]*model.Theme, error)
		GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Theme, error)
	}

	OutboxRepository interface {
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		Create(ctx context.Context, event *model.OutboxEvent) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, err *string) error
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
