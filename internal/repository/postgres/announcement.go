package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository"
)

type announcementRepository struct {
	BaseRepository
}

func NewAnnouncementRepository(base BaseRepository) repository.AnnouncementRepository {
	return &announcementRepository{base}
}

const announcementColumns = `
	id, account_id, title, message, buttons, placement, frequency,
	draft, published_at, theme_id, target_routes, created_at, updated_at, deleted_at
`

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	query := `
		INSERT INTO announcements (
			id, account_id, title, message, buttons, placement, frequency,
			draft, published_at, theme_id, target_routes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.AccountID,
		a.Title,
		a.Message,
		a.Buttons,
		a.Placement,
		a.Frequency,
		a.Draft,
		a.PublishedAt,
		a.ThemeID,
		a.TargetRoutes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

func (r *announcementRepository) Get(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	query := `
		SELECT ` + announcementColumns + `
		FROM announcements
		WHERE id = $1 AND deleted_at IS NULL
	`
	var a model.Announcement
	err := r.db.GetContext(ctx, &a, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) error {
	query := `
		UPDATE announcements
		SET title = $1, message = $2, buttons = $3, placement = $4, frequency = $5,
			theme_id = $6, target_routes = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`
	a.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		a.Title,
		a.Message,
		a.Buttons,
		a.Placement,
		a.Frequency,
		a.ThemeID,
		a.TargetRoutes,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes; deleted announcements drop out of every resolver
// response but stay queryable for the dashboard's trash view.
func (r *announcementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE announcements
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *announcementRepository) List(ctx context.Context, filters *model.AnnouncementFilters) ([]*model.Announcement, error) {
	query := `
		SELECT ` + announcementColumns + `
		FROM announcements
		WHERE account_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{filters.AccountID}

	if filters.Draft != nil {
		args = append(args, *filters.Draft)
		query += fmt.Sprintf(" AND draft = $%d", len(args))
	}
	if filters.Placement != "" {
		args = append(args, filters.Placement)
		query += fmt.Sprintf(" AND placement = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var announcements []*model.Announcement
	err := r.db.SelectContext(ctx, &announcements, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

func (r *announcementRepository) ListEligible(ctx context.Context, accountID uuid.UUID) ([]*model.Announcement, error) {
	query := `
		SELECT ` + announcementColumns + `
		FROM announcements
		WHERE account_id = $1
			AND draft = false
			AND published_at IS NOT NULL
			AND deleted_at IS NULL
		ORDER BY published_at ASC
	`
	var announcements []*model.Announcement
	err := r.db.SelectContext(ctx, &announcements, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible announcements: %w", err)
	}
	return announcements, nil
}

func (r *announcementRepository) SetPublished(ctx context.Context, id uuid.UUID, draft bool, publishedAt *time.Time) error {
	query := `
		UPDATE announcements
		SET draft = $1,
			published_at = COALESCE($2, published_at),
			updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, draft, publishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to set publish state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *announcementRepository) CountByTheme(ctx context.Context, themeID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM announcements
		WHERE theme_id = $1 AND deleted_at IS NULL
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, themeID); err != nil {
		return 0, fmt.Errorf("failed to count announcements by theme: %w", err)
	}
	return count, nil
}
