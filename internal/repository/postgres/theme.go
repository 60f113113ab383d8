package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository"
)

type themeRepository struct {
	BaseRepository
}

func NewThemeRepository(base BaseRepository) repository.ThemeRepository {
	return &themeRepository{base}
}

func (r *themeRepository) Create(ctx context.Context, theme *model.Theme) error {
	query := `
		INSERT INTO themes (
			id, account_id, name, is_default, config, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	theme.ID = uuid.New()
	theme.CreatedAt = time.Now()
	theme.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		theme.ID,
		theme.AccountID,
		theme.Name,
		theme.IsDefault,
		theme.Config,
		theme.CreatedAt,
		theme.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create theme: %w", err)
	}
	return nil
}

func (r *themeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Theme, error) {
	query := `
		SELECT id, account_id, name, is_default, config, created_at, updated_at, deleted_at
		FROM themes
		WHERE id = $1 AND deleted_at IS NULL
	`
	var theme model.Theme
	err := r.db.GetContext(ctx, &theme, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	return &theme, nil
}

func (r *themeRepository) Update(ctx context.Context, theme *model.Theme) error {
	query := `
		UPDATE themes
		SET name = $1, config = $2, updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`
	theme.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		theme.Name,
		theme.Config,
		theme.UpdatedAt,
		theme.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
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

func (r *themeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE themes
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
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

func (r *themeRepository) List(ctx context.Context, accountID uuid.UUID) ([]*model.Theme, error) {
	query := `
		SELECT id, account_id, name, is_default, config, created_at, updated_at, deleted_at
		FROM themes
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY is_default DESC, created_at ASC
	`
	var themes []*model.Theme
	err := r.db.SelectContext(ctx, &themes, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return themes, nil
}

func (r *themeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Theme, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, account_id, name, is_default, config, created_at, updated_at, deleted_at
		FROM themes
		WHERE id = ANY($1) AND deleted_at IS NULL
	`
	var themes []*model.Theme
	err := r.db.SelectContext(ctx, &themes, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get themes by ids: %w", err)
	}
	return themes, nil
}
