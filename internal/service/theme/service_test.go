package theme

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository/postgres"
)

type memThemeRepo struct {
	byID map[uuid.UUID]*model.Theme
}

func newMemThemeRepo() *memThemeRepo {
	return &memThemeRepo{byID: make(map[uuid.UUID]*model.Theme)}
}

func (m *memThemeRepo) Create(ctx context.Context, t *model.Theme) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.byID[t.ID] = t
	return nil
}

func (m *memThemeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Theme, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return t, nil
}

func (m *memThemeRepo) Update(ctx context.Context, t *model.Theme) error {
	if _, ok := m.byID[t.ID]; !ok {
		return postgres.ErrNotFound
	}
	m.byID[t.ID] = t
	return nil
}

func (m *memThemeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memThemeRepo) List(ctx context.Context, accountID uuid.UUID) ([]*model.Theme, error) {
	var out []*model.Theme
	for _, t := range m.byID {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memThemeRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Theme, error) {
	var out []*model.Theme
	for _, id := range ids {
		if t, ok := m.byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubAnnouncementRepo struct {
	referenceCount int
}

func (s *stubAnnouncementRepo) Create(ctx context.Context, a *model.Announcement) error { return nil }
func (s *stubAnnouncementRepo) Update(ctx context.Context, a *model.Announcement) error { return nil }
func (s *stubAnnouncementRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (s *stubAnnouncementRepo) Get(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	return nil, postgres.ErrNotFound
}
func (s *stubAnnouncementRepo) List(ctx context.Context, filters *model.AnnouncementFilters) ([]*model.Announcement, error) {
	return nil, nil
}
func (s *stubAnnouncementRepo) ListEligible(ctx context.Context, accountID uuid.UUID) ([]*model.Announcement, error) {
	return nil, nil
}
func (s *stubAnnouncementRepo) SetPublished(ctx context.Context, id uuid.UUID, draft bool, publishedAt *time.Time) error {
	return nil
}
func (s *stubAnnouncementRepo) CountByTheme(ctx context.Context, themeID uuid.UUID) (int, error) {
	return s.referenceCount, nil
}

type stubAccountRepo struct {
	account *model.Account
}

func (m *stubAccountRepo) Create(ctx context.Context, a *model.Account) error { return nil }
func (m *stubAccountRepo) Update(ctx context.Context, a *model.Account) error { return nil }
func (m *stubAccountRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (m *stubAccountRepo) List(ctx context.Context) ([]*model.Account, error) { return nil, nil }
func (m *stubAccountRepo) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if m.account != nil && m.account.ID == id {
		return m.account, nil
	}
	return nil, postgres.ErrNotFound
}
func (m *stubAccountRepo) GetByAPIKey(ctx context.Context, key string) (*model.Account, error) {
	return nil, postgres.ErrNotFound
}
func (m *stubAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return nil, postgres.ErrNotFound
}

type capturingOutbox struct {
	events []*model.OutboxEvent
}

func (c *capturingOutbox) Create(ctx context.Context, event *model.OutboxEvent) error {
	c.events = append(c.events, event)
	return nil
}
func (c *capturingOutbox) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (c *capturingOutbox) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (c *capturingOutbox) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, err *string) error {
	return nil
}
func (c *capturingOutbox) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error {
	return nil
}
func (c *capturingOutbox) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestService(announcements *stubAnnouncementRepo) (*Service, *memThemeRepo, *capturingOutbox, *model.Account) {
	account := &model.Account{ID: uuid.New(), APIKey: "pk_test"}
	themes := newMemThemeRepo()
	outbox := &capturingOutbox{}
	svc := NewService(themes, announcements, &stubAccountRepo{account: account}, outbox, zerolog.Nop())
	return svc, themes, outbox, account
}

func TestDeleteRejectedWhileReferenced(t *testing.T) {
	svc, themes, outbox, account := newTestService(&stubAnnouncementRepo{referenceCount: 2})

	theme, err := svc.Create(context.Background(), account.ID, &model.CreateThemeRequest{Name: "Brand"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), account.ID, theme.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrThemeInUse)

	_, err = themes.Get(context.Background(), theme.ID)
	assert.NoError(t, err, "theme must survive a rejected delete")
	assert.Empty(t, outbox.events)
}

func TestDeleteUnreferencedTheme(t *testing.T) {
	svc, themes, outbox, account := newTestService(&stubAnnouncementRepo{})

	theme, err := svc.Create(context.Background(), account.ID, &model.CreateThemeRequest{Name: "Brand"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), account.ID, theme.ID))

	_, err = themes.Get(context.Background(), theme.ID)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventThemeDeleted, outbox.events[0].EventType)
}

func TestUpdateEmitsThemeUpdated(t *testing.T) {
	svc, _, outbox, account := newTestService(&stubAnnouncementRepo{})

	theme, err := svc.Create(context.Background(), account.ID, &model.CreateThemeRequest{Name: "Brand"})
	require.NoError(t, err)

	cfg := model.ThemeConfig{Modal: model.StyleTokens{"background": "#0f172a"}}
	updated, err := svc.Update(context.Background(), account.ID, theme.ID, &model.UpdateThemeRequest{Config: &cfg})
	require.NoError(t, err)
	assert.Equal(t, "#0f172a", updated.Config.Modal["background"])
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventThemeUpdated, outbox.events[0].EventType)
}

func TestCrossTenantThemeAccess(t *testing.T) {
	svc, themes, _, account := newTestService(&stubAnnouncementRepo{})

	foreign := &model.Theme{AccountID: uuid.New(), Name: "Other"}
	require.NoError(t, themes.Create(context.Background(), foreign))

	_, err := svc.Get(context.Background(), account.ID, foreign.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}
