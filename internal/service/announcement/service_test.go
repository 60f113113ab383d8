package announcement

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository/postgres"
)

type memAnnouncementRepo struct {
	byID map[uuid.UUID]*model.Announcement
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{byID: make(map[uuid.UUID]*model.Announcement)}
}

func (m *memAnnouncementRepo) Create(ctx context.Context, a *model.Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	m.byID[a.ID] = a
	return nil
}

func (m *memAnnouncementRepo) Get(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	a, ok := m.byID[id]
	if !ok || a.DeletedAt != nil {
		return nil, postgres.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memAnnouncementRepo) Update(ctx context.Context, a *model.Announcement) error {
	if _, ok := m.byID[a.ID]; !ok {
		return postgres.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	m.byID[a.ID] = a
	return nil
}

func (m *memAnnouncementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	a, ok := m.byID[id]
	if !ok {
		return postgres.ErrNotFound
	}
	now := time.Now()
	a.DeletedAt = &now
	return nil
}

func (m *memAnnouncementRepo) List(ctx context.Context, filters *model.AnnouncementFilters) ([]*model.Announcement, error) {
	var out []*model.Announcement
	for _, a := range m.byID {
		if a.AccountID == filters.AccountID && a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAnnouncementRepo) ListEligible(ctx context.Context, accountID uuid.UUID) ([]*model.Announcement, error) {
	var out []*model.Announcement
	for _, a := range m.byID {
		if a.AccountID == accountID && a.Eligible() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAnnouncementRepo) SetPublished(ctx context.Context, id uuid.UUID, draft bool, publishedAt *time.Time) error {
	a, ok := m.byID[id]
	if !ok || a.DeletedAt != nil {
		return postgres.ErrNotFound
	}
	a.Draft = draft
	if publishedAt != nil {
		a.PublishedAt = publishedAt
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (m *memAnnouncementRepo) CountByTheme(ctx context.Context, themeID uuid.UUID) (int, error) {
	count := 0
	for _, a := range m.byID {
		if a.ThemeID != nil && *a.ThemeID == themeID && a.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

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
	m.byID[t.ID] = t
	return nil
}

func (m *memThemeRepo) Delete(ctx context.Context, id uuid.UUID) error {
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

type memAccountRepo struct {
	account *model.Account
}

func (m *memAccountRepo) Create(ctx context.Context, a *model.Account) error { return nil }
func (m *memAccountRepo) Update(ctx context.Context, a *model.Account) error { return nil }
func (m *memAccountRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (m *memAccountRepo) List(ctx context.Context) ([]*model.Account, error) { return nil, nil }
func (m *memAccountRepo) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if m.account != nil && m.account.ID == id {
		return m.account, nil
	}
	return nil, postgres.ErrNotFound
}
func (m *memAccountRepo) GetByAPIKey(ctx context.Context, key string) (*model.Account, error) {
	return nil, postgres.ErrNotFound
}
func (m *memAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
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

func (c *capturingOutbox) types() []string {
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.EventType
	}
	return out
}

type fixture struct {
	svc     *Service
	repo    *memAnnouncementRepo
	themes  *memThemeRepo
	outbox  *capturingOutbox
	account *model.Account
}

func newFixture() *fixture {
	account := &model.Account{ID: uuid.New(), APIKey: "pk_test", Email: "owner@acme.test"}
	repo := newMemAnnouncementRepo()
	themes := newMemThemeRepo()
	outbox := &capturingOutbox{}
	svc := NewService(repo, themes, &memAccountRepo{account: account}, outbox, zerolog.Nop())
	return &fixture{svc: svc, repo: repo, themes: themes, outbox: outbox, account: account}
}

func createRequest() *model.CreateAnnouncementRequest {
	return &model.CreateAnnouncementRequest{
		Title:     "New dashboard",
		Message:   "<p>We shipped a new dashboard.</p>",
		Placement: model.PlacementModal,
		Frequency: model.FrequencyOncePerUser,
	}
}

func TestCreateStartsAsDraft(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Create(context.Background(), f.account.ID, createRequest())
	require.NoError(t, err)
	assert.True(t, a.Draft)
	assert.Nil(t, a.PublishedAt)
	assert.False(t, a.Eligible())
	assert.Empty(t, f.outbox.events, "drafts are invisible, no invalidation needed")
}

func TestCreateRejectsInvalidButtons(t *testing.T) {
	f := newFixture()

	req := createRequest()
	req.Buttons = model.ButtonList{{Label: "Learn more", Type: model.ButtonTypePrimary, Action: model.ButtonActionRedirect}}
	_, err := f.svc.Create(context.Background(), f.account.ID, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect button requires a url")

	req = createRequest()
	req.Buttons = model.ButtonList{
		{Label: "A", Type: model.ButtonTypePrimary, Action: model.ButtonActionClose},
		{Label: "B", Type: model.ButtonTypePrimary, Action: model.ButtonActionClose},
	}
	_, err = f.svc.Create(context.Background(), f.account.ID, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one primary")
}

func TestCreateRejectsForeignTheme(t *testing.T) {
	f := newFixture()
	foreign := &model.Theme{AccountID: uuid.New(), Name: "Other"}
	require.NoError(t, f.themes.Create(context.Background(), foreign))

	req := createRequest()
	req.ThemeID = &foreign.ID
	_, err := f.svc.Create(context.Background(), f.account.ID, req)
	require.Error(t, err)
}

func TestPublishStampsPublishedAtOnce(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Create(context.Background(), f.account.ID, createRequest())
	require.NoError(t, err)

	published, err := f.svc.Publish(context.Background(), f.account.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, published.Eligible())
	firstStamp := *published.PublishedAt

	_, err = f.svc.Unpublish(context.Background(), f.account.ID, a.ID)
	require.NoError(t, err)
	stored, err := f.repo.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, stored.Draft)
	assert.False(t, stored.Eligible())
	require.NotNil(t, stored.PublishedAt, "unpublish keeps the original stamp")

	republished, err := f.svc.Publish(context.Background(), f.account.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, firstStamp.Unix(), republished.PublishedAt.Unix(), "republish keeps the original stamp")

	assert.Equal(t, []string{
		model.EventAnnouncementPublished,
		model.EventAnnouncementUnpublished,
		model.EventAnnouncementPublished,
	}, f.outbox.types())
}

func TestOutboxPayloadCarriesTenantKey(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Create(context.Background(), f.account.ID, createRequest())
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), f.account.ID, a.ID)
	require.NoError(t, err)

	require.Len(t, f.outbox.events, 1)
	var payload model.ConfigChangedEvent
	require.NoError(t, json.Unmarshal(f.outbox.events[0].Payload, &payload))
	assert.Equal(t, f.account.ID, payload.AccountID)
	assert.Equal(t, f.account.APIKey, payload.APIKey)
}

func TestUpdateEmitsOnlyWhenLive(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Create(context.Background(), f.account.ID, createRequest())
	require.NoError(t, err)

	title := "Edited draft"
	_, err = f.svc.Update(context.Background(), f.account.ID, a.ID, &model.UpdateAnnouncementRequest{Title: &title})
	require.NoError(t, err)
	assert.Empty(t, f.outbox.events, "draft edits do not invalidate")

	_, err = f.svc.Publish(context.Background(), f.account.ID, a.ID)
	require.NoError(t, err)

	title = "Edited live"
	updated, err := f.svc.Update(context.Background(), f.account.ID, a.ID, &model.UpdateAnnouncementRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Edited live", updated.Title)
	assert.Contains(t, f.outbox.types(), model.EventAnnouncementUpdated)
}

func TestCrossTenantAccessLooksLikeNotFound(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Create(context.Background(), f.account.ID, createRequest())
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), uuid.New(), a.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestDeleteLiveAnnouncementEmits(t *testing.T) {
	f := newFixture()
	a, err := f.svc.Create(context.Background(), f.account.ID, createRequest())
	require.NoError(t, err)
	_, err = f.svc.Publish(context.Background(), f.account.ID, a.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.account.ID, a.ID))

	_, err = f.repo.Get(context.Background(), a.ID)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
	assert.Contains(t, f.outbox.types(), model.EventAnnouncementDeleted)
}
