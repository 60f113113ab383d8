package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncementLifecycle(t *testing.T) {
	id := createTestAnnouncement(t, "")

	getResp := makeRequest("GET", fmt.Sprintf("/announcements/%s", id), nil, authToken)
	require.True(t, getResp.IsSuccess(), "Failed to get announcement: %s", getResp.Message)
	assert.Equal(t, true, getResp.Data["draft"])
	assert.Nil(t, getResp.Data["published_at"])

	publishResp := makeRequest("POST", fmt.Sprintf("/announcements/%s/publish", id), nil, authToken)
	require.True(t, publishResp.IsSuccess(), "Failed to publish: %s", publishResp.Message)
	assert.Equal(t, false, publishResp.Data["draft"])
	assert.NotNil(t, publishResp.Data["published_at"])
	firstPublishedAt := publishResp.GetString("published_at")

	unpublishResp := makeRequest("POST", fmt.Sprintf("/announcements/%s/unpublish", id), nil, authToken)
	require.True(t, unpublishResp.IsSuccess(), "Failed to unpublish: %s", unpublishResp.Message)
	assert.Equal(t, true, unpublishResp.Data["draft"])

	// Republishing keeps the original timestamp.
	republishResp := makeRequest("POST", fmt.Sprintf("/announcements/%s/publish", id), nil, authToken)
	require.True(t, republishResp.IsSuccess())
	assert.Equal(t, firstPublishedAt, republishResp.GetString("published_at"))

	deleteResp := makeRequest("DELETE", fmt.Sprintf("/announcements/%s", id), nil, authToken)
	require.True(t, deleteResp.IsSuccess(), "Failed to delete: %s", deleteResp.Message)

	goneResp := makeRequest("GET", fmt.Sprintf("/announcements/%s", id), nil, authToken)
	assert.Equal(t, 404, goneResp.Code)
}

func TestAnnouncementValidation(t *testing.T) {
	resp := makeRequest("POST", "/announcements", map[string]interface{}{
		"title":     "No message",
		"placement": "modal",
		"frequency": "always",
	}, authToken)
	assert.Equal(t, 400, resp.Code)

	resp = makeRequest("POST", "/announcements", map[string]interface{}{
		"title":     "Bad placement",
		"message":   "body",
		"placement": "sidebar",
		"frequency": "always",
	}, authToken)
	assert.Equal(t, 400, resp.Code)

	resp = makeRequest("POST", "/announcements", map[string]interface{}{
		"title":     "Two primaries",
		"message":   "body",
		"placement": "modal",
		"frequency": "always",
		"buttons": []map[string]string{
			{"label": "A", "type": "primary", "action": "close"},
			{"label": "B", "type": "primary", "action": "close"},
		},
	}, authToken)
	assert.Equal(t, 400, resp.Code)
}

func TestAnnouncementPreview(t *testing.T) {
	id := createTestAnnouncement(t, createTestTheme(t))
	defer makeRequest("DELETE", fmt.Sprintf("/announcements/%s", id), nil, authToken)

	resp := rawGet(t, baseURL+fmt.Sprintf("/announcements/%s/preview", id), authToken)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body := readBody(t, resp)
	assert.Contains(t, body, "herald-widget")
}
