package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeFlow(t *testing.T) {
	id := createTestTheme(t)

	getResp := makeRequest("GET", fmt.Sprintf("/themes/%s", id), nil, authToken)
	require.True(t, getResp.IsSuccess(), "Failed to get theme: %s", getResp.Message)

	name := uniqueName("Updated Theme")
	updateResp := makeRequest("PUT", fmt.Sprintf("/themes/%s", id), map[string]interface{}{
		"name": name,
	}, authToken)
	require.True(t, updateResp.IsSuccess(), "Failed to update theme: %s", updateResp.Message)
	assert.Equal(t, name, updateResp.GetString("name"))

	deleteResp := makeRequest("DELETE", fmt.Sprintf("/themes/%s", id), nil, authToken)
	require.True(t, deleteResp.IsSuccess(), "Failed to delete theme: %s", deleteResp.Message)
}

func TestThemeDeleteBlockedWhileReferenced(t *testing.T) {
	themeID := createTestTheme(t)
	announcementID := createTestAnnouncement(t, themeID)
	defer makeRequest("DELETE", fmt.Sprintf("/themes/%s", themeID), nil, authToken)

	resp := makeRequest("DELETE", fmt.Sprintf("/themes/%s", themeID), nil, authToken)
	assert.Equal(t, 409, resp.Code)

	// Removing the referencing announcement unblocks the delete.
	makeRequest("DELETE", fmt.Sprintf("/announcements/%s", announcementID), nil, authToken)
	resp = makeRequest("DELETE", fmt.Sprintf("/themes/%s", themeID), nil, authToken)
	assert.True(t, resp.IsSuccess(), "Expected delete to succeed: %s", resp.Message)
}
