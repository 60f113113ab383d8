package api_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountFlow(t *testing.T) {
	getResp := makeRequest("GET", "/account", nil, authToken)
	require.True(t, getResp.IsSuccess(), "Failed to get account: %s", getResp.Message)
	assert.Equal(t, apiKey, getResp.GetString("api_key"))
	assert.Equal(t, "active", getResp.GetString("status"))

	name := uniqueName("Renamed Account")
	updateResp := makeRequest("PUT", "/account", map[string]string{"name": name}, authToken)
	require.True(t, updateResp.IsSuccess(), "Failed to update account: %s", updateResp.Message)
	assert.Equal(t, name, updateResp.GetString("name"))
}

func TestAccountSnippet(t *testing.T) {
	resp := makeRequest("GET", "/account/snippet", nil, authToken)
	require.True(t, resp.IsSuccess(), "Failed to get snippet: %s", resp.Message)

	snippet := resp.GetString("snippet")
	assert.Contains(t, snippet, "loader.js")
	assert.Contains(t, snippet, "data-account-id=\""+apiKey+"\"")
}

func TestRotateAPIKey(t *testing.T) {
	resp := makeRequest("POST", "/account/rotate-key", nil, authToken)
	require.True(t, resp.IsSuccess(), "Failed to rotate key: %s", resp.Message)

	rotated := resp.GetString("api_key")
	assert.True(t, strings.HasPrefix(rotated, "pk_"))
	assert.NotEqual(t, apiKey, rotated)

	// Later tests address embeds by key, keep the global current.
	apiKey = rotated
}

func TestUnauthenticatedAccessRejected(t *testing.T) {
	resp := makeRequest("GET", "/account", nil, "")
	assert.Equal(t, 401, resp.Code)
}
