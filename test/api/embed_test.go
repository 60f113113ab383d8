package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootURL() string {
	return strings.TrimSuffix(baseURL, "/api/v1")
}

func TestEmbedConfig(t *testing.T) {
	themeID := createTestTheme(t)
	id := createTestAnnouncement(t, themeID)
	defer func() {
		makeRequest("DELETE", fmt.Sprintf("/announcements/%s", id), nil, authToken)
		makeRequest("DELETE", fmt.Sprintf("/themes/%s", themeID), nil, authToken)
	}()

	publishResp := makeRequest("POST", fmt.Sprintf("/announcements/%s/publish", id), nil, authToken)
	require.True(t, publishResp.IsSuccess(), "Failed to publish: %s", publishResp.Message)

	resp := rawGet(t, baseURL+"/embed/config?account_id="+apiKey, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	etag := resp.Header.Get("ETag")
	assert.NotEmpty(t, etag)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "public")

	var cfg struct {
		AccountID     string `json:"accountId"`
		WidgetURL     string `json:"widgetUrl"`
		Version       string `json:"version"`
		Announcements []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"announcements"`
		Themes []struct {
			ID string `json:"id"`
		} `json:"themes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))

	assert.Equal(t, apiKey, cfg.AccountID)
	assert.Contains(t, cfg.WidgetURL, "/embed/widget.js")
	assert.NotEmpty(t, cfg.Version)

	found := false
	for _, a := range cfg.Announcements {
		if a.ID == id {
			found = true
		}
	}
	assert.True(t, found, "published announcement should be delivered")

	// Conditional revalidation against the version tag.
	req, err := http.NewRequest(http.MethodGet, baseURL+"/embed/config?account_id="+apiKey, nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)

	condResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer condResp.Body.Close()
	assert.Equal(t, http.StatusNotModified, condResp.StatusCode)
}

func TestEmbedConfigUnknownAccount(t *testing.T) {
	resp := rawGet(t, baseURL+"/embed/config?account_id=pk_00000000000000000000000000000000", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEmbedAssets(t *testing.T) {
	loaderResp := rawGet(t, rootURL()+"/embed/loader.js", "")
	defer loaderResp.Body.Close()
	require.Equal(t, http.StatusOK, loaderResp.StatusCode)
	assert.Contains(t, loaderResp.Header.Get("Content-Type"), "javascript")
	assert.Contains(t, readBody(t, loaderResp), "data-account-id")

	widgetResp := rawGet(t, rootURL()+"/embed/widget.js", "")
	defer widgetResp.Body.Close()
	require.Equal(t, http.StatusOK, widgetResp.StatusCode)
	assert.Contains(t, readBody(t, widgetResp), "window.HeraldWidget")
}

func TestEmbedCORS(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/embed/config?account_id="+apiKey, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://customer.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
}
