package api_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

// Helper function to generate unique names
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// Helper to create a draft announcement
func createTestAnnouncement(t *testing.T, themeID string) string {
	body := map[string]interface{}{
		"title":     uniqueName("Release"),
		"message":   "We shipped something new.",
		"placement": "modal",
		"frequency": "once_per_user",
		"buttons": []map[string]string{
			{"label": "Got it", "type": "primary", "action": "close"},
		},
	}
	if themeID != "" {
		body["theme_id"] = themeID
	}

	resp := makeRequest("POST", "/announcements", body, authToken)
	if !resp.IsSuccess() {
		t.Fatalf("Failed to create test announcement: %s", resp.Message)
	}
	return resp.GetString("id")
}

// Helper to create a theme
func createTestTheme(t *testing.T) string {
	resp := makeRequest("POST", "/themes", map[string]interface{}{
		"name": uniqueName("Test Theme"),
		"config": map[string]interface{}{
			"modal": map[string]string{
				"backgroundColor": "#ffffff",
				"textColor":       "#1a1a2e",
			},
			"button": map[string]string{
				"backgroundColor": "#4f46e5",
			},
		},
	}, authToken)
	if !resp.IsSuccess() {
		t.Fatalf("Failed to create test theme: %s", resp.Message)
	}
	return resp.GetString("id")
}

// Helper for endpoints that return raw bodies instead of the envelope
func rawGet(t *testing.T, url, token string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return string(body)
}
