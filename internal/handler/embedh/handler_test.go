package embedh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/model"
	apperrors "github.com/heraldhq/herald-api/pkg/errors"
)

type stubResolver struct {
	cfg *model.EmbedConfig
	err error
}

func (s *stubResolver) Resolve(ctx context.Context, tenantKey, pageURL, pagePath string) (*model.EmbedConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

func embedConfig() config.EmbedConfig {
	return config.EmbedConfig{
		PublicBaseURL:               "https://embed.heraldhq.dev",
		CacheTTLSeconds:             300,
		StaleWhileRevalidateSeconds: 600,
		LoaderPollIntervalMs:        50,
		LoaderPollMaxAttempts:       40,
	}
}

func newTestRouter(t *testing.T, resolver ConfigResolver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h, err := NewHandler(resolver, embedConfig(), zerolog.Nop())
	require.NoError(t, err)

	r := gin.New()
	h.RegisterConfigRoutes(r.Group("/api/v1"))
	h.RegisterAssetRoutes(r.Group("/embed"))
	return r
}

func TestGetConfigHeaders(t *testing.T) {
	resolver := &stubResolver{cfg: &model.EmbedConfig{
		AccountID: "pk_abc",
		Version:   "deadbeefdeadbeef",
		CacheTTL:  300,
	}}
	r := newTestRouter(t, resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/embed/config?account_id=pk_abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300, stale-while-revalidate=600", w.Header().Get("Cache-Control"))
	assert.Equal(t, `"deadbeefdeadbeef"`, w.Header().Get("ETag"))
	assert.Contains(t, w.Body.String(), `"accountId":"pk_abc"`)
}

func TestGetConfigNotModified(t *testing.T) {
	resolver := &stubResolver{cfg: &model.EmbedConfig{Version: "deadbeefdeadbeef"}}
	r := newTestRouter(t, resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/embed/config?account_id=pk_abc", nil)
	req.Header.Set("If-None-Match", `"deadbeefdeadbeef"`)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGetConfigErrorMapping(t *testing.T) {
	resolver := &stubResolver{err: apperrors.NotFound("account", nil)}
	r := newTestRouter(t, resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/embed/config?account_id=pk_missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoaderAssetInjectsConfig(t *testing.T) {
	r := newTestRouter(t, &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/embed/loader.js", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, jsContentType, w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "https://embed.heraldhq.dev/api/v1/embed/config")
	assert.Contains(t, body, "attempts >= 40")
	assert.Contains(t, body, "}, 50);")
	assert.Contains(t, body, "data-account-id")
}

func TestLoaderExposesGlobalHandle(t *testing.T) {
	r := newTestRouter(t, &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/embed/loader.js", nil)
	r.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "window.Herald =")
	assert.Contains(t, body, "recheck: recheck")
	assert.Contains(t, body, "getConfig:")
	assert.Contains(t, body, "version:")
	// Rechecks reuse the container instead of appending a fresh one.
	assert.Contains(t, body, "if (!container)")
	assert.Contains(t, body, "window.HeraldWidget.update(config)")
}

func TestLoaderStopsPollWhenBundleFailsToLoad(t *testing.T) {
	r := newTestRouter(t, &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/embed/loader.js", nil)
	r.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "widgetTag.addEventListener('error'")
	assert.Contains(t, body, "widget bundle failed to load")
}

func TestWidgetAssetInjectsConstants(t *testing.T) {
	r := newTestRouter(t, &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/embed/widget.js", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "'herald:seen:'")
	assert.Contains(t, body, "'herald-widget'")
	assert.Contains(t, body, "attachShadow({ mode: 'closed' })")
	assert.Contains(t, body, "window.HeraldWidget")
}

func widgetAssetBody(t *testing.T) string {
	t.Helper()
	r := newTestRouter(t, &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/embed/widget.js", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestWidgetCloseButtonClosesEverything(t *testing.T) {
	body := widgetAssetBody(t)

	// A close-action click runs the full close pass, not a single dismiss.
	assert.Contains(t, body, "state.close();")
	assert.NotContains(t, body, "state.dismiss(id)")
}

func TestWidgetRedirectOpensNewContext(t *testing.T) {
	body := widgetAssetBody(t)

	assert.Contains(t, body, "window.open(url, '_blank', 'noopener')")
	assert.NotContains(t, body, "window.location.href = url")
}

func TestWidgetThemeFallbackConsultsConfigThemes(t *testing.T) {
	body := widgetAssetBody(t)

	assert.Contains(t, body, "resolveTheme(this.config, a)")
	assert.Contains(t, body, "themes[i].id === a.themeId")
	assert.Contains(t, body, "themes[0].config")
}

func TestWidgetEscapesAttributeQuotes(t *testing.T) {
	body := widgetAssetBody(t)

	assert.Contains(t, body, `replace(/"/g, '&quot;')`)
}
