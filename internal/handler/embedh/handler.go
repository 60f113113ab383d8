package embedh

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"text/template"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/handler"
	"github.com/heraldhq/herald-api/internal/model"
)

const jsContentType = "application/javascript; charset=utf-8"

// ConfigResolver resolves a tenant key into its embed config.
type ConfigResolver interface {
	Resolve(ctx context.Context, tenantKey, pageURL, pagePath string) (*model.EmbedConfig, error)
}

// Handler serves the public embed surface: the config endpoint the widget
// polls and the two script assets customers load cross-origin. Everything
// here is anonymous and aggressively cacheable.
type Handler struct {
	delivery ConfigResolver
	cfg      config.EmbedConfig
	logger   zerolog.Logger

	loaderJS []byte
	widgetJS []byte
}

func NewHandler(deliverySvc ConfigResolver, cfg config.EmbedConfig, logger zerolog.Logger) (*Handler, error) {
	h := &Handler{delivery: deliverySvc, cfg: cfg, logger: logger}

	loader, err := renderAsset("loader", loaderTemplate, loaderData{
		ConfigURL:       cfg.PublicBaseURL + "/api/v1/embed/config",
		PollIntervalMs:  cfg.LoaderPollIntervalMs,
		PollMaxAttempts: cfg.LoaderPollMaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	h.loaderJS = loader

	widget, err := renderAsset("widget", widgetTemplate, widgetData{
		SeenKeyPrefix: "herald:seen:",
		RootClass:     "herald-widget",
	})
	if err != nil {
		return nil, err
	}
	h.widgetJS = widget

	return h, nil
}

func renderAsset(name, tmpl string, data interface{}) ([]byte, error) {
	compiled, err := template.New(name).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s asset: %w", name, err)
	}
	return buf.Bytes(), nil
}

// RegisterConfigRoutes mounts the config endpoint under the API group.
func (h *Handler) RegisterConfigRoutes(r *gin.RouterGroup) {
	r.GET("/embed/config", h.GetConfig)
}

// RegisterAssetRoutes mounts the script assets under the embed group.
func (h *Handler) RegisterAssetRoutes(r *gin.RouterGroup) {
	r.GET("/loader.js", h.GetLoader)
	r.GET("/widget.js", h.GetWidget)
}

// GetConfig resolves the embed config for one tenant. Responses carry a
// shared-cache policy and a version ETag so loaders revalidate cheaply.
func (h *Handler) GetConfig(c *gin.Context) {
	tenantKey := c.Query("account_id")
	pageURL := c.Query("url")
	pagePath := c.Query("path")

	cfg, err := h.delivery.Resolve(c.Request.Context(), tenantKey, pageURL, pagePath)
	if err != nil {
		handler.Error(c, err)
		return
	}

	etag := `"` + cfg.Version + `"`
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d",
		h.cfg.CacheTTLSeconds, h.cfg.StaleWhileRevalidateSeconds))
	c.Header("ETag", etag)

	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) GetLoader(c *gin.Context) {
	h.serveAsset(c, h.loaderJS)
}

func (h *Handler) GetWidget(c *gin.Context) {
	h.serveAsset(c, h.widgetJS)
}

func (h *Handler) serveAsset(c *gin.Context, asset []byte) {
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cfg.CacheTTLSeconds))
	c.Data(http.StatusOK, jsContentType, asset)
}
