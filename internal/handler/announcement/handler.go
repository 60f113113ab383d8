package announcement

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heraldhq/herald-api/internal/handler"
	"github.com/heraldhq/herald-api/internal/model"
	announcementService "github.com/heraldhq/herald-api/internal/service/announcement"
)

type Handler struct {
	service announcementService.AnnouncementServicer
}

func NewHandler(service announcementService.AnnouncementServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	announcements := r.Group("/announcements")
	{
		announcements.POST("", h.Create)
		announcements.GET("", h.List)
		announcements.GET("/:id", h.Get)
		announcements.PUT("/:id", h.Update)
		announcements.DELETE("/:id", h.Delete)
		announcements.POST("/:id/publish", h.Publish)
		announcements.POST("/:id/unpublish", h.Unpublish)
		announcements.GET("/:id/preview", h.Preview)
	}
}

func (h *Handler) Create(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	a, err := h.service.Create(c.Request.Context(), accountID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(a))
}

func (h *Handler) List(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	filters := &model.AnnouncementFilters{AccountID: accountID}
	if draft := c.Query("draft"); draft != "" {
		v := draft == "true"
		filters.Draft = &v
	}
	if placement := c.Query("placement"); placement != "" {
		filters.Placement = model.Placement(placement)
	}

	announcements, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(announcements))
}

func (h *Handler) Get(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	a, err := h.service.Get(c.Request.Context(), accountID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(a))
}

func (h *Handler) Update(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req model.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	a, err := h.service.Update(c.Request.Context(), accountID, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(a))
}

func (h *Handler) Delete(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), accountID, id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Publish(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	a, err := h.service.Publish(c.Request.Context(), accountID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(a))
}

func (h *Handler) Unpublish(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	a, err := h.service.Unpublish(c.Request.Context(), accountID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(a))
}

// Preview serves the announcement rendered to HTML, exactly what the
// embed widget would place inside its shadow root.
func (h *Handler) Preview(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	markup, err := h.service.Preview(c.Request.Context(), accountID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, markup)
}

func (h *Handler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid announcement ID"))
		return uuid.Nil, uuid.Nil, false
	}
	return accountID, id, true
}
