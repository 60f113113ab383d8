package theme

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heraldhq/herald-api/internal/handler"
	"github.com/heraldhq/herald-api/internal/model"
	themeService "github.com/heraldhq/herald-api/internal/service/theme"
)

type Handler struct {
	service themeService.ThemeServicer
}

func NewHandler(service themeService.ThemeServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	themes := r.Group("/themes")
	{
		themes.POST("", h.Create)
		themes.GET("", h.List)
		themes.GET("/:id", h.Get)
		themes.PUT("/:id", h.Update)
		themes.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	theme, err := h.service.Create(c.Request.Context(), accountID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(theme))
}

func (h *Handler) List(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	themes, err := h.service.List(c.Request.Context(), accountID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(themes))
}

func (h *Handler) Get(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	theme, err := h.service.Get(c.Request.Context(), accountID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(theme))
}

func (h *Handler) Update(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req model.UpdateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	theme, err := h.service.Update(c.Request.Context(), accountID, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(theme))
}

func (h *Handler) Delete(c *gin.Context) {
	accountID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), accountID, id); err != nil {
		if errors.Is(err, themeService.ErrThemeInUse) {
			c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
			return
		}
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid theme ID"))
		return uuid.Nil, uuid.Nil, false
	}
	return accountID, id, true
}
