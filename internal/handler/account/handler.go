package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heraldhq/herald-api/internal/handler"
	"github.com/heraldhq/herald-api/internal/model"
	accountService "github.com/heraldhq/herald-api/internal/service/account"
)

type Handler struct {
	service       accountService.AccountServicer
	publicBaseURL string
}

func NewHandler(service accountService.AccountServicer, publicBaseURL string) *Handler {
	return &Handler{service: service, publicBaseURL: publicBaseURL}
}

// RegisterPublicRoutes exposes signup; everything else requires auth.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/accounts", h.CreateAccount)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	account := r.Group("/account")
	{
		account.GET("", h.GetAccount)
		account.PUT("", h.UpdateAccount)
		account.DELETE("", h.DeleteAccount)
		account.POST("/rotate-key", h.RotateAPIKey)
		account.GET("/snippet", h.GetSnippet)
	}
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var req model.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(account))
}

func (h *Handler) GetAccount(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(account))
}

type updateAccountRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	account.Name = req.Name
	if err := h.service.UpdateAccount(c.Request.Context(), account); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(account))
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	if handler.Role(c) != model.UserRoleOwner {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("only owners can delete the account"))
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), accountID); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RotateAPIKey(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	if handler.Role(c) != model.UserRoleOwner {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("only owners can rotate the api key"))
		return
	}

	account, err := h.service.RotateAPIKey(c.Request.Context(), accountID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"api_key": account.APIKey}))
}

// GetSnippet returns the copy-paste embed tag for the tenant's site.
func (h *Handler) GetSnippet(c *gin.Context) {
	accountID, err := handler.AccountID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	snippet := `<script async src="` + h.publicBaseURL + `/embed/loader.js" data-account-id="` + account.APIKey + `"></script>`
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"snippet": snippet}))
}
