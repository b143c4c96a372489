package handler

import (
	"context"
	"net/http"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginHandler handles login requests
type LoginHandler struct {
	service AuthService
	tokens  *TokenRegistry
}

// Service interface for dependency injection
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*models.LoginData, bool)
}

// NewLoginHandler creates a new login handler. Issued tokens are recorded in tokens
func NewLoginHandler(svc AuthService, tokens *TokenRegistry) *LoginHandler {
	return &LoginHandler{service: svc, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login requests
//
//	@Summary	Sign in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		credentials	body		loginRequest	true	"email and password"
//	@Success	200			{object}	models.LoginResponse
//	@Failure	400			{object}	models.LoginResponse
//	@Failure	401			{object}	models.LoginResponse
//	@Router		/api/login [post]
func (h *LoginHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.LoginResponse{Message: service.MsgMissingFields})
		return
	}

	data, ok := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.LoginResponse{Message: service.MsgInvalidLogin})
		return
	}

	h.tokens.Issue(data.Token)
	c.JSON(http.StatusOK, models.LoginResponse{Success: true, Data: data})
}
