package handlers

import (
	"github.com/gin-gonic/gin"

	"vcbot/internal/domain/auth"
	"vcbot/internal/infrastructure/http/v1/dto"
)

// AuthHandler exposes operator login.
type AuthHandler struct {
	base *BaseHandler
	auth *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(base *BaseHandler, authService *auth.Service) *AuthHandler {
	return &AuthHandler{base: base, auth: authService}
}

// Login exchanges operator credentials for an access token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.base.BindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), auth.Credentials{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, dto.LoginResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
		ExpiresAt:   pair.ExpiresAt,
	})
}
