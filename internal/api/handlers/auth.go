package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scribehq/scribe/internal/crypto"
	"github.com/scribehq/scribe/internal/store"
	"github.com/scribehq/scribe/pkg/logger"
	"github.com/scribehq/scribe/pkg/types"
)

type AuthHandler struct {
	store      *store.Store
	jwtManager *crypto.JWTManager
}

func NewAuthHandler(st *store.Store, jwtManager *crypto.JWTManager) *AuthHandler {
	return &AuthHandler{
		store:      st,
		jwtManager: jwtManager,
	}
}

// AuthRequest represents the login-or-register payload
type AuthRequest struct {
	UserName string `json:"userName" binding:"required"`
}

// AuthResponse carries the token and the resolved user
type AuthResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

// PostAuth handles POST /v1/auth
//
// Display names double as login identity: an unknown name registers a new
// user, a known one logs back in.
func (h *AuthHandler) PostAuth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "userName must not be blank"})
		return
	}

	user, err := h.store.GetUserByName(c.Request.Context(), userName)
	if errors.Is(err, store.ErrNotFound) {
		user, err = h.store.CreateUser(c.Request.Context(), userName)
	}
	if err != nil {
		logger.Errorf("PostAuth: resolve user failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to authenticate"})
		return
	}

	token, err := h.jwtManager.CreateToken(user.ID, user.UserName)
	if err != nil {
		logger.Errorf("PostAuth: CreateToken failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to create token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}
