// Package httpapi is the HTTP transport for the authkeeper server: JSON
// auth endpoints over gin.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/rate"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
)

// AuthHandlers contains the HTTP handlers for the auth endpoints.
type AuthHandlers struct {
	userService *users.Service
	throttle    *rate.Limiter
	log         logging.Logger
}

func NewAuthHandlers(userService *users.Service, throttle *rate.Limiter, log logging.Logger) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		throttle:    throttle,
		log:         log,
	}
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// Login checks the throttle before touching credentials, verifies them,
// and returns the user with a fresh token pair.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()

	if err := h.throttle.Check(ctx, req.Email, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts"})
			return
		}
		// A broken throttle must not take login down with it.
		h.log.Error(ctx, "login throttle unavailable", "error", err.Error())
	}

	user, pair, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			if err := h.throttle.Increment(ctx, req.Email, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
				h.log.Error(ctx, "recording failed login", "error", err.Error())
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.log.Error(ctx, "login", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	if err := h.throttle.Reset(ctx, req.Email, ip); err != nil {
		h.log.Error(ctx, "resetting login throttle", "error", err.Error())
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userPayload{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh rotates a refresh token.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pair, err := h.userService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout revokes the caller's refresh tokens. The response is 204 even for
// an expired or missing access token: from the client's perspective the
// session is gone either way.
func (h *AuthHandlers) Logout(c *gin.Context) {
	accessToken := bearerToken(c.GetHeader(common.AccessTokenHeaderName))
	if accessToken != "" {
		if claims, err := h.userService.VerifyAccessToken(accessToken); err == nil {
			if err := h.userService.Logout(c.Request.Context(), claims.UserID); err != nil {
				h.log.Error(c.Request.Context(), "revoking refresh tokens", "error", err.Error())
			}
		}
	}

	c.Status(http.StatusNoContent)
}

// Ping is the liveness probe used by the client's online status watcher.
func (h *AuthHandlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}
