package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/amaumene/streambox/internal/errors"
)

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "password is required")
		return
	}

	token, err := h.services.Auth.Login(c.ClientIP(), req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			fail(c, http.StatusUnauthorized, "Invalid password")
			return
		}
		h.failWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"message": "Login successful",
	})
}

// handleVerify checks ?token= and falls back to the Authorization header.
func (h *Handler) handleVerify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}

	if _, err := h.services.Auth.Verify(strings.TrimSpace(token)); err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			fail(c, http.StatusUnauthorized, "Token expired")
		} else {
			fail(c, http.StatusUnauthorized, "Invalid token")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "valid": true})
}
