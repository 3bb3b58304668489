package handlers

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"lingua-service/internal/services"
)

type ChatHandler struct {
	tokens *services.ChatTokenService
}

func NewChatHandler(tokens *services.ChatTokenService) *ChatHandler {
	return &ChatHandler{tokens: tokens}
}

func (h *ChatHandler) GetToken(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	token, err := h.tokens.Token(*userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to issue chat token"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"token":   token,
		"api_key": h.tokens.APIKey(),
	})
}
