package handlers

import (
	nethttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lingua-service/internal/models"
	"lingua-service/internal/repositories"
	"lingua-service/internal/services"
)

type UserHandler struct {
	users repositories.UserRepository
}

func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Recommend lists onboarded users the actor is not yet friends with,
// optionally narrowed by the native/learning language query params.
func (h *UserHandler) Recommend(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	candidates, err := h.users.Recommend(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to load recommendations"})
		return
	}

	candidates = services.FilterByLanguage(candidates, c.Query("native"), c.Query("learning"))

	c.JSON(nethttp.StatusOK, candidates)
}

func (h *UserHandler) Search(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// An empty query returns nothing rather than the whole user table.
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(nethttp.StatusOK, []models.User{})
		return
	}

	users, err := h.users.Search(c.Request.Context(), *userID, query)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to search users"})
		return
	}

	c.JSON(nethttp.StatusOK, users)
}
