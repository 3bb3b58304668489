package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lingua-service/internal/middleware"
	"lingua-service/internal/models"
)

func requestIDFromHeader(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return requestID
}

func userIDFromContext(c *gin.Context) *int64 {
	if userIDVal, ok := c.Get(middleware.ContextUserID); ok {
		if userID, ok := userIDVal.(int64); ok {
			return &userID
		}
	}
	return nil
}

func userFromContext(c *gin.Context) *models.User {
	if userVal, ok := c.Get(middleware.ContextUser); ok {
		if user, ok := userVal.(*models.User); ok {
			return user
		}
	}
	return nil
}
