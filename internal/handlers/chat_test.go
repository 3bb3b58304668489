package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"lingua-service/internal/middleware"
	"lingua-service/internal/services"
)

func TestGetChatToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewChatHandler(services.NewChatTokenService("api-key", "api-secret", time.Hour))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(42))
		c.Next()
	})
	r.GET("/chat/token", handler.GetToken)

	req := httptest.NewRequest(http.MethodGet, "/chat/token", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "api-key", resp["api_key"])

	token, err := jwt.Parse(resp["token"], func(token *jwt.Token) (interface{}, error) {
		return []byte("api-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "42", claims["user_id"])
}

func TestGetChatTokenUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewChatHandler(services.NewChatTokenService("api-key", "api-secret", time.Hour))

	r := gin.New()
	r.GET("/chat/token", handler.GetToken)

	req := httptest.NewRequest(http.MethodGet, "/chat/token", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
