package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lingua-service/internal/mocks"
	"lingua-service/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID int64) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupAuthTestRouter(users *mocks.MockUserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(testSecret, users), func(c *gin.Context) {
		userID, _ := c.Get(ContextUserID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestAuthMissingCredentials(t *testing.T) {
	router := setupAuthTestRouter(new(mocks.MockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidToken(t *testing.T) {
	router := setupAuthTestRouter(new(mocks.MockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthWrongSecret(t *testing.T) {
	router := setupAuthTestRouter(new(mocks.MockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, "other-secret", 1)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthCookieResolvesUser(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, Email: "me@example.com"}, nil).Once()
	router := setupAuthTestRouter(mockUsers)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, testSecret, 1)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"user_id":1`)
	mockUsers.AssertExpectations(t)
}

func TestAuthBearerFallback(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil).Once()
	router := setupAuthTestRouter(mockUsers)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestAuthUnknownUser(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(nil, sql.ErrNoRows).Once()
	router := setupAuthTestRouter(mockUsers)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, testSecret, 1)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestAuthStoreFailure(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, int64(1)).Return(nil, assert.AnError).Once()
	router := setupAuthTestRouter(mockUsers)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, testSecret, 1)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	mockUsers.AssertExpectations(t)
}
