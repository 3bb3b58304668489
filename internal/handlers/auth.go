package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"lingua-service/internal/middleware"
	"lingua-service/internal/repositories"
)

const sessionLifespan = 7 * 24 * time.Hour

type AuthHandler struct {
	users        repositories.UserRepository
	jwtSecret    string
	cookieSecure bool
}

func NewAuthHandler(users repositories.UserRepository, jwtSecret string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, cookieSecure: cookieSecure}
}

type signupBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	avatar := fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.Intn(100)+1)

	user, err := h.users.Create(c.Request.Context(), body.Email, string(hash), body.FullName, avatar)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			c.JSON(nethttp.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	if err := h.setSessionCookie(c, user.ID); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to issue session"})
		return
	}

	c.JSON(nethttp.StatusCreated, user)
}

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := h.setSessionCookie(c, user.ID); err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to issue session"})
		return
	}

	c.JSON(nethttp.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(nethttp.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(nethttp.StatusOK, user)
}

type onboardingBody struct {
	FullName         string `json:"full_name" binding:"required"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"native_language" binding:"required"`
	LearningLanguage string `json:"learning_language" binding:"required"`
	Location         string `json:"location"`
}

func (h *AuthHandler) Onboard(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body onboardingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "all onboarding fields are required"})
		return
	}

	user, err := h.users.Onboard(c.Request.Context(), *userID, body.FullName, body.Bio, body.NativeLanguage, body.LearningLanguage, body.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to complete onboarding"})
		return
	}

	c.JSON(nethttp.StatusOK, user)
}

type profileBody struct {
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body profileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.UpdateLanguages(c.Request.Context(), *userID, body.NativeLanguage, body.LearningLanguage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(nethttp.StatusOK, user)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), *userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to delete account"})
		return
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Status(nethttp.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, userID int64) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(sessionLifespan)),
	})
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return err
	}

	c.SetCookie(middleware.SessionCookie, signed, int(sessionLifespan.Seconds()), "/", "", h.cookieSecure, true)
	return nil
}
