package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ChatTokenService issues per-user tokens for the hosted chat provider.
// The provider verifies them with the shared API secret; nothing about the
// chat session itself lives in this service.
type ChatTokenService struct {
	apiKey        string
	apiSecret     []byte
	tokenLifespan time.Duration
}

func NewChatTokenService(apiKey, apiSecret string, tokenLifespan time.Duration) *ChatTokenService {
	return &ChatTokenService{
		apiKey:        apiKey,
		apiSecret:     []byte(apiSecret),
		tokenLifespan: tokenLifespan,
	}
}

func (s *ChatTokenService) APIKey() string { return s.apiKey }

func (s *ChatTokenService) Token(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(s.tokenLifespan)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.apiSecret)
	if err != nil {
		return "", fmt.Errorf("cannot sign chat token: %w", err)
	}
	return signed, nil
}
