package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

// Claims is the access token payload.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService verifies HS256 bearer tokens and the static service API key.
type TokenService struct {
	secret []byte
	apiKey string
	now    func() time.Time
}

func NewTokenService(secret, apiKey string) *TokenService {
	return &TokenService{secret: []byte(secret), apiKey: apiKey, now: time.Now}
}

// Issue signs an access token. Used by tooling and tests, tokens normally come from the identity provider.
func (s *TokenService) Issue(userID string, role types.UserRole, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses token and returns the caller it identifies.
func (s *TokenService) Verify(ctx context.Context, token string) (*models.Principal, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpiredToken)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	if !parsed.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing user_id", ErrInvalidToken))
	}

	return &models.Principal{UserID: userID, Role: types.UserRole(claims.Role), Token: token}, nil
}

// CheckAPIKey authenticates back-office callers. An empty configured key disables API key access.
func (s *TokenService) CheckAPIKey(key string) (*models.Principal, error) {
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
		return nil, ErrInvalidAPIKey
	}
	return &models.Principal{UserID: "service", Role: types.RoleAdmin}, nil
}
