package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
)

// JWTService issues and validates stateless access tokens.
type JWTService interface {
	GenerateAccessToken(user *model.User, redirect string) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
}

// hospitalClaims is the typed wire shape of the token payload. Claims are a
// closed struct rather than a free-form map so the role and id fields cannot
// drift between issuer and verifier.
type hospitalClaims struct {
	UserID   uuid.UUID  `json:"user_id"`
	Role     model.Role `json:"role"`
	Redirect string     `json:"redirect,omitempty"`
	jwt.RegisteredClaims
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiry time.Duration) JWTService {
	return &jwtService{secret: []byte(secret), expiry: expiry}
}

func (s *jwtService) GenerateAccessToken(user *model.User, redirect string) (string, error) {
	now := time.Now()
	claims := hospitalClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Redirect: redirect,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenStr string) (*model.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &hospitalClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*hospitalClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown role in token")
	}

	return &model.TokenClaims{
		UserID:   claims.UserID,
		Username: claims.Subject,
		Role:     claims.Role,
		Redirect: claims.Redirect,
	}, nil
}
