package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// TokenConfig holds token verification and issuance configuration.
type TokenConfig struct {
	SecretKey     string
	TokenDuration time.Duration
	Issuer        string
}

// DefaultTokenConfig returns a default token configuration.
// In production the secret key is loaded from JWT_SECRET_KEY.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		SecretKey:     "taskshare-dev-secret-change-in-production",
		TokenDuration: 24 * time.Hour,
		Issuer:        "taskshare",
	}
}

// TokenClaims are the claims carried by a bearer token. SubjectID is the
// stable identity-provider identifier, distinct from the local user ID.
type TokenClaims struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies bearer tokens. Verification is the
// Identity Verifier contract: bearer credential in, verified subject
// identity out.
type TokenManager struct {
	config TokenConfig
}

// NewTokenManager creates a new TokenManager with the given configuration.
func NewTokenManager(config TokenConfig) *TokenManager {
	return &TokenManager{config: config}
}

// Issue creates a signed token for the given subject.
func (m *TokenManager) Issue(subjectID, email, displayName string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// Verify validates the token signature and expiry and returns its claims.
func (m *TokenManager) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.SubjectID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
