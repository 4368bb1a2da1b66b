package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenExpiry is used when no access TTL is configured.
	DefaultAccessTokenExpiry = 15 * time.Minute
	// DefaultRefreshTokenExpiry is used when no refresh TTL is configured.
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// AccessClaims are carried by access tokens.
type AccessClaims struct {
	UserID   uuid.UUID `json:"_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens. They hold only the user id.
type RefreshClaims struct {
	UserID uuid.UUID `json:"_id"`
	jwt.RegisteredClaims
}

// Identity is the user data embedded in an access token.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Username string
	FullName string
}

// JWTService handles JWT token generation and validation. Access and
// refresh tokens are signed with different secrets.
type JWTService struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTService creates a new JWT service. Non-positive TTLs fall back to defaults.
func NewJWTService(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenExpiry
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenExpiry
	}
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		accessTTL:     accessTTL,
		refreshSecret: []byte(refreshSecret),
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// AccessSecret returns the key access tokens are signed with.
func (s *JWTService) AccessSecret() []byte {
	return s.accessSecret
}

// GenerateAccessToken generates a new access token for the user.
func (s *JWTService) GenerateAccessToken(id Identity) (string, error) {
	now := s.now()
	claims := &AccessClaims{
		UserID:           id.UserID,
		Email:            id.Email,
		Username:         id.Username,
		FullName:         id.FullName,
		RegisteredClaims: s.registered(now, s.accessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

// GenerateRefreshToken generates a new refresh token for the user.
func (s *JWTService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := &RefreshClaims{
		UserID:           userID,
		RegisteredClaims: s.registered(now, s.refreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken validates a refresh token and returns its claims.
// The returned error describes why validation failed.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token is missing the user id")
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

func (s *JWTService) registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        generateTokenID(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// generateTokenID generates a unique token ID so that two tokens issued in
// the same second never collide.
func generateTokenID() string {
	return uuid.New().String()
}
