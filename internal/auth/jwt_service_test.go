package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("access-secret", 15*time.Minute, "refresh-secret", 24*time.Hour)
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()
	id := Identity{UserID: uuid.New(), Email: "alice@example.com", Username: "alice", FullName: "Alice"}

	token, err := svc.GenerateAccessToken(id)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Alice", claims.FullName)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestJWTService_TokensAreUniqueWithinTheSameSecond(t *testing.T) {
	svc := newTestJWTService()
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	userID := uuid.New()

	first, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWTService_SecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	access, err := svc.GenerateAccessToken(Identity{UserID: userID})
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_ExpiredRefreshToken(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-48 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateRefreshToken(token)

	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTService_TamperedRefreshToken(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.ValidateRefreshToken(tampered)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestJWTService_RejectsUnexpectedSigningMethod(t *testing.T) {
	svc := newTestJWTService()
	claims := &RefreshClaims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(unsigned)
	assert.Error(t, err)
}

func TestNewJWTService_DefaultsTTLs(t *testing.T) {
	svc := NewJWTService("a", 0, "r", -time.Second)

	assert.Equal(t, DefaultAccessTokenExpiry, svc.accessTTL)
	assert.Equal(t, DefaultRefreshTokenExpiry, svc.refreshTTL)
	assert.Equal(t, []byte("a"), svc.AccessSecret())
}
