package middleware

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
)

const (
	// AccessTokenCookie carries the access token for browser clients.
	AccessTokenCookie = "accessToken"

	sessionContextKey = "session"
	tokenLookup       = "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + AccessTokenCookie
)

// Session is the authenticated caller of a request.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Username  string
	FullName  string
	TokenID   string
	ExpiresAt time.Time
}

// JWT verifies the access token from the Authorization header or the
// accessToken cookie and stores the parsed token under "user".
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  secret,
		TokenLookup: tokenLookup,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(auth.AccessClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrUnauthorizedRequest.Wrap(err)
		},
	})
}

// RequireSession turns the verified token into a Session and rejects
// tokens revoked by logout. It must run after JWT.
func RequireSession(tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return apperrors.ErrUnauthorizedRequest
			}
			claims, ok := token.Claims.(*auth.AccessClaims)
			if !ok || claims.UserID == uuid.Nil {
				return apperrors.ErrUnauthorizedRequest
			}

			revoked, err := tokens.IsAccessTokenRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				zap.L().Warn("revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
			}
			if revoked {
				return apperrors.ErrUnauthorizedRequest
			}

			s := &Session{
				UserID:   claims.UserID,
				Email:    claims.Email,
				Username: claims.Username,
				FullName: claims.FullName,
				TokenID:  claims.ID,
			}
			if claims.ExpiresAt != nil {
				s.ExpiresAt = claims.ExpiresAt.Time
			}
			c.Set(sessionContextKey, s)
			return next(c)
		}
	}
}

// SessionFromContext returns the Session stored by RequireSession.
func SessionFromContext(c echo.Context) (*Session, bool) {
	s, ok := c.Get(sessionContextKey).(*Session)
	return s, ok && s != nil
}
