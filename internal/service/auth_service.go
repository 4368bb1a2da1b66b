package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/media"
	"userauth/internal/model"
	"userauth/internal/repository"
)

const (
	avatarFolder     = "avatars"
	coverImageFolder = "cover-images"
)

// RegisterInput carries the registration form. Avatar and CoverImage are nil
// when the corresponding file was not attached.
type RegisterInput struct {
	FullName   string
	Username   string
	Email      string
	Password   string
	Avatar     *multipart.FileHeader
	CoverImage *multipart.FileHeader
}

// LoginInput carries login credentials. One of Username or Email is required.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// TokenPair is an access token with its matching refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User *model.User
	TokenPair
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID string, accessExpiresAt time.Time) error
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	GenerateTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error)
}

type authService struct {
	users      repository.UserRepository
	uploader   media.Uploader
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, uploader media.Uploader, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		users:      users,
		uploader:   uploader,
		jwtService: jwtService,
		tokenStore: tokenStore,
		now:        time.Now,
	}
}

// Register validates the form, uploads the images and creates the account.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if fullName == "" || username == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.ErrMissingFields
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperrors.ErrInternal.Wrap(fmt.Errorf("check user existence: %w", err))
	}
	if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}

	if in.Avatar == nil {
		return nil, apperrors.ErrAvatarRequired
	}

	avatar, err := s.uploader.Upload(ctx, in.Avatar, avatarFolder)
	if err != nil {
		return nil, apperrors.ErrAvatarUpload.Wrap(err)
	}
	if avatar == nil || avatar.URL == "" {
		return nil, apperrors.ErrAvatarUpload
	}

	coverURL := ""
	if in.CoverImage != nil {
		cover, err := s.uploader.Upload(ctx, in.CoverImage, coverImageFolder)
		switch {
		case err != nil:
			zap.L().Warn("cover image upload failed", zap.String("username", username), zap.Error(err))
		case cover != nil:
			coverURL = cover.URL
		}
	}

	user := &model.User{
		FullName:   fullName,
		Username:   username,
		Email:      email,
		Password:   in.Password,
		Avatar:     avatar.URL,
		CoverImage: coverURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, apperrors.ErrRegistrationFailed.Wrap(fmt.Errorf("create user: %w", err))
	}

	created, err := s.users.FindSanitizedByID(ctx, user.ID)
	if err != nil {
		return nil, apperrors.ErrRegistrationFailed.Wrap(fmt.Errorf("reload user: %w", err))
	}

	zap.L().Info("user registered", zap.String("user_id", created.ID.String()), zap.String("username", created.Username))
	return created, nil
}

// Login verifies credentials and starts a new session.
func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" && email == "" {
		return nil, apperrors.ErrLoginIdentifierRequired
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrInternal.Wrap(fmt.Errorf("find user: %w", err))
	}

	if !user.IsPasswordCorrect(in.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	loggedIn, err := s.users.FindSanitizedByID(ctx, user.ID)
	if err != nil {
		return nil, apperrors.ErrInternal.Wrap(fmt.Errorf("reload user: %w", err))
	}

	return &LoginResult{User: loggedIn, TokenPair: *pair}, nil
}

// Logout ends the session of userID. The access token that authorized the
// call is revoked for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID, accessTokenID string, accessExpiresAt time.Time) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return apperrors.ErrInternal.Wrap(fmt.Errorf("clear refresh token: %w", err))
	}

	if !accessExpiresAt.IsZero() {
		ttl := accessExpiresAt.Sub(s.now())
		if err := s.tokenStore.RevokeAccessToken(ctx, accessTokenID, ttl); err != nil {
			zap.L().Warn("revoke access token failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return nil
}

// RefreshTokens rotates the session of the refresh token's owner. The
// presented token must be the one currently stored for that user.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrUnauthorizedRequest
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken.WithReason(err.Error())
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.ErrInternal.Wrap(fmt.Errorf("find user: %w", err))
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, apperrors.ErrRefreshTokenReused
	}

	return s.GenerateTokens(ctx, user.ID)
}

// GenerateTokens issues a new token pair for userID and stores the refresh
// token as the account's only valid one.
func (s *authService) GenerateTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrTokenGeneration.Wrap(fmt.Errorf("find user: %w", err))
	}

	accessToken, err := s.jwtService.GenerateAccessToken(auth.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	})
	if err != nil {
		return nil, apperrors.ErrTokenGeneration.Wrap(fmt.Errorf("generate access token: %w", err))
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.ErrTokenGeneration.Wrap(fmt.Errorf("generate refresh token: %w", err))
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, apperrors.ErrTokenGeneration.Wrap(fmt.Errorf("store refresh token: %w", err))
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
