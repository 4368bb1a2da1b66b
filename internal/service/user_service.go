package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userauth/internal/cache"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes read access to user profiles.
type UserService interface {
	GetCurrentUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache cache.Store
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache cache.Store) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// GetCurrentUser returns the sanitized profile, served from cache when possible.
func (s *userService) GetCurrentUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindSanitizedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrInternal.Wrap(fmt.Errorf("find user: %w", err))
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}
