package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userauth/internal/model"
)

// UserRepository defines persistence operations. Lookups return
// gorm.ErrRecordNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindSanitizedByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindSanitizedByID loads a user without the password and refresh token columns.
func (r *userRepository) FindSanitizedByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Omit("password", "refresh_token").
		Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail matches on whichever identifiers are non-empty.
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	q, ok := r.identifierQuery(ctx, username, email)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var user model.User
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	q, ok := r.identifierQuery(ctx, username, email)
	if !ok {
		return false, nil
	}
	var count int64
	if err := q.Model(&model.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateRefreshToken writes the refresh token column only, bypassing hooks
// and UpdatedAt. A nil token clears it.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("refresh_token", token).Error
}

func (r *userRepository) identifierQuery(ctx context.Context, username, email string) (*gorm.DB, bool) {
	q := r.db.WithContext(ctx)
	switch {
	case username != "" && email != "":
		return q.Where("username = ? OR email = ?", username, email), true
	case username != "":
		return q.Where("username = ?", username), true
	case email != "":
		return q.Where("email = ?", email), true
	default:
		return nil, false
	}
}
