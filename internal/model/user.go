package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost is the work factor used when hashing passwords.
const BcryptCost = 10

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName     string    `json:"fullName" gorm:"size:255;not null;index"`
	Password     string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Avatar       string    `json:"avatar" gorm:"size:1024;not null"`
	CoverImage   string    `json:"coverImage" gorm:"size:1024;not null;default:''"`
	RefreshToken *string   `json:"-" gorm:"type:text"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets the UUID and replaces the plain password with its bcrypt hash.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), BcryptCost)
		if err != nil {
			return err
		}
		u.Password = string(hashed)
	}
	return nil
}

// IsPasswordCorrect reports whether password matches the stored hash.
func (u *User) IsPasswordCorrect(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
