package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Username    string     `json:"username" gorm:"uniqueIndex;size:150"`
	Email       string     `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password    string     `json:"-"`                        // Store hashed password, ignore for JSON serialization
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	FirebaseUID *string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserCompact is the reduced user shape embedded in feed entries and user listings
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	PhotoURL string `json:"photo_url,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Username: u.Username,
		PhotoURL: u.PhotoURL,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=2,max=150"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username    string `json:"username,omitempty" validate:"omitempty,min=2,max=150"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PhotoURL    string `json:"photo_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
