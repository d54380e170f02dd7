package models

import "time"

// PasswordResetToken is a single-use reset token issued to a user by email
type PasswordResetToken struct {
	Token     string     `json:"token" gorm:"primaryKey;type:varchar(36)"`
	UserID    uint       `json:"user_id" gorm:"index"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
