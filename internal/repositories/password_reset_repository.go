package repositories

import (
	"time"

	"github.com/arafat31/wavely/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetRepository defines the interface for password reset tokens
type PasswordResetRepository interface {
	IssueToken(userID uint, ttl time.Duration) (*models.PasswordResetToken, error)
	GetToken(token string) (*models.PasswordResetToken, error)
	MarkUsed(token string) error
}

// PostgresPasswordResetRepository implements PasswordResetRepository for PostgreSQL
type PostgresPasswordResetRepository struct {
	db *gorm.DB
}

// NewPostgresPasswordResetRepository creates a new PostgresPasswordResetRepository
func NewPostgresPasswordResetRepository(db *gorm.DB) *PostgresPasswordResetRepository {
	return &PostgresPasswordResetRepository{db: db}
}

// IssueToken creates a fresh single-use token for the user
func (r *PostgresPasswordResetRepository) IssueToken(userID uint, ttl time.Duration) (*models.PasswordResetToken, error) {
	token := &models.PasswordResetToken{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := r.db.Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

// GetToken retrieves a token by its value
func (r *PostgresPasswordResetRepository) GetToken(token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.db.First(&t, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed stamps the token so it cannot be redeemed again
func (r *PostgresPasswordResetRepository) MarkUsed(token string) error {
	now := time.Now()
	return r.db.Model(&models.PasswordResetToken{}).
		Where("token = ?", token).
		Update("used_at", &now).Error
}
