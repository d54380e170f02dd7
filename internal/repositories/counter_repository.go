package repositories

import (
	"errors"

	"github.com/arafat31/wavely/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository defines the interface for the singleton usage counters
type CounterRepository interface {
	Increment(kind string) error
	Read(kind string) (int64, error)
}

// PostgresCounterRepository implements CounterRepository for PostgreSQL
type PostgresCounterRepository struct {
	db *gorm.DB
}

// NewPostgresCounterRepository creates a new PostgresCounterRepository
func NewPostgresCounterRepository(db *gorm.DB) *PostgresCounterRepository {
	return &PostgresCounterRepository{db: db}
}

// Increment applies a single upsert statement: insert the row at 1, or bump
// the existing value on conflict. One round trip, so concurrent increments
// cannot lose updates.
func (r *PostgresCounterRepository) Increment(kind string) error {
	counter := &models.Counter{Kind: kind, Value: 1}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": gorm.Expr("counters.value + 1")}),
	}).Create(counter).Error
}

// Read returns the current count, or zero when the counter was never
// incremented. Absence is not an error.
func (r *PostgresCounterRepository) Read(kind string) (int64, error) {
	var counter models.Counter
	if err := r.db.First(&counter, "kind = ?", kind).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return counter.Value, nil
}
