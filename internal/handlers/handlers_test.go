package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/arafat31/wavely/backend/internal/models"
	"github.com/arafat31/wavely/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Follow{}, &models.Counter{}, &models.PasswordResetToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

// newTestContext builds an echo context for a JSON request, optionally
// authenticated as the given user.
func newTestContext(e *echo.Echo, method, path, body string, asUser *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if asUser != nil {
		c.Set("user", &models.JwtCustomClaims{UserID: asUser.ID, Username: asUser.Username})
	}
	return c, rec
}

// stubActivityRepository is an in-memory ActivityRepository used to test
// handlers without a MongoDB instance.
type stubActivityRepository struct {
	activities []models.Activity
}

func (s *stubActivityRepository) Record(_ context.Context, activity *models.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *stubActivityRepository) ForActors(_ context.Context, actorIDs []uint, excluding *uint, limit int64) ([]models.Activity, error) {
	inSet := make(map[uint]bool, len(actorIDs))
	for _, id := range actorIDs {
		inSet[id] = true
	}
	var out []models.Activity
	for _, a := range s.activities {
		if !inSet[a.ActorID] {
			continue
		}
		if excluding != nil && a.ActorID == *excluding {
			continue
		}
		out = append(out, a)
	}
	return sortAndTruncate(out, limit), nil
}

func (s *stubActivityRepository) Latest(_ context.Context, excluding *uint, limit int64) ([]models.Activity, error) {
	var out []models.Activity
	for _, a := range s.activities {
		if excluding != nil && a.ActorID == *excluding {
			continue
		}
		out = append(out, a)
	}
	return sortAndTruncate(out, limit), nil
}

func (s *stubActivityRepository) CountForActor(_ context.Context, actorID uint) (int64, error) {
	var n int64
	for _, a := range s.activities {
		if a.ActorID == actorID {
			n++
		}
	}
	return n, nil
}

func sortAndTruncate(activities []models.Activity, limit int64) []models.Activity {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	if int64(len(activities)) > limit {
		activities = activities[:limit]
	}
	return activities
}
