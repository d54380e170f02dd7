package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/arafat31/wavely/backend/internal/models"
	"github.com/arafat31/wavely/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type feedFixture struct {
	handler      *FeedHandler
	activityRepo *stubActivityRepository
	followRepo   repositories.FollowRepository
	db           *gorm.DB
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	db := setupTestDB(t)
	followRepo := repositories.NewPostgresFollowRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)
	activityRepo := &stubActivityRepository{}
	return &feedFixture{
		handler:      NewFeedHandler(activityRepo, userRepo, followRepo),
		activityRepo: activityRepo,
		followRepo:   followRepo,
		db:           db,
	}
}

func (f *feedFixture) addActivity(actorID uint, verb string, at time.Time) {
	f.activityRepo.activities = append(f.activityRepo.activities, models.Activity{
		ActorID:   actorID,
		Verb:      verb,
		CreatedAt: at,
	})
}

func (f *feedFixture) getFeed(t *testing.T, viewer *models.User) []models.FeedEntry {
	t.Helper()
	e := newTestEcho()
	c, rec := newTestContext(e, http.MethodGet, "/api/v1/feed", "", viewer)
	require.NoError(t, f.handler.GetFeed(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Feed []models.FeedEntry `json:"feed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Feed
}

func TestFeedFiltersToFollowedActors(t *testing.T) {
	f := newFeedFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	carol := seedUser(t, f.db, "carol")
	dave := seedUser(t, f.db, "dave")

	require.NoError(t, f.followRepo.CreateFollow(alice.ID, bob.ID))
	require.NoError(t, f.followRepo.CreateFollow(alice.ID, carol.ID))

	now := time.Now()
	f.addActivity(bob.ID, "posted", now.Add(-3*time.Minute))
	f.addActivity(carol.ID, "posted", now.Add(-2*time.Minute))
	f.addActivity(dave.ID, "posted", now.Add(-1*time.Minute))

	feed := f.getFeed(t, alice)
	require.Len(t, feed, 2)
	for _, entry := range feed {
		assert.Contains(t, []uint{bob.ID, carol.ID}, entry.ActorID)
	}
}

func TestFeedNeverContainsViewer(t *testing.T) {
	f := newFeedFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	// Self-follow puts the viewer in their own follow set; the feed still
	// excludes them.
	require.NoError(t, f.followRepo.CreateFollow(alice.ID, alice.ID))
	require.NoError(t, f.followRepo.CreateFollow(alice.ID, bob.ID))

	now := time.Now()
	f.addActivity(alice.ID, "posted", now.Add(-2*time.Minute))
	f.addActivity(bob.ID, "posted", now.Add(-1*time.Minute))

	feed := f.getFeed(t, alice)
	require.Len(t, feed, 1)
	assert.Equal(t, bob.ID, feed[0].ActorID)
}

func TestFeedFallsBackToGlobalStream(t *testing.T) {
	f := newFeedFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	carol := seedUser(t, f.db, "carol")

	now := time.Now()
	f.addActivity(alice.ID, "posted", now.Add(-3*time.Minute))
	f.addActivity(bob.ID, "posted", now.Add(-2*time.Minute))
	f.addActivity(carol.ID, "posted", now.Add(-1*time.Minute))

	// Alice follows nobody, so she sees the global stream minus herself.
	feed := f.getFeed(t, alice)
	require.Len(t, feed, 2)
	for _, entry := range feed {
		assert.NotEqual(t, alice.ID, entry.ActorID)
	}
}

func TestFeedOrderingAndTruncation(t *testing.T) {
	f := newFeedFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	require.NoError(t, f.followRepo.CreateFollow(alice.ID, bob.ID))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		f.addActivity(bob.ID, "posted", base.Add(time.Duration(i)*time.Minute))
	}

	feed := f.getFeed(t, alice)
	require.Len(t, feed, 10)
	for i := 1; i < len(feed); i++ {
		assert.True(t, feed[i-1].CreatedAt.After(feed[i].CreatedAt),
			"feed must be ordered newest first")
	}
}

func TestFeedResolvesActorsAndTargets(t *testing.T) {
	f := newFeedFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	carol := seedUser(t, f.db, "carol")

	require.NoError(t, f.followRepo.CreateFollow(alice.ID, bob.ID))

	f.activityRepo.activities = append(f.activityRepo.activities, models.Activity{
		ActorID:    bob.ID,
		Verb:       models.VerbFollowing,
		TargetType: models.TargetUser,
		TargetID:   strconv.FormatUint(uint64(carol.ID), 10),
		CreatedAt:  time.Now(),
	})

	feed := f.getFeed(t, alice)
	require.Len(t, feed, 1)
	assert.Equal(t, "bob", feed[0].Actor.Username)
	require.NotNil(t, feed[0].Target)
	assert.Equal(t, "carol", feed[0].Target.Username)
}

func TestFeedEmptyWhenNoActivity(t *testing.T) {
	f := newFeedFixture(t)
	alice := seedUser(t, f.db, "alice")

	feed := f.getFeed(t, alice)
	assert.Empty(t, feed)
}
