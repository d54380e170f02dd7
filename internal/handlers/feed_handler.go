package handlers

import (
	"net/http"
	"strconv"

	"github.com/arafat31/wavely/backend/internal/models"
	"github.com/arafat31/wavely/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// feedPageSize is the fixed number of entries in a dashboard feed page.
const feedPageSize = 10

// FeedHandler handles the dashboard activity feed
type FeedHandler struct {
	activityRepository repositories.ActivityRepository
	userRepository     repositories.UserRepository
	followRepository   repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	activityRepo repositories.ActivityRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
) *FeedHandler {
	return &FeedHandler{
		activityRepository: activityRepo,
		userRepository:     userRepo,
		followRepository:   followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed composes the dashboard feed for the authenticated viewer. When the
// viewer follows someone the feed is restricted to those actors; a viewer
// who follows nobody gets the global recent-activity stream instead of an
// empty page. The viewer's own activity never appears in either case.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	var activities []models.Activity
	if len(followingIDs) > 0 {
		activities, err = h.activityRepository.ForActors(ctx, followingIDs, &viewerID, feedPageSize)
	} else {
		activities, err = h.activityRepository.Latest(ctx, &viewerID, feedPageSize)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Collect actor ids and user-type target ids, then resolve them in a
	// single batch query to keep the backing-query count constant.
	idSet := make(map[uint]bool)
	for _, a := range activities {
		idSet[a.ActorID] = true
		if a.TargetType == models.TargetUser {
			if id, err := strconv.ParseUint(a.TargetID, 10, 32); err == nil {
				idSet[uint(id)] = true
			}
		}
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := h.userRepository.GetUsersByIDs(ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	userMap := make(map[uint]models.UserCompact, len(users))
	for _, u := range users {
		userMap[u.ID] = u.ToCompact()
	}

	entries := make([]models.FeedEntry, len(activities))
	for i, a := range activities {
		entry := models.FeedEntry{
			Activity: a,
			Actor:    userMap[a.ActorID],
		}
		if a.TargetType == models.TargetUser {
			if id, err := strconv.ParseUint(a.TargetID, 10, 32); err == nil {
				if target, ok := userMap[uint(id)]; ok {
					entry.Target = &target
				}
			}
		}
		entries[i] = entry
	}

	return c.JSON(http.StatusOK, echo.Map{"feed": entries})
}
