package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/arafat31/wavely/backend/internal/models"
	"github.com/arafat31/wavely/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// FollowHandler handles the follow/unfollow toggle endpoint
type FollowHandler struct {
	followRepository   repositories.FollowRepository
	userRepository     repositories.UserRepository
	activityRepository repositories.ActivityRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, activityRepo repositories.ActivityRepository) *FollowHandler {
	return &FollowHandler{
		followRepository:   followRepo,
		userRepository:     userRepo,
		activityRepository: activityRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/follow", h.FollowAction)
}

// FollowAction toggles a follow edge for the authenticated user. The body
// carries the target id and an action of "follow" or "unfollow"; the
// response is a small status payload for the asynchronous client caller.
func (h *FollowHandler) FollowAction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error"})
	}

	var req models.FollowActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error"})
	}

	target, err := h.userRepository.GetUserByID(req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error"})
	}

	switch req.Action {
	case "follow":
		if err := h.followRepository.CreateFollow(currentUserID, target.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error"})
		}
		// The follow action is announced every time it is invoked, even when
		// the edge already existed.
		if err := h.activityRepository.Record(c.Request().Context(), &models.Activity{
			ActorID:    currentUserID,
			Verb:       models.VerbFollowing,
			TargetType: models.TargetUser,
			TargetID:   strconv.FormatUint(uint64(target.ID), 10),
		}); err != nil {
			log.Printf("Failed to record follow activity for user %d: %v", currentUserID, err)
		}
	case "unfollow":
		if err := h.followRepository.DeleteFollow(currentUserID, target.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
