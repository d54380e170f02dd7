package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/arafat31/wavely/backend/internal/models"
	"github.com/arafat31/wavely/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 24 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository     repositories.UserRepository
	activityRepository repositories.ActivityRepository
	counterRepository  repositories.CounterRepository
	resetRepository    repositories.PasswordResetRepository
	firebaseAuth       *auth.Client
	jwtSecret          string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	userRepo repositories.UserRepository,
	activityRepo repositories.ActivityRepository,
	counterRepo repositories.CounterRepository,
	resetRepo repositories.PasswordResetRepository,
	firebaseAuthClient *auth.Client,
) *AuthHandler {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey"
	}
	return &AuthHandler{
		userRepository:     userRepo,
		activityRepository: activityRepo,
		counterRepository:  counterRepo,
		resetRepository:    resetRepo,
		firebaseAuth:       firebaseAuthClient,
		jwtSecret:          jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/password-reset", h.PasswordReset)
	g.POST("/password-reset/confirm", h.PasswordResetConfirm)
	g.GET("/password-reset/complete", h.PasswordResetComplete)
}

// Register handles new account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Check if user with this email already exists
	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}
	if _, err := h.userRepository.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		IsActive: true,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date_of_birth")
		}
		user.DateOfBirth = &dob
	}

	if err := h.userRepository.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.activityRepository.Record(c.Request().Context(), &models.Activity{
		ActorID: user.ID,
		Verb:    models.VerbRegistered,
	}); err != nil {
		log.Printf("Failed to record registration activity for user %d: %v", user.ID, err)
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after registration")
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": user})
}

// Login handles local user authentication with username and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUsername(req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid login")
	}

	if !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "Disabled account")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	// Completed login, bump the usage counter. A store failure here must not
	// fail the login itself.
	if err := h.counterRepository.Increment(models.CounterLogin); err != nil {
		log.Printf("Failed to increment login counter: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin handles Firebase ID token verification and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase authentication not configured")
	}

	var req FirebaseLoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Verify Firebase ID token
	token, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
		}
		// Not linked yet, try by email before creating a fresh account
		user, err = h.userRepository.GetUserByEmail(email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
			}
			username := name
			if username == "" {
				username = firebaseUID
			}
			newUser := &models.User{
				Username:    username,
				Email:       email,
				FirebaseUID: &firebaseUID,
				IsActive:    true,
			}
			if err := h.userRepository.CreateUser(newUser); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
			}
			if err := h.activityRepository.Record(c.Request().Context(), &models.Activity{
				ActorID: newUser.ID,
				Verb:    models.VerbRegistered,
			}); err != nil {
				log.Printf("Failed to record registration activity for user %d: %v", newUser.ID, err)
			}
			user = newUser
		} else {
			// Existing local account, link the Firebase UID
			user.FirebaseUID = &firebaseUID
			if err := h.userRepository.UpdateUser(user); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user with Firebase UID")
			}
		}
	}

	if !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "Disabled account")
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	if err := h.counterRepository.Increment(models.CounterLogin); err != nil {
		log.Printf("Failed to increment login counter: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT})
}

// PasswordReset issues a single-use reset token for the given email. Mail
// delivery is out of scope, so the token is returned in the response body.
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req models.PasswordResetRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		// Do not reveal whether the email is registered
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}

	token, err := h.resetRepository.IssueToken(user.ID, resetTokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue reset token")
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "token": token.Token})
}

// PasswordResetConfirm redeems a reset token and sets the new password
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	var req models.PasswordResetConfirmRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.resetRepository.GetToken(req.Token)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset token")
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset token")
	}

	user, err := h.userRepository.GetUserByID(token.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	user.Password = string(hashedPassword)
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	if err := h.resetRepository.MarkUsed(token.Token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to consume reset token")
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// PasswordResetComplete is the reset completion page. Each render bumps the
// password-reset counter and reports the running total. The page still
// renders, without the total, if the counter cannot be read.
func (h *AuthHandler) PasswordResetComplete(c echo.Context) error {
	if err := h.counterRepository.Increment(models.CounterPasswordReset); err != nil {
		log.Printf("Failed to increment password reset counter: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}

	count, err := h.counterRepository.Read(models.CounterPasswordReset)
	if err != nil {
		log.Printf("Failed to read password reset counter: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "password_reset_count": count})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)), // Token expires in 72 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}
