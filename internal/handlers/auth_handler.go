package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// AuthHandler handles login, logout and the current-user lookup.
type AuthHandler struct {
	userService    services.UserServicer
	sessionService services.SessionServicer
	auditService   services.AuditServicer
	secret         string
	secureCookie   bool
}

// NewAuthHandler creates a new AuthHandler. Session tokens are signed with
// secret; secureCookie marks the session cookie HTTPS-only.
func NewAuthHandler(
	userService services.UserServicer,
	sessionService services.SessionServicer,
	auditService services.AuditServicer,
	secret string,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		sessionService: sessionService,
		auditService:   auditService,
		secret:         secret,
		secureCookie:   secureCookie,
	}
}

// LoginRequest represents the login and signup payload. The email is the
// user's identity; the profile fields are refreshed on every login.
type LoginRequest struct {
	Email           string  `json:"email" binding:"required,email,max=255"`
	FirstName       *string `json:"first_name" binding:"omitempty,max=100"`
	LastName        *string `json:"last_name" binding:"omitempty,max=100"`
	ProfileImageURL *string `json:"profile_image_url" binding:"omitempty,url,max=512"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Login handles user login
// @Summary     Login user
// @Description Log in with an email, creating the user on first login, and start a session
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User identity and profile"
// @Success     200 {object} AuthResponse "Session started"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	h.startSession(c, http.StatusOK, "LOGIN")
}

// Signup handles user signup
// @Summary     Sign up user
// @Description Create or refresh a user and start a session
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User identity and profile"
// @Success     201 {object} AuthResponse "User created and session started"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	h.startSession(c, http.StatusCreated, "SIGNUP")
}

func (h *AuthHandler) startSession(c *gin.Context, status int, action string) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.UpsertUser(req.Email, req.FirstName, req.LastName, req.ProfileImageURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	session, err := h.sessionService.CreateSession(user.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.IssueToken(h.secret, session)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secureCookie, true)

	h.auditService.Log(user.ID, action, "session", session.ID, c.ClientIP(), nil)

	c.JSON(status, AuthResponse{Token: token, ExpiresAt: session.ExpiresAt, User: *user})
}

// Logout ends the current session
// @Summary     Logout user
// @Description Revoke the current session and clear the session cookie
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sessionID := c.GetString("sessionID")
	if err := h.sessionService.DeleteSession(sessionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)

	h.auditService.Log(userID, "LOGOUT", "session", sessionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// GetUser returns the authenticated user
// @Summary     Get current user
// @Description Get the authenticated user's profile information
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/user [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
