package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/danapixels/stampboard/internal/api/metrics"
	"github.com/danapixels/stampboard/internal/api/middleware"
	"github.com/danapixels/stampboard/internal/core/domain"
	"github.com/danapixels/stampboard/internal/core/ports"
)

// AuthHandler implements the shared-password login flow. The session token
// travels in an http-only cookie so the browser client never touches it.
type AuthHandler struct {
	authService ports.AuthService
	sessionTTL  time.Duration
	// secureCookies should be true everywhere except local development.
	secureCookies bool
}

func NewAuthHandler(authService ports.AuthService, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{authService: authService, sessionTTL: sessionTTL, secureCookies: secureCookies}
}

type loginRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Success bool `json:"success"`
}

type verifyResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Login authenticates the shared password and sets the session cookie.
//
// @Summary      Log in with the shared password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Shared password"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	token, err := h.authService.Login(c.Request().Context(), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Incorrect password"})
		}
		return err
	}

	c.SetCookie(h.sessionCookie(token, h.sessionTTL))
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{Success: true})
}

// Logout clears the session cookie. Idempotent: logging out without a
// session is still a success.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie := h.sessionCookie("", 0)
	cookie.MaxAge = -1
	c.SetCookie(cookie)
	return c.JSON(http.StatusOK, authResponse{Success: true})
}

// Verify reports whether the caller holds a valid session. The session
// middleware has already validated the cookie by the time this runs.
//
// @Summary      Verify the current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  verifyResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	return c.JSON(http.StatusOK, verifyResponse{Authenticated: true})
}

func (h *AuthHandler) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	return cookie
}
