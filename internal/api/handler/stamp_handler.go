package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/danapixels/stampboard/internal/api/metrics"
	"github.com/danapixels/stampboard/internal/core/domain"
	"github.com/danapixels/stampboard/internal/core/ports"
)

// StampHandler handles HTTP requests for the stamp board.
type StampHandler struct {
	service  ports.StampService
	adminKey string
}

func NewStampHandler(service ports.StampService, adminKey string) *StampHandler {
	return &StampHandler{service: service, adminKey: adminKey}
}

// --- Request / Response types ---

// stampRequest mirrors the stamp wire format produced by the board client.
type stampRequest struct {
	ID           string  `json:"id"`
	Type         string  `json:"type" validate:"required,oneof=gold silver bronze diamond"`
	X            string  `json:"x" validate:"required,percent"`
	Y            string  `json:"y" validate:"required,percent"`
	Rotation     float64 `json:"rotation"`
	User         string  `json:"user" validate:"required"`
	UserIdentity string  `json:"userIdentity" validate:"omitempty,oneof=PM Engineer Leadership Recruiter Cat Designer"`
	Timestamp    string  `json:"timestamp"`
}

type createStampResponse struct {
	Success   bool   `json:"success"`
	Wiped     bool   `json:"wiped,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

type clearStampsRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type clearStampsResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	StampsRemoved int    `json:"stampsRemoved"`
}

type adminWipeRequest struct {
	AdminKey string `json:"adminKey"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// List handles GET /api/stamps.
//
// @Summary      List all stamps on the board
// @Tags         stamps
// @Produce      json
// @Success      200  {array}   domain.Stamp
// @Failure      401  {object}  map[string]string
// @Router       /stamps [get]
func (h *StampHandler) List(c echo.Context) error {
	stamps, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stamps)
}

// Create handles POST /api/stamps.
//
// @Summary      Place a stamp
// @Tags         stamps
// @Accept       json
// @Produce      json
// @Param        body  body      stampRequest  true  "Stamp to place"
// @Success      200   {object}  createStampResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /stamps [post]
func (h *StampHandler) Create(c echo.Context) error {
	var req stampRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.PlacementsRejectedTotal.WithLabelValues("validation").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.service.Create(c.Request().Context(), domain.Stamp{
		ID:           req.ID,
		Type:         domain.StampType(req.Type),
		X:            req.X,
		Y:            req.Y,
		Rotation:     req.Rotation,
		User:         req.User,
		UserIdentity: domain.Identity(req.UserIdentity),
		Timestamp:    req.Timestamp,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStampQuotaExceeded):
			metrics.PlacementsRejectedTotal.WithLabelValues("user_quota").Inc()
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Stamp limit reached"})
		case errors.Is(err, domain.ErrBoardFull):
			metrics.PlacementsRejectedTotal.WithLabelValues("board_full").Inc()
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Board limit reached"})
		case errors.Is(err, domain.ErrUserRequired):
			metrics.PlacementsRejectedTotal.WithLabelValues("validation").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "User is required"})
		}
		return err
	}

	if result.Wiped {
		// The board hit its global ceiling and was cleared instead of
		// appended to. Reported as success with an explicit wiped flag so the
		// destructive side effect is distinguishable from a plain accept.
		metrics.BoardWipesTotal.WithLabelValues("global_limit").Inc()
		return c.JSON(http.StatusOK, createStampResponse{
			Success: true,
			Wiped:   true,
			Message: "Stamp limit reached, all stamps cleared",
		})
	}
	if result.Duplicate {
		return c.JSON(http.StatusOK, createStampResponse{Success: true, Duplicate: true})
	}

	metrics.StampsPlacedTotal.WithLabelValues(req.Type).Inc()
	return c.JSON(http.StatusOK, createStampResponse{Success: true})
}

// Clear handles POST /api/stamps/clear — removes one user's stamps.
//
// @Summary      Clear a user's stamps
// @Tags         stamps
// @Accept       json
// @Produce      json
// @Param        body  body      clearStampsRequest  true  "User whose stamps to remove"
// @Success      200   {object}  clearStampsResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /stamps/clear [post]
func (h *StampHandler) Clear(c echo.Context) error {
	var req clearStampsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User ID is required"})
	}

	removed, err := h.service.ClearUser(c.Request().Context(), req.UserID)
	if err != nil {
		return err
	}

	metrics.StampsClearedTotal.Add(float64(removed))
	return c.JSON(http.StatusOK, clearStampsResponse{
		Success:       true,
		Message:       "Stamps cleared successfully",
		StampsRemoved: removed,
	})
}

// AdminWipe handles DELETE /api/stamps — clears the whole board when the
// caller presents the configured admin key.
//
// @Summary      Wipe the whole board (admin)
// @Tags         stamps
// @Accept       json
// @Produce      json
// @Param        body  body      adminWipeRequest  true  "Admin key"
// @Success      200   {object}  successResponse
// @Failure      403   {object}  map[string]string
// @Router       /stamps [delete]
func (h *StampHandler) AdminWipe(c echo.Context) error {
	var req adminWipeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	// Constant-time compare; an unset key disables the endpoint entirely.
	if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(h.adminKey)) != 1 {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	if err := h.service.WipeBoard(c.Request().Context()); err != nil {
		return err
	}

	metrics.BoardWipesTotal.WithLabelValues("admin").Inc()
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
