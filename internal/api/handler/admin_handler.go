package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-api/internal/api/metrics"
	"github.com/safecity/incident-api/internal/core/ports"
)

// AdminHandler handles privileged moderation and statistics endpoints.
// Routes using it must sit behind the admin role gate.
type AdminHandler struct {
	adminService ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type adminUserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsBanned     bool      `json:"isBanned"`
	CreatedAt    time.Time `json:"createdAt"`
	ReportsCount int64     `json:"reportsCount"`
}

// DeleteReport handles DELETE /api/admin/reports/:id. Any admin may delete
// any report; there is no ownership check.
//
// @Summary      Delete any report
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Report ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/reports/{id} [delete]
func (h *AdminHandler) DeleteReport(c echo.Context) error {
	deleted, err := h.adminService.DeleteReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Report not found"})
	}

	metrics.ReportsDeletedTotal.WithLabelValues("admin").Inc()
	return c.NoContent(http.StatusNoContent)
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List users with report counts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (1-100, default 50)"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   adminUserResponse
// @Failure      403     {object}  map[string]string
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, err := h.adminService.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	out := make([]adminUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResponse{
			ID:           u.User.ID,
			Username:     u.User.Username,
			Email:        u.User.Email,
			Role:         u.User.Role,
			IsBanned:     u.User.IsBanned,
			CreatedAt:    u.User.CreatedAt,
			ReportsCount: u.ReportsCount,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Stats handles GET /api/admin/stats.
//
// @Summary      Aggregate report statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.Stats
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminService.ComputeStats(c.Request().Context())
	if err != nil {
		return err
	}
	if stats.TopAreas == nil {
		stats.TopAreas = []ports.TopArea{}
	}
	return c.JSON(http.StatusOK, stats)
}
