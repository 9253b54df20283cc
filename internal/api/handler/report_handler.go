package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-api/internal/api/metrics"
	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
)

// ReportHandler handles HTTP requests for report operations.
type ReportHandler struct {
	service   ports.ReportService
	rateLimit ports.RateLimitService
}

func NewReportHandler(service ports.ReportService, rateLimit ports.RateLimitService) *ReportHandler {
	return &ReportHandler{service: service, rateLimit: rateLimit}
}

// Create handles POST /api/reports. Anonymous submissions are allowed; the
// rate-limit gate runs before the report is created.
//
// @Summary      Submit a new incident report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        body  body      createReportRequest  true  "Report details"
// @Success      201   {object}  domain.Report
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  rateLimitedResponse
// @Router       /api/reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	ip := clientIP(c)
	userID := optionalUserID(c)

	allowed, remaining, err := h.rateLimit.CanSubmit(c.Request().Context(), userID, ip)
	if err != nil {
		return err
	}
	if !allowed {
		kind := "ip"
		if userID != nil {
			kind = "user"
		}
		metrics.ReportsRateLimitedTotal.WithLabelValues(kind).Inc()

		return c.JSON(http.StatusTooManyRequests, rateLimitedResponse{
			Error:            "Too many requests",
			Message:          fmt.Sprintf("Please wait %d seconds before submitting another report", remaining),
			SecondsRemaining: remaining,
			RetryAfter:       remaining,
		})
	}

	report, err := h.service.Create(c.Request().Context(), ports.CreateReportInput{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Category:    req.Category,
		Description: req.Description,
		IPAddress:   ip,
		UserID:      userID,
	})
	if err != nil {
		return err
	}

	metrics.ReportsCreatedTotal.WithLabelValues(string(report.Category)).Inc()
	return c.JSON(http.StatusCreated, report)
}

// ListActive handles GET /api/reports/active.
//
// @Summary      List all active reports
// @Tags         reports
// @Produce      json
// @Success      200  {array}  domain.Report
// @Router       /api/reports/active [get]
func (h *ReportHandler) ListActive(c echo.Context) error {
	reports, err := h.service.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	return c.JSON(http.StatusOK, reports)
}

// GetByID handles GET /api/reports/:id.
//
// @Summary      Get a report by ID
// @Tags         reports
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  domain.Report
// @Failure      404  {object}  map[string]string
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) GetByID(c echo.Context) error {
	report, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Search handles GET /api/reports/search. Each query bound is optional;
// bound sanity is validated here, not in the service.
//
// @Summary      Search reports by time window and bounding box
// @Tags         reports
// @Produce      json
// @Param        from    query     string  false  "RFC 3339 lower time bound"
// @Param        to      query     string  false  "RFC 3339 upper time bound"
// @Param        minLat  query     number  false  "Minimum latitude"
// @Param        maxLat  query     number  false  "Maximum latitude"
// @Param        minLon  query     number  false  "Minimum longitude"
// @Param        maxLon  query     number  false  "Maximum longitude"
// @Success      200     {array}   domain.Report
// @Failure      400     {object}  map[string]string
// @Router       /api/reports/search [get]
func (h *ReportHandler) Search(c echo.Context) error {
	filter, err := parseSearchFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	reports, err := h.service.Search(c.Request().Context(), *filter)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	return c.JSON(http.StatusOK, reports)
}

// MyCount handles GET /api/reports/my/count.
//
// @Summary      Count the caller's reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  reportCountResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/reports/my/count [get]
func (h *ReportHandler) MyCount(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	count, err := h.service.CountForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reportCountResponse{Count: count})
}

// MyHistory handles GET /api/reports/my/history.
//
// @Summary      List the caller's reports, newest first
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Report
// @Failure      401  {object}  map[string]string
// @Router       /api/reports/my/history [get]
func (h *ReportHandler) MyHistory(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	reports, err := h.service.HistoryForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	return c.JSON(http.StatusOK, reports)
}

// Update handles PUT /api/reports/:id. Only the owning user may update.
//
// @Summary      Update an owned report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Report ID"
// @Param        body  body      updateReportRequest  true  "Patch"
// @Success      200   {object}  domain.Report
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/reports/{id} [put]
func (h *ReportHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	report, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateReportInput{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Category:    req.Category,
		Description: req.Description,
	}, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Delete handles DELETE /api/reports/:id. Only the owning user may delete.
//
// @Summary      Delete an owned report
// @Tags         reports
// @Security     BearerAuth
// @Param        id  path  string  true  "Report ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/reports/{id} [delete]
func (h *ReportHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	deleted, err := h.service.Delete(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Report not found"})
	}

	metrics.ReportsDeletedTotal.WithLabelValues("owner").Inc()
	return c.NoContent(http.StatusNoContent)
}

// parseSearchFilter parses and sanity-checks the optional search bounds.
func parseSearchFilter(c echo.Context) (*ports.SearchReportsFilter, error) {
	var filter ports.SearchReportsFilter

	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("from must be an RFC 3339 timestamp")
		}
		filter.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("to must be an RFC 3339 timestamp")
		}
		filter.To = &t
	}

	var err error
	if filter.MinLat, err = parseBound(c, "minLat", -90, 90); err != nil {
		return nil, err
	}
	if filter.MaxLat, err = parseBound(c, "maxLat", -90, 90); err != nil {
		return nil, err
	}
	if filter.MinLon, err = parseBound(c, "minLon", -180, 180); err != nil {
		return nil, err
	}
	if filter.MaxLon, err = parseBound(c, "maxLon", -180, 180); err != nil {
		return nil, err
	}

	if filter.MinLat != nil && filter.MaxLat != nil && *filter.MinLat > *filter.MaxLat {
		return nil, errors.New("minLat cannot be greater than maxLat")
	}
	if filter.MinLon != nil && filter.MaxLon != nil && *filter.MinLon > *filter.MaxLon {
		return nil, errors.New("minLon cannot be greater than maxLon")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, errors.New("from cannot be after to")
	}

	return &filter, nil
}

func parseBound(c echo.Context, name string, min, max float64) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	if v < min || v > max {
		return nil, fmt.Errorf("%s must be between %g and %g", name, min, max)
	}
	return &v, nil
}
