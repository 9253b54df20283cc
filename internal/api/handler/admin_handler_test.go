package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
)

type stubAdminService struct {
	deleted    bool
	users      []ports.AdminUser
	stats      *ports.Stats
	gotLimit   int
	gotOffset  int
	deletedIDs []string
}

func (s *stubAdminService) DeleteReport(_ context.Context, id string) (bool, error) {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.deleted, nil
}

func (s *stubAdminService) ListUsers(_ context.Context, limit, offset int) ([]ports.AdminUser, error) {
	s.gotLimit = limit
	s.gotOffset = offset
	return s.users, nil
}

func (s *stubAdminService) ComputeStats(context.Context) (*ports.Stats, error) {
	return s.stats, nil
}

func newAdminContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAdminHandler_DeleteReport(t *testing.T) {
	svc := &stubAdminService{deleted: true}
	h := NewAdminHandler(svc)

	c, rec := newAdminContext(http.MethodDelete, "/api/admin/reports/r1")
	c.SetParamNames("id")
	c.SetParamValues("r1")
	if err := h.DeleteReport(c); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(svc.deletedIDs) != 1 || svc.deletedIDs[0] != "r1" {
		t.Fatalf("unexpected delete calls %v", svc.deletedIDs)
	}

	svc.deleted = false
	c, rec = newAdminContext(http.MethodDelete, "/api/admin/reports/missing")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.DeleteReport(c); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Report not found") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubAdminService{users: []ports.AdminUser{
		{
			User: &domain.User{
				ID: "u1", Username: "alice_01", Email: "alice@example.com",
				Role: domain.RoleUser, CreatedAt: created,
			},
			ReportsCount: 7,
		},
	}}
	h := NewAdminHandler(svc)

	c, rec := newAdminContext(http.MethodGet, "/api/admin/users?limit=25&offset=5")
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotLimit != 25 || svc.gotOffset != 5 {
		t.Fatalf("paging not forwarded: limit=%d offset=%d", svc.gotLimit, svc.gotOffset)
	}

	var body []adminUserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 1 || body[0].ReportsCount != 7 || body[0].Username != "alice_01" {
		t.Fatalf("unexpected body %+v", body)
	}
	// Password hashes stay out of the admin listing.
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("unexpected field in body %q", rec.Body.String())
	}
}

func TestAdminHandler_ListUsers_MalformedPagingDefaultsToZero(t *testing.T) {
	svc := &stubAdminService{}
	h := NewAdminHandler(svc)

	c, rec := newAdminContext(http.MethodGet, "/api/admin/users?limit=abc&offset=xyz")
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// The service clamps zeros to its defaults.
	if svc.gotLimit != 0 || svc.gotOffset != 0 {
		t.Fatalf("expected zeros for malformed paging, got limit=%d offset=%d", svc.gotLimit, svc.gotOffset)
	}
}

func TestAdminHandler_Stats(t *testing.T) {
	svc := &stubAdminService{stats: &ports.Stats{
		TotalReports:   3,
		ReportsLast24h: 2,
		ReportsByHour:  make([]ports.HourlyStat, 24),
	}}
	h := NewAdminHandler(svc)

	c, rec := newAdminContext(http.MethodGet, "/api/admin/stats")
	if err := h.Stats(c); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, key := range []string{"totalReports", "reportsLast24h", "falseReports", "verifiedReports", "topAreas", "reportsByHour"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("missing %q in stats body: %s", key, rec.Body.String())
		}
	}
	// Nil areas must serialize as [] rather than null.
	if string(body["topAreas"]) == "null" {
		t.Fatalf("topAreas serialized as null")
	}
}
