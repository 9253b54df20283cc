package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
)

// stubReportRepo is an in-memory ReportRepository shared by the service tests.
type stubReportRepo struct {
	reports map[string]*domain.Report
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{reports: make(map[string]*domain.Report)}
}

func cloneReport(r *domain.Report) *domain.Report {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

func (s *stubReportRepo) Insert(_ context.Context, r *domain.Report) error {
	s.reports[r.ID] = cloneReport(r)
	return nil
}

func (s *stubReportRepo) FindByID(_ context.Context, id string) (*domain.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return cloneReport(r), nil
}

func (s *stubReportRepo) sorted() []*domain.Report {
	out := make([]*domain.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, cloneReport(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	return out
}

func (s *stubReportRepo) ListAll(_ context.Context) ([]*domain.Report, error) {
	return s.sorted(), nil
}

func (s *stubReportRepo) Search(_ context.Context, f ports.SearchReportsFilter) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, r := range s.sorted() {
		if f.From != nil && r.ReportedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && r.ReportedAt.After(*f.To) {
			continue
		}
		if f.MinLat != nil && r.Latitude < *f.MinLat {
			continue
		}
		if f.MaxLat != nil && r.Latitude > *f.MaxLat {
			continue
		}
		if f.MinLon != nil && r.Longitude < *f.MinLon {
			continue
		}
		if f.MaxLon != nil && r.Longitude > *f.MaxLon {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *stubReportRepo) Update(_ context.Context, r *domain.Report) error {
	if _, ok := s.reports[r.ID]; !ok {
		return domain.ErrReportNotFound
	}
	s.reports[r.ID] = cloneReport(r)
	return nil
}

func (s *stubReportRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.reports[id]; !ok {
		return domain.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *stubReportRepo) ListByUser(_ context.Context, userID string) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, r := range s.sorted() {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubReportRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, r := range s.reports {
		if r.UserID != nil && *r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *stubReportRepo) LastReportedAt(_ context.Context, userID *string, ip string) (*time.Time, error) {
	var last *time.Time
	for _, r := range s.reports {
		if userID != nil {
			if r.UserID == nil || *r.UserID != *userID {
				continue
			}
		} else {
			if r.UserID != nil || r.IPAddress != ip {
				continue
			}
		}
		if last == nil || r.ReportedAt.After(*last) {
			ts := r.ReportedAt
			last = &ts
		}
	}
	return last, nil
}

func (s *stubReportRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(s.reports)), nil
}

func (s *stubReportRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, r := range s.reports {
		if !r.ReportedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *stubReportRepo) TopAreas(_ context.Context, limit int) ([]ports.AreaCount, error) {
	type key struct{ lat, lon float64 }
	counts := make(map[key]int64)
	for _, r := range s.reports {
		k := key{roundTo2(r.Latitude), roundTo2(r.Longitude)}
		counts[k]++
	}
	out := make([]ports.AreaCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ports.AreaCount{Latitude: k.lat, Longitude: k.lon, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func roundTo2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}

func (s *stubReportRepo) CountByHour(_ context.Context) ([]ports.HourCount, error) {
	counts := make(map[int]int64)
	for _, r := range s.reports {
		counts[r.ReportedAt.Hour()]++
	}
	out := make([]ports.HourCount, 0, len(counts))
	for h, n := range counts {
		out = append(out, ports.HourCount{Hour: h, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

func strPtr(s string) *string { return &s }

func TestReportService_Create_Success(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportService(repo, zerolog.Nop())

	report, err := svc.Create(context.Background(), ports.CreateReportInput{
		Latitude:    50.0,
		Longitude:   19.9,
		Category:    "Traffic",
		Description: "  broken traffic light  ",
		IPAddress:   "1.2.3.4",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if report.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if report.Category != domain.CategoryTraffic {
		t.Fatalf("expected normalized category traffic, got %s", report.Category)
	}
	if report.Message != "broken traffic light" {
		t.Fatalf("expected trimmed message, got %q", report.Message)
	}
	if report.ReportedAt.IsZero() || report.ReportedAt.Location() != time.UTC {
		t.Fatalf("expected UTC ReportedAt, got %v", report.ReportedAt)
	}
	if report.IPAddress != "1.2.3.4" {
		t.Fatalf("expected IP recorded, got %q", report.IPAddress)
	}
	if report.UserID != nil {
		t.Fatalf("expected anonymous report")
	}
}

func TestReportService_Create_UnknownCategoryDefaultsToOther(t *testing.T) {
	svc := NewReportService(newStubReportRepo(), zerolog.Nop())

	report, err := svc.Create(context.Background(), ports.CreateReportInput{
		Latitude: 0, Longitude: 0, Category: "ufo-sighting", IPAddress: "1.2.3.4",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if report.Category != domain.CategoryOther {
		t.Fatalf("expected other, got %s", report.Category)
	}
}

func TestReportService_Create_RejectsOutOfRangeCoordinates(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportService(repo, zerolog.Nop())

	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"lat too low", -90.1, 0},
		{"lat too high", 90.1, 0},
		{"lon too low", 0, -180.1},
		{"lon too high", 0, 180.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), ports.CreateReportInput{
				Latitude: tc.lat, Longitude: tc.lon, IPAddress: "1.2.3.4",
			})
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.HasPrefix(ve.Error(), domain.CodeInvalidCoordinates) {
				t.Fatalf("expected %s prefix, got %q", domain.CodeInvalidCoordinates, ve.Error())
			}
		})
	}
	if n, _ := repo.CountAll(context.Background()); n != 0 {
		t.Fatalf("expected nothing persisted on rejection, got %d", n)
	}
}

func TestReportService_Update_OwnershipEnforced(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportService(repo, zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.CreateReportInput{
		Latitude: 50, Longitude: 19.9, Category: "trash", IPAddress: "1.2.3.4", UserID: strPtr("owner"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(context.Background(), created.ID, ports.UpdateReportInput{
		Category: strPtr("fight"),
	}, "intruder")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, ports.UpdateReportInput{
		Category:    strPtr("fight"),
		Description: strPtr("two people fighting"),
	}, "owner")
	if err != nil {
		t.Fatalf("Update as owner: %v", err)
	}
	if updated.Category != domain.CategoryFight {
		t.Fatalf("expected fight, got %s", updated.Category)
	}
	if updated.Message != "two people fighting" {
		t.Fatalf("unexpected message %q", updated.Message)
	}
	if !updated.ReportedAt.Equal(created.ReportedAt) {
		t.Fatalf("ReportedAt must not change on update")
	}
}

func TestReportService_Update_AnonymousReportNotEditable(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportService(repo, zerolog.Nop())

	created, _ := svc.Create(context.Background(), ports.CreateReportInput{
		Latitude: 50, Longitude: 19.9, IPAddress: "1.2.3.4",
	})

	_, err := svc.Update(context.Background(), created.ID, ports.UpdateReportInput{}, "anybody")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for anonymous report, got %v", err)
	}
}

func TestReportService_Update_NotFound(t *testing.T) {
	svc := NewReportService(newStubReportRepo(), zerolog.Nop())

	_, err := svc.Update(context.Background(), "missing", ports.UpdateReportInput{}, "user")
	if !errors.Is(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestReportService_Delete(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportService(repo, zerolog.Nop())

	created, _ := svc.Create(context.Background(), ports.CreateReportInput{
		Latitude: 50, Longitude: 19.9, IPAddress: "1.2.3.4", UserID: strPtr("owner"),
	})

	if _, err := svc.Delete(context.Background(), created.ID, "intruder"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	deleted, err := svc.Delete(context.Background(), created.ID, "owner")
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got (%v, %v)", deleted, err)
	}

	deleted, err = svc.Delete(context.Background(), created.ID, "owner")
	if err != nil || deleted {
		t.Fatalf("expected (false, nil) for missing report, got (%v, %v)", deleted, err)
	}
}

func TestReportService_HistoryForUser_NewestFirst(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportService(repo, zerolog.Nop())

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		repo.reports[string(rune('a'+i))] = &domain.Report{
			ID:         string(rune('a' + i)),
			ReportedAt: base.Add(time.Duration(i) * time.Minute),
			UserID:     strPtr("u1"),
			IPAddress:  "1.2.3.4",
		}
	}
	repo.reports["x"] = &domain.Report{ID: "x", ReportedAt: base, IPAddress: "9.9.9.9"}

	history, err := svc.HistoryForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("HistoryForUser: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].ReportedAt.After(history[i-1].ReportedAt) {
			t.Fatalf("history not ordered newest first")
		}
	}

	count, err := svc.CountForUser(context.Background(), "u1")
	if err != nil || count != 3 {
		t.Fatalf("expected count 3, got (%d, %v)", count, err)
	}
}

func TestReportService_Search_FiltersAndCombine(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportService(repo, zerolog.Nop())

	now := time.Now().UTC()
	repo.reports["in"] = &domain.Report{ID: "in", ReportedAt: now, Latitude: 50.0, Longitude: 19.9, IPAddress: "1.1.1.1"}
	repo.reports["far"] = &domain.Report{ID: "far", ReportedAt: now, Latitude: 10.0, Longitude: 19.9, IPAddress: "1.1.1.1"}
	repo.reports["old"] = &domain.Report{ID: "old", ReportedAt: now.Add(-48 * time.Hour), Latitude: 50.0, Longitude: 19.9, IPAddress: "1.1.1.1"}

	minLat, maxLat := 45.0, 55.0
	from := now.Add(-time.Hour)
	results, err := svc.Search(context.Background(), ports.SearchReportsFilter{
		MinLat: &minLat, MaxLat: &maxLat, From: &from,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "in" {
		t.Fatalf("expected only 'in', got %d results", len(results))
	}
}
