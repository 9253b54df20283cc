package ports

import (
	"context"
	"time"

	"github.com/safecity/incident-api/internal/core/domain"
)

// SearchReportsFilter carries the optional bounds for a report search.
// Every set field is AND-combined; zero-value pointers mean "no filter".
// Range sanity (min <= max, from <= to) is validated at the API boundary
// before the filter reaches a repository.
type SearchReportsFilter struct {
	From   *time.Time
	To     *time.Time
	MinLat *float64
	MaxLat *float64
	MinLon *float64
	MaxLon *float64
}

// AreaCount is one aggregation bucket of reports grouped by coordinates
// rounded to two decimals.
type AreaCount struct {
	Latitude  float64
	Longitude float64
	Count     int64
}

// HourCount is one aggregation bucket of reports grouped by the hour of day
// (0-23) they were reported at.
type HourCount struct {
	Hour  int
	Count int64
}

// ReportRepository defines persistence operations for reports.
type ReportRepository interface {
	Insert(ctx context.Context, r *domain.Report) error
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	// ListAll returns every report ordered by reported_at descending.
	ListAll(ctx context.Context) ([]*domain.Report, error)
	Search(ctx context.Context, filter SearchReportsFilter) ([]*domain.Report, error)
	Update(ctx context.Context, r *domain.Report) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's reports ordered by reported_at descending.
	ListByUser(ctx context.Context, userID string) ([]*domain.Report, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// LastReportedAt returns the most recent reported_at for the identity:
	// scoped to userID when non-nil, otherwise to anonymous reports
	// (user_id absent) with the exact IP. Returns nil when no report exists.
	LastReportedAt(ctx context.Context, userID *string, ip string) (*time.Time, error)
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	// TopAreas returns up to limit buckets of reports grouped by coordinates
	// rounded to two decimals, ordered by count descending.
	TopAreas(ctx context.Context, limit int) ([]AreaCount, error)
	// CountByHour returns buckets for hours that have at least one report.
	CountByHour(ctx context.Context) ([]HourCount, error)
}
