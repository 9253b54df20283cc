package ports

import (
	"context"

	"github.com/safecity/incident-api/internal/core/domain"
)

// AdminUser is a user row in the admin listing, including how many reports
// the user has submitted.
type AdminUser struct {
	User         *domain.User
	ReportsCount int64
}

// TopArea is one entry in the most-active-areas statistic.
type TopArea struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// HourlyStat is the report count for a single hour of day. All 24 hours are
// always present in stats output, zero-filled when empty.
type HourlyStat struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// Stats is the aggregate view served to administrators. FalseReports and
// VerifiedReports are placeholders pinned to zero until a verification
// workflow exists.
type Stats struct {
	TotalReports    int64        `json:"totalReports"`
	ReportsLast24h  int64        `json:"reportsLast24h"`
	FalseReports    int64        `json:"falseReports"`
	VerifiedReports int64        `json:"verifiedReports"`
	TopAreas        []TopArea    `json:"topAreas"`
	ReportsByHour   []HourlyStat `json:"reportsByHour"`
}

// StatsCache is a short-lived cache for the computed stats payload.
// Get returns (nil, nil) on a miss.
type StatsCache interface {
	Get(ctx context.Context) (*Stats, error)
	Set(ctx context.Context, stats *Stats) error
}

type AdminService interface {
	// DeleteReport removes any report regardless of ownership.
	// Returns false when the report does not exist.
	DeleteReport(ctx context.Context, id string) (bool, error)
	// ListUsers clamps limit to [1,100] and offset to >= 0.
	ListUsers(ctx context.Context, limit, offset int) ([]AdminUser, error)
	ComputeStats(ctx context.Context) (*Stats, error)
}
