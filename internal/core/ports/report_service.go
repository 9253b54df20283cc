package ports

import (
	"context"

	"github.com/safecity/incident-api/internal/core/domain"
)

// CreateReportInput carries all data needed to create a new report.
// UserID is nil for anonymous submissions.
type CreateReportInput struct {
	Latitude    float64
	Longitude   float64
	Category    string
	Description string
	IPAddress   string
	UserID      *string
}

// UpdateReportInput is a patch: only non-nil fields overwrite the report.
type UpdateReportInput struct {
	Latitude    *float64
	Longitude   *float64
	Category    *string
	Description *string
}

// ReportService defines use-case operations for reports.
type ReportService interface {
	// Create persists a new report. The rate-limit gate must already have
	// passed at the call site; Create does not re-check it.
	Create(ctx context.Context, input CreateReportInput) (*domain.Report, error)
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	ListActive(ctx context.Context) ([]*domain.Report, error)
	Search(ctx context.Context, filter SearchReportsFilter) ([]*domain.Report, error)
	Update(ctx context.Context, id string, patch UpdateReportInput, requestingUserID string) (*domain.Report, error)
	Delete(ctx context.Context, id string, requestingUserID string) (bool, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
	HistoryForUser(ctx context.Context, userID string) ([]*domain.Report, error)
}

// RateLimitService decides whether an identity may submit a report now.
type RateLimitService interface {
	// CanSubmit returns (allowed, secondsRemaining). secondsRemaining is 0
	// when allowed and the whole seconds left in the window otherwise.
	CanSubmit(ctx context.Context, userID *string, ip string) (bool, int, error)
}
