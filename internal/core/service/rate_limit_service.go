package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-api/internal/core/ports"
)

// rateLimitWindow is the fixed interval during which a second submission from
// the same identity is rejected. This is a single global fixed window, not a
// sliding window or token bucket: a determined client can still submit once
// per window indefinitely. It throttles accidental double-submits, it is not
// a defense against sustained abuse.
const rateLimitWindow = 5 * time.Second

// RateLimitService gates report submission per identity. The decision is
// derived entirely from the persisted store (no in-memory counters), so it
// stays correct across multiple server instances sharing one database, at the
// cost of a round-trip per attempt.
type RateLimitService struct {
	reports ports.ReportRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewRateLimitService(reports ports.ReportRepository, logger zerolog.Logger) *RateLimitService {
	return &RateLimitService{reports: reports, logger: logger, now: time.Now}
}

// CanSubmit reports whether the identity may submit a new report now.
// Authenticated submissions are keyed on userID; anonymous ones on the exact
// IP string. Returns the whole seconds remaining in the window when denied.
func (s *RateLimitService) CanSubmit(ctx context.Context, userID *string, ip string) (bool, int, error) {
	last, err := s.reports.LastReportedAt(ctx, userID, ip)
	if err != nil {
		return false, 0, err
	}

	identifier := "ip:" + ip
	if userID != nil {
		identifier = "user:" + *userID
	}

	if last == nil {
		s.logger.Debug().Str("identity", identifier).Msg("no previous reports, allowing")
		return true, 0, nil
	}

	elapsed := int(s.now().UTC().Sub(*last).Seconds())
	if elapsed >= int(rateLimitWindow.Seconds()) {
		s.logger.Debug().Str("identity", identifier).Int("elapsed_s", elapsed).Msg("window elapsed, allowing")
		return true, 0, nil
	}

	remaining := int(rateLimitWindow.Seconds()) - elapsed
	s.logger.Warn().Str("identity", identifier).Int("seconds_remaining", remaining).Msg("rate limited")
	return false, remaining, nil
}
