package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
)

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 100
	topAreasLimit       = 10
)

// AdminService implements privileged moderation and statistics operations.
// The stats cache is optional; when nil every call recomputes.
type AdminService struct {
	reports ports.ReportRepository
	users   ports.UserRepository
	cache   ports.StatsCache
	logger  zerolog.Logger
}

func NewAdminService(reports ports.ReportRepository, users ports.UserRepository, cache ports.StatsCache, logger zerolog.Logger) *AdminService {
	return &AdminService{reports: reports, users: users, cache: cache, logger: logger}
}

// DeleteReport removes any report without an ownership check. Returns false
// when the report does not exist.
func (s *AdminService) DeleteReport(ctx context.Context, id string) (bool, error) {
	if _, err := s.reports.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			s.logger.Warn().Str("report_id", id).Msg("report not found for admin deletion")
			return false, nil
		}
		return false, err
	}

	if err := s.reports.Delete(ctx, id); err != nil {
		return false, err
	}

	s.logger.Info().Str("report_id", id).Msg("report deleted by admin")
	return true, nil
}

// ListUsers returns a page of users, newest first, each with its report
// count. Limit is clamped to [1,100] and offset to >= 0.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]ports.AdminUser, error) {
	if limit < 1 {
		limit = defaultUserPageSize
	}
	if limit > maxUserPageSize {
		limit = maxUserPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]ports.AdminUser, 0, len(users))
	for _, u := range users {
		count, err := s.reports.CountByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, ports.AdminUser{User: u, ReportsCount: count})
	}

	s.logger.Info().Int("count", len(result)).Int("limit", limit).Int("offset", offset).Msg("admin listed users")
	return result, nil
}

// ComputeStats aggregates the report statistics. FalseReports and
// VerifiedReports stay zero until a verification workflow exists. Cache
// failures degrade to recomputation, never to an error.
func (s *AdminService) ComputeStats(ctx context.Context) (*ports.Stats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("stats cache read failed, recomputing")
		} else if cached != nil {
			return cached, nil
		}
	}

	total, err := s.reports.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	last24h, err := s.reports.CountSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	areas, err := s.reports.TopAreas(ctx, topAreasLimit)
	if err != nil {
		return nil, err
	}

	hours, err := s.reports.CountByHour(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ports.Stats{
		TotalReports:   total,
		ReportsLast24h: last24h,
		TopAreas:       make([]ports.TopArea, 0, len(areas)),
		ReportsByHour:  zeroFilledHours(hours),
	}
	for _, a := range areas {
		stats.TopAreas = append(stats.TopAreas, ports.TopArea{
			Name:  fmt.Sprintf("Area %.2f, %.2f", a.Latitude, a.Longitude),
			Count: a.Count,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn().Err(err).Msg("stats cache write failed")
		}
	}

	s.logger.Info().Int64("total", total).Int64("last_24h", last24h).Msg("stats computed")
	return stats, nil
}

// zeroFilledHours expands sparse hour buckets into all 24 hours, 0-23, with
// zero counts for hours that have no reports.
func zeroFilledHours(buckets []ports.HourCount) []ports.HourlyStat {
	byHour := make(map[int]int64, len(buckets))
	for _, b := range buckets {
		byHour[b.Hour] = b.Count
	}

	out := make([]ports.HourlyStat, 24)
	for h := 0; h < 24; h++ {
		out[h] = ports.HourlyStat{Hour: h, Count: byHour[h]}
	}
	return out
}
