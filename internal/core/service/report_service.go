package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
)

// ReportService implements report creation, ownership-checked mutation, and
// search.
type ReportService struct {
	repo   ports.ReportRepository
	logger zerolog.Logger
}

func NewReportService(repo ports.ReportRepository, logger zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger}
}

// Create validates coordinates, normalizes the category, and persists a new
// report stamped with the current UTC time. The caller must already have
// passed the rate-limit gate.
func (s *ReportService) Create(ctx context.Context, input ports.CreateReportInput) (*domain.Report, error) {
	if input.Latitude < -90 || input.Latitude > 90 {
		return nil, domain.NewValidationError(domain.CodeInvalidCoordinates, "Latitude must be between -90 and 90")
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return nil, domain.NewValidationError(domain.CodeInvalidCoordinates, "Longitude must be between -180 and 180")
	}

	report := &domain.Report{
		ID:         uuid.NewString(),
		ReportedAt: time.Now().UTC(),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Category:   domain.NormalizeCategory(input.Category),
		Message:    strings.TrimSpace(input.Description),
		UserID:     input.UserID,
		IPAddress:  input.IPAddress,
	}

	if err := s.repo.Insert(ctx, report); err != nil {
		s.logger.Error().Err(err).Msg("failed to insert report")
		return nil, err
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("category", string(report.Category)).
		Str("ip", report.IPAddress).
		Msg("report created")

	return report, nil
}

func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	return s.repo.FindByID(ctx, id)
}

// ListActive returns all reports, newest first. "Active" denotes that no
// soft-delete or expiry filtering exists yet.
func (s *ReportService) ListActive(ctx context.Context) ([]*domain.Report, error) {
	return s.repo.ListAll(ctx)
}

func (s *ReportService) Search(ctx context.Context, filter ports.SearchReportsFilter) ([]*domain.Report, error) {
	return s.repo.Search(ctx, filter)
}

// Update applies the patch to the report after verifying ownership. Fields
// present in the patch overwrite the stored values; ReportedAt and the
// submitting IP are immutable.
//
// Unlike Create, coordinate patches are not range-revalidated here.
func (s *ReportService) Update(ctx context.Context, id string, patch ports.UpdateReportInput, requestingUserID string) (*domain.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.OwnedBy(requestingUserID) {
		s.logger.Warn().
			Str("report_id", id).
			Str("requesting_user", requestingUserID).
			Msg("update rejected, not the owner")
		return nil, domain.ErrForbidden
	}

	if patch.Latitude != nil {
		report.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		report.Longitude = *patch.Longitude
	}
	if patch.Category != nil {
		report.Category = domain.NormalizeCategory(*patch.Category)
	}
	if patch.Description != nil {
		report.Message = strings.TrimSpace(*patch.Description)
	}

	if err := s.repo.Update(ctx, report); err != nil {
		s.logger.Error().Err(err).Str("report_id", id).Msg("failed to update report")
		return nil, err
	}

	s.logger.Info().Str("report_id", id).Str("user_id", requestingUserID).Msg("report updated")
	return report, nil
}

// Delete removes the report after verifying ownership. Returns false when the
// report does not exist.
func (s *ReportService) Delete(ctx context.Context, id string, requestingUserID string) (bool, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return false, nil
		}
		return false, err
	}

	if !report.OwnedBy(requestingUserID) {
		s.logger.Warn().
			Str("report_id", id).
			Str("requesting_user", requestingUserID).
			Msg("delete rejected, not the owner")
		return false, domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}

	s.logger.Info().Str("report_id", id).Str("user_id", requestingUserID).Msg("report deleted")
	return true, nil
}

func (s *ReportService) CountForUser(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountByUser(ctx, userID)
}

func (s *ReportService) HistoryForUser(ctx context.Context, userID string) ([]*domain.Report, error) {
	return s.repo.ListByUser(ctx, userID)
}
