package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

const maxPenaltyReasonLength = 500

type ApplyPenaltyInput struct {
	PenalizedTeamID int    `json:"penalized_team_id"`
	HomeTeamID      int    `json:"home_team_id"`
	AwayTeamID      int    `json:"away_team_id"`
	Reason          string `json:"reason"`
}

func (in *ApplyPenaltyInput) validate() error {
	if in.PenalizedTeamID <= 0 || in.HomeTeamID <= 0 || in.AwayTeamID <= 0 {
		return ErrInvalidID
	}
	reason, err := validateReason(in.Reason)
	if err != nil {
		return err
	}
	in.Reason = reason
	if in.HomeTeamID == in.AwayTeamID {
		return ErrSameHomeAndAway
	}
	return nil
}

// UpdatePenaltyInput: хозяева и гости применяются только вместе.
type UpdatePenaltyInput struct {
	PenalizedTeamID *int    `json:"penalized_team_id,omitempty"`
	Reason          *string `json:"reason,omitempty"`
	HomeTeamID      *int    `json:"home_team_id,omitempty"`
	AwayTeamID      *int    `json:"away_team_id,omitempty"`
}

func (in *UpdatePenaltyInput) pairGiven() bool {
	return in.HomeTeamID != nil && in.AwayTeamID != nil
}

func (in *UpdatePenaltyInput) validate() error {
	if in.PenalizedTeamID == nil && in.Reason == nil && !in.pairGiven() {
		return ErrNoFieldsToUpdate
	}
	if in.PenalizedTeamID != nil && *in.PenalizedTeamID <= 0 {
		return ErrInvalidID
	}
	if in.Reason != nil {
		reason, err := validateReason(*in.Reason)
		if err != nil {
			return err
		}
		in.Reason = &reason
	}
	if in.pairGiven() {
		if *in.HomeTeamID <= 0 || *in.AwayTeamID <= 0 {
			return ErrInvalidID
		}
		if *in.HomeTeamID == *in.AwayTeamID {
			return ErrSameHomeAndAway
		}
	}
	return nil
}

func validateReason(raw string) (string, error) {
	reason := strings.TrimSpace(raw)
	if reason == "" {
		return "", ErrPenaltyReasonRequired
	}
	if len([]rune(reason)) > maxPenaltyReasonLength {
		return "", ErrPenaltyReasonTooLong
	}
	return reason, nil
}

type PenaltyService interface {
	// ApplyPenalty присуждает техническое поражение: протокол 3:0 против наказанной команды, матч завершён.
	ApplyPenalty(ctx context.Context, matchID int, input ApplyPenaltyInput, requester Requester) (*models.Penalty, error)
	UpdatePenalty(ctx context.Context, matchID int, input UpdatePenaltyInput, requester Requester) (*models.Penalty, error)
	// RemovePenalty удаляет санкцию и протокол, матч возвращается в confirmed.
	RemovePenalty(ctx context.Context, matchID int, requester Requester) error
	GetPenalty(ctx context.Context, matchID int) (*models.Penalty, error)
}

type penaltyService struct {
	penaltyRepo    repositories.PenaltyRepository
	reportRepo     repositories.ReportRepository
	enrollmentRepo repositories.EnrollmentRepository
	matchRepo      repositories.MatchRepository
	guard          *MatchGuard
	reconciler     *LifecycleReconciler
	clock          Clock
	logger         *slog.Logger
}

func NewPenaltyService(
	penaltyRepo repositories.PenaltyRepository,
	reportRepo repositories.ReportRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	matchRepo repositories.MatchRepository,
	guard *MatchGuard,
	reconciler *LifecycleReconciler,
	clock Clock,
	logger *slog.Logger,
) PenaltyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &penaltyService{
		penaltyRepo:    penaltyRepo,
		reportRepo:     reportRepo,
		enrollmentRepo: enrollmentRepo,
		matchRepo:      matchRepo,
		guard:          guard,
		reconciler:     reconciler,
		clock:          clock,
		logger:         logger,
	}
}

func (s *penaltyService) ApplyPenalty(ctx context.Context, matchID int, input ApplyPenaltyInput, requester Requester) (*models.Penalty, error) {
	if matchID <= 0 {
		return nil, ErrInvalidID
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var penalty *models.Penalty
	err := s.guard.Run(ctx, matchID, func(exec repositories.SQLExecutor, match *models.Match) error {
		if !requester.canManageMatch(match) {
			return ErrNotOrganizer
		}

		deadline, err := s.reconciler.Deadline(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if deadline == nil {
			return ErrRuleNotFound
		}
		if !s.clock.Now().After(*deadline) {
			return ErrRegistrationOngoing
		}

		count, err := s.enrollmentRepo.CountByMatch(ctx, exec, matchID)
		if err != nil {
			return storeError("count enrollments", err)
		}
		if count < models.MaxTeamsPerMatch {
			return ErrNotEnoughTeams
		}

		if _, err := s.penaltyRepo.GetByMatchID(ctx, exec, matchID); err == nil {
			return ErrPenaltyExists
		} else if !errors.Is(err, repositories.ErrPenaltyNotFound) {
			return storeError("load penalty", err)
		}

		if err := s.requireEnrolled(ctx, exec, matchID, input.HomeTeamID, input.AwayTeamID); err != nil {
			return err
		}

		report := &models.Report{
			MatchID:    matchID,
			HomeTeamID: input.HomeTeamID,
			AwayTeamID: input.AwayTeamID,
		}
		if !report.ApplyWalkover(input.PenalizedTeamID) {
			return ErrPenalizedNotInPair
		}

		hasReport, err := s.reportRepo.ExistsForMatch(ctx, exec, matchID)
		if err != nil {
			return storeError("check match report", err)
		}
		if hasReport {
			return ErrReportExists
		}

		if err := s.reportRepo.Create(ctx, exec, report); err != nil {
			return storeError("create match report", err)
		}

		p := &models.Penalty{
			MatchID:         matchID,
			PenalizedTeamID: input.PenalizedTeamID,
			Reason:          input.Reason,
			ReportID:        report.ID,
			CreatedBy:       requester.UserID,
		}
		if err := s.penaltyRepo.Create(ctx, exec, p); err != nil {
			if errors.Is(err, repositories.ErrPenaltyConflict) {
				return ErrPenaltyExists
			}
			return storeError("create penalty", err)
		}

		if err := s.setStatus(ctx, exec, match, models.MatchStatusFinished); err != nil {
			return err
		}
		p.Report = report
		penalty = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "penalty applied",
		slog.Int("match_id", matchID),
		slog.Int("penalized_team_id", penalty.PenalizedTeamID),
		slog.Int("report_id", penalty.ReportID),
		slog.Int("requester_id", requester.UserID),
	)
	return penalty, nil
}

func (s *penaltyService) UpdatePenalty(ctx context.Context, matchID int, input UpdatePenaltyInput, requester Requester) (*models.Penalty, error) {
	if matchID <= 0 {
		return nil, ErrInvalidID
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var penalty *models.Penalty
	err := s.guard.Run(ctx, matchID, func(exec repositories.SQLExecutor, match *models.Match) error {
		if !requester.canManageMatch(match) {
			return ErrNotOrganizer
		}

		p, err := s.loadPenalty(ctx, exec, matchID)
		if err != nil {
			return err
		}

		penalizedChanged := false
		if input.PenalizedTeamID != nil && *input.PenalizedTeamID != p.PenalizedTeamID {
			if err := s.requireEnrolled(ctx, exec, matchID, *input.PenalizedTeamID); err != nil {
				return err
			}
			p.PenalizedTeamID = *input.PenalizedTeamID
			penalizedChanged = true
		}
		if input.Reason != nil {
			p.Reason = *input.Reason
		}

		report := p.Report
		if input.pairGiven() {
			if err := s.requireEnrolled(ctx, exec, matchID, *input.HomeTeamID, *input.AwayTeamID); err != nil {
				return err
			}
			report.HomeTeamID = *input.HomeTeamID
			report.AwayTeamID = *input.AwayTeamID
		}

		if input.pairGiven() || penalizedChanged {
			if !report.ApplyWalkover(p.PenalizedTeamID) {
				return ErrPenalizedNotInPair
			}
			if err := s.reportRepo.Update(ctx, exec, report); err != nil {
				if errors.Is(err, repositories.ErrReportNotFound) {
					return ErrReportNotFound
				}
				return storeError("update match report", err)
			}
		}

		if err := s.penaltyRepo.Update(ctx, exec, p); err != nil {
			if errors.Is(err, repositories.ErrPenaltyNotFound) {
				return ErrPenaltyNotFound
			}
			return storeError("update penalty", err)
		}
		penalty = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "penalty updated",
		slog.Int("match_id", matchID), slog.Int("penalized_team_id", penalty.PenalizedTeamID))
	return penalty, nil
}

func (s *penaltyService) RemovePenalty(ctx context.Context, matchID int, requester Requester) error {
	if matchID <= 0 {
		return ErrInvalidID
	}

	err := s.guard.Run(ctx, matchID, func(exec repositories.SQLExecutor, match *models.Match) error {
		if !requester.canManageMatch(match) {
			return ErrNotOrganizer
		}

		p, err := s.penaltyRepo.GetByMatchID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrPenaltyNotFound) {
				return ErrPenaltyNotFound
			}
			return storeError("load penalty", err)
		}

		// Санкция ссылается на протокол, поэтому удаляется первой.
		if err := s.penaltyRepo.DeleteByMatchID(ctx, exec, matchID); err != nil {
			return storeError("delete penalty", err)
		}
		if err := s.reportRepo.Delete(ctx, exec, p.ReportID); err != nil && !errors.Is(err, repositories.ErrReportNotFound) {
			return storeError("delete match report", err)
		}

		return s.setStatus(ctx, exec, match, models.MatchStatusConfirmed)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "penalty removed", slog.Int("match_id", matchID), slog.Int("requester_id", requester.UserID))
	return nil
}

func (s *penaltyService) GetPenalty(ctx context.Context, matchID int) (*models.Penalty, error) {
	return s.loadPenalty(ctx, nil, matchID)
}

// loadPenalty возвращает санкцию вместе с протоколом.
func (s *penaltyService) loadPenalty(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Penalty, error) {
	p, err := s.penaltyRepo.GetByMatchID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrPenaltyNotFound) {
			return nil, ErrPenaltyNotFound
		}
		return nil, storeError("load penalty", err)
	}
	report, err := s.reportRepo.GetByID(ctx, exec, p.ReportID)
	if err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, storeError("load match report", err)
	}
	p.Report = report
	return p, nil
}

func (s *penaltyService) requireEnrolled(ctx context.Context, exec repositories.SQLExecutor, matchID int, teamIDs ...int) error {
	for _, teamID := range teamIDs {
		enrolled, err := s.enrollmentRepo.Exists(ctx, exec, matchID, teamID)
		if err != nil {
			return storeError("check enrollment", err)
		}
		if !enrolled {
			return ErrTeamNotInMatch
		}
	}
	return nil
}

func (s *penaltyService) setStatus(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, status models.MatchStatus) error {
	if match.Status == status {
		return nil
	}
	if err := s.matchRepo.UpdateStatus(ctx, exec, match.ID, status); err != nil {
		return mapMatchRepoError(err, "update match status")
	}
	match.Status = status
	return nil
}
