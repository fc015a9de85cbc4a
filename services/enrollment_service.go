package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

// Eviction — команда, снятая с матча при проверке соответствия правилу.
type Eviction struct {
	TeamID int    `json:"team_id"`
	Reason string `json:"reason"`
}

type EnrollmentService interface {
	Enroll(ctx context.Context, matchID, teamID int, requester Requester) error
	Withdraw(ctx context.Context, matchID, teamID int, requester Requester) error
	ListEnrollments(ctx context.Context, matchID int) ([]*models.Enrollment, error)
	// SweepCompliance снимает с матча команды, которые больше не проходят по правилу.
	SweepCompliance(ctx context.Context, matchID int, requester Requester) ([]Eviction, error)
}

type enrollmentService struct {
	enrollmentRepo repositories.EnrollmentRepository
	ruleRepo       repositories.RuleRepository
	teamRepo       repositories.TeamRepository
	penaltyRepo    repositories.PenaltyRepository
	guard          *MatchGuard
	reconciler     *LifecycleReconciler
	eligibility    *EligibilityChecker
	schedule       *ScheduleConflictDetector
	clock          Clock
	logger         *slog.Logger
}

func NewEnrollmentService(
	enrollmentRepo repositories.EnrollmentRepository,
	ruleRepo repositories.RuleRepository,
	teamRepo repositories.TeamRepository,
	penaltyRepo repositories.PenaltyRepository,
	guard *MatchGuard,
	reconciler *LifecycleReconciler,
	eligibility *EligibilityChecker,
	schedule *ScheduleConflictDetector,
	clock Clock,
	logger *slog.Logger,
) EnrollmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		ruleRepo:       ruleRepo,
		teamRepo:       teamRepo,
		penaltyRepo:    penaltyRepo,
		guard:          guard,
		reconciler:     reconciler,
		eligibility:    eligibility,
		schedule:       schedule,
		clock:          clock,
		logger:         logger,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, matchID, teamID int, requester Requester) error {
	if matchID <= 0 || teamID <= 0 {
		return ErrInvalidID
	}

	// Сохранённый статус мог устареть: RunChecked пересчитывает его до проверок.
	err := s.guard.RunChecked(ctx, matchID, s.reconciler,
		func(exec repositories.SQLExecutor, match *models.Match) error {
			return s.checkEnroll(ctx, exec, match, teamID, requester)
		},
		func(exec repositories.SQLExecutor, match *models.Match) error {
			enrollment := &models.Enrollment{MatchID: matchID, TeamID: teamID}
			if err := s.enrollmentRepo.Create(ctx, exec, enrollment); err != nil {
				switch {
				case errors.Is(err, repositories.ErrEnrollmentConflict):
					return ErrAlreadyEnrolled
				case errors.Is(err, repositories.ErrEnrollmentTeamInvalid):
					return ErrTeamNotFound
				case errors.Is(err, repositories.ErrMatchNotFound):
					return ErrMatchNotFound
				}
				return storeError("create enrollment", err)
			}

			_, err := s.reconciler.Reconcile(ctx, exec, match, TriggerEnrollmentChange)
			return err
		},
	)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "team enrolled",
		slog.Int("match_id", matchID), slog.Int("team_id", teamID), slog.Int("requester_id", requester.UserID))
	return nil
}

// checkEnroll проверяет условия записи по порядку. match уже пересчитан.
func (s *enrollmentService) checkEnroll(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, teamID int, requester Requester) error {
	if match.Status == models.MatchStatusCancelled {
		return ErrMatchCancelled
	}
	if match.Status != models.MatchStatusOpen {
		return fmt.Errorf("%w (status %s)", ErrMatchNotOpen, match.Status)
	}

	rule, err := s.loadRule(ctx, exec, match.ID)
	if err != nil {
		return err
	}
	if rule != nil {
		deadline, err := s.reconciler.Deadline(ctx, exec, match.ID)
		if err != nil {
			return err
		}
		if deadline != nil && s.clock.Now().After(*deadline) {
			return ErrRegistrationClosed
		}
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, exec, match.ID, teamID)
	if err != nil {
		return storeError("check enrollment", err)
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}

	team, err := s.teamRepo.GetByID(ctx, exec, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return storeError("load team", err)
	}
	if !requester.IsAdmin() && requester.UserID != team.CaptainID {
		return ErrUserMustBeCaptain
	}
	if team.IsDeleted() {
		return ErrTeamDeleted
	}

	conflict, err := s.schedule.Detect(ctx, exec, teamID, match)
	if err != nil {
		return err
	}
	if conflict != nil {
		return fmt.Errorf("%w: %s", ErrScheduleConflict, conflict.Description())
	}

	result, err := s.eligibility.Check(ctx, exec, teamID, rule)
	if err != nil {
		return err
	}
	if !result.Eligible {
		return fmt.Errorf("%w: %s", ErrTeamNotEligible, result.Reason)
	}

	if match.EnrolledCount >= models.MaxTeamsPerMatch {
		return ErrMatchFull
	}
	return nil
}

func (s *enrollmentService) Withdraw(ctx context.Context, matchID, teamID int, requester Requester) error {
	if matchID <= 0 || teamID <= 0 {
		return ErrInvalidID
	}

	err := s.guard.RunChecked(ctx, matchID, s.reconciler,
		func(exec repositories.SQLExecutor, match *models.Match) error {
			return s.checkWithdraw(ctx, exec, match, teamID, requester)
		},
		func(exec repositories.SQLExecutor, match *models.Match) error {
			if err := s.enrollmentRepo.Delete(ctx, exec, matchID, teamID); err != nil {
				if errors.Is(err, repositories.ErrEnrollmentNotFound) {
					return ErrNotEnrolled
				}
				return storeError("delete enrollment", err)
			}

			_, err := s.reconciler.Reconcile(ctx, exec, match, TriggerEnrollmentChange)
			return err
		},
	)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "team withdrawn",
		slog.Int("match_id", matchID), slog.Int("team_id", teamID), slog.Int("requester_id", requester.UserID))
	return nil
}

func (s *enrollmentService) checkWithdraw(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, teamID int, requester Requester) error {
	enrolled, err := s.enrollmentRepo.Exists(ctx, exec, match.ID, teamID)
	if err != nil {
		return storeError("check enrollment", err)
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	manager := requester.canManageMatch(match)
	if !manager {
		team, err := s.teamRepo.GetByID(ctx, exec, teamID)
		if err != nil && !errors.Is(err, repositories.ErrTeamNotFound) {
			return storeError("load team", err)
		}
		if team == nil || team.CaptainID != requester.UserID {
			return ErrWithdrawForbidden
		}
	}

	if match.Status == models.MatchStatusFinished && !manager {
		return ErrFinishedWithdrawDenied
	}

	if _, err := s.penaltyRepo.GetByMatchID(ctx, exec, match.ID); err == nil {
		return ErrMatchIsPenalized
	} else if !errors.Is(err, repositories.ErrPenaltyNotFound) {
		return storeError("load penalty", err)
	}
	return nil
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, matchID int) ([]*models.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, storeError("list enrollments", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) SweepCompliance(ctx context.Context, matchID int, requester Requester) ([]Eviction, error) {
	evictions := make([]Eviction, 0)

	err := s.guard.Run(ctx, matchID, func(exec repositories.SQLExecutor, match *models.Match) error {
		if !requester.canManageMatch(match) {
			return ErrNotOrganizer
		}

		rule, err := s.loadRule(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if rule == nil {
			return nil
		}

		enrollments, err := s.enrollmentRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return storeError("list enrollments", err)
		}

		for _, e := range enrollments {
			result, err := s.eligibility.Check(ctx, exec, e.TeamID, rule)
			if err != nil {
				return err
			}
			if result.Eligible {
				continue
			}
			if err := s.enrollmentRepo.Delete(ctx, exec, matchID, e.TeamID); err != nil {
				return storeError("delete enrollment", err)
			}
			evictions = append(evictions, Eviction{TeamID: e.TeamID, Reason: result.Reason})
		}

		if len(evictions) == 0 {
			return nil
		}
		_, err = s.reconciler.Reconcile(ctx, exec, match, TriggerEnrollmentChange)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range evictions {
		s.logger.WarnContext(ctx, "team evicted by compliance sweep",
			slog.Int("match_id", matchID), slog.Int("team_id", ev.TeamID), slog.String("reason", ev.Reason))
	}
	return evictions, nil
}

func (s *enrollmentService) loadRule(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.EligibilityRule, error) {
	rule, err := s.ruleRepo.GetByMatchID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return nil, nil
		}
		return nil, storeError("load eligibility rule", err)
	}
	return rule, nil
}
