package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

// DeadlineDateLayout — формат даты окончания регистрации во входных данных.
const DeadlineDateLayout = "2006-01-02"

type CreateRuleInput struct {
	RegistrationDeadlineDate string        `json:"registration_deadline_date"`
	RegistrationDeadlineTime *string       `json:"registration_deadline_time,omitempty"`
	MinimumAge               *int          `json:"minimum_age,omitempty"`
	MaximumAge               *int          `json:"maximum_age,omitempty"`
	Gender                   models.Gender `json:"gender"`
}

type UpdateRuleInput struct {
	RegistrationDeadlineDate *string        `json:"registration_deadline_date,omitempty"`
	RegistrationDeadlineTime *string        `json:"registration_deadline_time,omitempty"`
	MinimumAge               *int           `json:"minimum_age,omitempty"`
	MaximumAge               *int           `json:"maximum_age,omitempty"`
	Gender                   *models.Gender `json:"gender,omitempty"`
}

func (in UpdateRuleInput) isEmpty() bool {
	return in.RegistrationDeadlineDate == nil && in.RegistrationDeadlineTime == nil &&
		in.MinimumAge == nil && in.MaximumAge == nil && in.Gender == nil
}

type RuleService interface {
	CreateRule(ctx context.Context, matchID int, input CreateRuleInput, requester Requester) (*models.EligibilityRule, error)
	GetRule(ctx context.Context, matchID int) (*models.EligibilityRule, error)
	UpdateRule(ctx context.Context, matchID int, input UpdateRuleInput, requester Requester) (*models.EligibilityRule, error)
}

type ruleService struct {
	ruleRepo   repositories.RuleRepository
	guard      *MatchGuard
	reconciler *LifecycleReconciler
	loc        *time.Location
	logger     *slog.Logger
}

func NewRuleService(
	ruleRepo repositories.RuleRepository,
	guard *MatchGuard,
	reconciler *LifecycleReconciler,
	loc *time.Location,
	logger *slog.Logger,
) RuleService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ruleService{
		ruleRepo:   ruleRepo,
		guard:      guard,
		reconciler: reconciler,
		loc:        loc,
		logger:     logger,
	}
}

func (s *ruleService) CreateRule(ctx context.Context, matchID int, input CreateRuleInput, requester Requester) (*models.EligibilityRule, error) {
	if strings.TrimSpace(input.RegistrationDeadlineDate) == "" {
		return nil, ErrDeadlineRequired
	}
	date, err := s.parseDate(input.RegistrationDeadlineDate)
	if err != nil {
		return nil, err
	}

	rule := &models.EligibilityRule{
		MatchID:                  matchID,
		RegistrationDeadlineDate: date,
		RegistrationDeadlineTime: normalizeDeadlineTime(input.RegistrationDeadlineTime),
		MinimumAge:               models.MinRuleAge,
		MaximumAge:               models.MaxRuleAge,
		Gender:                   input.Gender,
	}
	if input.MinimumAge != nil {
		rule.MinimumAge = *input.MinimumAge
	}
	if input.MaximumAge != nil {
		rule.MaximumAge = *input.MaximumAge
	}

	err = s.guard.Run(ctx, matchID, func(exec repositories.SQLExecutor, match *models.Match) error {
		if !requester.canManageMatch(match) {
			return ErrNotOrganizer
		}
		if err := s.validateRule(rule, match); err != nil {
			return err
		}

		_, err := s.ruleRepo.GetByMatchID(ctx, exec, matchID)
		switch {
		case err == nil:
			return ErrRuleExists
		case !errors.Is(err, repositories.ErrRuleNotFound):
			return storeError("load eligibility rule", err)
		}

		if err := s.ruleRepo.Create(ctx, exec, rule); err != nil {
			if errors.Is(err, repositories.ErrRuleConflict) {
				return ErrRuleExists
			}
			return storeError("create eligibility rule", err)
		}

		_, err = s.reconciler.Reconcile(ctx, exec, match, TriggerRuleChange)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "eligibility rule created", slog.Int("match_id", matchID), slog.String("gender", string(rule.Gender)))
	return rule, nil
}

func (s *ruleService) GetRule(ctx context.Context, matchID int) (*models.EligibilityRule, error) {
	rule, err := s.ruleRepo.GetByMatchID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, storeError("load eligibility rule", err)
	}
	return rule, nil
}

func (s *ruleService) UpdateRule(ctx context.Context, matchID int, input UpdateRuleInput, requester Requester) (*models.EligibilityRule, error) {
	if input.isEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	var updated *models.EligibilityRule
	err := s.guard.Run(ctx, matchID, func(exec repositories.SQLExecutor, match *models.Match) error {
		if !requester.canManageMatch(match) {
			return ErrNotOrganizer
		}

		rule, err := s.ruleRepo.GetByMatchID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrRuleNotFound) {
				return ErrRuleNotFound
			}
			return storeError("load eligibility rule", err)
		}

		if input.RegistrationDeadlineDate != nil {
			date, err := s.parseDate(*input.RegistrationDeadlineDate)
			if err != nil {
				return err
			}
			rule.RegistrationDeadlineDate = date
		}
		if input.RegistrationDeadlineTime != nil {
			rule.RegistrationDeadlineTime = normalizeDeadlineTime(input.RegistrationDeadlineTime)
		}
		if input.MinimumAge != nil {
			rule.MinimumAge = *input.MinimumAge
		}
		if input.MaximumAge != nil {
			rule.MaximumAge = *input.MaximumAge
		}
		if input.Gender != nil {
			rule.Gender = *input.Gender
		}

		if err := s.validateRule(rule, match); err != nil {
			return err
		}
		if err := s.ruleRepo.Update(ctx, exec, rule); err != nil {
			if errors.Is(err, repositories.ErrRuleNotFound) {
				return ErrRuleNotFound
			}
			return storeError("update eligibility rule", err)
		}

		if _, err := s.reconciler.Reconcile(ctx, exec, match, TriggerRuleChange); err != nil {
			return err
		}
		updated = rule
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "eligibility rule updated", slog.Int("match_id", matchID))
	return updated, nil
}

func (s *ruleService) parseDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation(DeadlineDateLayout, strings.TrimSpace(raw), s.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDeadlineDate
	}
	return date, nil
}

func (s *ruleService) validateRule(rule *models.EligibilityRule, match *models.Match) error {
	if !rule.Gender.IsValid() {
		return ErrInvalidGender
	}
	if rule.MinimumAge < models.MinRuleAge || rule.MaximumAge > models.MaxRuleAge || rule.MinimumAge > rule.MaximumAge {
		return ErrInvalidAgeRange
	}
	// Дата из БД приходит без зоны, поэтому переносим её в зону сервиса.
	y, m, d := rule.RegistrationDeadlineDate.Date()
	rule.RegistrationDeadlineDate = time.Date(y, m, d, 0, 0, 0, 0, s.loc)

	deadline, err := rule.Deadline(s.loc)
	if err != nil {
		return ErrInvalidDeadlineTime
	}
	if deadline.After(match.ScheduledStart) {
		return ErrDeadlineAfterStart
	}
	return nil
}

func normalizeDeadlineTime(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
