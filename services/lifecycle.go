package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

// ReconcileTrigger описывает, почему запускается пересчёт статуса.
type ReconcileTrigger int

const (
	// TriggerRead — ленивый пересчёт при чтении или плановый обход.
	TriggerRead ReconcileTrigger = iota
	TriggerEnrollmentChange
	// TriggerRuleChange — правило создано или изменено; только он может вывести матч из cancelled.
	TriggerRuleChange
)

// LifecycleInputs — всё, от чего зависит статус матча.
type LifecycleInputs struct {
	Now            time.Time
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	EnrolledCount  int
	Deadline       *time.Time
}

// DeriveStatus вычисляет статус нетерминального матча. Правила проверяются по порядку,
// срабатывает первое подходящее.
func DeriveStatus(in LifecycleInputs) models.MatchStatus {
	switch {
	case !in.Now.Before(in.ScheduledEnd):
		return models.MatchStatusFinished
	case !in.Now.Before(in.ScheduledStart):
		return models.MatchStatusInProgress
	case in.Deadline != nil && in.Now.After(*in.Deadline):
		if in.EnrolledCount < models.MaxTeamsPerMatch {
			return models.MatchStatusCancelled
		}
		return models.MatchStatusConfirmed
	case in.EnrolledCount >= models.MaxTeamsPerMatch:
		return models.MatchStatusFull
	default:
		return models.MatchStatusOpen
	}
}

// LifecycleReconciler приводит сохранённый статус матча к вычисленному.
// Вызывающий код должен держать блокировку матча.
type LifecycleReconciler struct {
	matchRepo      repositories.MatchRepository
	ruleRepo       repositories.RuleRepository
	enrollmentRepo repositories.EnrollmentRepository
	clock          Clock
	loc            *time.Location
	logger         *slog.Logger
}

func NewLifecycleReconciler(
	matchRepo repositories.MatchRepository,
	ruleRepo repositories.RuleRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	clock Clock,
	loc *time.Location,
	logger *slog.Logger,
) *LifecycleReconciler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleReconciler{
		matchRepo:      matchRepo,
		ruleRepo:       ruleRepo,
		enrollmentRepo: enrollmentRepo,
		clock:          clock,
		loc:            loc,
		logger:         logger,
	}
}

// Reconcile пересчитывает статус match и сохраняет его, если он изменился.
// match.Status меняется только после успешной записи. Возвращает true, если была запись.
func (r *LifecycleReconciler) Reconcile(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, trigger ReconcileTrigger) (bool, error) {
	count, err := r.enrollmentRepo.CountByMatch(ctx, exec, match.ID)
	if err != nil {
		return false, storeError("count enrollments", err)
	}
	match.EnrolledCount = count

	if match.Status == models.MatchStatusFinished {
		return false, nil
	}
	if match.Status == models.MatchStatusCancelled && trigger != TriggerRuleChange {
		return false, nil
	}

	deadline, err := r.deadline(ctx, exec, match.ID)
	if err != nil {
		return false, err
	}

	next := DeriveStatus(LifecycleInputs{
		Now:            r.clock.Now(),
		ScheduledStart: match.ScheduledStart,
		ScheduledEnd:   match.ScheduledEnd(),
		EnrolledCount:  count,
		Deadline:       deadline,
	})
	if next == match.Status {
		return false, nil
	}

	if err := r.matchRepo.UpdateStatus(ctx, exec, match.ID, next); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return false, ErrMatchNotFound
		}
		return false, storeError("update match status", err)
	}

	r.logger.InfoContext(ctx, "match status reconciled",
		slog.Int("match_id", match.ID),
		slog.String("from", string(match.Status)),
		slog.String("to", string(next)),
		slog.Int("enrolled", count),
	)
	match.Status = next
	return true, nil
}

// Deadline возвращает момент окончания регистрации на матч или nil, если правила нет.
func (r *LifecycleReconciler) Deadline(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*time.Time, error) {
	return r.deadline(ctx, exec, matchID)
}

func (r *LifecycleReconciler) deadline(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*time.Time, error) {
	rule, err := r.ruleRepo.GetByMatchID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return nil, nil
		}
		return nil, storeError("load eligibility rule", err)
	}
	d, err := rule.Deadline(r.loc)
	if err != nil {
		// Битое время в БД не должно ломать чтение матча: считаем, что дедлайна нет.
		r.logger.WarnContext(ctx, "ignoring unparseable registration deadline",
			slog.Int("match_id", matchID), slog.Any("error", err))
		return nil, nil
	}
	return &d, nil
}
