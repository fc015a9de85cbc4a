package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
	"golang.org/x/sync/errgroup"
)

const maxMatchTitleLength = 200

type MatchSort string

const (
	SortStartAsc  MatchSort = "start_asc"
	SortStartDesc MatchSort = "start_desc"
	SortTitle     MatchSort = "title"
)

type CreateMatchInput struct {
	Title           string    `json:"title"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Location        *string   `json:"location,omitempty"`
}

func (in *CreateMatchInput) validate(now time.Time) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrMatchTitleRequired
	}
	if len(in.Title) > maxMatchTitleLength {
		return ErrMatchTitleTooLong
	}
	if in.ScheduledStart.IsZero() {
		return ErrMatchStartRequired
	}
	if !in.ScheduledStart.After(now) {
		return ErrMatchStartInPast
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return ErrMatchInvalidDuration
	}
	return nil
}

type ListMatchesFilter struct {
	Statuses   []models.MatchStatus
	DateFrom   *time.Time
	TextSearch string
	Sort       MatchSort
	Limit      int
	Offset     int
}

func (f *ListMatchesFilter) validate() error {
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return ErrInvalidMatchStatus
		}
	}
	switch f.Sort {
	case "":
		f.Sort = SortStartAsc
	case SortStartAsc, SortStartDesc, SortTitle:
	default:
		return ErrInvalidSort
	}
	if f.Limit < 0 || f.Offset < 0 {
		return ErrValidationFailed
	}
	return nil
}

type MatchService interface {
	CreateMatch(ctx context.Context, organizerID int, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, filter ListMatchesFilter) ([]*models.Match, error)
	DeleteMatch(ctx context.Context, id int, requester Requester) error
	// ReconcileAll пересчитывает статусы всех нетерминальных матчей. Возвращает число изменённых.
	ReconcileAll(ctx context.Context) (int, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	guard      *MatchGuard
	reconciler *LifecycleReconciler
	clock      Clock
	workers    int
	logger     *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	guard *MatchGuard,
	reconciler *LifecycleReconciler,
	clock Clock,
	workers int,
	logger *slog.Logger,
) MatchService {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		matchRepo:  matchRepo,
		guard:      guard,
		reconciler: reconciler,
		clock:      clock,
		workers:    workers,
		logger:     logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, organizerID int, input CreateMatchInput) (*models.Match, error) {
	if organizerID <= 0 {
		return nil, ErrInvalidID
	}
	if err := input.validate(s.clock.Now()); err != nil {
		return nil, err
	}

	duration := models.DefaultMatchDurationMinutes
	if input.DurationMinutes != nil {
		duration = *input.DurationMinutes
	}

	match := &models.Match{
		Title:           input.Title,
		Location:        input.Location,
		ScheduledStart:  input.ScheduledStart,
		DurationMinutes: duration,
		Status:          models.MatchStatusOpen,
		OrganizerID:     organizerID,
	}
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, storeError("create match", err)
	}

	s.logger.InfoContext(ctx, "match created", slog.Int("match_id", match.ID), slog.Int("organizer_id", organizerID))
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	var result *models.Match
	err := s.guard.Run(ctx, id, func(exec repositories.SQLExecutor, match *models.Match) error {
		if _, err := s.reconciler.Reconcile(ctx, exec, match, TriggerRead); err != nil {
			return err
		}
		result = match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *matchService) ListMatches(ctx context.Context, filter ListMatchesFilter) ([]*models.Match, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	// Фильтр по статусу применяется после пересчёта: сохранённые статусы могут устареть.
	candidates, err := s.matchRepo.List(ctx, nil, repositories.ListMatchesFilter{
		DateFrom:   filter.DateFrom,
		TextSearch: strings.TrimSpace(filter.TextSearch),
	})
	if err != nil {
		return nil, storeError("list matches", err)
	}

	reconciled, _, err := s.reconcileBatch(ctx, candidates)
	if err != nil {
		return nil, err
	}

	matches := filterByStatus(reconciled, filter.Statuses)
	sortMatches(matches, filter.Sort)
	return paginate(matches, filter.Limit, filter.Offset), nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id int, requester Requester) error {
	err := s.guard.Run(ctx, id, func(exec repositories.SQLExecutor, match *models.Match) error {
		if !requester.canManageMatch(match) {
			return ErrNotOrganizer
		}
		if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
			return mapMatchRepoError(err, "delete match")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "match deleted", slog.Int("match_id", id), slog.Int("requester_id", requester.UserID))
	return nil
}

func (s *matchService) ReconcileAll(ctx context.Context) (int, error) {
	candidates, err := s.matchRepo.List(ctx, nil, repositories.ListMatchesFilter{
		Statuses: []models.MatchStatus{
			models.MatchStatusOpen,
			models.MatchStatusFull,
			models.MatchStatusInProgress,
			models.MatchStatusConfirmed,
		},
	})
	if err != nil {
		return 0, storeError("list matches for reconciliation", err)
	}

	_, changed, err := s.reconcileBatch(ctx, candidates)
	if err != nil {
		return changed, err
	}
	if changed > 0 {
		s.logger.InfoContext(ctx, "bulk reconciliation finished",
			slog.Int("checked", len(candidates)), slog.Int("changed", changed))
	}
	return changed, nil
}

// reconcileBatch пересчитывает матчи параллельно, не больше s.workers одновременно.
// Удалённые за это время матчи пропускаются.
func (s *matchService) reconcileBatch(ctx context.Context, candidates []*models.Match) ([]*models.Match, int, error) {
	results := make([]*models.Match, len(candidates))
	changedFlags := make([]bool, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, candidate := range candidates {
		g.Go(func() error {
			err := s.guard.Run(gCtx, candidate.ID, func(exec repositories.SQLExecutor, match *models.Match) error {
				changed, err := s.reconciler.Reconcile(gCtx, exec, match, TriggerRead)
				if err != nil {
					return err
				}
				results[i] = match
				changedFlags[i] = changed
				return nil
			})
			if errors.Is(err, ErrMatchNotFound) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	matches := make([]*models.Match, 0, len(results))
	changed := 0
	for i, m := range results {
		if m == nil {
			continue
		}
		matches = append(matches, m)
		if changedFlags[i] {
			changed++
		}
	}
	return matches, changed, nil
}

func filterByStatus(matches []*models.Match, statuses []models.MatchStatus) []*models.Match {
	if len(statuses) == 0 {
		return matches
	}
	allowed := make(map[models.MatchStatus]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	filtered := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if allowed[m.Status] {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func sortMatches(matches []*models.Match, order MatchSort) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch order {
		case SortStartDesc:
			if !a.ScheduledStart.Equal(b.ScheduledStart) {
				return a.ScheduledStart.After(b.ScheduledStart)
			}
		case SortTitle:
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
		default:
			if !a.ScheduledStart.Equal(b.ScheduledStart) {
				return a.ScheduledStart.Before(b.ScheduledStart)
			}
		}
		return a.ID < b.ID
	})
}

func paginate(matches []*models.Match, limit, offset int) []*models.Match {
	if offset >= len(matches) {
		return []*models.Match{}
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches
}
