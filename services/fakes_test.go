package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

// memState хранит значения, clone() копирует их для отката.
type memState struct {
	matches     map[int]models.Match
	rules       map[int]models.EligibilityRule
	enrollments map[int]map[int]int // matchID -> teamID -> порядковый номер записи
	teams       map[int]models.Team
	members     map[int][]models.Player
	penalties   map[int]models.Penalty
	reports     map[int]models.Report
}

func (st memState) clone() memState {
	enrollments := make(map[int]map[int]int, len(st.enrollments))
	for matchID, teams := range st.enrollments {
		enrollments[matchID] = maps.Clone(teams)
	}
	return memState{
		matches:     maps.Clone(st.matches),
		rules:       maps.Clone(st.rules),
		enrollments: enrollments,
		teams:       maps.Clone(st.teams),
		members:     maps.Clone(st.members),
		penalties:   maps.Clone(st.penalties),
		reports:     maps.Clone(st.reports),
	}
}

type memStore struct {
	mu           sync.Mutex
	state        memState
	nextID       int
	statusWrites int
	failures     map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			matches:     map[int]models.Match{},
			rules:       map[int]models.EligibilityRule{},
			enrollments: map[int]map[int]int{},
			teams:       map[int]models.Team{},
			members:     map[int][]models.Player{},
			penalties:   map[int]models.Penalty{},
			reports:     map[int]models.Report{},
		},
		failures: map[string]error{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

// failOn заставляет операцию op возвращать err.
func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

func (s *memStore) match(id int) models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.matches[id]
}

func (s *memStore) enrolledTeams(matchID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0)
	for teamID := range s.state.enrollments[matchID] {
		ids = append(ids, teamID)
	}
	sort.Ints(ids)
	return ids
}

func (s *memStore) reportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.reports)
}

func (s *memStore) penaltyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.penalties)
}

func (s *memStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusWrites
}

// memTransactor выполняет транзакции по очереди и откатывает состояние при ошибке.
type memTransactor struct {
	store *memStore
	txMu  sync.Mutex
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: begin: %w", repositories.ErrTransaction, err)
	}

	t.store.mu.Lock()
	saved := t.store.state.clone()
	t.store.mu.Unlock()

	if err := fn(nil); err != nil {
		t.store.mu.Lock()
		t.store.state = saved
		t.store.mu.Unlock()
		return err
	}
	return nil
}

type memMatchRepo struct{ s *memStore }

func (r memMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("MatchCreate"); err != nil {
		return err
	}
	m.ID = r.s.id()
	m.CreatedAt = time.Now()
	r.s.state.matches[m.ID] = *m
	return nil
}

func (r memMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.state.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r memMatchRepo) LockByID(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	return nil
}

func (r memMatchRepo) List(_ context.Context, _ repositories.SQLExecutor, f repositories.ListMatchesFilter) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("MatchList"); err != nil {
		return nil, err
	}

	result := make([]*models.Match, 0)
	for _, m := range r.s.state.matches {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, m.Status) {
			continue
		}
		if f.DateFrom != nil && m.ScheduledStart.Before(*f.DateFrom) {
			continue
		}
		if f.TextSearch != "" {
			needle := strings.ToLower(f.TextSearch)
			location := ""
			if m.Location != nil {
				location = *m.Location
			}
			if !strings.Contains(strings.ToLower(m.Title), needle) && !strings.Contains(strings.ToLower(location), needle) {
				continue
			}
		}
		if f.OrganizerID != nil && m.OrganizerID != *f.OrganizerID {
			continue
		}
		result = append(result, &m)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ScheduledStart.Equal(result[j].ScheduledStart) {
			return result[i].ScheduledStart.Before(result[j].ScheduledStart)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r memMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("UpdateStatus"); err != nil {
		return err
	}
	m, ok := r.s.state.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	r.s.state.matches[id] = m
	r.s.statusWrites++
	return nil
}

func (r memMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.s.state.matches, id)
	delete(r.s.state.rules, id)
	delete(r.s.state.enrollments, id)
	delete(r.s.state.penalties, id)
	for reportID, rep := range r.s.state.reports {
		if rep.MatchID == id {
			delete(r.s.state.reports, reportID)
		}
	}
	return nil
}

func containsStatus(statuses []models.MatchStatus, s models.MatchStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

type memRuleRepo struct{ s *memStore }

func (r memRuleRepo) Create(_ context.Context, _ repositories.SQLExecutor, rule *models.EligibilityRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.rules[rule.MatchID]; ok {
		return repositories.ErrRuleConflict
	}
	rule.ID = r.s.id()
	r.s.state.rules[rule.MatchID] = *rule
	return nil
}

func (r memRuleRepo) GetByMatchID(_ context.Context, _ repositories.SQLExecutor, matchID int) (*models.EligibilityRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("RuleGet"); err != nil {
		return nil, err
	}
	rule, ok := r.s.state.rules[matchID]
	if !ok {
		return nil, repositories.ErrRuleNotFound
	}
	return &rule, nil
}

func (r memRuleRepo) Update(_ context.Context, _ repositories.SQLExecutor, rule *models.EligibilityRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.rules[rule.MatchID]; !ok {
		return repositories.ErrRuleNotFound
	}
	r.s.state.rules[rule.MatchID] = *rule
	return nil
}

type memEnrollmentRepo struct{ s *memStore }

func (r memEnrollmentRepo) Create(_ context.Context, _ repositories.SQLExecutor, e *models.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.matches[e.MatchID]; !ok {
		return repositories.ErrMatchNotFound
	}
	if _, ok := r.s.state.teams[e.TeamID]; !ok {
		return repositories.ErrEnrollmentTeamInvalid
	}
	teams := r.s.state.enrollments[e.MatchID]
	if teams == nil {
		teams = map[int]int{}
		r.s.state.enrollments[e.MatchID] = teams
	}
	if _, ok := teams[e.TeamID]; ok {
		return repositories.ErrEnrollmentConflict
	}
	teams[e.TeamID] = r.s.id()
	return nil
}

func (r memEnrollmentRepo) Exists(_ context.Context, _ repositories.SQLExecutor, matchID, teamID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.state.enrollments[matchID][teamID]
	return ok, nil
}

func (r memEnrollmentRepo) CountByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("CountByMatch"); err != nil {
		return 0, err
	}
	return len(r.s.state.enrollments[matchID]), nil
}

func (r memEnrollmentRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]*models.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*models.Enrollment, 0)
	for teamID, seq := range r.s.state.enrollments[matchID] {
		team := r.s.state.teams[teamID]
		result = append(result, &models.Enrollment{
			MatchID:   matchID,
			TeamID:    teamID,
			CreatedAt: time.Unix(int64(seq), 0),
			Team:      &team,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r memEnrollmentRepo) ListTeamMatches(_ context.Context, _ repositories.SQLExecutor, teamID int, statuses []models.MatchStatus) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*models.Match, 0)
	for matchID, teams := range r.s.state.enrollments {
		if _, ok := teams[teamID]; !ok {
			continue
		}
		m := r.s.state.matches[matchID]
		if containsStatus(statuses, m.Status) {
			result = append(result, &m)
		}
	}
	return result, nil
}

func (r memEnrollmentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, matchID, teamID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.enrollments[matchID][teamID]; !ok {
		return repositories.ErrEnrollmentNotFound
	}
	delete(r.s.state.enrollments[matchID], teamID)
	return nil
}

type memTeamRepo struct{ s *memStore }

func (r memTeamRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team, ok := r.s.state.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &team, nil
}

func (r memTeamRepo) ListMembers(_ context.Context, _ repositories.SQLExecutor, teamID int) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Player(nil), r.s.state.members[teamID]...), nil
}

type memPenaltyRepo struct{ s *memStore }

func (r memPenaltyRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Penalty) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.penalties[p.MatchID]; ok {
		return repositories.ErrPenaltyConflict
	}
	p.ID = r.s.id()
	stored := *p
	stored.Report = nil
	r.s.state.penalties[p.MatchID] = stored
	return nil
}

func (r memPenaltyRepo) GetByMatchID(_ context.Context, _ repositories.SQLExecutor, matchID int) (*models.Penalty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.state.penalties[matchID]
	if !ok {
		return nil, repositories.ErrPenaltyNotFound
	}
	return &p, nil
}

func (r memPenaltyRepo) Update(_ context.Context, _ repositories.SQLExecutor, p *models.Penalty) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.state.penalties[p.MatchID]
	if !ok {
		return repositories.ErrPenaltyNotFound
	}
	stored.PenalizedTeamID = p.PenalizedTeamID
	stored.Reason = p.Reason
	r.s.state.penalties[p.MatchID] = stored
	return nil
}

func (r memPenaltyRepo) DeleteByMatchID(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.penalties[matchID]; !ok {
		return repositories.ErrPenaltyNotFound
	}
	delete(r.s.state.penalties, matchID)
	return nil
}

type memReportRepo struct{ s *memStore }

func (r memReportRepo) Create(_ context.Context, _ repositories.SQLExecutor, rep *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep.ID = r.s.id()
	r.s.state.reports[rep.ID] = *rep
	return nil
}

func (r memReportRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.state.reports[id]
	if !ok {
		return nil, repositories.ErrReportNotFound
	}
	return &rep, nil
}

func (r memReportRepo) ExistsForMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.state.reports {
		if rep.MatchID == matchID {
			return true, nil
		}
	}
	return false, nil
}

func (r memReportRepo) Update(_ context.Context, _ repositories.SQLExecutor, rep *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.reports[rep.ID]; !ok {
		return repositories.ErrReportNotFound
	}
	r.s.state.reports[rep.ID] = *rep
	return nil
}

func (r memReportRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.reports[id]; !ok {
		return repositories.ErrReportNotFound
	}
	delete(r.s.state.reports, id)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

const (
	organizerID = 100
	adminID     = 1
)

var (
	organizer = Requester{UserID: organizerID, Role: models.RoleOrganizer}
	admin     = Requester{UserID: adminID, Role: models.RoleAdmin}
	// Момент "сейчас" в тестах и стандартный матч через десять дней.
	testNow        = time.Date(2026, time.May, 10, 10, 0, 0, 0, time.UTC)
	testMatchStart = time.Date(2026, time.May, 20, 18, 0, 0, 0, time.UTC)
)

type testEnv struct {
	store      *memStore
	clock      *fakeClock
	reconciler *LifecycleReconciler
	matches    MatchService
	rules      RuleService
	enrollment EnrollmentService
	penalties  PenaltyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	clock := &fakeClock{now: testNow}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	matchRepo := memMatchRepo{store}
	ruleRepo := memRuleRepo{store}
	enrollmentRepo := memEnrollmentRepo{store}
	teamRepo := memTeamRepo{store}
	penaltyRepo := memPenaltyRepo{store}
	reportRepo := memReportRepo{store}

	guard := NewMatchGuard(&memTransactor{store: store}, matchRepo)
	reconciler := NewLifecycleReconciler(matchRepo, ruleRepo, enrollmentRepo, clock, time.UTC, logger)

	return &testEnv{
		store:      store,
		clock:      clock,
		reconciler: reconciler,
		matches:    NewMatchService(matchRepo, guard, reconciler, clock, 4, logger),
		rules:      NewRuleService(ruleRepo, guard, reconciler, time.UTC, logger),
		enrollment: NewEnrollmentService(
			enrollmentRepo, ruleRepo, teamRepo, penaltyRepo,
			guard, reconciler,
			NewEligibilityChecker(teamRepo),
			NewScheduleConflictDetector(enrollmentRepo, time.UTC),
			clock, logger,
		),
		penalties: NewPenaltyService(penaltyRepo, reportRepo, enrollmentRepo, matchRepo, guard, reconciler, clock, logger),
	}
}

// addMatch сохраняет открытый матч организатора organizerID на 90 минут.
func (e *testEnv) addMatch(start time.Time) int {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	id := e.store.id()
	e.store.state.matches[id] = models.Match{
		ID:              id,
		Title:           fmt.Sprintf("Friendly #%d", id),
		ScheduledStart:  start,
		DurationMinutes: models.DefaultMatchDurationMinutes,
		Status:          models.MatchStatusOpen,
		OrganizerID:     organizerID,
	}
	return id
}

func (e *testEnv) setStatus(matchID int, status models.MatchStatus) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	m := e.store.state.matches[matchID]
	m.Status = status
	e.store.state.matches[matchID] = m
}

// addTeam создаёт команду captainID с составом заданных полов.
func (e *testEnv) addTeam(captainID int, genders ...models.Gender) int {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	id := e.store.id()
	e.store.state.teams[id] = models.Team{ID: id, Name: fmt.Sprintf("Team %d", id), CaptainID: captainID}
	members := make([]models.Player, 0, len(genders))
	for i, g := range genders {
		members = append(members, models.Player{ID: id*100 + i, TeamID: id, Nickname: fmt.Sprintf("p%d", i), Gender: g})
	}
	e.store.state.members[id] = members
	return id
}

func (e *testEnv) deleteTeam(teamID int) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	team := e.store.state.teams[teamID]
	deletedAt := testNow
	team.DeletedAt = &deletedAt
	e.store.state.teams[teamID] = team
}

// addRule задаёт правило напрямую в хранилище, минуя валидацию сервиса.
func (e *testEnv) addRule(matchID int, deadlineDate string, deadlineTime *string, gender models.Gender) {
	date, err := time.ParseInLocation(DeadlineDateLayout, deadlineDate, time.UTC)
	if err != nil {
		panic(err)
	}
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	e.store.state.rules[matchID] = models.EligibilityRule{
		ID:                       e.store.id(),
		MatchID:                  matchID,
		RegistrationDeadlineDate: date,
		RegistrationDeadlineTime: deadlineTime,
		MinimumAge:               models.MinRuleAge,
		MaximumAge:               models.MaxRuleAge,
		Gender:                   gender,
	}
}

func captain(userID int) Requester {
	return Requester{UserID: userID, Role: models.RolePlayer}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
