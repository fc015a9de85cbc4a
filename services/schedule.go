package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

// liveStatuses — статусы матчей, которые ещё занимают время команды.
var liveStatuses = []models.MatchStatus{models.MatchStatusOpen, models.MatchStatusConfirmed}

type ScheduleConflict struct {
	MatchID int
	Title   string
	Start   time.Time
	End     time.Time
}

func (c *ScheduleConflict) Description() string {
	return fmt.Sprintf("match %d %q on %s from %s to %s",
		c.MatchID, c.Title,
		c.Start.Format("2006-01-02"), c.Start.Format("15:04"), c.End.Format("15:04"))
}

// ScheduleConflictDetector ищет пересечение по времени с другими матчами команды.
// Только чтение, вызывается до сохранения записи на матч.
type ScheduleConflictDetector struct {
	enrollmentRepo repositories.EnrollmentRepository
	loc            *time.Location
}

func NewScheduleConflictDetector(enrollmentRepo repositories.EnrollmentRepository, loc *time.Location) *ScheduleConflictDetector {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleConflictDetector{enrollmentRepo: enrollmentRepo, loc: loc}
}

func (d *ScheduleConflictDetector) Detect(ctx context.Context, exec repositories.SQLExecutor, teamID int, candidate *models.Match) (*ScheduleConflict, error) {
	others, err := d.enrollmentRepo.ListTeamMatches(ctx, exec, teamID, liveStatuses)
	if err != nil {
		return nil, storeError("list team matches", err)
	}
	return findScheduleConflict(candidate, others, d.loc), nil
}

// findScheduleConflict сравнивает только матчи, начинающиеся в тот же календарный день.
// Интервалы полуоткрытые: касание границ пересечением не считается.
func findScheduleConflict(candidate *models.Match, others []*models.Match, loc *time.Location) *ScheduleConflict {
	candStart := candidate.ScheduledStart.In(loc)
	candEnd := candidate.ScheduledEnd().In(loc)

	for _, other := range others {
		if other.ID == candidate.ID {
			continue
		}
		otherStart := other.ScheduledStart.In(loc)
		if !sameDay(candStart, otherStart) {
			continue
		}
		otherEnd := other.ScheduledEnd().In(loc)
		if candStart.Before(otherEnd) && candEnd.After(otherStart) {
			return &ScheduleConflict{
				MatchID: other.ID,
				Title:   other.Title,
				Start:   otherStart,
				End:     otherEnd,
			}
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
