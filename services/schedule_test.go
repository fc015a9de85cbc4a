package services

import (
	"testing"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchAt(id int, start time.Time, minutes int) *models.Match {
	return &models.Match{ID: id, Title: "m", ScheduledStart: start, DurationMinutes: minutes}
}

func TestFindScheduleConflict(t *testing.T) {
	base := time.Date(2026, time.June, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		other    *models.Match
		conflict bool
	}{
		{"same slot", matchAt(2, base, 90), true},
		{"starts inside", matchAt(2, base.Add(30*time.Minute), 90), true},
		{"contains candidate", matchAt(2, base.Add(-time.Hour), 240), true},
		{"ends exactly at start", matchAt(2, base.Add(-90*time.Minute), 90), false},
		{"starts exactly at end", matchAt(2, base.Add(90*time.Minute), 90), false},
		{"next day same time", matchAt(2, base.Add(24*time.Hour), 90), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := matchAt(1, base, 90)
			got := findScheduleConflict(candidate, []*models.Match{tt.other}, time.UTC)
			if tt.conflict {
				require.NotNil(t, got)
				assert.Equal(t, 2, got.MatchID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestFindScheduleConflictIsSymmetric(t *testing.T) {
	base := time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)
	var matches []*models.Match
	for i := 0; i < 12; i++ {
		matches = append(matches, matchAt(i+1, base.Add(time.Duration(i*50)*time.Minute), 30+i*10))
	}

	for _, a := range matches {
		for _, b := range matches {
			if a.ID == b.ID {
				continue
			}
			ab := findScheduleConflict(a, []*models.Match{b}, time.UTC) != nil
			ba := findScheduleConflict(b, []*models.Match{a}, time.UTC) != nil
			assert.Equalf(t, ab, ba, "matches %d and %d", a.ID, b.ID)
		}
	}
}

func TestFindScheduleConflictUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// По UTC+3 это 23:00 и 23:30 одного дня.
	candidate := matchAt(1, time.Date(2026, time.June, 1, 20, 0, 0, 0, time.UTC), 60)
	other := matchAt(2, time.Date(2026, time.June, 1, 20, 30, 0, 0, time.UTC), 60)

	require.NotNil(t, findScheduleConflict(candidate, []*models.Match{other}, loc))

	// Матч, начавшийся накануне и идущий через полночь, в расчёт не берётся.
	overnight := matchAt(3, time.Date(2026, time.June, 1, 20, 30, 0, 0, loc), 300)
	morning := matchAt(4, time.Date(2026, time.June, 2, 0, 30, 0, 0, loc), 60)
	assert.Nil(t, findScheduleConflict(morning, []*models.Match{overnight}, loc))
}

func TestScheduleConflictSkipsCandidateItself(t *testing.T) {
	base := time.Date(2026, time.June, 1, 18, 0, 0, 0, time.UTC)
	candidate := matchAt(1, base, 90)

	assert.Nil(t, findScheduleConflict(candidate, []*models.Match{candidate}, time.UTC))
}
