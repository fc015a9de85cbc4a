package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMatch(t *testing.T) {
	env := newTestEnv(t)

	m, err := env.matches.CreateMatch(context.Background(), organizerID, CreateMatchInput{
		Title:          "  Sunday kickabout ",
		ScheduledStart: testMatchStart,
		Location:       strPtr("Park pitch 3"),
	})
	require.NoError(t, err)

	assert.NotZero(t, m.ID)
	assert.Equal(t, "Sunday kickabout", m.Title)
	assert.Equal(t, models.DefaultMatchDurationMinutes, m.DurationMinutes)
	assert.Equal(t, models.MatchStatusOpen, m.Status)
	assert.Equal(t, organizerID, m.OrganizerID)
}

func TestCreateMatchValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateMatchInput
		wantErr error
	}{
		{"empty title", CreateMatchInput{Title: " ", ScheduledStart: testMatchStart}, ErrMatchTitleRequired},
		{"long title", CreateMatchInput{Title: strings.Repeat("x", 201), ScheduledStart: testMatchStart}, ErrMatchTitleTooLong},
		{"no start", CreateMatchInput{Title: "m"}, ErrMatchStartRequired},
		{"start in the past", CreateMatchInput{Title: "m", ScheduledStart: testNow.Add(-time.Minute)}, ErrMatchStartInPast},
		{"zero duration", CreateMatchInput{Title: "m", ScheduledStart: testMatchStart, DurationMinutes: intPtr(0)}, ErrMatchInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.matches.CreateMatch(context.Background(), organizerID, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

func TestGetMatchNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.matches.GetMatch(context.Background(), 404)
	require.ErrorIs(t, err, ErrMatchNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListMatchesFiltersByReconciledStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	early := env.addMatch(testMatchStart)
	late := env.addMatch(testMatchStart.Add(72 * time.Hour))
	env.clock.Set(testMatchStart.Add(5 * time.Minute))

	// Сохранённый статус обоих open, но early уже идёт.
	matches, err := env.matches.ListMatches(ctx, ListMatchesFilter{
		Statuses: []models.MatchStatus{models.MatchStatusInProgress},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, early, matches[0].ID)

	matches, err = env.matches.ListMatches(ctx, ListMatchesFilter{
		Statuses: []models.MatchStatus{models.MatchStatusOpen},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, late, matches[0].ID)
}

func TestListMatchesSortAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := []int{
		env.addMatch(testMatchStart),
		env.addMatch(testMatchStart.Add(24 * time.Hour)),
		env.addMatch(testMatchStart.Add(48 * time.Hour)),
	}

	asc, err := env.matches.ListMatches(ctx, ListMatchesFilter{})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, ids, []int{asc[0].ID, asc[1].ID, asc[2].ID})

	desc, err := env.matches.ListMatches(ctx, ListMatchesFilter{Sort: SortStartDesc, Limit: 2})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, ids[2], desc[0].ID)
	assert.Equal(t, ids[1], desc[1].ID)

	page, err := env.matches.ListMatches(ctx, ListMatchesFilter{Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[2], page[0].ID)

	empty, err := env.matches.ListMatches(ctx, ListMatchesFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListMatchesRejectsBadFilter(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.matches.ListMatches(context.Background(), ListMatchesFilter{Statuses: []models.MatchStatus{"postponed"}})
	require.ErrorIs(t, err, ErrInvalidMatchStatus)

	_, err = env.matches.ListMatches(context.Background(), ListMatchesFilter{Sort: "random"})
	require.ErrorIs(t, err, ErrInvalidSort)
}

func TestDeleteMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	matchID := env.addMatch(testMatchStart)

	err := env.matches.DeleteMatch(ctx, matchID, captain(10))
	require.ErrorIs(t, err, ErrNotOrganizer)

	require.NoError(t, env.matches.DeleteMatch(ctx, matchID, organizer))

	_, err = env.matches.GetMatch(ctx, matchID)
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestGuardMapsCancelledContextToTransient(t *testing.T) {
	env := newTestEnv(t)
	matchID := env.addMatch(testMatchStart)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.matches.GetMatch(ctx, matchID)
	require.Error(t, err)
	assert.Equal(t, KindTransient, KindOf(err))
}
