package models

import "time"

// MatchStatus — статус товарищеского матча, соответствует ENUM match_status в БД.
type MatchStatus string

const (
	MatchStatusOpen       MatchStatus = "open"
	MatchStatusFull       MatchStatus = "full"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusConfirmed  MatchStatus = "confirmed"
	MatchStatusCancelled  MatchStatus = "cancelled"
	MatchStatusFinished   MatchStatus = "finished"
)

// DefaultMatchDurationMinutes используется, если организатор не указал длительность.
const DefaultMatchDurationMinutes = 90

// MaxTeamsPerMatch — в матче участвуют ровно две команды.
const MaxTeamsPerMatch = 2

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusOpen, MatchStatusFull, MatchStatusInProgress,
		MatchStatusConfirmed, MatchStatusCancelled, MatchStatusFinished:
		return true
	}
	return false
}

// IsTerminal сообщает, что автоматические переходы из статуса больше не выполняются.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCancelled || s == MatchStatusFinished
}

type Match struct {
	ID              int         `json:"id" db:"id"`
	Title           string      `json:"title" db:"title"`
	Location        *string     `json:"location,omitempty" db:"location"`
	ScheduledStart  time.Time   `json:"scheduled_start" db:"scheduled_start"`
	DurationMinutes int         `json:"duration_minutes" db:"duration_minutes"`
	Status          MatchStatus `json:"status" db:"status"`
	OrganizerID     int         `json:"organizer_id" db:"organizer_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`

	EnrolledCount int `json:"enrolled_count" db:"-"`
}

// ScheduledEnd возвращает момент окончания матча.
func (m *Match) ScheduledEnd() time.Time {
	return m.ScheduledStart.Add(time.Duration(m.DurationMinutes) * time.Minute)
}
