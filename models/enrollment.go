package models

import "time"

// Enrollment — запись команды на матч. Ключ (match_id, team_id).
type Enrollment struct {
	MatchID   int       `json:"match_id" db:"match_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
