// File: models/roster.go
package models

import "time"

// Player — участник состава команды. Для проверки допуска важны только пол и дата рождения.
type Player struct {
	ID        int        `json:"id" db:"id"`
	TeamID    int        `json:"team_id" db:"team_id"`
	Nickname  string     `json:"nickname" db:"nickname"`
	Gender    Gender     `json:"gender" db:"gender"`
	BirthDate *time.Time `json:"birth_date,omitempty" db:"birth_date"`
}
