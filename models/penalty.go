package models

import "time"

// Счёт технического поражения.
const (
	WalkoverWinnerScore = 3
	WalkoverLoserScore  = 0
)

type Penalty struct {
	ID              int       `json:"id" db:"id"`
	MatchID         int       `json:"match_id" db:"match_id"`
	PenalizedTeamID int       `json:"penalized_team_id" db:"penalized_team_id"`
	Reason          string    `json:"reason" db:"reason"`
	ReportID        int       `json:"report_id" db:"report_id"`
	CreatedBy       int       `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	Report *Report `json:"report,omitempty" db:"-"`
}

// Report — протокол матча. При техническом поражении создаётся автоматически.
type Report struct {
	ID         int       `json:"id" db:"id"`
	MatchID    int       `json:"match_id" db:"match_id"`
	HomeTeamID int       `json:"home_team_id" db:"home_team_id"`
	AwayTeamID int       `json:"away_team_id" db:"away_team_id"`
	HomeScore  int       `json:"home_score" db:"home_score"`
	AwayScore  int       `json:"away_score" db:"away_score"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ApplyWalkover выставляет счёт 3:0 против penalizedTeamID.
// Возвращает false, если команда не является ни хозяевами, ни гостями.
func (r *Report) ApplyWalkover(penalizedTeamID int) bool {
	switch penalizedTeamID {
	case r.HomeTeamID:
		r.HomeScore, r.AwayScore = WalkoverLoserScore, WalkoverWinnerScore
	case r.AwayTeamID:
		r.HomeScore, r.AwayScore = WalkoverWinnerScore, WalkoverLoserScore
	default:
		return false
	}
	return true
}
