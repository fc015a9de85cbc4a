package models

import (
	"fmt"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderAny    Gender = "any"
)

func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderAny
}

// DeadlineTimeLayout — формат необязательного времени окончания регистрации.
const DeadlineTimeLayout = "15:04"

const (
	MinRuleAge = 0
	MaxRuleAge = 100
)

// EligibilityRule — правила допуска команд к матчу, одно на матч.
type EligibilityRule struct {
	ID                       int       `json:"id" db:"id"`
	MatchID                  int       `json:"match_id" db:"match_id"`
	RegistrationDeadlineDate time.Time `json:"registration_deadline_date" db:"registration_deadline_date"`
	RegistrationDeadlineTime *string   `json:"registration_deadline_time,omitempty" db:"registration_deadline_time"`
	MinimumAge               int       `json:"minimum_age" db:"minimum_age"`
	MaximumAge               int       `json:"maximum_age" db:"maximum_age"`
	Gender                   Gender    `json:"gender" db:"gender"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// Deadline собирает момент окончания регистрации в указанной зоне.
// Без времени регистрация закрывается в конце дня.
func (r *EligibilityRule) Deadline(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := r.RegistrationDeadlineDate.Date()
	if r.RegistrationDeadlineTime == nil || *r.RegistrationDeadlineTime == "" {
		return time.Date(y, m, d, 23, 59, 59, 0, loc), nil
	}
	clock, err := time.Parse(DeadlineTimeLayout, *r.RegistrationDeadlineTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid registration deadline time %q: %w", *r.RegistrationDeadlineTime, err)
	}
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
