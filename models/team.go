package models

import "time"

type Team struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	CaptainID int        `json:"captain_id" db:"captain_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`

	Members []Player `json:"members,omitempty" db:"-"`
}

// IsDeleted — команда удалена мягко и не может участвовать в матчах.
func (t *Team) IsDeleted() bool {
	return t.DeletedAt != nil
}
