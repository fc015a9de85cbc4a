package services

import "github.com/Dosada05/friendly-matches/models"

// Requester — пользователь, от имени которого выполняется операция.
type Requester struct {
	UserID int
	Role   models.UserRole
}

func (r Requester) IsAdmin() bool {
	return r.Role == models.RoleAdmin
}

// canManageMatch: организатор матча или администратор.
func (r Requester) canManageMatch(match *models.Match) bool {
	return r.IsAdmin() || r.UserID == match.OrganizerID
}
