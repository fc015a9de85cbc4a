package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

type EligibilityResult struct {
	Eligible bool
	Reason   string
}

// EligibilityChecker проверяет состав команды по правилу матча.
// Возрастные границы правила хранятся, но не проверяются.
type EligibilityChecker struct {
	teamRepo repositories.TeamRepository
}

func NewEligibilityChecker(teamRepo repositories.TeamRepository) *EligibilityChecker {
	return &EligibilityChecker{teamRepo: teamRepo}
}

func (c *EligibilityChecker) Check(ctx context.Context, exec repositories.SQLExecutor, teamID int, rule *models.EligibilityRule) (EligibilityResult, error) {
	if rule == nil || rule.Gender == models.GenderAny {
		return EligibilityResult{Eligible: true}, nil
	}

	members, err := c.teamRepo.ListMembers(ctx, exec, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return EligibilityResult{}, ErrTeamNotFound
		}
		return EligibilityResult{}, storeError("list team members", err)
	}

	return checkRosterGender(members, rule.Gender), nil
}

// checkRosterGender: пустой состав проходит проверку.
func checkRosterGender(members []models.Player, gender models.Gender) EligibilityResult {
	if gender == models.GenderAny {
		return EligibilityResult{Eligible: true}
	}
	for _, m := range members {
		if m.Gender != gender {
			return EligibilityResult{
				Eligible: false,
				Reason:   fmt.Sprintf("player %d has gender %q, match requires %q", m.ID, m.Gender, gender),
			}
		}
	}
	return EligibilityResult{Eligible: true}
}
