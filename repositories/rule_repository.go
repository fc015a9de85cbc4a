package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/lib/pq"
)

var (
	ErrRuleNotFound     = errors.New("eligibility rule not found")
	ErrRuleConflict     = errors.New("eligibility rule already exists for this match")
	ErrRuleMatchInvalid = errors.New("eligibility rule match reference invalid")
)

// Колонка DATE: передаём строку, чтобы зона сессии не сдвинула день.
const dateLayout = "2006-01-02"

type RuleRepository interface {
	Create(ctx context.Context, exec SQLExecutor, rule *models.EligibilityRule) error
	GetByMatchID(ctx context.Context, exec SQLExecutor, matchID int) (*models.EligibilityRule, error)
	Update(ctx context.Context, exec SQLExecutor, rule *models.EligibilityRule) error
}

type postgresRuleRepository struct {
	db *sql.DB
}

func NewPostgresRuleRepository(db *sql.DB) RuleRepository {
	return &postgresRuleRepository{db: db}
}

func (r *postgresRuleRepository) Create(ctx context.Context, exec SQLExecutor, rule *models.EligibilityRule) error {
	executor := pickExecutor(r.db, exec)
	query := `
		INSERT INTO match_rules
			(match_id, registration_deadline_date, registration_deadline_time, minimum_age, maximum_age, gender)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		rule.MatchID,
		rule.RegistrationDeadlineDate.Format(dateLayout),
		rule.RegistrationDeadlineTime,
		rule.MinimumAge,
		rule.MaximumAge,
		rule.Gender,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)

	return r.handleRuleError(err)
}

func (r *postgresRuleRepository) GetByMatchID(ctx context.Context, exec SQLExecutor, matchID int) (*models.EligibilityRule, error) {
	executor := pickExecutor(r.db, exec)
	query := `
		SELECT id, match_id, registration_deadline_date, registration_deadline_time,
		       minimum_age, maximum_age, gender, created_at, updated_at
		FROM match_rules
		WHERE match_id = $1`

	rule := &models.EligibilityRule{}
	err := executor.QueryRowContext(ctx, query, matchID).Scan(
		&rule.ID,
		&rule.MatchID,
		&rule.RegistrationDeadlineDate,
		&rule.RegistrationDeadlineTime,
		&rule.MinimumAge,
		&rule.MaximumAge,
		&rule.Gender,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

func (r *postgresRuleRepository) Update(ctx context.Context, exec SQLExecutor, rule *models.EligibilityRule) error {
	executor := pickExecutor(r.db, exec)
	query := `
		UPDATE match_rules SET
			registration_deadline_date = $1,
			registration_deadline_time = $2,
			minimum_age = $3,
			maximum_age = $4,
			gender = $5,
			updated_at = NOW()
		WHERE match_id = $6
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		rule.RegistrationDeadlineDate.Format(dateLayout),
		rule.RegistrationDeadlineTime,
		rule.MinimumAge,
		rule.MaximumAge,
		rule.Gender,
		rule.MatchID,
	).Scan(&rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRuleNotFound
		}
		return r.handleRuleError(err)
	}
	return nil
}

func (r *postgresRuleRepository) handleRuleError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "match_rules_match_id_key" {
				return ErrRuleConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "match_rules_match_id_fkey" {
				return ErrRuleMatchInvalid
			}
		}
	}
	return err
}
