package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/lib/pq"
)

var (
	ErrPenaltyNotFound = errors.New("penalty not found")
	ErrPenaltyConflict = errors.New("penalty already exists for this match")
)

type PenaltyRepository interface {
	Create(ctx context.Context, exec SQLExecutor, penalty *models.Penalty) error
	GetByMatchID(ctx context.Context, exec SQLExecutor, matchID int) (*models.Penalty, error)
	Update(ctx context.Context, exec SQLExecutor, penalty *models.Penalty) error
	DeleteByMatchID(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresPenaltyRepository struct {
	db *sql.DB
}

func NewPostgresPenaltyRepository(db *sql.DB) PenaltyRepository {
	return &postgresPenaltyRepository{db: db}
}

func (r *postgresPenaltyRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Penalty) error {
	executor := pickExecutor(r.db, exec)
	query := `
		INSERT INTO match_penalties (match_id, penalized_team_id, reason, report_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		p.MatchID, p.PenalizedTeamID, p.Reason, p.ReportID, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPenaltyConflict
		}
		return err
	}
	return nil
}

func (r *postgresPenaltyRepository) GetByMatchID(ctx context.Context, exec SQLExecutor, matchID int) (*models.Penalty, error) {
	executor := pickExecutor(r.db, exec)
	query := `
		SELECT id, match_id, penalized_team_id, reason, report_id, created_by, created_at
		FROM match_penalties
		WHERE match_id = $1`

	p := &models.Penalty{}
	err := executor.QueryRowContext(ctx, query, matchID).Scan(
		&p.ID, &p.MatchID, &p.PenalizedTeamID, &p.Reason, &p.ReportID, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPenaltyNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPenaltyRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Penalty) error {
	executor := pickExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE match_penalties SET penalized_team_id = $1, reason = $2 WHERE match_id = $3`,
		p.PenalizedTeamID, p.Reason, p.MatchID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPenaltyNotFound)
}

func (r *postgresPenaltyRepository) DeleteByMatchID(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := pickExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM match_penalties WHERE match_id = $1`, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPenaltyNotFound)
}
