package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/friendly-matches/models"
)

var ErrReportNotFound = errors.New("match report not found")

type ReportRepository interface {
	Create(ctx context.Context, exec SQLExecutor, report *models.Report) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Report, error)
	ExistsForMatch(ctx context.Context, exec SQLExecutor, matchID int) (bool, error)
	Update(ctx context.Context, exec SQLExecutor, report *models.Report) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) ReportRepository {
	return &postgresReportRepository{db: db}
}

func (r *postgresReportRepository) Create(ctx context.Context, exec SQLExecutor, rep *models.Report) error {
	executor := pickExecutor(r.db, exec)
	query := `
		INSERT INTO match_reports (match_id, home_team_id, away_team_id, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		rep.MatchID, rep.HomeTeamID, rep.AwayTeamID, rep.HomeScore, rep.AwayScore,
	).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match report: %w", err)
	}
	return nil
}

func (r *postgresReportRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Report, error) {
	executor := pickExecutor(r.db, exec)
	query := `
		SELECT id, match_id, home_team_id, away_team_id, home_score, away_score, created_at
		FROM match_reports
		WHERE id = $1`

	rep := &models.Report{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&rep.ID, &rep.MatchID, &rep.HomeTeamID, &rep.AwayTeamID, &rep.HomeScore, &rep.AwayScore, &rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r *postgresReportRepository) ExistsForMatch(ctx context.Context, exec SQLExecutor, matchID int) (bool, error) {
	executor := pickExecutor(r.db, exec)
	var exists bool
	err := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM match_reports WHERE match_id = $1)`, matchID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reports of match %d: %w", matchID, err)
	}
	return exists, nil
}

func (r *postgresReportRepository) Update(ctx context.Context, exec SQLExecutor, rep *models.Report) error {
	executor := pickExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE match_reports
		SET home_team_id = $1, away_team_id = $2, home_score = $3, away_score = $4
		WHERE id = $5`,
		rep.HomeTeamID, rep.AwayTeamID, rep.HomeScore, rep.AwayScore, rep.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match report %d: %w", rep.ID, err)
	}
	return checkAffectedRows(result, ErrReportNotFound)
}

func (r *postgresReportRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := pickExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM match_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match report %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrReportNotFound)
}
