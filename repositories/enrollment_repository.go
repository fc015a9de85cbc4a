package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/lib/pq"
)

var (
	ErrEnrollmentNotFound    = errors.New("enrollment not found")
	ErrEnrollmentConflict    = errors.New("team is already enrolled in this match")
	ErrEnrollmentTeamInvalid = errors.New("enrollment team reference invalid")
)

type EnrollmentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, enrollment *models.Enrollment) error
	Exists(ctx context.Context, exec SQLExecutor, matchID, teamID int) (bool, error)
	CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Enrollment, error)
	// ListTeamMatches возвращает матчи команды с указанными статусами.
	ListTeamMatches(ctx context.Context, exec SQLExecutor, teamID int, statuses []models.MatchStatus) ([]*models.Match, error)
	Delete(ctx context.Context, exec SQLExecutor, matchID, teamID int) error
}

type postgresEnrollmentRepository struct {
	db *sql.DB
}

func NewPostgresEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &postgresEnrollmentRepository{db: db}
}

func (r *postgresEnrollmentRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Enrollment) error {
	executor := pickExecutor(r.db, exec)
	query := `INSERT INTO match_enrollments (match_id, team_id) VALUES ($1, $2) RETURNING created_at`

	err := executor.QueryRowContext(ctx, query, e.MatchID, e.TeamID).Scan(&e.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrEnrollmentConflict
			case "23503":
				switch pqErr.Constraint {
				case "match_enrollments_match_id_fkey":
					return ErrMatchNotFound
				case "match_enrollments_team_id_fkey":
					return ErrEnrollmentTeamInvalid
				}
			}
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *postgresEnrollmentRepository) Exists(ctx context.Context, exec SQLExecutor, matchID, teamID int) (bool, error) {
	executor := pickExecutor(r.db, exec)
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM match_enrollments WHERE match_id = $1 AND team_id = $2)`
	if err := executor.QueryRowContext(ctx, query, matchID, teamID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

func (r *postgresEnrollmentRepository) CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	executor := pickExecutor(r.db, exec)
	var count int
	query := `SELECT COUNT(*) FROM match_enrollments WHERE match_id = $1`
	if err := executor.QueryRowContext(ctx, query, matchID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments for match %d: %w", matchID, err)
	}
	return count, nil
}

func (r *postgresEnrollmentRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Enrollment, error) {
	executor := pickExecutor(r.db, exec)
	query := `
		SELECT e.match_id, e.team_id, e.created_at, t.id, t.name, t.captain_id, t.created_at, t.deleted_at
		FROM match_enrollments e
		JOIN teams t ON t.id = e.team_id
		WHERE e.match_id = $1
		ORDER BY e.created_at ASC`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments for match %d: %w", matchID, err)
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0, models.MaxTeamsPerMatch)
	for rows.Next() {
		var e models.Enrollment
		var t models.Team
		if err := rows.Scan(
			&e.MatchID, &e.TeamID, &e.CreatedAt,
			&t.ID, &t.Name, &t.CaptainID, &t.CreatedAt, &t.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		e.Team = &t
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

func (r *postgresEnrollmentRepository) ListTeamMatches(ctx context.Context, exec SQLExecutor, teamID int, statuses []models.MatchStatus) ([]*models.Match, error) {
	executor := pickExecutor(r.db, exec)
	statusArgs := make([]string, len(statuses))
	for i, s := range statuses {
		statusArgs[i] = string(s)
	}
	query := `
		SELECT m.id, m.title, m.location, m.scheduled_start, m.duration_minutes, m.status, m.organizer_id, m.created_at
		FROM match_enrollments e
		JOIN matches m ON m.id = e.match_id
		WHERE e.team_id = $1 AND m.status = ANY($2)
		ORDER BY m.scheduled_start ASC`

	rows, err := executor.QueryContext(ctx, query, teamID, pq.Array(statusArgs))
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of team %d: %w", teamID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team match: %w", scanErr)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresEnrollmentRepository) Delete(ctx context.Context, exec SQLExecutor, matchID, teamID int) error {
	executor := pickExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM match_enrollments WHERE match_id = $1 AND team_id = $2`, matchID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return checkAffectedRows(result, ErrEnrollmentNotFound)
}
