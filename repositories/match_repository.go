package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchInvalidOrganizer = errors.New("invalid organizer reference")
)

type ListMatchesFilter struct {
	Statuses    []models.MatchStatus
	DateFrom    *time.Time
	TextSearch  string
	OrganizerID *int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// LockByID берёт блокировку строки матча до конца транзакции exec.
	LockByID(ctx context.Context, exec SQLExecutor, id int) error
	List(ctx context.Context, exec SQLExecutor, filter ListMatchesFilter) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, title, location, scheduled_start, duration_minutes, status, organizer_id, created_at`

func scanMatch(row interface{ Scan(dest ...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.Title, &m.Location, &m.ScheduledStart,
		&m.DurationMinutes, &m.Status, &m.OrganizerID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := pickExecutor(r.db, exec)
	query := `
		INSERT INTO matches (title, location, scheduled_start, duration_minutes, status, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.Title, m.Location, m.ScheduledStart, m.DurationMinutes, m.Status, m.OrganizerID,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := pickExecutor(r.db, exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) LockByID(ctx context.Context, exec SQLExecutor, id int) error {
	executor := pickExecutor(r.db, exec)
	var lockedID int
	err := executor.QueryRowContext(ctx, `SELECT id FROM matches WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to lock match %d: %w", id, err)
	}
	return nil
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter ListMatchesFilter) ([]*models.Match, error) {
	executor := pickExecutor(r.db, exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE 1=1`)
	args := []interface{}{}
	argID := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND status = ANY($%d)", argID))
		args = append(args, pq.Array(statuses))
		argID++
	}
	if filter.DateFrom != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND scheduled_start >= $%d", argID))
		args = append(args, *filter.DateFrom)
		argID++
	}
	if filter.TextSearch != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR location ILIKE $%d)", argID, argID))
		args = append(args, "%"+escapeLike(filter.TextSearch)+"%")
		argID++
	}
	if filter.OrganizerID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND organizer_id = $%d", argID))
		args = append(args, *filter.OrganizerID)
	}

	queryBuilder.WriteString(" ORDER BY scheduled_start ASC, id ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	executor := pickExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// Delete удаляет матч. Записи, правила, санкции и протоколы удаляются каскадно (ON DELETE CASCADE).
func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := pickExecutor(r.db, exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == "matches_organizer_id_fkey" {
			return ErrMatchInvalidOrganizer
		}
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
