package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/friendly-matches/models"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamRepository — только чтение: команды и составы ведёт внешний сервис.
type TeamRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	ListMembers(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := pickExecutor(r.db, exec)
	query := `SELECT id, name, captain_id, created_at, deleted_at FROM teams WHERE id = $1`

	var team models.Team
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.CaptainID, &team.CreatedAt, &team.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error) {
	executor := pickExecutor(r.db, exec)
	query := `SELECT id, team_id, nickname, gender, birth_date FROM users WHERE team_id = $1 ORDER BY id`

	rows, err := executor.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	defer rows.Close()

	members := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Nickname, &p.Gender, &p.BirthDate); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, p)
	}
	return members, rows.Err()
}
