package pgsql

import (
	"context"
	"errors"
	"net/http"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_request_app/internal/core/ports/repositories"
	"github.com/SscSPs/budget_request_app/internal/models"
	"github.com/SscSPs/budget_request_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, email, first_name, last_name, role, department, is_active,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserReader {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxUserRepository implements portsrepo.UserReader
var _ portsrepo.UserReader = (*PgxUserRepository)(nil)

func scanUser(row pgx.Row) (models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.FirstName,
		&m.LastName,
		&m.Role,
		&m.Department,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.DeletedAt,
	)
	return m, err
}

// FindUserByID retrieves a user by their ID, excluding deleted users.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	m, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find user by ID "+userID, err)
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

// FindActiveUsers lists active users with the given role, restricted to a department when set.
func (r *PgxUserRepository) FindActiveUsers(ctx context.Context, q domain.RecipientQuery) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND is_active AND deleted_at IS NULL
		  AND ($2 = '' OR department = $2)
		ORDER BY last_name, first_name;
	`
	rows, err := r.Pool.Query(ctx, query, string(q.Role), q.Department)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query users by role", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan user row", err)
		}
		users = append(users, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating user rows", err)
	}
	return mapping.ToDomainUserSlice(users), nil
}
