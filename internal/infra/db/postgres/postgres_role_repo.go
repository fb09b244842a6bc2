package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
)

var _ repository.RoleRepository = (*roleRepo)(nil)

type roleRepo struct{ pool *pgxpool.Pool }

func NewRoleRepo(pool *pgxpool.Pool) *roleRepo {
	return &roleRepo{pool: pool}
}

func (r *roleRepo) RolesForUser(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	const q = `SELECT role FROM user_roles WHERE user_id=$1 ORDER BY role;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, dbErr("role_list", err)
	}
	defer rows.Close()

	var out []model.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, model.Role(role))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// Grant adds role to userID; granting twice is a no-op.
func (r *roleRepo) Grant(ctx context.Context, tx repository.Tx, userID string, role model.Role) error {
	const q = `INSERT INTO user_roles (user_id, role) VALUES ($1,$2) ON CONFLICT DO NOTHING;`
	if _, err := execSQL(ctx, r.pool, tx, q, userID, string(role)); err != nil {
		return dbErr("role_grant", err)
	}
	return nil
}
