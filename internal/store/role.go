package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/growthzi/apiserver/types"
)

// RoleRepository handles persistence for roles.
type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (types.Role, error) {
	const query = `
		SELECT id, name, permissions
		FROM roles
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (types.Role, error) {
	const query = `
		SELECT id, name, permissions
		FROM roles
		WHERE name = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

func (r *RoleRepository) List(ctx context.Context) ([]types.Role, error) {
	const query = `
		SELECT id, name, permissions
		FROM roles
		ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]types.Role, 0)
	for rows.Next() {
		var role types.Role
		var permsJSON []byte
		if err := rows.Scan(&role.ID, &role.Name, &permsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(permsJSON, &role.Permissions); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) Create(ctx context.Context, role types.Role) (types.Role, error) {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	permsJSON, err := json.Marshal(role.Permissions)
	if err != nil {
		return types.Role{}, err
	}

	const query = `
		INSERT INTO roles (id, name, permissions)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, role.ID, role.Name, permsJSON); err != nil {
		return types.Role{}, mapDBError(err)
	}
	return role, nil
}

// EnsureByName inserts the role only when no role with that name
// exists. An existing role's permissions are never touched, so
// operator edits survive restarts. Safe to call concurrently: the
// unique index on name turns a lost race into a no-op.
func (r *RoleRepository) EnsureByName(ctx context.Context, role types.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	permsJSON, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO roles (id, name, permissions)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`
	_, err = r.db.ExecContext(ctx, query, role.ID, role.Name, permsJSON)
	return err
}

func (r *RoleRepository) scanOne(row *sql.Row) (types.Role, error) {
	var role types.Role
	var permsJSON []byte
	if err := row.Scan(&role.ID, &role.Name, &permsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Role{}, ErrNotFound
		}
		return types.Role{}, err
	}
	if err := json.Unmarshal(permsJSON, &role.Permissions); err != nil {
		return types.Role{}, err
	}
	return role, nil
}
