package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{observer: observer{prom: prom}, pool: pool}
}

const userColumns = `
	u.id, u.name, u.email, u.password_hash,
	COALESCE((
		SELECT array_agg(r.name ORDER BY r.name)
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = u.id
	), '{}') AS roles,
	u.created_at, u.updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()

	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING id, created_at, updated_at
		`, u.Name, u.Email, u.PasswordHash, now).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	})
	if err != nil {
		return user.User{}, asConflict(err)
	}

	if u.Roles == nil {
		u.Roles = []string{}
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.observe("users.exists_by_name", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE name = $1)`, name).Scan(&exists)
	})
	return exists, err
}

func (r *UsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.observe("users.exists_by_email", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	})
	return exists, err
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.observe("users.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	})
	return n, err
}

func (r *UsersRepo) AssignRole(ctx context.Context, userID int64, role string) error {
	return r.observe("users.assign_role", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
			ON CONFLICT DO NOTHING
		`, userID, role)
		return err
	})
}

// LabelsForUser returns role names and the permission names they grant.
func (r *UsersRepo) LabelsForUser(ctx context.Context, userID int64) ([]string, error) {
	var labels []string

	err := r.observe("users.labels", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT r.name
			FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1
			UNION
			SELECT p.name
			FROM user_roles ur
			JOIN role_permissions rp ON rp.role_id = ur.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE ur.user_id = $1
		`, userID)
		if err != nil {
			return err
		}
		labels, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	return labels, err
}

// ListByRoles returns every user holding at least one of roles.
func (r *UsersRepo) ListByRoles(ctx context.Context, roles []string) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list_by_roles", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT `+userColumns+`
			FROM users u
			WHERE EXISTS (
				SELECT 1 FROM user_roles ur
				JOIN roles r ON r.id = ur.role_id
				WHERE ur.user_id = u.id AND r.name = ANY($1)
			)
			ORDER BY u.id
		`, roles)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	return out, err
}
