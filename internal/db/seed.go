package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureRoles upserts the role and permission catalogue from
// user.RolePermissions.
func EnsureRoles(ctx context.Context, pool *pgxpool.Pool) error {
	roles := make([]string, 0, len(user.RolePermissions))
	for r := range user.RolePermissions {
		roles = append(roles, r)
	}
	sort.Strings(roles)

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, role := range roles {
			if _, err := tx.Exec(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, role); err != nil {
				return fmt.Errorf("seed role %s: %w", role, err)
			}
			for _, perm := range user.RolePermissions[role] {
				if _, err := tx.Exec(ctx, `INSERT INTO permissions (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, perm); err != nil {
					return fmt.Errorf("seed permission %s: %w", perm, err)
				}
				_, err := tx.Exec(ctx, `
					INSERT INTO role_permissions (role_id, permission_id)
					SELECT r.id, p.id FROM roles r, permissions p
					WHERE r.name = $1 AND p.name = $2
					ON CONFLICT DO NOTHING
				`, role, perm)
				if err != nil {
					return fmt.Errorf("link %s to %s: %w", perm, role, err)
				}
			}
		}
		return nil
	})
}

// EnsureAdminUser creates the configured admin with super_admin once. It is a
// no-op when ADMIN_EMAIL or ADMIN_PASSWORD is unset.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// login lowercases the submitted email
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	var id int64
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		hash, herr := security.HashPassword(cfg.AdminPassword)
		if herr != nil {
			return herr
		}

		err = pool.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING id
		`, cfg.AdminName, email, hash).Scan(&id)
	}
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING
	`, id, user.RoleSuperAdmin)
	return err
}
