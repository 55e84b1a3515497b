package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/token"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessTokensRepo stores one row per issued bearer token. Rows hold the
// token's HMAC, never the raw value.
type AccessTokensRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewAccessTokensRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccessTokensRepo {
	return &AccessTokensRepo{observer: observer{prom: prom}, pool: pool}
}

func (r *AccessTokensRepo) Create(ctx context.Context, t token.AccessToken) error {
	return r.observe("tokens.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO personal_access_tokens (id, user_id, name, token_hash, created_at, last_used_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, t.ID, t.UserID, t.Name, t.TokenHash, t.CreatedAt, t.LastUsedAt, t.ExpiresAt)
		return err
	})
}

func (r *AccessTokensRepo) GetByID(ctx context.Context, id string) (token.AccessToken, error) {
	var t token.AccessToken

	err := r.observe("tokens.get_by_id", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, user_id, name, token_hash, created_at, last_used_at, expires_at
			FROM personal_access_tokens
			WHERE id = $1
		`, id).Scan(&t.ID, &t.UserID, &t.Name, &t.TokenHash, &t.CreatedAt, &t.LastUsedAt, &t.ExpiresAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return token.AccessToken{}, token.ErrNotFound
		}
		return token.AccessToken{}, err
	}
	return t, nil
}

func (r *AccessTokensRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return r.observe("tokens.touch", func() error {
		_, err := r.pool.Exec(ctx, `UPDATE personal_access_tokens SET last_used_at = $2 WHERE id = $1`, id, at)
		return err
	})
}

func (r *AccessTokensRepo) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64

	err := r.observe("tokens.delete_all_for_user", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM personal_access_tokens WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}
