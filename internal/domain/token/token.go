package token

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("access token not found")

// AccessToken is the persisted half of a bearer token. The raw token is only
// ever returned to the client; storage keeps its HMAC.
type AccessToken struct {
	ID         string
	UserID     int64
	Name       string
	TokenHash  string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
}

func (t AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
