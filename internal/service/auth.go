package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/catalogadmin/internal/auth"
	"github.com/geocoder89/catalogadmin/internal/domain/token"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/security"
	"github.com/geocoder89/catalogadmin/internal/validation"
)

type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

type AuthService struct {
	users  UserStore
	tokens TokenStore
	jwt    *auth.Manager
	log    *slog.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens TokenStore, jwt *auth.Manager, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		jwt:    jwt,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	errs := validation.Errors{}

	if errs.Check("name", name, "required,min=4,max=255") {
		taken, err := s.users.ExistsByName(ctx, name)
		if err != nil {
			return Session{}, fmt.Errorf("check name: %w", err)
		}
		if taken {
			errs.Add("name", "has already been taken")
		}
	}

	if errs.Check("email", email, "required,email,max=255") {
		taken, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return Session{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			errs.Add("email", "has already been taken")
		}
	}

	if errs.Check("password", in.Password, "required,min=8,max=64") && in.Password != in.PasswordConfirmation {
		errs.Add("password", validation.Message("eqfield", "PasswordConfirmation"))
	}

	if err := errs.Err(); err != nil {
		return Session{}, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return Session{}, err
	}

	raw, err := s.issue(ctx, u)
	if err != nil {
		return Session{}, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)

	return Session{User: u, Token: raw}, nil
}

// Login returns ErrInvalidCredentials for a wrong password on a known email.
// Missing fields and unknown emails are validation failures.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	errs := validation.Errors{}
	emailOK := errs.Check("email", email, "required")
	errs.Check("password", in.Password, "required")

	var u user.User
	if emailOK {
		found, err := s.users.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, user.ErrNotFound):
			errs.Add("email", "selected email is invalid")
		case err != nil:
			return Session{}, fmt.Errorf("load user: %w", err)
		default:
			u = found
		}
	}

	if err := errs.Err(); err != nil {
		return Session{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, in.Password); err != nil {
		s.log.InfoContext(ctx, "login rejected", "user_id", u.ID)
		return Session{}, ErrInvalidCredentials
	}

	raw, err := s.issue(ctx, u)
	if err != nil {
		return Session{}, err
	}

	return Session{User: u, Token: raw}, nil
}

// Logout revokes every token the user holds, not only the presented one.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	n, err := s.tokens.DeleteAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}

	s.log.InfoContext(ctx, "user logged out", "user_id", userID, "revoked", n)
	return nil
}

// Authenticate resolves a raw bearer token to its owner. Any mismatch between
// the signed claims and the stored row is ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (user.User, error) {
	claims, err := s.jwt.VerifyAccessToken(raw)
	if err != nil {
		return user.User{}, ErrUnauthenticated
	}

	row, err := s.tokens.GetByID(ctx, claims.ID)
	if errors.Is(err, token.ErrNotFound) {
		return user.User{}, ErrUnauthenticated
	}
	if err != nil {
		return user.User{}, fmt.Errorf("load token: %w", err)
	}

	now := s.now()
	hash := s.jwt.HashToken(raw)
	if row.UserID != claims.UserID || subtle.ConstantTimeCompare([]byte(row.TokenHash), []byte(hash)) != 1 || row.Expired(now) {
		return user.User{}, ErrUnauthenticated
	}

	u, err := s.users.GetByID(ctx, row.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrUnauthenticated
	}
	if err != nil {
		return user.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := s.tokens.Touch(ctx, row.ID, now); err != nil {
		s.log.WarnContext(ctx, "token touch failed", "token_id", row.ID, "err", err)
	}

	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u user.User) (string, error) {
	issued, err := s.jwt.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	err = s.tokens.Create(ctx, token.AccessToken{
		ID:        issued.ID,
		UserID:    u.ID,
		Name:      u.Name,
		TokenHash: s.jwt.HashToken(issued.Raw),
		CreatedAt: s.now(),
		ExpiresAt: issued.ExpiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return issued.Raw, nil
}
