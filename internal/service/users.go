package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/validation"
)

type AssignRoleInput struct {
	Role string `json:"role"`
}

// UserAdminService holds super-admin operations on accounts.
type UserAdminService struct {
	users UserStore
	log   *slog.Logger
}

func NewUserAdminService(users UserStore, log *slog.Logger) *UserAdminService {
	if log == nil {
		log = slog.Default()
	}
	return &UserAdminService{users: users, log: log}
}

// AssignRole grants role to the user. Granting a held role is a no-op.
func (s *UserAdminService) AssignRole(ctx context.Context, userID int64, in AssignRoleInput) (user.User, error) {
	role := strings.TrimSpace(in.Role)

	errs := validation.Errors{}
	if errs.Check("role", role, "required") && !user.IsKnownRole(role) {
		errs.Add("role", "selected role is invalid")
	}
	if err := errs.Err(); err != nil {
		return user.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	if !u.HasRole(role) {
		if err := s.users.AssignRole(ctx, userID, role); err != nil {
			return user.User{}, fmt.Errorf("assign role: %w", err)
		}
	}

	u, err = s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "role assigned", "user_id", userID, "role", role, "actor_id", actorID(ctx))
	return u, nil
}
