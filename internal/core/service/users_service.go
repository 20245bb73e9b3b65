package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/salesdesk/crm-api/internal/api/metrics"
	"github.com/salesdesk/crm-api/internal/auth"
	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

var userSortFields = map[string]struct{}{
	"id":       {},
	"username": {},
	"role":     {},
}

// UsersService implements account administration. Role gating (admin-only)
// happens in the route middleware; this layer owns validation and
// persistence orchestration.
type UsersService struct {
	users  ports.UsersRepository
	logger zerolog.Logger
}

func NewUsersService(users ports.UsersRepository, logger zerolog.Logger) *UsersService {
	return &UsersService{users: users, logger: logger}
}

func (s *UsersService) List(ctx context.Context, filter ports.UsersFilter) (*ports.UsersList, error) {
	if err := validateSort(userSortFields, filter.SortBy); err != nil {
		return nil, err
	}
	if filter.Role != "" && !domain.ValidRole(filter.Role) {
		return nil, validation("unknown role %q", filter.Role)
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.UsersList{Total: total, Skip: filter.Skip, Limit: filter.Limit, Users: users}, nil
}

func (s *UsersService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UsersService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if !domain.ValidRole(input.Role) {
		return nil, validation("unknown role %q", input.Role)
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, failedTo("hash password", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, failedTo("create user", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("user", "create").Inc()
	s.logger.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

// Update fully replaces the target's username, password and role.
func (s *UsersService) Update(ctx context.Context, input ports.UpdateUserInput) (*domain.User, error) {
	if !domain.ValidRole(input.Role) {
		return nil, validation("unknown role %q", input.Role)
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, input.TargetUsername)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, failedTo("hash password", err)
	}

	user.Username = input.Username
	user.PasswordHash = hash
	user.Role = input.Role

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, failedTo("change user", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("user", "update").Inc()
	return updated, nil
}

func (s *UsersService) Delete(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, user); err != nil {
		return nil, failedTo("delete user", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("user", "delete").Inc()
	s.logger.Info().Str("username", user.Username).Msg("user deleted")
	return user, nil
}
