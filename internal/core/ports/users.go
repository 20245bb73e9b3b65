package ports

import (
	"context"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// UsersFilter carries the query parameters for listing users. SortBy is a
// logical field name ("role" orders by privilege rank, not alphabetically);
// the service validates it against the allow-list before the repository
// dispatches it to a physical column.
type UsersFilter struct {
	Role   domain.Role // optional: exact role match
	Search string      // optional: substring match on username
	SortBy string
	Order  string // "asc" or "desc"
	Skip   *int   // nil = 0
	Limit  *int   // nil = no limit
}

// UsersRepository defines persistence operations for user accounts.
type UsersRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns a page of users matching filter and the total count
	// before pagination.
	List(ctx context.Context, filter UsersFilter) ([]domain.User, int64, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) (*domain.User, error)
	Delete(ctx context.Context, user *domain.User) error
}

// CreateUserInput carries the fields for an admin-created account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// UpdateUserInput fully replaces the target's username, password and role.
type UpdateUserInput struct {
	TargetUsername string
	Username       string
	Password       string
	Role           domain.Role
}

// UsersList is the list envelope body for users.
type UsersList struct {
	Total int64
	Skip  *int
	Limit *int
	Users []domain.User
}

// UsersService defines use-case operations for user accounts.
type UsersService interface {
	List(ctx context.Context, filter UsersFilter) (*UsersList, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, username string) (*domain.User, error)
}
