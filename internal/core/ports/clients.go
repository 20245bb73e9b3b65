package ports

import (
	"context"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// ClientsFilter carries the query parameters for listing clients. Every
// populated field contributes one independent predicate; predicates are
// combined with AND.
type ClientsFilter struct {
	Unassigned    bool   // restrict to clients with no owner
	OwnerUsername string // optional: owned by users whose name matches the pattern
	Search        string // optional: substring match on name, email or phone
	SortBy        string
	Order         string
	Skip          *int
	Limit         *int
}

// ClientsRepository defines persistence operations for clients.
type ClientsRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Client, error)
	FindByName(ctx context.Context, name string) (*domain.Client, error)
	List(ctx context.Context, filter ClientsFilter) ([]domain.Client, int64, error)
	Create(ctx context.Context, client *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) (*domain.Client, error)
	// Assign sets the client's owner in a single conditional update. With
	// onlyIfUnassigned the store applies the write only while user_id is
	// still null, closing the race between two concurrent claims; a lost
	// race surfaces as domain.ErrClientAssigned.
	Assign(ctx context.Context, clientID uint, userID *uint, onlyIfUnassigned bool) (*domain.Client, error)
	Delete(ctx context.Context, client *domain.Client) error
}

// ClientRef locates a client by id when present, else by exact name.
type ClientRef struct {
	ID   *uint
	Name string
}

// CreateClientInput carries the fields for a new client. OwnerUsername is
// optional; when empty the client starts unassigned.
type CreateClientInput struct {
	Actor         *domain.User
	Name          string
	Email         string
	Phone         string
	Notes         string
	OwnerUsername string
}

// UpdateClientInput fully replaces the target client's fields.
type UpdateClientInput struct {
	Actor         *domain.User
	Target        ClientRef
	Name          string
	Email         string
	Phone         string
	Notes         string
	OwnerUsername string
}

// ClientsList is the list envelope body for clients.
type ClientsList struct {
	Total   int64
	Skip    *int
	Limit   *int
	Clients []domain.Client
}

// ClientsService defines use-case operations for clients.
type ClientsService interface {
	List(ctx context.Context, actor *domain.User, filter ClientsFilter, relatedToMe bool) (*ClientsList, error)
	ListUnassigned(ctx context.Context, filter ClientsFilter) (*ClientsList, error)
	Create(ctx context.Context, input CreateClientInput) (*domain.Client, error)
	Update(ctx context.Context, input UpdateClientInput) (*domain.Client, error)
	// Take claims an unassigned client for the actor.
	Take(ctx context.Context, actor *domain.User, target ClientRef) (*domain.Client, error)
	// Delegate assigns the client to the named user regardless of current owner.
	Delegate(ctx context.Context, target ClientRef, username string) (*domain.Client, error)
	// Discharge returns the client to the unassigned pool.
	Discharge(ctx context.Context, target ClientRef) (*domain.Client, error)
	Delete(ctx context.Context, name string) (*domain.Client, error)
}
