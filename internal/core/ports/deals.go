package ports

import (
	"context"
	"time"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// DealsFilter carries the query parameters for listing deals. The date
// window fields apply to DateField ("created_at", "updated_at" or
// "closed_at"; defaults to "created_at" in the repository).
type DealsFilter struct {
	Search       string // optional: substring match on title
	MoreThan     *int64 // optional: value >= MoreThan
	LessThan     *int64 // optional: value <= LessThan
	OwnerUsername string // optional: deals of clients owned by matching users
	ClientName   string // optional: deals of clients whose name matches
	DateField    string
	ExactDate    *time.Time // optional: DateField within that calendar day
	EarlierThan  *time.Time // optional: DateField <= EarlierThan
	LaterThan    *time.Time // optional: DateField >= LaterThan
	CurrentMonth bool       // restrict DateField to the current calendar month
	SortBy       string
	Order        string
	Skip         *int
	Limit        *int
}

// DealsRepository defines persistence operations for deals.
type DealsRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Deal, error)
	FindByTitle(ctx context.Context, title string) (*domain.Deal, error)
	List(ctx context.Context, filter DealsFilter) ([]domain.Deal, int64, error)
	Create(ctx context.Context, deal *domain.Deal) (*domain.Deal, error)
	Update(ctx context.Context, deal *domain.Deal) (*domain.Deal, error)
	Delete(ctx context.Context, deal *domain.Deal) error
	// DeleteByClient removes every deal of the client in one set-based
	// delete and returns the removed rows. An empty matching set is
	// domain.ErrNoDealsForClient, not a no-op success.
	DeleteByClient(ctx context.Context, clientID uint) ([]domain.Deal, error)
}

// DealRef locates a deal by id when present, else by exact title.
type DealRef struct {
	ID    *uint
	Title string
}

// CreateDealInput carries the fields for a new deal. The owning client is
// located by id when given, else by name.
type CreateDealInput struct {
	Actor      *domain.User
	ClientID   *uint
	ClientName string
	Title      string
	Status     domain.DealStatus
	Value      int64
	ClosedAt   *time.Time
}

// UpdateDealInput fully replaces the target deal's mutable fields.
type UpdateDealInput struct {
	Actor    *domain.User
	Target   DealRef
	Title    string
	Status   domain.DealStatus
	Value    int64
	ClosedAt *time.Time
}

// DealsList is the list envelope body for deals.
type DealsList struct {
	Total int64
	Skip  *int
	Limit *int
	Deals []domain.Deal
}

// DealsService defines use-case operations for deals.
type DealsService interface {
	List(ctx context.Context, actor *domain.User, filter DealsFilter, relatedToMe bool) (*DealsList, error)
	Create(ctx context.Context, input CreateDealInput) (*domain.Deal, error)
	Update(ctx context.Context, input UpdateDealInput) (*domain.Deal, error)
	SetStatus(ctx context.Context, actor *domain.User, target DealRef, status domain.DealStatus) (*domain.Deal, error)
	SetCloseDate(ctx context.Context, actor *domain.User, target DealRef, closedAt time.Time) (*domain.Deal, error)
	Delete(ctx context.Context, target DealRef) (*domain.Deal, error)
	DeleteByClient(ctx context.Context, target ClientRef) ([]domain.Deal, error)
}
