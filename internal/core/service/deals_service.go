package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/salesdesk/crm-api/internal/api/metrics"
	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

var dealSortFields = map[string]struct{}{
	"id":         {},
	"title":      {},
	"status":     {},
	"value":      {},
	"created_at": {},
	"updated_at": {},
	"closed_at":  {},
}

// DealsService implements deal management. A deal's owner is indirect: the
// chain Deal → Client → User is walked on every manager mutation rather
// than cached from an earlier request.
type DealsService struct {
	deals   ports.DealsRepository
	clients ports.ClientsRepository
	logger  zerolog.Logger
}

func NewDealsService(deals ports.DealsRepository, clients ports.ClientsRepository, logger zerolog.Logger) *DealsService {
	return &DealsService{deals: deals, clients: clients, logger: logger}
}

func (s *DealsService) List(ctx context.Context, actor *domain.User, filter ports.DealsFilter, relatedToMe bool) (*ports.DealsList, error) {
	if err := validateSort(dealSortFields, filter.SortBy); err != nil {
		return nil, err
	}
	if relatedToMe {
		filter.OwnerUsername = actor.Username
	}

	deals, total, err := s.deals.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.DealsList{Total: total, Skip: filter.Skip, Limit: filter.Limit, Deals: deals}, nil
}

// resolveDeal locates a deal by id when given, else by exact title.
func (s *DealsService) resolveDeal(ctx context.Context, ref ports.DealRef) (*domain.Deal, error) {
	if ref.ID != nil {
		return s.deals.FindByID(ctx, *ref.ID)
	}
	if ref.Title == "" {
		return nil, validation("deal_id or title is required")
	}
	return s.deals.FindByTitle(ctx, ref.Title)
}

// ensureOwnership walks the ownership chain for managers: the deal's client
// must currently be owned by the actor. Admins pass unconditionally.
func (s *DealsService) ensureOwnership(ctx context.Context, actor *domain.User, clientID uint) error {
	if actor.Role != domain.RoleManager {
		return nil
	}
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	if !ownedBy(client.UserID, actor.ID) {
		return fmt.Errorf("%w: your role can only manage deals related to your user", domain.ErrForbidden)
	}
	return nil
}

func (s *DealsService) validateDeal(status domain.DealStatus, value int64, closedAt *time.Time) error {
	if !domain.ValidDealStatus(status) {
		return validation("unknown deal status %q", status)
	}
	if value <= 0 {
		return validation("value must be positive")
	}
	return futureDate("closed_at", closedAt)
}

func (s *DealsService) Create(ctx context.Context, input ports.CreateDealInput) (*domain.Deal, error) {
	if input.Status == "" {
		input.Status = domain.DealStatusNew
	}
	if err := s.validateDeal(input.Status, input.Value, input.ClosedAt); err != nil {
		return nil, err
	}

	if _, err := s.deals.FindByTitle(ctx, input.Title); err == nil {
		return nil, domain.ErrDealExists
	} else if !errors.Is(err, domain.ErrDealNotFound) {
		return nil, err
	}

	client, err := s.resolveDealClient(ctx, input.ClientID, input.ClientName)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwnership(ctx, input.Actor, client.ID); err != nil {
		return nil, err
	}

	created, err := s.deals.Create(ctx, &domain.Deal{
		ClientID: client.ID,
		Title:    input.Title,
		Status:   input.Status,
		Value:    input.Value,
		ClosedAt: input.ClosedAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDealExists) {
			return nil, err
		}
		return nil, failedTo("create deal", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("deal", "create").Inc()
	s.logger.Info().Str("title", created.Title).Uint("client_id", created.ClientID).Msg("deal created")
	return created, nil
}

func (s *DealsService) resolveDealClient(ctx context.Context, clientID *uint, clientName string) (*domain.Client, error) {
	if clientID != nil {
		return s.clients.FindByID(ctx, *clientID)
	}
	if clientName == "" {
		return nil, validation("client_id or client_name is required")
	}
	return s.clients.FindByName(ctx, clientName)
}

func (s *DealsService) Update(ctx context.Context, input ports.UpdateDealInput) (*domain.Deal, error) {
	if err := s.validateDeal(input.Status, input.Value, input.ClosedAt); err != nil {
		return nil, err
	}

	deal, err := s.resolveDeal(ctx, input.Target)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwnership(ctx, input.Actor, deal.ClientID); err != nil {
		return nil, err
	}

	deal.Title = input.Title
	deal.Status = input.Status
	deal.Value = input.Value
	deal.ClosedAt = input.ClosedAt

	updated, err := s.deals.Update(ctx, deal)
	if err != nil {
		if errors.Is(err, domain.ErrDealExists) {
			return nil, err
		}
		return nil, failedTo("change deal", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("deal", "update").Inc()
	return updated, nil
}

func (s *DealsService) SetStatus(ctx context.Context, actor *domain.User, target ports.DealRef, status domain.DealStatus) (*domain.Deal, error) {
	if !domain.ValidDealStatus(status) {
		return nil, validation("unknown deal status %q", status)
	}

	deal, err := s.resolveDeal(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwnership(ctx, actor, deal.ClientID); err != nil {
		return nil, err
	}

	deal.Status = status
	updated, err := s.deals.Update(ctx, deal)
	if err != nil {
		return nil, failedTo("change deal status", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("deal", "update").Inc()
	return updated, nil
}

func (s *DealsService) SetCloseDate(ctx context.Context, actor *domain.User, target ports.DealRef, closedAt time.Time) (*domain.Deal, error) {
	if err := futureDate("closed_at", &closedAt); err != nil {
		return nil, err
	}

	deal, err := s.resolveDeal(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwnership(ctx, actor, deal.ClientID); err != nil {
		return nil, err
	}

	deal.ClosedAt = &closedAt
	updated, err := s.deals.Update(ctx, deal)
	if err != nil {
		return nil, failedTo("set deal close date", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("deal", "update").Inc()
	return updated, nil
}

func (s *DealsService) Delete(ctx context.Context, target ports.DealRef) (*domain.Deal, error) {
	deal, err := s.resolveDeal(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := s.deals.Delete(ctx, deal); err != nil {
		return nil, failedTo("delete deal", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("deal", "delete").Inc()
	return deal, nil
}

// DeleteByClient removes every deal of the client. An empty set is a
// not-found, mirroring the single-row delete semantics.
func (s *DealsService) DeleteByClient(ctx context.Context, target ports.ClientRef) ([]domain.Deal, error) {
	var client *domain.Client
	var err error
	if target.ID != nil {
		client, err = s.clients.FindByID(ctx, *target.ID)
	} else if target.Name != "" {
		client, err = s.clients.FindByName(ctx, target.Name)
	} else {
		return nil, validation("client_id or client_name is required")
	}
	if err != nil {
		return nil, err
	}

	deals, err := s.deals.DeleteByClient(ctx, client.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoDealsForClient) {
			return nil, err
		}
		return nil, failedTo("delete deals", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("deal", "delete").Inc()
	s.logger.Info().Str("client", client.Name).Int("count", len(deals)).Msg("deals deleted by client")
	return deals, nil
}
