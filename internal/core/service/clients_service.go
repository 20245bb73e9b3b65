package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/salesdesk/crm-api/internal/api/metrics"
	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

var clientSortFields = map[string]struct{}{
	"id":    {},
	"name":  {},
	"email": {},
	"phone": {},
}

// ClientsService implements client management. Managers operate only on
// clients they own; ownership is re-derived here from the client row, not
// trusted from the request.
type ClientsService struct {
	clients ports.ClientsRepository
	users   ports.UsersRepository
	logger  zerolog.Logger
}

func NewClientsService(clients ports.ClientsRepository, users ports.UsersRepository, logger zerolog.Logger) *ClientsService {
	return &ClientsService{clients: clients, users: users, logger: logger}
}

func (s *ClientsService) List(ctx context.Context, actor *domain.User, filter ports.ClientsFilter, relatedToMe bool) (*ports.ClientsList, error) {
	if err := validateSort(clientSortFields, filter.SortBy); err != nil {
		return nil, err
	}
	if relatedToMe {
		filter.OwnerUsername = actor.Username
	}

	clients, total, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ClientsList{Total: total, Skip: filter.Skip, Limit: filter.Limit, Clients: clients}, nil
}

func (s *ClientsService) ListUnassigned(ctx context.Context, filter ports.ClientsFilter) (*ports.ClientsList, error) {
	if err := validateSort(clientSortFields, filter.SortBy); err != nil {
		return nil, err
	}
	filter.Unassigned = true

	clients, total, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ClientsList{Total: total, Skip: filter.Skip, Limit: filter.Limit, Clients: clients}, nil
}

// resolveClient locates a client by id when given, else by exact name.
func (s *ClientsService) resolveClient(ctx context.Context, ref ports.ClientRef) (*domain.Client, error) {
	if ref.ID != nil {
		return s.clients.FindByID(ctx, *ref.ID)
	}
	if ref.Name == "" {
		return nil, validation("client_id or name is required")
	}
	return s.clients.FindByName(ctx, ref.Name)
}

// resolveOwner maps an optional owner username to a user id. An empty
// username leaves the client unassigned unless the actor is a manager, who
// always starts as the owner of clients they create.
func (s *ClientsService) resolveOwner(ctx context.Context, actor *domain.User, ownerUsername string) (*uint, error) {
	if ownerUsername == "" {
		if actor.Role == domain.RoleManager {
			id := actor.ID
			return &id, nil
		}
		return nil, nil
	}

	owner, err := s.users.FindByUsername(ctx, ownerUsername)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleManager && owner.ID != actor.ID {
		return nil, fmt.Errorf("%w: your role can only manage clients related to your user", domain.ErrForbidden)
	}
	id := owner.ID
	return &id, nil
}

func (s *ClientsService) Create(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error) {
	if _, err := s.clients.FindByName(ctx, input.Name); err == nil {
		return nil, domain.ErrClientExists
	} else if !errors.Is(err, domain.ErrClientNotFound) {
		return nil, err
	}

	ownerID, err := s.resolveOwner(ctx, input.Actor, input.OwnerUsername)
	if err != nil {
		return nil, err
	}

	created, err := s.clients.Create(ctx, &domain.Client{
		UserID: ownerID,
		Name:   input.Name,
		Email:  input.Email,
		Phone:  input.Phone,
		Notes:  input.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrClientExists) {
			return nil, err
		}
		return nil, failedTo("create client", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("client", "create").Inc()
	s.logger.Info().Str("name", created.Name).Msg("client created")
	return created, nil
}

func (s *ClientsService) Update(ctx context.Context, input ports.UpdateClientInput) (*domain.Client, error) {
	client, err := s.resolveClient(ctx, input.Target)
	if err != nil {
		return nil, err
	}

	if input.Actor.Role == domain.RoleManager && !ownedBy(client.UserID, input.Actor.ID) {
		return nil, fmt.Errorf("%w: your role can only update clients related to your user", domain.ErrForbidden)
	}

	ownerID, err := s.resolveOwner(ctx, input.Actor, input.OwnerUsername)
	if err != nil {
		return nil, err
	}

	client.UserID = ownerID
	client.Name = input.Name
	client.Email = input.Email
	client.Phone = input.Phone
	client.Notes = input.Notes

	updated, err := s.clients.Update(ctx, client)
	if err != nil {
		if errors.Is(err, domain.ErrClientExists) {
			return nil, err
		}
		return nil, failedTo("change client", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("client", "update").Inc()
	return updated, nil
}

// Take claims an unassigned client for the actor. The assignment is a
// conditional update in the store, so a concurrent claim can not slip
// between the check and the write.
func (s *ClientsService) Take(ctx context.Context, actor *domain.User, target ports.ClientRef) (*domain.Client, error) {
	client, err := s.resolveClient(ctx, target)
	if err != nil {
		return nil, err
	}
	if client.Assigned() {
		return nil, fmt.Errorf("%w: client %s is already assigned", domain.ErrClientAssigned, client.Name)
	}

	id := actor.ID
	taken, err := s.clients.Assign(ctx, client.ID, &id, true)
	if err != nil {
		if errors.Is(err, domain.ErrClientAssigned) {
			return nil, fmt.Errorf("%w: client %s is already assigned", domain.ErrClientAssigned, client.Name)
		}
		if errors.Is(err, domain.ErrClientNotFound) {
			return nil, err
		}
		return nil, failedTo("take client", err)
	}

	s.logger.Info().Str("name", taken.Name).Str("username", actor.Username).Msg("client taken")
	return taken, nil
}

// Delegate assigns the client to the named user regardless of current owner.
func (s *ClientsService) Delegate(ctx context.Context, target ports.ClientRef, username string) (*domain.Client, error) {
	client, err := s.resolveClient(ctx, target)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	id := user.ID
	delegated, err := s.clients.Assign(ctx, client.ID, &id, false)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return nil, err
		}
		return nil, failedTo("delegate client", err)
	}
	return delegated, nil
}

// Discharge returns the client to the unassigned pool.
func (s *ClientsService) Discharge(ctx context.Context, target ports.ClientRef) (*domain.Client, error) {
	client, err := s.resolveClient(ctx, target)
	if err != nil {
		return nil, err
	}

	discharged, err := s.clients.Assign(ctx, client.ID, nil, false)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return nil, err
		}
		return nil, failedTo("discharge client", err)
	}
	return discharged, nil
}

func (s *ClientsService) Delete(ctx context.Context, name string) (*domain.Client, error) {
	client, err := s.clients.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.clients.Delete(ctx, client); err != nil {
		return nil, failedTo("delete client", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("client", "delete").Inc()
	s.logger.Info().Str("name", client.Name).Msg("client deleted")
	return client, nil
}

func ownedBy(ownerID *uint, userID uint) bool {
	return ownerID != nil && *ownerID == userID
}
