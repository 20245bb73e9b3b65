package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

func newClientsFixture() (*ClientsService, *stubClientsRepo, *stubUsersRepo) {
	clients := newStubClientsRepo()
	users := newStubUsersRepo()
	return NewClientsService(clients, users, zerolog.Nop()), clients, users
}

func TestClientsService_Create_ManagerBecomesOwner(t *testing.T) {
	svc, _, users := newClientsFixture()
	manager := users.seed("mona", domain.RoleManager)

	client, err := svc.Create(context.Background(), ports.CreateClientInput{
		Actor: manager,
		Name:  "Acme",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if client.UserID == nil || *client.UserID != manager.ID {
		t.Fatalf("expected manager to own the client, got %+v", client.UserID)
	}
}

func TestClientsService_Create_AdminLeavesUnassigned(t *testing.T) {
	svc, _, users := newClientsFixture()
	admin := users.seed("root", domain.RoleAdmin)

	client, err := svc.Create(context.Background(), ports.CreateClientInput{
		Actor: admin,
		Name:  "Acme",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if client.UserID != nil {
		t.Fatalf("expected unassigned client, got owner %d", *client.UserID)
	}
}

func TestClientsService_Create_ManagerCannotAssignOthers(t *testing.T) {
	svc, _, users := newClientsFixture()
	manager := users.seed("mona", domain.RoleManager)
	users.seed("rival", domain.RoleManager)

	_, err := svc.Create(context.Background(), ports.CreateClientInput{
		Actor:         manager,
		Name:          "Acme",
		OwnerUsername: "rival",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestClientsService_Create_Duplicate(t *testing.T) {
	svc, clients, users := newClientsFixture()
	admin := users.seed("root", domain.RoleAdmin)
	clients.seed("Acme", nil)

	_, err := svc.Create(context.Background(), ports.CreateClientInput{Actor: admin, Name: "Acme"})
	if !errors.Is(err, domain.ErrClientExists) {
		t.Fatalf("expected ErrClientExists, got %v", err)
	}
}

func TestClientsService_Take(t *testing.T) {
	svc, clients, users := newClientsFixture()
	manager := users.seed("mona", domain.RoleManager)
	target := clients.seed("Acme", nil)

	taken, err := svc.Take(context.Background(), manager, ports.ClientRef{ID: &target.ID})
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if taken.UserID == nil || *taken.UserID != manager.ID {
		t.Fatalf("expected client owned by manager, got %+v", taken.UserID)
	}
}

func TestClientsService_Take_AlreadyAssigned(t *testing.T) {
	svc, clients, users := newClientsFixture()
	manager := users.seed("mona", domain.RoleManager)
	rival := users.seed("rival", domain.RoleManager)
	target := clients.seed("Acme", &rival.ID)

	_, err := svc.Take(context.Background(), manager, ports.ClientRef{ID: &target.ID})
	if !errors.Is(err, domain.ErrClientAssigned) {
		t.Fatalf("expected ErrClientAssigned, got %v", err)
	}
}

func TestClientsService_Take_ByName(t *testing.T) {
	svc, clients, users := newClientsFixture()
	manager := users.seed("mona", domain.RoleManager)
	clients.seed("Acme", nil)

	taken, err := svc.Take(context.Background(), manager, ports.ClientRef{Name: "Acme"})
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if taken.Name != "Acme" {
		t.Fatalf("unexpected client: %+v", taken)
	}
}

func TestClientsService_DelegateAndDischarge(t *testing.T) {
	svc, clients, users := newClientsFixture()
	mona := users.seed("mona", domain.RoleManager)
	rival := users.seed("rival", domain.RoleManager)
	target := clients.seed("Acme", &mona.ID)

	delegated, err := svc.Delegate(context.Background(), ports.ClientRef{ID: &target.ID}, "rival")
	if err != nil {
		t.Fatalf("Delegate returned error: %v", err)
	}
	if delegated.UserID == nil || *delegated.UserID != rival.ID {
		t.Fatalf("expected client owned by rival, got %+v", delegated.UserID)
	}

	discharged, err := svc.Discharge(context.Background(), ports.ClientRef{ID: &target.ID})
	if err != nil {
		t.Fatalf("Discharge returned error: %v", err)
	}
	if discharged.UserID != nil {
		t.Fatalf("expected unassigned client, got owner %d", *discharged.UserID)
	}
}

func TestClientsService_Update_ManagerRequiresOwnership(t *testing.T) {
	svc, clients, users := newClientsFixture()
	mona := users.seed("mona", domain.RoleManager)
	rival := users.seed("rival", domain.RoleManager)
	target := clients.seed("Acme", &rival.ID)

	_, err := svc.Update(context.Background(), ports.UpdateClientInput{
		Actor:  mona,
		Target: ports.ClientRef{ID: &target.ID},
		Name:   "Acme Ltd",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestClientsService_ListUnassigned(t *testing.T) {
	svc, clients, users := newClientsFixture()
	mona := users.seed("mona", domain.RoleManager)
	clients.seed("Owned", &mona.ID)
	clients.seed("Free", nil)

	list, err := svc.ListUnassigned(context.Background(), ports.ClientsFilter{SortBy: "id"})
	if err != nil {
		t.Fatalf("ListUnassigned returned error: %v", err)
	}
	if list.Total != 1 || list.Clients[0].Name != "Free" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestClientsService_List_InvalidSort(t *testing.T) {
	svc, _, users := newClientsFixture()
	admin := users.seed("root", domain.RoleAdmin)

	_, err := svc.List(context.Background(), admin, ports.ClientsFilter{SortBy: "notes"}, false)
	if !errors.Is(err, domain.ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestClientsService_Delete_NotFound(t *testing.T) {
	svc, _, _ := newClientsFixture()

	if _, err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}
