package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

func TestUsersService_Create_Success(t *testing.T) {
	repo := newStubUsersRepo()
	svc := NewUsersService(repo, zerolog.Nop())

	user, err := svc.Create(context.Background(), ports.CreateUserInput{
		Username: "alice",
		Password: "pass.w0rd",
		Role:     domain.RoleManager,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.PasswordHash == "pass.w0rd" {
		t.Fatalf("expected password to be hashed")
	}
	if user.Role != domain.RoleManager {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestUsersService_Create_UnknownRole(t *testing.T) {
	svc := NewUsersService(newStubUsersRepo(), zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateUserInput{
		Username: "alice",
		Password: "pass.w0rd",
		Role:     "owner",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUsersService_Create_Duplicate(t *testing.T) {
	repo := newStubUsersRepo()
	svc := NewUsersService(repo, zerolog.Nop())
	repo.seed("alice", domain.RoleUser)

	_, err := svc.Create(context.Background(), ports.CreateUserInput{
		Username: "alice",
		Password: "pass.w0rd",
		Role:     domain.RoleUser,
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUsersService_List_InvalidSort(t *testing.T) {
	svc := NewUsersService(newStubUsersRepo(), zerolog.Nop())

	_, err := svc.List(context.Background(), ports.UsersFilter{SortBy: "password_hash", Order: "asc"})
	if !errors.Is(err, domain.ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestUsersService_List_UnknownRole(t *testing.T) {
	svc := NewUsersService(newStubUsersRepo(), zerolog.Nop())

	_, err := svc.List(context.Background(), ports.UsersFilter{SortBy: "id", Role: "owner"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUsersService_List_FiltersByRole(t *testing.T) {
	repo := newStubUsersRepo()
	svc := NewUsersService(repo, zerolog.Nop())
	repo.seed("alice", domain.RoleManager)
	repo.seed("bob", domain.RoleUser)

	list, err := svc.List(context.Background(), ports.UsersFilter{SortBy: "id", Role: domain.RoleManager})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if list.Total != 1 || len(list.Users) != 1 || list.Users[0].Username != "alice" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestUsersService_Update_Replaces(t *testing.T) {
	repo := newStubUsersRepo()
	svc := NewUsersService(repo, zerolog.Nop())
	repo.seed("alice", domain.RoleUser)

	updated, err := svc.Update(context.Background(), ports.UpdateUserInput{
		TargetUsername: "alice",
		Username:       "alice2",
		Password:       "pass.w0rd",
		Role:           domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Username != "alice2" || updated.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", updated)
	}

	if _, err := repo.FindByUsername(context.Background(), "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected old username gone, got %v", err)
	}
}

func TestUsersService_Update_NotFound(t *testing.T) {
	svc := NewUsersService(newStubUsersRepo(), zerolog.Nop())

	_, err := svc.Update(context.Background(), ports.UpdateUserInput{
		TargetUsername: "nobody",
		Username:       "nobody",
		Password:       "pass.w0rd",
		Role:           domain.RoleUser,
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUsersService_Delete(t *testing.T) {
	repo := newStubUsersRepo()
	svc := NewUsersService(repo, zerolog.Nop())
	repo.seed("alice", domain.RoleUser)

	deleted, err := svc.Delete(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted.Username != "alice" {
		t.Fatalf("unexpected user: %+v", deleted)
	}

	if _, err := svc.Delete(context.Background(), "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}
