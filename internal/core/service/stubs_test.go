package service

import (
	"context"
	"strings"
	"time"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

// Map-backed repository stubs. They honor the same sentinel-error contract
// as the real store but skip sorting and pagination, which belong to the
// store's own tests.

type stubUsersRepo struct {
	users  map[uint]*domain.User
	nextID uint
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{users: make(map[uint]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUsersRepo) seed(username string, role domain.Role) *domain.User {
	u, _ := r.Create(context.Background(), &domain.User{Username: username, PasswordHash: "x", Role: role})
	return u
}

func (r *stubUsersRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUsersRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUsersRepo) List(_ context.Context, filter ports.UsersFilter) ([]domain.User, int64, error) {
	var out []domain.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Username, filter.Search) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	return out, int64(len(out)), nil
}

func (r *stubUsersRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	clone := cloneUser(user)
	clone.ID = r.nextID
	r.nextID++
	r.users[clone.ID] = cloneUser(clone)
	return clone, nil
}

func (r *stubUsersRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ID != user.ID && u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUsersRepo) UpdatePassword(_ context.Context, id uint, passwordHash string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return cloneUser(u), nil
}

func (r *stubUsersRepo) Delete(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, user.ID)
	return nil
}

type stubClientsRepo struct {
	clients map[uint]*domain.Client
	nextID  uint
}

func newStubClientsRepo() *stubClientsRepo {
	return &stubClientsRepo{clients: make(map[uint]*domain.Client), nextID: 1}
}

func cloneClient(c *domain.Client) *domain.Client {
	if c == nil {
		return nil
	}
	clone := *c
	if c.UserID != nil {
		id := *c.UserID
		clone.UserID = &id
	}
	return &clone
}

func (r *stubClientsRepo) seed(name string, ownerID *uint) *domain.Client {
	c, _ := r.Create(context.Background(), &domain.Client{Name: name, UserID: ownerID})
	return c
}

func (r *stubClientsRepo) FindByID(_ context.Context, id uint) (*domain.Client, error) {
	if c, ok := r.clients[id]; ok {
		return cloneClient(c), nil
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientsRepo) FindByName(_ context.Context, name string) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.Name == name {
			return cloneClient(c), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientsRepo) List(_ context.Context, filter ports.ClientsFilter) ([]domain.Client, int64, error) {
	var out []domain.Client
	for _, c := range r.clients {
		if filter.Unassigned && c.UserID != nil {
			continue
		}
		if filter.Search != "" && !strings.Contains(c.Name, filter.Search) {
			continue
		}
		out = append(out, *cloneClient(c))
	}
	return out, int64(len(out)), nil
}

func (r *stubClientsRepo) Create(_ context.Context, client *domain.Client) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.Name == client.Name {
			return nil, domain.ErrClientExists
		}
	}
	clone := cloneClient(client)
	clone.ID = r.nextID
	r.nextID++
	r.clients[clone.ID] = cloneClient(clone)
	return clone, nil
}

func (r *stubClientsRepo) Update(_ context.Context, client *domain.Client) (*domain.Client, error) {
	if _, ok := r.clients[client.ID]; !ok {
		return nil, domain.ErrClientNotFound
	}
	r.clients[client.ID] = cloneClient(client)
	return cloneClient(client), nil
}

func (r *stubClientsRepo) Assign(_ context.Context, clientID uint, userID *uint, onlyIfUnassigned bool) (*domain.Client, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	if onlyIfUnassigned && c.UserID != nil {
		return nil, domain.ErrClientAssigned
	}
	c.UserID = nil
	if userID != nil {
		id := *userID
		c.UserID = &id
	}
	return cloneClient(c), nil
}

func (r *stubClientsRepo) Delete(_ context.Context, client *domain.Client) error {
	if _, ok := r.clients[client.ID]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.clients, client.ID)
	return nil
}

type stubDealsRepo struct {
	deals  map[uint]*domain.Deal
	nextID uint
}

func newStubDealsRepo() *stubDealsRepo {
	return &stubDealsRepo{deals: make(map[uint]*domain.Deal), nextID: 1}
}

func cloneDeal(d *domain.Deal) *domain.Deal {
	if d == nil {
		return nil
	}
	clone := *d
	if d.ClosedAt != nil {
		t := *d.ClosedAt
		clone.ClosedAt = &t
	}
	return &clone
}

func (r *stubDealsRepo) seed(title string, clientID uint) *domain.Deal {
	d, _ := r.Create(context.Background(), &domain.Deal{Title: title, ClientID: clientID, Status: domain.DealStatusNew, Value: 100})
	return d
}

func (r *stubDealsRepo) FindByID(_ context.Context, id uint) (*domain.Deal, error) {
	if d, ok := r.deals[id]; ok {
		return cloneDeal(d), nil
	}
	return nil, domain.ErrDealNotFound
}

func (r *stubDealsRepo) FindByTitle(_ context.Context, title string) (*domain.Deal, error) {
	for _, d := range r.deals {
		if d.Title == title {
			return cloneDeal(d), nil
		}
	}
	return nil, domain.ErrDealNotFound
}

func (r *stubDealsRepo) List(_ context.Context, filter ports.DealsFilter) ([]domain.Deal, int64, error) {
	var out []domain.Deal
	for _, d := range r.deals {
		if filter.Search != "" && !strings.Contains(d.Title, filter.Search) {
			continue
		}
		out = append(out, *cloneDeal(d))
	}
	return out, int64(len(out)), nil
}

func (r *stubDealsRepo) Create(_ context.Context, deal *domain.Deal) (*domain.Deal, error) {
	for _, d := range r.deals {
		if d.Title == deal.Title {
			return nil, domain.ErrDealExists
		}
	}
	clone := cloneDeal(deal)
	clone.ID = r.nextID
	r.nextID++
	r.deals[clone.ID] = cloneDeal(clone)
	return clone, nil
}

func (r *stubDealsRepo) Update(_ context.Context, deal *domain.Deal) (*domain.Deal, error) {
	if _, ok := r.deals[deal.ID]; !ok {
		return nil, domain.ErrDealNotFound
	}
	r.deals[deal.ID] = cloneDeal(deal)
	return cloneDeal(deal), nil
}

func (r *stubDealsRepo) Delete(_ context.Context, deal *domain.Deal) error {
	if _, ok := r.deals[deal.ID]; !ok {
		return domain.ErrDealNotFound
	}
	delete(r.deals, deal.ID)
	return nil
}

func (r *stubDealsRepo) DeleteByClient(_ context.Context, clientID uint) ([]domain.Deal, error) {
	var out []domain.Deal
	for id, d := range r.deals {
		if d.ClientID == clientID {
			out = append(out, *cloneDeal(d))
			delete(r.deals, id)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNoDealsForClient
	}
	return out, nil
}

type stubTasksRepo struct {
	tasks  map[uint]*domain.Task
	nextID uint
}

func newStubTasksRepo() *stubTasksRepo {
	return &stubTasksRepo{tasks: make(map[uint]*domain.Task), nextID: 1}
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.UserID != nil {
		id := *t.UserID
		clone.UserID = &id
	}
	if t.DueDate != nil {
		d := *t.DueDate
		clone.DueDate = &d
	}
	return &clone
}

func (r *stubTasksRepo) seed(title string, ownerID *uint, status domain.TaskStatus) *domain.Task {
	t, _ := r.Create(context.Background(), &domain.Task{Title: title, UserID: ownerID, Status: status})
	return t
}

func (r *stubTasksRepo) FindByID(_ context.Context, id uint) (*domain.Task, error) {
	if t, ok := r.tasks[id]; ok {
		return cloneTask(t), nil
	}
	return nil, domain.ErrTaskNotFound
}

func (r *stubTasksRepo) FindByTitle(_ context.Context, title string) (*domain.Task, error) {
	for _, t := range r.tasks {
		if t.Title == title {
			return cloneTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *stubTasksRepo) List(_ context.Context, filter ports.TasksFilter) ([]domain.Task, int64, error) {
	var out []domain.Task
	for _, t := range r.tasks {
		if filter.Search != "" && !strings.Contains(t.Title, filter.Search) {
			continue
		}
		out = append(out, *cloneTask(t))
	}
	return out, int64(len(out)), nil
}

func (r *stubTasksRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	for _, t := range r.tasks {
		if t.Title == task.Title {
			return nil, domain.ErrTaskExists
		}
	}
	clone := cloneTask(task)
	clone.ID = r.nextID
	r.nextID++
	r.tasks[clone.ID] = cloneTask(clone)
	return clone, nil
}

func (r *stubTasksRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if _, ok := r.tasks[task.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = cloneTask(task)
	return cloneTask(task), nil
}

func (r *stubTasksRepo) Claim(_ context.Context, taskID, userID uint, status domain.TaskStatus) (*domain.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if t.UserID != nil && *t.UserID != userID {
		return nil, domain.ErrTaskAssigned
	}
	id := userID
	t.UserID = &id
	t.Status = status
	return cloneTask(t), nil
}

func (r *stubTasksRepo) Delete(_ context.Context, task *domain.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, task.ID)
	return nil
}

func (r *stubTasksRepo) DeleteDone(_ context.Context) ([]domain.Task, error) {
	var out []domain.Task
	for id, t := range r.tasks {
		if t.Status == domain.TaskStatusDone {
			out = append(out, *cloneTask(t))
			delete(r.tasks, id)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNoTasksMatched
	}
	return out, nil
}

func (r *stubTasksRepo) DeleteExpired(_ context.Context, now time.Time) ([]domain.Task, error) {
	var out []domain.Task
	for id, t := range r.tasks {
		if t.DueDate != nil && t.DueDate.Before(now) {
			out = append(out, *cloneTask(t))
			delete(r.tasks, id)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNoTasksMatched
	}
	return out, nil
}
