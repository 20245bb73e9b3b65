package ports

import (
	"context"
	"time"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// TasksFilter carries the query parameters for listing tasks.
type TasksFilter struct {
	OwnerUsername string // optional: owned by users whose name matches
	Search        string // optional: substring match on title, description or status
	SortBy        string
	Order         string
	Skip          *int
	Limit         *int
}

// TasksRepository defines persistence operations for tasks.
type TasksRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Task, error)
	FindByTitle(ctx context.Context, title string) (*domain.Task, error)
	List(ctx context.Context, filter TasksFilter) ([]domain.Task, int64, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Claim assigns the task to userID and moves it to status in a single
	// conditional update applied only while the task is unassigned or
	// already owned by userID; a lost race is domain.ErrTaskAssigned.
	Claim(ctx context.Context, taskID, userID uint, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, task *domain.Task) error
	// DeleteDone removes every task with status done; DeleteExpired every
	// task whose due date lies before now. Both return the removed rows
	// and raise domain.ErrNoTasksMatched on an empty set.
	DeleteDone(ctx context.Context) ([]domain.Task, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]domain.Task, error)
}

// TaskRef locates a task by id when present, else by exact title.
type TaskRef struct {
	ID    *uint
	Title string
}

// CreateTaskInput carries the fields for a new task. OwnerUsername is
// optional; when empty the task starts in the unassigned pool.
type CreateTaskInput struct {
	Title         string
	Description   string
	Status        domain.TaskStatus
	DueDate       *time.Time
	OwnerUsername string
}

// UpdateTaskInput fully replaces the target task's mutable fields.
type UpdateTaskInput struct {
	Target        TaskRef
	Title         string
	Description   string
	Status        domain.TaskStatus
	DueDate       *time.Time
	OwnerUsername string
}

// TasksList is the list envelope body for tasks.
type TasksList struct {
	Total int64
	Skip  *int
	Limit *int
	Tasks []domain.Task
}

// TasksService defines use-case operations for tasks.
type TasksService interface {
	List(ctx context.Context, actor *domain.User, filter TasksFilter, myTasks bool) (*TasksList, error)
	Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, input UpdateTaskInput) (*domain.Task, error)
	// Take claims an unassigned (or already own) task for the actor and
	// optionally moves its status.
	Take(ctx context.Context, actor *domain.User, target TaskRef, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, target TaskRef) (*domain.Task, error)
	DeleteDone(ctx context.Context) ([]domain.Task, error)
	DeleteExpired(ctx context.Context) ([]domain.Task, error)
}
