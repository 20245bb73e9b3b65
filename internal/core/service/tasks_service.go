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

var taskSortFields = map[string]struct{}{
	"id":       {},
	"title":    {},
	"status":   {},
	"due_date": {},
}

// TasksService implements task management. Tasks are owned directly by a
// user; an unassigned task sits in a pool any authenticated actor may claim
// from.
type TasksService struct {
	tasks  ports.TasksRepository
	users  ports.UsersRepository
	logger zerolog.Logger
}

func NewTasksService(tasks ports.TasksRepository, users ports.UsersRepository, logger zerolog.Logger) *TasksService {
	return &TasksService{tasks: tasks, users: users, logger: logger}
}

func (s *TasksService) List(ctx context.Context, actor *domain.User, filter ports.TasksFilter, myTasks bool) (*ports.TasksList, error) {
	if err := validateSort(taskSortFields, filter.SortBy); err != nil {
		return nil, err
	}
	if myTasks {
		filter.OwnerUsername = actor.Username
	}

	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.TasksList{Total: total, Skip: filter.Skip, Limit: filter.Limit, Tasks: tasks}, nil
}

// resolveTask locates a task by id when given, else by exact title.
func (s *TasksService) resolveTask(ctx context.Context, ref ports.TaskRef) (*domain.Task, error) {
	if ref.ID != nil {
		return s.tasks.FindByID(ctx, *ref.ID)
	}
	if ref.Title == "" {
		return nil, validation("task_id or title is required")
	}
	return s.tasks.FindByTitle(ctx, ref.Title)
}

// resolveOwner maps an optional owner username to a user id; empty leaves
// the task unassigned.
func (s *TasksService) resolveOwner(ctx context.Context, ownerUsername string) (*uint, error) {
	if ownerUsername == "" {
		return nil, nil
	}
	owner, err := s.users.FindByUsername(ctx, ownerUsername)
	if err != nil {
		return nil, err
	}
	id := owner.ID
	return &id, nil
}

func (s *TasksService) Create(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if input.Status == "" {
		input.Status = domain.TaskStatusTodo
	}
	if !domain.ValidTaskStatus(input.Status) {
		return nil, validation("unknown task status %q", input.Status)
	}
	if err := futureDate("due_date", input.DueDate); err != nil {
		return nil, err
	}

	if _, err := s.tasks.FindByTitle(ctx, input.Title); err == nil {
		return nil, domain.ErrTaskExists
	} else if !errors.Is(err, domain.ErrTaskNotFound) {
		return nil, err
	}

	ownerID, err := s.resolveOwner(ctx, input.OwnerUsername)
	if err != nil {
		return nil, err
	}

	created, err := s.tasks.Create(ctx, &domain.Task{
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskExists) {
			return nil, err
		}
		return nil, failedTo("create task", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("task", "create").Inc()
	s.logger.Info().Str("title", created.Title).Msg("task created")
	return created, nil
}

func (s *TasksService) Update(ctx context.Context, input ports.UpdateTaskInput) (*domain.Task, error) {
	if !domain.ValidTaskStatus(input.Status) {
		return nil, validation("unknown task status %q", input.Status)
	}

	task, err := s.resolveTask(ctx, input.Target)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.resolveOwner(ctx, input.OwnerUsername)
	if err != nil {
		return nil, err
	}

	task.UserID = ownerID
	task.Title = input.Title
	task.Description = input.Description
	task.Status = input.Status
	task.DueDate = input.DueDate

	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		if errors.Is(err, domain.ErrTaskExists) {
			return nil, err
		}
		return nil, failedTo("change task", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("task", "update").Inc()
	return updated, nil
}

// Take claims a task for the actor. Any authenticated user may claim a
// task that is unassigned or already theirs; the assignment itself is a
// conditional update in the store.
func (s *TasksService) Take(ctx context.Context, actor *domain.User, target ports.TaskRef, status domain.TaskStatus) (*domain.Task, error) {
	task, err := s.resolveTask(ctx, target)
	if err != nil {
		return nil, err
	}
	if task.UserID != nil && *task.UserID != actor.ID {
		return nil, fmt.Errorf("%w: task %s is already assigned", domain.ErrTaskAssigned, task.Title)
	}

	if status == "" {
		status = task.Status
	} else if !domain.ValidTaskStatus(status) {
		return nil, validation("unknown task status %q", status)
	}

	taken, err := s.tasks.Claim(ctx, task.ID, actor.ID, status)
	if err != nil {
		if errors.Is(err, domain.ErrTaskAssigned) {
			return nil, fmt.Errorf("%w: task %s is already assigned", domain.ErrTaskAssigned, task.Title)
		}
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, failedTo("take task", err)
	}

	s.logger.Info().Str("title", taken.Title).Str("username", actor.Username).Msg("task taken")
	return taken, nil
}

func (s *TasksService) Delete(ctx context.Context, target ports.TaskRef) (*domain.Task, error) {
	task, err := s.resolveTask(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Delete(ctx, task); err != nil {
		return nil, failedTo("delete task", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("task", "delete").Inc()
	return task, nil
}

func (s *TasksService) DeleteDone(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.DeleteDone(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoTasksMatched) {
			return nil, err
		}
		return nil, failedTo("delete done tasks", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("task", "delete").Inc()
	s.logger.Info().Int("count", len(tasks)).Msg("done tasks deleted")
	return tasks, nil
}

func (s *TasksService) DeleteExpired(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNoTasksMatched) {
			return nil, err
		}
		return nil, failedTo("delete expired tasks", err)
	}

	metrics.EntityMutationsTotal.WithLabelValues("task", "delete").Inc()
	s.logger.Info().Int("count", len(tasks)).Msg("expired tasks deleted")
	return tasks, nil
}
