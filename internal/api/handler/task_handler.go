package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

type TaskHandler struct {
	tasksService ports.TasksService
}

func NewTaskHandler(tasksService ports.TasksService) *TaskHandler {
	return &TaskHandler{tasksService: tasksService}
}

type taskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo doing done"`
	DueDate     *time.Time `json:"due_date"`
	UserName    string     `json:"user_name"`
}

type tasksListResponse struct {
	Total int64         `json:"total"`
	Skip  *int          `json:"skip"`
	Limit *int          `json:"limit"`
	Tasks []domain.Task `json:"tasks"`
}

type taskStatusResponse struct {
	Status string `json:"status"`
	Tasks  any    `json:"tasks"`
}

func taskRef(c echo.Context) (ports.TaskRef, error) {
	id, err := uintQuery(c, "task_id")
	if err != nil {
		return ports.TaskRef{}, err
	}
	title := strings.TrimSpace(c.QueryParam("title"))
	if id == nil && title == "" {
		return ports.TaskRef{}, echo.NewHTTPError(http.StatusBadRequest, "task_id or title query parameter is required")
	}
	return ports.TaskRef{ID: id, Title: title}, nil
}

// List returns a filtered page of tasks; my_tasks restricts to the caller's.
func (h *TaskHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	skip, err := intQuery(c, "skip")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}
	sortBy, order := sortParams(c)

	filter := ports.TasksFilter{
		OwnerUsername: strings.TrimSpace(c.QueryParam("related_to_user")),
		Search:        strings.TrimSpace(c.QueryParam("search")),
		SortBy:        sortBy,
		Order:         order,
		Skip:          skip,
		Limit:         limit,
	}

	list, err := h.tasksService.List(c.Request().Context(), actor, filter, boolQuery(c, "my_tasks"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tasksListResponse{
		Total: list.Total,
		Skip:  list.Skip,
		Limit: list.Limit,
		Tasks: list.Tasks,
	})
}

// Create registers a new task, optionally pre-assigned to a named user.
func (h *TaskHandler) Create(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.tasksService.Create(c.Request().Context(), ports.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        domain.TaskStatus(req.Status),
		DueDate:       req.DueDate,
		OwnerUsername: req.UserName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, taskStatusResponse{Status: statusCreated, Tasks: task})
}

// Update fully replaces the target task's mutable fields.
func (h *TaskHandler) Update(c echo.Context) error {
	target, err := taskRef(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.tasksService.Update(c.Request().Context(), ports.UpdateTaskInput{
		Target:        target,
		Title:         req.Title,
		Description:   req.Description,
		Status:        domain.TaskStatus(req.Status),
		DueDate:       req.DueDate,
		OwnerUsername: req.UserName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskStatusResponse{Status: statusChanged, Tasks: task})
}

// Take claims an unassigned task for the caller, optionally moving its status.
func (h *TaskHandler) Take(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	target, err := taskRef(c)
	if err != nil {
		return err
	}

	status := domain.TaskStatus(strings.TrimSpace(c.QueryParam("status")))
	task, err := h.tasksService.Take(c.Request().Context(), actor, target, status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskStatusResponse{Status: statusChanged, Tasks: task})
}

// Delete removes the target task.
func (h *TaskHandler) Delete(c echo.Context) error {
	target, err := taskRef(c)
	if err != nil {
		return err
	}

	task, err := h.tasksService.Delete(c.Request().Context(), target)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskStatusResponse{Status: statusDeleted, Tasks: task})
}

// DeleteDone removes every finished task.
func (h *TaskHandler) DeleteDone(c echo.Context) error {
	tasks, err := h.tasksService.DeleteDone(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskStatusResponse{Status: statusDeleted, Tasks: tasks})
}

// DeleteExpired removes every task whose due date has passed.
func (h *TaskHandler) DeleteExpired(c echo.Context) error {
	tasks, err := h.tasksService.DeleteExpired(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskStatusResponse{Status: statusDeleted, Tasks: tasks})
}
