package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

type UserHandler struct {
	usersService ports.UsersService
}

func NewUserHandler(usersService ports.UsersService) *UserHandler {
	return &UserHandler{usersService: usersService}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=user manager admin"`
}

type updateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=user manager admin"`
}

type usersListResponse struct {
	Total int64         `json:"total"`
	Skip  *int          `json:"skip"`
	Limit *int          `json:"limit"`
	Users []domain.User `json:"users"`
}

type userStatusResponse struct {
	Status string       `json:"status"`
	Users  *domain.User `json:"users"`
}

// Me returns the caller's own account.
func (h *UserHandler) Me(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.usersService.GetByUsername(c.Request().Context(), actor.Username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// List returns a filtered, sorted page of user accounts.
func (h *UserHandler) List(c echo.Context) error {
	skip, err := intQuery(c, "skip")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}
	sortBy, order := sortParams(c)

	filter := ports.UsersFilter{
		Role:   domain.Role(strings.TrimSpace(c.QueryParam("role"))),
		Search: strings.TrimSpace(c.QueryParam("search")),
		SortBy: sortBy,
		Order:  order,
		Skip:   skip,
		Limit:  limit,
	}

	list, err := h.usersService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, usersListResponse{
		Total: list.Total,
		Skip:  list.Skip,
		Limit: list.Limit,
		Users: list.Users,
	})
}

// Create registers a new account with the given role.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.usersService.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userStatusResponse{Status: statusCreated, Users: user})
}

// Update fully replaces the target account's username, password and role.
func (h *UserHandler) Update(c echo.Context) error {
	target := strings.TrimSpace(c.QueryParam("username"))
	if target == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username query parameter is required")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.usersService.Update(c.Request().Context(), ports.UpdateUserInput{
		TargetUsername: target,
		Username:       req.Username,
		Password:       req.Password,
		Role:           domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userStatusResponse{Status: statusChanged, Users: user})
}

// Delete removes the named account.
func (h *UserHandler) Delete(c echo.Context) error {
	username := strings.TrimSpace(c.QueryParam("username"))
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username query parameter is required")
	}

	user, err := h.usersService.Delete(c.Request().Context(), username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userStatusResponse{Status: statusDeleted, Users: user})
}
