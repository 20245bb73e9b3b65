package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

type ClientHandler struct {
	clientsService ports.ClientsService
}

func NewClientHandler(clientsService ports.ClientsService) *ClientHandler {
	return &ClientHandler{clientsService: clientsService}
}

type clientRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
	UserName string `json:"user_name"`
}

type clientsListResponse struct {
	Total   int64           `json:"total"`
	Skip    *int            `json:"skip"`
	Limit   *int            `json:"limit"`
	Clients []domain.Client `json:"clients"`
}

type clientStatusResponse struct {
	Status  string         `json:"status"`
	Clients *domain.Client `json:"clients"`
}

func clientRef(c echo.Context) (ports.ClientRef, error) {
	id, err := uintQuery(c, "client_id")
	if err != nil {
		return ports.ClientRef{}, err
	}
	name := strings.TrimSpace(c.QueryParam("name"))
	if id == nil && name == "" {
		return ports.ClientRef{}, echo.NewHTTPError(http.StatusBadRequest, "client_id or name query parameter is required")
	}
	return ports.ClientRef{ID: id, Name: name}, nil
}

func (h *ClientHandler) filter(c echo.Context) (ports.ClientsFilter, error) {
	skip, err := intQuery(c, "skip")
	if err != nil {
		return ports.ClientsFilter{}, err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return ports.ClientsFilter{}, err
	}
	sortBy, order := sortParams(c)

	return ports.ClientsFilter{
		OwnerUsername: strings.TrimSpace(c.QueryParam("related_to_user")),
		Search:        strings.TrimSpace(c.QueryParam("search")),
		SortBy:        sortBy,
		Order:         order,
		Skip:          skip,
		Limit:         limit,
	}, nil
}

// List returns a filtered page of clients. Managers see only their own
// clients when related_to_me is set; admins see everything either way.
func (h *ClientHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	filter, err := h.filter(c)
	if err != nil {
		return err
	}

	list, err := h.clientsService.List(c.Request().Context(), actor, filter, boolQuery(c, "related_to_me"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientsListResponse{
		Total:   list.Total,
		Skip:    list.Skip,
		Limit:   list.Limit,
		Clients: list.Clients,
	})
}

// ListUnassigned returns the pool of clients without an owner.
func (h *ClientHandler) ListUnassigned(c echo.Context) error {
	filter, err := h.filter(c)
	if err != nil {
		return err
	}

	list, err := h.clientsService.ListUnassigned(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientsListResponse{
		Total:   list.Total,
		Skip:    list.Skip,
		Limit:   list.Limit,
		Clients: list.Clients,
	})
}

// Create registers a new client, optionally assigned to a named owner.
func (h *ClientHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.clientsService.Create(c.Request().Context(), ports.CreateClientInput{
		Actor:         actor,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Notes:         req.Notes,
		OwnerUsername: req.UserName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, clientStatusResponse{Status: statusCreated, Clients: client})
}

// Update fully replaces the target client's fields.
func (h *ClientHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	target, err := clientRef(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.clientsService.Update(c.Request().Context(), ports.UpdateClientInput{
		Actor:         actor,
		Target:        target,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Notes:         req.Notes,
		OwnerUsername: req.UserName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientStatusResponse{Status: statusChanged, Clients: client})
}

// Take claims an unassigned client for the caller.
func (h *ClientHandler) Take(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	target, err := clientRef(c)
	if err != nil {
		return err
	}

	client, err := h.clientsService.Take(c.Request().Context(), actor, target)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientStatusResponse{Status: statusChanged, Clients: client})
}

// Delegate reassigns the client to the named user, overriding any owner.
func (h *ClientHandler) Delegate(c echo.Context) error {
	target, err := clientRef(c)
	if err != nil {
		return err
	}

	username := strings.TrimSpace(c.QueryParam("username"))
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username query parameter is required")
	}

	client, err := h.clientsService.Delegate(c.Request().Context(), target, username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientStatusResponse{Status: statusChanged, Clients: client})
}

// Discharge returns the client to the unassigned pool.
func (h *ClientHandler) Discharge(c echo.Context) error {
	target, err := clientRef(c)
	if err != nil {
		return err
	}

	client, err := h.clientsService.Discharge(c.Request().Context(), target)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientStatusResponse{Status: statusChanged, Clients: client})
}

// Delete removes the named client; its deals go with it.
func (h *ClientHandler) Delete(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}

	client, err := h.clientsService.Delete(c.Request().Context(), name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientStatusResponse{Status: statusDeleted, Clients: client})
}
