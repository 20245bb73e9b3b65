package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

type DealHandler struct {
	dealsService ports.DealsService
}

func NewDealHandler(dealsService ports.DealsService) *DealHandler {
	return &DealHandler{dealsService: dealsService}
}

type createDealRequest struct {
	ClientID   *uint      `json:"client_id"`
	ClientName string     `json:"client_name"`
	Title      string     `json:"title" validate:"required"`
	Status     string     `json:"status" validate:"omitempty,oneof=new in_progress closed"`
	Value      int64      `json:"value" validate:"required,gt=0"`
	ClosedAt   *time.Time `json:"closed_at"`
}

type updateDealRequest struct {
	Title    string     `json:"title" validate:"required"`
	Status   string     `json:"status" validate:"required,oneof=new in_progress closed"`
	Value    int64      `json:"value" validate:"required,gt=0"`
	ClosedAt *time.Time `json:"closed_at"`
}

type dealsListResponse struct {
	Total int64         `json:"total"`
	Skip  *int          `json:"skip"`
	Limit *int          `json:"limit"`
	Deals []domain.Deal `json:"deals"`
}

type dealStatusResponse struct {
	Status string `json:"status"`
	Deals  any    `json:"deals"`
}

func dealRef(c echo.Context) (ports.DealRef, error) {
	id, err := uintQuery(c, "deal_id")
	if err != nil {
		return ports.DealRef{}, err
	}
	title := strings.TrimSpace(c.QueryParam("title"))
	if id == nil && title == "" {
		return ports.DealRef{}, echo.NewHTTPError(http.StatusBadRequest, "deal_id or title query parameter is required")
	}
	return ports.DealRef{ID: id, Title: title}, nil
}

func (h *DealHandler) filter(c echo.Context) (ports.DealsFilter, error) {
	skip, err := intQuery(c, "skip")
	if err != nil {
		return ports.DealsFilter{}, err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return ports.DealsFilter{}, err
	}
	moreThan, err := int64Query(c, "more_than")
	if err != nil {
		return ports.DealsFilter{}, err
	}
	lessThan, err := int64Query(c, "less_than")
	if err != nil {
		return ports.DealsFilter{}, err
	}
	sortBy, order := sortParams(c)

	return ports.DealsFilter{
		Search:        strings.TrimSpace(c.QueryParam("search")),
		MoreThan:      moreThan,
		LessThan:      lessThan,
		OwnerUsername: strings.TrimSpace(c.QueryParam("related_to_user")),
		ClientName:    strings.TrimSpace(c.QueryParam("related_to_client")),
		SortBy:        sortBy,
		Order:         order,
		Skip:          skip,
		Limit:         limit,
	}, nil
}

// List returns a filtered page of deals. Managers see only deals of their
// own clients when related_to_me is set.
func (h *DealHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	filter, err := h.filter(c)
	if err != nil {
		return err
	}

	list, err := h.dealsService.List(c.Request().Context(), actor, filter, boolQuery(c, "related_to_me"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dealsListResponse{
		Total: list.Total,
		Skip:  list.Skip,
		Limit: list.Limit,
		Deals: list.Deals,
	})
}

// ListByDate is List with a date window applied to one timestamp field.
func (h *DealHandler) ListByDate(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	filter, err := h.filter(c)
	if err != nil {
		return err
	}

	filter.DateField = strings.TrimSpace(c.QueryParam("date_field"))
	if filter.ExactDate, err = timeQuery(c, "exact_date"); err != nil {
		return err
	}
	if filter.EarlierThan, err = timeQuery(c, "earlier_than"); err != nil {
		return err
	}
	if filter.LaterThan, err = timeQuery(c, "later_than"); err != nil {
		return err
	}
	filter.CurrentMonth = boolQuery(c, "new")

	list, err := h.dealsService.List(c.Request().Context(), actor, filter, boolQuery(c, "related_to_me"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dealsListResponse{
		Total: list.Total,
		Skip:  list.Skip,
		Limit: list.Limit,
		Deals: list.Deals,
	})
}

// Create registers a new deal under the referenced client.
func (h *DealHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createDealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	deal, err := h.dealsService.Create(c.Request().Context(), ports.CreateDealInput{
		Actor:      actor,
		ClientID:   req.ClientID,
		ClientName: req.ClientName,
		Title:      req.Title,
		Status:     domain.DealStatus(req.Status),
		Value:      req.Value,
		ClosedAt:   req.ClosedAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dealStatusResponse{Status: statusCreated, Deals: deal})
}

// Update fully replaces the target deal's mutable fields.
func (h *DealHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	target, err := dealRef(c)
	if err != nil {
		return err
	}

	var req updateDealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	deal, err := h.dealsService.Update(c.Request().Context(), ports.UpdateDealInput{
		Actor:    actor,
		Target:   target,
		Title:    req.Title,
		Status:   domain.DealStatus(req.Status),
		Value:    req.Value,
		ClosedAt: req.ClosedAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dealStatusResponse{Status: statusChanged, Deals: deal})
}

// SetStatus moves the target deal to a new pipeline status.
func (h *DealHandler) SetStatus(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	target, err := dealRef(c)
	if err != nil {
		return err
	}

	status := domain.DealStatus(strings.TrimSpace(c.QueryParam("status")))
	deal, err := h.dealsService.SetStatus(c.Request().Context(), actor, target, status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dealStatusResponse{Status: statusChanged, Deals: deal})
}

// SetCloseDate records when the target deal was (or will be) closed.
func (h *DealHandler) SetCloseDate(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	target, err := dealRef(c)
	if err != nil {
		return err
	}

	closedAt, err := timeQuery(c, "date")
	if err != nil {
		return err
	}
	if closedAt == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	deal, err := h.dealsService.SetCloseDate(c.Request().Context(), actor, target, *closedAt)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dealStatusResponse{Status: statusChanged, Deals: deal})
}

// Delete removes the target deal.
func (h *DealHandler) Delete(c echo.Context) error {
	target, err := dealRef(c)
	if err != nil {
		return err
	}

	deal, err := h.dealsService.Delete(c.Request().Context(), target)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dealStatusResponse{Status: statusDeleted, Deals: deal})
}

// DeleteByClient removes every deal of the referenced client at once.
func (h *DealHandler) DeleteByClient(c echo.Context) error {
	target, err := clientRef(c)
	if err != nil {
		return err
	}

	deals, err := h.dealsService.DeleteByClient(c.Request().Context(), target)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dealStatusResponse{Status: statusDeleted, Deals: deals})
}
