package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/api/middleware"
	"github.com/salesdesk/crm-api/internal/core/domain"
)

// currentUser extracts the authenticated user injected by the Authenticate
// middleware. Its absence means the route was registered without the
// middleware, which is a wiring bug rather than a client error, but the
// caller still gets a 401 instead of a panic.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.UserContextKey).(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
