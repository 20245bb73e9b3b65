package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// RequireRoles restricts a route to callers whose role is in the allowed
// set. It must run after Authenticate.
func RequireRoles(allowed ...domain.Role) echo.MiddlewareFunc {
	roles := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		roles[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get(UserContextKey).(*domain.User)
			if !ok || user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			if _, ok := roles[user.Role]; !ok {
				return fmt.Errorf("%w: your role does not grant access to this resource", domain.ErrForbidden)
			}

			return next(c)
		}
	}
}
