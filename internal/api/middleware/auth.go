package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/api/metrics"
	"github.com/salesdesk/crm-api/internal/auth"
	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

// UserContextKey is where the authenticated *domain.User is stored on the
// echo context after Authenticate runs.
const UserContextKey = "user"

// Authenticate validates the bearer token on the request and loads the
// matching user from storage into the request context. Requests with a
// missing, malformed, expired or revoked token are rejected with 401.
func Authenticate(tokens *auth.TokenService, users ports.UsersRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.TokenRejectionsTotal.WithLabelValues("malformed_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Verify(c.Request().Context(), parts[1])
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidToken
			}

			user, err := users.FindByUsername(c.Request().Context(), claims.Subject)
			if err != nil {
				// A valid token for a user deleted since issuance is still a 401.
				metrics.TokenRejectionsTotal.WithLabelValues("unknown_subject").Inc()
				return domain.ErrInvalidToken
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}
