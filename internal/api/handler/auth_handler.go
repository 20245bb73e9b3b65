package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type changePasswordResponse struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// Login authenticates a username/password form pair and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	result, err := h.authService.Login(c.Request().Context(), username, password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	})
}

// ChangePassword re-authenticates the caller with their current password and
// replaces it with a new one. Already-issued tokens stop working when a
// revocation store is configured.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	username := formOrQuery(c, "username")
	password := formOrQuery(c, "password")
	newPassword := formOrQuery(c, "new_password")

	if _, err := h.authService.ChangePassword(c.Request().Context(), username, password, newPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, changePasswordResponse{
		Status:  statusChanged,
		Details: "password updated, please log in again",
	})
}

func formOrQuery(c echo.Context, name string) string {
	if v := strings.TrimSpace(c.FormValue(name)); v != "" {
		return v
	}
	return strings.TrimSpace(c.QueryParam(name))
}
