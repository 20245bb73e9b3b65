package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

type stubAuthService struct {
	password string
}

func (s *stubAuthService) Login(_ context.Context, username, password string) (*ports.LoginResult, error) {
	if username != "alice" || password != s.password {
		return nil, domain.ErrInvalidCredentials
	}
	return &ports.LoginResult{AccessToken: "tok", TokenType: "bearer"}, nil
}

func (s *stubAuthService) ChangePassword(_ context.Context, username, password, newPassword string) (*domain.User, error) {
	if username != "alice" || password != s.password {
		return nil, domain.ErrInvalidCredentials
	}
	s.password = newPassword
	return &domain.User{ID: 1, Username: username, Role: domain.RoleManager}, nil
}

func loginRequest(t *testing.T, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{password: "s3cret.1"})

	c, rec := loginRequest(t, url.Values{"username": {"alice"}, "password": {"s3cret.1"}})
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.AccessToken != "tok" || body.TokenType != "bearer" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{password: "s3cret.1"})

	c, _ := loginRequest(t, url.Values{"username": {"alice"}, "password": {"wrong"}})
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	svc := &stubAuthService{password: "s3cret.1"}
	h := NewAuthHandler(svc)

	e := echo.New()
	form := url.Values{
		"username":     {"alice"},
		"password":     {"s3cret.1"},
		"new_password": {"n3w.pass"},
	}
	req := httptest.NewRequest(http.MethodPatch, "/auth/change-password", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.password != "n3w.pass" {
		t.Fatalf("password not updated in service")
	}
}
