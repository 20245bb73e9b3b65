package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// Query-string parsing helpers. Absent parameters come back as nil; a
// present but malformed value is a 400.

func intQuery(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return &v, nil
}

func int64Query(c echo.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return &v, nil
}

func uintQuery(c echo.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	u := uint(v)
	return &u, nil
}

func boolQuery(c echo.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.QueryParam(name))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// timeQuery accepts RFC 3339 timestamps and bare dates (2006-01-02).
func timeQuery(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or YYYY-MM-DD date", domain.ErrValidation, name)
}

// sortParams reads the shared sort_by/order pair with their defaults.
func sortParams(c echo.Context) (sortBy, order string) {
	sortBy = strings.TrimSpace(c.QueryParam("sort_by"))
	if sortBy == "" {
		sortBy = "id"
	}
	order = strings.TrimSpace(c.QueryParam("order"))
	if order == "" {
		order = "asc"
	}
	return sortBy, order
}
