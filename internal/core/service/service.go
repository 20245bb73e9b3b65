// Package service implements the CRM use cases on top of the repository
// ports. Every method follows one shape: authorize the actor, resolve the
// target rows, apply the mutation or build the filtered query, and return
// domain rows for the handler to wrap in a response envelope.
package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// validateSort rejects sort fields outside the entity's allow-list before
// anything reaches the repository's column dispatch.
func validateSort(allowed map[string]struct{}, sortBy string) error {
	if _, ok := allowed[strings.ToLower(strings.TrimSpace(sortBy))]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrInvalidSort, sortBy)
	}
	return nil
}

// failedTo wraps an unexpected persistence error as an internal failure,
// keeping the original message embedded for diagnosability.
func failedTo(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", domain.ErrInternal, action, err)
}

// validation builds a 400-mapped error with a human-readable detail.
func validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

var (
	passwordLetter  = regexp.MustCompile(`[a-zA-Z]`)
	passwordDigit   = regexp.MustCompile(`[0-9]`)
	passwordSpecial = regexp.MustCompile(`[!.,_]`)
)

// validatePassword enforces the account password policy: at least six
// characters with a letter, a digit and one of the specials !.,_
func validatePassword(password string) error {
	switch {
	case len(password) < 6:
		return validation("password must be at least 6 characters long")
	case !passwordLetter.MatchString(password):
		return validation("password must contain at least one letter")
	case !passwordDigit.MatchString(password):
		return validation("password must contain at least one number")
	case !passwordSpecial.MatchString(password):
		return validation("password must contain at least one special symbol (!.,_)")
	}
	return nil
}

// futureDate rejects timestamps that are not strictly in the future. The
// check runs at input time only; the stored column carries no constraint.
func futureDate(field string, t *time.Time) error {
	if t != nil && !t.After(time.Now()) {
		return validation("%s must be in the future", field)
	}
	return nil
}
