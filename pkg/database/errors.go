package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
)

// PostgreSQL SQLSTATE codes mapped to domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeInvalidText         = "22P02"
)

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == codeUniqueViolation
}

// ViolatedConstraint returns the constraint named by a unique violation, or "".
func ViolatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == codeUniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

// TranslateError maps persistence errors onto typed domain errors. Errors that are
// already typed pass through untouched.
func TranslateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", resource))
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, http.StatusConflict, fmt.Sprintf("%s already exists", resource))
		case codeForeignKeyViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, http.StatusConflict, fmt.Sprintf("%s is linked to a missing or dependent record", resource))
		case codeCheckViolation, codeNotNullViolation, codeInvalidText:
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("invalid %s data", resource))
		}
	}

	return appErrors.Internal(err, fmt.Sprintf("failed to access %s", resource))
}
