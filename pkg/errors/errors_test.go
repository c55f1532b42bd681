package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := fmt.Errorf("outer: %w", Clone(ErrNotFound, "room not found"))

	appErr := FromError(err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "room not found", appErr.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestIsMatchesByCode(t *testing.T) {
	assert.True(t, IsNotFound(Clone(ErrNotFound, "reading not found")))
	assert.True(t, IsConflict(Wrap(sql.ErrNoRows, ErrConflict.Code, http.StatusConflict, "dup")))
	assert.False(t, IsNotFound(ErrValidation))
}

func TestWithFieldsCopies(t *testing.T) {
	fields := []FieldError{{Field: "roomId", Message: "is required"}}
	err := WithFields(ErrValidation, fields)
	fields[0].Field = "changed"

	assert.Equal(t, "roomId", err.Fields[0].Field)
	assert.Empty(t, ErrValidation.Fields)
}
