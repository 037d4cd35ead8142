package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrInvalidGrade, "grade 120 out of range")
	got := FromError(typed)
	assert.Equal(t, "INVALID_GRADE", got.Code)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "grade 120 out of range", got.Message)
}

func TestFromErrorWrapsPlainErrors(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestClonesMatchTemplate(t *testing.T) {
	err := Clone(ErrNoActiveCourse, "nothing to archive")
	assert.True(t, errors.Is(err, ErrNoActiveCourse))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(Internal(sql.ErrTxDone, "commit"), ErrInternal))
}
