package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, CodeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, CodeFileMissing.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeDuplicateIdentity.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeDuplicateCategory.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, CodeUnauthorized.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, CodeInvalidCredentials.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, CodeTokenExpired.HTTPStatus())
	assert.Equal(t, http.StatusUnsupportedMediaType, CodeUnsupportedMedia.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, CodeValidation.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CodeInternal.HTTPStatus())
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := NotFound("book not found")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("disk failure")
	err := Wrap(cause, CodeInternal, "storage broke")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage broke")
	assert.Contains(t, err.Error(), "disk failure")
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("underlying")
	err := ErrUnauthorized.WithCause(cause)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, cause)
	// The sentinel itself stays untouched.
	assert.NoError(t, Unwrap(ErrUnauthorized))
}

func TestValidationf(t *testing.T) {
	err := Validationf("field %s is bad", "email")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "field email is bad", err.Error())
}
