package response

import (
	"github.com/go-json-experiment/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_ErrorStatus(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNotFound, nil, discardLogger())

	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success, "Success should be false for status >= 400")
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "bad input", discardLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "bad input", result.Error)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.NotFound("book not found"), discardLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)

	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "book not found", result.Error)
	assert.Equal(t, "NOT_FOUND", result.Code)
}

func TestHandleError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainerrors.DuplicateIdentity("taken"), http.StatusConflict},
		{domainerrors.DuplicateCategory("taken"), http.StatusConflict},
		{domainerrors.InvalidCredentials("nope"), http.StatusUnauthorized},
		{domainerrors.TokenExpired("expired"), http.StatusUnauthorized},
		{domainerrors.UnsupportedMedia("nope"), http.StatusUnsupportedMediaType},
		{domainerrors.FileMissing("gone"), http.StatusNotFound},
		{domainerrors.Validation("bad"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		HandleError(w, tc.err, discardLogger())
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
	}
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("something unexpected"), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	// Internal details are never echoed to the client.
	assert.Equal(t, "internal server error", result.Error)
}

func TestHandleError_WrappedDomainError(t *testing.T) {
	w := httptest.NewRecorder()

	wrapped := domainerrors.Wrap(errors.New("disk says no"), domainerrors.CodeFileMissing, "file missing")
	HandleError(w, wrapped, discardLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)
}
