package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON_OK(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, OK(map[string]string{"status": "ok"}), discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.InDelta(t, 1, body["v"], 0)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"status": "ok"}, body["data"])
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "code")
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, "route not found", discard())

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "route not found", body["error"])
	assert.NotContains(t, body, "data")
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainerrors.ValidationWithDetails("validation failed", []domainerrors.FieldError{
		{Field: "email", Message: "must be a valid email address"},
	})
	HandleError(w, err, discard())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Equal(t, []any{
		map[string]any{"field": "email", "message": "must be a valid email address"},
	}, body["details"])
}

func TestHandleError_UnknownErrorLeaksNothing(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, errors.New("disk on fire at /var/lib/nexo"), discard())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INTERNAL", body["code"])
	assert.NotContains(t, w.Body.String(), "disk on fire")
}
