package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields), rec.Body.String())
	return fields
}

func TestError_EmptyFieldsAreNull(t *testing.T) {
	now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{
		"success": false,
		"data": null,
		"message": null,
		"errors": null,
		"timestamp": "2025-01-02T03:04:05Z",
		"traceId": null
	}`, rec.Body.String())
}

func TestOK_CarriesTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithTraceID(req.Context(), "trace-1"))

	rec := httptest.NewRecorder()
	OK(rec, req, http.StatusOK, []int{1}, "done")

	fields := decode(t, rec)
	assert.JSONEq(t, `true`, string(fields["success"]))
	assert.JSONEq(t, `[1]`, string(fields["data"]))
	assert.JSONEq(t, `"done"`, string(fields["message"]))
	assert.JSONEq(t, `null`, string(fields["errors"]))
	assert.JSONEq(t, `"trace-1"`, string(fields["traceId"]))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}
