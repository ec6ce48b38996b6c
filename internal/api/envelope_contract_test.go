package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests pin the wire contract clients depend on. Breaking any of
// them means bumping the envelope version and coordinating a client
// release, so think twice.

func decodeRaw(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	return raw
}

func TestEnvelope_SuccessShape(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	raw := decodeRaw(t, resp.Body.Bytes())
	assert.Equal(t, float64(1), raw["v"], "version field must be named v")
	assert.Equal(t, true, raw["success"])
	assert.Contains(t, raw, "data")
	assert.NotContains(t, raw, "error")
	assert.NotContains(t, raw, "code")
	assert.NotContains(t, raw, "version")
}

func TestEnvelope_ErrorShape(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	raw := decodeRaw(t, resp.Body.Bytes())
	assert.Equal(t, float64(1), raw["v"])
	assert.Equal(t, false, raw["success"])
	assert.NotEmpty(t, raw["error"])
	assert.Equal(t, "UNAUTHORIZED", raw["code"])
	assert.NotContains(t, raw, "data")
}

func TestEnvelope_DomainErrorCode(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")

	resp := ts.api.Get("/api/v1/books/missing", bearer(token))
	require.Equal(t, http.StatusNotFound, resp.Code)

	raw := decodeRaw(t, resp.Body.Bytes())
	assert.Equal(t, false, raw["success"])
	assert.Equal(t, "NOT_FOUND", raw["code"])
}

func TestEnvelope_ValidationErrorDetails(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerUser(t, "alice")
	ts.createBook(t, "book-1", "Book One")

	resp := ts.api.Put("/api/v1/books/book-1/review", bearer(token),
		map[string]any{"rating": 9})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	raw := decodeRaw(t, resp.Body.Bytes())
	assert.Equal(t, false, raw["success"])
	assert.NotEmpty(t, raw["error"])
}
