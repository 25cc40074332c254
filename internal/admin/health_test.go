package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Lumi_V0.1/internal/database"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downKV struct{ *database.MemoryKV }

func (downKV) Health() map[string]string {
	return map[string]string{"status": "down", "error": "db down: refused"}
}

func serveHealth(t *testing.T, kv database.KV) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	require.NoError(t, HealthHandler(kv)(c))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthHandler_Up(t *testing.T) {
	code, body := serveHealth(t, database.NewMemoryKV())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "online", body["status"])
	assert.Contains(t, body, "runtime")

	storage, ok := body["storage"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "memory", storage["driver"])
}

func TestHealthHandler_StorageDown(t *testing.T) {
	code, body := serveHealth(t, downKV{database.NewMemoryKV()})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
}
