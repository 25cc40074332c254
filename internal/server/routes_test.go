package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Lumi_V0.1/internal/aiservice"
	"Lumi_V0.1/internal/appstate"
	"Lumi_V0.1/internal/auth"
	"Lumi_V0.1/internal/config"
	"Lumi_V0.1/internal/database"
	"Lumi_V0.1/internal/models"
	"Lumi_V0.1/internal/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "route-test-secret"

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeSkinAndRecommendProducts(_ context.Context, photo string) aiservice.ActionResult {
	if photo == "" {
		msg := aiservice.MsgNoPhoto
		return aiservice.ActionResult{Error: &msg, Kind: aiservice.KindValidation}
	}
	return aiservice.ActionResult{Data: &models.AnalysisResult{
		Analysis: models.SkinAnalysis{SkinType: "dry", Concerns: []string{"flaking"}},
	}}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	kv := database.NewMemoryKV()
	hub := utility.NewHub()
	states, err := appstate.NewRegistry(kv, 4, appstate.WithOnChange(hub.Notify))
	require.NoError(t, err)

	cfg := config.Config{
		Port:             0,
		JWTSecret:        testSecret,
		MaxUploadBytes:   1 << 20,
		AnalyzeRateLimit: 1,
		AIRequestTimeout: time.Second,
		AIMaxAttempts:    1,
	}
	return New(cfg, Deps{Storage: kv, Analyzer: stubAnalyzer{}, States: states, Hub: hub}).RegisterRoutes()
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.NewAccessToken([]byte(testSecret), userID, "", "", time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(h http.Handler, method, target, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	h := newTestHandler(t)
	rec := do(h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRoutes_RequireToken(t *testing.T) {
	h := newTestHandler(t)
	for _, path := range []string{"/favorites", "/progress", "/ws"} {
		rec := do(h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := do(h, http.MethodPost, "/analyze", "", `{"photoDataUri":""}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_UsersAreIsolated(t *testing.T) {
	h := newTestHandler(t)
	alice, bob := bearer(t, "alice"), bearer(t, "bob")

	rec := do(h, http.MethodPost, "/favorites", alice, `{"name":"Night Cream"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodGet, "/favorites/Night%20Cream", alice, "")
	assert.JSONEq(t, `{"name":"Night Cream","favorite":true}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/favorites/Night%20Cream", bob, "")
	assert.JSONEq(t, `{"name":"Night Cream","favorite":false}`, rec.Body.String())
}

func TestRoutes_AnalyzeAddsProgressAndIsRateLimited(t *testing.T) {
	h := newTestHandler(t)
	alice := bearer(t, "alice")

	rec := do(h, http.MethodPost, "/analyze", alice, `{"photoDataUri":"data:image/png;base64,iVBORw0KGgo="}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/progress", alice, "")
	assert.Contains(t, rec.Body.String(), `"skinType":"dry"`)

	rec = do(h, http.MethodPost, "/analyze", alice, `{"photoDataUri":"data:image/png;base64,iVBORw0KGgo="}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRoutes_AnalyzeWithoutPhoto(t *testing.T) {
	h := newTestHandler(t)
	rec := do(h, http.MethodPost, "/analyze", bearer(t, "alice"), `{"photoDataUri":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"data":null,"error":"No photo data provided."}`, rec.Body.String())
}

func TestNewServer_Addr(t *testing.T) {
	srv := NewServer(config.Config{Port: 9999, JWTSecret: "x", AIMaxAttempts: 1, MaxUploadBytes: 1024}, Deps{Storage: database.NewMemoryKV()})
	assert.Equal(t, ":9999", srv.Addr)
}

func TestRoutes_FavoriteNamesAreDecodedOnce(t *testing.T) {
	h := newTestHandler(t)
	alice := bearer(t, "alice")

	rec := do(h, http.MethodPost, "/favorites", alice, `{"name":"A%41"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodGet, "/favorites/A%2541", alice, "")
	assert.JSONEq(t, `{"name":"A%41","favorite":true}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/favorites/AA", alice, "")
	assert.JSONEq(t, `{"name":"AA","favorite":false}`, rec.Body.String())
}
