package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Lumi_V0.1/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressLifecycle(t *testing.T) {
	env := newTestEnv(t)

	var ids []string
	for _, skin := range []string{"dry", "oily"} {
		body := `{"photoDataUri":"` + testPhoto + `","analysis":{"skinType":"` + skin + `","conditions":[],"concerns":["shine"]}}`
		rec := env.call(t, env.h.AddProgressHandler, jsonRequest(http.MethodPost, "/progress", body))
		require.Equal(t, http.StatusCreated, rec.Code)

		var entry models.ProgressEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
		assert.NotEmpty(t, entry.ID)
		assert.NotEmpty(t, entry.Date)
		ids = append(ids, entry.ID)
	}

	rec := env.call(t, env.h.ListProgressHandler, httptest.NewRequest(http.MethodGet, "/progress", nil))
	var list ProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Entries, 2)
	assert.Equal(t, "oily", list.Entries[0].Analysis.SkinType)
	assert.Equal(t, "dry", list.Entries[1].Analysis.SkinType)

	rec = env.call(t, env.h.GetProgressEntryHandler, httptest.NewRequest(http.MethodGet, "/progress/x", nil), "id", ids[0])
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.call(t, env.h.GetProgressEntryHandler, httptest.NewRequest(http.MethodGet, "/progress/x", nil), "id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddProgressHandler_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.call(t, env.h.AddProgressHandler, jsonRequest(http.MethodPost, "/progress", `{"analysis":{}}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.call(t, env.h.AddProgressHandler, jsonRequest(http.MethodPost, "/progress", `{"photoDataUri":"nope"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.store(t).Progress())
}
