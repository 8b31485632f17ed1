package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

func TestInstagramHandler(t *testing.T) {
	app := newTestApp(t, appOptions{})

	w := app.do(t, http.MethodPost, "/api/v1/instagram", `{"date":"2024-04-03","followers":31}`)
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode[domain.InstagramEntry](t, w)

	w = app.do(t, http.MethodPost, "/api/v1/instagram", `{"date":"2024-05-01","followers":53,"posts":4}`)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("Success: List is sorted by date", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/instagram", "")

		assert.Equal(t, http.StatusOK, w.Code)
		entries := decode[[]domain.InstagramEntry](t, w)
		require.Len(t, entries, 2)
		assert.Equal(t, first.ID, entries[0].ID)
	})

	t.Run("Success: Stats", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/instagram/stats", "")

		assert.Equal(t, http.StatusOK, w.Code)
		stats := decode[domain.InstagramStats](t, w)
		assert.Equal(t, 22, stats.TotalGrowth)
		assert.Equal(t, 53, stats.CurrentFollowers)
	})

	t.Run("Fail: 400 Missing followers", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/instagram", `{"date":"2024-04-05"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 Negative followers", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/instagram", `{"date":"2024-04-05","followers":-3}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 409 Update onto a taken date", func(t *testing.T) {
		w := app.do(t, http.MethodPatch, "/api/v1/instagram/"+first.ID, `{"date":"2024-05-01","followers":40}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Success: Export then import round trip", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/instagram/export", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "instagram-tracker-2024-05-01.json")

		other := newTestApp(t, appOptions{})
		imported := other.do(t, http.MethodPost, "/api/v1/instagram/import", w.Body.String())

		assert.Equal(t, http.StatusOK, imported.Code)
		assert.Equal(t, app.instagram.Entries(), other.instagram.Entries())
	})

	t.Run("Success: Delete and clear", func(t *testing.T) {
		w := app.do(t, http.MethodDelete, "/api/v1/instagram/"+first.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = app.do(t, http.MethodDelete, "/api/v1/instagram/"+first.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = app.do(t, http.MethodDelete, "/api/v1/instagram", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, app.instagram.Entries())
	})
}
