package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

func TestHealth(t *testing.T) {
	app := newTestApp(t, appOptions{})

	w := app.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "disabled", body["database"])
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, string(domain.SyncDisabled), body["sync"])
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, appOptions{})

	w := app.do(t, http.MethodOptions, "/api/v1/habits", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSyncHandler(t *testing.T) {
	app := newTestApp(t, appOptions{})

	t.Run("Success: Status reports disabled sync", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/sync/status", "")

		assert.Equal(t, http.StatusOK, w.Code)
		status := decode[domain.SyncStatus](t, w)
		assert.Equal(t, domain.SyncDisabled, status.State)
		assert.Equal(t, "jose", status.UserID)
		assert.NotContains(t, w.Body.String(), "authenticatedAs")
	})

	t.Run("Fail: 503 Force without a remote", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/sync/force", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
