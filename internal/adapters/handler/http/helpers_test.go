package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-tracker/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-tracker/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type testApp struct {
	router    *gin.Engine
	tracker   *services.TrackerService
	instagram *services.InstagramService
	notes     *services.NoteService
	store     *services.SyncStore
	tokens    *services.TokenService
}

type appOptions struct {
	mode     domain.HabitMode
	password string
}

func newTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	clock := func() time.Time { return testNow }
	identity := domain.NewStaticIdentity("jose")

	store := services.NewSyncStore(repository.NewInMemoryLocalStore(), nil, nil, identity, nil)

	tracker := services.NewTrackerService(store, services.NewStatsEngine(domain.AnchorToday), services.TrackerOptions{
		Mode:      opts.mode,
		WeekStart: domain.WeekStartMonday,
		Now:       clock,
	}, nil)
	require.NoError(t, tracker.Load(ctx))

	instagram := services.NewInstagramService(store, clock, nil)
	require.NoError(t, instagram.Load(ctx))

	notes := services.NewNoteService(store, clock, nil)
	require.NoError(t, notes.Load(ctx))

	gate := domain.NewPasswordGateFromHash("")
	if opts.password != "" {
		var err error
		gate, err = domain.NewPasswordGate(opts.password)
		require.NoError(t, err)
	}
	tokens := services.NewTokenService("test-secret", "kanso-tracker-test", time.Hour, identity)
	auth := services.NewAuthService(gate, tokens, identity)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(auth),
		HabitHandler:     adapterHTTP.NewHabitHandler(tracker),
		EntryHandler:     adapterHTTP.NewEntryHandler(tracker),
		StatsHandler:     adapterHTTP.NewStatsHandler(tracker),
		DataHandler:      adapterHTTP.NewDataHandler(tracker),
		InstagramHandler: adapterHTTP.NewInstagramHandler(instagram),
		NoteHandler:      adapterHTTP.NewNoteHandler(notes),
		SyncHandler:      adapterHTTP.NewSyncHandler(store, nil),
		AuthService:      auth,
		TokenService:     tokens,
		SyncStore:        store,
		StartTime:        testNow,
	})

	return &testApp{
		router:    router,
		tracker:   tracker,
		instagram: instagram,
		notes:     notes,
		store:     store,
		tokens:    tokens,
	}
}

func (a *testApp) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
