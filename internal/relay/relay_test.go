package relay

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-live-draft/internal/config"
)

func newRelay(t *testing.T, upstream http.HandlerFunc) *Relay {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	return New(&config.Config{FantasyBaseURL: srv.URL, DraftBaseURL: srv.URL}, zerolog.Nop())
}

func serve(rl *Relay, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rl.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRelay_ForwardsVerbatim(t *testing.T) {
	var gotPath string
	rl := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"league":{"name":"Test"}}`))
	})

	rec := serve(rl, http.MethodGet, "/api/league/42/details/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/league/42/details", gotPath)
	assert.JSONEq(t, `{"league":{"name":"Test"}}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assertCORS(t, rec)
}

func TestRelay_BootstrapGetsTrailingSlash(t *testing.T) {
	var gotPath string
	rl := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	})

	rec := serve(rl, http.MethodGet, "/api/bootstrap-static")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/bootstrap-static/", gotPath)
}

func TestRelay_PassesUpstreamStatus(t *testing.T) {
	rl := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	})

	rec := serve(rl, http.MethodGet, "/api/draft/999/choices")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found.")
}

func TestRelay_Preflight(t *testing.T) {
	rl := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach upstream")
	})

	rec := serve(rl, http.MethodOptions, "/api/anything")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assertCORS(t, rec)
}

func TestRelay_RejectsUnknownPathsAndMethods(t *testing.T) {
	rl := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("must not reach upstream")
	})

	rec := serve(rl, http.MethodGet, "/api/league/abc/details")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found\n", rec.Body.String())
	assertCORS(t, rec)

	rec = serve(rl, http.MethodPost, "/api/bootstrap-static/")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRelay_UpstreamFailure(t *testing.T) {
	rl := New(&config.Config{DraftBaseURL: "http://127.0.0.1:1"}, zerolog.Nop())

	rec := serve(rl, http.MethodGet, "/api/draft/1/choices")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Upstream error\n", rec.Body.String())
	assertCORS(t, rec)
}
