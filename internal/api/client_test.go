package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-live-draft/internal/config"
	"fpl-live-draft/internal/metrics"
)

const bootstrapJSON = `{
	"elements": [{"id": 1, "web_name": "Salah", "element_type": 3, "team_code": 14}],
	"element_types": [{"id": 3, "plural_name_short": "MID"}],
	"teams": [{"code": 14, "short_name": "LIV", "name": "Liverpool"}]
}`

// hits records which fake server saw a request, in order.
type hits struct {
	mu   sync.Mutex
	seen []string
}

func (h *hits) add(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, name)
}

func (h *hits) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func fakeServer(t *testing.T, name string, h *hits, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.add(name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(cfg *config.Config) *Client {
	if cfg.RouteTimeout == 0 {
		cfg.RouteTimeout = 2 * time.Second
	}
	return NewClient(cfg, metrics.New(), zerolog.Nop())
}

func TestRoutes_Order(t *testing.T) {
	client := newTestClient(&config.Config{
		RelayBaseURL:   "http://relay.local/",
		FantasyBaseURL: "https://fantasy.premierleague.com",
		DraftBaseURL:   "https://draft.premierleague.com",
		CORSProxies:    []string{"https://a.example/", "https://b.example/?", "https://c.example/fetch"},
		MirrorBaseURL:  "https://mirror.example/",
	})

	routes, err := client.Routes(DraftChoicesPath("42"))
	require.NoError(t, err)

	target := "https://draft.premierleague.com/api/draft/42/choices"
	assert.Equal(t, []Route{
		{Kind: RouteRelay, URL: "http://relay.local/api/draft/42/choices"},
		{Kind: RouteDirect, URL: target},
		{Kind: RouteCORSProxy, URL: "https://a.example/" + target},
		{Kind: RouteCORSProxy, URL: "https://b.example/?https%3A%2F%2Fdraft.premierleague.com%2Fapi%2Fdraft%2F42%2Fchoices"},
		{Kind: RouteCORSProxy, URL: "https://c.example/fetch/" + target},
		{Kind: RouteMirror, URL: "https://mirror.example/http://draft.premierleague.com/api/draft/42/choices"},
		{Kind: RouteMirror, URL: "https://mirror.example/https://draft.premierleague.com/api/draft/42/choices"},
	}, routes)
}

func TestRoutes_AbsoluteURLSkipsRelay(t *testing.T) {
	client := newTestClient(&config.Config{RelayBaseURL: "http://relay.local"})

	routes, err := client.Routes("https://example.com/data.json")
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, RouteDirect, routes[0].Kind)
}

func TestRoutes_UnknownPath(t *testing.T) {
	client := newTestClient(&config.Config{})

	_, err := client.Routes("/api/entry/1/history")
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestFetchJSON_FallsBackInOrder(t *testing.T) {
	h := &hits{}
	relay := fakeServer(t, "relay", h, http.StatusInternalServerError, `{"error":"boom"}`)
	direct := fakeServer(t, "direct", h, http.StatusOK, `<html>blocked</html>`)
	proxy := fakeServer(t, "proxy", h, http.StatusOK, bootstrapJSON)
	unused := fakeServer(t, "unused", h, http.StatusOK, bootstrapJSON)

	client := newTestClient(&config.Config{
		RelayBaseURL:   relay.URL,
		FantasyBaseURL: direct.URL,
		CORSProxies:    []string{proxy.URL + "/", unused.URL + "/"},
	})

	got, err := client.GetBootstrap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"relay", "direct", "proxy"}, h.list())
	require.Len(t, got.Elements, 1)
	assert.Equal(t, "Salah", got.Elements[0].WebName)
	assert.Equal(t, "MID", got.ElementTypes[0].PluralNameShort)
}

func TestFetchJSON_ProxyReceivesFullTargetURL(t *testing.T) {
	var gotURI string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		_, _ = w.Write([]byte(`{"choices":[],"element_status":[]}`))
	}))
	defer proxy.Close()

	client := newTestClient(&config.Config{
		DraftBaseURL: "http://127.0.0.1:1",
		CORSProxies:  []string{proxy.URL + "/"},
	})

	_, err := client.GetDraftChoices(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "/http://127.0.0.1:1/api/draft/7/choices", gotURI)
}

func TestFetchJSON_SendsNoStoreHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		assert.Empty(t, r.Header.Get("Cookie"))
		_, _ = w.Write([]byte(`{"league":{"name":"Test"},"league_entries":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(&config.Config{DraftBaseURL: srv.URL})

	got, err := client.GetLeagueDetails(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Test", got.League.Name)
}

func TestFetchJSON_AuthoritativeNotFound(t *testing.T) {
	h := &hits{}
	relay := fakeServer(t, "relay", h, http.StatusNotFound, `{"detail":"Not found."}`)
	direct := fakeServer(t, "direct", h, http.StatusNotFound, `{"detail":"Not found."}`)

	client := newTestClient(&config.Config{RelayBaseURL: relay.URL, DraftBaseURL: direct.URL})

	_, err := client.GetLeagueDetails(context.Background(), "999")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRouteExhausted)
	assert.ErrorIs(t, err, ErrNotFound)

	var exhausted *RouteExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Len(t, exhausted.Attempts, 2)
	assert.Contains(t, err.Error(), "upstream status 404")
}

func TestFetchJSON_ProxyNotFoundIsNotAuthoritative(t *testing.T) {
	h := &hits{}
	direct := fakeServer(t, "direct", h, http.StatusBadGateway, ``)
	proxy := fakeServer(t, "proxy", h, http.StatusNotFound, ``)

	client := newTestClient(&config.Config{DraftBaseURL: direct.URL, CORSProxies: []string{proxy.URL + "/"}})

	_, err := client.GetDraftChoices(context.Background(), "5")
	assert.ErrorIs(t, err, ErrRouteExhausted)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFetchJSON_SlowRouteTimesOut(t *testing.T) {
	h := &hits{}
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.add("slow")
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(bootstrapJSON))
	}))
	defer slow.Close()
	fast := fakeServer(t, "fast", h, http.StatusOK, bootstrapJSON)

	client := newTestClient(&config.Config{
		FantasyBaseURL: slow.URL,
		CORSProxies:    []string{fast.URL + "/"},
		RouteTimeout:   50 * time.Millisecond,
	})

	_, err := client.GetBootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"slow", "fast"}, h.list())
}

func TestFetchJSON_CancelledContext(t *testing.T) {
	h := &hits{}
	direct := fakeServer(t, "direct", h, http.StatusOK, bootstrapJSON)
	client := newTestClient(&config.Config{FantasyBaseURL: direct.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetBootstrap(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.list())
}

func TestFetchJSON_FailedRouteLeavesNoData(t *testing.T) {
	h := &hits{}
	// decodes choices before tripping over element_status
	relay := fakeServer(t, "relay", h, http.StatusOK,
		`{"choices":[{"element":99,"entry":7,"index":1}],"element_status":"oops"}`)
	direct := fakeServer(t, "direct", h, http.StatusOK, `{"element_status":[]}`)

	client := newTestClient(&config.Config{RelayBaseURL: relay.URL, DraftBaseURL: direct.URL})

	got, err := client.GetDraftChoices(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, []string{"relay", "direct"}, h.list())
	assert.Empty(t, got.Choices)
	assert.Empty(t, got.ElementStatus)
}

func TestFetchJSON_RequiresPointer(t *testing.T) {
	h := &hits{}
	direct := fakeServer(t, "direct", h, http.StatusOK, bootstrapJSON)
	client := newTestClient(&config.Config{FantasyBaseURL: direct.URL})

	var resp BootstrapResponse
	err := client.FetchJSON(context.Background(), BootstrapPath, resp)
	require.Error(t, err)
	assert.Empty(t, h.list())
}

func TestUpstream_Resolve(t *testing.T) {
	u := Upstream{FantasyBaseURL: "https://fantasy.premierleague.com/", DraftBaseURL: "https://draft.premierleague.com"}

	cases := map[string]string{
		"/api/bootstrap-static":    "https://fantasy.premierleague.com/api/bootstrap-static/",
		"/api/bootstrap-static/":   "https://fantasy.premierleague.com/api/bootstrap-static/",
		"/api/league/123/details":  "https://draft.premierleague.com/api/league/123/details",
		"/api/league/123/details/": "https://draft.premierleague.com/api/league/123/details",
		"/api/draft/123/choices":   "https://draft.premierleague.com/api/draft/123/choices",
	}
	for path, want := range cases {
		got, err := u.Resolve(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got)
	}

	for _, path := range []string{"/api/league/abc/details", "/api/draft/1/picks", "/", "/api/bootstrap-static/x"} {
		_, err := u.Resolve(path)
		assert.ErrorIs(t, err, ErrUnknownPath, path)
		assert.True(t, strings.Contains(err.Error(), path))
	}
}
