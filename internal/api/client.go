package api

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"fpl-live-draft/internal/config"
	"fpl-live-draft/internal/constants"
	"fpl-live-draft/internal/metrics"
)

// Client fetches JSON from the FPL hosts through an ordered list of routes,
// returning the first route that answers 2xx with valid JSON.
type Client struct {
	client        *fasthttp.Client
	upstream      Upstream
	relayBaseURL  string
	proxies       []string
	mirrorBaseURL string
	routeTimeout  time.Duration
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

func NewClient(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	timeout := cfg.RouteTimeout
	if timeout <= 0 {
		timeout = constants.ExternalAPITimeout
	}
	return &Client{
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.FetchMaxConnsPerHost,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: constants.FetchMaxIdleConnTime,
			MaxResponseBodySize: constants.FetchMaxResponseBodyMB << 20,
			// proxy routes embed a full URL in the path
			DisablePathNormalizing: true,
		},
		upstream: Upstream{
			FantasyBaseURL: cfg.FantasyBaseURL,
			DraftBaseURL:   cfg.DraftBaseURL,
		},
		relayBaseURL:  cfg.RelayBaseURL,
		proxies:       cfg.CORSProxies,
		mirrorBaseURL: cfg.MirrorBaseURL,
		routeTimeout:  timeout,
		metrics:       m,
		logger:        logger.With().Str("component", "fetch").Logger(),
	}
}

// FetchJSON decodes the first successful route's body into out, which must be
// a non-nil pointer. Routes are tried strictly in order; ctx is checked
// between attempts. out is only written once a route has decoded cleanly.
func (c *Client) FetchJSON(ctx context.Context, path string, out any) error {
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("fetch %s: out must be a non-nil pointer, got %T", path, out)
	}

	routes, err := c.Routes(path)
	if err != nil {
		return err
	}

	exhausted := &RouteExhaustedError{Path: path}
	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fetch %s: %w", path, err)
		}

		// a body that fails to decode can still have filled some fields
		fresh := reflect.New(target.Elem().Type())
		err := c.attempt(ctx, route, fresh.Interface())
		if err == nil {
			target.Elem().Set(fresh.Elem())
			c.metrics.ObserveRoute(string(route.Kind), "ok")
			return nil
		}

		c.metrics.ObserveRoute(string(route.Kind), "error")
		c.logger.Debug().
			Err(err).
			Str("route", string(route.Kind)).
			Str("url", route.URL).
			Msg("fetch route failed")
		exhausted.Attempts = append(exhausted.Attempts, RouteAttempt{Route: route, Err: err})
	}
	return exhausted
}

func (c *Client) attempt(ctx context.Context, route Route, out any) error {
	body, err := c.get(ctx, route.URL)
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		return fmt.Errorf("invalid JSON body (%d bytes)", len(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	// fasthttp cannot abort an in-flight request, so the ctx deadline only
	// shortens the per-route timeout.
	deadline := time.Now().Add(c.routeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	if sc := resp.StatusCode(); sc < 200 || sc > 299 {
		return nil, &StatusError{Status: sc}
	}

	// resp is released on return
	return append([]byte(nil), resp.Body()...), nil
}

// Fetch is the typed form of FetchJSON.
func Fetch[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var result T
	if err := c.FetchJSON(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
