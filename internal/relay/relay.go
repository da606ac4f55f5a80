// Package relay serves the same-origin CORS relay for the three FPL
// endpoints the poller needs.
package relay

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"fpl-live-draft/internal/api"
	"fpl-live-draft/internal/config"
	"fpl-live-draft/internal/constants"
)

type Relay struct {
	upstream api.Upstream
	client   *fasthttp.Client
	timeout  time.Duration
	logger   zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) *Relay {
	return &Relay{
		upstream: api.Upstream{
			FantasyBaseURL: cfg.FantasyBaseURL,
			DraftBaseURL:   cfg.DraftBaseURL,
		},
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.FetchMaxConnsPerHost,
			ReadTimeout:         constants.RelayTimeout,
			WriteTimeout:        constants.RelayTimeout,
			MaxIdleConnDuration: constants.FetchMaxIdleConnTime,
			MaxResponseBodySize: constants.FetchMaxResponseBodyMB << 20,
		},
		timeout: constants.RelayTimeout,
		logger:  logger.With().Str("component", "relay").Logger(),
	}
}

func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET,OPTIONS")
	h.Set("Access-Control-Allow-Headers", "*")
	h.Set("Cache-Control", "no-store")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	target, err := rl.upstream.Resolve(r.URL.Path)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := rl.client.DoTimeout(req, resp, rl.timeout); err != nil {
		rl.logger.Warn().Err(err).Str("target", target).Msg("upstream request failed")
		http.Error(w, "Upstream error", http.StatusBadGateway)
		return
	}

	if ct := resp.Header.ContentType(); len(ct) > 0 {
		h.Set("Content-Type", string(ct))
	}
	w.WriteHeader(resp.StatusCode())
	if _, err := w.Write(resp.Body()); err != nil {
		rl.logger.Debug().Err(err).Str("target", target).Msg("failed to write relay response")
	}
}
