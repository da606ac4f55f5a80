package api

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type RouteKind string

const (
	RouteRelay     RouteKind = "relay"
	RouteDirect    RouteKind = "direct"
	RouteCORSProxy RouteKind = "cors_proxy"
	RouteMirror    RouteKind = "mirror"
)

// Authoritative reports whether a 404 on this route means the resource is
// really missing upstream.
func (k RouteKind) Authoritative() bool {
	return k == RouteRelay || k == RouteDirect
}

type Route struct {
	Kind RouteKind
	URL  string
}

const BootstrapPath = "/api/bootstrap-static/"

func LeagueDetailsPath(leagueID string) string {
	return fmt.Sprintf("/api/league/%s/details", leagueID)
}

func DraftChoicesPath(leagueID string) string {
	return fmt.Sprintf("/api/draft/%s/choices", leagueID)
}

var (
	bootstrapPattern     = regexp.MustCompile(`^/api/bootstrap-static/?$`)
	leagueDetailsPattern = regexp.MustCompile(`^/api/league/([0-9]+)/details/?$`)
	draftChoicesPattern  = regexp.MustCompile(`^/api/draft/([0-9]+)/choices/?$`)
)

// Upstream maps the relay-style logical paths onto the real hosts.
type Upstream struct {
	FantasyBaseURL string
	DraftBaseURL   string
}

func (u Upstream) Resolve(path string) (string, error) {
	fantasy := strings.TrimRight(u.FantasyBaseURL, "/")
	draft := strings.TrimRight(u.DraftBaseURL, "/")

	if bootstrapPattern.MatchString(path) {
		return fantasy + BootstrapPath, nil
	}
	if m := leagueDetailsPattern.FindStringSubmatch(path); m != nil {
		return draft + LeagueDetailsPath(m[1]), nil
	}
	if m := draftChoicesPattern.FindStringSubmatch(path); m != nil {
		return draft + DraftChoicesPath(m[1]), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownPath, path)
}

// Routes lists the candidate URLs for path in the order they are tried:
// same-origin relay, direct upstream, each CORS proxy, then both mirror styles.
// An absolute URL skips the relay.
func (c *Client) Routes(path string) ([]Route, error) {
	var routes []Route
	target := path
	if !isAbsolute(path) {
		if c.relayBaseURL != "" {
			routes = append(routes, Route{Kind: RouteRelay, URL: strings.TrimRight(c.relayBaseURL, "/") + path})
		}
		abs, err := c.upstream.Resolve(path)
		if err != nil {
			if len(routes) > 0 {
				return routes, nil
			}
			return nil, err
		}
		target = abs
	}

	routes = append(routes, Route{Kind: RouteDirect, URL: target})
	for _, p := range c.proxies {
		routes = append(routes, Route{Kind: RouteCORSProxy, URL: proxyURL(p, target)})
	}
	if c.mirrorBaseURL != "" {
		bare := stripScheme(target)
		routes = append(routes,
			Route{Kind: RouteMirror, URL: c.mirrorBaseURL + "http://" + bare},
			Route{Kind: RouteMirror, URL: c.mirrorBaseURL + "https://" + bare},
		)
	}
	return routes, nil
}

func proxyURL(base, target string) string {
	switch {
	case strings.HasSuffix(base, "?"):
		return base + url.QueryEscape(target)
	case strings.HasSuffix(base, "/"):
		return base + target
	default:
		return base + "/" + target
	}
}

func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func stripScheme(u string) string {
	if rest, ok := strings.CutPrefix(u, "https://"); ok {
		return rest
	}
	rest, _ := strings.CutPrefix(u, "http://")
	return rest
}
