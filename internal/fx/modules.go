package fx

import (
	"net/http"

	"go.uber.org/fx"

	"fpl-live-draft/internal/api"
	"fpl-live-draft/internal/config"
	"fpl-live-draft/internal/live"
	"fpl-live-draft/internal/logger"
	"fpl-live-draft/internal/metrics"
	"fpl-live-draft/internal/poller"
	"fpl-live-draft/internal/relay"
	"fpl-live-draft/internal/repository"
	"fpl-live-draft/internal/server"
	"fpl-live-draft/internal/service"
)

func ProvideDirectoryLoader(c *api.Client) repository.DirectoryLoader {
	return c
}

func ProvideLeagueFetcher(c *api.Client) service.LeagueFetcher {
	return c
}

func ProvideDirectoryProvider(r *repository.DirectoryRepository) service.DirectoryProvider {
	return r
}

func ProvideLeagueLoader(s *service.DraftService) poller.Loader {
	return s
}

func ProvidePublisher(h *live.Hub) poller.Publisher {
	return h
}

func ProvideTracker(p *poller.Poller) server.LeagueTracker {
	return p
}

func ProvideViewSource(h *live.Hub) server.ViewSource {
	return h
}

func ProvideRelayHandler(r *relay.Relay) http.Handler {
	return r
}

func applyLogLevel(cfg *config.Config) error {
	return logger.ApplyLevel(cfg.LogLevel)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Invoke(applyLogLevel),
	fx.Provide(metrics.New),
	// fetch
	fx.Provide(api.NewClient),
	fx.Provide(ProvideDirectoryLoader),
	fx.Provide(repository.NewDirectoryRepository),
	// svc
	fx.Provide(ProvideLeagueFetcher, ProvideDirectoryProvider),
	fx.Provide(service.NewDraftService),
	// polling
	fx.Provide(live.NewHub),
	fx.Provide(ProvideLeagueLoader, ProvidePublisher),
	fx.Provide(poller.New),
	// server
	fx.Provide(relay.New),
	fx.Provide(ProvideTracker, ProvideViewSource, ProvideRelayHandler),
	fx.Provide(server.NewDraftServer),
)
