package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"fpl-live-draft/internal/api"
	"fpl-live-draft/internal/domain"
	"fpl-live-draft/internal/metrics"
)

type DirectoryLoader interface {
	GetBootstrap(ctx context.Context) (*api.BootstrapResponse, error)
}

// DirectoryRepository memoizes the player directory for the life of the
// process. A failed load is never cached, so the next Get retries.
type DirectoryRepository struct {
	loader  DirectoryLoader
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu    sync.RWMutex
	dir   *domain.Directory
	group singleflight.Group
}

func NewDirectoryRepository(loader DirectoryLoader, m *metrics.Metrics, logger zerolog.Logger) *DirectoryRepository {
	return &DirectoryRepository{
		loader:  loader,
		metrics: m,
		logger:  logger.With().Str("component", "directory").Logger(),
	}
}

// Get returns the cached directory, loading it on first use. Concurrent
// callers on a miss share one upstream load; each still honours its own ctx.
func (r *DirectoryRepository) Get(ctx context.Context) (*domain.Directory, error) {
	if dir := r.cached(); dir != nil {
		r.metrics.ObserveDirectory(true)
		return dir, nil
	}
	r.metrics.ObserveDirectory(false)

	ch := r.group.DoChan("directory", func() (any, error) {
		if dir := r.cached(); dir != nil {
			return dir, nil
		}
		return r.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Directory), nil
	}
}

func (r *DirectoryRepository) load(ctx context.Context) (*domain.Directory, error) {
	start := time.Now()
	resp, err := r.loader.GetBootstrap(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to load player directory")
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	dir := BuildDirectory(resp)
	dir.FetchedAt = time.Now()

	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()

	r.logger.Info().
		Int("assets", len(dir.Assets)).
		Int("positions", len(dir.Positions)).
		Int("teams", len(dir.Teams)).
		Dur("took", time.Since(start)).
		Msg("player directory loaded")
	return dir, nil
}

func (r *DirectoryRepository) cached() *domain.Directory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dir
}

func (r *DirectoryRepository) Loaded() bool {
	return r.cached() != nil
}

// Reset drops the cached directory; the next Get reloads it.
func (r *DirectoryRepository) Reset() {
	r.mu.Lock()
	r.dir = nil
	r.mu.Unlock()
}

func BuildDirectory(resp *api.BootstrapResponse) *domain.Directory {
	dir := &domain.Directory{
		Assets:    make(map[int]domain.Asset, len(resp.Elements)),
		Positions: make(map[int]string, len(resp.ElementTypes)),
		Teams:     make(map[int]domain.Team, len(resp.Teams)),
	}
	for _, e := range resp.Elements {
		dir.Assets[e.ID] = domain.Asset{
			ID:          e.ID,
			WebName:     e.WebName,
			ElementType: e.ElementType,
			TeamCode:    e.TeamCode,
		}
	}
	for _, t := range resp.ElementTypes {
		dir.Positions[t.ID] = t.PluralNameShort
	}
	for _, t := range resp.Teams {
		dir.Teams[t.Code] = domain.Team{Code: t.Code, ShortName: t.ShortName, Name: t.Name}
	}
	return dir
}
