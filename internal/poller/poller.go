// Package poller drives the reconciliation cycle for at most one league at a
// time. The next tick is scheduled a fixed interval after the previous cycle
// completes, so cycles never overlap.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"fpl-live-draft/internal/api"
	"fpl-live-draft/internal/config"
	"fpl-live-draft/internal/constants"
	"fpl-live-draft/internal/domain"
	"fpl-live-draft/internal/metrics"
	"fpl-live-draft/internal/repository"
)

type Loader interface {
	LoadLeague(ctx context.Context, leagueID string) (*domain.LeagueState, error)
}

type Publisher interface {
	Publish(view domain.View)
	Reset()
}

type Poller struct {
	loader    Loader
	publisher Publisher
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu       sync.Mutex
	session  string
	leagueID string
	cancel   context.CancelFunc
	lastGood *domain.LeagueState
	loops    sync.WaitGroup
}

func New(loader Loader, publisher Publisher, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *Poller {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Poller{
		loader:    loader,
		publisher: publisher,
		interval:  interval,
		metrics:   m,
		logger:    logger.With().Str("component", "poller").Logger(),
	}
}

// Start cancels any active loop and begins polling leagueID. The returned
// view is the initial loading state, already published.
func (p *Poller) Start(leagueID string) (domain.View, error) {
	id, ok := domain.NormalizeLeagueID(leagueID)
	if !ok {
		return domain.View{}, fmt.Errorf("%w: %q", ErrInvalidLeagueID, leagueID)
	}
	session, err := gonanoid.New()
	if err != nil {
		return domain.View{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.logger.Info().Str("league_id", p.leagueID).Str("session", p.session).Msg("polling superseded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.session = session
	p.leagueID = id
	p.cancel = cancel
	p.lastGood = nil

	view := emptyView(id, domain.StatusLoading, "")
	p.publisher.Publish(view)

	p.loops.Add(1)
	go func() {
		defer p.loops.Done()
		p.run(ctx, session, id)
	}()

	p.logger.Info().Str("league_id", id).Str("session", session).Dur("interval", p.interval).Msg("polling started")
	return view, nil
}

// Stop returns the poller to idle. The last good state is kept for export.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return
	}
	p.cancel()
	p.logger.Info().Str("league_id", p.leagueID).Str("session", p.session).Msg("polling stopped")
	p.cancel = nil
	p.session = ""
	p.leagueID = ""
	p.publisher.Reset()
}

// Shutdown stops polling and waits for loop goroutines to return, or for ctx.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.Stop()
	done := make(chan struct{})
	go func() {
		p.loops.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active reports the league currently being polled.
func (p *Poller) Active() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leagueID, p.cancel != nil
}

// Snapshot returns the last successfully reconciled state.
func (p *Poller) Snapshot() (*domain.LeagueState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastGood, p.lastGood != nil
}

func (p *Poller) run(ctx context.Context, session, leagueID string) {
	for {
		if !p.tick(ctx, session, leagueID) {
			return
		}
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// tick runs one cycle and reports whether the loop should schedule another.
func (p *Poller) tick(ctx context.Context, session, leagueID string) bool {
	if ctx.Err() != nil {
		return false
	}

	start := time.Now()
	state, err := p.loader.LoadLeague(ctx, leagueID)
	took := time.Since(start)

	if ctx.Err() != nil {
		p.metrics.ObserveCycle(metrics.CycleCancelled, took)
		p.logger.Debug().Str("league_id", leagueID).Str("session", session).Msg("cycle cancelled, result discarded")
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != session {
		p.metrics.ObserveCycle(metrics.CycleCancelled, took)
		return false
	}

	if err != nil {
		status, reason := Classify(err)
		p.metrics.ObserveCycle(string(status), took)
		p.logger.Warn().
			Err(err).
			Str("league_id", leagueID).
			Str("status", string(status)).
			Dur("took", took).
			Msg("poll cycle failed")

		view := emptyView(leagueID, status, reason)
		if p.lastGood != nil {
			view = p.lastGood.View(status, reason)
		}
		p.publisher.Publish(view)
		return true
	}

	p.lastGood = state
	p.metrics.ObserveCycle(metrics.CycleLive, took)
	p.logger.Debug().
		Str("league_id", leagueID).
		Int("owners", len(state.Owners)).
		Dur("took", took).
		Msg("poll cycle completed")
	p.publisher.Publish(state.View(domain.StatusLive, ""))
	return true
}

// Classify maps a failed cycle onto the user-facing status and message.
func Classify(err error) (domain.Status, string) {
	switch {
	case errors.Is(err, repository.ErrDirectoryUnavailable):
		return domain.StatusTransientError, constants.MsgDirectoryUnavailable
	case errors.Is(err, api.ErrNotFound):
		return domain.StatusNotFound, constants.MsgLeagueNotFound
	default:
		return domain.StatusTransientError, constants.MsgRetrying
	}
}

func emptyView(leagueID string, status domain.Status, reason string) domain.View {
	return domain.View{
		LeagueID: leagueID,
		Status:   status,
		Reason:   reason,
		Owners:   []domain.OwnerView{},
		Recent:   []domain.RecentPick{},
	}
}
