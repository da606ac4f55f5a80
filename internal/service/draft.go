package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"fpl-live-draft/internal/api"
	"fpl-live-draft/internal/config"
	"fpl-live-draft/internal/constants"
	"fpl-live-draft/internal/domain"
	"fpl-live-draft/internal/draft"
)

type LeagueFetcher interface {
	GetLeagueDetails(ctx context.Context, leagueID string) (*api.LeagueDetailsResponse, error)
	GetDraftChoices(ctx context.Context, leagueID string) (*api.DraftChoicesResponse, error)
}

type DirectoryProvider interface {
	Get(ctx context.Context) (*domain.Directory, error)
}

// DraftService runs one fetch-and-reconcile cycle for a league.
type DraftService struct {
	fetcher     LeagueFetcher
	directory   DirectoryProvider
	slots       []domain.SlotCapacity
	recentPicks int
	logger      zerolog.Logger
}

func NewDraftService(fetcher LeagueFetcher, directory DirectoryProvider, cfg *config.Config, logger zerolog.Logger) (*DraftService, error) {
	slots := cfg.SlotLayout
	if len(slots) == 0 {
		var err error
		if slots, err = domain.ParseSlots(cfg.Slots); err != nil {
			return nil, fmt.Errorf("failed to parse slot layout: %w", err)
		}
	}
	return &DraftService{
		fetcher:     fetcher,
		directory:   directory,
		slots:       slots,
		recentPicks: cfg.RecentPicks,
		logger:      logger.With().Str("component", "draft").Logger(),
	}, nil
}

// LoadLeague fetches the league roster and pick log concurrently, resolves
// them against the player directory and rebuilds the league state from
// scratch. Nothing from a previous cycle is reused.
func (s *DraftService) LoadLeague(ctx context.Context, leagueID string) (*domain.LeagueState, error) {
	var (
		details *api.LeagueDetailsResponse
		choices *api.DraftChoicesResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = s.fetcher.GetLeagueDetails(gctx, leagueID)
		if err != nil {
			return fmt.Errorf("failed to fetch league details: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		choices, err = s.fetcher.GetDraftChoices(gctx, leagueID)
		if err != nil {
			return fmt.Errorf("failed to fetch draft choices: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.directory.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player directory: %w", err)
	}

	entries, owners := s.mapEntries(details.LeagueEntries)
	picks := mapChoices(choices.Choices)
	statuses := mapStatuses(choices.ElementStatus)

	rec := draft.Reconcile(statuses, owners, draft.ResolveRanks(picks))
	if len(rec.Duplicates) > 0 {
		s.logger.Debug().Str("league_id", leagueID).Ints("elements", rec.Duplicates).Msg("ownership snapshot lists an element more than once")
	}
	if len(rec.Orphans) > 0 {
		s.logger.Debug().Str("league_id", leagueID).Ints("owners", rec.Orphans).Msg("ownership snapshot references unknown owners")
	}

	views := make([]domain.OwnerView, 0, len(owners))
	for _, id := range owners {
		entry := entries[id]
		squad := draft.ProjectSquad(rec.Rosters[id], dir, s.slots)
		if len(squad.Unresolved) > 0 {
			s.logger.Debug().Int("entry_id", id).Ints("elements", squad.Unresolved).Msg("assets missing from player directory")
		}
		views = append(views, domain.OwnerView{
			EntryID:   id,
			EntryName: entry.EntryName,
			Manager:   entry.Manager(),
			Squad:     squad,
		})
	}

	name := details.League.Name
	if name == "" {
		name = constants.DefaultLeagueName
	}

	return &domain.LeagueState{
		LeagueID: leagueID,
		League: domain.LeagueMeta{
			Name:      name,
			DraftDT:   details.League.DraftDT,
			TeamCount: len(owners),
		},
		Owners:       views,
		Recent:       draft.RecentPicks(picks, entries, dir, s.recentPicks),
		Rosters:      rec.Rosters,
		ReconciledAt: time.Now(),
	}, nil
}

// mapEntries keys entries by entry id and returns the ids ascending. Entries
// without an entry id cannot own anything and are skipped.
func (s *DraftService) mapEntries(raw []api.LeagueEntry) (map[int]domain.Entry, []int) {
	entries := make(map[int]domain.Entry, len(raw))
	owners := make([]int, 0, len(raw))
	for _, e := range raw {
		if e.EntryID == nil {
			s.logger.Debug().Int("league_entry", e.ID).Msg("league entry has no entry id")
			continue
		}
		if _, dup := entries[*e.EntryID]; !dup {
			owners = append(owners, *e.EntryID)
		}
		entries[*e.EntryID] = domain.Entry{
			ID:        e.ID,
			EntryID:   *e.EntryID,
			EntryName: e.EntryName,
			FirstName: e.PlayerFirstName,
			LastName:  e.PlayerLastName,
		}
	}
	sort.Ints(owners)
	return entries, owners
}

func mapChoices(raw []api.Choice) []domain.PickEvent {
	picks := make([]domain.PickEvent, 0, len(raw))
	for _, c := range raw {
		picks = append(picks, domain.PickEvent{
			Element:    c.Element,
			Entry:      c.Entry,
			Index:      c.Index,
			ChoiceTime: c.ChoiceTime,
		})
	}
	return picks
}

func mapStatuses(raw []api.ElementStatus) []domain.OwnershipRecord {
	statuses := make([]domain.OwnershipRecord, 0, len(raw))
	for _, st := range raw {
		statuses = append(statuses, domain.OwnershipRecord{
			Element: st.Element,
			Owner:   st.Owner,
			Status:  st.Status,
		})
	}
	return statuses
}
