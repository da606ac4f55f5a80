package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"fpl-live-draft/internal/domain"
)

type exportDocument struct {
	LeagueID     string              `json:"league_id,omitempty"`
	League       domain.LeagueMeta   `json:"league"`
	Owners       []domain.OwnerView  `json:"owners"`
	Recent       []domain.RecentPick `json:"recent"`
	ReconciledAt time.Time           `json:"reconciled_at"`
	ExportedAt   time.Time           `json:"exported_at"`
}

func (s *DraftServer) handleExport(w http.ResponseWriter, r *http.Request) {
	state, ok := s.tracker.Snapshot()
	if !ok {
		writeError(w, r, http.StatusNotFound, "Nothing to export yet")
		return
	}

	anonymous, _ := strconv.ParseBool(r.URL.Query().Get("anonymous"))
	doc := buildExport(state, anonymous, time.Now())

	suffix := "results"
	if anonymous {
		suffix = "anonymous"
	}
	name := fmt.Sprintf("fpl-draft-%s-%s", state.LeagueID, suffix)

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, name))
		writeJSON(w, r, http.StatusOK, doc)
	case "msgpack":
		w.Header().Set("Content-Type", "application/msgpack")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.msgpack"`, name))
		w.WriteHeader(http.StatusOK)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(doc); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode export")
		}
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Unsupported export format %q", format))
	}
}

// buildExport copies the state; anonymous exports drop the league name and
// number teams and managers in entry-id order.
func buildExport(state *domain.LeagueState, anonymous bool, now time.Time) exportDocument {
	doc := exportDocument{
		LeagueID:     state.LeagueID,
		League:       state.League,
		Owners:       make([]domain.OwnerView, len(state.Owners)),
		Recent:       make([]domain.RecentPick, len(state.Recent)),
		ReconciledAt: state.ReconciledAt,
		ExportedAt:   now,
	}
	copy(doc.Owners, state.Owners)
	copy(doc.Recent, state.Recent)
	if !anonymous {
		return doc
	}

	doc.LeagueID = ""
	doc.League.Name = ""
	doc.League.DraftDT = ""
	aliases := make(map[int]int, len(doc.Owners))
	for i := range doc.Owners {
		n := i + 1
		aliases[doc.Owners[i].EntryID] = n
		doc.Owners[i].EntryID = n
		doc.Owners[i].EntryName = fmt.Sprintf("Team %d", n)
		doc.Owners[i].Manager = fmt.Sprintf("Manager %d", n)
	}
	for i := range doc.Recent {
		n := aliases[doc.Recent[i].EntryID]
		doc.Recent[i].EntryID = n
		doc.Recent[i].EntryName = fmt.Sprintf("Team %d", n)
		doc.Recent[i].Manager = fmt.Sprintf("Manager %d", n)
	}
	return doc
}
