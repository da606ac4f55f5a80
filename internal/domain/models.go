package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// StatusOwned is the ownership-snapshot flag for an element held by an entry.
const StatusOwned = "o"

type Asset struct {
	ID          int
	WebName     string
	ElementType int
	TeamCode    int
}

type Team struct {
	Code      int
	ShortName string
	Name      string
}

// Directory is the session-wide player/position/team reference data.
type Directory struct {
	Assets    map[int]Asset
	Positions map[int]string // element_type -> plural short label ("GKP")
	Teams     map[int]Team   // team code -> team
	FetchedAt time.Time
}

// Position returns the upper-cased position label for an asset, or "" when
// the element type is unknown.
func (d *Directory) Position(a Asset) string {
	return strings.ToUpper(strings.TrimSpace(d.Positions[a.ElementType]))
}

type Entry struct {
	ID        int // league entry id
	EntryID   int // owner identifier used by picks and ownership records
	EntryName string
	FirstName string
	LastName  string
}

func (e Entry) Manager() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

type OwnershipRecord struct {
	Element int
	Owner   *int
	Status  string
}

type PickEvent struct {
	Element    int
	Entry      int
	Index      *int
	ChoiceTime string
}

// Order is a draft-order sort key. Unranked assets carry +Inf and sort last.
type Order float64

var Unranked = Order(math.Inf(1))

func (o Order) Ranked() bool {
	return !math.IsInf(float64(o), 0) && !math.IsNaN(float64(o))
}

// MarshalJSON encodes the unranked sentinel as null since JSON has no infinity.
func (o Order) MarshalJSON() ([]byte, error) {
	if !o.Ranked() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(o))
}

type Rank struct {
	Order Order
	Pick  int // explicit sequence index, 0 when the order came from a timestamp or is unranked
}

type RankedAsset struct {
	Element int   `json:"element"`
	Order   Order `json:"order"`
	Pick    int   `json:"pick,omitempty"`
}

type Status string

const (
	StatusLoading        Status = "loading"
	StatusLive           Status = "live"
	StatusTransientError Status = "transient_error"
	StatusNotFound       Status = "not_found"
)

type LeagueMeta struct {
	Name      string `json:"name"`
	DraftDT   string `json:"draft_dt,omitempty"`
	TeamCount int    `json:"team_count"`
}

type SlotRow struct {
	Filled   bool   `json:"filled"`
	Element  int    `json:"element,omitempty"`
	Name     string `json:"name,omitempty"`
	Team     string `json:"team,omitempty"`
	Order    Order  `json:"order"`
	Pick     int    `json:"pick,omitempty"`
	Label    string `json:"label"`
	Overflow bool   `json:"overflow,omitempty"`
}

type SlotGroup struct {
	Position string    `json:"position"`
	Capacity int       `json:"capacity"`
	Extra    bool      `json:"extra,omitempty"`
	Rows     []SlotRow `json:"rows"`
}

type Squad struct {
	Groups     []SlotGroup `json:"groups"`
	Unresolved []int       `json:"unresolved,omitempty"`
}

type OwnerView struct {
	EntryID   int    `json:"entry_id"`
	EntryName string `json:"entry_name"`
	Manager   string `json:"manager"`
	Squad     Squad  `json:"squad"`
}

type RecentPick struct {
	Element    int    `json:"element"`
	EntryID    int    `json:"entry_id"`
	EntryName  string `json:"entry_name"`
	Manager    string `json:"manager"`
	PlayerName string `json:"player_name"`
	Position   string `json:"position"`
	Round      *int   `json:"round,omitempty"` // overall pick number, not the draft round
	Time       string `json:"time,omitempty"`
}

// LeagueState is the output of one successful reconciliation cycle.
type LeagueState struct {
	LeagueID     string                `json:"league_id"`
	League       LeagueMeta            `json:"league"`
	Owners       []OwnerView           `json:"owners"`
	Recent       []RecentPick          `json:"recent"`
	Rosters      map[int][]RankedAsset `json:"rosters"`
	ReconciledAt time.Time             `json:"reconciled_at"`
}

// View is what the rendering side receives after every cycle.
type View struct {
	LeagueID  string       `json:"league_id"`
	Status    Status       `json:"status"`
	Reason    string       `json:"reason,omitempty"`
	League    LeagueMeta   `json:"league"`
	Owners    []OwnerView  `json:"owners"`
	Recent    []RecentPick `json:"recent"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

func (s *LeagueState) View(status Status, reason string) View {
	at := s.ReconciledAt
	return View{
		LeagueID:  s.LeagueID,
		Status:    status,
		Reason:    reason,
		League:    s.League,
		Owners:    s.Owners,
		Recent:    s.Recent,
		UpdatedAt: &at,
	}
}
