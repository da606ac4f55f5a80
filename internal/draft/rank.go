// Package draft holds the pure reconciliation logic that turns one poll's
// worth of upstream data into ranked rosters, slot tables and a pick feed.
package draft

import (
	"time"

	"fpl-live-draft/internal/domain"
)

var pickTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ResolveRanks maps every picked element to its draft rank. It is rebuilt
// from the full log on each call; a later event for the same element
// replaces an earlier one.
func ResolveRanks(picks []domain.PickEvent) map[int]domain.Rank {
	ranks := make(map[int]domain.Rank, len(picks))
	for _, p := range picks {
		ranks[p.Element] = RankOf(p)
	}
	return ranks
}

// RankOf prefers the explicit sequence index, then the pick timestamp in
// epoch milliseconds, then the unranked sentinel.
func RankOf(p domain.PickEvent) domain.Rank {
	if p.Index != nil {
		return domain.Rank{Order: domain.Order(*p.Index), Pick: *p.Index}
	}
	if ts, ok := parsePickTime(p.ChoiceTime); ok {
		return domain.Rank{Order: domain.Order(ts.UnixMilli())}
	}
	return domain.Rank{Order: domain.Unranked}
}

func parsePickTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range pickTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
