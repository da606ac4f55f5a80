package draft

import (
	"sort"

	"fpl-live-draft/internal/domain"
)

// RecentPicks returns the last n resolvable pick events, most recent first.
// Events whose element or entry cannot be resolved are skipped.
func RecentPicks(picks []domain.PickEvent, entries map[int]domain.Entry, dir *domain.Directory, n int) []domain.RecentPick {
	if n <= 0 {
		return []domain.RecentPick{}
	}

	feed := make([]domain.RecentPick, 0, len(picks))
	for _, p := range picks {
		asset, ok := dir.Assets[p.Element]
		if !ok {
			continue
		}
		entry, ok := entries[p.Entry]
		if !ok {
			continue
		}
		feed = append(feed, domain.RecentPick{
			Element:    p.Element,
			EntryID:    entry.EntryID,
			EntryName:  entry.EntryName,
			Manager:    entry.Manager(),
			PlayerName: asset.WebName,
			Position:   dir.Position(asset),
			Round:      p.Index,
			Time:       p.ChoiceTime,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool { return pickedBefore(feed[i], feed[j]) })

	if len(feed) > n {
		feed = feed[len(feed)-n:]
	}
	out := make([]domain.RecentPick, len(feed))
	for i, p := range feed {
		out[len(feed)-1-i] = p
	}
	return out
}

// pickedBefore compares by round when both picks carry one and falls back to
// the ISO-8601 timestamp strings, which sort lexicographically.
func pickedBefore(a, b domain.RecentPick) bool {
	if a.Round != nil && b.Round != nil {
		return *a.Round < *b.Round
	}
	return a.Time < b.Time
}
