package draft

import (
	"sort"

	"fpl-live-draft/internal/domain"
)

type Reconciliation struct {
	Rosters map[int][]domain.RankedAsset

	// Duplicates lists elements the snapshot marked as owned more than once.
	// The last record in snapshot order wins.
	Duplicates []int

	// Orphans lists owners referenced by the snapshot but absent from the roster fetch.
	Orphans []int
}

// Reconcile builds owner -> rank-ordered assets from the ownership snapshot.
// Every known owner gets an entry even with no assets.
func Reconcile(statuses []domain.OwnershipRecord, owners []int, ranks map[int]domain.Rank) Reconciliation {
	rec := Reconciliation{Rosters: make(map[int][]domain.RankedAsset, len(owners))}
	known := make(map[int]bool, len(owners))
	for _, id := range owners {
		rec.Rosters[id] = []domain.RankedAsset{}
		known[id] = true
	}

	winner := make(map[int]int)
	for i, st := range statuses {
		if !owned(st) {
			continue
		}
		if _, dup := winner[st.Element]; dup {
			rec.Duplicates = append(rec.Duplicates, st.Element)
		}
		winner[st.Element] = i
	}

	for i, st := range statuses {
		if !owned(st) || winner[st.Element] != i {
			continue
		}
		owner := *st.Owner
		if _, ok := rec.Rosters[owner]; !ok {
			rec.Rosters[owner] = []domain.RankedAsset{}
			if !known[owner] {
				rec.Orphans = append(rec.Orphans, owner)
			}
		}
		rank, ok := ranks[st.Element]
		if !ok {
			rank = domain.Rank{Order: domain.Unranked}
		}
		rec.Rosters[owner] = append(rec.Rosters[owner], domain.RankedAsset{
			Element: st.Element,
			Order:   rank.Order,
			Pick:    rank.Pick,
		})
	}

	for _, assets := range rec.Rosters {
		SortByOrder(assets)
	}
	return rec
}

// SortByOrder sorts ascending by draft order, keeping input order on ties.
func SortByOrder(assets []domain.RankedAsset) {
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Order < assets[j].Order
	})
}

func owned(st domain.OwnershipRecord) bool {
	return st.Status == domain.StatusOwned && st.Owner != nil
}
