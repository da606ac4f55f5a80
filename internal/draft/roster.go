package draft

import (
	"fmt"
	"sort"

	"fpl-live-draft/internal/domain"
)

// ProjectSquad lays one owner's ranked assets into the declared slot layout.
//
// Assets the directory cannot resolve (unknown element or element type) are
// left out of the table and reported in Squad.Unresolved. Owned assets past a
// position's capacity are still rendered, flagged as overflow, and positions
// missing from the layout are appended as extra groups after the declared ones.
func ProjectSquad(assets []domain.RankedAsset, dir *domain.Directory, slots []domain.SlotCapacity) domain.Squad {
	squad := domain.Squad{Groups: make([]domain.SlotGroup, 0, len(slots))}
	buckets := make(map[string][]domain.SlotRow)

	for _, ra := range assets {
		asset, ok := dir.Assets[ra.Element]
		if !ok {
			squad.Unresolved = append(squad.Unresolved, ra.Element)
			continue
		}
		pos := dir.Position(asset)
		if pos == "" {
			squad.Unresolved = append(squad.Unresolved, ra.Element)
			continue
		}
		buckets[pos] = append(buckets[pos], domain.SlotRow{
			Filled:  true,
			Element: asset.ID,
			Name:    asset.WebName,
			Team:    dir.Teams[asset.TeamCode].ShortName,
			Order:   ra.Order,
			Pick:    ra.Pick,
			Label:   PlayerLabel(asset.WebName, ra.Pick),
		})
	}

	for _, rows := range buckets {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })
	}

	declared := make(map[string]bool, len(slots))
	for _, slot := range slots {
		declared[slot.Position] = true
		filled := buckets[slot.Position]
		group := domain.SlotGroup{
			Position: slot.Position,
			Capacity: slot.Capacity,
			Rows:     make([]domain.SlotRow, 0, max(slot.Capacity, len(filled))),
		}
		for i, row := range filled {
			row.Overflow = i >= slot.Capacity
			group.Rows = append(group.Rows, row)
		}
		for i := len(filled); i < slot.Capacity; i++ {
			group.Rows = append(group.Rows, domain.SlotRow{Order: domain.Unranked, Label: "Empty slot"})
		}
		squad.Groups = append(squad.Groups, group)
	}

	var extra []string
	for pos := range buckets {
		if !declared[pos] {
			extra = append(extra, pos)
		}
	}
	sort.Strings(extra)
	for _, pos := range extra {
		rows := buckets[pos]
		for i := range rows {
			rows[i].Overflow = true
		}
		squad.Groups = append(squad.Groups, domain.SlotGroup{Position: pos, Extra: true, Rows: rows})
	}

	return squad
}

// PlayerLabel renders "Name (pick)"; the pick suffix only appears for an
// explicit positive sequence index.
func PlayerLabel(name string, pick int) string {
	if pick > 0 {
		return fmt.Sprintf("%s (%d)", name, pick)
	}
	return name
}
