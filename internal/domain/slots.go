package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SlotCapacity is the number of squad slots declared for one position label.
type SlotCapacity struct {
	Position string `json:"position"`
	Capacity int    `json:"capacity"`
}

// ParseSlots reads an ordered "POS:N,POS:N" layout such as "GKP:2,DEF:5,MID:5,FWD:3".
func ParseSlots(layout string) ([]SlotCapacity, error) {
	var slots []SlotCapacity
	seen := make(map[string]bool)
	for _, part := range strings.Split(layout, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pos, n, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("slot %q: expected POSITION:CAPACITY", part)
		}
		pos = strings.ToUpper(strings.TrimSpace(pos))
		if pos == "" {
			return nil, fmt.Errorf("slot %q: empty position", part)
		}
		if seen[pos] {
			return nil, fmt.Errorf("slot %q: position declared twice", part)
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || capacity < 0 {
			return nil, fmt.Errorf("slot %q: invalid capacity", part)
		}
		seen[pos] = true
		slots = append(slots, SlotCapacity{Position: pos, Capacity: capacity})
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("slot layout %q declares no positions", layout)
	}
	return slots, nil
}

var leagueIDPattern = regexp.MustCompile(`^[0-9]+$`)

// NormalizeLeagueID trims a user-supplied league id and reports whether it is numeric.
func NormalizeLeagueID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	return id, leagueIDPattern.MatchString(id)
}
